package search

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"os"
	"time"

	"github.com/RoaringBitmap/roaring"
	opentracing "github.com/opentracing/opentracing-go"
)

// entry is a tagged variant over the two kinds of registered search term: a
// single-line Term or a multi-line Sequence. Exactly one field is set.
// Modeling the variant this way (rather than a type switch over an
// interface, or subclassing) keeps FileScanner's dispatch a simple nil
// check instead of dynamic type assertions.
type entry struct {
	term *Term
	seq  *Sequence
}

// FileScanner is a per-file worker: it opens a file (gzip-detecting),
// iterates lines, applies filters, evaluates all registered terms, and
// manages sequence state, returning MatchRecords in line order (with
// sequence records flushed at EOF; see Sequence.eof).
//
// A FileScanner holds no state between calls to Scan: all per-file scratch
// (sequence marks, buffered sequence records) is local to the call.
type FileScanner struct {
	Filters []Filter
	Terms   []entry
	Metrics *Metrics
}

// Scan reads path end to end and returns its matches plus the set of line
// numbers its filters skipped.
func (fs FileScanner) Scan(ctx context.Context, path string) ([]Match, *roaring.Bitmap, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "search.ScanFile")
	span.SetTag("path", path)
	defer span.Finish()

	start := time.Now()
	reader, closer, err := openScanFile(path)
	if err != nil {
		span.SetTag("error", true)
		if fs.Metrics != nil {
			fs.Metrics.observeScan(path, nil, err, time.Since(start))
		}
		return nil, nil, err
	}
	defer closer.Close()

	results, skipped, err := fs.scanLines(path, reader)
	if fs.Metrics != nil {
		fs.Metrics.observeScan(path, results, err, time.Since(start))
	}
	if err != nil {
		span.SetTag("error", true)
		return nil, nil, err
	}
	return results, skipped, nil
}

func (fs FileScanner) scanLines(path string, reader io.Reader) ([]Match, *roaring.Bitmap, error) {
	seqStates := make(map[string]*seqState, len(fs.Terms))
	for _, e := range fs.Terms {
		if e.seq != nil {
			seqStates[e.seq.ID()] = &seqState{}
		}
	}

	var results []Match
	skipped := roaring.New()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var lineNo uint64
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if fs.lineFiltered(line) {
			skipped.Add(uint32(lineNo))
			continue
		}

		for _, e := range fs.Terms {
			switch {
			case e.term != nil:
				if res := e.term.run(line); res.ok() {
					results = append(results, Match{
						Source:   path,
						LineNo:   lineNo,
						Tag:      e.term.Tag,
						Captures: captureFromResult(res),
					})
				}
			case e.seq != nil:
				e.seq.step(seqStates[e.seq.ID()], path, lineNo, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, &DecodeError{Path: path, Cause: err}
	}

	for _, e := range fs.Terms {
		if e.seq == nil {
			continue
		}
		st := seqStates[e.seq.ID()]
		results = append(results, e.seq.eof(st, path, lineNo)...)
	}

	return results, skipped, nil
}

func (fs FileScanner) lineFiltered(line string) bool {
	for _, f := range fs.Filters {
		if f.Skip(line) {
			return true
		}
	}
	return false
}

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = [2]byte{0x1f, 0x8b}

// openScanFile opens path, detecting gzip via a buffered peek of its first
// two bytes rather than a trial read-and-rewind: the same *bufio.Reader (and
// so the same underlying file handle) serves both the gzip probe and the
// full read, satisfying the "one handle at a time" resource policy.
func openScanFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &FileOpenError{Path: path, Cause: err}
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, nil, &DecompressionError{Path: path, Cause: err}
		}
		return gz, closerFunc(func() error {
			gzErr := gz.Close()
			fErr := f.Close()
			if gzErr != nil {
				return gzErr
			}
			return fErr
		}), nil
	}

	return br, f, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
