package search

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// Results is a mapping from source path to its ordered list of Match
// records (insertion order within a file is preserved; order across files
// is not defined). A Searcher owns one Results, created empty by
// NewSearcher, reset at the start of every Searcher.Search call and
// returned by it; it is safe to populate concurrently from worker
// goroutines.
type Results struct {
	mu      sync.Mutex
	byPath  map[string][]Match
	skipped map[string]*roaring.Bitmap
}

// NewResults returns an empty Results collection.
func NewResults() *Results {
	return &Results{
		byPath:  map[string][]Match{},
		skipped: map[string]*roaring.Bitmap{},
	}
}

// reset clears prior state: each Search call starts from an empty Results.
func (r *Results) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPath = map[string][]Match{}
	r.skipped = map[string]*roaring.Bitmap{}
}

// add appends matches for path, merging into any existing entry. Safe to
// call from multiple worker goroutines.
func (r *Results) add(path string, matches []Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPath[path] = append(r.byPath[path], matches...)
}

// addSkipped records the set of line numbers a file's filters skipped, used
// by SkippedLines and by tests asserting the filter-exclusivity invariant.
func (r *Results) addSkipped(path string, bm *roaring.Bitmap) {
	if bm == nil || bm.IsEmpty() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.skipped[path]; ok {
		existing.Or(bm)
	} else {
		r.skipped[path] = bm
	}
}

// Paths returns every source path passed to add, including paths whose scan
// produced no matches.
func (r *Results) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.byPath))
	for p := range r.byPath {
		paths = append(paths, p)
	}
	return paths
}

// ByPath returns the matches recorded for path, in file order.
func (r *Results) ByPath(path string) []Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Match(nil), r.byPath[path]...)
}

// SkippedLines returns the set of line numbers filtered out of path, or nil
// if none were skipped (or path was never scanned).
func (r *Results) SkippedLines(path string) *roaring.Bitmap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped[path]
}

// ByTag returns every match tagged tag. If path is non-empty, only that
// path's matches are considered; if seqID is non-empty, matches must also
// carry that sequence id.
func (r *Results) ByTag(tag string, path, seqID string) []Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := []string{path}
	if path == "" {
		paths = paths[:0]
		for p := range r.byPath {
			paths = append(paths, p)
		}
	}

	var out []Match
	for _, p := range paths {
		for _, m := range r.byPath[p] {
			if m.Tag != tag {
				continue
			}
			if seqID != "" && m.SeqID != seqID {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// Sections returns the start/body/end records of seq grouped by section
// index. If path is non-empty, only that path is considered.
func (r *Results) Sections(seq Sequence, path string) map[uint32][]Match {
	sections := map[uint32][]Match{}
	for _, tag := range []string{seq.startTag(), seq.bodyTag(), seq.endTag()} {
		for _, m := range r.ByTag(tag, path, seq.ID()) {
			sections[m.SectionIdx] = append(sections[m.SectionIdx], m)
		}
	}
	return sections
}
