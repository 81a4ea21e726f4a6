package search

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSearcherKeyValueMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kv.log")
	writeFile(t, path, "a=1\nb=2\nc=3\n")

	s := NewSearcher(DefaultConfig)
	s.AddSearchTerm(NewTerm("kv", MustPattern(`^(\w)=(\d)$`)), path)

	results, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	matches := results.ByPath(path)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(matches), matches)
	}
	want := map[uint64][2]string{1: {"a", "1"}, 2: {"b", "2"}, 3: {"c", "3"}}
	for _, m := range matches {
		exp, ok := want[m.LineNo]
		if !ok {
			t.Fatalf("unexpected line_no %d", m.LineNo)
		}
		if m.Tag != "kv" {
			t.Fatalf("tag = %q, want kv", m.Tag)
		}
		v1, _ := m.Captures.Get(1)
		v2, _ := m.Captures.Get(2)
		if v1 != exp[0] || v2 != exp[1] {
			t.Fatalf("line %d captures = %q,%q want %v", m.LineNo, v1, v2, exp)
		}
	}
}

func TestSearcherHintRejection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeFile(t, path, "info x\nERROR oops\ninfo y\n")

	s := NewSearcher(DefaultConfig)
	term := NewTerm("err", MustPattern(`^ERROR (\S+)$`)).WithHint(MustPattern("ERROR"))
	s.AddSearchTerm(term, path)

	results, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	matches := results.ByPath(path)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].LineNo != 2 {
		t.Fatalf("line_no = %d, want 2", matches[0].LineNo)
	}
	v, _ := matches[0].Captures.Get(1)
	if v != "oops" {
		t.Fatalf("capture 1 = %q, want oops", v)
	}
}

func TestSearcherFilterSkip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeFile(t, path, "#hdr\nfoo\n#tail\nfoo\n")

	s := NewSearcher(DefaultConfig)
	s.AddFilter(NewFilter(MustPattern(`^#`), true), path)
	s.AddSearchTerm(NewTerm("foo", MustPattern(`^foo$`)), path)

	results, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	matches := results.ByPath(path)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(matches), matches)
	}
	if matches[0].LineNo != 2 || matches[1].LineNo != 4 {
		t.Fatalf("unexpected line numbers: %+v", matches)
	}

	skipped := results.SkippedLines(path)
	if skipped == nil || !skipped.Contains(1) || !skipped.Contains(3) {
		t.Fatalf("expected lines 1 and 3 to be recorded as skipped")
	}
	for _, m := range matches {
		if skipped.Contains(uint32(m.LineNo)) {
			t.Fatalf("filter exclusivity violated: line %d both skipped and matched", m.LineNo)
		}
	}
}

func TestSearcherParallelFailureIsolation(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.log")
	writeFile(t, good, "foo\n")

	bad := filepath.Join(dir, "bad.log.gz")
	var buf bytes.Buffer
	buf.Write([]byte{0x1f, 0x8b, 0x08, 0x00}) // gzip magic + truncated, malformed stream
	if err := os.WriteFile(bad, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSearcher(DefaultConfig)
	s.AddSearchTerm(NewTerm("foo", MustPattern(`^foo$`)), good)
	s.AddSearchTerm(NewTerm("foo", MustPattern(`^foo$`)), bad)

	results, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if matches := results.ByPath(good); len(matches) != 1 {
		t.Fatalf("expected good file to still yield a match, got %+v", matches)
	}
	if matches := results.ByPath(bad); len(matches) != 0 {
		t.Fatalf("expected bad file to yield no matches, got %+v", matches)
	}
}

func TestSearcherGzipTransparent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log.1.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte("foo\nbar\nfoo\n")); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	s := NewSearcher(DefaultConfig)
	s.AddSearchTerm(NewTerm("foo", MustPattern(`^foo$`)), path)

	results, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if matches := results.ByPath(path); len(matches) != 2 {
		t.Fatalf("expected 2 matches from gzip file, got %d: %+v", len(matches), matches)
	}
}

func TestSearcherIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeFile(t, path, "foo\nbar\nfoo\n")

	s := NewSearcher(DefaultConfig)
	s.AddSearchTerm(NewTerm("foo", MustPattern(`^foo$`)), path)

	// Search returns the same Results on every call, so take a copy of the
	// first run's matches before the second run resets it.
	first, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	m1 := first.ByPath(path)
	second, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	m2 := second.ByPath(path)
	if len(m1) != len(m2) {
		t.Fatalf("result counts differ across runs: %d vs %d", len(m1), len(m2))
	}
	for i := range m1 {
		if m1[i].LineNo != m2[i].LineNo || m1[i].Tag != m2[i].Tag {
			t.Fatalf("run 1 and run 2 diverge at %d: %+v vs %+v", i, m1[i], m2[i])
		}
	}
}

func TestSearcherSequenceEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeFile(t, path, "BEGIN\n  x\n  y\nEND\nBEGIN\n  z\nEND\n")

	s := NewSearcher(DefaultConfig)
	seq := newBlockSequence()
	s.AddSequence(seq, path)

	results, err := s.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	sections := results.Sections(seq, path)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	for idx, records := range sections {
		hasStart, hasEnd := false, false
		for _, r := range records {
			if r.Tag == seq.startTag() {
				hasStart = true
			}
			if r.Tag == seq.endTag() {
				hasEnd = true
			}
		}
		if !hasStart || !hasEnd {
			t.Fatalf("section %d missing start/end: %+v", idx, records)
		}
	}
}
