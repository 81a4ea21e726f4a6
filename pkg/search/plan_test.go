package search

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFilePlannerLogrotateCap(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app.log", "app.log.1", "app.log.2.gz", "app.log.3.gz"} {
		writeFile(t, filepath.Join(dir, name), "x\n")
	}

	planner := FilePlanner{MaxLogrotateDepth: 2}
	files, err := planner.Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{filepath.Join(dir, "app.log"), filepath.Join(dir, "app.log.1")}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("got %v, want %v", files, want)
		}
	}
}

func TestFilePlannerPassesThroughNonRotated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "syslog"), "x\n")

	planner := FilePlanner{MaxLogrotateDepth: 1}
	files, err := planner.Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != filepath.Join(dir, "syslog") {
		t.Fatalf("got %v", files)
	}
}

func TestFilePlannerLiteralFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.log")
	writeFile(t, p, "x\n")

	planner := FilePlanner{}
	files, err := planner.Resolve(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != p {
		t.Fatalf("got %v", files)
	}
}
