package search

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/karrick/godirwalk"
)

var (
	reLogSeries  = regexp.MustCompile(`^(\S+)\.log\S*$`)
	reLogHead    = regexp.MustCompile(`^(\S+)\.log$`)
	reLogRotated = regexp.MustCompile(`^(\S+)\.log\.(\d+)(\.gz)?$`)
)

// FilePlanner turns a user-registered path (a literal file, a directory, or
// a glob pattern) into the concrete list of files a Searcher should scan,
// applying log-rotation pruning along the way.
type FilePlanner struct {
	// MaxLogrotateDepth caps, per rotated-log series, how many files
	// (including the head) are kept after pruning. Zero keeps none,
	// matching a zero slice limit in the original implementation; pass
	// DefaultConfig.MaxLogrotateDepth rather than a bare zero value to
	// get the default per-series cap.
	MaxLogrotateDepth uint32
}

// Resolve expands userPath into concrete files to scan.
func (p FilePlanner) Resolve(userPath string) ([]string, error) {
	info, err := os.Stat(userPath)
	switch {
	case err == nil && info.Mode().IsRegular():
		return []string{userPath}, nil
	case err == nil && info.IsDir():
		names, err := godirwalk.ReadDirnames(userPath, nil)
		if err != nil {
			return nil, &FileOpenError{Path: userPath, Cause: err}
		}
		sort.Strings(names)
		paths := make([]string, 0, len(names))
		for _, n := range names {
			full := filepath.Join(userPath, n)
			if fi, err := os.Stat(full); err == nil && fi.Mode().IsRegular() {
				paths = append(paths, full)
			}
		}
		return p.prune(paths), nil
	default:
		// Not a literal file or directory: treat userPath as a glob. This
		// accepts recursive "**" patterns (via doublestar), a strict
		// superset of stdlib path/filepath.Glob.
		matches, err := doublestar.FilepathGlob(userPath)
		if err != nil {
			return nil, &FileOpenError{Path: userPath, Cause: err}
		}
		var files []string
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
				files = append(files, m)
			}
		}
		return p.prune(files), nil
	}
}

// prune applies log-rotation pruning: files are partitioned into series
// keyed by the base name matching `(\S+)\.log\S*`, rotated siblings within
// a series are sorted ascending by their rotation integer (the
// non-rotated head sorts first, non-matching-format files sort to +∞), and
// each series is capped to MaxLogrotateDepth including the head.
// Non-matching files pass through unchanged.
func (p FilePlanner) prune(paths []string) []string {
	type member struct {
		path string
		key  int64
	}

	series := map[string][]member{}
	var out []string

	for _, path := range paths {
		name := filepath.Base(path)
		sm := reLogSeries.FindStringSubmatch(name)
		if sm == nil {
			out = append(out, path)
			continue
		}
		base := sm[1]

		var key int64
		switch {
		case reLogHead.MatchString(name):
			key = 0
		case reLogRotated.MatchString(name):
			rm := reLogRotated.FindStringSubmatch(name)
			n, err := strconv.ParseInt(rm[2], 10, 64)
			if err != nil {
				key = math.MaxInt64
			} else {
				key = n
			}
		default:
			key = math.MaxInt64
		}

		series[base] = append(series[base], member{path, key})
	}

	for _, members := range series {
		sort.SliceStable(members, func(i, j int) bool { return members[i].key < members[j].key })
		limit := int(p.MaxLogrotateDepth)
		if limit > len(members) {
			limit = len(members)
		}
		for _, m := range members[:limit] {
			out = append(out, m.path)
		}
	}

	return out
}
