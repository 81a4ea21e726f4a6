package search

import (
	"context"
	"runtime"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	"golang.org/x/sync/semaphore"
	log15 "gopkg.in/inconshreveable/log15.v2"
)

// Searcher is the top-level façade: a registry for filters and terms, a
// worker-pool dispatcher, and result aggregation with per-file failure
// isolation. The zero value is not usable; build one with NewSearcher.
type Searcher struct {
	Config  Config
	Metrics *Metrics
	Log     log15.Logger // error sink; defaults to log15.Root() if nil

	mu        sync.Mutex
	pathOrder []string
	filters   map[string][]Filter
	terms     map[string][]entry
	results   *Results
}

// NewSearcher builds a Searcher against cfg.
func NewSearcher(cfg Config) *Searcher {
	return &Searcher{
		Config:  cfg,
		Log:     log15.Root(),
		filters: map[string][]Filter{},
		terms:   map[string][]entry{},
		results: NewResults(),
	}
}

func (s *Searcher) touchPath(userPath string) {
	if _, ok := s.filters[userPath]; ok {
		return
	}
	if _, ok := s.terms[userPath]; ok {
		return
	}
	s.pathOrder = append(s.pathOrder, userPath)
}

// AddFilter registers f against userPath (a file, directory, or glob). Any
// number of filters can be registered per path; all of them must accept a
// line for it to be evaluated against that path's search terms.
func (s *Searcher) AddFilter(f Filter, userPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchPath(userPath)
	s.filters[userPath] = append(s.filters[userPath], f)
}

// AddSearchTerm registers a single-line Term against userPath.
func (s *Searcher) AddSearchTerm(t Term, userPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchPath(userPath)
	tCopy := t
	s.terms[userPath] = append(s.terms[userPath], entry{term: &tCopy})
}

// AddSequence registers a multi-line Sequence against userPath.
func (s *Searcher) AddSequence(seq Sequence, userPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchPath(userPath)
	seqCopy := seq
	s.terms[userPath] = append(s.terms[userPath], entry{seq: &seqCopy})
}

// numWorkers resolves the worker cap: zero disables parallelism (serial,
// i.e. one worker); otherwise it's min(cap, available CPUs).
func (s *Searcher) numWorkers() int {
	if s.Config.MaxParallelTasks == 0 {
		return 1
	}
	cpus := runtime.NumCPU()
	if int(s.Config.MaxParallelTasks) < cpus {
		return int(s.Config.MaxParallelTasks)
	}
	return cpus
}

// Search resolves every registered path via FilePlanner, submits one scan
// job per resolved file to a bounded worker pool, and merges per-file
// results into a freshly reset Results collection. A single file's
// FileSearchError is logged to the error sink and otherwise swallowed; it
// never aborts the run.
func (s *Searcher) Search(ctx context.Context) (*Results, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "search.Search")
	defer span.Finish()

	s.mu.Lock()
	paths := append([]string(nil), s.pathOrder...)
	filters := make(map[string][]Filter, len(s.filters))
	terms := make(map[string][]entry, len(s.terms))
	for k, v := range s.filters {
		filters[k] = v
	}
	for k, v := range s.terms {
		terms[k] = v
	}
	planner := FilePlanner{MaxLogrotateDepth: s.Config.MaxLogrotateDepth}
	results := s.results
	results.reset()
	s.mu.Unlock()

	workers := s.numWorkers()
	span.SetTag("workers", workers)
	span.SetTag("paths", len(paths))

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	logger := s.Log
	if logger == nil {
		logger = log15.Root()
	}

	for _, userPath := range paths {
		files, err := planner.Resolve(userPath)
		if err != nil {
			logger.Error("failed to resolve search path", "path", userPath, "err", err)
			continue
		}

		scanner := FileScanner{
			Filters: filters[userPath],
			Terms:   terms[userPath],
			Metrics: s.Metrics,
		}

		for _, file := range files {
			file := file
			if err := sem.Acquire(ctx, 1); err != nil {
				logger.Error("search cancelled", "err", err)
				wg.Wait()
				return results, err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)

				matches, skipped, err := scanner.Scan(ctx, file)
				if err != nil {
					fsErr := newFileSearchError(file, err)
					logger.Error(fsErr.Error(), "path", file)
					return
				}
				results.add(file, matches)
				results.addSkipped(file, skipped)
			}()
		}
	}

	wg.Wait()
	return results, nil
}
