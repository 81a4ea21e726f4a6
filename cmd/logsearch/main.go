// Command logsearch is a thin harness around package search: it registers
// search terms and filters from flags, runs one search, and prints the
// matches it finds.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/automaxprocs/maxprocs"
	log15 "gopkg.in/inconshreveable/log15.v2"

	"github.com/sourcegraph/logsearch/pkg/search"
)

func main() {
	var (
		pattern   = flag.String("pattern", "", "regex pattern to search for (required)")
		tag       = flag.String("tag", "match", "tag to report matches under")
		hint      = flag.String("hint", "", "optional substring hint to prefilter lines")
		filter    = flag.String("filter", "", "optional regex; lines that do NOT match are skipped unless -invert-filter")
		invertFlt = flag.Bool("invert-filter", false, "skip lines that match -filter instead of lines that do not")
		yamlPath  = flag.String("config", "", "optional YAML config file")
		envPath   = flag.String("env", "", "optional .env file")
	)
	flag.Parse()

	if *pattern == "" || flag.NArg() == 0 {
		log.Fatal("usage: logsearch -pattern <regex> [flags] <path> [path...]")
	}

	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Printf("failed to set GOMAXPROCS: %s", err)
	}

	cfg, err := search.LoadConfig(*yamlPath, *envPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	searcher := search.NewSearcher(cfg)
	searcher.Log = log15.New("cmd", "logsearch")
	searcher.Metrics = search.NewMetrics(prometheus.DefaultRegisterer)

	// Compile every flag-supplied pattern up front and report all bad
	// ones together, rather than stopping at the first.
	var mainPattern, hintPattern, filterPattern search.Pattern
	err = search.RegisterAll(
		func() error {
			var err error
			mainPattern, err = search.NewPattern(*pattern)
			return err
		},
		func() error {
			if *hint == "" {
				return nil
			}
			var err error
			hintPattern, err = search.NewPattern(*hint)
			return err
		},
		func() error {
			if *filter == "" {
				return nil
			}
			var err error
			filterPattern, err = search.NewPattern(*filter)
			return err
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	term := search.NewTerm(*tag, mainPattern)
	if *hint != "" {
		term = term.WithHint(hintPattern)
	}

	for _, path := range flag.Args() {
		searcher.AddSearchTerm(term, path)
		if *filter != "" {
			searcher.AddFilter(search.NewFilter(filterPattern, *invertFlt), path)
		}
	}

	results, err := searcher.Search(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, path := range results.Paths() {
		for _, m := range results.ByPath(path) {
			fmt.Printf("%s:%d: %s %s\n", m.Source, m.LineNo, m.Tag, formatCaptures(m.Captures))
		}
	}
}

func formatCaptures(c search.Captures) string {
	var parts []string
	for i := 0; i < 32; i++ {
		if v, ok := c.Get(i); ok {
			parts = append(parts, fmt.Sprintf("%d=%q", i, v))
		}
	}
	return strings.Join(parts, " ")
}
