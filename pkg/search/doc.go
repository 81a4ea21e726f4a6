// Package search is a parallel, filter-gated, multi-pattern file searcher.
//
// Callers register any number of regex-based search terms (single-line or
// multi-line sequences) against a path, directory, or glob, then run
// Searcher.Search to scan matching plain-text or gzip log files and get
// back a Results collection indexed by source path and queryable by tag.
package search
