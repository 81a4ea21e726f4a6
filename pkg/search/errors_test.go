package search

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
)

func TestRegisterAllAggregatesFailures(t *testing.T) {
	var calls int
	err := RegisterAll(
		func() error { calls++; return nil },
		func() error { calls++; return &RegexError{Source: "a(", Cause: errors.New("bad")} },
		func() error { calls++; return &RegexError{Source: "b(", Cause: errors.New("bad")} },
	)
	if calls != 3 {
		t.Fatalf("expected all 3 fns to run even after a failure, got %d calls", calls)
	}
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
	merr, ok := err.(*multierror.Error)
	if !ok {
		t.Fatalf("expected *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 2 {
		t.Fatalf("expected 2 aggregated errors, got %d", len(merr.Errors))
	}
}

func TestRegisterAllNoErrors(t *testing.T) {
	err := RegisterAll(
		func() error { return nil },
		func() error { return nil },
	)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
