package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by single-result reads that matched nothing.
	ErrNotFound = errors.New("no matching document")
	// ErrAmbiguousResult is returned by single-result reads that matched several documents.
	ErrAmbiguousResult = errors.New("more than one matching document")
)

// AmbiguousResultError reports how many hits a single-result read saw.
// Hits is a lower bound: the read stops fetching after the second hit.
type AmbiguousResultError struct {
	Index string
	Hits  int
}

func (e *AmbiguousResultError) Error() string {
	return fmt.Sprintf("%s in index %q (%d+ hits)", ErrAmbiguousResult, e.Index, e.Hits)
}

func (e *AmbiguousResultError) Unwrap() error { return ErrAmbiguousResult }
