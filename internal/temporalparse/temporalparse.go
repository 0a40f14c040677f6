// Package temporalparse turns the natural-language --valid-from/--valid-until
// flags the CLI host accepts into the RFC-3339 timestamps model.TemporalMetadata
// requires. The graph store itself only ever sees parsed times; this package
// exists entirely to spare a human typing an ISO-8601 string by hand.
package temporalparse

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Parse resolves a natural-language or RFC-3339 time expression relative to
// now. An already-valid RFC-3339 string is returned untouched; anything else
// is handed to the "when" grammar.
func Parse(expr string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t, nil
	}
	r, err := parser.Parse(expr, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing temporal expression %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not parse temporal expression %q", expr)
	}
	return r.Time, nil
}
