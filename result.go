package hotswap

import (
	"fmt"
	"sort"
	"strings"
)

// Request names one unit to redefine and the code to replace it with. The
// engine never inspects Target; Code belongs to the caller for the duration
// of the call.
type Request struct {
	Target Handle
	Code   []byte
}

// UnitOutcome is the per-unit record of one strategy attempt.
type UnitOutcome struct {
	Target Handle
	OK     bool
	Detail string

	// Err is set when the attempt failed with an internal error rather
	// than a clean refusal.
	Err error
}

// Result aggregates one redefinition call. Callers should inspect Success and
// Succeeded; Err carries the last captured failure and is diagnostic, not a
// control signal.
//
// Processed and Succeeded both accumulate across every strategy attempted
// within the call, so Succeeded <= Processed always holds.
type Result struct {
	Success   bool
	Processed int
	Succeeded int

	// Strategy is the name of the strategy that contributed at least one
	// success, or empty when none did.
	Strategy string

	Units  []UnitOutcome
	Detail string
	Err    error
}

// Report returns a deterministic multi-line summary suitable for logs.
func (r Result) Report() string {
	var b strings.Builder

	status := "FAILED"
	if r.Success {
		status = "OK"
	}
	fmt.Fprintf(&b, "redefinition %s: %d/%d units", status, r.Succeeded, r.Processed)
	if r.Strategy != "" {
		fmt.Fprintf(&b, " via %s", r.Strategy)
	}
	b.WriteByte('\n')

	for _, u := range r.Units {
		mark := "-"
		if u.OK {
			mark = "+"
		}
		fmt.Fprintf(&b, "  %s unit %d: %s\n", mark, u.Target, u.Detail)
	}
	if r.Err != nil {
		fmt.Fprintf(&b, "  last error: %v\n", r.Err)
	}
	return b.String()
}

// Capabilities is a point-in-time snapshot of strategy availability, one
// entry per registered strategy. It is not cached beyond the query.
type Capabilities map[string]bool

// String renders the snapshot with stable ordering.
func (c Capabilities) String() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		state := "unavailable"
		if c[name] {
			state = "available"
		}
		fmt.Fprintf(&b, "%s: %s\n", name, state)
	}
	return b.String()
}
