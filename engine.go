package hotswap

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine orchestrates one redefinition call over the fixed strategy registry.
// Build it once and share it; the registry never changes after construction.
// The engine does not serialize callers: two concurrent calls against the
// same unit race at the provider level.
type Engine struct {
	access   Access
	registry []Strategy
	log      zerolog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger routes the engine's debug trace to l. The default is a no-op
// logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine builds an engine over the given capability. Pass Denied() (or a
// failed Bootstrap result) to get an engine that refuses every call.
func NewEngine(access Access, opts ...Option) *Engine {
	e := &Engine{
		access:   access,
		registry: newRegistry(access),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// newEngineWithRegistry exists for tests that need to inject misbehaving
// strategies.
func newEngineWithRegistry(access Access, registry []Strategy) *Engine {
	return &Engine{access: access, registry: registry, log: zerolog.Nop()}
}

// Available reports whether redefinition can work at all: the foundational
// low-level capability was granted and at least one strategy is usable.
func (e *Engine) Available() bool {
	if e.access == nil || !e.access.Granted() {
		return false
	}
	for _, s := range e.registry {
		if s.Available() {
			return true
		}
	}
	return false
}

// Capabilities snapshots every registered strategy's availability. Without
// the foundational capability everything reads false, the fallback included:
// it would have nothing to journal against.
func (e *Engine) Capabilities() Capabilities {
	granted := e.access != nil && e.access.Granted()

	caps := make(Capabilities, len(e.registry))
	for _, s := range e.registry {
		caps[s.Name()] = granted && s.Available()
	}
	return caps
}

// Redefine runs the batch in automatic mode: strategies are tried in registry
// order and the first one to redefine anything wins.
func (e *Engine) Redefine(reqs []Request) Result {
	return e.RedefineWith(reqs, "")
}

// RedefineWith runs the batch, trying the named strategy first. The
// preference is a request, not a constraint: an unknown or unavailable name,
// or a preferred run that doesn't cover the whole batch, falls back to
// automatic mode. An empty name (or "auto") means no preference.
func (e *Engine) RedefineWith(reqs []Request, preferred string) (res Result) {
	// Faults in the orchestration itself must reach the caller as a failed
	// result, never as a panic. Per-unit failures are handled further down
	// and don't get here.
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Success: false,
				Detail:  "engine fault\n",
				Err:     fmt.Errorf("engine fault: %v", r),
			}
		}
	}()

	log := e.log.With().Str("call", uuid.NewString()).Logger()

	if !e.Available() {
		log.Debug().Msg("redefinition unavailable")
		return Result{
			Success: false,
			Detail:  "redefinition unavailable\n",
			Err:     ErrUnavailable,
		}
	}
	if len(reqs) == 0 {
		return Result{Success: true}
	}

	var (
		total  Result
		detail strings.Builder
	)

	if preferred != "" && preferred != "auto" {
		s := e.lookup(preferred)
		switch {
		case s == nil:
			log.Debug().Str("strategy", preferred).Msg("preferred strategy unknown, using automatic order")
		case !s.Available():
			log.Debug().Str("strategy", preferred).Msg("preferred strategy unavailable, using automatic order")
		default:
			run := e.runBatch(s, reqs, log)
			total.merge(run, &detail)
			if run.Succeeded == len(reqs) {
				total.Success = true
				total.Strategy = s.Name()
				total.Detail = detail.String()
				return total
			}
			log.Debug().Str("strategy", s.Name()).
				Int("succeeded", run.Succeeded).
				Msg("preferred strategy incomplete, falling back")
		}
	}

	for _, s := range e.registry {
		if !s.Available() {
			log.Debug().Str("strategy", s.Name()).Msg("skipping unavailable strategy")
			continue
		}

		run := e.runBatch(s, reqs, log)
		total.merge(run, &detail)

		// First strategy with any success wins, even a partial one.
		// Weaker strategies are never consulted after that.
		if run.Succeeded > 0 {
			total.Success = true
			total.Strategy = s.Name()
			total.Detail = detail.String()
			return total
		}
	}

	// No single strategy claimed the batch. The call still counts as a
	// success if attempts across strategies added up to one.
	total.Success = total.Succeeded > 0
	total.Detail = detail.String()
	return total
}

func (e *Engine) lookup(name string) Strategy {
	for _, s := range e.registry {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// batchRun is one strategy's pass over the whole batch.
type batchRun struct {
	Processed int
	Succeeded int
	Units     []UnitOutcome
	Err       error
}

// merge folds one strategy run into the call totals. Both counters
// accumulate, so Succeeded <= Processed holds across multi-strategy calls.
func (r *Result) merge(run batchRun, detail *strings.Builder) {
	r.Processed += run.Processed
	r.Succeeded += run.Succeeded
	r.Units = append(r.Units, run.Units...)
	if run.Err != nil {
		r.Err = run.Err
	}
	for _, u := range run.Units {
		detail.WriteString(u.Detail)
		detail.WriteByte('\n')
	}
}

// runBatch executes one strategy over every request in order. A unit that
// fails to parse, a clean refusal, an internal error, even a panicking
// strategy: none of them stop the rest of the batch.
func (e *Engine) runBatch(s Strategy, reqs []Request, log zerolog.Logger) batchRun {
	var run batchRun

	for _, req := range reqs {
		run.Processed++
		out := UnitOutcome{Target: req.Target}

		var blob *CodeBlob
		if s.NeedsAnalysis() {
			blob = ParseBlob(req.Code)
			if !blob.Parsed() {
				out.Detail = fmt.Sprintf("%s: parse failure, %s", s.Name(), blob.Describe())
				run.Units = append(run.Units, out)
				continue
			}
		}

		ok, err := attempt(s, req.Target, req.Code, blob)
		switch {
		case err != nil:
			out.Err = err
			out.Detail = fmt.Sprintf("%s: %v", s.Name(), err)
			run.Err = err
		case ok:
			out.OK = true
			out.Detail = fmt.Sprintf("%s: unit %d redefined", s.Name(), req.Target)
			run.Succeeded++
		default:
			out.Detail = fmt.Sprintf("%s: not applicable to unit %d", s.Name(), req.Target)
		}
		run.Units = append(run.Units, out)
	}

	log.Debug().Str("strategy", s.Name()).
		Int("processed", run.Processed).
		Int("succeeded", run.Succeeded).
		Msg("batch complete")
	return run
}

// attempt shields the batch loop from a strategy that panics instead of
// returning an error.
func attempt(s Strategy, target Handle, code []byte, blob *CodeBlob) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%s: panic: %v", s.Name(), r)
		}
	}()
	return s.Attempt(target, code, blob)
}
