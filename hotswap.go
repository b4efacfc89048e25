package hotswap

// StrategyID is the closed set of strategy identifiers exposed to callers.
// StrategyAuto means "no preference": the engine picks in registry order.
type StrategyID int

const (
	StrategyAuto StrategyID = iota
	StrategyDirect
	StrategyConstantPool
	StrategyStructure
	StrategyRawMemory
	StrategyFallback
)

// String returns the engine-level strategy name, or "auto".
func (id StrategyID) String() string {
	switch id {
	case StrategyDirect:
		return nameDirect
	case StrategyConstantPool:
		return nameConstPool
	case StrategyStructure:
		return nameStructSwap
	case StrategyRawMemory:
		return nameRawMemory
	case StrategyFallback:
		return nameFallback
	default:
		return "auto"
	}
}

// Redefiner is the public entry point. It owns one Engine and is safe to
// share across goroutines, with the usual caveat that concurrent calls
// against the same unit are the caller's problem.
type Redefiner struct {
	engine *Engine
}

// New builds a Redefiner over the given low-level capability. Options are
// passed through to the engine.
func New(access Access, opts ...Option) *Redefiner {
	return &Redefiner{engine: NewEngine(access, opts...)}
}

// Redefine replaces the code behind each requested unit, picking the
// strategy automatically.
func (r *Redefiner) Redefine(reqs []Request) Result {
	return r.engine.Redefine(reqs)
}

// RedefineWith is Redefine with a preferred strategy. The preference falls
// back to automatic selection if it is unavailable or cannot cover the batch.
func (r *Redefiner) RedefineWith(reqs []Request, preferred StrategyID) Result {
	if preferred == StrategyAuto {
		return r.engine.Redefine(reqs)
	}
	return r.engine.RedefineWith(reqs, preferred.String())
}

// Available reports whether any redefinition can work in this process.
func (r *Redefiner) Available() bool {
	return r.engine.Available()
}

// Capabilities returns the per-strategy availability snapshot.
func (r *Redefiner) Capabilities() Capabilities {
	return r.engine.Capabilities()
}

// PendingIntents drains redefinitions the compatibility fallback accepted
// for deferred application.
func (r *Redefiner) PendingIntents() []PendingIntent {
	for _, s := range r.engine.registry {
		if fb, ok := s.(*compatibilityFallback); ok {
			return fb.drain()
		}
	}
	return nil
}
