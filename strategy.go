package hotswap

// Strategy is one named redefinition technique. Implementations are stateless
// apart from the injected Access; availability may change over the process
// lifetime as capabilities are probed, but NeedsAnalysis is static per
// variant.
//
// Attempt returns (false, nil) for a clean "could not redefine this unit" and
// a non-nil error only for internal failures worth capturing.
type Strategy interface {
	Name() string
	Available() bool
	NeedsAnalysis() bool
	Attempt(target Handle, code []byte, blob *CodeBlob) (bool, error)
}

// Registry order, most powerful and most compatible first. The engine walks
// this order and stops at the first strategy that redefines anything.
const (
	nameDirect     = "DirectMethodReplacement"
	nameConstPool  = "ConstantPoolPatch"
	nameStructSwap = "InternalStructureSwap"
	nameRawMemory  = "RawMemoryPatch"
	nameFallback   = "CompatibilityFallback"
)

// newRegistry builds the fixed strategy list. Built once per engine and never
// mutated afterwards, so it is safe to share across callers.
func newRegistry(access Access) []Strategy {
	return []Strategy{
		&directReplacement{access: access},
		&constantPoolPatch{access: access},
		&structureSwap{access: access},
		&rawMemoryPatch{access: access},
		&compatibilityFallback{access: access},
	}
}
