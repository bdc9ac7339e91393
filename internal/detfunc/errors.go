package detfunc

import "github.com/onsetgo/correntropy/internal/errors"

// Error kinds surfaced by Core, matching spec section 7's closed set —
// replacing the original's inconsistent 0/1/negative integer codes with a
// single enum.
type Kind int

const (
	KindNone Kind = iota
	KindConfigInvalid
	KindWrongChunkLength
	KindStreamTooShort
	KindStreamAlreadyTerminated
	KindResampleFailure
	KindAllocationFailure
	KindInternalInvariant
)

func (k Kind) String() string {
	switch k {
	case KindConfigInvalid:
		return "ConfigInvalid"
	case KindWrongChunkLength:
		return "WrongChunkLength"
	case KindStreamTooShort:
		return "StreamTooShort"
	case KindStreamAlreadyTerminated:
		return "StreamAlreadyTerminated"
	case KindResampleFailure:
		return "ResampleFailure"
	case KindAllocationFailure:
		return "AllocationFailure"
	case KindInternalInvariant:
		return "InternalInvariant"
	default:
		return "None"
	}
}

// CoreError is the error type every Core method returns on failure. It
// wraps the errors.EnhancedError builder so callers get both a Kind to
// match on (after errors.As into *CoreError) and structured context for
// logging.
type CoreError struct {
	Kind Kind
	*errors.EnhancedError
}

func newCoreError(kind Kind, msg string, ctx map[string]any) *CoreError {
	b := errors.New(errors.NewStd(msg)).
		Component("detfunc").
		Category(categoryFor(kind))
	for k, v := range ctx {
		b = b.Context(k, v)
	}
	return &CoreError{Kind: kind, EnhancedError: b.Build()}
}

func categoryFor(kind Kind) errors.ErrorCategory {
	switch kind {
	case KindConfigInvalid:
		return errors.CategoryConfiguration
	case KindResampleFailure:
		return errors.CategoryResample
	default:
		return errors.CategoryDetFunc
	}
}
