package lowering

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is wrapped by errors caused by the arguments of the operation being lowered:
	// an axis out of range, a malformed "reduce all" sentinel, or arguments of the wrong kind or count.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInternalInconsistency is wrapped by errors signaling a broken contract between the lowering
	// and its callers, e.g. a mapping invoked with the wrong number of index variables.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

func invalidArgumentf(format string, args ...any) error {
	return errors.WithMessagef(ErrInvalidArgument, format, args...)
}

func internalInconsistencyf(format string, args ...any) error {
	return errors.WithMessagef(ErrInternalInconsistency, format, args...)
}
