package schema

import (
	stderrors "errors"

	"github.com/wippyai/bitfield/errors"
)

func asError(err error, target **errors.Error) bool {
	return stderrors.As(err, target)
}

func errorsIs(err error, target *errors.Error) bool {
	return stderrors.Is(err, target)
}
