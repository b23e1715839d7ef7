package hooks

import "errors"

var (
	ErrBadArgument  = errors.New("hooks: unexpected argument shape")
	ErrAccessDenied = errors.New("hooks: network access denied")
)
