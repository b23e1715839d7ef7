package redirect

import "errors"

var (
	ErrEmptyPath = errors.New("redirect: empty path")
)
