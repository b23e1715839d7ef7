package namespace

import "errors"

var (
	ErrInvalidOwner  = errors.New("namespace: invalid owner identifier")
	ErrNotFound      = errors.New("namespace: not found")
	ErrIO            = errors.New("namespace: io failure")
	ErrRestoreSource = errors.New("namespace: no backup roots in source")
	ErrOpenRegistry  = errors.New("namespace: open registry db")
)
