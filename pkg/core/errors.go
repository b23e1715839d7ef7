package core

import "errors"

var (
	ErrAlreadyStarted   = errors.New("core: already started")
	ErrNotStarted       = errors.New("core: not started")
	ErrHostUnsupported  = errors.New("core: no host implementation for target")
	ErrCreateEmitter    = errors.New("core: create event emitter")
	ErrCreateNamespaces = errors.New("core: create namespace manager")
)
