package hook

import "errors"

var (
	ErrAlreadyInstalled  = errors.New("hook: already installed")
	ErrNotInstalled      = errors.New("hook: not installed")
	ErrTargetNotFound    = errors.New("hook: target not found")
	ErrAmbiguousTarget   = errors.New("hook: ambiguous target")
	ErrInstallFailed     = errors.New("hook: install failed")
	ErrRemoveFailed      = errors.New("hook: remove failed")
	ErrStaleHandle       = errors.New("hook: stale backup handle")
	ErrInvalidDescriptor = errors.New("hook: invalid descriptor")
)
