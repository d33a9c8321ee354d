// Package kgerr defines the error taxonomy used across the knowledge graph
// core. It follows the teacher's convention of small sentinel errors
// (storage.ErrDBNotInitialized, compact.ErrAPIKeyRequired) wrapped with
// fmt.Errorf("...: %w", ...) rather than a hierarchy of custom types.
package kgerr

import "errors"

// Kind is a coarse error category, matching spec.md §7's taxonomy. It is not
// a type of its own error value - individual sentinels below carry it via
// errors.Is so callers can branch with a single comparison.
type Kind int

const (
	KindNotFound Kind = iota
	KindConflict
	KindBadInput
	KindExternalToolMissing
	KindExternalToolFailed
	KindTimeout
	KindIntegrity
)

// Sentinel errors, one per taxonomy kind. Wrap with fmt.Errorf("doing x: %w", ErrNotFound)
// to attach call-site detail while preserving errors.Is matching.
var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrBadInput             = errors.New("bad input")
	ErrExternalToolMissing  = errors.New("external tool missing")
	ErrExternalToolFailed   = errors.New("external tool failed")
	ErrTimeout              = errors.New("timeout")
	ErrIntegrity            = errors.New("integrity violation")
)

// kindErrors maps each Kind to its sentinel, for CLI exit-code mapping.
var kindErrors = map[Kind]error{
	KindNotFound:            ErrNotFound,
	KindConflict:            ErrConflict,
	KindBadInput:            ErrBadInput,
	KindExternalToolMissing: ErrExternalToolMissing,
	KindExternalToolFailed:  ErrExternalToolFailed,
	KindTimeout:             ErrTimeout,
	KindIntegrity:           ErrIntegrity,
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	sentinel, ok := kindErrors[kind]
	if !ok {
		return false
	}
	return errors.Is(err, sentinel)
}

// ExitCode maps an error to a CLI exit code: 0 for nil, 1 for any other
// error. Argument-parsing errors raised by cobra itself are not told apart
// and also map to 1; no error maps to 2.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
