// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"errors"
	"fmt"
)

// Protocol violation errors. Each is fatal to the operation that
// observes it; none is ever silently ignored.
var (
	// ErrMalformedRec reports a completion buffer that is not exactly
	// three 32-bit words.
	ErrMalformedRec = errors.New("repl: malformed completion record")

	// ErrUnknownCall reports a completion whose call id matches no
	// outstanding pending call: the correlation table and the host have
	// desynchronized. The Dispatcher escalates this to a panic.
	ErrUnknownCall = errors.New("repl: unknown correlation id")

	// ErrKindMismatch reports a response envelope whose declared kind
	// differs from the kind the collaborator expected.
	ErrKindMismatch = errors.New("repl: response kind mismatch")
)

// Host signals. Expected control conditions, not user-facing errors:
// each maps to a specific console transition and is never reported as
// a formatted error message.
var (
	// ErrEndOfInput is the host signal for end of input on the session's
	// input source (the user closed the stream).
	ErrEndOfInput = errors.New("repl: end of input")

	// ErrInterrupted is the host signal for a user interruption of the
	// awaited call. It surfaces only on the interrupted call's handle
	// and never resolves through the normal completion path.
	ErrInterrupted = errors.New("repl: interrupted")
)

// ErrOpFailed reports a minimal-shape op that completed with a negative
// result word. Minimal records carry no failure detail beyond the code.
var ErrOpFailed = errors.New("repl: op failed")

// Host error kinds carried inside response envelopes.
const (
	ErrKindEndOfInput  = "endOfInput"
	ErrKindInterrupted = "interrupted"
	ErrKindFail        = "fail"
)

// HostError is an op failure reported by the host inside a response
// envelope. Signal kinds unwrap to the corresponding sentinel so that
// callers match them with errors.Is.
type HostError struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

func (e *HostError) Error() string {
	if e.Message == "" {
		return "repl: host error: " + e.Kind
	}
	return "repl: host error: " + e.Message
}

// Unwrap maps signal kinds onto their sentinels.
func (e *HostError) Unwrap() error {
	switch e.Kind {
	case ErrKindEndOfInput:
		return ErrEndOfInput
	case ErrKindInterrupted:
		return ErrInterrupted
	}
	return nil
}

// violation escalates a protocol invariant violation. Once the table and
// the host disagree about outstanding calls no pending handle can be
// trusted, so the calling context is aborted rather than resumed.
func violation(format string, args ...any) {
	panic(fmt.Sprintf("repl: protocol violation: "+format, args...))
}
