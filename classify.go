// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"errors"
	"strings"
)

// EvalError is a failed evaluation reported by the Evaluator.
// Syntax marks compile-time failures. Thrown marks arbitrary values
// thrown by evaluated code, as opposed to errors originating in the
// evaluator or host.
type EvalError struct {
	Message string
	Syntax  bool
	Thrown  bool
}

func (e *EvalError) Error() string { return e.Message }

// Host formatter error kinds.
const (
	FormatThrown  = "thrown"
	FormatSyntax  = "syntax"
	FormatGeneric = "error"
)

// recoverablePatterns is the closed set of compile error texts that
// mean "input looks incomplete". The evaluator cannot itself express
// incomplete-but-valid-prefix, so the console approximates it from
// known texts. The list is not exhaustive: errors raised inside nested
// template expressions are not covered.
var recoverablePatterns = [...]string{
	"Unexpected end of input",
	"Missing initializer in const declaration",
	"Missing catch or finally after try",
	"missing ) after argument list",
	"Unterminated template literal",
}

// recoverable reports whether err is a compile-time failure matching
// the closed pattern set (plus any session-specific extras), i.e. the
// console should accumulate more input instead of reporting.
func recoverable(err error, extra []string) bool {
	var ee *EvalError
	if !errors.As(err, &ee) || !ee.Syntax {
		return false
	}
	for _, p := range recoverablePatterns {
		if strings.Contains(ee.Message, p) {
			return true
		}
	}
	for _, p := range extra {
		if strings.Contains(ee.Message, p) {
			return true
		}
	}
	return false
}

// evalErrorKind maps an evaluation failure onto the host formatter's
// kinds, distinguishing thrown values from evaluator-originated errors.
func evalErrorKind(err error) (kind, message string) {
	var ee *EvalError
	if errors.As(err, &ee) {
		switch {
		case ee.Thrown:
			return FormatThrown, ee.Message
		case ee.Syntax:
			return FormatSyntax, ee.Message
		}
		return FormatGeneric, ee.Message
	}
	return FormatGeneric, err.Error()
}
