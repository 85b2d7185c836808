// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"errors"
	"strings"

	"code.hybscloud.com/kont"
)

// Prompts distinguishing top-level from continuation input.
const (
	PromptTopLevel     = "> "
	PromptContinuation = "  "
)

// DefaultHistoryFile is the host-side history resource opened when the
// session does not name one.
const DefaultHistoryFile = ".repl_history"

// Evaluator evaluates accumulated source and renders its result for
// display. Failures are reported as *EvalError values so the console
// can classify them; any other error is treated as evaluator-originated.
type Evaluator interface {
	Eval(source string) (string, error)
}

// Command is a console command consulted for top-level lines before
// evaluation. It returns whether the session should quit and with
// which exit code. Commands are scoped to their session; no shared
// global state is touched.
type Command func(s *Session) (quit bool, code int)

// DefaultCommands returns the built-in command table.
func DefaultCommands() map[string]Command {
	return map[string]Command{
		"exit": func(*Session) (bool, int) { return true, 0 },
		"help": func(s *Session) (bool, int) {
			_, _ = WriteStream(s.d, StreamStdout, []byte("exit    leave the console\nhelp    show this list\n"))
			return false, 0
		},
	}
}

// Console read-eval modes.
type consoleMode uint8

const (
	modeTopLevel consoleMode = iota
	modeContinuation
	modeEvaluating
)

// consoleState is the loop state: the current mode and the source
// accumulated across input lines not yet successfully evaluated.
type consoleState struct {
	mode    consoleMode
	pending string
}

// stepOut is one loop transition: Left(next state) or Right(exit code).
type stepOut = kont.Either[consoleState, int]

// Session orchestrates interactive evaluation over one host input and
// history resource. Zero-value fields fall back to defaults; callers
// may override prompts indirectly through their own host, and the
// pattern set through Patterns.
type Session struct {
	// Eval evaluates accumulated source. Required.
	Eval Evaluator
	// HistoryFile names the host-side history resource.
	// Empty means DefaultHistoryFile.
	HistoryFile string
	// Patterns holds evaluator-specific recoverable error texts checked
	// in addition to the built-in set.
	Patterns []string
	// Commands is the session's command table. Nil means
	// DefaultCommands().
	Commands map[string]Command

	d   *Dispatcher
	rid int32
}

// NewSession creates a console session dispatching through d.
func NewSession(d *Dispatcher, eval Evaluator) *Session {
	return &Session{Eval: eval, d: d}
}

// Run drives the console until it quits and returns the process exit
// code: 0 on end of input, 1 on a reported failure or top-level
// interruption. The session resource is released on every exit path,
// including a panicking one; a release failure is swallowed since the
// resource may already be gone.
func (s *Session) Run() int {
	if s.HistoryFile == "" {
		s.HistoryFile = DefaultHistoryFile
	}
	if s.Commands == nil {
		s.Commands = DefaultCommands()
	}
	rid, err := StartSession(s.d, s.HistoryFile)
	if err != nil {
		return 1
	}
	s.rid = rid
	defer func() {
		_ = EndSession(s.d, rid)
	}()
	return Exec(s.d, s.protocol())
}

// protocol is the console state machine as a recursive host-op
// protocol. One host call is in flight at any time: each read is
// awaited before the next transition.
func (s *Session) protocol() kont.Eff[int] {
	return Loop(consoleState{mode: modeTopLevel}, s.step)
}

func (s *Session) step(st consoleState) kont.Eff[stepOut] {
	switch st.mode {
	case modeTopLevel:
		return ReadLineBind(s.rid, PromptTopLevel, s.topLevelLine)
	case modeContinuation:
		return ReadLineBind(s.rid, PromptContinuation, func(r LineResult) kont.Eff[stepOut] {
			return s.continuationLine(st, r)
		})
	default:
		return s.evaluate(st)
	}
}

func stay(next consoleState) kont.Eff[stepOut] {
	return kont.Pure(kont.Left[consoleState, int](next))
}

func quit(code int) kont.Eff[stepOut] {
	return kont.Pure(kont.Right[consoleState, int](code))
}

// topLevelLine classifies the outcome of a top-level read. Blank lines
// are discarded and re-prompted; end of input quits silently with 0;
// an interruption quits silently with 1; any other failure is reported
// and quits with 1.
func (s *Session) topLevelLine(r LineResult) kont.Eff[stepOut] {
	switch {
	case errors.Is(r.Err, ErrEndOfInput):
		return quit(0)
	case errors.Is(r.Err, ErrInterrupted):
		return quit(1)
	case r.Err != nil:
		return ReportThen(FormatGeneric, r.Err.Error(), quit(1))
	}
	trimmed := strings.TrimSpace(r.Line)
	if trimmed == "" {
		return stay(consoleState{mode: modeTopLevel})
	}
	if cmd, ok := s.Commands[trimmed]; ok {
		if q, code := cmd(s); q {
			return quit(code)
		}
		return stay(consoleState{mode: modeTopLevel})
	}
	return stay(consoleState{mode: modeEvaluating, pending: r.Line})
}

// evaluate submits the pending source. Success prints and returns to
// top level; a recoverable compile failure keeps the input and reads a
// continuation line without reporting; anything else is reported and
// the pending source discarded.
func (s *Session) evaluate(st consoleState) kont.Eff[stepOut] {
	out, err := s.Eval.Eval(st.pending)
	if err == nil {
		return WriteThen(StreamStdout, out+"\n", stay(consoleState{mode: modeTopLevel}))
	}
	if recoverable(err, s.Patterns) {
		return stay(consoleState{mode: modeContinuation, pending: st.pending})
	}
	kind, msg := evalErrorKind(err)
	return ReportThen(kind, msg, stay(consoleState{mode: modeTopLevel}))
}

// continuationLine appends a continuation read to the pending source.
// An interruption abandons the accumulated input and returns to top
// level without reporting; end of input quits with 0; any other
// failure is reported and quits with 1.
func (s *Session) continuationLine(st consoleState, r LineResult) kont.Eff[stepOut] {
	switch {
	case errors.Is(r.Err, ErrEndOfInput):
		return quit(0)
	case errors.Is(r.Err, ErrInterrupted):
		return stay(consoleState{mode: modeTopLevel})
	case r.Err != nil:
		return ReportThen(FormatGeneric, r.Err.Error(), quit(1))
	}
	return stay(consoleState{mode: modeEvaluating, pending: st.pending + "\n" + r.Line})
}
