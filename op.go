// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"code.hybscloud.com/kont"
)

// hostDispatcher is the structural interface for host-op effects.
// DispatchHost issues the call through the Dispatcher and awaits its
// completion; the await is the suspension point of the cooperative
// model. A non-nil error is a protocol failure, not an op outcome.
type hostDispatcher interface {
	DispatchHost(d *Dispatcher) (kont.Resumed, error)
}

// LineResult is the outcome of a ReadLine effect. Err carries host
// signals (ErrEndOfInput, ErrInterrupted) or a read failure; signals
// never arrive through the normal completion value.
type LineResult struct {
	Line string
	Err  error
}

// ReadLine is the effect operation for reading one edited input line.
// Perform(ReadLine{Rid: rid, Prompt: p}) suspends until the host
// delivers a line, end of input, or an interruption.
type ReadLine struct {
	kont.Phantom[LineResult]
	Rid    int32
	Prompt string
}

// DispatchHost handles ReadLine through the asynchronous envelope path.
func (o ReadLine) DispatchHost(d *Dispatcher) (kont.Resumed, error) {
	line, err := ReadLineOp(d, o.Rid, o.Prompt)
	return LineResult{Line: line, Err: err}, nil
}

// WriteText is the effect operation for writing text to a host output
// stream. Resumes with the byte count from the minimal completion.
type WriteText struct {
	kont.Phantom[int32]
	Stream int32
	Text   string
}

// DispatchHost handles WriteText through the minimal-record path.
// Write failures are best-effort: there is no further channel to
// report a failure to report on.
func (o WriteText) DispatchHost(d *Dispatcher) (kont.Resumed, error) {
	n, _ := WriteStream(d, o.Stream, []byte(o.Text))
	return int32(n), nil
}

// FormatErr is the effect operation for rendering an error through the
// host's formatter. Resumes with the display text.
type FormatErr struct {
	kont.Phantom[string]
	Kind    string
	Message string
}

// DispatchHost handles FormatErr synchronously. If the host formatter
// itself fails, falls back to the raw kind and message so the report
// still happens.
func (o FormatErr) DispatchHost(d *Dispatcher) (kont.Resumed, error) {
	text, err := FormatErrorOp(d, o.Kind, o.Message)
	if err != nil {
		return o.Kind + ": " + o.Message, nil
	}
	return text, nil
}
