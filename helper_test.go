// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl_test

import (
	"strings"

	"code.hybscloud.com/repl"
)

// stubHost is a minimal in-memory Host for dispatcher tests. Handlers
// run inline on the dispatching goroutine, so completions delivered
// from async are already queued when the caller awaits.
type stubHost struct {
	c      repl.Completer
	sync   func(op repl.Op, req []byte) ([]byte, error)
	async  func(c repl.Completer, id repl.CallID, op repl.Op, req, data []byte) error
	closed bool
}

func (h *stubHost) Attach(c repl.Completer) { h.c = c }

func (h *stubHost) Sync(op repl.Op, req, _ []byte) ([]byte, error) {
	return h.sync(op, req)
}

func (h *stubHost) Async(id repl.CallID, op repl.Op, req, data []byte) error {
	// The contract says req and data are only valid until return.
	return h.async(h.c, id, op, append([]byte(nil), req...), append([]byte(nil), data...))
}

func (h *stubHost) Close() error {
	h.closed = true
	return nil
}

// lineStep scripts one readLine outcome. kind "" is a successful read;
// any other value is delivered as a host error of that kind.
type lineStep struct {
	line string
	kind string
}

// scriptHost is an in-memory Host driving a console session from a
// fixed read script. Every op is served inline; writes and host-side
// bookkeeping are captured for assertions. An exhausted script reads
// as end of input.
type scriptHost struct {
	c       repl.Completer
	script  []lineStep
	prompts []string
	stdout  strings.Builder
	stderr  strings.Builder
	history []string
	started int
	ended   int
	closed  bool
}

const scriptRid int32 = 7

func (h *scriptHost) Attach(c repl.Completer) { h.c = c }

func (h *scriptHost) Sync(op repl.Op, req, _ []byte) ([]byte, error) {
	switch op {
	case repl.OpStart:
		var rq repl.StartReq
		if err := repl.OpenRequest(req, repl.KindStart, &rq); err != nil {
			return nil, err
		}
		h.started++
		return repl.NewResponse(repl.KindStartRes, 0, repl.StartRes{Rid: scriptRid})
	case repl.OpEnd:
		h.ended++
		return repl.NewResponse(repl.KindEndRes, 0, nil)
	case repl.OpFormatError:
		var rq repl.FormatErrorReq
		if err := repl.OpenRequest(req, repl.KindFormatError, &rq); err != nil {
			return nil, err
		}
		return repl.NewResponse(repl.KindFormatErrorRes, 0, repl.FormatErrorRes{Text: renderReport(rq.Kind, rq.Message)})
	}
	return nil, repl.ErrKindMismatch
}

// renderReport mirrors the terminal host's formatting so console tests
// assert the text a user would actually see.
func renderReport(kind, message string) string {
	switch kind {
	case repl.FormatThrown:
		return "Thrown: " + message
	case repl.FormatSyntax:
		return "SyntaxError: " + message
	}
	return "error: " + message
}

func (h *scriptHost) Async(id repl.CallID, op repl.Op, req, data []byte) error {
	switch op {
	case repl.OpReadLine:
		var rq repl.ReadLineReq
		if err := repl.OpenRequest(req, repl.KindReadLine, &rq); err != nil {
			h.c.Complete(op, repl.NewErrResponse(id, repl.ErrKindFail, err.Error()))
			return nil
		}
		h.prompts = append(h.prompts, rq.Prompt)
		if len(h.script) == 0 {
			h.c.Complete(op, repl.NewErrResponse(id, repl.ErrKindEndOfInput, ""))
			return nil
		}
		step := h.script[0]
		h.script = h.script[1:]
		if step.kind != "" {
			h.c.Complete(op, repl.NewErrResponse(id, step.kind, step.line))
			return nil
		}
		if strings.TrimSpace(step.line) != "" {
			h.history = append(h.history, step.line)
		}
		raw, err := repl.NewResponse(repl.KindReadLineRes, id, repl.ReadLineRes{Line: step.line})
		if err != nil {
			raw = repl.NewErrResponse(id, repl.ErrKindFail, err.Error())
		}
		h.c.Complete(op, raw)
		return nil
	case repl.OpWrite:
		rec, err := repl.DecodeRec(req)
		if err != nil {
			return err
		}
		switch rec.Arg {
		case repl.StreamStdout:
			h.stdout.Write(data)
		case repl.StreamStderr:
			h.stderr.Write(data)
		}
		buf := make([]byte, 12)
		h.c.Complete(op, repl.EncodeRec(buf, repl.Rec{CallID: rec.CallID, Result: int32(len(data))}))
		return nil
	}
	h.c.Complete(op, repl.NewErrResponse(id, repl.ErrKindFail, "unsupported op"))
	return nil
}

func (h *scriptHost) Close() error {
	h.closed = true
	return nil
}

// scriptEval evaluates from a handler func and records every submitted
// source, accumulated continuations included.
type scriptEval struct {
	fn    func(source string) (string, error)
	calls []string
}

func (e *scriptEval) Eval(source string) (string, error) {
	e.calls = append(e.calls, source)
	return e.fn(source)
}

// newConsole wires a scripted host, dispatcher, and session together.
func newConsole(script []lineStep, fn func(string) (string, error)) (*repl.Session, *scriptHost, *scriptEval) {
	h := &scriptHost{script: script}
	d := repl.NewDispatcher(h)
	ev := &scriptEval{fn: fn}
	return repl.NewSession(d, ev), h, ev
}
