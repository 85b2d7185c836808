// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/peterh/liner"
	"golang.org/x/term"
)

// request is one queued asynchronous host request.
type request struct {
	id   CallID
	op   Op
	req  []byte
	data []byte
}

// requestCapacity bounds the request queue, mirroring the completion
// queue on the other side of the boundary.
const requestCapacity = 8

// errHostClosed rejects requests arriving after Close.
var errHostClosed = errors.New("repl: host closed")

// ridOffset keeps session resource ids above the well-known stream
// ids, so the two id spaces never collide.
const ridOffset = StreamStderr

// TermHost is the in-process reference Host: line editing and input
// history via liner, filesystem ops via the os package.
//
// Synchronous ops run inline on the calling goroutine. Asynchronous
// ops travel through a bounded SPSC request queue to a single worker
// goroutine, which produces completions back through the Completer —
// one producer, one consumer in each direction.
//
// The liner state is shared between the worker (prompting) and the
// sync start/end ops (history). Under the cooperative model this is
// safe: the console awaits every read before ending the session, so
// the two never overlap.
type TermHost struct {
	c        Completer
	reqQ     lfq.SPSC[request]
	closed   atomix.Uint32
	rids     atomix.Uint32
	ln       *liner.State
	rid      int32
	histPath string
}

// NewTermHost creates a terminal host. The returned host is inert
// until a Dispatcher attaches to it.
func NewTermHost() *TermHost {
	h := &TermHost{}
	h.reqQ.Init(requestCapacity)
	return h
}

// Attach implements Host. Starts the worker goroutine.
func (h *TermHost) Attach(c Completer) {
	h.c = c
	go h.worker()
}

// Sync implements Host for ops satisfied without yielding.
func (h *TermHost) Sync(op Op, req, _ []byte) ([]byte, error) {
	switch op {
	case OpStart:
		return h.syncStart(req)
	case OpEnd:
		return h.syncEnd(req)
	case OpFormatError:
		return h.syncFormatError(req)
	case OpEnv:
		return h.syncEnv(req)
	case OpSetEnv:
		return h.syncSetEnv(req)
	case OpHomeDir:
		return h.syncHomeDir(req)
	case OpExecPath:
		return h.syncExecPath(req)
	case OpIsTTY:
		return h.syncIsTTY(req)
	}
	return nil, fmt.Errorf("repl: op %d has no synchronous handler", op)
}

// Async implements Host. The request is copied before returning and
// served by the worker; iox.ErrWouldBlock reports queue backpressure.
func (h *TermHost) Async(id CallID, op Op, req, data []byte) error {
	if h.closed.Load() != 0 {
		return errHostClosed
	}
	r := request{
		id:   id,
		op:   op,
		req:  append([]byte(nil), req...),
		data: append([]byte(nil), data...),
	}
	return h.reqQ.Enqueue(&r)
}

// Close implements Host. Best-effort: persists history if a session is
// still open and stops accepting requests. The worker drains what it
// already holds and exits.
func (h *TermHost) Close() error {
	if !h.closed.CompareAndSwap(0, 1) {
		return nil
	}
	if h.ln == nil {
		return nil
	}
	h.persistHistory()
	err := h.ln.Close()
	h.ln = nil
	return err
}

func (h *TermHost) worker() {
	var bo iox.Backoff
	for {
		r, err := h.reqQ.Dequeue()
		if err != nil {
			if h.closed.Load() != 0 {
				return
			}
			bo.Wait()
			continue
		}
		bo.Reset()
		h.serve(r)
	}
}

func (h *TermHost) serve(r request) {
	switch r.op {
	case OpReadLine:
		h.serveReadLine(r)
	case OpWrite:
		h.serveWrite(r)
	case OpMkdir:
		h.serveMkdir(r)
	case OpMakeTempDir:
		h.serveMakeTempDir(r)
	default:
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindFail, fmt.Sprintf("unsupported async op %d", r.op)))
	}
}

func (h *TermHost) serveReadLine(r request) {
	var rq ReadLineReq
	if err := OpenRequest(r.req, KindReadLine, &rq); err != nil {
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindFail, err.Error()))
		return
	}
	if h.ln == nil || rq.Rid != h.rid {
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindFail, "no such session"))
		return
	}
	line, err := h.ln.Prompt(rq.Prompt)
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindInterrupted, ""))
	case errors.Is(err, io.EOF):
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindEndOfInput, ""))
	case err != nil:
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindFail, err.Error()))
	default:
		if strings.TrimSpace(line) != "" {
			h.ln.AppendHistory(line)
		}
		raw, merr := NewResponse(KindReadLineRes, r.id, ReadLineRes{Line: line})
		if merr != nil {
			raw = NewErrResponse(r.id, ErrKindFail, merr.Error())
		}
		h.c.Complete(r.op, raw)
	}
}

func (h *TermHost) serveWrite(r request) {
	rec, err := DecodeRec(r.req)
	if err != nil {
		// The request id still names the call; a silent drop would
		// leave the caller awaiting forever.
		h.c.Complete(r.op, EncodeRec(make([]byte, recBytes), Rec{CallID: r.id, Result: -1}))
		return
	}
	var w io.Writer
	switch rec.Arg {
	case StreamStdout:
		w = os.Stdout
	case StreamStderr:
		w = os.Stderr
	}
	result := int32(-1)
	if w != nil {
		if n, werr := w.Write(r.data); werr == nil {
			result = int32(n)
		}
	}
	h.c.Complete(r.op, EncodeRec(make([]byte, recBytes), Rec{CallID: rec.CallID, Result: result}))
}

func (h *TermHost) serveMkdir(r request) {
	var rq MkdirReq
	if err := OpenRequest(r.req, KindMkdir, &rq); err != nil {
		h.c.Complete(r.op, EncodeRec(make([]byte, recBytes), Rec{CallID: r.id, Result: -1}))
		return
	}
	mode := fs.FileMode(rq.Mode)
	if mode == 0 {
		mode = 0o777
	}
	var err error
	if rq.Recursive {
		err = os.MkdirAll(rq.Path, mode)
	} else {
		err = os.Mkdir(rq.Path, mode)
	}
	result := int32(0)
	if err != nil {
		result = -1
	}
	h.c.Complete(r.op, EncodeRec(make([]byte, recBytes), Rec{CallID: r.id, Result: result}))
}

func (h *TermHost) serveMakeTempDir(r request) {
	var rq MakeTempDirReq
	if err := OpenRequest(r.req, KindMakeTempDir, &rq); err != nil {
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindFail, err.Error()))
		return
	}
	path, err := os.MkdirTemp(rq.Dir, rq.Prefix+"*"+rq.Suffix)
	if err != nil {
		h.c.Complete(r.op, NewErrResponse(r.id, ErrKindFail, err.Error()))
		return
	}
	raw, merr := NewResponse(KindMakeTempDirRes, r.id, MakeTempDirRes{Path: path})
	if merr != nil {
		raw = NewErrResponse(r.id, ErrKindFail, merr.Error())
	}
	h.c.Complete(r.op, raw)
}

func (h *TermHost) syncStart(req []byte) ([]byte, error) {
	var rq StartReq
	if err := OpenRequest(req, KindStart, &rq); err != nil {
		return nil, err
	}
	if h.ln != nil {
		return NewErrResponse(0, ErrKindFail, "session already open"), nil
	}
	h.histPath = historyPath(rq.HistoryFile)
	h.ln = liner.NewLiner()
	h.ln.SetCtrlCAborts(true)
	if f, err := os.Open(h.histPath); err == nil {
		_, _ = h.ln.ReadHistory(f)
		_ = f.Close()
	}
	h.rid = int32(h.rids.Add(1)) + ridOffset
	return NewResponse(KindStartRes, 0, StartRes{Rid: h.rid})
}

func (h *TermHost) syncEnd(req []byte) ([]byte, error) {
	var rq EndReq
	if err := OpenRequest(req, KindEnd, &rq); err != nil {
		return nil, err
	}
	if h.ln == nil || rq.Rid != h.rid {
		return NewErrResponse(0, ErrKindFail, "no such session"), nil
	}
	h.persistHistory()
	err := h.ln.Close()
	h.ln = nil
	if err != nil {
		return NewErrResponse(0, ErrKindFail, err.Error()), nil
	}
	return NewResponse(KindEndRes, 0, struct{}{})
}

func (h *TermHost) syncFormatError(req []byte) ([]byte, error) {
	var rq FormatErrorReq
	if err := OpenRequest(req, KindFormatError, &rq); err != nil {
		return nil, err
	}
	var text string
	switch rq.Kind {
	case FormatThrown:
		text = "Thrown: " + rq.Message
	case FormatSyntax:
		text = "SyntaxError: " + rq.Message
	default:
		text = "error: " + rq.Message
	}
	return NewResponse(KindFormatErrorRes, 0, FormatErrorRes{Text: text})
}

func (h *TermHost) syncEnv(req []byte) ([]byte, error) {
	if err := OpenRequest(req, KindEnv, nil); err != nil {
		return nil, err
	}
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return NewResponse(KindEnvRes, 0, EnvRes{Vars: vars})
}

func (h *TermHost) syncSetEnv(req []byte) ([]byte, error) {
	var rq SetEnvReq
	if err := OpenRequest(req, KindSetEnv, &rq); err != nil {
		return nil, err
	}
	if err := os.Setenv(rq.Key, rq.Value); err != nil {
		return NewErrResponse(0, ErrKindFail, err.Error()), nil
	}
	return NewResponse(KindSetEnvRes, 0, struct{}{})
}

func (h *TermHost) syncHomeDir(req []byte) ([]byte, error) {
	if err := OpenRequest(req, KindHomeDir, nil); err != nil {
		return nil, err
	}
	// An undeterminable home is reported as empty, not as a failure.
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return NewResponse(KindHomeDirRes, 0, HomeDirRes{Path: home})
}

func (h *TermHost) syncExecPath(req []byte) ([]byte, error) {
	if err := OpenRequest(req, KindExecPath, nil); err != nil {
		return nil, err
	}
	exe, err := os.Executable()
	if err != nil {
		return NewErrResponse(0, ErrKindFail, err.Error()), nil
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return NewResponse(KindExecPathRes, 0, ExecPathRes{Path: filepath.Clean(exe)})
}

func (h *TermHost) syncIsTTY(req []byte) ([]byte, error) {
	if err := OpenRequest(req, KindIsTTY, nil); err != nil {
		return nil, err
	}
	res := IsTTYRes{
		Stdin:  term.IsTerminal(int(os.Stdin.Fd())),
		Stdout: term.IsTerminal(int(os.Stdout.Fd())),
		Stderr: term.IsTerminal(int(os.Stderr.Fd())),
	}
	return NewResponse(KindIsTTYRes, 0, res)
}

func (h *TermHost) persistHistory() {
	if f, err := os.Create(h.histPath); err == nil {
		_, _ = h.ln.WriteHistory(f)
		_ = f.Close()
	}
}

// historyPath resolves a history file name: absolute paths are used as
// given, bare names live under the user's home directory.
func historyPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}
