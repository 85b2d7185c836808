// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"errors"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// Op identifies one kind of work item delegated to the host runtime.
// The tag travels out-of-band next to the request and completion
// payloads; the correlation table never interprets it.
type Op uint32

const (
	OpStart Op = iota + 1
	OpEnd
	OpReadLine
	OpWrite
	OpMkdir
	OpMakeTempDir
	OpFormatError
	OpEnv
	OpSetEnv
	OpHomeDir
	OpExecPath
	OpIsTTY
)

// Minimal reports whether op completes with the three-word record
// instead of a response envelope. Used only for demultiplexing at the
// Dispatcher.
func (op Op) Minimal() bool {
	switch op {
	case OpWrite, OpMkdir:
		return true
	}
	return false
}

// Host is the privileged runtime on the far side of the boundary.
//
// Sync must satisfy the request without yielding and return the
// response envelope directly. Async submits a long-latency request and
// returns before it finishes; the matching completion arrives later
// through the Completer handed over in Attach. Async returns
// iox.ErrWouldBlock on request backpressure.
//
// req and data are valid only until the call returns; the host must
// copy or consume them before then.
type Host interface {
	Attach(Completer)
	Sync(op Op, req, data []byte) ([]byte, error)
	Async(id CallID, op Op, req, data []byte) error
	Close() error
}

// Completer is the host's completion sink. Complete delivers the raw
// completion payload for one finished asynchronous op: a three-word
// record for minimal-shape ops, a response envelope otherwise. It is
// called from a single host goroutine and may wait briefly on
// completion-queue backpressure.
type Completer interface {
	Complete(op Op, raw []byte)
}

// completion is one queued host completion awaiting routing.
type completion struct {
	op  Op
	raw []byte
}

// completionCapacity bounds the completion queue. The console keeps at
// most one call outstanding; the headroom covers independent
// collaborators issuing concurrent asynchronous calls.
const completionCapacity = 8

// Dispatcher is the only path to the host. It owns the correlation
// table, the record scratch buffer, and the bounded completion queue
// (single producer: the host goroutine; single consumer: the
// dispatching goroutine).
//
// All Dispatcher methods except Complete must be called from one
// goroutine. Under the cooperative model this is the construction that
// makes register/resolve race-free and the shared scratch buffer safe;
// parallel callers would need a dispatcher each.
type Dispatcher struct {
	host    Host
	table   *Table
	comp    lfq.SPSC[completion]
	scratch [recBytes]byte
}

// NewDispatcher creates a dispatcher bound to host and attaches itself
// as the host's completion sink.
func NewDispatcher(host Host) *Dispatcher {
	d := &Dispatcher{host: host, table: NewTable()}
	d.comp.Init(completionCapacity)
	host.Attach(d)
	return d
}

// CallSync writes the request, invokes the host synchronously, and
// returns with the response envelope already materialized.
func (d *Dispatcher) CallSync(op Op, req []byte) ([]byte, error) {
	return d.host.Sync(op, req, nil)
}

// CallAsync registers a pending call, sends the request, and returns
// the handle the issuer awaits. Waits past iox.ErrWouldBlock from the
// host with adaptive backoff; any other send failure resolves the
// handle with that failure so no table entry leaks.
func (d *Dispatcher) CallAsync(op Op, req, data []byte) (*Pending, error) {
	id, p := d.table.Register()
	return d.send(id, p, op, req, data)
}

// CallAsyncRec issues a minimal-shape asynchronous call. The request
// record [id, arg, len(data)] is packed into the dispatcher's scratch
// buffer, avoiding a per-call allocation.
func (d *Dispatcher) CallAsyncRec(op Op, arg int32, data []byte) (*Pending, error) {
	id, p := d.table.Register()
	req := EncodeRec(d.scratch[:], Rec{CallID: id, Arg: arg, Result: int32(len(data))})
	return d.send(id, p, op, req, data)
}

// CallAsyncEnvelope issues an envelope-framed asynchronous call. The
// request envelope carries the registered call id; the completion will
// echo it.
func (d *Dispatcher) CallAsyncEnvelope(op Op, kind string, body any) (*Pending, error) {
	id, p := d.table.Register()
	req, err := NewRequest(kind, id, body)
	if err != nil {
		_ = d.table.Resolve(id, Completion{Err: err})
		return nil, err
	}
	return d.send(id, p, op, req, nil)
}

func (d *Dispatcher) send(id CallID, p *Pending, op Op, req, data []byte) (*Pending, error) {
	var bo iox.Backoff
	for {
		err := d.host.Async(id, op, req, data)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, iox.ErrWouldBlock) {
			_ = d.table.Resolve(id, Completion{Err: err})
			return nil, err
		}
		bo.Wait()
	}
}

// OnCompletion decodes one raw completion and resolves the matching
// pending call. This is the sole producer side of every outstanding
// handle. Decode failures report before any pending call is touched.
func (d *Dispatcher) OnCompletion(op Op, raw []byte) error {
	if op.Minimal() {
		rec, err := DecodeRec(raw)
		if err != nil {
			return err
		}
		c := Completion{Result: rec.Result}
		if rec.Result < 0 {
			c.Err = ErrOpFailed
		}
		return d.table.Resolve(rec.CallID, c)
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	c := Completion{Data: raw}
	if env.Err != nil {
		c.Err = env.Err
	}
	return d.table.Resolve(env.ID, c)
}

// Complete implements Completer. Waits past completion-queue
// backpressure with adaptive backoff; the queue is bounded and the
// consumer drains it on every await.
func (d *Dispatcher) Complete(op Op, raw []byte) {
	e := completion{op: op, raw: raw}
	var bo iox.Backoff
	for d.comp.Enqueue(&e) != nil {
		bo.Wait()
	}
}

// pump routes one queued completion. Returns false when the queue is
// empty. A completion that fails to decode or matches no outstanding
// call means the table and host have desynchronized; that aborts the
// dispatching context.
func (d *Dispatcher) pump() bool {
	e, err := d.comp.Dequeue()
	if err != nil {
		return false
	}
	if err := d.OnCompletion(e.op, e.raw); err != nil {
		violation("completion for op %d: %v", e.op, err)
	}
	return true
}

// Await blocks until p resolves, draining completions with adaptive
// backoff while the host works. The returned error is the completion's
// own: a host signal or op failure, nil on a data result.
func (d *Dispatcher) Await(p *Pending) (Completion, error) {
	var bo iox.Backoff
	for {
		c, err := p.TryResult()
		if err == nil {
			return c, c.Err
		}
		if d.pump() {
			bo.Reset()
			continue
		}
		bo.Wait()
	}
}

// Outstanding returns the number of live pending calls.
func (d *Dispatcher) Outstanding() int {
	return d.table.Outstanding()
}

// Close releases the host.
func (d *Dispatcher) Close() error {
	return d.host.Close()
}
