// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Pending handle states.
const (
	pendingOpen     = 0
	pendingWriting  = 1
	pendingResolved = 2
)

// Completion is the resolved outcome of one asynchronous call.
// Minimal-shape ops fill Result from the completion record; envelope
// ops fill Data with the raw response envelope. Err carries host
// signals (ErrEndOfInput, ErrInterrupted) and op failures.
type Completion struct {
	Result int32
	Data   []byte
	Err    error
}

// Pending is a single-resolution handle for one outstanding call.
// It resolves exactly once; a second resolution attempt is a protocol
// violation. The state word is CAS-guarded so the publish is ordered
// after the completion fields are written.
type Pending struct {
	state atomix.Uint32
	c     Completion
}

// complete resolves the handle. Called only by the correlation table,
// which has already removed the entry; reaching an already-resolved
// handle here means the table was bypassed.
func (p *Pending) complete(c Completion) {
	if !p.state.CompareAndSwap(pendingOpen, pendingWriting) {
		violation("pending call resolved twice")
	}
	p.c = c
	p.state.Store(pendingResolved)
}

// TryResult returns the completion without blocking.
// Returns iox.ErrWouldBlock while the call is still outstanding.
func (p *Pending) TryResult() (Completion, error) {
	if p.state.Load() != pendingResolved {
		return Completion{}, iox.ErrWouldBlock
	}
	return p.c, nil
}

// Resolved reports whether the handle has been completed.
func (p *Pending) Resolved() bool {
	return p.state.Load() == pendingResolved
}
