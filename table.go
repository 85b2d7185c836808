// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import "code.hybscloud.com/atomix"

// CallID uniquely identifies one outstanding asynchronous call until it
// resolves. Ids are assigned from a monotonically increasing counter
// starting at 1 and are reused only after the prior occupant resolved.
type CallID = int32

// Table is the correlation table: a mapping from live call id to its
// pending handle. It is an owned component of the Dispatcher, created
// once and living for the process duration.
//
// Register and Resolve behave as if executed under a single global
// lock. Under the cooperative single-goroutine model callbacks never
// preempt each other, only interleave at suspension points, so this
// holds by construction without locking.
type Table struct {
	counter atomix.Uint32
	live    map[CallID]*Pending
}

// NewTable returns an empty correlation table.
func NewTable() *Table {
	return &Table{live: make(map[CallID]*Pending)}
}

// Register allocates the next call id and stores a fresh pending handle
// under it. Never blocks.
func (t *Table) Register() (CallID, *Pending) {
	id := CallID(t.counter.Add(1))
	p := &Pending{}
	t.live[id] = p
	return id, p
}

// Resolve removes the entry for id and completes its handle exactly
// once. An absent id — the host sent a completion for nothing
// outstanding, or a duplicate completion — fails with ErrUnknownCall
// and mutates nothing.
func (t *Table) Resolve(id CallID, c Completion) error {
	p, ok := t.live[id]
	if !ok {
		return ErrUnknownCall
	}
	delete(t.live, id)
	p.complete(c)
	return nil
}

// Outstanding returns the number of live pending calls.
func (t *Table) Outstanding() int {
	return len(t.live)
}
