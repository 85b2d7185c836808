// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package repl is the boundary layer between an interactive
// script-evaluation console and a host runtime that performs
// privileged operations (I/O, process control, line editing) on its
// behalf. Work items ("ops") are handed to the host and correlated
// back to their issuers — some immediately, some later, asynchronously.
//
// # Architecture
//
//   - Records: Minimal-shape ops complete with a fixed record of three 32-bit words ([Rec]); everything else travels in JSON [Envelope] frames.
//   - Correlation: [Table] maps each live call id to a single-resolution [Pending] handle. An unmatched or duplicate completion is a protocol violation, never ignored.
//   - Dispatch: [Dispatcher] is the only path to the [Host]. Completions arrive through a bounded lock-free SPSC queue via [code.hybscloud.com/lfq]; awaiting uses adaptive backoff via [code.hybscloud.com/iox].
//   - Effects: Console-facing ops ([ReadLine], [WriteText], [FormatErr]) are effect operations on [code.hybscloud.com/kont], dispatched by [Exec] or stepped with [Step] and [Advance].
//   - Console: [Session] is the interactive read-eval loop: it acquires the host's input/history resource, reads lines, evaluates accumulated source, and classifies failures to decide between reporting and accumulating more input.
//
// # Concurrency
//
// One logical thread of control with cooperative suspension: the only
// suspension points are awaited asynchronous calls. Register/resolve
// on the correlation table and the record scratch buffer are race-free
// by construction, not by locking; the single goroutine beyond the
// caller's is the host's worker. Completions may arrive in any order —
// each resolves exactly the handle matching its call id.
//
// # Example
//
//	host := repl.NewTermHost()
//	d := repl.NewDispatcher(host)
//	defer d.Close()
//	s := repl.NewSession(d, myEvaluator)
//	os.Exit(s.Run())
package repl
