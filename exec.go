// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"code.hybscloud.com/kont"
)

// hostHandler implements kont.Handler for host-op effects.
// Each op blocks on its own completion via Dispatcher.Await, so
// handled protocols observe the cooperative one-call-at-a-time model.
type hostHandler struct {
	d *Dispatcher
}

// Dispatch implements kont.Handler via structural interface assertion.
// A dispatch-level error means the protocol with the host broke; that
// aborts the handling context.
func (h hostHandler) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	ho, ok := op.(hostDispatcher)
	if !ok {
		panic("repl: unhandled effect in hostHandler")
	}
	v, err := ho.DispatchHost(h.d)
	if err != nil {
		violation("dispatch %T: %v", op, err)
	}
	return v, true
}

// Exec runs a Cont-world console protocol against d, awaiting each
// host op before issuing the next.
func Exec[R any](d *Dispatcher, protocol kont.Eff[R]) R {
	return kont.Handle(protocol, hostHandler{d: d})
}

// ExecExpr runs an Expr-world console protocol against d, awaiting
// each host op before issuing the next.
func ExecExpr[R any](d *Dispatcher, protocol kont.Expr[R]) R {
	return kont.HandleExpr(protocol, hostHandler{d: d})
}
