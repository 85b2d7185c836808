// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"code.hybscloud.com/kont"
)

// Step evaluates a console protocol until the first host-op
// suspension. Returns (result, nil) on completion, or (zero,
// suspension) if a host op is pending.
func Step[R any](protocol kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(protocol)
}

// Advance dispatches the suspended host op on d and resumes the
// protocol. The op is issued and awaited in full, so Advance returns
// only once the host completed it; embedders regain control between
// ops, one suspension at a time.
func Advance[R any](d *Dispatcher, susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	ho, ok := susp.Op().(hostDispatcher)
	if !ok {
		panic("repl: unhandled effect in Advance")
	}
	v, err := ho.DispatchHost(d)
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}
