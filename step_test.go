// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/repl"
)

func TestStepPureCompletes(t *testing.T) {
	result, susp := repl.Step(repl.Reify(kont.Pure(42)))
	if susp != nil {
		t.Fatal("pure protocol suspended")
	}
	if result != 42 {
		t.Fatalf("result got %d, want 42", result)
	}
}

func TestStepSuspendsOnHostOp(t *testing.T) {
	protocol := repl.Reify(repl.ReadLineBind(scriptRid, "> ", func(r repl.LineResult) kont.Eff[string] {
		return kont.Pure(r.Line)
	}))
	_, susp := repl.Step(protocol)
	if susp == nil {
		t.Fatal("host-op protocol did not suspend")
	}
	op, ok := susp.Op().(repl.ReadLine)
	if !ok {
		t.Fatalf("suspended op got %T, want ReadLine", susp.Op())
	}
	if op.Rid != scriptRid || op.Prompt != "> " {
		t.Fatalf("op got %+v", op)
	}
	susp.Discard()
}

func TestAdvanceResumes(t *testing.T) {
	h := &scriptHost{script: []lineStep{{line: "const a"}}}
	d := repl.NewDispatcher(h)
	protocol := repl.Reify(repl.ReadLineBind(scriptRid, "> ", func(r repl.LineResult) kont.Eff[string] {
		return kont.Pure(r.Line)
	}))
	_, susp := repl.Step(protocol)
	if susp == nil {
		t.Fatal("protocol did not suspend")
	}
	result, next, err := repl.Advance(d, susp)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if next != nil {
		t.Fatal("single-op protocol suspended again")
	}
	if result != "const a" {
		t.Fatalf("result got %q", result)
	}
}

func TestAdvanceStepsMultipleOps(t *testing.T) {
	h := &scriptHost{script: []lineStep{{line: "one"}, {line: "two"}}}
	d := repl.NewDispatcher(h)
	protocol := repl.Reify(repl.ReadLineBind(scriptRid, "> ", func(a repl.LineResult) kont.Eff[string] {
		return repl.ReadLineBind(scriptRid, "  ", func(b repl.LineResult) kont.Eff[string] {
			return kont.Pure(a.Line + "\n" + b.Line)
		})
	}))
	result, susp := repl.Step(protocol)
	steps := 0
	for susp != nil {
		var err error
		result, susp, err = repl.Advance(d, susp)
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		steps++
	}
	if steps != 2 {
		t.Fatalf("steps got %d, want 2", steps)
	}
	if result != "one\ntwo" {
		t.Fatalf("result got %q", result)
	}
	if len(h.prompts) != 2 || h.prompts[1] != "  " {
		t.Fatalf("prompts got %q", h.prompts)
	}
}

func TestExecExprMatchesExec(t *testing.T) {
	build := func() kont.Eff[string] {
		return repl.ReadLineBind(scriptRid, "> ", func(r repl.LineResult) kont.Eff[string] {
			return kont.Pure(r.Line)
		})
	}
	h1 := &scriptHost{script: []lineStep{{line: "x"}}}
	d1 := repl.NewDispatcher(h1)
	h2 := &scriptHost{script: []lineStep{{line: "x"}}}
	d2 := repl.NewDispatcher(h2)
	if a, b := repl.Exec(d1, build()), repl.ExecExpr(d2, repl.Reify(build())); a != b {
		t.Fatalf("Exec got %q, ExecExpr got %q", a, b)
	}
}

func TestReflectRoundTrip(t *testing.T) {
	h := &scriptHost{}
	d := repl.NewDispatcher(h)
	eff := repl.WriteThen(repl.StreamStdout, "out\n", kont.Pure(5))
	if got := repl.Exec(d, repl.Reflect(repl.Reify(eff))); got != 5 {
		t.Fatalf("result got %d, want 5", got)
	}
	if h.stdout.String() != "out\n" {
		t.Fatalf("stdout got %q", h.stdout.String())
	}
}

func TestLoopTerminates(t *testing.T) {
	h := &scriptHost{}
	d := repl.NewDispatcher(h)
	iterations := 0
	protocol := repl.Loop(3, func(n int) kont.Eff[kont.Either[int, string]] {
		iterations++
		if n == 0 {
			return kont.Pure(kont.Right[int, string]("done"))
		}
		return repl.WriteThen(repl.StreamStdout, "tick\n", kont.Pure(kont.Left[int, string](n-1)))
	})
	if got := repl.Exec(d, protocol); got != "done" {
		t.Fatalf("result got %q", got)
	}
	if iterations != 4 {
		t.Fatalf("iterations got %d, want 4", iterations)
	}
	if h.stdout.String() != "tick\ntick\ntick\n" {
		t.Fatalf("stdout got %q", h.stdout.String())
	}
}
