// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import (
	"code.hybscloud.com/kont"
)

// ReadLineBind reads one line and passes the result to f.
// Fuses Perform(ReadLine{...}) + Bind.
func ReadLineBind[B any](rid int32, prompt string, f func(LineResult) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(ReadLine{Rid: rid, Prompt: prompt}), f)
}

// WriteThen writes text to a host stream and then continues with next.
// Fuses Perform(WriteText{...}) + Then.
func WriteThen[B any](stream int32, text string, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(WriteText{Stream: stream, Text: text}), next)
}

// FormatErrBind renders an error through the host formatter and passes
// the display text to f. Fuses Perform(FormatErr{...}) + Bind.
func FormatErrBind[B any](kind, message string, f func(string) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(FormatErr{Kind: kind, Message: message}), f)
}

// ReportThen renders an error and writes it to stderr, then continues
// with next. Fuses FormatErr + WriteText.
func ReportThen[B any](kind, message string, next kont.Eff[B]) kont.Eff[B] {
	return FormatErrBind(kind, message, func(text string) kont.Eff[B] {
		return WriteThen(StreamStderr, text+"\n", next)
	})
}
