// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import "encoding/binary"

// recWords is the fixed width of a completion record in 32-bit words.
const recWords = 3

// recBytes is the fixed width of a completion record in bytes.
const recBytes = recWords * 4

// Rec is the completion record for minimal-shape ops: exactly three
// 32-bit signed integers. Arg and Result are opaque to the Dispatcher;
// their interpretation is op-specific.
type Rec struct {
	CallID int32
	Arg    int32
	Result int32
}

// EncodeRec packs r into buf as three little-endian 32-bit words and
// returns the filled prefix. buf must have capacity for recBytes;
// passing the dispatcher's scratch buffer avoids per-call allocation.
func EncodeRec(buf []byte, r Rec) []byte {
	buf = buf[:recBytes]
	binary.LittleEndian.PutUint32(buf[0:], uint32(r.CallID))
	binary.LittleEndian.PutUint32(buf[4:], uint32(r.Arg))
	binary.LittleEndian.PutUint32(buf[8:], uint32(r.Result))
	return buf
}

// DecodeRec unpacks a completion record from raw. Any length other than
// exactly three 32-bit words fails with ErrMalformedRec before any
// pending call can be touched.
func DecodeRec(raw []byte) (Rec, error) {
	if len(raw) != recBytes {
		return Rec{}, ErrMalformedRec
	}
	return Rec{
		CallID: int32(binary.LittleEndian.Uint32(raw[0:])),
		Arg:    int32(binary.LittleEndian.Uint32(raw[4:])),
		Result: int32(binary.LittleEndian.Uint32(raw[8:])),
	}, nil
}
