// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

import "encoding/json"

// Envelope is the structured request/response frame for ops whose
// payloads do not fit the minimal three-word record. Requests carry the
// call id for asynchronous ops (zero for synchronous ones); responses
// echo it so the Dispatcher can resolve the matching pending call.
type Envelope struct {
	Kind string          `json:"kind"`
	ID   CallID          `json:"id,omitempty"`
	Body json.RawMessage `json:"body,omitempty"`
	Err  *HostError      `json:"err,omitempty"`
}

// Request and response envelope kinds.
const (
	KindStart          = "start"
	KindStartRes       = "startRes"
	KindEnd            = "end"
	KindEndRes         = "endRes"
	KindReadLine       = "readLine"
	KindReadLineRes    = "readLineRes"
	KindMkdir          = "mkdir"
	KindMakeTempDir    = "makeTempDir"
	KindMakeTempDirRes = "makeTempDirRes"
	KindFormatError    = "formatError"
	KindFormatErrorRes = "formatErrorRes"
	KindEnv            = "env"
	KindEnvRes         = "envRes"
	KindSetEnv         = "setEnv"
	KindSetEnvRes      = "setEnvRes"
	KindHomeDir        = "homeDir"
	KindHomeDirRes     = "homeDirRes"
	KindExecPath       = "execPath"
	KindExecPathRes    = "execPathRes"
	KindIsTTY          = "isTTY"
	KindIsTTYRes       = "isTTYRes"
)

// NewRequest builds a request envelope of the given kind. id is the
// registered call id for asynchronous ops and zero for synchronous ones.
func NewRequest(kind string, id CallID, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Kind: kind, ID: id, Body: raw})
}

// NewResponse builds a success response envelope echoing id.
func NewResponse(kind string, id CallID, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Kind: kind, ID: id, Body: raw})
}

// NewErrResponse builds a failure response envelope echoing id.
func NewErrResponse(id CallID, kind, message string) []byte {
	raw, err := json.Marshal(Envelope{ID: id, Err: &HostError{Kind: kind, Message: message}})
	if err != nil {
		// Envelope with two plain strings cannot fail to marshal.
		violation("error envelope marshal: %v", err)
	}
	return raw
}

// DecodeEnvelope parses a raw envelope frame.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// OpenRequest decodes a request envelope on the host side, asserting
// its declared kind matches wantKind.
func OpenRequest(raw []byte, wantKind string, out any) error {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	if env.Kind != wantKind {
		return ErrKindMismatch
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Body, out)
}

// OpenResponse decodes a response envelope, asserting its declared kind
// matches wantKind. A host-reported error takes precedence; a kind
// mismatch fails with ErrKindMismatch. out may be nil for responses
// whose body is irrelevant.
func OpenResponse(raw []byte, wantKind string, out any) error {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	if env.Err != nil {
		return env.Err
	}
	if env.Kind != wantKind {
		return ErrKindMismatch
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Body, out)
}

// Op request/response bodies. The numeric encoding of these payloads is
// the envelope's concern; collaborators only build and open them.
type (
	// StartReq opens the host-side input/history resource.
	StartReq struct {
		HistoryFile string `json:"historyFile"`
	}
	// StartRes carries the session resource id.
	StartRes struct {
		Rid int32 `json:"rid"`
	}
	// EndReq releases the session resource, persisting input history.
	EndReq struct {
		Rid int32 `json:"rid"`
	}
	// ReadLineReq requests one edited input line.
	ReadLineReq struct {
		Rid    int32  `json:"rid"`
		Prompt string `json:"prompt"`
	}
	// ReadLineRes carries the line, without its trailing newline.
	ReadLineRes struct {
		Line string `json:"line"`
	}
	// MkdirReq creates a directory. Completes minimal.
	MkdirReq struct {
		Path      string `json:"path"`
		Recursive bool   `json:"recursive"`
		Mode      uint32 `json:"mode"`
	}
	// MakeTempDirReq creates a uniquely named temporary directory.
	MakeTempDirReq struct {
		Dir    string `json:"dir"`
		Prefix string `json:"prefix"`
		Suffix string `json:"suffix"`
	}
	// MakeTempDirRes carries the created directory path.
	MakeTempDirRes struct {
		Path string `json:"path"`
	}
	// FormatErrorReq asks the host to render an error for display.
	FormatErrorReq struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	// FormatErrorRes carries the rendered text.
	FormatErrorRes struct {
		Text string `json:"text"`
	}
	// EnvRes carries the host's environment variables.
	EnvRes struct {
		Vars map[string]string `json:"vars"`
	}
	// SetEnvReq sets one environment variable on the host.
	SetEnvReq struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	// HomeDirRes carries the host user's home directory, empty when
	// it cannot be determined.
	HomeDirRes struct {
		Path string `json:"path"`
	}
	// ExecPathRes carries the resolved path of the host executable.
	ExecPathRes struct {
		Path string `json:"path"`
	}
	// IsTTYRes reports whether each standard stream is a terminal.
	IsTTYRes struct {
		Stdin  bool `json:"stdin"`
		Stdout bool `json:"stdout"`
		Stderr bool `json:"stderr"`
	}
)
