// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package repl

// Op collaborators. Each follows the same contract: build a request
// envelope, issue it through the Dispatcher, open the response envelope
// asserting its kind. The Dispatcher carries no knowledge of any of
// these shapes.

// StartSession opens the host-side input/history resource and returns
// its resource id. Synchronous: the host satisfies it without yielding.
func StartSession(d *Dispatcher, historyFile string) (int32, error) {
	req, err := NewRequest(KindStart, 0, StartReq{HistoryFile: historyFile})
	if err != nil {
		return 0, err
	}
	raw, err := d.CallSync(OpStart, req)
	if err != nil {
		return 0, err
	}
	var res StartRes
	if err := OpenResponse(raw, KindStartRes, &res); err != nil {
		return 0, err
	}
	return res.Rid, nil
}

// EndSession releases the session resource, triggering host-side
// persistence of the input history. Callers on shutdown paths treat a
// failure here as best-effort: the resource may already be gone.
func EndSession(d *Dispatcher, rid int32) error {
	req, err := NewRequest(KindEnd, 0, EndReq{Rid: rid})
	if err != nil {
		return err
	}
	raw, err := d.CallSync(OpEnd, req)
	if err != nil {
		return err
	}
	return OpenResponse(raw, KindEndRes, nil)
}

// ReadLineOp reads one edited line from the session's input source,
// blocking host-side until input, end of input, or interruption.
// The two latter surface as ErrEndOfInput and ErrInterrupted.
func ReadLineOp(d *Dispatcher, rid int32, prompt string) (string, error) {
	p, err := d.CallAsyncEnvelope(OpReadLine, KindReadLine, ReadLineReq{Rid: rid, Prompt: prompt})
	if err != nil {
		return "", err
	}
	c, err := d.Await(p)
	if err != nil {
		return "", err
	}
	var res ReadLineRes
	if err := OpenResponse(c.Data, KindReadLineRes, &res); err != nil {
		return "", err
	}
	return res.Line, nil
}

// WriteStream writes data to a host output stream (StreamStdout or
// StreamStderr) and returns the byte count from the minimal completion.
func WriteStream(d *Dispatcher, stream int32, data []byte) (int, error) {
	p, err := d.CallAsyncRec(OpWrite, stream, data)
	if err != nil {
		return 0, err
	}
	c, err := d.Await(p)
	return int(c.Result), err
}

// Mkdir creates a directory on the host. Completes minimal: the record
// carries only success or failure.
func Mkdir(d *Dispatcher, path string, recursive bool, mode uint32) error {
	p, err := d.CallAsyncEnvelope(OpMkdir, KindMkdir, MkdirReq{Path: path, Recursive: recursive, Mode: mode})
	if err != nil {
		return err
	}
	_, err = d.Await(p)
	return err
}

// MakeTempDir creates a uniquely named directory under dir (the host's
// default temporary directory when empty) and returns its path.
func MakeTempDir(d *Dispatcher, dir, prefix, suffix string) (string, error) {
	p, err := d.CallAsyncEnvelope(OpMakeTempDir, KindMakeTempDir, MakeTempDirReq{Dir: dir, Prefix: prefix, Suffix: suffix})
	if err != nil {
		return "", err
	}
	c, err := d.Await(p)
	if err != nil {
		return "", err
	}
	var res MakeTempDirRes
	if err := OpenResponse(c.Data, KindMakeTempDirRes, &res); err != nil {
		return "", err
	}
	return res.Path, nil
}

// FormatErrorOp asks the host to render an error for display.
// Synchronous: the result is static from the host's point of view.
func FormatErrorOp(d *Dispatcher, kind, message string) (string, error) {
	req, err := NewRequest(KindFormatError, 0, FormatErrorReq{Kind: kind, Message: message})
	if err != nil {
		return "", err
	}
	raw, err := d.CallSync(OpFormatError, req)
	if err != nil {
		return "", err
	}
	var res FormatErrorRes
	if err := OpenResponse(raw, KindFormatErrorRes, &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// Env returns the host's environment as a key/value map.
func Env(d *Dispatcher) (map[string]string, error) {
	req, err := NewRequest(KindEnv, 0, nil)
	if err != nil {
		return nil, err
	}
	raw, err := d.CallSync(OpEnv, req)
	if err != nil {
		return nil, err
	}
	var res EnvRes
	if err := OpenResponse(raw, KindEnvRes, &res); err != nil {
		return nil, err
	}
	return res.Vars, nil
}

// SetEnv sets one environment variable on the host.
func SetEnv(d *Dispatcher, key, value string) error {
	req, err := NewRequest(KindSetEnv, 0, SetEnvReq{Key: key, Value: value})
	if err != nil {
		return err
	}
	raw, err := d.CallSync(OpSetEnv, req)
	if err != nil {
		return err
	}
	return OpenResponse(raw, KindSetEnvRes, nil)
}

// HomeDir returns the host user's home directory. Empty when the host
// cannot determine it; that is a valid answer, not a failure.
func HomeDir(d *Dispatcher) (string, error) {
	req, err := NewRequest(KindHomeDir, 0, nil)
	if err != nil {
		return "", err
	}
	raw, err := d.CallSync(OpHomeDir, req)
	if err != nil {
		return "", err
	}
	var res HomeDirRes
	if err := OpenResponse(raw, KindHomeDirRes, &res); err != nil {
		return "", err
	}
	return res.Path, nil
}

// ExecPath returns the resolved path of the host executable.
func ExecPath(d *Dispatcher) (string, error) {
	req, err := NewRequest(KindExecPath, 0, nil)
	if err != nil {
		return "", err
	}
	raw, err := d.CallSync(OpExecPath, req)
	if err != nil {
		return "", err
	}
	var res ExecPathRes
	if err := OpenResponse(raw, KindExecPathRes, &res); err != nil {
		return "", err
	}
	return res.Path, nil
}

// IsTTY reports, per standard stream, whether the host attached it to
// a terminal.
func IsTTY(d *Dispatcher) (IsTTYRes, error) {
	req, err := NewRequest(KindIsTTY, 0, nil)
	if err != nil {
		return IsTTYRes{}, err
	}
	raw, err := d.CallSync(OpIsTTY, req)
	if err != nil {
		return IsTTYRes{}, err
	}
	var res IsTTYRes
	if err := OpenResponse(raw, KindIsTTYRes, &res); err != nil {
		return IsTTYRes{}, err
	}
	return res, nil
}

// Well-known host stream resource ids.
const (
	StreamStdout int32 = 1
	StreamStderr int32 = 2
)
