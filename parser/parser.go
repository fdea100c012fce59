package parser

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/ansel1/tangview/results"
	"github.com/pkg/errors"
)

// DefaultCallback is the global function a result script invokes with its payload.
const DefaultCallback = "jest_html_reporters_callback__"

// ErrNoCallback is returned when a script does not invoke the expected callback.
var ErrNoCallback = errors.New("script does not invoke the result callback")

// ParseReport parses a report payload as pushed through the result callback.
func ParseReport(data []byte) (*results.Report, error) {
	var report results.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "parse report")
	}
	return &report, nil
}

// ExtractJSONP returns the single JSON argument script passes to callback.
//
// The first `callback(` call in script is used, optionally written as
// `window.callback(`. Other mentions of the name, such as a typeof guard,
// are skipped, and anything after the closing parenthesis is ignored.
func ExtractJSONP(script []byte, callback string) (json.RawMessage, error) {
	if callback == "" {
		callback = DefaultCallback
	}
	name := []byte(callback)

	for off := 0; off < len(script); {
		idx := bytes.Index(script[off:], name)
		if idx < 0 {
			break
		}
		start := off + idx
		off = start + len(name)

		if start > 0 && isIdentByte(script[start-1]) {
			continue
		}
		rest := bytes.TrimLeft(script[off:], " \t\r\n")
		if len(rest) == 0 || rest[0] != '(' {
			continue
		}
		return decodeArgument(rest[1:], callback)
	}
	return nil, errors.Wrapf(ErrNoCallback, "callback %s is not called", callback)
}

// decodeArgument decodes the JSON value at the start of args and checks
// that the call is closed right after it.
func decodeArgument(args []byte, callback string) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(args))
	var payload json.RawMessage
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Errorf("unterminated call to %s", callback)
		}
		return nil, errors.Wrapf(err, "argument of %s is not valid JSON", callback)
	}

	tail := bytes.TrimLeft(args[dec.InputOffset():], " \t\r\n")
	if len(tail) == 0 || tail[0] != ')' {
		return nil, errors.Errorf("unterminated call to %s", callback)
	}
	return payload, nil
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// EncodeJSONP writes a script that invokes callback with v encoded as JSON.
func EncodeJSONP(w io.Writer, callback string, v any) error {
	if callback == "" {
		callback = DefaultCallback
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode jsonp payload")
	}

	var buf bytes.Buffer
	buf.WriteString("window.")
	buf.WriteString(callback)
	buf.WriteByte('(')
	buf.Write(payload)
	buf.WriteString(");\n")

	_, err = w.Write(buf.Bytes())
	return err
}
