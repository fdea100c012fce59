package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ansel1/tangview/parser"
	"github.com/pkg/errors"
)

// Dispatcher delivers the payload a result script pushes through the
// callback. It is the transport behind Fetcher.
type Dispatcher interface {
	Send(ctx context.Context, url string) (json.RawMessage, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, url string) (json.RawMessage, error)

// Send calls f(ctx, url).
func (f DispatcherFunc) Send(ctx context.Context, url string) (json.RawMessage, error) {
	return f(ctx, url)
}

// MaxScriptSize caps how many bytes of a result script are downloaded.
const MaxScriptSize = 64 << 20

// HTTPDispatcher downloads a result script over HTTP and extracts the
// argument it passes to the callback.
type HTTPDispatcher struct {
	client   *http.Client
	callback string
	maxBytes int64
}

// NewHTTPDispatcher creates an HTTP dispatcher. A nil client means
// http.DefaultClient and an empty callback means parser.DefaultCallback.
func NewHTTPDispatcher(client *http.Client, callback string) *HTTPDispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	if callback == "" {
		callback = parser.DefaultCallback
	}
	return &HTTPDispatcher{client: client, callback: callback, maxBytes: MaxScriptSize}
}

// Send implements Dispatcher.
func (d *HTTPDispatcher) Send(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create script request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "load script")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return nil, errors.Errorf("load script: status=%d body=%s", resp.StatusCode, bytes.TrimSpace(body))
	}

	script, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}
	if int64(len(script)) > d.maxBytes {
		return nil, errors.Errorf("script %s exceeds %d bytes", url, d.maxBytes)
	}
	return parser.ExtractJSONP(script, d.callback)
}

// FileDispatcher reads a result script, or a plain JSON payload, from disk.
type FileDispatcher struct {
	callback string
}

// NewFileDispatcher creates a file dispatcher.
func NewFileDispatcher(callback string) *FileDispatcher {
	if callback == "" {
		callback = parser.DefaultCallback
	}
	return &FileDispatcher{callback: callback}
}

// Send implements Dispatcher. url may be a path or a file:// URL. Files
// ending in .json are returned as-is; anything else is treated as a script.
func (d *FileDispatcher) Send(ctx context.Context, url string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(url, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load script")
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data = bytes.TrimSpace(data)
		if !json.Valid(data) {
			return nil, errors.Errorf("%s is not valid JSON", path)
		}
		return json.RawMessage(data), nil
	}
	return parser.ExtractJSONP(data, d.callback)
}

// AutoDispatcher routes http(s) URLs to an HTTPDispatcher and everything
// else to a FileDispatcher.
type AutoDispatcher struct {
	http *HTTPDispatcher
	file *FileDispatcher
}

// NewAutoDispatcher creates an AutoDispatcher.
func NewAutoDispatcher(client *http.Client, callback string) *AutoDispatcher {
	return &AutoDispatcher{
		http: NewHTTPDispatcher(client, callback),
		file: NewFileDispatcher(callback),
	}
}

// Send implements Dispatcher.
func (d *AutoDispatcher) Send(ctx context.Context, url string) (json.RawMessage, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return d.http.Send(ctx, url)
	}
	return d.file.Send(ctx, url)
}
