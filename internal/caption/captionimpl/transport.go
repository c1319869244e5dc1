package captionimpl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// chatTemplateKwargs turns off reasoning on GLM style models so the token budget
// goes to the caption itself.
var chatTemplateKwargs = map[string]any{
	"chat_template_kwargs": map[string]any{
		"enable_thinking": false,
		"clear_thinking":  false,
	},
}

// extraBodyTransport merges extra top-level fields into JSON request bodies.
// The completion request type has no slot for provider specific fields.
type extraBodyTransport struct {
	base  http.RoundTripper
	extra map[string]any
}

func (t *extraBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body == nil || req.Method != http.MethodPost {
		return t.base.RoundTrip(req)
	}

	raw, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}

	body, err := mergeFields(raw, t.extra)
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.ContentLength = int64(len(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return t.base.RoundTrip(out)
}

func mergeFields(raw []byte, extra map[string]any) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	for key, value := range extra {
		if _, ok := fields[key]; ok {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		fields[key] = encoded
	}
	return json.Marshal(fields)
}
