package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
)

// statusError classifies SDK errors by HTTP status.
func statusError(err error) error {
	code := 0
	var (
		aerr *anthropic.Error
		oerr *openaiAPIError
		gerr *geminiAPIError
	)
	switch {
	case errors.As(err, &aerr):
		code = aerr.StatusCode
	case errors.As(err, &oerr):
		code = oerr.HTTPStatusCode
	case errors.As(err, &gerr):
		code = gerr.Code
	}
	if code == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// finish validates structured output and flags truncation.
func finish(req Request, resp *Response) (*Response, error) {
	resp.Content = CleanJSON(resp.Content)
	if resp.StopReason == "max_tokens" && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object or array. Input without a JSON value is returned trimmed.
func CleanJSON(raw json.RawMessage) json.RawMessage {
	b := bytes.TrimSpace(raw)
	if bytes.HasPrefix(b, []byte("```")) {
		b = bytes.TrimPrefix(b, []byte("```json"))
		b = bytes.TrimPrefix(b, []byte("```"))
		b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
		b = bytes.TrimSpace(b)
	}
	start := bytes.IndexAny(b, "{[")
	if start < 0 {
		return json.RawMessage(b)
	}
	closer := byte('}')
	if b[start] == '[' {
		closer = ']'
	}
	end := bytes.LastIndexByte(b, closer)
	if end < start {
		return json.RawMessage(b)
	}
	return json.RawMessage(b[start : end+1])
}
