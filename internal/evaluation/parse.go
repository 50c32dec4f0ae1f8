package evaluation

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"ideaeval/internal/llmclient"
	"ideaeval/internal/util/jsonutil"
)

var errEmptyPayload = errors.New("empty payload")

// MalformedResponseError means the payload could not be decoded as JSON.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return "malformed evaluation response: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaViolationError means the payload decoded but does not satisfy Contract.
type SchemaViolationError struct {
	Err error
}

func (e *SchemaViolationError) Error() string {
	return "evaluation response does not match the expected schema: " + e.Err.Error()
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }

// ParseResult decodes a first-stage payload and validates it against
// Contract. No partial result is returned on failure.
func ParseResult(text string) (*Result, error) {
	body := jsonutil.StripCodeFence(text)
	if body == "" {
		return nil, &MalformedResponseError{Err: errEmptyPayload}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &MalformedResponseError{Err: errors.New("unexpected data after JSON value")}
	}

	if err := Contract.Validate(doc); err != nil {
		return nil, &SchemaViolationError{Err: err}
	}

	var out Result
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, &SchemaViolationError{Err: err}
	}
	return &out, nil
}

// PrototypeImage is the second-stage illustration.
type PrototypeImage struct {
	MIMEType string
	Data     []byte
}

const defaultImageMIME = "image/png"

// ExtractImage returns the first part carrying inline image bytes, or nil
// when the response has none. A missing image is not an error.
func ExtractImage(resp *llmclient.Response) *PrototypeImage {
	if resp == nil {
		return nil
	}
	for _, p := range resp.Parts {
		if p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		mime := strings.TrimSpace(p.InlineData.MIMEType)
		if mime == "" {
			mime = defaultImageMIME
		}
		return &PrototypeImage{MIMEType: mime, Data: p.InlineData.Data}
	}
	return nil
}
