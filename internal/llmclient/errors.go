package llmclient

import "errors"

var ErrNilResponse = errors.New("llmclient: provider returned no response")

// GatewayError wraps a failed provider call. Error() is the provider's own
// message so it can be shown to users verbatim.
type GatewayError struct {
	Model string
	Err   error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return "model call failed"
	}
	return e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError wraps err unless it already is a GatewayError.
func NewGatewayError(model string, err error) error {
	if err == nil {
		return nil
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		return err
	}
	return &GatewayError{Model: model, Err: err}
}
