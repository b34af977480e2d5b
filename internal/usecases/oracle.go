package usecases

import (
	"context"
	"time"

	"farmlink/internal/interfaces"
)

// oracle issues single prompts to the AI client, bounding each call
// with timeout when it is non-zero.
type oracle struct {
	client  interfaces.AIClient
	timeout time.Duration
}

func (o oracle) generate(ctx context.Context, stage, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	text, err := o.client.GenerateResponse(ctx, prompt)
	if err != nil {
		return "", &OracleError{Stage: stage, Err: err}
	}
	return text, nil
}
