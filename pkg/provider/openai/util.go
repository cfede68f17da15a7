package openai

import (
	"errors"
	"fmt"

	"github.com/adrianliechti/docagent/pkg/provider"

	"github.com/openai/openai-go/v3"
)

const errorLimit = 200

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		body := apierr.RawJSON()

		if len(body) > errorLimit {
			body = body[:errorLimit]
		}

		return fmt.Errorf("%w: http %d: %s", provider.ErrRemote, apierr.StatusCode, body)
	}

	return fmt.Errorf("%w: %w", provider.ErrRemote, err)
}
