package platform

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoExecutionName means the platform did not report a name for this execution.
var ErrNoExecutionName = errors.New("execution name unavailable")

const executionNameQuery = `query executionCreatorsByToken($token: String!) {
  executionCreatorByToken(token: $token) {
    flytedbId
    info {
      displayName
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type executionNameResponse struct {
	Data struct {
		ExecutionCreatorByToken *struct {
			Info *struct {
				DisplayName string `json:"displayName"`
			} `json:"info"`
		} `json:"executionCreatorByToken"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ExecutionName returns the display name of the current execution.
func (c *Client) ExecutionName(ctx context.Context) (string, error) {
	token, err := c.token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoExecutionName, err)
	}

	var resp executionNameResponse
	req := graphQLRequest{
		Query:     executionNameQuery,
		Variables: map[string]any{"token": token},
	}
	if err := c.postJSON(ctx, c.config.GraphQLURL, token, req, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoExecutionName, err)
	}
	if len(resp.Errors) > 0 {
		return "", fmt.Errorf("%w: %s", ErrNoExecutionName, resp.Errors[0].Message)
	}

	creator := resp.Data.ExecutionCreatorByToken
	if creator == nil || creator.Info == nil || creator.Info.DisplayName == "" {
		return "", ErrNoExecutionName
	}
	return creator.Info.DisplayName, nil
}
