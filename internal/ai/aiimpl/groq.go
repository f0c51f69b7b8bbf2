package aiimpl

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/orgball2608/technews-autopilot/pkg/errors"
)

const systemPrompt = "You are a tech-savvy social media expert. Create engaging, natural content that sounds human and authentic."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one chat completion request with the given key.
func (i *Impl) complete(ctx context.Context, key, prompt string) (string, error) {
	res, err := i.http.R().
		WithContext(ctx).
		SetAuthToken(key).
		SetBody(chatRequest{
			Model: i.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			MaxTokens:   1000,
			Temperature: 0.7,
		}).
		SetResult(&chatResponse{}).
		Post(i.endpoint)
	if err != nil {
		return "", err
	}

	switch res.StatusCode() {
	case http.StatusTooManyRequests:
		return "", errors.ErrRateLimited
	case http.StatusServiceUnavailable:
		return "", errors.ErrServiceUnavailable
	}
	if res.IsError() {
		return "", fmt.Errorf("groq api error: %s", res.Status())
	}

	out, ok := res.Result().(*chatResponse)
	if !ok || len(out.Choices) == 0 {
		return "", fmt.Errorf("invalid response from groq api")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
