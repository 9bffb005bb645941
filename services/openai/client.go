package openaisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/chat"
)

const detailLimit = 300

var rateLimitPattern = regexp.MustCompile(`(?i)rate.?limit`)

type Client struct {
	apiKey         string
	endpoint       string
	hc             *http.Client
	maxRetries     int
	initialBackoff time.Duration
	sleep          func(ctx context.Context, d time.Duration) error // mockable
	logger         core.Logger
}

var _ chat.Completer = (*Client)(nil)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		apiKey:         conf.OpenAI.APIKey,
		endpoint:       conf.OpenAI.BaseURL + "/chat/completions",
		hc:             &http.Client{Timeout: conf.OpenAI.Timeout},
		maxRetries:     conf.OpenAI.MaxRetries,
		initialBackoff: conf.OpenAI.InitialBackoff,
		sleep:          sleepContext,
		logger:         logger,
	}
}

type (
	completionMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	completionBody struct {
		Model               string              `json:"model"`
		Messages            []completionMessage `json:"messages"`
		Temperature         float64             `json:"temperature"`
		MaxCompletionTokens int                 `json:"max_completion_tokens,omitempty"`
	}
)

// Complete sends a chat completion request. Rate-limited attempts are retried
// up to maxRetries times with a doubling delay; any other failure is returned
// at once as a *core.UpstreamError.
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) (chat.Completion, error) {
	body := completionBody{
		Model:               req.Model,
		Messages:            make([]completionMessage, 0, len(req.Messages)),
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxOutputTokens,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, completionMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return chat.Completion{}, errors.Wrap(err, "marshalling completion request")
	}

	delays := c.backOff()
	for attempt := 0; ; attempt++ {
		status, data, err := c.post(ctx, payload)
		if err != nil {
			return chat.Completion{}, err
		}
		if status < 300 {
			return parseCompletion(data, req.Model)
		}

		detail := core.Truncate(string(data), detailLimit)
		if !isRateLimited(status, data) {
			return chat.Completion{}, &core.UpstreamError{StatusCode: status, Detail: detail}
		}
		if attempt >= c.maxRetries {
			return chat.Completion{}, &core.UpstreamError{StatusCode: status, Detail: detail, RateLimited: true}
		}

		delay := delays.NextBackOff()
		c.logger.Warn(fmt.Sprintf("openai rate limited (attempt %d/%d), retrying in %s", attempt+1, c.maxRetries+1, delay))
		if err := c.sleep(ctx, delay); err != nil {
			return chat.Completion{}, errors.Wrap(err, "waiting for rate limit")
		}
	}
}

// backOff returns the retry delays: initialBackoff, doubled after each attempt.
func (c *Client) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = 0 // bounded by maxRetries
	b.Reset()
	return b
}

func (c *Client) post(ctx context.Context, payload []byte) (int, []byte, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, errors.Wrap(err, "building completion request")
	}
	r.Header.Set("Authorization", "Bearer "+c.apiKey)
	r.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(r)
	if err != nil {
		return 0, nil, &core.UpstreamError{Detail: core.Truncate(err.Error(), detailLimit)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &core.UpstreamError{StatusCode: resp.StatusCode, Detail: core.Truncate(err.Error(), detailLimit)}
	}
	return resp.StatusCode, data, nil
}

func isRateLimited(status int, body []byte) bool {
	return status == http.StatusTooManyRequests || (status >= 400 && rateLimitPattern.Match(body))
}

func parseCompletion(data []byte, model string) (chat.Completion, error) {
	if !gjson.ValidBytes(data) {
		return chat.Completion{}, &core.UpstreamError{StatusCode: http.StatusOK, Detail: core.Truncate(string(data), detailLimit)}
	}
	res := gjson.ParseBytes(data)

	c := chat.Completion{
		Text:         res.Get("choices.0.message.content").String(),
		Model:        res.Get("model").String(),
		InputTokens:  int(firstOf(res, "usage.prompt_tokens", "usage.input_tokens").Int()),
		OutputTokens: int(firstOf(res, "usage.completion_tokens", "usage.output_tokens").Int()),
	}
	if c.Model == "" {
		c.Model = model
	}
	return c, nil
}

func firstOf(res gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := res.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
