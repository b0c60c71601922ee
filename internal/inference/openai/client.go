package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/at-ishikawa/legogate/internal/inference"
	"github.com/avast/retry-go"
	"resty.dev/v3"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	return newClient(defaultBaseURL, apiKey, model, retryAttempts)
}

func newClient(baseURL, apiKey, model string, retryAttempts uint) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")
	return &Client{
		httpClient:       httpClient,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai api error %d: %s", e.StatusCode, e.Message)
}

// invalidContentError means the model answered with something that is not the requested JSON.
type invalidContentError struct {
	content string
	err     error
}

func (e *invalidContentError) Error() string {
	return fmt.Sprintf("invalid phrases JSON %q: %v", e.content, e.err)
}

func (e *invalidContentError) Unwrap() error {
	return e.err
}

// isRetryableError reports whether a later attempt may succeed.
// Rate limits, server errors, timeouts and malformed model output are retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	var contentErr *invalidContentError
	if errors.As(err, &contentErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// GeneratePhrases implements the inference.Client interface
func (client *Client) GeneratePhrases(
	ctx context.Context,
	params inference.GeneratePhrasesRequest,
) (inference.GeneratePhrasesResponse, error) {
	if params.Count <= 0 {
		return inference.GeneratePhrasesResponse{}, nil
	}

	body, err := client.newChatRequest(params)
	if err != nil {
		return inference.GeneratePhrasesResponse{}, fmt.Errorf("newChatRequest() > %w", err)
	}

	var result inference.GeneratePhrasesResponse
	attempt := 0
	err = retry.Do(
		func() error {
			attempt++
			response, err := client.complete(ctx, body)
			if err == nil {
				result = response
				return nil
			}
			if !isRetryableError(err) {
				return retry.Unrecoverable(err)
			}
			slog.Info("retrying phrase generation",
				slog.String("legoID", params.LegoID),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		return inference.GeneratePhrasesResponse{}, fmt.Errorf("complete(%s) > %w", params.LegoID, err)
	}
	return result, nil
}

const systemPrompt = `You write practice phrases for a spoken language course.

Answer with one JSON object: {"phrases": [{"known": "...", "target": "...", "word_count": N}]}.
Write exactly "count" phrases.
Each target phrase contains the LEGO target.
Target phrases only use words from "vocabulary", in exactly those forms.
Order phrases from short to long, starting with the LEGO alone.
The known side is a natural translation of the target side in "known_language".`

func (client *Client) newChatRequest(params inference.GeneratePhrasesRequest) (chatRequest, error) {
	userMessage, err := json.Marshal(params)
	if err != nil {
		return chatRequest{}, fmt.Errorf("json.Marshal() > %w", err)
	}
	return chatRequest{
		Model: client.model,
		Messages: []chatMessage{
			{Role: roleSystem, Content: systemPrompt},
			{Role: roleUser, Content: string(userMessage)},
		},
		Temperature:    0.2,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}, nil
}

func (client *Client) complete(ctx context.Context, body chatRequest) (inference.GeneratePhrasesResponse, error) {
	var completion chatResponse
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&completion).
		Post("/chat/completions")
	if err != nil {
		return inference.GeneratePhrasesResponse{}, fmt.Errorf("httpClient.Post() > %w", err)
	}
	if response.IsError() {
		message := response.String()
		var apiErrBody apiErrorBody
		if json.Unmarshal([]byte(message), &apiErrBody) == nil && apiErrBody.Error.Message != "" {
			message = apiErrBody.Error.Message
		}
		return inference.GeneratePhrasesResponse{}, &APIError{StatusCode: response.StatusCode(), Message: message}
	}
	if len(completion.Choices) == 0 {
		return inference.GeneratePhrasesResponse{}, &invalidContentError{err: errors.New("no choices")}
	}

	content := stripCodeFence(completion.Choices[0].Message.Content)
	slog.Debug("openai completion",
		slog.String("finishReason", completion.Choices[0].FinishReason),
		slog.String("content", content),
	)

	var decoded inference.GeneratePhrasesResponse
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return inference.GeneratePhrasesResponse{}, &invalidContentError{content: content, err: err}
	}
	return decoded, nil
}

// stripCodeFence removes a markdown code fence models sometimes wrap JSON in
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
