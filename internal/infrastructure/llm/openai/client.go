package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
	"github.com/quoteflowhq/quoteflow/internal/core/ports"
	"github.com/quoteflowhq/quoteflow/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible API for draft generation,
// finalization streaming and voice-note transcription.
type Client struct {
	api             openai.Client
	model           string
	transcribeModel string
	exec            *resilience.Executor
	onFailure       func(operation string)
}

func New(apiKey, baseURL, model, transcribeModel string, exec *resilience.Executor) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		api:             openai.NewClient(opts...),
		model:           model,
		transcribeModel: transcribeModel,
		exec:            exec,
	}
}

// SetFailureHook registers a callback invoked with the operation name
// each time a model call ultimately fails. Used for failure counters.
func (c *Client) SetFailureHook(fn func(operation string)) {
	c.onFailure = fn
}

func (c *Client) recordFailure(operation string) {
	if c.onFailure != nil {
		c.onFailure(operation)
	}
}

func (c *Client) GenerateDraft(ctx context.Context, jobDescription string, image []byte, imageMime string) (*domain.DraftResult, error) {
	userMessage := openai.UserMessage(jobDescription)
	if len(image) > 0 {
		dataURL := fmt.Sprintf("data:%s;base64,%s", imageMime, base64.StdEncoding.EncodeToString(image))
		userMessage = openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(jobDescription),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		})
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(draftSystemPrompt),
			userMessage,
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	var content string
	err := c.exec.Execute(ctx, "generate draft", func(ctx context.Context) error {
		completion, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(completion.Choices) == 0 {
			return errors.New("completion has no choices")
		}
		content = completion.Choices[0].Message.Content
		return nil
	}, classifyAPIError)
	if err != nil {
		c.recordFailure("generate_draft")
		return nil, domain.WrapError(domain.ErrGeneration, "generate draft", err)
	}

	raw, ok := extractJSONObject(content)
	if !ok {
		c.recordFailure("generate_draft")
		return nil, domain.WrapError(domain.ErrGeneration, "generate draft", errors.New("reply contains no JSON object"))
	}
	var result domain.DraftResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.recordFailure("generate_draft")
		return nil, domain.WrapError(domain.ErrGeneration, "generate draft", fmt.Errorf("decode reply: %w", err))
	}
	return &result, nil
}

// StreamFinal opens the token stream for finalization. Streaming calls
// are not retried; a broken stream surfaces through TokenStream.Err.
func (c *Client) StreamFinal(ctx context.Context, prompt domain.FinalizePrompt) (ports.TokenStream, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(finalSystemPrompt),
			openai.UserMessage(finalUserPrompt(prompt)),
		},
	}
	stream := c.api.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		c.recordFailure("stream_final")
		return nil, domain.WrapError(domain.ErrGeneration, "stream final quote", err)
	}
	return &tokenStream{stream: stream, onFailure: func() { c.recordFailure("stream_final") }}, nil
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, mimeType string) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	model := openai.AudioModel(c.transcribeModel)
	if c.transcribeModel == "" {
		model = openai.AudioModelWhisper1
	}

	var text string
	err = c.exec.Execute(ctx, "transcribe audio", func(ctx context.Context) error {
		resp, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
			Model: model,
			File:  openai.File(bytes.NewReader(data), filename, mimeType),
		})
		if err != nil {
			return err
		}
		text = resp.Text
		return nil
	}, classifyAPIError)
	if err != nil {
		c.recordFailure("transcribe_audio")
		return "", domain.WrapError(domain.ErrGeneration, "transcribe audio", err)
	}
	return text, nil
}

// tokenStream adapts the SSE chunk stream to plain text fragments,
// skipping keep-alive chunks without content.
type tokenStream struct {
	stream    *ssestream.Stream[openai.ChatCompletionChunk]
	current   string
	onFailure func()
	reported  bool
}

func (t *tokenStream) Next() bool {
	for t.stream.Next() {
		chunk := t.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if token := chunk.Choices[0].Delta.Content; token != "" {
			t.current = token
			return true
		}
	}
	return false
}

func (t *tokenStream) Current() string { return t.current }

func (t *tokenStream) Err() error {
	if err := t.stream.Err(); err != nil {
		if t.onFailure != nil && !t.reported {
			t.reported = true
			t.onFailure()
		}
		return domain.WrapError(domain.ErrGeneration, "stream final quote", err)
	}
	return nil
}

func (t *tokenStream) Close() error { return t.stream.Close() }

// classifyAPIError retries rate limits, server errors and transport
// failures. Client-side mistakes fail immediately and stay out of the
// breaker's failure counts.
func classifyAPIError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		retryable := apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
		return resilience.ErrorClassification{Retryable: retryable, RecordFailure: retryable}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
