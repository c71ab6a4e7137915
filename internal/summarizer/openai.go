package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"newsbrief/internal/domain"
)

const (
	defaultModel       = "gpt-3.5-turbo"
	defaultLanguage    = "English"
	defaultTemperature = 0.2
	defaultTimeout     = 60 * time.Second

	systemPromptTemplate = "You are a helpful assistant that summarizes news articles in three sentences in %s."
	userPromptPrefix     = "Summarize the following news article in three sentences:\n\n"
)

type OpenAIOptions struct {
	APIKey string
	// BaseURL points the client at an OpenAI-compatible endpoint. Empty means
	// the official API.
	BaseURL     string
	Model       string
	Language    string
	Temperature float64
	Timeout     time.Duration
}

// OpenAISummarizer calls OpenAI's Chat Completions API to produce summaries.
type OpenAISummarizer struct {
	client       openai.Client
	model        string
	systemPrompt string
	temperature  float64
}

// NewOpenAISummarizer builds a new summarizer instance.
func NewOpenAISummarizer(opts OpenAIOptions) (*OpenAISummarizer, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = defaultLanguage
	}

	temperature := opts.Temperature
	if temperature < 0 {
		temperature = defaultTemperature
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}

	return &OpenAISummarizer{
		client:       openai.NewClient(clientOpts...),
		model:        model,
		systemPrompt: fmt.Sprintf(systemPromptTemplate, language),
		temperature:  temperature,
	}, nil
}

// Summarize asks the model for a three-sentence summary of input.Text.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", fmt.Errorf("%w: input is empty", domain.ErrContentTooShort)
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.systemPrompt),
			openai.UserMessage(userPromptPrefix + text),
		},
		Temperature: openai.Float(s.temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: do request: %w", domain.ErrUpstream, err)
		}

		return "", fmt.Errorf("%w: do request: %w", domain.ErrTransport, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", domain.ErrParse)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf(
			"%w: output text is missing (finishReason = %s)",
			domain.ErrParse,
			resp.Choices[0].FinishReason,
		)
	}

	return summary, nil
}
