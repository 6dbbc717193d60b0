// ABOUTME: OpenAI-backed generator using the Chat Completions API
// ABOUTME: Non-streaming; maps history turns onto chat messages

package generate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI calls the OpenAI Chat Completions API to produce replies.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI generator. An empty model selects
// gpt-4o-mini; an empty API key defers to the SDK's environment lookup.
func NewOpenAI(opts Options) *OpenAI {
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	model := opts.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	return &OpenAI{
		client: openai.NewClient(clientOpts...),
		model:  model,
	}
}

// Generate implements Generator.
func (g *OpenAI) Generate(ctx context.Context, req *Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, turn := range req.History {
		switch turn.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.UserMessage))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned no reply text")
	}

	return resp.Choices[0].Message.Content, nil
}
