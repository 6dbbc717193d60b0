// ABOUTME: Anthropic-backed generator using the Messages API
// ABOUTME: Non-streaming; concatenates text blocks from the response

package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// Anthropic calls the Anthropic Messages API to produce replies.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates an Anthropic generator. An empty model selects
// Claude 3.5 Sonnet; an empty API key defers to the SDK's environment
// lookup.
func NewAnthropic(opts Options) *Anthropic {
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	model := anthropic.ModelClaude3_5Sonnet20241022
	if opts.Model != "" {
		model = anthropic.Model(opts.Model)
	}

	return &Anthropic{
		client: anthropic.NewClient(clientOpts...),
		model:  model,
	}
}

// Generate implements Generator.
func (g *Anthropic) Generate(ctx context.Context, req *Request) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, turn := range req.History {
		switch turn.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserMessage)))

	params := anthropic.MessageNewParams{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: anthropicMaxTokens,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no reply text")
	}

	return text.String(), nil
}
