// ABOUTME: Response Generator capability contract and provider selection
// ABOUTME: Implementations turn a prompt plus bounded history into reply text

package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/expert-gateway/internal/catalog"
)

// Provider names accepted by New.
const (
	ProviderStub      = "stub"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrUnknownProvider is returned by New for an unrecognized provider name.
var ErrUnknownProvider = errors.New("unknown generator provider")

// Turn is one prior exchange entry supplied as context.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Request carries everything a generator needs to produce a reply.
// History is ordered oldest-first and already bounded by the caller.
type Request struct {
	SystemPrompt string
	History      []Turn
	UserMessage  string
	Agent        *catalog.Agent
}

// Generator produces reply text for a user message. Implementations may
// be slow (network-bound) and may fail; callers bound the wait with the
// context. A successful result is never empty - failure must surface as
// an error, not as crafted reply text, so the orchestrator can apply its
// fallback policy deterministically.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

// Options configure provider construction.
type Options struct {
	Model  string // provider default when empty
	APIKey string // provider SDKs fall back to their env vars when empty
}

// New constructs the generator named by provider. The stub is the
// default placeholder; openai and anthropic call the real APIs.
func New(provider string, opts Options) (Generator, error) {
	switch provider {
	case ProviderStub, "":
		return NewStub(), nil
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderAnthropic:
		return NewAnthropic(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}
