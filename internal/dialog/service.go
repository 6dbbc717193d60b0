// ABOUTME: Dialog service is the central layer for orchestrating exchanges
// ABOUTME: Persists both sides of every exchange - history is the source of truth

package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/expert-gateway/internal/catalog"
	"github.com/2389/expert-gateway/internal/generate"
	"github.com/2389/expert-gateway/internal/store"
)

// fallbackReply is returned to the user when generation fails. It is
// persisted as the assistant turn so history stays complete.
const fallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again in a moment."

// persistTimeout bounds the detached writes that record the assistant
// turn after generation. Detached so a client disconnect mid-generation
// cannot lose the reply.
const persistTimeout = 5 * time.Second

// Service errors
var (
	ErrEmptyMessage = errors.New("message is empty")
)

// DialogStore defines what the service needs from storage
type DialogStore interface {
	CreateConversation(ctx context.Context, userID, agentID, title string) (*store.Conversation, error)
	FindLatestForPair(ctx context.Context, userID, agentID string) (*store.Conversation, error)
	GetOwnedConversation(ctx context.Context, conversationID, userID string) (*store.Conversation, error)
	TouchConversation(ctx context.Context, conversationID string) error
	AppendMessage(ctx context.Context, conversationID, role, content string) (*store.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*store.Message, error)
	GetProfile(ctx context.Context, userID string) (*store.UserProfile, error)
	UpsertProfile(ctx context.Context, userID, preferredName string) (*store.UserProfile, error)
}

// Service orchestrates exchanges between users and expert agents. Every
// exchange flows through here: the user turn is recorded before
// generation, and the assistant turn (real or fallback) is recorded
// after, so a conversation transcript is never missing a side.
type Service struct {
	store        DialogStore
	catalog      *catalog.Catalog
	generator    generate.Generator
	logger       *slog.Logger
	timeout      time.Duration
	historyLimit int
}

// Option customizes service construction.
type Option func(*Service)

// WithTimeout bounds each generation attempt. Zero means no bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithHistoryLimit caps how many prior messages are supplied to the
// generator as context.
func WithHistoryLimit(n int) Option {
	return func(s *Service) { s.historyLimit = n }
}

// New creates a dialog service.
func New(st DialogStore, cat *catalog.Catalog, gen generate.Generator, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:        st,
		catalog:      cat,
		generator:    gen,
		logger:       logger.With("component", "dialog"),
		timeout:      30 * time.Second,
		historyLimit: 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendRequest contains everything needed to run one exchange.
type SendRequest struct {
	UserID      string // authenticated user (required)
	DisplayName string // display name asserted by the identity token, may be empty
	AgentID     string // target agent (required)

	// ConversationID pins the exchange to an existing conversation the
	// user owns. When empty the user's latest conversation with the
	// agent is continued, or a new one is started.
	ConversationID string

	Message string
}

// SendResult is the outcome of one exchange.
type SendResult struct {
	Reply          string
	ConversationID string

	// Erred is true when the reply is the fallback text because
	// generation failed. The exchange itself still succeeded.
	Erred bool
}

// SendMessage runs one full exchange: resolve the agent and
// conversation, record the user turn, generate a reply, and record the
// assistant turn.
//
// Key principle: record first, then act. The user message is saved
// BEFORE generation so there is a record even if generation fails, and
// the assistant turn is saved with a detached context so an abandoned
// request cannot lose it.
func (s *Service) SendMessage(ctx context.Context, req *SendRequest) (*SendResult, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if req.AgentID == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	agent, err := s.catalog.Get(req.AgentID)
	if err != nil {
		return nil, err
	}

	conv, err := s.ensureConversation(ctx, req, agent)
	if err != nil {
		return nil, fmt.Errorf("conversation resolution failed: %w", err)
	}

	// History is loaded before the user turn is recorded, so the new
	// message appears exactly once in the generator request.
	history, err := s.store.ListMessages(ctx, conv.ID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	if _, err := s.store.AppendMessage(ctx, conv.ID, store.RoleUser, req.Message); err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	s.logger.Debug("user message recorded",
		"conversation_id", conv.ID,
		"agent_id", agent.ID,
		"user_id", req.UserID)

	systemPrompt := s.buildSystemPrompt(agent, s.preferredName(ctx, req))

	reply, erred := s.generateReply(ctx, &generate.Request{
		SystemPrompt: systemPrompt,
		History:      toTurns(history),
		UserMessage:  req.Message,
		Agent:        agent,
	})

	if err := s.persistReply(conv.ID, reply); err != nil {
		return nil, err
	}

	return &SendResult{
		Reply:          reply,
		ConversationID: conv.ID,
		Erred:          erred,
	}, nil
}

// LatestConversation returns the user's most recently active
// conversation with the given agent, or store.ErrNotFound.
func (s *Service) LatestConversation(ctx context.Context, userID, agentID string) (*store.Conversation, error) {
	if _, err := s.catalog.Get(agentID); err != nil {
		return nil, err
	}
	return s.store.FindLatestForPair(ctx, userID, agentID)
}

// History returns the full transcript of a conversation the user owns,
// oldest first. Returns store.ErrNotFound when the conversation does
// not exist or belongs to someone else.
func (s *Service) History(ctx context.Context, userID, conversationID string) ([]*store.Message, error) {
	if _, err := s.store.GetOwnedConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID, 0)
}

// Profile returns the user's profile, or store.ErrNotFound when none
// has been saved yet.
func (s *Service) Profile(ctx context.Context, userID string) (*store.UserProfile, error) {
	return s.store.GetProfile(ctx, userID)
}

// SaveProfile upserts the user's preferred name. The name is trimmed;
// a blank name is rejected.
func (s *Service) SaveProfile(ctx context.Context, userID, preferredName string) (*store.UserProfile, error) {
	return s.store.UpsertProfile(ctx, userID, strings.TrimSpace(preferredName))
}

// ensureConversation resolves the conversation the exchange belongs to:
// a pinned conversation the user owns, the latest one for the pair, or
// a brand new one titled after the agent.
//
// A pinned id is checked for ownership, not for agent match: pinning a
// conversation started with a different agent threads this agent's
// reply into that transcript while the conversation keeps its original
// agent_id. Clients obtain ids from the per-agent lookup, so the
// mismatch does not arise in normal use.
func (s *Service) ensureConversation(ctx context.Context, req *SendRequest, agent *catalog.Agent) (*store.Conversation, error) {
	if req.ConversationID != "" {
		return s.store.GetOwnedConversation(ctx, req.ConversationID, req.UserID)
	}

	conv, err := s.store.FindLatestForPair(ctx, req.UserID, req.AgentID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	conv, err = s.store.CreateConversation(ctx, req.UserID, req.AgentID, "Chat with "+agent.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("conversation created", "conversation_id", conv.ID, "agent_id", req.AgentID)
	return conv, nil
}

// preferredName resolves how the agent should address the user: saved
// profile name, then the identity token's display name, then "there".
func (s *Service) preferredName(ctx context.Context, req *SendRequest) string {
	profile, err := s.store.GetProfile(ctx, req.UserID)
	if err == nil && profile.PreferredName != "" {
		return profile.PreferredName
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("profile lookup failed", "user_id", req.UserID, "error", err)
	}
	if req.DisplayName != "" {
		return req.DisplayName
	}
	return "there"
}

// buildSystemPrompt assembles the generator's system prompt from the
// agent persona, the personalization clause, and a referral list built
// from the current catalog so new agents show up without prompt edits.
func (s *Service) buildSystemPrompt(agent *catalog.Agent, preferredName string) string {
	var b strings.Builder
	b.WriteString(agent.PersonaInstructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "The user's preferred name is %s. Use this name when addressing them directly.\n\n", preferredName)
	fmt.Fprintf(&b, "If you are asked about topics outside your specialty (%s), politely explain that you specialize in %s and recommend they speak with one of these other AI professionals:\n\n",
		agent.Specialty, agent.Specialty)

	for _, other := range s.catalog.List() {
		if other.ID == agent.ID {
			continue
		}
		if other.Description != "" {
			fmt.Fprintf(&b, "- %s (%s): %s\n", other.Name, other.Specialty, other.Description)
		} else {
			fmt.Fprintf(&b, "- %s (%s)\n", other.Name, other.Specialty)
		}
	}

	b.WriteString("\nBe helpful, professional, and stay within your area of expertise.")
	return b.String()
}

// generateReply runs the generator under the configured timeout. A
// failure is absorbed into the fallback reply rather than surfaced as
// an error; the user turn is already recorded and the exchange must
// complete.
func (s *Service) generateReply(ctx context.Context, req *generate.Request) (string, bool) {
	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.generator.Generate(genCtx, req)
	if err != nil {
		s.logger.Warn("generation failed, using fallback",
			"agent_id", req.Agent.ID,
			"error", err)
		return fallbackReply, true
	}
	return reply, false
}

// persistReply records the assistant turn and bumps the conversation's
// activity timestamp with a detached timeout context, so an abandoned
// request cannot cancel the write. A failed append is an error: the
// transcript must hold both sides of the exchange before the caller
// sees success. The touch is best effort.
func (s *Service) persistReply(conversationID, reply string) error {
	saveCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if _, err := s.store.AppendMessage(saveCtx, conversationID, store.RoleAssistant, reply); err != nil {
		return fmt.Errorf("failed to record assistant reply: %w", err)
	}
	if err := s.store.TouchConversation(saveCtx, conversationID); err != nil {
		s.logger.Error("failed to touch conversation",
			"conversation_id", conversationID,
			"error", err)
	}
	return nil
}

func toTurns(messages []*store.Message) []generate.Turn {
	turns := make([]generate.Turn, len(messages))
	for i, m := range messages {
		turns[i] = generate.Turn{Role: m.Role, Content: m.Content}
	}
	return turns
}
