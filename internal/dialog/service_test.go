package dialog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/expert-gateway/internal/catalog"
	"github.com/2389/expert-gateway/internal/generate"
	"github.com/2389/expert-gateway/internal/store"
)

// captureGen records the last request and returns a canned reply or error.
type captureGen struct {
	lastReq *generate.Request
	reply   string
	err     error
}

func (g *captureGen) Generate(_ context.Context, req *generate.Request) (string, error) {
	g.lastReq = req
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func setupService(t *testing.T, gen generate.Generator, opts ...Option) (*Service, store.Store) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := New(st, catalog.Builtin(), gen, nil, opts...)
	return svc, st
}

func TestSendMessage_FirstMessageCreatesConversation(t *testing.T) {
	gen := &captureGen{reply: "The derivative of x^2 is 2x."}
	svc, st := setupService(t, gen)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, &SendRequest{
		UserID:  "user-1",
		AgentID: "math-physics",
		Message: "What is the derivative of x^2?",
	})
	require.NoError(t, err)
	assert.Equal(t, "The derivative of x^2 is 2x.", result.Reply)
	assert.False(t, result.Erred)
	require.NotEmpty(t, result.ConversationID)

	conv, err := st.GetOwnedConversation(ctx, result.ConversationID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Chat with Prof. James Chen", conv.Title)
	assert.Equal(t, "math-physics", conv.AgentID)

	messages, err := st.ListMessages(ctx, result.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, store.RoleUser, messages[0].Role)
	assert.Equal(t, "What is the derivative of x^2?", messages[0].Content)
	assert.Equal(t, store.RoleAssistant, messages[1].Role)
	assert.Equal(t, "The derivative of x^2 is 2x.", messages[1].Content)
}

func TestSendMessage_ContinuesLatestConversation(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "cooking", Message: "How do I make paella?",
	})
	require.NoError(t, err)

	second, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "cooking", Message: "What rice should I use?",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
}

func TestSendMessage_PinnedConversationOwnership(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "law", Message: "Can I break a lease?",
	})
	require.NoError(t, err)

	// Another user cannot post into the conversation, and the error
	// does not reveal whether it exists.
	_, err = svc.SendMessage(ctx, &SendRequest{
		UserID:         "user-2",
		AgentID:        "law",
		ConversationID: result.ConversationID,
		Message:        "me too",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendMessage_Validation(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, &SendRequest{UserID: "user-1", AgentID: "law", Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.SendMessage(ctx, &SendRequest{UserID: "user-1", AgentID: "nonexistent", Message: "hi"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.SendMessage(ctx, &SendRequest{UserID: "user-1", AgentID: "law"})
	assert.Error(t, err)
}

func TestSendMessage_FallbackOnGenerationFailure(t *testing.T) {
	gen := &captureGen{err: errors.New("provider down")}
	svc, st := setupService(t, gen)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "finance", Message: "Should I buy bonds?",
	})
	require.NoError(t, err)
	assert.True(t, result.Erred)
	assert.Equal(t, fallbackReply, result.Reply)

	// Both turns are persisted, fallback included.
	messages, err := st.ListMessages(ctx, result.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Should I buy bonds?", messages[0].Content)
	assert.Equal(t, fallbackReply, messages[1].Content)
}

func TestSendMessage_HistoryIsBounded(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen, WithHistoryLimit(4))
	ctx := context.Background()

	var convID string
	for i := 0; i < 5; i++ {
		result, err := svc.SendMessage(ctx, &SendRequest{
			UserID: "user-1", AgentID: "general-medicine",
			Message: fmt.Sprintf("question %d", i),
		})
		require.NoError(t, err)
		convID = result.ConversationID
	}

	// 10 prior messages exist; only the most recent 4 are supplied.
	result, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "general-medicine", Message: "final question",
	})
	require.NoError(t, err)
	assert.Equal(t, convID, result.ConversationID)

	require.NotNil(t, gen.lastReq)
	require.Len(t, gen.lastReq.History, 4)
	assert.Equal(t, "question 3", gen.lastReq.History[0].Content)
	assert.Equal(t, "ok", gen.lastReq.History[3].Content)

	// The new message rides in UserMessage, not in History.
	assert.Equal(t, "final question", gen.lastReq.UserMessage)
	for _, turn := range gen.lastReq.History {
		assert.NotEqual(t, "final question", turn.Content)
	}
}

func TestSendMessage_SystemPrompt(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", DisplayName: "Alice", AgentID: "cooking", Message: "dinner ideas?",
	})
	require.NoError(t, err)

	require.NotNil(t, gen.lastReq)
	prompt := gen.lastReq.SystemPrompt
	assert.Contains(t, prompt, "You are Chef Maria Gonzalez")
	assert.Contains(t, prompt, "The user's preferred name is Alice.")
	assert.Contains(t, prompt, "outside your specialty (Cooking & Nutrition)")

	// Referral list covers every other agent but not the one speaking.
	assert.Contains(t, prompt, "Dr. Sarah Mitchell (General Medicine)")
	assert.Contains(t, prompt, "Emma Davis (Personal Finance & Investment)")
	assert.NotContains(t, prompt, "- Chef Maria Gonzalez")
}

func TestSendMessage_PreferredNameResolution(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, st := setupService(t, gen)
	ctx := context.Background()

	// No profile, no display name: neutral fallback.
	_, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "law", Message: "question",
	})
	require.NoError(t, err)
	assert.Contains(t, gen.lastReq.SystemPrompt, "The user's preferred name is there.")

	// Display name from the identity token.
	_, err = svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", DisplayName: "Alice Johnson", AgentID: "law", Message: "question",
	})
	require.NoError(t, err)
	assert.Contains(t, gen.lastReq.SystemPrompt, "The user's preferred name is Alice Johnson.")

	// Saved profile wins over the token's display name.
	_, err = st.UpsertProfile(ctx, "user-1", "Ali")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", DisplayName: "Alice Johnson", AgentID: "law", Message: "question",
	})
	require.NoError(t, err)
	assert.Contains(t, gen.lastReq.SystemPrompt, "The user's preferred name is Ali.")
}

func TestLatestConversation(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)
	ctx := context.Background()

	_, err := svc.LatestConversation(ctx, "user-1", "cooking")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.LatestConversation(ctx, "user-1", "nonexistent")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	result, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "cooking", Message: "hi",
	})
	require.NoError(t, err)

	conv, err := svc.LatestConversation(ctx, "user-1", "cooking")
	require.NoError(t, err)
	assert.Equal(t, result.ConversationID, conv.ID)
}

func TestHistory_OwnershipEnforced(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, &SendRequest{
		UserID: "user-1", AgentID: "mental-health", Message: "hello",
	})
	require.NoError(t, err)

	messages, err := svc.History(ctx, "user-1", result.ConversationID)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	_, err = svc.History(ctx, "user-2", result.ConversationID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfile_SaveAndFetch(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	profile, err := svc.SaveProfile(ctx, "user-1", "  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.PreferredName)

	profile, err = svc.Profile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.PreferredName)

	_, err = svc.SaveProfile(ctx, "user-1", "   ")
	assert.Error(t, err)
}

func TestBuildSystemPrompt_Shape(t *testing.T) {
	gen := &captureGen{reply: "ok"}
	svc, _ := setupService(t, gen)

	agent, err := catalog.Builtin().Get("finance")
	require.NoError(t, err)

	prompt := svc.buildSystemPrompt(agent, "Sam")
	require.True(t, strings.HasPrefix(prompt, agent.PersonaInstructions))
	assert.True(t, strings.HasSuffix(prompt, "Be helpful, professional, and stay within your area of expertise."))
	assert.Equal(t, 5, strings.Count(prompt, "\n- "), "five referral entries for a six-agent catalog")
}
