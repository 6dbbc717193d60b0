package generate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/expert-gateway/internal/catalog"
)

func fastStub() *Stub {
	return NewStub(WithLatency(0, 0))
}

func testAgent(specialty string) *catalog.Agent {
	return &catalog.Agent{
		ID:                  "test-agent",
		Name:                "Test Agent",
		Specialty:           specialty,
		PersonaInstructions: "You are a test agent.",
	}
}

func TestStub_GreetingGetsSpecialtyFollowUp(t *testing.T) {
	s := fastStub()

	reply, err := s.Generate(context.Background(), &Request{
		UserMessage: "Hello there!",
		Agent:       testAgent("Cooking & Nutrition"),
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "What specific questions do you have about cooking & nutrition?")
}

func TestStub_GreetingWordBoundary(t *testing.T) {
	s := fastStub()

	// "this" and "history" contain "hi" but are not greetings.
	reply, err := s.Generate(context.Background(), &Request{
		UserMessage: "tell me about this history",
		Agent:       testAgent("General Medicine"),
	})
	require.NoError(t, err)
	assert.NotContains(t, reply, "What specific questions do you have about")
	assert.Contains(t, reply, "Regarding your question:")
}

func TestStub_EchoesQuestionVerbatimWhenShort(t *testing.T) {
	s := fastStub()

	msg := "What is compound interest?"
	reply, err := s.Generate(context.Background(), &Request{
		UserMessage: msg,
		Agent:       testAgent("Personal Finance & Investment"),
	})
	require.NoError(t, err)
	assert.Contains(t, reply, msg)
	assert.NotContains(t, reply, "...")
}

func TestStub_TruncatesLongQuestion(t *testing.T) {
	s := fastStub()

	msg := strings.Repeat("x", 150)
	reply, err := s.Generate(context.Background(), &Request{
		UserMessage: msg,
		Agent:       testAgent("Mathematics & Physics"),
	})
	require.NoError(t, err)
	assert.Contains(t, reply, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, reply, strings.Repeat("x", 101))
}

func TestStub_UnknownSpecialtyGetsGenericOpening(t *testing.T) {
	s := fastStub()

	reply, err := s.Generate(context.Background(), &Request{
		UserMessage: "help me out",
		Agent:       &catalog.Agent{ID: "x", Name: "X", Specialty: "Underwater Basketweaving", PersonaInstructions: "p"},
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "Underwater Basketweaving")
}

func TestStub_NeverEmpty(t *testing.T) {
	s := fastStub()

	for _, specialty := range catalog.Specialties {
		reply, err := s.Generate(context.Background(), &Request{
			UserMessage: "hi",
			Agent:       testAgent(specialty),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, reply)
	}
}

func TestStub_RespectsContextCancellation(t *testing.T) {
	s := NewStub(WithLatency(5*time.Second, 10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Generate(ctx, &Request{
		UserMessage: "slow question",
		Agent:       testAgent("General Medicine"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNew_ProviderSelection(t *testing.T) {
	g, err := New("", Options{})
	require.NoError(t, err)
	assert.IsType(t, &Stub{}, g)

	g, err = New(ProviderStub, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Stub{}, g)

	g, err = New(ProviderOpenAI, Options{APIKey: "test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)

	g, err = New(ProviderAnthropic, Options{APIKey: "test"})
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, g)

	_, err = New("bard", Options{})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
