// ABOUTME: Stub generator producing templated replies keyed by agent specialty
// ABOUTME: Simulates provider latency; placeholder until a real provider is configured

package generate

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// echoLimit caps how much of the user's message is quoted back.
const echoLimit = 100

// specialty-keyed opening lines. Unrecognized specialties get a generic
// opening from pickTemplate.
var stubTemplates = map[string][]string{
	"General Medicine": {
		"Hello! I'd be happy to help with your medical question. However, please remember that this is for informational purposes only and doesn't replace professional medical consultation.",
		"That's a great question about health. Based on my medical experience, I can provide some general information, but I always recommend consulting with your healthcare provider for personalized advice.",
		"From a medical perspective, I can share some insights about this topic. Please keep in mind that every individual case is different, so it's important to seek proper medical evaluation.",
	},
	"Mathematics & Physics": {
		"Excellent question! As a mathematics and physics professor, I love helping students understand these concepts. Let me break this down step by step.",
		"This is a fascinating topic! I'll explain this in a way that makes it clear and understandable.",
		"Great to see your interest in learning! Let me help you work through this problem systematically.",
	},
	"Civil & Criminal Law": {
		"Thank you for your legal question. As an attorney, I can provide general legal information, but please note this doesn't constitute formal legal advice for your specific situation.",
		"This is an interesting legal matter. I can share some general insights about the law in this area, though I'd recommend consulting with a licensed attorney for your specific circumstances.",
		"From a legal perspective, there are several important considerations here. Let me outline the general principles, keeping in mind that laws can vary by jurisdiction.",
	},
	"Cooking & Nutrition": {
		"What a delicious question! As a chef, I'm excited to share some culinary wisdom with you. Cooking is both an art and a science!",
		"I love helping people in the kitchen! This is a great opportunity to explore flavors and techniques. Let me guide you through this.",
		"Fantastic! As someone passionate about food and nutrition, I'm happy to help you create something amazing in the kitchen.",
	},
	"Mental Health & Therapy": {
		"Thank you for sharing this with me. As a clinical psychologist, I appreciate your trust in reaching out. Mental health is incredibly important.",
		"I'm glad you're taking steps to understand this better. Mental health and well-being are areas I'm passionate about helping people with.",
		"This is a thoughtful question about mental health. While I can provide general information and coping strategies, please remember to seek professional help if you're experiencing serious concerns.",
	},
	"Personal Finance & Investment": {
		"Great question about finance! As a certified financial advisor, I'm here to help you understand personal finance and investment principles.",
		"Financial planning is so important, and I'm glad you're thinking about this. Let me share some educational insights that might help guide your thinking.",
		"This is an excellent financial topic to explore. Remember, this is educational information, and you should consult with licensed financial professionals for personalized advice.",
	},
}

// Stub is a placeholder Generator for development and tests. It sleeps
// for a bounded random interval to simulate a network-bound provider,
// then assembles a templated reply from the agent's specialty and the
// user's message. Swappable for a real provider without touching the
// orchestrator.
type Stub struct {
	minLatency time.Duration
	maxLatency time.Duration
	rng        *rand.Rand
}

// StubOption customizes stub behavior, mainly so tests can drop the
// simulated latency.
type StubOption func(*Stub)

// WithLatency sets the bounds of the simulated provider delay.
func WithLatency(min, max time.Duration) StubOption {
	return func(s *Stub) {
		s.minLatency = min
		s.maxLatency = max
	}
}

// NewStub creates a stub generator with a 1-3s simulated latency range.
func NewStub(opts ...StubOption) *Stub {
	s := &Stub{
		minLatency: time.Second,
		maxLatency: 3 * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate implements Generator.
func (s *Stub) Generate(ctx context.Context, req *Request) (string, error) {
	if err := s.sleep(ctx); err != nil {
		return "", err
	}

	specialty := ""
	if req.Agent != nil {
		specialty = req.Agent.Specialty
	}

	opening := s.pickTemplate(specialty)

	if isGreeting(req.UserMessage) {
		return fmt.Sprintf("%s What specific questions do you have about %s?",
			opening, strings.ToLower(specialty)), nil
	}

	return fmt.Sprintf("%s Regarding your question: %q - I'd be happy to help you understand this better. Could you provide a bit more detail about what specifically you'd like to know?",
		opening, truncate(req.UserMessage, echoLimit)), nil
}

// sleep waits for a random duration within the configured bounds,
// aborting early if the context expires. Expiry is a generation failure.
func (s *Stub) sleep(ctx context.Context) error {
	delay := s.minLatency
	if spread := s.maxLatency - s.minLatency; spread > 0 {
		delay += time.Duration(s.rng.Int63n(int64(spread)))
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Stub) pickTemplate(specialty string) string {
	if templates, ok := stubTemplates[specialty]; ok {
		return templates[s.rng.Intn(len(templates))]
	}
	return fmt.Sprintf("Thank you for your question! As someone specializing in %s, I'm here to help you with topics in my area of expertise.", specialty)
}

// isGreeting reports whether the message contains "hello" or "hi" as a
// standalone word, case-insensitively. Word-level matching keeps "this"
// or "history" from counting as a greeting.
func isGreeting(message string) bool {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
	for _, w := range words {
		if w == "hello" || w == "hi" {
			return true
		}
	}
	return false
}

// truncate returns the first n runes of s, with an ellipsis marker when
// anything was cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
