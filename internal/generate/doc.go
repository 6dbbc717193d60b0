// ABOUTME: Documentation for the generate package
// ABOUTME: Explains the Generator contract and the available providers

// Package generate defines the response generation capability used to
// turn a user message, an agent persona, and bounded conversation
// history into reply text.
//
// The Generator interface is the only thing the rest of the system
// depends on. Three implementations exist:
//
//   - Stub: templated replies with simulated latency, for development
//     and tests. No network access.
//   - OpenAI: the Chat Completions API via the official SDK.
//   - Anthropic: the Messages API via the official SDK.
//
// Providers are selected by name through New. Generators treat context
// cancellation and deadline expiry as generation failure; the caller
// decides what a failure means (the orchestrator substitutes a
// fallback reply rather than surfacing an error to the user).
package generate
