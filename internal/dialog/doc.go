// Package dialog orchestrates exchanges between users and expert agents.
//
// # Exchange Flow
//
// SendMessage runs one full exchange:
//
//  1. Validate the request and resolve the agent from the catalog.
//  2. Resolve the conversation: the pinned one (ownership enforced),
//     the user's latest with the agent, or a new one titled
//     "Chat with <agent name>".
//  3. Load the recent history window (before recording the new turn).
//  4. Record the user turn.
//  5. Build the system prompt: persona instructions, the user's
//     preferred name, and a referral list of the other agents.
//  6. Generate a reply under the configured timeout.
//  7. Record the assistant turn and bump conversation activity.
//
// # Failure Policy
//
// Generation failure never fails the exchange. The service substitutes
// a fixed fallback reply, persists it like any other assistant turn,
// and marks the result Erred so callers can signal degradation.
//
// The assistant turn is persisted with a detached context: once a reply
// exists, client disconnects cannot lose it from the transcript.
//
// # Personalization
//
// The preferred name resolution order is: saved profile, identity
// token display name, then the neutral "there".
package dialog
