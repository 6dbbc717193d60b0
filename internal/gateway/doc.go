// Package gateway wires the expert-gateway server together and serves
// its HTTP API.
//
// # Endpoints
//
// Public:
//
//	GET  /health                              liveness probe
//	GET  /api/agents                          agent catalog, ordered by name
//	GET  /api/agents/{id}                     full agent record, persona included
//
// Authenticated (Bearer JWT):
//
//	POST /api/chat                            run one exchange with an agent
//	GET  /api/conversations/agent/{agentId}   latest conversation with an agent
//	GET  /api/conversations/{id}/messages     full transcript, oldest first
//	GET  /api/user/profile                    fetch profile (null when unset)
//	POST /api/user/profile                    save preferred name
//
// # Error Shape
//
// Errors are JSON objects: {"error": "message"}. A conversation that
// exists but belongs to another user returns the same 404 as one that
// does not exist, so conversation ids cannot be probed.
//
// # Listeners
//
// The gateway serves plain TCP by default. With tailscale.enabled it
// joins the tailnet via tsnet and listens there instead, so the API is
// reachable only inside the network.
package gateway
