// Package auth provides request authentication for expert-gateway.
//
// # Authentication Model
//
// Identity lives upstream: an external identity provider issues JWT
// tokens, and this package only verifies them. Tokens are signed with
// HS256 using the configured jwt_secret and carry the user id in the
// "sub" claim plus an optional display name in the "name" claim.
//
// # HTTP Middleware
//
// HTTPAuthMiddleware wraps protected handlers. It extracts the bearer
// token from the Authorization header, verifies it, and attaches an
// Identity to the request context:
//
//	mux.Handle("/api/chat", auth.HTTPAuthMiddleware(verifier)(handler))
//
// Handlers retrieve the identity with FromContext (nil when the route
// is unprotected) or MustFromContext (behind the middleware).
//
// # Token Minting
//
// JWTVerifier.Generate mints tokens for development and testing; the
// `token` CLI command exposes it. Production deployments are expected
// to receive tokens from the real identity provider instead.
package auth
