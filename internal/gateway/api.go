// ABOUTME: HTTP API handlers for the agent catalog, chat, and profile endpoints
// ABOUTME: Thin JSON layer over the dialog service; ownership errors map to 404

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/expert-gateway/internal/auth"
	"github.com/2389/expert-gateway/internal/catalog"
	"github.com/2389/expert-gateway/internal/dialog"
	"github.com/2389/expert-gateway/internal/store"
)

// AgentResponse is the JSON shape of a catalog agent in the list
// endpoint. Persona instructions are omitted there; the catalog list is
// a directory, not prompt material.
type AgentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Specialty   string `json:"specialty"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	ThemeColor  string `json:"theme_color,omitempty"`
}

// AgentDetailResponse is the JSON shape of a single agent fetch, which
// carries the full record including persona instructions.
type AgentDetailResponse struct {
	AgentResponse
	PersonaInstructions string `json:"persona_instructions"`
}

// ConversationResponse is the JSON shape of a conversation summary.
type ConversationResponse struct {
	ID        string `json:"id"`
	AgentID   string `json:"agent_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// MessageResponse is the JSON shape of one transcript message.
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatRequest is the JSON request body for POST /api/chat.
type ChatRequest struct {
	AgentID        string `json:"agent_id"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the JSON response for POST /api/chat.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Erred          bool   `json:"erred"`
}

// ProfileRequest is the JSON request body for POST /api/user/profile.
type ProfileRequest struct {
	PreferredName string `json:"preferred_name"`
}

// ProfileResponse is the JSON shape of a user profile.
type ProfileResponse struct {
	PreferredName string `json:"preferred_name"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// handleListAgents handles GET /api/agents requests.
// Returns the full catalog ordered by agent name.
func (g *Gateway) handleListAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	agents := g.catalog.List()
	response := make([]AgentResponse, len(agents))
	for i, a := range agents {
		response[i] = toAgentResponse(a)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetAgent handles GET /api/agents/{id} requests.
func (g *Gateway) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	agentID := strings.TrimPrefix(r.URL.Path, "/api/agents/")
	if agentID == "" || strings.Contains(agentID, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	agent, err := g.catalog.Get(agentID)
	if errors.Is(err, catalog.ErrNotFound) {
		g.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}
	if err != nil {
		g.logger.Error("failed to get agent", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AgentDetailResponse{
		AgentResponse:       toAgentResponse(agent),
		PersonaInstructions: agent.PersonaInstructions,
	})
}

// handleChat handles POST /api/chat requests. It runs one full
// exchange through the dialog service and returns the reply.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	identity := auth.MustFromContext(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AgentID == "" || req.Message == "" {
		g.sendJSONError(w, http.StatusBadRequest, "agent_id and message are required")
		return
	}
	if req.ConversationID != "" {
		if _, err := uuid.Parse(req.ConversationID); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, "invalid conversation_id format")
			return
		}
	}

	result, err := g.dialog.SendMessage(r.Context(), &dialog.SendRequest{
		UserID:         identity.UserID,
		DisplayName:    identity.DisplayName,
		AgentID:        req.AgentID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		g.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	case errors.Is(err, store.ErrNotFound):
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	case errors.Is(err, dialog.ErrEmptyMessage):
		g.sendJSONError(w, http.StatusBadRequest, "message is empty")
		return
	case err != nil:
		g.logger.Error("chat exchange failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to process chat message")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{
		Response:       result.Reply,
		ConversationID: result.ConversationID,
		Erred:          result.Erred,
	})
}

// handleConversationRoutes dispatches the two conversation endpoints:
//
//	GET /api/conversations/agent/{agentId}   - latest conversation with an agent
//	GET /api/conversations/{id}/messages     - full transcript
func (g *Gateway) handleConversationRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if rest, ok := strings.CutPrefix(path, "/api/conversations/agent/"); ok {
		g.handleLatestConversation(w, r, rest)
		return
	}
	if strings.HasSuffix(path, "/messages") {
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/conversations/"), "/messages")
		g.handleConversationMessages(w, r, id)
		return
	}
	g.sendJSONError(w, http.StatusBadRequest, "invalid path")
}

// handleLatestConversation returns the authenticated user's most
// recently active conversation with the given agent, or 404.
func (g *Gateway) handleLatestConversation(w http.ResponseWriter, r *http.Request, agentID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if agentID == "" || strings.Contains(agentID, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "invalid agent ID")
		return
	}

	identity := auth.MustFromContext(r.Context())

	conv, err := g.dialog.LatestConversation(r.Context(), identity.UserID, agentID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		g.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	case errors.Is(err, store.ErrNotFound):
		g.sendJSONError(w, http.StatusNotFound, "no conversation found")
		return
	case err != nil:
		g.logger.Error("failed to fetch conversation", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toConversationResponse(conv))
}

// handleConversationMessages returns the full transcript of a
// conversation the authenticated user owns, oldest first. A foreign or
// unknown conversation id gets the same 404.
func (g *Gateway) handleConversationMessages(w http.ResponseWriter, r *http.Request, conversationID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if conversationID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "conversation ID is required")
		return
	}
	if _, err := uuid.Parse(conversationID); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid conversation ID format")
		return
	}

	identity := auth.MustFromContext(r.Context())

	messages, err := g.dialog.History(r.Context(), identity.UserID, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		g.logger.Error("failed to fetch messages", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]MessageResponse, len(messages))
	for i, m := range messages {
		response[i] = MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleProfile handles GET and POST /api/user/profile requests.
func (g *Gateway) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g.handleGetProfile(w, r)
	case http.MethodPost:
		g.handleSaveProfile(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (g *Gateway) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	profile, err := g.dialog.Profile(r.Context(), identity.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// No profile yet is not an error condition for the client.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
		return
	}
	if err != nil {
		g.logger.Error("failed to fetch profile", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProfileResponse(profile))
}

func (g *Gateway) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	var req ProfileRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.PreferredName) == "" {
		g.sendJSONError(w, http.StatusBadRequest, "preferred name is required")
		return
	}

	if _, err := g.dialog.SaveProfile(r.Context(), identity.UserID, req.PreferredName); err != nil {
		g.logger.Error("failed to save profile", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func toAgentResponse(a *catalog.Agent) AgentResponse {
	return AgentResponse{
		ID:          a.ID,
		Name:        a.Name,
		Title:       a.Title,
		Specialty:   a.Specialty,
		Description: a.Description,
		AvatarURL:   a.AvatarURL,
		ThemeColor:  a.ThemeColor,
	}
}

func toConversationResponse(c *store.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        c.ID,
		AgentID:   c.AgentID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func toProfileResponse(p *store.UserProfile) ProfileResponse {
	return ProfileResponse{
		PreferredName: p.PreferredName,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}
