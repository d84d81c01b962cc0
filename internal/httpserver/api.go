package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reelchat/reelchat/internal/chat"
	"github.com/reelchat/reelchat/internal/reels"
)

func (s *Server) registerAPIRoutes() {
	s.mux.HandleFunc("GET /api/reels", s.handleListReels)

	if s.deps.Chats != nil {
		s.mux.HandleFunc("GET /api/chats/{userA}/{userB}", s.handleFetchConversation)
		s.mux.HandleFunc("DELETE /api/chats/{id}", s.handleDeleteMessage)
	}
}

func (s *Server) handleListReels(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, reels.Demo())
}

// handleFetchConversation returns the conversation between the two path
// identities as seen by the first one: messages the viewer soft-deleted are
// excluded from their own view only.
func (s *Server) handleFetchConversation(w http.ResponseWriter, r *http.Request) {
	viewer := r.PathValue("userA")
	peer := r.PathValue("userB")
	if viewer == "" || peer == "" {
		WriteError(w, http.StatusBadRequest, "both user ids are required")
		return
	}

	WriteJSON(w, http.StatusOK, s.deps.Chats.Conversation(viewer, peer))
}

type deleteMessageRequest struct {
	ViewerID string `json:"viewerId"`
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	var req deleteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.deps.Chats.DeleteForViewer(r.PathValue("id"), req.ViewerID)
	switch {
	case errors.Is(err, chat.ErrNotFound):
		WriteError(w, http.StatusNotFound, "message not found")
	case errors.Is(err, chat.ErrValidation):
		WriteError(w, http.StatusBadRequest, "viewerId is required")
	case err != nil:
		WriteError(w, http.StatusInternalServerError, "internal error")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
