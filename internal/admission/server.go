package admission

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/pkg/rest"
)

type Server struct {
	service *Service
}

func NewServer(s *Service) *Server {
	return &Server{
		service: s,
	}
}

type submitResponse struct {
	AIResponse string     `json:"aiResponse"`
	Success    bool       `json:"success"`
	Handle     *uuid.UUID `json:"handle,omitempty"`
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/chat", s.submit).Methods(http.MethodPost)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := s.service.Submit(r.Context(), req)

	var verr *ValidationError
	switch {
	case err == nil:
		rest.WriteJSON(w, http.StatusOK, submitResponse{
			AIResponse: out.AIResponse,
			Success:    out.Success,
			Handle:     out.Handle,
		})
	case errors.As(err, &verr):
		rest.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrUnpaid):
		rest.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrBusy), errors.Is(err, ErrSettlementPending):
		rest.WriteError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Str("user_address", req.UserAddress).Msg("failed to process pitch")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to process pitch")
	}
}
