package nonce

import (
	"net/http"

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

type nonceResponse struct {
	Nonce int64 `json:"nonce"`
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/nonce", s.next).Methods(http.MethodGet)
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("userAddress")
	if address == "" {
		rest.WriteError(w, http.StatusBadRequest, "Missing userAddress")
		return
	}

	value, err := s.service.Next(r.Context())
	if err != nil {
		log.Error().Err(err).Str("user_address", address).Msg("failed to generate nonce")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch nonce")
		return
	}

	rest.WriteJSON(w, http.StatusOK, nonceResponse{Nonce: value})
}
