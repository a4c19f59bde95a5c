package settlement

import (
	"errors"
	"net/http"
	"time"

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

type jobResponse struct {
	ID          uuid.UUID `json:"id"`
	MessageID   uint64    `json:"messageId"`
	UserAddress string    `json:"userAddress"`
	SellToken   string    `json:"sellToken"`
	BuyToken    string    `json:"buyToken"`
	Percent     uint64    `json:"percent"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/settlements/{id}", s.get).Methods(http.MethodGet)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid settlement id")
		return
	}

	job, err := s.service.Get(r.Context(), id)
	if errors.Is(err, ErrJobNotFound) {
		rest.WriteError(w, http.StatusNotFound, "settlement not found")
		return
	}

	if err != nil {
		log.Error().Err(err).Str("job_id", id.String()).Msg("failed to fetch settlement")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch settlement")
		return
	}

	rest.WriteJSON(w, http.StatusOK, jobResponse{
		ID:          job.ID,
		MessageID:   job.MessageID,
		UserAddress: job.UserAddress,
		SellToken:   job.SellToken,
		BuyToken:    job.BuyToken,
		Percent:     job.Percent,
		Status:      job.Status,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	})
}
