package portfolio

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/pkg/rest"
)

type Server struct {
	service   *Service
	protected func(http.Handler) http.Handler
}

// NewServer requires a middleware guarding the snapshot trigger
func NewServer(s *Service, protected func(http.Handler) http.Handler) *Server {
	return &Server{
		service:   s,
		protected: protected,
	}
}

type (
	walletResponse struct {
		Amount float64 `json:"amount"`
	}

	snapshotResponse struct {
		ID        uint64          `json:"id"`
		CreatedAt time.Time       `json:"created_at"`
		Result    json.RawMessage `json:"result"`
	}

	pageResponse struct {
		Data       []snapshotResponse `json:"data"`
		NextCursor *uint64            `json:"nextCursor"`
	}
)

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/portfolio", s.tokens).Methods(http.MethodGet)
	r.HandleFunc("/wallet", s.wallet).Methods(http.MethodGet)
	r.HandleFunc("/wallet-history", s.history).Methods(http.MethodGet)
	r.Handle("/query-portfolio", s.protected(http.HandlerFunc(s.snapshot))).Methods(http.MethodGet)
	r.HandleFunc("/paginated-portfolio", s.paginated).Methods(http.MethodGet)
}

func (s *Server) tokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.service.Tokens(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch portfolio")

		rest.WriteError(w, http.StatusInternalServerError, "Error fetching data")
		return
	}

	rest.WriteJSON(w, http.StatusOK, tokens)
}

func (s *Server) wallet(w http.ResponseWriter, r *http.Request) {
	amount, err := s.service.USDCValue(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch wallet")

		rest.WriteError(w, http.StatusInternalServerError, "Error fetching data")
		return
	}

	rest.WriteJSON(w, http.StatusOK, walletResponse{Amount: amount})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.History(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch wallet history")

		rest.WriteError(w, http.StatusInternalServerError, "Error fetching wallet history")
		return
	}

	rest.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.TakeSnapshot(r.Context()); err != nil {
		log.Error().Err(err).Msg("failed to store portfolio snapshot")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to save portfolio data")
		return
	}

	rest.WriteJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) paginated(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	var cursor *uint64
	if raw := q.Get("cursor"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		cursor = &v
	}

	page, err := s.service.Snapshots(r.Context(), cursor, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch portfolio snapshots")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch messages.")
		return
	}

	resp := pageResponse{
		Data:       make([]snapshotResponse, 0, len(page.Snapshots)),
		NextCursor: page.NextCursor,
	}
	for _, item := range page.Snapshots {
		resp.Data = append(resp.Data, snapshotResponse{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			Result:    json.RawMessage(item.Status),
		})
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}
