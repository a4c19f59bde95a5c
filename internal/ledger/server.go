package ledger

import (
	"net/http"
	"strconv"
	"time"

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

type (
	messageResponse struct {
		ID             uint64    `json:"id"`
		UserAddress    string    `json:"userAddress"`
		Token          string    `json:"token"`
		TradeType      TradeType `json:"tradeType"`
		Allocation     string    `json:"allocation"`
		Pitch          string    `json:"pitch"`
		AIResponseText string    `json:"aiResponseText"`
		Success        bool      `json:"success"`
		Timestamp      time.Time `json:"timestamp"`
	}

	pageResponse struct {
		Data       []messageResponse `json:"data"`
		NextCursor *uint64           `json:"nextCursor"`
	}

	scoreRequest struct {
		UserAddress string `json:"userAddress"`
	}

	scoreResponse struct {
		Score int64 `json:"score"`
	}

	leaderboardEntry struct {
		UserAddress string `json:"userAddress"`
		Score       int64  `json:"score"`
	}
)

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/paginated-chat", s.paginated).Methods(http.MethodGet)
	r.HandleFunc("/global-chat", s.global).Methods(http.MethodGet)
	r.HandleFunc("/score", s.score).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", s.leaderboard).Methods(http.MethodGet)
}

func (s *Server) paginated(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := ParseIntParam(q.Get("limit"), DefaultLimit)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	query := Query{
		UserAddress: q.Get("userAddress"),
		Limit:       limit,
	}

	if raw := q.Get("cursor"); raw != "" {
		cursor, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		query.Cursor = &cursor
	}

	page, err := s.service.Query(r.Context(), query)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch paginated messages")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch messages.")
		return
	}

	rest.WriteJSON(w, http.StatusOK, pageResponse{
		Data:       convertMessages(page.Messages),
		NextCursor: page.NextCursor,
	})
}

func (s *Server) global(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.All(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch messages")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch messages.")
		return
	}

	rest.WriteJSON(w, http.StatusOK, convertMessages(list))
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := rest.DecodeJSON(r, &req); err != nil || req.UserAddress == "" {
		rest.WriteError(w, http.StatusBadRequest, "User Address required")
		return
	}

	score, err := s.service.Score(r.Context(), req.UserAddress)
	if err != nil {
		log.Error().Err(err).Str("user_address", req.UserAddress).Msg("failed to calculate score")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to calculate score")
		return
	}

	rest.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseIntParam(r.URL.Query().Get("limit"), DefaultLimit)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	list, err := s.service.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch leaderboard")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	resp := make([]leaderboardEntry, 0, len(list))
	for _, item := range list {
		resp = append(resp, leaderboardEntry{
			UserAddress: item.UserAddress,
			Score:       item.Score,
		})
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}

// ParseIntParam returns def for an empty value
func ParseIntParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}

	return strconv.Atoi(raw)
}

func convertMessages(list []Message) []messageResponse {
	resp := make([]messageResponse, 0, len(list))
	for _, m := range list {
		resp = append(resp, messageResponse{
			ID:             m.ID,
			UserAddress:    m.UserAddress,
			Token:          m.Token,
			TradeType:      m.TradeType,
			Allocation:     m.Allocation,
			Pitch:          m.Pitch,
			AIResponseText: m.AIResponseText,
			Success:        m.Success,
			Timestamp:      m.Timestamp,
		})
	}

	return resp
}
