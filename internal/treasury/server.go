package treasury

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

type (
	tokenResponse struct {
		Symbol           string  `json:"symbol"`
		Decimals         int32   `json:"decimals"`
		Balance          string  `json:"balance"`
		Price            float64 `json:"price"`
		BalanceFormatted float64 `json:"balanceFormatted"`
		ValueUSD         float64 `json:"valueUSD"`
	}

	reportResponse struct {
		TotalUSDValue float64         `json:"totalUsdValue"`
		Tokens        []tokenResponse `json:"tokens"`
	}
)

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/treasury", s.report).Methods(http.MethodGet)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Report(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to value treasury")

		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch treasury")
		return
	}

	resp := reportResponse{
		TotalUSDValue: report.TotalUSDValue.InexactFloat64(),
		Tokens:        make([]tokenResponse, 0, len(report.Tokens)),
	}
	for _, t := range report.Tokens {
		resp.Tokens = append(resp.Tokens, tokenResponse{
			Symbol:           t.Symbol,
			Decimals:         t.Decimals,
			Balance:          t.Balance,
			Price:            t.Price.InexactFloat64(),
			BalanceFormatted: t.BalanceFormatted.InexactFloat64(),
			ValueUSD:         t.ValueUSD.InexactFloat64(),
		})
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}
