package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitBearerSecret(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for name, tc := range map[string]struct {
		secret string
		bypass bool
		header string
		status int
	}{
		"valid":        {secret: "s3cret", header: "Bearer s3cret", status: http.StatusNoContent},
		"case":         {secret: "s3cret", header: "bearer s3cret", status: http.StatusNoContent},
		"wrong":        {secret: "s3cret", header: "Bearer nope", status: http.StatusUnauthorized},
		"missing":      {secret: "s3cret", status: http.StatusUnauthorized},
		"no secret":    {header: "Bearer ", status: http.StatusUnauthorized},
		"basic scheme": {secret: "s3cret", header: "Basic s3cret", status: http.StatusUnauthorized},
		"dev bypass":   {secret: "s3cret", bypass: true, status: http.StatusNoContent},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/query-portfolio", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rec := httptest.NewRecorder()
			BearerSecret(tc.secret, tc.bypass)(next).ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
		})
	}
}
