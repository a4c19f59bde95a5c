package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitClassify(t *testing.T) {
	for name, tc := range map[string]struct {
		status  int
		body    string
		wait    bool
		labels  []Label
		loading bool
		fails   bool
	}{
		"batched": {
			status: http.StatusOK,
			body:   `[[{"label":"INJECTION","score":0.91},{"label":"SAFE","score":0.09}]]`,
			labels: []Label{{Label: "INJECTION", Score: 0.91}, {Label: "SAFE", Score: 0.09}},
		},
		"flat": {
			status: http.StatusOK,
			body:   `[{"label":"SAFE","score":0.99}]`,
			wait:   true,
			labels: []Label{{Label: "SAFE", Score: 0.99}},
		},
		"loading": {
			status:  http.StatusServiceUnavailable,
			body:    `{"error":"Model is currently loading","estimated_time":20.0}`,
			loading: true,
			fails:   true,
		},
		"malformed": {
			status: http.StatusOK,
			body:   `{"unexpected":true}`,
			fails:  true,
		},
		"server error": {
			status: http.StatusInternalServerError,
			body:   `oops`,
			fails:  true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req ClassificationRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				require.Equal(t, "some text", req.Inputs)
				require.Equal(t, tc.wait, req.Options != nil && req.Options.WaitForModel)
				require.Equal(t, "Bearer key", r.Header.Get("Authorization"))

				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "key", nil)
			labels, err := client.Classify(context.Background(), "some text", tc.wait)
			if tc.fails {
				require.Error(t, err)
				require.Equal(t, tc.loading, errors.Is(err, ErrModelLoading))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.labels, labels)
		})
	}
}
