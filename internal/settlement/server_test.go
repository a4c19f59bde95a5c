package settlement

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestUnitServerGet(t *testing.T) {
	repo := newTestRepo(t)
	id := dispatchJob(t, repo, testRequest(42))

	r := mux.NewRouter()
	NewServer(NewService(repo, &recordingQueue{})).Register(r.PathPrefix("/api").Subrouter())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settlements/"+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp jobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, id, resp.ID)
	require.Equal(t, uint64(42), resp.MessageID)
	require.Equal(t, StatusQueued, resp.Status)

	for target, code := range map[string]int{
		"/api/settlements/" + uuid.NewString(): http.StatusNotFound,
		"/api/settlements/abc":                 http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, code, rec.Code, target)
	}
}
