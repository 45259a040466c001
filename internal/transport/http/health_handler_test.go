package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bordereau/pkg/contracts"
)

type fakeHubStats struct{}

func (fakeHubStats) Stats() map[string]interface{} {
	return map[string]interface{}{"active_clients": 2}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(NewHealthHandler(fakeHubStats{}, nil).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, contracts.Version, body["version"])
	require.Contains(t, body, "websocket")
}

func TestReadinessAndLiveness(t *testing.T) {
	srv := httptest.NewServer(NewHealthHandler(nil, nil).Routes())
	defer srv.Close()

	for path, want := range map[string]string{"/ready": "ready", "/live": "alive"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, want, body["status"])
	}
}

func TestVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil).Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, contracts.Version, body["version"])
	assert.Equal(t, contracts.APIVersion, body["api_version"])
	assert.NotEmpty(t, body["info"])
}
