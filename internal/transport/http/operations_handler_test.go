package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bordereau/internal/operations"
	"bordereau/pkg/contracts/events"
)

type mockService struct {
	mu        sync.Mutex
	executed  []operations.OperationRequest
	cancelErr error
	cancelled []string
}

func (m *mockService) Execute(ctx context.Context, req operations.OperationRequest) (*operations.OperationResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executed = append(m.executed, req)
	return &operations.OperationResponse{ID: req.ID, Status: operations.OperationStatusCompleted}, nil
}

func (m *mockService) CancelOperation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, id)
	return m.cancelErr
}

func (m *mockService) executedRequests() []operations.OperationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]operations.OperationRequest, len(m.executed))
	copy(out, m.executed)
	return out
}

type mockSnapshots struct {
	snapshots map[string]*events.OperationSnapshot
}

func (m *mockSnapshots) GetSnapshot(id string) (*events.OperationSnapshot, bool) {
	s, ok := m.snapshots[id]
	return s, ok
}

func (m *mockSnapshots) GetAllSnapshots() []*events.OperationSnapshot {
	out := make([]*events.OperationSnapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	return out
}

func newOperationsServer(service *mockService, snapshots *mockSnapshots) *httptest.Server {
	if snapshots == nil {
		snapshots = &mockSnapshots{snapshots: map[string]*events.OperationSnapshot{}}
	}
	handler := NewOperationsHandler(service, snapshots, nil)
	return httptest.NewServer(handler.Routes())
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestStartOperationAccepted(t *testing.T) {
	service := &mockService{}
	srv := newOperationsServer(service, nil)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/", `{"input_dir":"/data/bordereaux","output_path":"/data/out.xlsx"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body StartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.OperationID)
	assert.Equal(t, "pending", body.Status)
	assert.Equal(t, "/api/operations/"+body.OperationID, body.StatusURL)

	// The run is launched asynchronously.
	assert.Eventually(t, func() bool {
		reqs := service.executedRequests()
		return len(reqs) == 1 &&
			reqs[0].ID == body.OperationID &&
			reqs[0].InputDir == "/data/bordereaux" &&
			reqs[0].OutputPath == "/data/out.xlsx"
	}, time.Second, 10*time.Millisecond)
}

func TestStartOperationCSVPathParameter(t *testing.T) {
	service := &mockService{}
	srv := newOperationsServer(service, nil)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/", `{"csv_path":"/data/out.csv"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.Eventually(t, func() bool {
		reqs := service.executedRequests()
		return len(reqs) == 1 && reqs[0].Parameters["csv_path"] == "/data/out.csv"
	}, time.Second, 10*time.Millisecond)
}

func TestStartOperationRejectsBadOutputPath(t *testing.T) {
	service := &mockService{}
	srv := newOperationsServer(service, nil)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/", `{"output_path":"report.txt"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, service.executedRequests())
}

func TestStartOperationRejectsInvalidJSON(t *testing.T) {
	srv := newOperationsServer(&mockService{}, nil)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/", `{not json`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOperation(t *testing.T) {
	snapshots := &mockSnapshots{snapshots: map[string]*events.OperationSnapshot{
		"op-1": {OperationID: "op-1", Status: "running", Progress: 40},
	}}
	srv := newOperationsServer(&mockService{}, snapshots)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/op-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot events.OperationSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Equal(t, "op-1", snapshot.OperationID)
	assert.Equal(t, 40, snapshot.Progress)
}

func TestGetOperationNotFound(t *testing.T) {
	srv := newOperationsServer(&mockService{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListOperations(t *testing.T) {
	snapshots := &mockSnapshots{snapshots: map[string]*events.OperationSnapshot{
		"op-1": {OperationID: "op-1", Status: "completed"},
		"op-2": {OperationID: "op-2", Status: "running"},
	}}
	srv := newOperationsServer(&mockService{}, snapshots)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
}

func TestCancelOperation(t *testing.T) {
	service := &mockService{}
	srv := newOperationsServer(service, nil)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/op-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []string{"op-1"}, service.cancelled)
}

func TestCancelOperationNotFound(t *testing.T) {
	service := &mockService{cancelErr: operations.ErrOperationNotFound}
	srv := newOperationsServer(service, nil)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/ghost", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
