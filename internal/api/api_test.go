package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/giftwiser/internal/metrics"
	"github.com/mmynk/giftwiser/internal/models"
	"github.com/mmynk/giftwiser/internal/repository"
	"github.com/mmynk/giftwiser/internal/service"
	"github.com/mmynk/giftwiser/internal/storage"
	"github.com/mmynk/giftwiser/internal/storage/memory"
)

type testEnv struct {
	server *httptest.Server
	repo   *repository.Repository
	kv     *memory.Store
}

// setupTestServer creates an API server over an in-memory store.
// The repository is loaded unless load is false.
func setupTestServer(t *testing.T, load bool) *testEnv {
	t.Helper()

	reg := prometheus.NewRegistry()
	kv := memory.New()
	repo := repository.New(storage.NewPeopleStore(kv, ""), repository.Options{Metrics: metrics.New(reg)})
	if load {
		require.NoError(t, repo.Load(context.Background()))
	}

	srv := NewServer(service.NewPeopleService(repo, 390), repo, Options{MetricsPath: "/metrics", Gatherer: reg})
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		repo.Close(context.Background())
	})
	return &testEnv{server: ts, repo: repo, kv: kv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestPeopleLifecycle(t *testing.T) {
	env := setupTestServer(t, true)

	resp := env.do(t, http.MethodPost, "/api/people", AddPersonRequest{Name: "Alice", DOB: "1990/05/01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	alice := decode[PersonResponse](t, resp)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "05/01", alice.Birthday)
	assert.NotNil(t, alice.Ideas)

	resp = env.do(t, http.MethodPost, "/api/people/"+alice.ID+"/ideas",
		AddIdeaRequest{Text: "Socks", Img: "file://img1.jpg", Width: 126, Height: 189})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	idea := decode[models.Idea](t, resp)
	assert.Equal(t, "Socks", idea.Text)

	resp = env.do(t, http.MethodGet, "/api/people/"+alice.ID+"/ideas", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ideas := decode[[]models.Idea](t, resp)
	require.Len(t, ideas, 1)
	assert.Equal(t, idea.ID, ideas[0].ID)

	resp = env.do(t, http.MethodDelete, "/api/people/"+alice.ID+"/ideas/"+idea.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, env.repo.GetIdeas(alice.ID))

	resp = env.do(t, http.MethodDelete, "/api/people/"+alice.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again is still a success.
	resp = env.do(t, http.MethodDelete, "/api/people/"+alice.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/people/"+alice.ID+"/ideas", nil)
	assert.Equal(t, "[]\n", readBody(t, resp))
}

func TestListPeopleSortedByBirthday(t *testing.T) {
	env := setupTestServer(t, true)

	for _, dob := range []string{"1990/03/10", "1985/01/20", "2000/03/10"} {
		resp := env.do(t, http.MethodPost, "/api/people", AddPersonRequest{Name: dob, DOB: dob})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/api/people", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	people := decode[[]PersonResponse](t, resp)

	var got []string
	for _, p := range people {
		got = append(got, p.DOB)
	}
	assert.Equal(t, []string{"1985/01/20", "1990/03/10", "2000/03/10"}, got)
}

func TestErrorMapping(t *testing.T) {
	env := setupTestServer(t, true)

	resp := env.do(t, http.MethodPost, "/api/people", AddPersonRequest{Name: "", DOB: "1990/05/01"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "error")

	resp = env.do(t, http.MethodPost, "/api/people/nobody/ideas", AddIdeaRequest{Text: "Hat", Img: "file://x.jpg"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/people", strings.NewReader("{"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestNotReady(t *testing.T) {
	env := setupTestServer(t, false)

	resp := env.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/people", AddPersonRequest{Name: "Alice", DOB: "1990/05/01"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/people", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", readBody(t, resp))

	resp = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyReportsSaveFailure(t *testing.T) {
	env := setupTestServer(t, true)

	resp := env.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ReadyResponse{Status: "ready"}, decode[ReadyResponse](t, resp))

	env.kv.FailPut(errors.New("disk full"))
	resp = env.do(t, http.MethodPost, "/api/people", AddPersonRequest{Name: "Alice", DOB: "1990/05/01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Error(t, env.repo.Flush(context.Background()))

	resp = env.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decode[ReadyResponse](t, resp)
	assert.Contains(t, ready.LastSaveError, "disk full")
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t, true)

	resp := env.do(t, http.MethodPost, "/api/people", AddPersonRequest{Name: "Alice", DOB: "1990/05/01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "giftwiser_people 1")
	assert.Contains(t, body, `giftwiser_store_loads_total{result="ok"} 1`)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
