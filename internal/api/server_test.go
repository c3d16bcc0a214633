package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/client"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/download"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/state"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/testserver"
)

func newTestServer(t *testing.T) (*httptest.Server, *testserver.Fixture) {
	t.Helper()

	f := testserver.NewFixture()
	t.Cleanup(f.Close)

	rt := async.NewRuntime(2)
	t.Cleanup(rt.Shutdown)

	dir := t.TempDir()
	ledger, err := storage.NewSQLiteLedger(filepath.Join(dir, "launcher.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	pipeline := download.NewPipeline(client.NewHTTPClient(5*time.Second), download.Options{
		CatalogURL:   f.CatalogURL(),
		ResourcesURL: f.ResourcesURL(),
		Concurrency:  4,
		Platform:     models.Platform{OS: "linux", Arch: "x86_64"},
	})
	b := bridge.New(rt, state.New(dir), pipeline, ledger, ledger)
	t.Cleanup(b.Close)

	ts := httptest.NewServer(NewServer(":0", b).Router())
	t.Cleanup(ts.Close)
	return ts, f
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// runTask creates a task and awaits it, returning the await response
func runTask(t *testing.T, base, kind, arg string) map[string]any {
	t.Helper()

	status, created := do(t, http.MethodPost, base+"/v1/tasks", fmt.Sprintf(`{"kind":%q,"arg":%q}`, kind, arg))
	require.Equal(t, http.StatusCreated, status, created)
	handle := uint64(created["handle"].(float64))

	status, res := do(t, http.MethodPost, fmt.Sprintf("%s/v1/tasks/%d/await?kind=%s", base, handle, kind), "")
	require.Equal(t, http.StatusOK, status)
	return res
}

func TestHealthzEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["active_tasks"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/healthz", "")

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `launcher_http_requests_total{method="GET",path="/healthz",status="200"}`)
	assert.Contains(t, string(raw), "launcher_artifacts_total")
}

func TestInstallOverHTTP(t *testing.T) {
	ts, f := newTestServer(t)

	res := runTask(t, ts.URL, "catalog", "")
	assert.Equal(t, "success", res["status"])
	assert.Equal(t, float64(0), res["code"])
	assert.NotContains(t, res, "error")

	status, latest := do(t, http.MethodGet, ts.URL+"/v1/catalog/latest", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1.20", latest["id"])

	status, version := do(t, http.MethodGet, ts.URL+"/v1/catalog/versions/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1.19", version["id"])
	assert.Equal(t, "release", version["type"])

	status, _ = do(t, http.MethodGet, ts.URL+"/v1/catalog/versions/7", "")
	assert.Equal(t, http.StatusNotFound, status)

	for _, kind := range []string{"manifest", "libraries", "assets", "jar"} {
		res := runTask(t, ts.URL, kind, "1.20")
		assert.Equal(t, "success", res["status"], kind)
	}
	assert.Equal(t, 1, f.Server.Gets(testserver.LibraryPath))
	assert.Equal(t, 1, f.Server.Gets(f.AssetPath()))

	status, history := do(t, http.MethodGet, ts.URL+"/v1/history?limit=2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), history["total"])
	assert.Len(t, history["tasks"], 2)
}

func TestAwaitReportsFailure(t *testing.T) {
	ts, f := newTestServer(t)
	f.Server.Fail(testserver.CatalogPath, http.StatusNotFound)

	res := runTask(t, ts.URL, "catalog", "")
	assert.Equal(t, "network_error", res["status"])
	assert.Equal(t, float64(bridge.NetworkError), res["code"])
	assert.Contains(t, res["error"], "HTTP error 404")
}

func TestPreconditionFaultsBecomeConflicts(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := do(t, http.MethodGet, ts.URL+"/v1/catalog/latest", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "catalog read before it was written", body["error"])

	status, _ = do(t, http.MethodGet, ts.URL+"/v1/tasks/42", "")
	assert.Equal(t, http.StatusConflict, status)

	runTask(t, ts.URL, "catalog", "")
	status, body = do(t, http.MethodPost, ts.URL+"/v1/tasks/1/await?kind=catalog", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "task handle 1 was already consumed", body["error"])

	status, _ = do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, status, "the server keeps serving after a fault")
}

func TestBadRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	status, _ := do(t, http.MethodPost, ts.URL+"/v1/tasks", `{"kind":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, ts.URL+"/v1/tasks", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodGet, ts.URL+"/v1/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodDelete, ts.URL+"/v1/tasks/1", "")
	assert.Equal(t, http.StatusBadRequest, status, "kind is required")
}

func TestPollAndCancel(t *testing.T) {
	ts, _ := newTestServer(t)

	status, created := do(t, http.MethodPost, ts.URL+"/v1/tasks", `{"kind":"catalog"}`)
	require.Equal(t, http.StatusCreated, status)
	url := fmt.Sprintf("%s/v1/tasks/%d", ts.URL, uint64(created["handle"].(float64)))

	status, view := do(t, http.MethodGet, url, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "catalog", view["kind"])

	status, cancelled := do(t, http.MethodDelete, url+"?kind=catalog", "")
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "cancelled", cancelled["status"])

	status, _ = do(t, http.MethodGet, url, "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestPollReportsCompletion(t *testing.T) {
	ts, _ := newTestServer(t)

	status, created := do(t, http.MethodPost, ts.URL+"/v1/tasks", `{"kind":"catalog"}`)
	require.Equal(t, http.StatusCreated, status)
	handle := created["handle"].(float64)
	url := fmt.Sprintf("%s/v1/tasks/%d", ts.URL, uint64(handle))

	deadline := time.Now().Add(5 * time.Second)
	for {
		status, view := do(t, http.MethodGet, url, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, handle, view["handle"])
		assert.Equal(t, "catalog", view["kind"])
		if view["done"] == true {
			break
		}
		require.True(t, time.Now().Before(deadline), "task never finished")
		time.Sleep(10 * time.Millisecond)
	}

	status, res := do(t, http.MethodPost, url+"/await?kind=catalog", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", res["status"])

	status, _ = do(t, http.MethodGet, url, "")
	assert.Equal(t, http.StatusConflict, status)
}
