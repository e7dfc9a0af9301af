package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kvstore/internal/application/service"
	"kvstore/internal/platform/config"
	"kvstore/internal/platform/repository"
	"kvstore/internal/platform/server/handler/dbentry"
	"kvstore/internal/platform/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	path := filepath.Join(t.TempDir(), "data.db")
	repo, err := repository.NewLogIndexRepository(storage.NewLog(path), 16, logger)
	require.NoError(t, err)
	handler := dbentry.NewDbEntryHandler(
		service.NewSaveEntryService(repo, logger),
		service.NewGetEntryService(repo, logger),
		repo,
	)
	srv := NewServer(config.Config{ServerPort: 0}, handler, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, path
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestServer_SaveAndGet(t *testing.T) {
	ts, path := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/db/greeting", "hello big world")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved dbentry.EntryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &saved))
	assert.Equal(t, dbentry.EntryResponse{Key: "greeting", Value: "hello big world"}, saved)

	resp, body = do(t, http.MethodGet, ts.URL+"/db/greeting", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dbentry.EntryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "hello big world", got.Value)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SET greeting hello big world\n", string(data))
}

func TestServer_EmptyValueIsFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/db/blank", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, http.MethodGet, ts.URL+"/db/blank", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"key":"blank","value":""}`, body)
}

func TestServer_GetMissing(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := do(t, http.MethodGet, ts.URL+"/db/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_RejectsUnrepresentableEntries(t *testing.T) {
	ts, path := newTestServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/db/k", "two\nlines")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/db/a%20b", "v")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestServer_WriteFailure(t *testing.T) {
	ts, path := newTestServer(t)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))

	resp, _ := do(t, http.MethodPost, ts.URL+"/db/k", "v")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, ts.URL+"/db/k", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListAndStats(t *testing.T) {
	ts, path := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/db/b", "2")
	do(t, http.MethodPost, ts.URL+"/db/a", "1")
	do(t, http.MethodPost, ts.URL+"/db/a", "3")

	_, body := do(t, http.MethodGet, ts.URL+"/db", "")
	assert.JSONEq(t, `[{"key":"a","value":"3"},{"key":"b","value":"2"}]`, body)

	_, body = do(t, http.MethodGet, ts.URL+"/stats", "")
	var stats dbentry.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, dbentry.StatsResponse{Size: 2, Capacity: 16, LogPath: path}, stats)
}

func TestServer_EscapedKeys(t *testing.T) {
	ts, path := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/db/a%2Fb", "slash")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"key":"a/b","value":"slash"}`, body)
	resp, _ = do(t, http.MethodPost, ts.URL+"/db/100%25", "percent")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body = do(t, http.MethodGet, ts.URL+"/db/a%2Fb", "")
	assert.JSONEq(t, `{"key":"a/b","value":"slash"}`, body)
	_, body = do(t, http.MethodGet, ts.URL+"/db/100%25", "")
	assert.JSONEq(t, `{"key":"100%","value":"percent"}`, body)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SET a/b slash\nSET 100% percent\n", string(data))
}
