package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/request"
	"github.com/schemapilot/pilotctl/schema"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// newTestClient points a client with fast retry delays at a stub server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &contract.Config{
		APIBaseURL: srv.URL,
		Timeout:    5 * time.Second,
		RetryMax:   3,
		RetryDelay: time.Millisecond,
	}
	return NewClient(cfg)
}

func TestStatusErrorDetailPropagated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail": "run is locked"}`))
	}))

	err := c.DeleteRun(context.Background(), "run-1")
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "run is locked", se.Detail)
}

func TestStatusErrorFallbackMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))

	err := c.DeleteRun(context.Background(), "run-1")
	require.Error(t, err)
	assert.EqualError(t, err, "Failed to delete run")
}

func TestBestEffortReadsNeverError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	assert.Empty(t, c.GetRuns(context.Background()))
	assert.Empty(t, c.GetChatHistory(context.Background(), "run-1"))
	assert.Empty(t, c.GetQueries(context.Background(), "run-1"))
}

func TestGetTablesSelectedDefaultsTrue(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get-tables/run-1", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"name": "orders"},
			{"name": "users", "selected": false, "hasDescriptions": true}
		]`))
	}))

	tables, err := c.GetTables(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, schema.TableInfo{Name: "orders", Selected: true}, tables[0])
	assert.Equal(t, schema.TableInfo{Name: "users", Selected: false, HasDescriptions: true}, tables[1])
}

func TestUploadTablesMultipart(t *testing.T) {
	dir := t.TempDir()
	paths := []string{dir + "/a.csv", dir + "/b.csv"}
	for _, p := range paths {
		require.NoError(t, writeFile(p, "x,y\n1,2\n"))
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload-tables", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Len(t, r.MultipartForm.File["files"], 2)
		assert.Equal(t, "run-9", r.FormValue("run_id"))
		_ = json.NewEncoder(w).Encode(schema.UploadResult{RunID: "run-9", Tables: []string{"a", "b"}})
	}))

	res, err := c.UploadTables(context.Background(), "run-9", paths)
	require.NoError(t, err)
	assert.Equal(t, "run-9", res.RunID)
	assert.Equal(t, []string{"a", "b"}, res.Tables)
}

func TestSaveQueryRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte(`{"query_id": "q-1"}`))
	}))

	id, err := c.SaveQuery(context.Background(), "run-1", "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "q-1", id)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStatusErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "bad sql"}`))
	}))

	_, err := c.SaveQuery(context.Background(), "run-1", "SELEC")
	require.Error(t, err)
	assert.EqualError(t, err, "bad sql")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDefaultTimeoutSurfacesSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(&contract.Config{
		APIBaseURL: srv.URL,
		Timeout:    30 * time.Millisecond,
		RetryMax:   0,
		RetryDelay: time.Millisecond,
	})

	_, err := c.EnvCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, request.ErrTimedOut)
}

func TestGenerateQueryKeepsRawBody(t *testing.T) {
	body := `{"sql_query": "SELECT COUNT(*) FROM orders", "commentary": "counts all rows"}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-query/run-1", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "count rows", req["query"])
		assert.Equal(t, []any{"orders"}, req["context_tables"])

		_, _ = w.Write([]byte(body))
	}))

	got, err := c.GenerateQuery(context.Background(), "run-1", "count rows", []string{"orders"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM orders", got.SQLQuery)
	assert.Equal(t, "counts all rows", got.Commentary)
	assert.Equal(t, body, got.Raw)
}

func TestModifyQueryStringBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"SELECT 1 LIMIT 5"`))
	}))

	got, err := c.ModifyQuery(context.Background(), "run-1", "q-1", "add a limit")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 LIMIT 5", got.ModifiedSQLQuery)
}

func TestProbeAnalysis(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"run_id": "run-1", "tables": {"orders": []}}`))
		}))
		assert.Equal(t, schema.AnalysisPresent, c.ProbeAnalysis(context.Background(), "run-1"))
	})

	t.Run("absent on empty tables", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"run_id": "run-1", "tables": {}}`))
		}))
		assert.Equal(t, schema.AnalysisAbsent, c.ProbeAnalysis(context.Background(), "run-1"))
	})

	t.Run("absent on not found", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		assert.Equal(t, schema.AnalysisAbsent, c.ProbeAnalysis(context.Background(), "run-1"))
	})

	t.Run("unknown on transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // connection refused from here on

		c := NewClient(&contract.Config{
			APIBaseURL: srv.URL,
			Timeout:    time.Second,
			RetryMax:   0,
			RetryDelay: time.Millisecond,
		})
		assert.Equal(t, schema.AnalysisUnknown, c.ProbeAnalysis(context.Background(), "run-1"))
	})
}

func TestExportResultsStreamsCSV(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/export-results/run-1", r.URL.Path)
		_, _ = w.Write([]byte("x,y\n1,2\n"))
	}))

	var buf bytes.Buffer
	data := []map[string]any{{"x": 1, "y": 2}}
	require.NoError(t, c.ExportResults(context.Background(), "run-1", data, &buf))
	assert.Equal(t, "x,y\n1,2\n", buf.String())
}
