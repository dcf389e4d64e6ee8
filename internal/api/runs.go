package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/schemapilot/pilotctl/schema"
)

// EnvCheck returns the backend environment report.
func (c *Client) EnvCheck(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/env-check",
		fallback: "Failed to get backend env",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UploadTables uploads local files into a run as multipart form data.
// An empty runID asks the server to create a new run.
func (c *Client) UploadTables(ctx context.Context, runID string, paths []string) (*schema.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open upload file: %w", err)
		}
		part, err := mw.CreateFormFile("files", filepath.Base(p))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("stage upload file %s: %w", p, err)
		}
	}
	if runID != "" {
		if err := mw.WriteField("run_id", runID); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out schema.UploadResult
	err := c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/upload-tables",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		fallback:    "Failed to upload tables",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateSchema triggers server-side schema inference for the run.
func (c *Client) GenerateSchema(ctx context.Context, runID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/generate-schema/" + url.PathEscape(runID),
		timeout:  generateTimeout,
		retry:    true,
		fallback: "Failed to generate schema",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateDescriptions triggers AI field descriptions for the run.
// No retry: a duplicate request would double the model spend.
func (c *Client) GenerateDescriptions(ctx context.Context, runID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/generate-descriptions/" + url.PathEscape(runID),
		timeout:  generateTimeout,
		fallback: "Failed to generate descriptions",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetRuns lists runs, best effort: any failure yields an empty list.
func (c *Client) GetRuns(ctx context.Context) []schema.Run {
	var out []schema.Run
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-runs",
		fallback: "Failed to get runs",
	}, &out); err != nil {
		return nil
	}
	return out
}

// GetRunInfo fetches one run by id.
func (c *Client) GetRunInfo(ctx context.Context, runID string) (*schema.Run, error) {
	var out schema.Run
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-run-info/" + url.PathEscape(runID),
		fallback: "Failed to get run info",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadRun restores a run's working state server-side.
func (c *Client) LoadRun(ctx context.Context, runID string) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/load-run/" + url.PathEscape(runID),
		fallback: "Failed to load run",
	}, nil)
}

// DeleteRun removes a run and its artifacts.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/delete-run/" + url.PathEscape(runID),
		fallback: "Failed to delete run",
	}, nil)
}

// DeleteFile removes one uploaded file from a run.
func (c *Client) DeleteFile(ctx context.Context, runID, filename string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/delete-file/" + url.PathEscape(runID) + "/" + url.PathEscape(filename),
		fallback: "Failed to delete file",
	}, nil)
}

// ProbeAnalysis reports whether a run has a schema analysis. A definite
// server answer maps to present or absent; transport failures and timeouts
// map to unknown so callers do not mistake an outage for "not analyzed".
func (c *Client) ProbeAnalysis(ctx context.Context, runID string) schema.AnalysisState {
	analysis, err := c.GetSchemaAnalysis(ctx, runID)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return schema.AnalysisAbsent
		}
		return schema.AnalysisUnknown
	}
	if len(analysis.Tables) == 0 {
		return schema.AnalysisAbsent
	}
	return schema.AnalysisPresent
}
