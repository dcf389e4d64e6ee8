package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/schemapilot/pilotctl/schema"
)

// GenerateQuery converts a natural-language question into SQL against the
// given context tables. The raw body is preserved for the tolerant
// extraction pass since the model may blend SQL and commentary.
func (c *Client) GenerateQuery(ctx context.Context, runID, userQuery string, contextTables []string) (*schema.GeneratedQuery, error) {
	body := jsonBody(map[string]any{
		"query":          userQuery,
		"context_tables": contextTables,
	})

	data, err := c.doRaw(ctx, call{
		method:      http.MethodPost,
		path:        "/generate-query/" + url.PathEscape(runID),
		body:        body,
		contentType: "application/json",
		timeout:     queryTimeout,
		fallback:    "Failed to generate query",
	})
	if err != nil {
		return nil, err
	}

	out := schema.GeneratedQuery{Raw: string(data)}
	if err := unmarshalLoose(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveQuery persists SQL server-side and returns its query id.
func (c *Client) SaveQuery(ctx context.Context, runID, sqlQuery string) (string, error) {
	var out struct {
		QueryID string `json:"query_id"`
	}
	err := c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/save-query/" + url.PathEscape(runID),
		body:        jsonBody(map[string]string{"sql_query": sqlQuery}),
		contentType: "application/json",
		timeout:     resultsTimeout,
		retry:       true,
		fallback:    "Failed to save query",
	}, &out)
	if err != nil {
		return "", err
	}
	return out.QueryID, nil
}

// ExecuteQuery runs a saved query and returns the result file reference.
func (c *Client) ExecuteQuery(ctx context.Context, runID, queryID string) (*schema.ExecuteResult, error) {
	var out schema.ExecuteResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/execute-query/" + url.PathEscape(runID) + "/" + url.PathEscape(queryID),
		timeout:  queryTimeout,
		fallback: "Failed to execute query",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQueryResults fetches the columns and rows held in a result file.
func (c *Client) GetQueryResults(ctx context.Context, runID, resultFile string) (*schema.QueryResult, error) {
	var out schema.QueryResult
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-query-results/" + url.PathEscape(runID) + "/" + url.PathEscape(resultFile),
		timeout:  resultsTimeout,
		retry:    true,
		fallback: "Failed to get query results",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ModifyQuery refines a saved query with a natural-language instruction.
func (c *Client) ModifyQuery(ctx context.Context, runID, queryID, instructions string) (*schema.ModifiedQuery, error) {
	data, err := c.doRaw(ctx, call{
		method:      http.MethodPost,
		path:        "/modify-query/" + url.PathEscape(runID) + "/" + url.PathEscape(queryID),
		body:        jsonBody(map[string]string{"instructions": instructions}),
		contentType: "application/json",
		timeout:     queryTimeout,
		retry:       true,
		fallback:    "Failed to modify query",
	})
	if err != nil {
		return nil, err
	}

	out := schema.ModifiedQuery{Raw: string(data)}
	if err := unmarshalLoose(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQueries lists saved queries, best effort: failures yield an empty list.
func (c *Client) GetQueries(ctx context.Context, runID string) []schema.SavedQuery {
	var out []schema.SavedQuery
	if err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-queries/" + url.PathEscape(runID),
		fallback: "Failed to get queries",
	}, &out); err != nil {
		return nil
	}
	return out
}

// ExportResults streams the server-rendered CSV for the given rows into w.
func (c *Client) ExportResults(ctx context.Context, runID string, data []map[string]any, w io.Writer) error {
	return c.doStream(ctx, call{
		method:      http.MethodPost,
		path:        "/export-results/" + url.PathEscape(runID),
		body:        jsonBody(map[string]any{"data": data}),
		contentType: "application/json",
		fallback:    "Failed to export results",
	}, w)
}

// DownloadQuery streams saved query SQL into w.
func (c *Client) DownloadQuery(ctx context.Context, runID, queryID string, w io.Writer) error {
	return c.doStream(ctx, call{
		method:   http.MethodGet,
		path:     "/download-query/" + url.PathEscape(runID) + "/" + url.PathEscape(queryID),
		fallback: "Failed to download query",
	}, w)
}

// DownloadResult streams a result file into w.
func (c *Client) DownloadResult(ctx context.Context, runID, filename string, w io.Writer) error {
	return c.doStream(ctx, call{
		method:   http.MethodGet,
		path:     "/download-result/" + url.PathEscape(runID) + "/" + url.PathEscape(filename),
		fallback: "Failed to download result",
	}, w)
}
