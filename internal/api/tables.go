package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/schemapilot/pilotctl/schema"
)

// tableWire mirrors the backend table shape. Selected is a pointer because
// servers that omit the flag mean "selected".
type tableWire struct {
	Name            string `json:"name"`
	HasDescriptions bool   `json:"hasDescriptions"`
	Selected        *bool  `json:"selected"`
}

// GetTables lists the run's tables with the selected flag defaulted to true.
func (c *Client) GetTables(ctx context.Context, runID string) ([]schema.TableInfo, error) {
	var wire []tableWire
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-tables/" + url.PathEscape(runID),
		fallback: "Failed to get tables",
	}, &wire)
	if err != nil {
		return nil, err
	}

	tables := make([]schema.TableInfo, 0, len(wire))
	for _, t := range wire {
		selected := true
		if t.Selected != nil {
			selected = *t.Selected
		}
		tables = append(tables, schema.TableInfo{
			Name:            t.Name,
			HasDescriptions: t.HasDescriptions,
			Selected:        selected,
		})
	}
	return tables, nil
}

// GetSchemaAnalysis returns per-table column statistics for the run.
// The server detail message is propagated on failure.
func (c *Client) GetSchemaAnalysis(ctx context.Context, runID string) (*schema.SchemaAnalysis, error) {
	var out schema.SchemaAnalysis
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-schema-analysis/" + url.PathEscape(runID),
		fallback: "Failed to get schema analysis",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFieldDescription edits one column's description.
func (c *Client) UpdateFieldDescription(ctx context.Context, runID, tableName, fieldName, description string) error {
	body := jsonBody(map[string]string{
		"table_name":  tableName,
		"field_name":  fieldName,
		"description": description,
	})
	return c.do(ctx, call{
		method:      http.MethodPut,
		path:        "/update-field-description/" + url.PathEscape(runID),
		body:        body,
		contentType: "application/json",
		fallback:    "Failed to update field description",
	}, nil)
}

// GetTablePreview fetches up to limit raw rows of a table.
func (c *Client) GetTablePreview(ctx context.Context, runID, tableName string, limit int) (*schema.TablePreview, error) {
	var out schema.TablePreview
	path := fmt.Sprintf("/preview-table/%s/%s?limit=%d", url.PathEscape(runID), url.PathEscape(tableName), limit)
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     path,
		fallback: "Failed to get preview for " + tableName,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDescriptions lists the description artifacts produced for the run.
func (c *Client) GetDescriptions(ctx context.Context, runID string) ([]schema.DescriptionFile, error) {
	var out []schema.DescriptionFile
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/get-descriptions/" + url.PathEscape(runID),
		fallback: "Failed to get descriptions",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadDescription streams a description artifact into w.
func (c *Client) DownloadDescription(ctx context.Context, runID, filename string, w io.Writer) error {
	return c.doStream(ctx, call{
		method:   http.MethodGet,
		path:     "/download-description/" + url.PathEscape(runID) + "/" + url.PathEscape(filename),
		fallback: "Failed to download description file",
	}, w)
}
