package controller

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

// Explorer loads a run's tables and schema analysis for browsing.
// Table switches never re-fetch the analysis; preview rows are fetched
// lazily and cached per table and limit.
type Explorer struct {
	backend contract.Backend

	RunID    string
	Tables   []schema.TableInfo
	Analysis *schema.SchemaAnalysis
	Selected string

	PreviewLimit int
	previews     map[string]*schema.TablePreview

	LastError string
}

// NewExplorer returns an explorer with the given default preview limit.
func NewExplorer(backend contract.Backend, previewLimit int) *Explorer {
	return &Explorer{
		backend:      backend,
		PreviewLimit: previewLimit,
		previews:     make(map[string]*schema.TablePreview),
	}
}

// Load fetches the table list and analysis map in parallel and selects the
// first table.
func (e *Explorer) Load(ctx context.Context, runID string) error {
	e.RunID = runID
	e.previews = make(map[string]*schema.TablePreview)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tables, err := e.backend.GetTables(gctx, runID)
		if err != nil {
			return err
		}
		e.Tables = tables
		return nil
	})
	g.Go(func() error {
		analysis, err := e.backend.GetSchemaAnalysis(gctx, runID)
		if err != nil {
			return err
		}
		e.Analysis = analysis
		return nil
	})
	if err := g.Wait(); err != nil {
		e.LastError = err.Error()
		return err
	}

	e.Selected = ""
	if len(e.Tables) > 0 {
		e.Selected = e.Tables[0].Name
	}
	return nil
}

// SelectTable switches the browsing focus to a loaded table.
func (e *Explorer) SelectTable(name string) error {
	for _, t := range e.Tables {
		if t.Name == name {
			e.Selected = name
			return nil
		}
	}
	err := fmt.Errorf("unknown table: %s", name)
	e.LastError = err.Error()
	return err
}

// SelectedFields returns the column statistics of the selected table.
func (e *Explorer) SelectedFields() []schema.FieldStats {
	if e.Analysis == nil || e.Selected == "" {
		return nil
	}
	return e.Analysis.Tables[e.Selected]
}

// Preview returns up to PreviewLimit raw rows of the selected table,
// hitting the backend only on a cache miss.
func (e *Explorer) Preview(ctx context.Context) (*schema.TablePreview, error) {
	if e.Selected == "" {
		err := fmt.Errorf("no table selected")
		e.LastError = err.Error()
		return nil, err
	}

	key := fmt.Sprintf("%s:%d", e.Selected, e.PreviewLimit)
	if p, ok := e.previews[key]; ok {
		return p, nil
	}

	p, err := e.backend.GetTablePreview(ctx, e.RunID, e.Selected, e.PreviewLimit)
	if err != nil {
		e.LastError = err.Error()
		return nil, err
	}
	e.previews[key] = p
	return p, nil
}

// SetPreviewLimit changes the preview row cap. Earlier fetches at other
// limits stay cached.
func (e *Explorer) SetPreviewLimit(limit int) error {
	ok := false
	for _, l := range schema.PreviewLimits {
		if l == limit {
			ok = true
			break
		}
	}
	if !ok {
		err := fmt.Errorf("preview limit must be one of %v, got %d", schema.PreviewLimits, limit)
		e.LastError = err.Error()
		return err
	}
	e.PreviewLimit = limit
	return nil
}

// UpdateDescription edits one column description on the server and patches
// the local analysis so the change shows without a reload.
func (e *Explorer) UpdateDescription(ctx context.Context, tableName, fieldName, description string) error {
	if err := e.backend.UpdateFieldDescription(ctx, e.RunID, tableName, fieldName, description); err != nil {
		e.LastError = err.Error()
		return err
	}
	if e.Analysis == nil {
		return nil
	}
	fields := e.Analysis.Tables[tableName]
	for i := range fields {
		if fields[i].ColumnName == fieldName {
			fields[i].Description = description
			break
		}
	}
	return nil
}
