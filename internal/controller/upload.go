// Package controller holds the per-workflow state machines behind the CLI.
// Each controller owns its state exclusively and talks to the backend
// through contract.Backend, so the transitions are testable with a mock.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

// UploadState enumerates the upload workflow states.
type UploadState int

const (
	// NoRun means nothing has been uploaded or selected yet.
	NoRun UploadState = iota
	// RunSelected means a run exists but has no schema analysis.
	RunSelected
	// RunAnalyzed means the run's schema analysis is in place.
	RunAnalyzed
)

// Upload drives the upload-and-analyze workflow.
type Upload struct {
	backend contract.Backend

	RunID    string
	Tables   []schema.TableInfo
	Analysis schema.AnalysisState

	// DescriptionsFailed records a tolerated step-two failure.
	DescriptionsFailed bool

	// ReadyToExplore flags a fully analyzed run worth switching to the explorer for.
	ReadyToExplore bool

	// LastError holds the most recent failure for banner-style display.
	LastError string
}

// NewUpload returns an upload controller in the NoRun state.
func NewUpload(backend contract.Backend) *Upload {
	return &Upload{backend: backend, Analysis: schema.AnalysisAbsent}
}

// State derives the workflow state from the held run.
func (u *Upload) State() UploadState {
	switch {
	case u.RunID == "":
		return NoRun
	case u.Analysis == schema.AnalysisPresent:
		return RunAnalyzed
	default:
		return RunSelected
	}
}

// NewRun resets the controller to a clean slate.
func (u *Upload) NewRun() {
	*u = Upload{backend: u.backend, Analysis: schema.AnalysisAbsent}
}

// DismissError clears the error banner.
func (u *Upload) DismissError() {
	u.LastError = ""
}

// SelectRun loads an existing run and probes its analysis state.
func (u *Upload) SelectRun(ctx context.Context, runID string) error {
	if err := u.backend.LoadRun(ctx, runID); err != nil {
		u.LastError = err.Error()
		return err
	}
	tables, err := u.backend.GetTables(ctx, runID)
	if err != nil {
		u.LastError = err.Error()
		return err
	}
	u.RunID = runID
	u.Tables = tables
	u.Analysis = u.backend.ProbeAnalysis(ctx, runID)
	u.ReadyToExplore = false
	u.DescriptionsFailed = false
	return nil
}

// UploadFiles creates or augments the run with local files, then re-probes
// the analysis state in case the run already had one.
func (u *Upload) UploadFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		err := errors.New("no files to upload")
		u.LastError = err.Error()
		return err
	}

	res, err := u.backend.UploadTables(ctx, u.RunID, paths)
	if err != nil {
		u.LastError = err.Error()
		return err
	}
	u.RunID = res.RunID

	tables, err := u.backend.GetTables(ctx, u.RunID)
	if err != nil {
		u.LastError = err.Error()
		return err
	}
	u.Tables = tables
	u.Analysis = u.backend.ProbeAnalysis(ctx, u.RunID)
	return nil
}

// Analyze runs the two-step pipeline: schema inference, then AI field
// descriptions. A description failure is tolerated and recorded; a schema
// failure aborts. Only full success marks the run ready for exploration.
func (u *Upload) Analyze(ctx context.Context) error {
	if u.RunID == "" {
		err := errors.New("no run selected")
		u.LastError = err.Error()
		return err
	}

	if _, err := u.backend.GenerateSchema(ctx, u.RunID); err != nil {
		u.LastError = err.Error()
		return fmt.Errorf("generate schema: %w", err)
	}
	u.Analysis = schema.AnalysisPresent

	if _, err := u.backend.GenerateDescriptions(ctx, u.RunID); err != nil {
		u.DescriptionsFailed = true
		u.LastError = err.Error()
		return nil
	}
	u.DescriptionsFailed = false
	u.ReadyToExplore = true
	return nil
}

// DeleteFile removes one uploaded file and refreshes the table list.
func (u *Upload) DeleteFile(ctx context.Context, filename string) error {
	if err := u.backend.DeleteFile(ctx, u.RunID, filename); err != nil {
		u.LastError = err.Error()
		return err
	}
	tables, err := u.backend.GetTables(ctx, u.RunID)
	if err != nil {
		u.LastError = err.Error()
		return err
	}
	u.Tables = tables
	return nil
}
