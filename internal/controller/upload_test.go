package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemapilot/pilotctl/schema"
)

func TestUploadStateTransitions(t *testing.T) {
	u := NewUpload(&mockBackend{})
	assert.Equal(t, NoRun, u.State())

	u.RunID = "run-1"
	assert.Equal(t, RunSelected, u.State())

	u.Analysis = schema.AnalysisPresent
	assert.Equal(t, RunAnalyzed, u.State())

	u.NewRun()
	assert.Equal(t, NoRun, u.State())
	assert.Empty(t, u.RunID)
}

func TestUploadFilesAdoptsServerRunID(t *testing.T) {
	backend := &mockBackend{
		uploadTablesFn: func(runID string, paths []string) (*schema.UploadResult, error) {
			assert.Empty(t, runID)
			assert.Equal(t, []string{"a.csv"}, paths)
			return &schema.UploadResult{RunID: "run-7", Tables: []string{"a"}}, nil
		},
		getTablesFn: func(runID string) ([]schema.TableInfo, error) {
			assert.Equal(t, "run-7", runID)
			return []schema.TableInfo{{Name: "a", Selected: true}}, nil
		},
	}

	u := NewUpload(backend)
	require.NoError(t, u.UploadFiles(context.Background(), []string{"a.csv"}))
	assert.Equal(t, "run-7", u.RunID)
	assert.Equal(t, RunSelected, u.State())
	require.Len(t, u.Tables, 1)
}

func TestUploadFilesDetectsPriorAnalysis(t *testing.T) {
	backend := &mockBackend{
		uploadTablesFn: func(string, []string) (*schema.UploadResult, error) {
			return &schema.UploadResult{RunID: "run-7"}, nil
		},
		probeAnalysisFn: func(string) schema.AnalysisState { return schema.AnalysisPresent },
	}

	u := NewUpload(backend)
	require.NoError(t, u.UploadFiles(context.Background(), []string{"a.csv"}))
	assert.Equal(t, RunAnalyzed, u.State())
}

func TestUploadFilesRequiresPaths(t *testing.T) {
	u := NewUpload(&mockBackend{})
	require.Error(t, u.UploadFiles(context.Background(), nil))
	assert.NotEmpty(t, u.LastError)

	u.DismissError()
	assert.Empty(t, u.LastError)
}

func TestAnalyzeSchemaFailureAborts(t *testing.T) {
	backend := &mockBackend{
		generateSchemaFn: func(string) (map[string]any, error) {
			return nil, errors.New("inference crashed")
		},
	}

	u := NewUpload(backend)
	u.RunID = "run-1"
	err := u.Analyze(context.Background())
	require.Error(t, err)
	assert.Equal(t, RunSelected, u.State())
	assert.False(t, u.ReadyToExplore)
	assert.Equal(t, "inference crashed", u.LastError)
}

func TestAnalyzeDescriptionFailureTolerated(t *testing.T) {
	backend := &mockBackend{
		generateDescsFn: func(string) (map[string]any, error) {
			return nil, errors.New("model unavailable")
		},
	}

	u := NewUpload(backend)
	u.RunID = "run-1"
	require.NoError(t, u.Analyze(context.Background()))
	assert.Equal(t, RunAnalyzed, u.State())
	assert.True(t, u.DescriptionsFailed)
	assert.False(t, u.ReadyToExplore)
	assert.Equal(t, "model unavailable", u.LastError)
}

func TestAnalyzeFullSuccess(t *testing.T) {
	u := NewUpload(&mockBackend{})
	u.RunID = "run-1"
	require.NoError(t, u.Analyze(context.Background()))
	assert.Equal(t, RunAnalyzed, u.State())
	assert.False(t, u.DescriptionsFailed)
	assert.True(t, u.ReadyToExplore)
}

func TestSelectRunProbesAnalysis(t *testing.T) {
	backend := &mockBackend{
		getTablesFn: func(string) ([]schema.TableInfo, error) {
			return []schema.TableInfo{{Name: "orders", Selected: true}}, nil
		},
		probeAnalysisFn: func(string) schema.AnalysisState { return schema.AnalysisPresent },
	}

	u := NewUpload(backend)
	require.NoError(t, u.SelectRun(context.Background(), "run-3"))
	assert.Equal(t, "run-3", u.RunID)
	assert.Equal(t, RunAnalyzed, u.State())
}

func TestDeleteFileRefreshesTables(t *testing.T) {
	deleted := ""
	backend := &mockBackend{
		deleteFileFn: func(_, filename string) error {
			deleted = filename
			return nil
		},
		getTablesFn: func(string) ([]schema.TableInfo, error) {
			return []schema.TableInfo{{Name: "b", Selected: true}}, nil
		},
	}

	u := NewUpload(backend)
	u.RunID = "run-1"
	u.Tables = []schema.TableInfo{{Name: "a"}, {Name: "b"}}
	require.NoError(t, u.DeleteFile(context.Background(), "a.csv"))
	assert.Equal(t, "a.csv", deleted)
	require.Len(t, u.Tables, 1)
	assert.Equal(t, "b", u.Tables[0].Name)
}
