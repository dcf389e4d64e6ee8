package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemapilot/pilotctl/internal/sqlfmt"
	"github.com/schemapilot/pilotctl/schema"
)

func chatBackend() *mockBackend {
	return &mockBackend{
		getTablesFn: func(string) ([]schema.TableInfo, error) {
			return []schema.TableInfo{
				{Name: "orders", Selected: true},
				{Name: "users", Selected: true},
			}, nil
		},
	}
}

func newTestChat(backend *mockBackend) *Chat {
	c := NewChat(backend)
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return at }
	return c
}

func TestChatLoadRestoresLatestExchange(t *testing.T) {
	backend := chatBackend()
	backend.getChatHistoryFn = func(string) []schema.ChatMessage {
		return []schema.ChatMessage{
			{ID: "2", UserQuery: "newest", SQLQuery: "SELECT 2", Commentary: "latest"},
			{ID: "1", UserQuery: "oldest", SQLQuery: "SELECT 1"},
		}
	}
	backend.getQueriesFn = func(string) []schema.SavedQuery {
		return []schema.SavedQuery{{QueryID: "q-1", SQLQuery: "SELECT 1"}}
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))

	assert.Equal(t, "newest", c.UserQuery)
	assert.Equal(t, sqlfmt.Pretty("SELECT 2"), c.DraftSQL)
	assert.Equal(t, "latest", c.Commentary)
	assert.Len(t, c.Queries, 1)
	assert.Len(t, c.Tables, 2)
}

func TestChatLoadFailsOnTableError(t *testing.T) {
	backend := chatBackend()
	backend.getTablesFn = func(string) ([]schema.TableInfo, error) {
		return nil, errors.New("run not loaded")
	}

	c := newTestChat(backend)
	require.Error(t, c.Load(context.Background(), "run-1"))
	assert.Equal(t, "run not loaded", c.LastError)
}

func TestChatGenerateRequiresQuestion(t *testing.T) {
	c := newTestChat(chatBackend())
	c.UserQuery = "   "
	require.Error(t, c.Generate(context.Background()))
	assert.NotEmpty(t, c.LastError)
}

func TestChatGeneratePrependsHistoryAndMirrors(t *testing.T) {
	raw := `{"sql_query": "SELECT COUNT(*) FROM orders", "commentary": "counts rows"}`
	var saved []schema.ChatMessage
	backend := chatBackend()
	backend.generateQueryFn = func(_, userQuery string, tables []string) (*schema.GeneratedQuery, error) {
		assert.Equal(t, "how many orders", userQuery)
		assert.Equal(t, []string{"orders", "users"}, tables)
		return &schema.GeneratedQuery{
			SQLQuery:   "SELECT COUNT(*) FROM orders",
			Commentary: "counts rows",
			Raw:        raw,
		}, nil
	}
	backend.saveChatMsgFn = func(_ string, msg schema.ChatMessage) error {
		saved = append(saved, msg)
		return nil
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))
	c.UserQuery = "how many orders"
	require.NoError(t, c.Generate(context.Background()))

	assert.Equal(t, sqlfmt.Pretty("SELECT COUNT(*) FROM orders"), c.DraftSQL)
	assert.Equal(t, "counts rows", c.Commentary)

	require.Len(t, c.History, 1)
	entry := c.History[0]
	assert.Equal(t, "how many orders", entry.UserQuery)
	assert.False(t, entry.Executed)
	assert.Equal(t, "1788177600000", entry.ID, "draft ids are millisecond unix time")

	require.Len(t, saved, 1)
	assert.Equal(t, entry, saved[0])
}

func TestChatGenerateExcludesDeselectedTables(t *testing.T) {
	var gotTables []string
	backend := chatBackend()
	backend.generateQueryFn = func(_, _ string, tables []string) (*schema.GeneratedQuery, error) {
		gotTables = tables
		return &schema.GeneratedQuery{SQLQuery: "SELECT 1"}, nil
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))
	require.NoError(t, c.SetTableSelected("users", false))

	c.UserQuery = "count"
	require.NoError(t, c.Generate(context.Background()))
	assert.Equal(t, []string{"orders"}, gotTables)
}

func TestChatGenerateKeepsDraftWhenMirrorFails(t *testing.T) {
	backend := chatBackend()
	backend.generateQueryFn = func(_, _ string, _ []string) (*schema.GeneratedQuery, error) {
		return &schema.GeneratedQuery{SQLQuery: "SELECT 1"}, nil
	}
	backend.saveChatMsgFn = func(string, schema.ChatMessage) error {
		return errors.New("history store down")
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))
	c.UserQuery = "count"
	require.Error(t, c.Generate(context.Background()))

	assert.Equal(t, sqlfmt.Pretty("SELECT 1"), c.DraftSQL)
	assert.Len(t, c.History, 1)
	assert.Equal(t, "history store down", c.LastError)
}

func TestChatExecutePipelineAndPagination(t *testing.T) {
	rows := make([]map[string]any, 120)
	for i := range rows {
		rows[i] = map[string]any{"n": i}
	}

	var saved []schema.ChatMessage
	backend := chatBackend()
	backend.generateQueryFn = func(_, _ string, _ []string) (*schema.GeneratedQuery, error) {
		return &schema.GeneratedQuery{SQLQuery: "SELECT n FROM orders"}, nil
	}
	backend.saveQueryFn = func(_, sqlQuery string) (string, error) {
		assert.Equal(t, sqlfmt.Pretty("SELECT n FROM orders"), sqlQuery)
		return "q-9", nil
	}
	backend.executeQueryFn = func(_, queryID string) (*schema.ExecuteResult, error) {
		assert.Equal(t, "q-9", queryID)
		return &schema.ExecuteResult{ResultFile: "r-9.json"}, nil
	}
	backend.getResultsFn = func(_, resultFile string) (*schema.QueryResult, error) {
		assert.Equal(t, "r-9.json", resultFile)
		return &schema.QueryResult{Columns: []string{"n"}, Data: rows}, nil
	}
	backend.saveChatMsgFn = func(_ string, msg schema.ChatMessage) error {
		saved = append(saved, msg)
		return nil
	}
	backend.getQueriesFn = func(string) []schema.SavedQuery {
		return []schema.SavedQuery{{QueryID: "q-9"}}
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))
	c.UserQuery = "list orders"
	require.NoError(t, c.Generate(context.Background()))
	require.NoError(t, c.Execute(context.Background()))

	assert.Equal(t, "q-9", c.CurrentQueryID)
	assert.Equal(t, 3, c.PageCount())
	assert.Equal(t, 1, c.ResultsPage)
	assert.Len(t, c.PageRows(), 50)

	require.NoError(t, c.SetPage(3))
	assert.Len(t, c.PageRows(), 20)
	require.Error(t, c.SetPage(4))
	require.Error(t, c.SetPage(0))

	assert.True(t, c.History[0].Executed)
	assert.Equal(t, 120, c.History[0].ResultCount)
	require.Len(t, saved, 2, "generation mirror plus executed re-mirror")
	assert.True(t, saved[1].Executed)

	assert.Len(t, c.Queries, 1)
}

func TestChatExecuteRequiresDraft(t *testing.T) {
	c := newTestChat(chatBackend())
	require.Error(t, c.Execute(context.Background()))
}

func TestChatRefineReplacesDraft(t *testing.T) {
	backend := chatBackend()
	backend.modifyQueryFn = func(_, queryID, instructions string) (*schema.ModifiedQuery, error) {
		assert.Equal(t, "q-9", queryID)
		assert.Equal(t, "limit to 10", instructions)
		return &schema.ModifiedQuery{ModifiedSQLQuery: "SELECT n FROM orders LIMIT 10"}, nil
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))
	c.DraftSQL = "SELECT n FROM orders"
	c.CurrentQueryID = "q-9"

	require.NoError(t, c.Refine(context.Background(), "limit to 10"))
	assert.Equal(t, sqlfmt.Pretty("SELECT n FROM orders LIMIT 10"), c.DraftSQL)
	require.Len(t, c.History, 1)
	assert.Equal(t, "limit to 10", c.History[0].UserQuery)
	assert.Nil(t, c.Results)
}

func TestChatRefineFallsBackToDraftOnEmptyResponse(t *testing.T) {
	backend := chatBackend()
	backend.modifyQueryFn = func(_, _, _ string) (*schema.ModifiedQuery, error) {
		return &schema.ModifiedQuery{}, nil
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))
	c.DraftSQL = "SELECT 1"
	c.CurrentQueryID = "q-1"

	require.NoError(t, c.Refine(context.Background(), "nope"))
	assert.Equal(t, sqlfmt.Pretty("SELECT 1"), c.DraftSQL)
}

func TestChatRefineRequiresSavedQuery(t *testing.T) {
	c := newTestChat(chatBackend())
	c.DraftSQL = "SELECT 1"
	require.Error(t, c.Refine(context.Background(), "tighten it"))
}

func TestChatHistoryActions(t *testing.T) {
	backend := chatBackend()
	backend.getChatHistoryFn = func(string) []schema.ChatMessage {
		return []schema.ChatMessage{
			{ID: "2", UserQuery: "second", SQLQuery: "SELECT 2"},
			{ID: "1", UserQuery: "first", SQLQuery: "SELECT 1"},
		}
	}

	var deleted string
	backend.deleteChatMsgFn = func(_, messageID string) error {
		deleted = messageID
		return nil
	}
	var savedSQL string
	backend.saveQueryFn = func(_, sqlQuery string) (string, error) {
		savedSQL = sqlQuery
		return "q-77", nil
	}

	c := newTestChat(backend)
	require.NoError(t, c.Load(context.Background(), "run-1"))

	t.Run("restore", func(t *testing.T) {
		require.NoError(t, c.RestoreFromHistory("1"))
		assert.Equal(t, "first", c.UserQuery)
		assert.Equal(t, sqlfmt.Pretty("SELECT 1"), c.DraftSQL)
	})

	t.Run("save as query", func(t *testing.T) {
		id, err := c.SaveHistoryAsQuery(context.Background(), "2")
		require.NoError(t, err)
		assert.Equal(t, "q-77", id)
		assert.Equal(t, "SELECT 2", savedSQL)
	})

	t.Run("edit resets execution state", func(t *testing.T) {
		c.History[0].Executed = true
		c.History[0].ResultCount = 5
		require.NoError(t, c.EditHistoryMessage(context.Background(), "2", "SELECT 22"))
		assert.Equal(t, sqlfmt.Pretty("SELECT 22"), c.History[0].SQLQuery)
		assert.False(t, c.History[0].Executed)
		assert.Zero(t, c.History[0].ResultCount)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.DeleteHistoryMessage(context.Background(), "1"))
		assert.Equal(t, "1", deleted)
		require.Len(t, c.History, 1)
		assert.Equal(t, "2", c.History[0].ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		require.Error(t, c.RestoreFromHistory("404"))
		require.Error(t, c.DeleteHistoryMessage(context.Background(), "404"))
	})
}
