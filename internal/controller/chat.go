package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/sqlfmt"
	"github.com/schemapilot/pilotctl/schema"
)

// Chat drives the natural-language query workflow for one run: a question
// becomes an editable SQL draft, execution saves and runs the draft, and
// every generation lands in the history newest first.
type Chat struct {
	backend contract.Backend

	RunID   string
	Tables  []schema.TableInfo
	History []schema.ChatMessage
	Queries []schema.SavedQuery

	// UserQuery is the natural-language question being asked.
	UserQuery string

	// DraftSQL is the editable SQL working copy, always pretty-printed.
	DraftSQL   string
	Commentary string

	// CurrentQueryID is set once the draft has been saved server-side.
	CurrentQueryID string

	Results     *schema.QueryResult
	ResultsPage int

	LastError string

	// now is swappable so tests get deterministic draft ids.
	now func() time.Time
}

// NewChat returns a chat controller for the backend.
func NewChat(backend contract.Backend) *Chat {
	return &Chat{backend: backend, now: time.Now}
}

// DismissError clears the error banner.
func (c *Chat) DismissError() {
	c.LastError = ""
}

// Load pulls the table list, chat history, and saved queries in parallel,
// then restores the editor from the most recent history entry. History and
// saved queries are best effort so only the table fetch can fail the load.
func (c *Chat) Load(ctx context.Context, runID string) error {
	c.RunID = runID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tables, err := c.backend.GetTables(gctx, runID)
		if err != nil {
			return err
		}
		c.Tables = tables
		return nil
	})
	g.Go(func() error {
		c.History = c.backend.GetChatHistory(gctx, runID)
		return nil
	})
	g.Go(func() error {
		c.Queries = c.backend.GetQueries(gctx, runID)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.LastError = err.Error()
		return err
	}

	if len(c.History) > 0 {
		c.restore(c.History[0])
	}
	return nil
}

// SetTableSelected toggles whether a table is sent as generation context.
func (c *Chat) SetTableSelected(name string, selected bool) error {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			c.Tables[i].Selected = selected
			return nil
		}
	}
	err := fmt.Errorf("unknown table: %s", name)
	c.LastError = err.Error()
	return err
}

// SelectedTables returns the names of the tables marked as context.
func (c *Chat) SelectedTables() []string {
	var names []string
	for _, t := range c.Tables {
		if t.Selected {
			names = append(names, t.Name)
		}
	}
	return names
}

// Generate turns UserQuery into a SQL draft, prepends an unexecuted history
// entry, and mirrors it to the server's chat history.
func (c *Chat) Generate(ctx context.Context) error {
	if strings.TrimSpace(c.UserQuery) == "" {
		err := errors.New("enter a question first")
		c.LastError = err.Error()
		return err
	}

	res, err := c.backend.GenerateQuery(ctx, c.RunID, c.UserQuery, c.SelectedTables())
	if err != nil {
		c.LastError = err.Error()
		return err
	}

	c.applyGeneration(res.Raw, res.SQLQuery, res.Commentary)
	c.CurrentQueryID = ""
	c.Results = nil
	c.ResultsPage = 0

	msg := schema.ChatMessage{
		ID:         strconv.FormatInt(c.now().UnixMilli(), 10),
		UserQuery:  c.UserQuery,
		SQLQuery:   c.DraftSQL,
		Commentary: c.Commentary,
		Timestamp:  c.now().UTC().Format(time.RFC3339),
	}
	c.History = append([]schema.ChatMessage{msg}, c.History...)

	if err := c.backend.SaveChatMessage(ctx, c.RunID, msg); err != nil {
		// The draft and local history survive; only the mirror is stale.
		c.LastError = err.Error()
		return err
	}
	return nil
}

// Execute saves the draft, runs it, and loads the first page of results.
// The matching history entry is marked executed and re-mirrored.
func (c *Chat) Execute(ctx context.Context) error {
	if strings.TrimSpace(c.DraftSQL) == "" {
		err := errors.New("no SQL to execute")
		c.LastError = err.Error()
		return err
	}

	queryID, err := c.backend.SaveQuery(ctx, c.RunID, c.DraftSQL)
	if err != nil {
		c.LastError = err.Error()
		return err
	}
	c.CurrentQueryID = queryID

	exec, err := c.backend.ExecuteQuery(ctx, c.RunID, queryID)
	if err != nil {
		c.LastError = err.Error()
		return err
	}

	res, err := c.backend.GetQueryResults(ctx, c.RunID, exec.ResultFile)
	if err != nil {
		c.LastError = err.Error()
		return err
	}
	c.Results = res
	c.ResultsPage = 1

	if len(c.History) > 0 && c.History[0].SQLQuery == c.DraftSQL {
		c.History[0].Executed = true
		c.History[0].ResultCount = len(res.Data)
		if err := c.backend.SaveChatMessage(ctx, c.RunID, c.History[0]); err != nil {
			c.LastError = err.Error()
		}
	}

	c.Queries = c.backend.GetQueries(ctx, c.RunID)
	return nil
}

// Refine rewrites the saved query with a natural-language instruction and
// replaces the draft with the refined SQL.
func (c *Chat) Refine(ctx context.Context, instruction string) error {
	if c.CurrentQueryID == "" {
		err := errors.New("save or execute a query before refining it")
		c.LastError = err.Error()
		return err
	}

	res, err := c.backend.ModifyQuery(ctx, c.RunID, c.CurrentQueryID, instruction)
	if err != nil {
		c.LastError = err.Error()
		return err
	}

	sqlText := res.ModifiedSQLQuery
	if sqlText == "" {
		sqlText = c.DraftSQL
	}
	c.applyGeneration(res.Raw, sqlText, res.Commentary)
	c.Results = nil
	c.ResultsPage = 0

	msg := schema.ChatMessage{
		ID:         strconv.FormatInt(c.now().UnixMilli(), 10),
		UserQuery:  instruction,
		SQLQuery:   c.DraftSQL,
		Commentary: c.Commentary,
		Timestamp:  c.now().UTC().Format(time.RFC3339),
	}
	c.History = append([]schema.ChatMessage{msg}, c.History...)

	if err := c.backend.SaveChatMessage(ctx, c.RunID, msg); err != nil {
		c.LastError = err.Error()
		return err
	}
	return nil
}

// RestoreFromHistory puts a past exchange back into the editor.
func (c *Chat) RestoreFromHistory(messageID string) error {
	msg, err := c.findMessage(messageID)
	if err != nil {
		return err
	}
	c.restore(*msg)
	c.CurrentQueryID = ""
	c.Results = nil
	c.ResultsPage = 0
	return nil
}

// EditHistoryMessage replaces a history entry's SQL and re-mirrors it.
func (c *Chat) EditHistoryMessage(ctx context.Context, messageID, sqlText string) error {
	msg, err := c.findMessage(messageID)
	if err != nil {
		return err
	}
	msg.SQLQuery = sqlfmt.Pretty(sqlText)
	msg.Executed = false
	msg.ResultCount = 0
	if err := c.backend.SaveChatMessage(ctx, c.RunID, *msg); err != nil {
		c.LastError = err.Error()
		return err
	}
	return nil
}

// DeleteHistoryMessage removes a history entry locally and server-side.
func (c *Chat) DeleteHistoryMessage(ctx context.Context, messageID string) error {
	if _, err := c.findMessage(messageID); err != nil {
		return err
	}
	if err := c.backend.DeleteChatMessage(ctx, c.RunID, messageID); err != nil {
		c.LastError = err.Error()
		return err
	}
	kept := c.History[:0]
	for _, m := range c.History {
		if m.ID != messageID {
			kept = append(kept, m)
		}
	}
	c.History = kept
	return nil
}

// SaveHistoryAsQuery promotes a history entry's SQL to a saved query.
func (c *Chat) SaveHistoryAsQuery(ctx context.Context, messageID string) (string, error) {
	msg, err := c.findMessage(messageID)
	if err != nil {
		return "", err
	}
	queryID, err := c.backend.SaveQuery(ctx, c.RunID, msg.SQLQuery)
	if err != nil {
		c.LastError = err.Error()
		return "", err
	}
	c.Queries = c.backend.GetQueries(ctx, c.RunID)
	return queryID, nil
}

// PageCount reports how many result pages the current results span.
func (c *Chat) PageCount() int {
	if c.Results == nil || len(c.Results.Data) == 0 {
		return 0
	}
	return (len(c.Results.Data) + schema.ResultsPageSize - 1) / schema.ResultsPageSize
}

// SetPage moves to a 1-based results page.
func (c *Chat) SetPage(page int) error {
	if page < 1 || page > c.PageCount() {
		err := fmt.Errorf("page %d out of range 1..%d", page, c.PageCount())
		c.LastError = err.Error()
		return err
	}
	c.ResultsPage = page
	return nil
}

// PageRows returns the rows of the current results page.
func (c *Chat) PageRows() []map[string]any {
	if c.Results == nil || c.ResultsPage < 1 {
		return nil
	}
	start := (c.ResultsPage - 1) * schema.ResultsPageSize
	if start >= len(c.Results.Data) {
		return nil
	}
	end := start + schema.ResultsPageSize
	if end > len(c.Results.Data) {
		end = len(c.Results.Data)
	}
	return c.Results.Data[start:end]
}

// applyGeneration runs the tolerant extraction over a generation payload
// and installs the pretty-printed draft.
func (c *Chat) applyGeneration(raw, sqlText, commentary string) {
	if raw != "" && sqlfmt.Classify(raw) != sqlfmt.PlainSQL {
		ex := sqlfmt.Extract(raw, commentary)
		sqlText, commentary = ex.SQL, ex.Commentary
	}
	c.DraftSQL = sqlfmt.Pretty(sqlText)
	c.Commentary = sqlfmt.CleanCommentary(commentary)
}

func (c *Chat) restore(msg schema.ChatMessage) {
	c.UserQuery = msg.UserQuery
	c.DraftSQL = sqlfmt.Pretty(msg.SQLQuery)
	c.Commentary = sqlfmt.CleanCommentary(msg.Commentary)
}

func (c *Chat) findMessage(messageID string) (*schema.ChatMessage, error) {
	for i := range c.History {
		if c.History[i].ID == messageID {
			return &c.History[i], nil
		}
	}
	err := fmt.Errorf("no chat message with id %s", messageID)
	c.LastError = err.Error()
	return nil, err
}
