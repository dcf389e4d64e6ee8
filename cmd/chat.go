package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/controller"
	"github.com/schemapilot/pilotctl/internal/workstore"
	"github.com/schemapilot/pilotctl/schema"
)

// askCmd converts a natural-language question into SQL.
var askCmd = &cobra.Command{
	Use:   "ask [run-id] <question>",
	Short: "Turn a natural-language question into SQL, optionally executing it",
	Long: `Generate SQL from a natural-language question against a run's tables.

The generated SQL and the model's commentary are printed, and the exchange
is appended to the run's chat history. With --execute the draft is saved,
executed server-side, and the requested result page printed. Use --tables
to restrict which tables are sent as generation context.

Examples:
  # Generate only
  pilotctl ask 3f9c01 "total revenue by month"

  # Generate and run against the active run
  pilotctl ask "top ten customers by spend" --execute

  # Narrow the context
  pilotctl ask 3f9c01 "orders without a customer" --tables orders,customers`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		var runID, question string
		if len(args) == 2 {
			runID, question = args[0], args[1]
		} else {
			question = args[0]
			input.RunIDStr = "" // args[0] was the question, not a run id
			var err error
			runID, err = resolveRunID()
			if err != nil {
				contract.LogFatal("Cannot resolve run", err)
			}
		}

		chat := controller.NewChat(backend)
		if err := chat.Load(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot load run", err)
		}
		if tables := viper.GetString("tables"); tables != "" {
			restrictContext(chat, tables)
		}

		chat.UserQuery = question
		if err := chat.Generate(rootCtx); err != nil {
			if chat.DraftSQL == "" {
				contract.LogFatal("Generation failed", err)
			}
			// The draft exists locally; only the history mirror failed.
			contract.LogWarn("could not persist chat message", err)
		}

		fmt.Println(chat.DraftSQL)
		if chat.Commentary != "" {
			fmt.Printf("\n-- %s\n", chat.Commentary)
		}
		mirrorHistory(runID, chat.History)

		if viper.GetBool("execute") {
			if err := chat.Execute(rootCtx); err != nil {
				contract.LogFatal("Execution failed", err)
			}
			if page := viper.GetInt("page"); page != 1 {
				if err := chat.SetPage(page); err != nil {
					contract.LogFatal("Cannot select page", err)
				}
			}
			result := &schema.QueryResult{Columns: chat.Results.Columns, Data: chat.PageRows()}
			if err := outw.WriteQueryResults(result, cfg); err != nil {
				contract.LogFatal("Cannot write results", err)
			}
			fmt.Printf("Page %d of %d (%d rows total, query %s)\n",
				chat.ResultsPage, chat.PageCount(), len(chat.Results.Data), chat.CurrentQueryID)
			mirrorHistory(runID, chat.History)
		}
	},
}

// restrictContext deselects every table not named in the comma-separated list.
func restrictContext(chat *controller.Chat, tables string) {
	wanted := map[string]bool{}
	for _, name := range splitCommaList(tables) {
		wanted[name] = true
	}
	for _, t := range chat.Tables {
		if err := chat.SetTableSelected(t.Name, wanted[t.Name]); err != nil {
			contract.LogFatal("Cannot select tables", err)
		}
	}
}

// splitCommaList parses a comma-separated list, dropping empty entries.
func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// chatCmd groups chat history management.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Inspect and manage a run's chat history",
	Long: `Work with the chat history attached to a run: every 'ask' lands there,
newest first, and the history is mirrored into the local workspace store so
it can be listed offline.

Subcommands:
  history    - List chat messages (backend, or local mirror with --offline)
  delete     - Remove one chat message
  rerun      - Re-execute the SQL of a past message
  edit       - Replace a message's SQL, resetting its execution state
  save-query - Promote a message's SQL to a saved query

Examples:
  pilotctl chat history 3f9c01
  pilotctl chat history --offline
  pilotctl chat rerun 3f9c01 1788177600000
  pilotctl chat delete 3f9c01 1788177600000`,
}

// chatHistoryCmd lists chat messages.
var chatHistoryCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List a run's chat messages, newest first",
	Long: `List the chat history of a run. Online reads refresh the local mirror;
--offline serves the mirror without touching the backend.

Examples:
  pilotctl chat history 3f9c01
  pilotctl chat history 3f9c01 --output parquet --output-file chat.parquet
  pilotctl chat history --offline`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runID, err := resolveRunID()
		if err != nil {
			contract.LogFatal("Cannot resolve run", err)
		}

		var msgs []schema.ChatMessage
		if cfg.Offline {
			store := workstore.Manager.GetWorkspaceStore()
			recs, err := store.ListMessages(runID)
			if err != nil {
				contract.LogFatal("Cannot list local messages", err)
			}
			for _, rec := range recs {
				msgs = append(msgs, schema.ChatFromMessageRecord(rec))
			}
		} else {
			msgs = backend.GetChatHistory(rootCtx, runID)
			mirrorHistory(runID, msgs)
		}

		if err := outw.WriteChatHistory(runID, msgs, cfg); err != nil {
			contract.LogFatal("Cannot write chat history", err)
		}
	},
}

// chatDeleteCmd removes one chat message.
var chatDeleteCmd = &cobra.Command{
	Use:   "delete <run-id> <message-id>",
	Short: "Remove one chat message from a run",
	Long: `Delete a single chat message by id. The local mirror catches up on the
next online history read.

Examples:
  pilotctl chat delete 3f9c01 1788177600000`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, messageID := args[0], args[1]
		if err := backend.DeleteChatMessage(rootCtx, runID, messageID); err != nil {
			contract.LogFatal("Cannot delete message", err)
		}
		fmt.Printf("Message %s deleted from run %s.\n", messageID, runID)
	},
}

// chatRerunCmd re-executes a past message's SQL.
var chatRerunCmd = &cobra.Command{
	Use:   "rerun <run-id> <message-id>",
	Short: "Re-execute the SQL of a past chat message",
	Long: `Restore a chat message's SQL into the draft, save and execute it, and
print the first result page. The message is marked executed with its row
count.

Examples:
  pilotctl chat rerun 3f9c01 1788177600000`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, messageID := args[0], args[1]
		chat := controller.NewChat(backend)
		if err := chat.Load(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot load run", err)
		}
		if err := chat.RestoreFromHistory(messageID); err != nil {
			contract.LogFatal("Cannot restore message", err)
		}
		if err := chat.Execute(rootCtx); err != nil {
			contract.LogFatal("Execution failed", err)
		}
		result := &schema.QueryResult{Columns: chat.Results.Columns, Data: chat.PageRows()}
		if err := outw.WriteQueryResults(result, cfg); err != nil {
			contract.LogFatal("Cannot write results", err)
		}
		fmt.Printf("Page %d of %d (%d rows total, query %s)\n",
			chat.ResultsPage, chat.PageCount(), len(chat.Results.Data), chat.CurrentQueryID)
		mirrorHistory(runID, chat.History)
	},
}

// chatEditCmd replaces a message's SQL.
var chatEditCmd = &cobra.Command{
	Use:   "edit <run-id> <message-id> <sql>",
	Short: "Replace a chat message's SQL, resetting its execution state",
	Long: `Overwrite the SQL of a chat message. The message's executed flag and
row count are cleared since the stored results no longer match.

Examples:
  pilotctl chat edit 3f9c01 1788177600000 "SELECT * FROM orders LIMIT 5"`,
	Args:    cobra.ExactArgs(3),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, messageID, sqlText := args[0], args[1], args[2]
		chat := controller.NewChat(backend)
		if err := chat.Load(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot load run", err)
		}
		if err := chat.EditHistoryMessage(rootCtx, messageID, sqlText); err != nil {
			contract.LogFatal("Cannot edit message", err)
		}
		mirrorHistory(runID, chat.History)
		fmt.Printf("Message %s updated.\n", messageID)
	},
}

// chatSaveQueryCmd promotes a message's SQL to a saved query.
var chatSaveQueryCmd = &cobra.Command{
	Use:   "save-query <run-id> <message-id>",
	Short: "Promote a chat message's SQL to a saved query",
	Long: `Save the SQL of a chat message server-side and print the new query id.

Examples:
  pilotctl chat save-query 3f9c01 1788177600000`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, messageID := args[0], args[1]
		chat := controller.NewChat(backend)
		if err := chat.Load(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot load run", err)
		}
		queryID, err := chat.SaveHistoryAsQuery(rootCtx, messageID)
		if err != nil {
			contract.LogFatal("Cannot save query", err)
		}
		fmt.Printf("Saved query %s from message %s.\n", queryID, messageID)
	},
}

// mirrorHistory writes chat messages into the workspace store, best effort.
func mirrorHistory(runID string, msgs []schema.ChatMessage) {
	store := workstore.Manager.GetWorkspaceStore()
	if store == nil || len(msgs) == 0 {
		return
	}
	recs := make([]schema.MessageRecord, 0, len(msgs))
	for _, msg := range msgs {
		recs = append(recs, schema.MessageRecordFromChat(runID, msg))
	}
	if err := store.SaveMessages(runID, recs); err != nil {
		contract.LogWarn("could not mirror chat history locally", err)
	}
}
