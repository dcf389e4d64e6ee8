package schema

// Symbol returns the one-character marker used in table output.
func (s AnalysisState) Symbol() string {
	switch s {
	case AnalysisPresent:
		return "yes"
	case AnalysisAbsent:
		return "no"
	default:
		return "?"
	}
}

// MessageRecordFromChat converts a wire chat message into a store row.
func MessageRecordFromChat(runID string, msg ChatMessage) MessageRecord {
	return MessageRecord{
		RunID:       runID,
		MessageID:   msg.ID,
		UserQuery:   msg.UserQuery,
		SQLQuery:    msg.SQLQuery,
		Commentary:  msg.Commentary,
		Timestamp:   msg.Timestamp,
		Executed:    msg.Executed,
		ResultCount: msg.ResultCount,
	}
}

// ChatFromMessageRecord converts a store row back into a wire chat message.
func ChatFromMessageRecord(rec MessageRecord) ChatMessage {
	return ChatMessage{
		ID:          rec.MessageID,
		UserQuery:   rec.UserQuery,
		SQLQuery:    rec.SQLQuery,
		Commentary:  rec.Commentary,
		Timestamp:   rec.Timestamp,
		Executed:    rec.Executed,
		ResultCount: rec.ResultCount,
	}
}
