package models

// Phase is the activity a session is currently performing.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseImporting  Phase = "importing"
	PhaseConverting Phase = "converting"
)

// State is a read-only snapshot of a conversion session.
type State struct {
	// SessionID identifies the session for the lifetime of the process.
	SessionID string `json:"session_id"`
	// HasDocument reports whether a parsed document is loaded.
	HasDocument bool `json:"has_document"`
	// FileName is the name of the file being or last imported.
	FileName string `json:"file_name"`
	// FileSize is the byte size of that file.
	FileSize int64 `json:"file_size"`
	// RecordCount is the number of records extracted from the document.
	RecordCount int `json:"record_count"`
	// Error holds the last failure message, empty if none.
	Error string `json:"error,omitempty"`
	// Busy is true while an import or conversion runs.
	Busy bool `json:"busy"`
	// Phase names the running operation.
	Phase Phase `json:"phase"`
	// Progress is the completion percentage (0-100) of the running or last operation.
	Progress int `json:"progress"`
	// SearchTerms holds the active search terms.
	SearchTerms []SearchTerm `json:"search_terms"`
	// SheetNames lists the converted workbook's sheets in order.
	SheetNames []string `json:"sheet_names"`
	// ActiveSheet is the sheet selected for viewing.
	ActiveSheet string `json:"active_sheet"`
}
