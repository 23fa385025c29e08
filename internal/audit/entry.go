package audit

// EntryKind distinguishes the two events recorded per session.
type EntryKind string

const (
	// KindAction records one observed action and any realtime firings.
	KindAction EntryKind = "action"
	// KindFinalize records the end-of-session sequence check.
	KindFinalize EntryKind = "finalize"
)

// Entry is one line in the hash-chained JSONL evaluation log.
// All fields are scalars or string slices (no map[string]any) so
// json.Marshal field order is deterministic and hashing reproducible.
type Entry struct {
	Timestamp  string    `json:"ts"`
	SessionID  string    `json:"session_id"`
	Kind       EntryKind `json:"kind"`
	ActionType string    `json:"action_type,omitempty"`
	Violations []string  `json:"violations,omitempty"`
	Score      int       `json:"score"`
	RulesHash  string    `json:"rules_hash,omitempty"`
	PrevHash   string    `json:"prev_hash"`
}
