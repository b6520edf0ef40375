package nutrition

import (
	"encoding/json"
	"time"
)

// ActionRecord is a persisted, executed action.
type ActionRecord struct {
	ID        string
	Kind      EntityKind
	ActorID   string
	Name      string
	Payload   json.RawMessage
	CreatedAt time.Time
}
