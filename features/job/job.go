package job

import (
	"encoding/json"
	"time"
)

// Job is a populate payload that failed permanently and was parked for a
// manual retry.
type Job struct {
	ID        string          `json:"id"`
	URL       string          `json:"url"`
	UserID    string          `json:"user_id"`
	Handler   string          `json:"handler"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error"`
	Retries   int             `json:"retries"`
	CreatedAt time.Time       `json:"created_at"`
}
