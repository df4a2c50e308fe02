package worker

// PopulatePayload is the job that crosses the queue boundary. It carries
// only the lookup reference (url, user id), never the page row itself:
// the consumer runs in a different lifetime than the producer and must
// re-resolve the page. Delivery is at-least-once.
type PopulatePayload struct {
	URL           string `json:"url"`
	UserID        string `json:"user_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// LinkDTO is the worker-side shape of a discovered link, converted into
// the page feature's entity by an adapter at wiring time.
type LinkDTO struct {
	PageID string
	URL    string
	Name   string
}
