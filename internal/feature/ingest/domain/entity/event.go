package entity

import (
	"encoding/json"
	"time"
)

// Event is one corporate disclosure or event.
type Event struct {
	Code            string // may be empty when the instrument is unknown
	Time            time.Time
	Type            string
	Severity        int
	Headline        string
	Summary         string
	Provider        string
	ProviderEventID string
	Raw             json.RawMessage
}
