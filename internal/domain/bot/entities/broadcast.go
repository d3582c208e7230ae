package entities

import "time"

// BroadcastState is the state of an administrator broadcast session
type BroadcastState int

const (
	BroadcastIdle BroadcastState = iota
	BroadcastAwaitingMessage
)

// String returns the state name
func (s BroadcastState) String() string {
	if s == BroadcastAwaitingMessage {
		return "awaiting_message"
	}
	return "idle"
}

// BroadcastReport summarizes one broadcast fan-out
type BroadcastReport struct {
	ID     string
	Total  int
	Sent   int
	Failed int
	// Skipped recipients were never attempted because of shutdown
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}
