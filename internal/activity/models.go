package activity

import "time"

// Activity is an append-only audit record of a domain mutation.
//
// Invariants:
// - Activities are never updated; the log only grows at its head.
// - The log is ordered newest first.
type Activity struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`

	// Metadata is optional structured detail (counts, ids).
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Type string

const (
	TypeCampaignCreated  Type = "campaign_created"
	TypeLeadsImported    Type = "leads_imported"
	TypeSequenceLaunched Type = "sequence_launched"
	TypeEmailSent        Type = "email_sent"
	TypeReplyReceived    Type = "reply_received"
	TypeCampaignLaunch   Type = "campaign_launch"
)

func (a Activity) clone() Activity {
	if a.Metadata == nil {
		return a
	}
	out := a
	out.Metadata = make(map[string]any, len(a.Metadata))
	for k, v := range a.Metadata {
		out.Metadata[k] = v
	}
	return out
}
