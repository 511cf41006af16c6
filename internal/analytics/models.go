package analytics

import (
	"time"

	"sales-crm/internal/activity"
	"sales-crm/internal/crm"
)

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SummaryRequest narrows the campaign figures to campaigns created inside
// Range. A zero Range covers every campaign. Lead and activity figures are
// never filtered.
type SummaryRequest struct {
	Range TimeRange `json:"range"`
}

// Rates are fractions in [0,1] of contacts reached; 0 when there are no
// contacts.
type Rates struct {
	Open  float64 `json:"openRate"`
	Click float64 `json:"clickRate"`
	Reply float64 `json:"replyRate"`
}

type CampaignStats struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Status   crm.CampaignStatus `json:"status"`
	Contacts int                `json:"contacts"`
	Rates    Rates              `json:"rates"`
}

type Totals struct {
	Contacts int `json:"contacts"`
	Opens    int `json:"opens"`
	Clicks   int `json:"clicks"`
	Replies  int `json:"replies"`
}

type Summary struct {
	Campaigns         int                        `json:"campaigns"`
	CampaignsByStatus map[crm.CampaignStatus]int `json:"campaignsByStatus"`
	Totals            Totals                     `json:"totals"`
	Rates             Rates                      `json:"rates"`
	PerCampaign       []CampaignStats            `json:"perCampaign"`

	Leads         int                    `json:"leads"`
	LeadsByStatus map[crm.LeadStatus]int `json:"leadsByStatus"`

	Activities       int                   `json:"activities"`
	ActivitiesByType map[activity.Type]int `json:"activitiesByType"`
}
