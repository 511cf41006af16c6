// Package crm holds the domain records shared by the store, the campaign wizard
// and the HTTP layer.
package crm

import "time"

type LeadStatus string

// Lead statuses form an open enum: the list view also uses "unqualified".
const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusInterested  LeadStatus = "interested"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusClosed      LeadStatus = "closed"
	LeadStatusUnqualified LeadStatus = "unqualified"
)

type LeadSource string

const (
	LeadSourceImport LeadSource = "import"
	LeadSourceManual LeadSource = "manual"
	LeadSourceAPI    LeadSource = "api"
)

// Lead is a prospect. ID is immutable once created.
type Lead struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Company string     `json:"company,omitempty"`
	Phone   string     `json:"phone,omitempty"`
	Status  LeadStatus `json:"status"`
	Source  LeadSource `json:"source"`
}

type CampaignType string

const (
	CampaignTypeAIPowered CampaignType = "ai_powered"
	CampaignTypeStandard  CampaignType = "standard"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Campaign is an outreach campaign. Counters are plain numbers; nothing here
// enforces monotonic growth.
type Campaign struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     CampaignType   `json:"type"`
	Status   CampaignStatus `json:"status"`
	Contacts int            `json:"contacts"`
	Opens    int            `json:"opens"`
	Clicks   int            `json:"clicks"`
	Replies  int            `json:"replies"`

	CreatedAt time.Time `json:"createdAt"`

	Tone          string `json:"tone,omitempty"`
	Goal          string `json:"goal,omitempty"`
	Industry      string `json:"industry,omitempty"`
	CTA           string `json:"cta,omitempty"`
	TemplateID    string `json:"templateId,omitempty"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
}

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Variables []string  `json:"variables"`
	CreatedAt time.Time `json:"createdAt"`
}

type SequenceStatus string

const (
	SequenceStatusDraft     SequenceStatus = "draft"
	SequenceStatusActive    SequenceStatus = "active"
	SequenceStatusCompleted SequenceStatus = "completed"
)

type SequenceStepType string

const (
	SequenceStepEmail     SequenceStepType = "email"
	SequenceStepWait      SequenceStepType = "wait"
	SequenceStepCondition SequenceStepType = "condition"
)

type SequenceStep struct {
	ID   string           `json:"id"`
	Type SequenceStepType `json:"type"`
	// DelayHours applies to wait steps.
	DelayHours int    `json:"delay,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
	Condition  string `json:"condition,omitempty"`
}

type Sequence struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	CampaignID string         `json:"campaignId"`
	Steps      []SequenceStep `json:"steps"`
	Status     SequenceStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Clone returns a deep copy safe to hand to readers.
func (t Template) Clone() Template {
	out := t
	out.Variables = append([]string(nil), t.Variables...)
	return out
}

// Clone returns a deep copy safe to hand to readers.
func (s Sequence) Clone() Sequence {
	out := s
	out.Steps = append([]SequenceStep(nil), s.Steps...)
	return out
}
