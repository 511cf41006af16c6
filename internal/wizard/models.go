package wizard

import (
	"errors"
	"fmt"

	"sales-crm/internal/draft"
)

// Step is a wizard position. It mirrors draft.CampaignDraft.Step.
type Step int

const (
	StepBasics   Step = draft.FirstStep
	StepAIConfig Step = 2
	StepContacts Step = 3
	StepReview   Step = draft.LastStep
)

func (s Step) Title() string {
	switch s {
	case StepBasics:
		return "Campaign Basics"
	case StepAIConfig:
		return "AI Configuration"
	case StepContacts:
		return "Select Contacts"
	case StepReview:
		return "Review & Launch"
	default:
		return ""
	}
}

// Defaults applied by Skip on the AI configuration step, only to empty fields.
const (
	DefaultTone     = "professional"
	DefaultGoal     = "lead_gen"
	DefaultIndustry = "saas"
	DefaultCTA      = "Let's connect"

	UntitledCampaign = "Untitled Campaign"
)

var (
	ErrInvalidTransition = errors.New("wizard: transition not allowed from this step")
	ErrLaunchInFlight    = errors.New("wizard: launch already in progress")
	ErrClosed            = errors.New("wizard: closed")
	ErrNotOpen           = errors.New("wizard: not open")
	ErrUnknownLead       = errors.New("wizard: unknown lead")
	ErrUnknownTemplate   = errors.New("wizard: unknown template")
	ErrNoTemplate        = errors.New("wizard: no template selected")
	ErrInvalidType       = errors.New("wizard: invalid campaign type")
)

// ValidationError means a step gate refused to advance. The draft is left as it was.
type ValidationError struct {
	Step    Step   `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wizard: step %d: %s", e.Step, e.Message)
}

// State is a read-only snapshot for the view.
type State struct {
	Step      Step                `json:"step"`
	Title     string              `json:"title"`
	Open      bool                `json:"open"`
	Launching bool                `json:"launching"`
	Draft     draft.CampaignDraft `json:"draft"`
}
