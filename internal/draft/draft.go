// Package draft holds the single in-progress campaign form edited by the wizard.
//
// The holder is a plain container: it never validates. Gates live in the
// wizard package.
package draft

import (
	"sync"

	"sales-crm/internal/crm"
)

const (
	FirstStep = 1
	LastStep  = 4
)

type Basics struct {
	Name string           `json:"name"`
	Type crm.CampaignType `json:"type"`
}

type AIConfig struct {
	Tone     string `json:"tone"`
	Goal     string `json:"goal"`
	Industry string `json:"industry"`
	CTA      string `json:"cta"`
}

type Schedule struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// CampaignDraft is the wizard-in-progress state. Contacts is an ordered list
// of selected lead ids.
type CampaignDraft struct {
	Step       int               `json:"step"`
	Basics     Basics            `json:"basics"`
	AIConfig   AIConfig          `json:"aiConfig"`
	Contacts   []string          `json:"contacts"`
	TemplateID string            `json:"templateId,omitempty"`
	Variables  map[string]string `json:"variables"`
	Schedule   *Schedule         `json:"schedule,omitempty"`
}

// Initial returns the fixed starting value of a draft.
func Initial() CampaignDraft {
	return CampaignDraft{
		Step:      FirstStep,
		Basics:    Basics{Name: "", Type: crm.CampaignTypeStandard},
		AIConfig:  AIConfig{},
		Contacts:  []string{},
		Variables: map[string]string{},
	}
}

// Clone returns a deep copy.
func (d CampaignDraft) Clone() CampaignDraft {
	out := d
	out.Contacts = append([]string{}, d.Contacts...)
	out.Variables = make(map[string]string, len(d.Variables))
	for k, v := range d.Variables {
		out.Variables[k] = v
	}
	if d.Schedule != nil {
		s := *d.Schedule
		out.Schedule = &s
	}
	return out
}

// Patch is a top-level partial update.
//
// The merge is shallow: a non-nil Basics, AIConfig or Schedule REPLACES the
// whole nested value. Patching Basics{Name: "x"} clears Basics.Type unless the
// caller copies the previous type in. Contacts and Variables replace the
// current value when non-nil; pass an empty non-nil value to clear them.
// Step is clamped to FirstStep..LastStep.
type Patch struct {
	Step       *int              `json:"step,omitempty"`
	Basics     *Basics           `json:"basics,omitempty"`
	AIConfig   *AIConfig         `json:"aiConfig,omitempty"`
	Contacts   []string          `json:"contacts,omitempty"`
	TemplateID *string           `json:"templateId,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
	Schedule   *Schedule         `json:"schedule,omitempty"`
}

func (p Patch) apply(d *CampaignDraft) {
	if p.Step != nil {
		d.Step = min(max(*p.Step, FirstStep), LastStep)
	}
	if p.Basics != nil {
		d.Basics = *p.Basics
	}
	if p.AIConfig != nil {
		d.AIConfig = *p.AIConfig
	}
	if p.Contacts != nil {
		d.Contacts = append([]string{}, p.Contacts...)
	}
	if p.TemplateID != nil {
		d.TemplateID = *p.TemplateID
	}
	if p.Variables != nil {
		d.Variables = make(map[string]string, len(p.Variables))
		for k, v := range p.Variables {
			d.Variables[k] = v
		}
	}
	if p.Schedule != nil {
		s := *p.Schedule
		d.Schedule = &s
	}
}

// Holder owns exactly one draft.
type Holder struct {
	mu    sync.Mutex
	draft CampaignDraft
}

func NewHolder() *Holder {
	return &Holder{draft: Initial()}
}

// Get returns a copy of the current draft.
func (h *Holder) Get() CampaignDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.draft.Clone()
}

// Update shallow-merges p into the draft and returns the result.
func (h *Holder) Update(p Patch) CampaignDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	p.apply(&h.draft)
	return h.draft.Clone()
}

// Modify runs fn against the current draft under the holder lock. It lets
// callers read-then-write nested values without racing other writers.
func (h *Holder) Modify(fn func(d CampaignDraft) Patch) CampaignDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := fn(h.draft.Clone())
	p.apply(&h.draft)
	return h.draft.Clone()
}

// Reset replaces the draft with Initial().
func (h *Holder) Reset() CampaignDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draft = Initial()
	return h.draft.Clone()
}
