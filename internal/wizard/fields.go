package wizard

import (
	"fmt"

	"sales-crm/internal/crm"
	"sales-crm/internal/draft"
	"sales-crm/internal/templates"
)

// The setters below always spread the previous nested value so a single
// field change never clears its siblings.

func (c *Controller) SetName(name string) (State, error) {
	return c.modify(func(d draft.CampaignDraft) (draft.Patch, error) {
		b := d.Basics
		b.Name = name
		return draft.Patch{Basics: &b}, nil
	})
}

func (c *Controller) SetType(t crm.CampaignType) (State, error) {
	if t != crm.CampaignTypeAIPowered && t != crm.CampaignTypeStandard {
		return c.State(), fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return c.modify(func(d draft.CampaignDraft) (draft.Patch, error) {
		b := d.Basics
		b.Type = t
		return draft.Patch{Basics: &b}, nil
	})
}

// AIConfigPatch changes individual AI configuration fields; nil leaves a field as-is.
type AIConfigPatch struct {
	Tone     *string `json:"tone,omitempty"`
	Goal     *string `json:"goal,omitempty"`
	Industry *string `json:"industry,omitempty"`
	CTA      *string `json:"cta,omitempty"`
}

func (c *Controller) SetAIConfig(p AIConfigPatch) (State, error) {
	return c.modify(func(d draft.CampaignDraft) (draft.Patch, error) {
		cfg := d.AIConfig
		if p.Tone != nil {
			cfg.Tone = *p.Tone
		}
		if p.Goal != nil {
			cfg.Goal = *p.Goal
		}
		if p.Industry != nil {
			cfg.Industry = *p.Industry
		}
		if p.CTA != nil {
			cfg.CTA = *p.CTA
		}
		return draft.Patch{AIConfig: &cfg}, nil
	})
}

// ToggleContact adds id to the selection, or removes it when already selected.
// Only known leads can be added; a stale id can always be removed.
func (c *Controller) ToggleContact(id string) (State, error) {
	return c.modify(func(d draft.CampaignDraft) (draft.Patch, error) {
		out := make([]string, 0, len(d.Contacts)+1)
		removed := false
		for _, existing := range d.Contacts {
			if existing == id {
				removed = true
				continue
			}
			out = append(out, existing)
		}
		if !removed {
			if _, ok := c.store.Lead(id); !ok {
				return draft.Patch{}, fmt.Errorf("%w: %s", ErrUnknownLead, id)
			}
			out = append(out, id)
		}
		return draft.Patch{Contacts: out}, nil
	})
}

// SelectContacts replaces the selection. Every id must be a known lead;
// duplicates are collapsed keeping the first occurrence.
func (c *Controller) SelectContacts(ids []string) (State, error) {
	known := make(map[string]struct{})
	for _, id := range c.store.LeadIDs() {
		known[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return c.State(), fmt.Errorf("%w: %s", ErrUnknownLead, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return c.modify(func(draft.CampaignDraft) (draft.Patch, error) {
		return draft.Patch{Contacts: out}, nil
	})
}

// SetTemplate selects a template by id; an empty id clears the selection.
func (c *Controller) SetTemplate(id string) (State, error) {
	if id != "" {
		if _, ok := c.store.Template(id); !ok {
			return c.State(), fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
		}
	}
	return c.modify(func(draft.CampaignDraft) (draft.Patch, error) {
		return draft.Patch{TemplateID: &id}, nil
	})
}

// SetVariable sets one template variable; an empty value removes it.
func (c *Controller) SetVariable(key, value string) (State, error) {
	return c.modify(func(d draft.CampaignDraft) (draft.Patch, error) {
		vars := make(map[string]string, len(d.Variables)+1)
		for k, v := range d.Variables {
			vars[k] = v
		}
		if value == "" {
			delete(vars, key)
		} else {
			vars[key] = value
		}
		return draft.Patch{Variables: vars}, nil
	})
}

func (c *Controller) SetSchedule(s draft.Schedule) (State, error) {
	return c.modify(func(draft.CampaignDraft) (draft.Patch, error) {
		return draft.Patch{Schedule: &s}, nil
	})
}

func (c *Controller) modify(fn func(d draft.CampaignDraft) (draft.Patch, error)) (State, error) {
	var fnErr error
	err := c.mutate(func() {
		c.store.ModifyCampaignDraft(func(d draft.CampaignDraft) draft.Patch {
			p, err := fn(d)
			if err != nil {
				fnErr = err
				return draft.Patch{}
			}
			return p
		})
	})
	if err != nil {
		return State{}, err
	}
	return c.State(), fnErr
}

// Preview renders the selected template for one lead, merging the draft's
// variables and its call to action.
func (c *Controller) Preview(leadID string) (templates.Rendered, error) {
	d := c.store.CampaignDraft()
	if d.TemplateID == "" {
		return templates.Rendered{}, ErrNoTemplate
	}
	tpl, ok := c.store.Template(d.TemplateID)
	if !ok {
		return templates.Rendered{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, d.TemplateID)
	}
	lead, ok := c.store.Lead(leadID)
	if !ok {
		return templates.Rendered{}, fmt.Errorf("%w: %s", ErrUnknownLead, leadID)
	}

	extra := make(map[string]string, len(d.Variables)+1)
	if d.AIConfig.CTA != "" {
		extra["CTA"] = d.AIConfig.CTA
	}
	for k, v := range d.Variables {
		extra[k] = v
	}
	return c.renderer.Render(tpl, templates.VarsForLead(lead, extra))
}
