// Package store is the in-process domain store: campaigns, leads, templates,
// sequences, the activity log and the campaign draft.
//
// Invariants:
//   - Every domain event mutation (campaign added, leads added, sequence added)
//     appends exactly one activity at the head of the log.
//   - Update/delete of a missing id is a silent no-op; callers get found=false.
//   - Readers always receive copies.
package store

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-crm/internal/activity"
	"sales-crm/internal/crm"
	"sales-crm/internal/draft"
	"sales-crm/pkg/metrics"
)

type Options struct {
	// ActivityCap bounds the activity log. 0 keeps every entry.
	ActivityCap int
	Logger      *slog.Logger
}

type Store struct {
	mu        sync.Mutex
	campaigns []crm.Campaign
	leads     []crm.Lead
	templates []crm.Template
	sequences []crm.Sequence

	activities *activity.Log
	draft      *draft.Holder

	clock func() time.Time
	log   *slog.Logger
}

func New(opts Options) *Store {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Store{
		activities: activity.NewLog(opts.ActivityCap),
		draft:      draft.NewHolder(),
		clock:      time.Now,
		log:        l,
	}
}

// --- campaigns ---

// AddCampaign appends c and records a campaign_created activity. Empty ID and
// CreatedAt are filled in. The stored record is returned.
func (s *Store) AddCampaign(c crm.Campaign) crm.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.clock().UTC()
	}
	s.campaigns = append(s.campaigns, c)

	s.activities.Prepend(activity.Activity{
		Type:        activity.TypeCampaignCreated,
		Title:       fmt.Sprintf("Campaign %q Created", c.Name),
		Description: fmt.Sprintf("Campaign with %d contacts", c.Contacts),
		Metadata:    map[string]any{"campaignId": c.ID},
	})
	metrics.RecordCampaignCreated(string(c.Type))
	s.log.Info("campaign created", "campaign_id", c.ID, "type", c.Type, "contacts", c.Contacts)
	return c
}

func (s *Store) UpdateCampaign(id string, p crm.CampaignPatch) (crm.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.campaigns {
		if s.campaigns[i].ID == id {
			p.Apply(&s.campaigns[i])
			return s.campaigns[i], true
		}
	}
	return crm.Campaign{}, false
}

func (s *Store) DeleteCampaign(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.campaigns {
		if s.campaigns[i].ID == id {
			s.campaigns = append(s.campaigns[:i], s.campaigns[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleCampaignStatus flips active to paused; any other status becomes active.
func (s *Store) ToggleCampaignStatus(id string) (crm.CampaignStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.campaigns {
		if s.campaigns[i].ID != id {
			continue
		}
		if s.campaigns[i].Status == crm.CampaignStatusActive {
			s.campaigns[i].Status = crm.CampaignStatusPaused
		} else {
			s.campaigns[i].Status = crm.CampaignStatusActive
		}
		return s.campaigns[i].Status, true
	}
	return "", false
}

func (s *Store) Campaigns() []crm.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]crm.Campaign, len(s.campaigns))
	copy(out, s.campaigns)
	return out
}

func (s *Store) Campaign(id string) (crm.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return crm.Campaign{}, false
}

// --- leads ---

// AddLeads appends the batch and records a single leads_imported activity.
// An empty batch changes nothing.
func (s *Store) AddLeads(leads []crm.Lead) []crm.Lead {
	if len(leads) == 0 {
		return nil
	}
	added := make([]crm.Lead, len(leads))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range leads {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if l.Status == "" {
			l.Status = crm.LeadStatusNew
		}
		added[i] = l
	}
	s.leads = append(s.leads, added...)

	var sources []crm.LeadSource
	perSource := map[crm.LeadSource]int{}
	for _, l := range added {
		if perSource[l.Source] == 0 {
			sources = append(sources, l.Source)
		}
		perSource[l.Source]++
	}

	s.activities.Prepend(activity.Activity{
		Type:        activity.TypeLeadsImported,
		Title:       fmt.Sprintf("%d Leads Imported", len(added)),
		Description: leadsAddedDescription(sources),
		Metadata:    map[string]any{"count": len(added)},
	})
	for _, src := range sources {
		metrics.RecordLeadsAdded(string(src), perSource[src])
	}
	s.log.Info("leads added", "count", len(added), "sources", len(sources))
	return added
}

func leadsAddedDescription(sources []crm.LeadSource) string {
	if len(sources) != 1 {
		return "Added from multiple sources"
	}
	switch sources[0] {
	case crm.LeadSourceImport:
		return "Successfully imported from CSV"
	case crm.LeadSourceManual:
		return "Added manually"
	case crm.LeadSourceAPI:
		return "Received via API"
	default:
		return "Added"
	}
}

func (s *Store) UpdateLead(id string, p crm.LeadPatch) (crm.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			p.Apply(&s.leads[i])
			return s.leads[i], true
		}
	}
	return crm.Lead{}, false
}

func (s *Store) DeleteLead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Leads() []crm.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]crm.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

func (s *Store) Lead(id string) (crm.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leads {
		if l.ID == id {
			return l, true
		}
	}
	return crm.Lead{}, false
}

// LeadIDs returns the ids of all current leads in store order.
func (s *Store) LeadIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.leads))
	for i, l := range s.leads {
		out[i] = l.ID
	}
	return out
}

// SearchLeads filters leads by a case-insensitive substring of name, company or
// email, and by status. An empty status or "all" matches any status.
func (s *Store) SearchLeads(query string, status crm.LeadStatus) []crm.Lead {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []crm.Lead{}
	for _, l := range s.Leads() {
		if status != "" && status != "all" && l.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(l.Name), q) &&
			!strings.Contains(strings.ToLower(l.Company), q) &&
			!strings.Contains(strings.ToLower(l.Email), q) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// LeadStatusCounts returns the number of leads per status.
func (s *Store) LeadStatusCounts() map[crm.LeadStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[crm.LeadStatus]int)
	for _, l := range s.leads {
		out[l.Status]++
	}
	return out
}

// --- templates & sequences ---

func (s *Store) AddTemplate(t crm.Template) crm.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.clock().UTC()
	}
	t = t.Clone()
	s.templates = append(s.templates, t)
	return t.Clone()
}

func (s *Store) Templates() []crm.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]crm.Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Template(id string) (crm.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return crm.Template{}, false
}

// AddSequence appends q and records a sequence_launched activity.
func (s *Store) AddSequence(q crm.Sequence) crm.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.clock().UTC()
	}
	if q.Status == "" {
		q.Status = crm.SequenceStatusDraft
	}
	q = q.Clone()
	for i := range q.Steps {
		if q.Steps[i].ID == "" {
			q.Steps[i].ID = uuid.NewString()
		}
	}
	s.sequences = append(s.sequences, q)

	s.activities.Prepend(activity.Activity{
		Type:        activity.TypeSequenceLaunched,
		Title:       fmt.Sprintf("Sequence %q Launched", q.Name),
		Description: fmt.Sprintf("Campaign: %s", q.CampaignID),
		Metadata:    map[string]any{"sequenceId": q.ID, "campaignId": q.CampaignID},
	})
	return q.Clone()
}

func (s *Store) Sequences() []crm.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]crm.Sequence, len(s.sequences))
	for i, q := range s.sequences {
		out[i] = q.Clone()
	}
	return out
}

// --- activities ---

// AddActivity prepends a to the log and returns the stored record.
func (s *Store) AddActivity(a activity.Activity) activity.Activity {
	return s.activities.Prepend(a)
}

func (s *Store) Activities() []activity.Activity {
	return s.activities.Entries()
}

func (s *Store) ClearActivities() {
	s.activities.Clear()
}

// --- campaign draft ---

func (s *Store) CampaignDraft() draft.CampaignDraft {
	return s.draft.Get()
}

func (s *Store) UpdateCampaignDraft(p draft.Patch) draft.CampaignDraft {
	return s.draft.Update(p)
}

// ModifyCampaignDraft derives a patch from the current draft under the draft
// lock.
func (s *Store) ModifyCampaignDraft(fn func(d draft.CampaignDraft) draft.Patch) draft.CampaignDraft {
	return s.draft.Modify(fn)
}

func (s *Store) ResetCampaignDraft() draft.CampaignDraft {
	return s.draft.Reset()
}
