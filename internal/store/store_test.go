package store

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"sales-crm/internal/activity"
	"sales-crm/internal/crm"
	"sales-crm/internal/draft"
)

func TestAddCampaign_EmitsOneActivity(t *testing.T) {
	s := New(Options{})
	s.AddCampaign(crm.Campaign{ID: "c1", Name: "Q1", Contacts: 2, Status: crm.CampaignStatusActive})

	if got := len(s.Campaigns()); got != 1 {
		t.Fatalf("expected 1 campaign, got %d", got)
	}
	acts := s.Activities()
	if len(acts) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(acts))
	}
	if acts[0].Type != activity.TypeCampaignCreated {
		t.Fatalf("unexpected activity type %q", acts[0].Type)
	}
	if acts[0].Title != `Campaign "Q1" Created` {
		t.Fatalf("unexpected title %q", acts[0].Title)
	}
	if acts[0].Description != "Campaign with 2 contacts" {
		t.Fatalf("unexpected description %q", acts[0].Description)
	}
}

func TestAddCampaign_FillsIDAndCreatedAt(t *testing.T) {
	s := New(Options{})
	c := s.AddCampaign(crm.Campaign{Name: "x"})
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("expected id and createdAt to be filled: %+v", c)
	}
}

func TestUpdateCampaign_MissingIDIsNoop(t *testing.T) {
	s := New(Options{})
	s.AddCampaign(crm.Campaign{ID: "c1", Name: "a"})
	before := s.Campaigns()

	if _, found := s.UpdateCampaign("nope", crm.CampaignPatch{Name: crm.Ptr("b")}); found {
		t.Fatalf("expected not found")
	}
	after := s.Campaigns()
	if len(before) != len(after) || after[0].Name != "a" {
		t.Fatalf("expected store unchanged")
	}
}

func TestUpdateCampaign_MergesPatch(t *testing.T) {
	s := New(Options{})
	s.AddCampaign(crm.Campaign{ID: "c1", Name: "a", Opens: 3})

	got, found := s.UpdateCampaign("c1", crm.CampaignPatch{Name: crm.Ptr("b")})
	if !found {
		t.Fatalf("expected found")
	}
	if got.Name != "b" || got.Opens != 3 {
		t.Fatalf("unexpected merge result %+v", got)
	}
}

func TestDeleteCampaign(t *testing.T) {
	s := New(Options{})
	s.AddCampaign(crm.Campaign{ID: "c1"})
	s.AddCampaign(crm.Campaign{ID: "c2"})

	if !s.DeleteCampaign("c1") {
		t.Fatalf("expected delete to succeed")
	}
	if s.DeleteCampaign("c1") {
		t.Fatalf("expected second delete to be a no-op")
	}
	cs := s.Campaigns()
	if len(cs) != 1 || cs[0].ID != "c2" {
		t.Fatalf("unexpected campaigns %+v", cs)
	}
}

func TestToggleCampaignStatus(t *testing.T) {
	s := New(Options{})
	s.AddCampaign(crm.Campaign{ID: "c1", Status: crm.CampaignStatusActive})
	s.AddCampaign(crm.Campaign{ID: "c2", Status: crm.CampaignStatusDraft})

	if st, _ := s.ToggleCampaignStatus("c1"); st != crm.CampaignStatusPaused {
		t.Fatalf("expected paused, got %q", st)
	}
	if st, _ := s.ToggleCampaignStatus("c1"); st != crm.CampaignStatusActive {
		t.Fatalf("expected active, got %q", st)
	}
	if st, _ := s.ToggleCampaignStatus("c2"); st != crm.CampaignStatusActive {
		t.Fatalf("expected draft to become active, got %q", st)
	}
	if _, found := s.ToggleCampaignStatus("missing"); found {
		t.Fatalf("expected not found")
	}
}

func TestAddLeads_OneActivityPerBatch(t *testing.T) {
	s := New(Options{})
	s.AddLeads([]crm.Lead{
		{Name: "a", Email: "a@x.com", Source: crm.LeadSourceImport},
		{Name: "b", Email: "b@x.com", Source: crm.LeadSourceImport},
		{Name: "c", Email: "c@x.com", Source: crm.LeadSourceImport},
	})

	if got := len(s.Leads()); got != 3 {
		t.Fatalf("expected 3 leads, got %d", got)
	}
	acts := s.Activities()
	if len(acts) != 1 {
		t.Fatalf("expected exactly 1 activity, got %d", len(acts))
	}
	if acts[0].Title != "3 Leads Imported" {
		t.Fatalf("unexpected title %q", acts[0].Title)
	}
}

func TestAddLeads_DescribesBatchSource(t *testing.T) {
	cases := []struct {
		sources []crm.LeadSource
		want    string
	}{
		{[]crm.LeadSource{crm.LeadSourceImport}, "Successfully imported from CSV"},
		{[]crm.LeadSource{crm.LeadSourceManual, crm.LeadSourceManual}, "Added manually"},
		{[]crm.LeadSource{crm.LeadSourceAPI}, "Received via API"},
		{[]crm.LeadSource{crm.LeadSourceManual, crm.LeadSourceImport}, "Added from multiple sources"},
	}
	for _, tc := range cases {
		s := New(Options{})
		batch := make([]crm.Lead, len(tc.sources))
		for i, src := range tc.sources {
			batch[i] = crm.Lead{Name: "n", Email: "n@x.com", Source: src}
		}
		s.AddLeads(batch)
		if got := s.Activities()[0].Description; got != tc.want {
			t.Fatalf("sources %v: expected %q, got %q", tc.sources, tc.want, got)
		}
	}
}

func TestAddLeads_CountsEachSource(t *testing.T) {
	manualBefore := leadsAddedTotal(t, "manual")
	apiBefore := leadsAddedTotal(t, "api")

	s := New(Options{})
	s.AddLeads([]crm.Lead{
		{Name: "a", Email: "a@x.com", Source: crm.LeadSourceManual},
		{Name: "b", Email: "b@x.com", Source: crm.LeadSourceAPI},
		{Name: "c", Email: "c@x.com", Source: crm.LeadSourceAPI},
	})

	if d := leadsAddedTotal(t, "manual") - manualBefore; d != 1 {
		t.Fatalf("expected manual delta 1, got %v", d)
	}
	if d := leadsAddedTotal(t, "api") - apiBefore; d != 2 {
		t.Fatalf("expected api delta 2, got %v", d)
	}
}

func leadsAddedTotal(t *testing.T, source string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "crm_leads_added_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "source" && lp.GetValue() == source {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestAddLeads_EmptyBatchIsNoop(t *testing.T) {
	s := New(Options{})
	s.AddLeads(nil)
	if len(s.Leads()) != 0 || len(s.Activities()) != 0 {
		t.Fatalf("expected nothing recorded for empty batch")
	}
}

func TestUpdateAndDeleteLead(t *testing.T) {
	s := New(Options{})
	s.AddLeads([]crm.Lead{{ID: "l1", Name: "a", Email: "a@x.com"}})

	got, found := s.UpdateLead("l1", crm.LeadPatch{Status: crm.Ptr(crm.LeadStatusQualified)})
	if !found || got.Status != crm.LeadStatusQualified || got.Name != "a" {
		t.Fatalf("unexpected update result %+v found=%v", got, found)
	}
	if _, found := s.UpdateLead("missing", crm.LeadPatch{}); found {
		t.Fatalf("expected missing lead not found")
	}
	if !s.DeleteLead("l1") || s.DeleteLead("l1") {
		t.Fatalf("expected delete once")
	}
}

func TestSearchLeads(t *testing.T) {
	s := New(Options{})
	s.Seed()

	if got := s.SearchLeads("techcorp", ""); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected company match, got %+v", got)
	}
	if got := s.SearchLeads("SARAH", "all"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected case-insensitive name match, got %+v", got)
	}
	if got := s.SearchLeads("", crm.LeadStatusNew); len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("expected status filter, got %+v", got)
	}
	if got := s.SearchLeads("nobody", ""); len(got) != 0 {
		t.Fatalf("expected no results, got %+v", got)
	}
}

func TestAddSequence_EmitsActivityAndFillsStepIDs(t *testing.T) {
	s := New(Options{})
	steps := []crm.SequenceStep{{Type: crm.SequenceStepEmail, TemplateID: "1"}, {Type: crm.SequenceStepWait, DelayHours: 24}}
	q := s.AddSequence(crm.Sequence{Name: "Follow", CampaignID: "c1", Steps: steps})

	if q.Status != crm.SequenceStatusDraft {
		t.Fatalf("expected default draft status, got %q", q.Status)
	}
	for _, st := range q.Steps {
		if st.ID == "" {
			t.Fatalf("expected step ids to be filled")
		}
	}
	if steps[0].ID != "" {
		t.Fatalf("expected caller steps untouched")
	}
	acts := s.Activities()
	if len(acts) != 1 || acts[0].Type != activity.TypeSequenceLaunched {
		t.Fatalf("expected one sequence_launched activity, got %+v", acts)
	}
}

func TestAddTemplate_DoesNotEmitActivity(t *testing.T) {
	s := New(Options{})
	s.AddTemplate(crm.Template{Name: "t", Variables: []string{"A"}})
	if len(s.Templates()) != 1 {
		t.Fatalf("expected 1 template")
	}
	if len(s.Activities()) != 0 {
		t.Fatalf("expected no activity for templates")
	}
}

func TestActivities_NewestFirstAndCapped(t *testing.T) {
	s := New(Options{ActivityCap: 2})
	s.AddActivity(activity.Activity{Title: "a"})
	s.AddActivity(activity.Activity{Title: "b"})
	s.AddActivity(activity.Activity{Title: "c"})

	acts := s.Activities()
	if len(acts) != 2 || acts[0].Title != "c" || acts[1].Title != "b" {
		t.Fatalf("unexpected activities %+v", acts)
	}
	s.ClearActivities()
	if len(s.Activities()) != 0 {
		t.Fatalf("expected cleared log")
	}
}

func TestReaders_ReturnCopies(t *testing.T) {
	s := New(Options{})
	s.Seed()

	ts := s.Templates()
	ts[0].Variables[0] = "mutated"
	if again, _ := s.Template("1"); again.Variables[0] != "FIRST_NAME" {
		t.Fatalf("expected template variables isolated")
	}

	cs := s.Campaigns()
	cs[0].Name = "mutated"
	if again, _ := s.Campaign("1"); again.Name != "Q1 Sales Push" {
		t.Fatalf("expected campaign isolated")
	}
}

func TestSeed_LoadsDemoData(t *testing.T) {
	s := New(Options{})
	s.Seed()

	if len(s.Campaigns()) != 2 || len(s.Leads()) != 3 || len(s.Templates()) != 3 {
		t.Fatalf("unexpected seed sizes")
	}
	acts := s.Activities()
	if len(acts) != 3 || acts[0].ID != "1" || acts[2].ID != "3" {
		t.Fatalf("expected seeded activities newest first, got %+v", acts)
	}
	if ids := s.LeadIDs(); len(ids) != 3 || ids[0] != "1" {
		t.Fatalf("unexpected lead ids %v", ids)
	}
	counts := s.LeadStatusCounts()
	if counts[crm.LeadStatusContacted] != 1 || counts[crm.LeadStatusNew] != 1 {
		t.Fatalf("unexpected status counts %v", counts)
	}
}

func TestCampaignDraft_UpdateAndReset(t *testing.T) {
	s := New(Options{})
	s.UpdateCampaignDraft(draft.Patch{Basics: &draft.Basics{Name: "x"}})
	if got := s.CampaignDraft(); got.Basics.Name != "x" {
		t.Fatalf("expected draft name x, got %q", got.Basics.Name)
	}
	s.ResetCampaignDraft()
	if got := s.CampaignDraft(); got.Basics.Name != "" || got.Basics.Type != crm.CampaignTypeStandard {
		t.Fatalf("expected initial draft after reset, got %+v", got.Basics)
	}
}

func TestConcurrentAddCampaign_OneActivityEach(t *testing.T) {
	s := New(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddCampaign(crm.Campaign{Name: "c"})
		}()
	}
	wg.Wait()

	if len(s.Campaigns()) != 50 || len(s.Activities()) != 50 {
		t.Fatalf("expected 50 campaigns and 50 activities, got %d and %d", len(s.Campaigns()), len(s.Activities()))
	}
}
