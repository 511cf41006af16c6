package store

import (
	"time"

	"sales-crm/internal/activity"
	"sales-crm/internal/crm"
)

// Seed loads the demo dataset: two campaigns, three leads, three templates and
// three activities. Seeding does not emit activities of its own.
func (s *Store) Seed() {
	now := s.clock().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.campaigns = append(s.campaigns,
		crm.Campaign{
			ID:        "1",
			Name:      "Q1 Sales Push",
			Type:      crm.CampaignTypeAIPowered,
			Status:    crm.CampaignStatusActive,
			Contacts:  250,
			Opens:     87,
			Clicks:    23,
			Replies:   5,
			CreatedAt: now.Add(-7 * 24 * time.Hour),
			Tone:      "professional",
			Goal:      "Lead Generation",
			Industry:  "SaaS",
		},
		crm.Campaign{
			ID:        "2",
			Name:      "Enterprise Outreach",
			Type:      crm.CampaignTypeStandard,
			Status:    crm.CampaignStatusDraft,
			CreatedAt: now,
		},
	)

	s.leads = append(s.leads,
		crm.Lead{ID: "1", Name: "John Smith", Email: "john@techcorp.com", Company: "TechCorp Inc", Phone: "+1-555-0001", Status: crm.LeadStatusContacted, Source: crm.LeadSourceImport},
		crm.Lead{ID: "2", Name: "Sarah Johnson", Email: "sarah@innovate.io", Company: "Innovate.io", Phone: "+1-555-0002", Status: crm.LeadStatusInterested, Source: crm.LeadSourceImport},
		crm.Lead{ID: "3", Name: "Michael Chen", Email: "michael@growthco.com", Company: "Growth Co", Phone: "+1-555-0003", Status: crm.LeadStatusNew, Source: crm.LeadSourceImport},
	)

	vars := []string{"FIRST_NAME", "COMPANY", "CTA"}
	s.templates = append(s.templates,
		crm.Template{
			ID:        "1",
			Name:      "Cold Outreach - Introduction",
			Subject:   "Quick thought for {{FIRST_NAME}}",
			Body:      "Hi {{FIRST_NAME}},\n\nI came across {{COMPANY}} and thought you might find value in what we do.\n\n{{CTA}}\n\nBest,\nSales Team",
			Variables: append([]string(nil), vars...),
			CreatedAt: now,
		},
		crm.Template{
			ID:        "2",
			Name:      "Follow-up Email",
			Subject:   "Following up - {{COMPANY}}",
			Body:      "Hi {{FIRST_NAME}},\n\nJust wanted to follow up on my previous email. Did you get a chance to review?\n\n{{CTA}}\n\nThanks,\nSales Team",
			Variables: append([]string(nil), vars...),
			CreatedAt: now,
		},
		crm.Template{
			ID:        "3",
			Name:      "Value Proposition",
			Subject:   "We helped {{COMPANY}} increase revenue by 40%",
			Body:      "Hi {{FIRST_NAME}},\n\nWe recently helped a similar company at {{COMPANY}} achieve significant results.\n\nWould you like to learn more?\n\n{{CTA}}\n\nBest regards,\nSales Team",
			Variables: append([]string(nil), vars...),
			CreatedAt: now,
		},
	)

	// Oldest first so the log ends up newest first.
	for _, a := range []activity.Activity{
		{ID: "3", Type: activity.TypeEmailSent, Title: "150 Emails Sent", Description: "From Q1 Sales Push campaign", Timestamp: now.Add(-6 * time.Hour)},
		{ID: "2", Type: activity.TypeLeadsImported, Title: "50 Leads Imported", Description: "From Q1_prospects.csv", Timestamp: now.Add(-4 * time.Hour)},
		{ID: "1", Type: activity.TypeCampaignCreated, Title: "Q1 Sales Push Campaign Created", Description: "New campaign with 250 contacts", Timestamp: now.Add(-2 * time.Hour)},
	} {
		s.activities.Prepend(a)
	}
}
