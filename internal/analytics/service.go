// Package analytics aggregates campaign, lead and activity figures for the
// dashboard.
package analytics

import (
	"context"
	"errors"

	"sales-crm/internal/activity"
	"sales-crm/internal/crm"
)

var ErrInvalidRequest = errors.New("analytics: invalid request")

// Source is the read side of the domain store.
type Source interface {
	Campaigns() []crm.Campaign
	LeadStatusCounts() map[crm.LeadStatus]int
	Activities() []activity.Activity
}

type Service struct {
	src Source
}

func NewService(src Source) *Service { return &Service{src: src} }

func (s *Service) Summary(ctx context.Context, req SummaryRequest) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	r := req.Range
	if !r.From.IsZero() && !r.To.IsZero() && !r.To.After(r.From) {
		return Summary{}, ErrInvalidRequest
	}
	if s.src == nil {
		return Summary{}, errors.New("analytics: source not configured")
	}

	out := Summary{
		CampaignsByStatus: map[crm.CampaignStatus]int{},
		PerCampaign:       []CampaignStats{},
		LeadsByStatus:     map[crm.LeadStatus]int{},
		ActivitiesByType:  map[activity.Type]int{},
	}

	for _, c := range s.src.Campaigns() {
		if !r.From.IsZero() && c.CreatedAt.Before(r.From) {
			continue
		}
		if !r.To.IsZero() && !c.CreatedAt.Before(r.To) {
			continue
		}
		out.Campaigns++
		out.CampaignsByStatus[c.Status]++
		out.Totals.Contacts += c.Contacts
		out.Totals.Opens += c.Opens
		out.Totals.Clicks += c.Clicks
		out.Totals.Replies += c.Replies
		out.PerCampaign = append(out.PerCampaign, CampaignStats{
			ID:       c.ID,
			Name:     c.Name,
			Status:   c.Status,
			Contacts: c.Contacts,
			Rates:    rates(c.Contacts, c.Opens, c.Clicks, c.Replies),
		})
	}
	out.Rates = rates(out.Totals.Contacts, out.Totals.Opens, out.Totals.Clicks, out.Totals.Replies)

	for status, n := range s.src.LeadStatusCounts() {
		out.LeadsByStatus[status] = n
		out.Leads += n
	}

	for _, a := range s.src.Activities() {
		out.Activities++
		out.ActivitiesByType[a.Type]++
	}
	return out, nil
}

func rates(contacts, opens, clicks, replies int) Rates {
	if contacts <= 0 {
		return Rates{}
	}
	n := float64(contacts)
	return Rates{
		Open:  float64(opens) / n,
		Click: float64(clicks) / n,
		Reply: float64(replies) / n,
	}
}
