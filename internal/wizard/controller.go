// Package wizard drives the campaign draft through Basics, AI configuration,
// Contacts and Review, and turns a finished draft into a Campaign.
//
// Invariants:
//   - The step moves by exactly one per Next/Skip/Back.
//   - Next validates; Skip never does (it fills defaults instead); Back never does.
//   - At most one Launch is in flight. While it is, the draft cannot change.
//   - A launch that resolves after Close still commits to the store, but notices
//     and open-state writes are dropped.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-crm/internal/crm"
	"sales-crm/internal/draft"
	"sales-crm/internal/templates"
	"sales-crm/pkg/metrics"
)

// Store is the subset of the domain store the wizard needs.
type Store interface {
	CampaignDraft() draft.CampaignDraft
	ModifyCampaignDraft(fn func(d draft.CampaignDraft) draft.Patch) draft.CampaignDraft
	ResetCampaignDraft() draft.CampaignDraft
	AddCampaign(c crm.Campaign) crm.Campaign
	LeadIDs() []string
	Lead(id string) (crm.Lead, bool)
	Template(id string) (crm.Template, bool)
}

type Options struct {
	// LaunchDelay is the simulated latency of Launch.
	LaunchDelay time.Duration
	Notifier    Notifier
	Renderer    *templates.Renderer
	Logger      *slog.Logger
}

type Controller struct {
	store    Store
	notifier Notifier
	renderer *templates.Renderer
	log      *slog.Logger

	delay time.Duration
	wait  func(ctx context.Context, d time.Duration) error
	clock func() time.Time

	mu        sync.Mutex
	open      bool
	launching bool
	closed    bool
}

func New(store Store, opts Options) *Controller {
	c := &Controller{
		store:    store,
		notifier: opts.Notifier,
		renderer: opts.Renderer,
		log:      opts.Logger,
		delay:    opts.LaunchDelay,
		wait:     sleepCtx,
		clock:    time.Now,
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.renderer == nil {
		c.renderer = templates.NewRenderer()
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Open marks the wizard visible. The draft is kept as it was.
func (c *Controller) Open() (State, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	c.open = true
	c.mu.Unlock()
	return c.State(), nil
}

// Close tears the wizard down. Further actions return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.open = false
}

func (c *Controller) State() State {
	c.mu.Lock()
	open, launching := c.open, c.launching
	c.mu.Unlock()

	d := c.store.CampaignDraft()
	return State{
		Step:      Step(d.Step),
		Title:     Step(d.Step).Title(),
		Open:      open,
		Launching: launching,
		Draft:     d,
	}
}

// Next advances one step when the current step's gate passes.
func (c *Controller) Next() (State, error) {
	return c.advance("next", func(d draft.CampaignDraft) (draft.Patch, error) {
		if err := validate(Step(d.Step), d); err != nil {
			return draft.Patch{}, err
		}
		return draft.Patch{}, nil
	})
}

// Skip advances one step without validating. AI configuration gets defaults
// for empty fields and Contacts selects every current lead.
func (c *Controller) Skip() (State, error) {
	return c.advance("skip", func(d draft.CampaignDraft) (draft.Patch, error) {
		switch Step(d.Step) {
		case StepAIConfig:
			cfg := d.AIConfig
			cfg.Tone = orDefault(cfg.Tone, DefaultTone)
			cfg.Goal = orDefault(cfg.Goal, DefaultGoal)
			cfg.Industry = orDefault(cfg.Industry, DefaultIndustry)
			cfg.CTA = orDefault(cfg.CTA, DefaultCTA)
			return draft.Patch{AIConfig: &cfg}, nil
		case StepContacts:
			return draft.Patch{Contacts: c.store.LeadIDs()}, nil
		}
		return draft.Patch{}, nil
	})
}

// Back moves one step back. On the first step it does nothing.
func (c *Controller) Back() (State, error) {
	err := c.transition(func() {
		c.store.ModifyCampaignDraft(func(d draft.CampaignDraft) draft.Patch {
			if d.Step <= draft.FirstStep {
				return draft.Patch{}
			}
			prev := d.Step - 1
			return draft.Patch{Step: &prev}
		})
	})
	if err != nil {
		return State{}, err
	}
	metrics.RecordWizardTransition("back", "ok")
	return c.State(), nil
}

// advance applies step, then moves to the next step, all under the draft lock.
// A gate error leaves the draft untouched and is forwarded to the notifier.
func (c *Controller) advance(action string, step func(d draft.CampaignDraft) (draft.Patch, error)) (State, error) {
	var stepErr error
	err := c.transition(func() {
		c.store.ModifyCampaignDraft(func(d draft.CampaignDraft) draft.Patch {
			if Step(d.Step) >= StepReview {
				stepErr = ErrInvalidTransition
				return draft.Patch{}
			}
			p, err := step(d)
			if err != nil {
				stepErr = err
				return draft.Patch{}
			}
			next := d.Step + 1
			p.Step = &next
			return p
		})
	})
	if err != nil {
		return State{}, err
	}

	if stepErr != nil {
		var ve *ValidationError
		if errors.As(stepErr, &ve) {
			metrics.RecordWizardTransition(action, "validation")
			c.notify(NoticeError, ve.Message)
		} else {
			metrics.RecordWizardTransition(action, "refused")
		}
		return c.State(), stepErr
	}
	metrics.RecordWizardTransition(action, "ok")
	return c.State(), nil
}

func validate(step Step, d draft.CampaignDraft) error {
	switch step {
	case StepBasics:
		if strings.TrimSpace(d.Basics.Name) == "" {
			return &ValidationError{Step: step, Field: "basics.name", Message: "Please enter a campaign name"}
		}
	case StepAIConfig:
		if d.AIConfig.Tone == "" || d.AIConfig.Goal == "" {
			field := "aiConfig.tone"
			if d.AIConfig.Tone != "" {
				field = "aiConfig.goal"
			}
			return &ValidationError{Step: step, Field: field, Message: "Please fill all AI configuration fields"}
		}
	case StepContacts:
		if len(d.Contacts) == 0 {
			return &ValidationError{Step: step, Field: "contacts", Message: "Please select at least one contact"}
		}
	}
	return nil
}

// Cancel discards the draft and closes the wizard. It is refused while a
// launch is in flight.
func (c *Controller) Cancel() (State, error) {
	err := c.mutate(func() {
		c.open = false
		c.store.ResetCampaignDraft()
	})
	if err != nil {
		return c.State(), err
	}
	metrics.RecordWizardTransition("cancel", "ok")
	return c.State(), nil
}

// Launch turns the draft into an active Campaign. It is only allowed on the
// Review step, waits the configured delay, adds the campaign to the store,
// resets the draft and closes the wizard.
func (c *Controller) Launch(ctx context.Context) (crm.Campaign, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return crm.Campaign{}, ErrClosed
	}
	if c.launching {
		c.mu.Unlock()
		metrics.RecordWizardTransition("launch", "in_flight")
		return crm.Campaign{}, ErrLaunchInFlight
	}
	if !c.open {
		c.mu.Unlock()
		metrics.RecordWizardTransition("launch", "refused")
		return crm.Campaign{}, ErrNotOpen
	}
	d := c.store.CampaignDraft()
	if Step(d.Step) != StepReview {
		c.mu.Unlock()
		metrics.RecordWizardTransition("launch", "refused")
		return crm.Campaign{}, ErrInvalidTransition
	}
	c.launching = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.launching = false
		c.mu.Unlock()
	}()

	if err := c.wait(ctx, c.delay); err != nil {
		metrics.RecordWizardTransition("launch", "aborted")
		if c.live() {
			c.notify(NoticeError, "Failed to launch campaign")
		}
		return crm.Campaign{}, err
	}

	campaign := c.buildCampaign(d)
	stored := c.store.AddCampaign(campaign)
	c.store.ResetCampaignDraft()
	metrics.RecordWizardTransition("launch", "ok")

	c.mu.Lock()
	live := !c.closed
	if live {
		c.open = false
	}
	c.mu.Unlock()

	if live {
		c.notify(NoticeSuccess, "Campaign launched successfully!")
	} else {
		c.log.Debug("wizard closed during launch; dropping view updates", "campaign_id", stored.ID)
	}
	return stored, nil
}

func (c *Controller) buildCampaign(d draft.CampaignDraft) crm.Campaign {
	present := make(map[string]struct{})
	for _, id := range c.store.LeadIDs() {
		present[id] = struct{}{}
	}
	selected, dangling := 0, 0
	for _, id := range d.Contacts {
		if _, ok := present[id]; ok {
			selected++
		} else {
			dangling++
		}
	}
	if dangling > 0 {
		c.log.Warn("dropping contacts for deleted leads", "dangling", dangling, "selected", selected)
	}

	name := d.Basics.Name
	if strings.TrimSpace(name) == "" {
		name = UntitledCampaign
	}
	typ := d.Basics.Type
	if typ == "" {
		typ = crm.CampaignTypeStandard
	}

	out := crm.Campaign{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       typ,
		Status:     crm.CampaignStatusActive,
		Contacts:   selected,
		CreatedAt:  c.clock().UTC(),
		Tone:       d.AIConfig.Tone,
		Goal:       d.AIConfig.Goal,
		Industry:   d.AIConfig.Industry,
		CTA:        d.AIConfig.CTA,
		TemplateID: d.TemplateID,
	}
	if d.Schedule != nil {
		out.ScheduledDate = d.Schedule.Date
		out.ScheduledTime = d.Schedule.Time
		out.Timezone = d.Schedule.Timezone
	}
	return out
}

// mutate runs fn under the controller lock so no launch can start meanwhile.
// Draft edits are allowed whether or not the wizard is open.
func (c *Controller) mutate(fn func()) error {
	return c.guarded(false, fn)
}

// transition is mutate for step moves, which need an open wizard.
func (c *Controller) transition(fn func()) error {
	return c.guarded(true, fn)
}

func (c *Controller) guarded(needOpen bool, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.launching {
		return ErrLaunchInFlight
	}
	if needOpen && !c.open {
		return ErrNotOpen
	}
	fn()
	return nil
}

func (c *Controller) live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Controller) notify(kind NoticeKind, msg string) {
	c.notifier.Notify(kind, msg)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
