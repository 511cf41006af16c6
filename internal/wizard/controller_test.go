package wizard

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"sales-crm/internal/activity"
	"sales-crm/internal/crm"
	"sales-crm/internal/draft"
	"sales-crm/internal/store"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []string
}

func (n *recordingNotifier) Notify(kind NoticeKind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, string(kind)+":"+msg)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notices...)
}

func newTestController(t *testing.T) (*Controller, *store.Store, *recordingNotifier) {
	t.Helper()
	s := store.New(store.Options{})
	s.AddLeads([]crm.Lead{
		{ID: "A", Name: "Ann Lee", Email: "ann@x.com", Company: "Acme"},
		{ID: "B", Name: "Bob Roy", Email: "bob@x.com"},
		{ID: "C", Name: "Cat Ng", Email: "cat@x.com"},
	})
	s.ClearActivities()

	n := &recordingNotifier{}
	c := New(s, Options{Notifier: n})
	c.wait = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	must(t).ok(c.Open())
	return c, s, n
}

func toReview(t *testing.T, c *Controller, contacts ...string) {
	t.Helper()
	must(t).ok(c.SetName("Q1"))
	must(t).ok(c.Next())
	must(t).ok(c.SetAIConfig(AIConfigPatch{Tone: crm.Ptr("casual"), Goal: crm.Ptr("engagement")}))
	must(t).ok(c.Next())
	must(t).ok(c.SelectContacts(contacts))
	must(t).ok(c.Next())
	if st := c.State(); st.Step != StepReview {
		t.Fatalf("expected review step, got %d", st.Step)
	}
}

type checker struct{ t *testing.T }

func must(t *testing.T) checker { return checker{t: t} }

func (k checker) ok(st State, err error) State {
	k.t.Helper()
	if err != nil {
		k.t.Fatalf("unexpected error: %v", err)
	}
	return st
}

func TestNext_BasicsRequiresName(t *testing.T) {
	c, _, n := newTestController(t)

	for _, name := range []string{"", "   "} {
		must(t).ok(c.SetName(name))
		st, err := c.Next()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected validation error for %q, got %v", name, err)
		}
		if ve.Field != "basics.name" {
			t.Fatalf("unexpected field %q", ve.Field)
		}
		if st.Step != StepBasics {
			t.Fatalf("expected to stay on step 1, got %d", st.Step)
		}
	}
	if got := n.all(); len(got) != 2 || got[0] != "error:Please enter a campaign name" {
		t.Fatalf("expected notices, got %v", got)
	}

	must(t).ok(c.SetName(" Q1 "))
	st, err := c.Next()
	if err != nil || st.Step != StepAIConfig {
		t.Fatalf("expected step 2, got %d err=%v", st.Step, err)
	}
}

func TestNext_FailureLeavesDraftUntouched(t *testing.T) {
	c, s, _ := newTestController(t)
	must(t).ok(c.SetType(crm.CampaignTypeAIPowered))
	before := s.CampaignDraft()

	if _, err := c.Next(); err == nil {
		t.Fatalf("expected validation error")
	}
	if !reflect.DeepEqual(before, s.CampaignDraft()) {
		t.Fatalf("expected draft untouched after failed gate")
	}
}

func TestSkip_BasicsAdvancesWithoutName(t *testing.T) {
	c, _, _ := newTestController(t)
	st, err := c.Skip()
	if err != nil || st.Step != StepAIConfig {
		t.Fatalf("expected skip to advance, got %d err=%v", st.Step, err)
	}
}

func TestNext_AIConfigRequiresToneAndGoal(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.SetName("x"))
	must(t).ok(c.Next())

	must(t).ok(c.SetAIConfig(AIConfigPatch{Tone: crm.Ptr("casual")}))
	_, err := c.Next()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "aiConfig.goal" {
		t.Fatalf("expected goal validation error, got %v", err)
	}

	must(t).ok(c.SetAIConfig(AIConfigPatch{Goal: crm.Ptr("demo_booking")}))
	st, err := c.Next()
	if err != nil || st.Step != StepContacts {
		t.Fatalf("expected step 3, got %d err=%v", st.Step, err)
	}
	if st.Draft.AIConfig.Tone != "casual" {
		t.Fatalf("expected tone kept across field updates, got %q", st.Draft.AIConfig.Tone)
	}
}

func TestSkip_AIConfigFillsOnlyEmptyFields(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.Skip())
	must(t).ok(c.SetAIConfig(AIConfigPatch{Tone: crm.Ptr("urgent")}))

	st, err := c.Skip()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := draft.AIConfig{Tone: "urgent", Goal: DefaultGoal, Industry: DefaultIndustry, CTA: DefaultCTA}
	if st.Draft.AIConfig != want {
		t.Fatalf("expected %+v, got %+v", want, st.Draft.AIConfig)
	}
	if st.Step != StepContacts {
		t.Fatalf("expected step 3, got %d", st.Step)
	}
}

func TestNext_ContactsRequiresSelection(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.Skip())
	must(t).ok(c.Skip())

	_, err := c.Next()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Step != StepContacts {
		t.Fatalf("expected contacts validation error, got %v", err)
	}
}

func TestSkip_ContactsSelectsAllLeads(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.Skip())
	must(t).ok(c.Skip())
	must(t).ok(c.SelectContacts([]string{"B"}))

	st, err := c.Skip()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(st.Draft.Contacts, []string{"A", "B", "C"}) {
		t.Fatalf("expected all leads selected, got %v", st.Draft.Contacts)
	}
	if st.Step != StepReview {
		t.Fatalf("expected step 4, got %d", st.Step)
	}
}

func TestNextAndSkip_RefusedOnReview(t *testing.T) {
	c, _, _ := newTestController(t)
	toReview(t, c, "A")

	if _, err := c.Next(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from Next, got %v", err)
	}
	if _, err := c.Skip(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from Skip, got %v", err)
	}
	if c.State().Step != StepReview {
		t.Fatalf("expected to stay on review")
	}
}

func TestBack_NeverValidatesAndStopsAtFirstStep(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.Skip())
	must(t).ok(c.Skip())

	st, err := c.Back()
	if err != nil || st.Step != StepAIConfig {
		t.Fatalf("expected step 2, got %d err=%v", st.Step, err)
	}
	must(t).ok(c.Back())
	st, err = c.Back()
	if err != nil || st.Step != StepBasics {
		t.Fatalf("expected back on step 1 to be a no-op, got %d err=%v", st.Step, err)
	}
}

func TestSetters_SpreadNestedValues(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.SetType(crm.CampaignTypeAIPowered))
	st, err := c.SetName("Q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Draft.Basics.Type != crm.CampaignTypeAIPowered {
		t.Fatalf("expected type preserved, got %q", st.Draft.Basics.Type)
	}
	if _, err := c.SetType("weird"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestSelectContacts_RejectsUnknownLead(t *testing.T) {
	c, s, _ := newTestController(t)
	if _, err := c.SelectContacts([]string{"A", "Z"}); !errors.Is(err, ErrUnknownLead) {
		t.Fatalf("expected ErrUnknownLead, got %v", err)
	}
	if len(s.CampaignDraft().Contacts) != 0 {
		t.Fatalf("expected selection unchanged")
	}

	st, err := c.SelectContacts([]string{"A", "A", "C"})
	if err != nil || !reflect.DeepEqual(st.Draft.Contacts, []string{"A", "C"}) {
		t.Fatalf("expected deduplicated selection, got %v err=%v", st.Draft.Contacts, err)
	}
}

func TestToggleContact(t *testing.T) {
	c, s, _ := newTestController(t)
	must(t).ok(c.ToggleContact("A"))
	must(t).ok(c.ToggleContact("B"))
	st, err := c.ToggleContact("A")
	if err != nil || !reflect.DeepEqual(st.Draft.Contacts, []string{"B"}) {
		t.Fatalf("expected [B], got %v err=%v", st.Draft.Contacts, err)
	}
	if _, err := c.ToggleContact("Z"); !errors.Is(err, ErrUnknownLead) {
		t.Fatalf("expected ErrUnknownLead, got %v", err)
	}

	// A deleted lead can still be deselected.
	s.DeleteLead("B")
	st, err = c.ToggleContact("B")
	if err != nil || len(st.Draft.Contacts) != 0 {
		t.Fatalf("expected stale id removed, got %v err=%v", st.Draft.Contacts, err)
	}
}

func TestLaunch_CreatesCampaignAndResetsDraft(t *testing.T) {
	c, s, n := newTestController(t)
	toReview(t, c, "A", "B")
	must(t).ok(c.SetSchedule(draft.Schedule{Date: "2025-03-01", Time: "09:00", Timezone: "UTC"}))

	got, err := c.Launch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Name != "Q1" || got.Type != crm.CampaignTypeStandard {
		t.Fatalf("unexpected basics %+v", got)
	}
	if got.Contacts != 2 || got.Status != crm.CampaignStatusActive {
		t.Fatalf("unexpected contacts/status %+v", got)
	}
	if got.Opens != 0 || got.Clicks != 0 || got.Replies != 0 {
		t.Fatalf("expected zero counters %+v", got)
	}
	if got.Tone != "casual" || got.Goal != "engagement" || got.ScheduledDate != "2025-03-01" {
		t.Fatalf("expected ai config and schedule copied %+v", got)
	}
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("expected id and createdAt")
	}

	if len(s.Campaigns()) != 1 {
		t.Fatalf("expected exactly one campaign")
	}
	acts := s.Activities()
	if len(acts) != 1 || acts[0].Type != activity.TypeCampaignCreated {
		t.Fatalf("expected exactly one campaign_created activity, got %+v", acts)
	}
	if !reflect.DeepEqual(s.CampaignDraft(), draft.Initial()) {
		t.Fatalf("expected draft reset after launch")
	}
	st := c.State()
	if st.Open || st.Launching {
		t.Fatalf("expected wizard closed and idle, got %+v", st)
	}
	notices := n.all()
	if len(notices) == 0 || notices[len(notices)-1] != "success:Campaign launched successfully!" {
		t.Fatalf("expected success notice, got %v", notices)
	}
}

func TestLaunch_OnlyFromReview(t *testing.T) {
	c, s, _ := newTestController(t)
	if _, err := c.Launch(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(s.Campaigns()) != 0 {
		t.Fatalf("expected no campaign")
	}
}

func TestLaunch_UntitledFallback(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.Skip())
	must(t).ok(c.Skip())
	must(t).ok(c.Skip())

	got, err := c.Launch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != UntitledCampaign || got.Contacts != 3 {
		t.Fatalf("unexpected campaign %+v", got)
	}
}

func TestLaunch_DropsDanglingContacts(t *testing.T) {
	c, s, _ := newTestController(t)
	toReview(t, c, "A", "B", "C")
	s.DeleteLead("B")

	got, err := c.Launch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Contacts != 2 {
		t.Fatalf("expected dangling id ignored, got %d contacts", got.Contacts)
	}
}

func TestLaunch_DoubleSubmitCreatesOneCampaign(t *testing.T) {
	c, s, _ := newTestController(t)
	toReview(t, c, "A", "B")

	started := make(chan struct{})
	release := make(chan struct{})
	c.wait = func(ctx context.Context, d time.Duration) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Launch(context.Background())
		done <- err
	}()
	<-started

	if _, err := c.Launch(context.Background()); !errors.Is(err, ErrLaunchInFlight) {
		t.Fatalf("expected ErrLaunchInFlight, got %v", err)
	}
	if !c.State().Launching {
		t.Fatalf("expected launching flag while in flight")
	}
	if _, err := c.SetName("changed"); !errors.Is(err, ErrLaunchInFlight) {
		t.Fatalf("expected draft frozen while launching, got %v", err)
	}
	if _, err := c.Cancel(); !errors.Is(err, ErrLaunchInFlight) {
		t.Fatalf("expected cancel refused while launching, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Campaigns()) != 1 {
		t.Fatalf("expected exactly one campaign, got %d", len(s.Campaigns()))
	}
	if len(s.Activities()) != 1 {
		t.Fatalf("expected exactly one activity, got %d", len(s.Activities()))
	}
}

func TestLaunch_CloseDuringFlightStillCommits(t *testing.T) {
	c, s, n := newTestController(t)
	toReview(t, c, "A")
	before := len(n.all())

	started := make(chan struct{})
	release := make(chan struct{})
	c.wait = func(ctx context.Context, d time.Duration) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Launch(context.Background())
		done <- err
	}()
	<-started
	c.Close()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Campaigns()) != 1 {
		t.Fatalf("expected campaign committed after teardown")
	}
	if got := len(n.all()); got != before {
		t.Fatalf("expected no notices after teardown, got %d new", got-before)
	}
	if _, err := c.Next(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestLaunch_ContextCancelledLeavesDraft(t *testing.T) {
	c, s, _ := newTestController(t)
	toReview(t, c, "A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Launch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(s.Campaigns()) != 0 {
		t.Fatalf("expected no campaign")
	}
	if s.CampaignDraft().Step != int(StepReview) {
		t.Fatalf("expected draft kept on review")
	}
	if c.State().Launching {
		t.Fatalf("expected launching flag cleared")
	}
}

func TestTransitions_RequireOpenWizard(t *testing.T) {
	c, s, _ := newTestController(t)
	must(t).ok(c.Cancel())

	if _, err := c.Next(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen from Next, got %v", err)
	}
	if _, err := c.Skip(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen from Skip, got %v", err)
	}
	if _, err := c.Back(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen from Back, got %v", err)
	}
	if s.CampaignDraft().Step != int(StepBasics) {
		t.Fatalf("expected draft left on first step")
	}

	st := must(t).ok(c.SetName("Q2"))
	if st.Draft.Basics.Name != "Q2" {
		t.Fatalf("expected draft edits allowed while hidden")
	}

	must(t).ok(c.Open())
	if st := must(t).ok(c.Next()); st.Step != StepAIConfig {
		t.Fatalf("expected advance after reopening, got %d", st.Step)
	}
}

func TestLaunch_RefusedAfterWizardHidden(t *testing.T) {
	c, s, _ := newTestController(t)
	toReview(t, c, "A")
	if _, err := c.Launch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.mu.Lock()
	open := c.open
	c.mu.Unlock()
	if open {
		t.Fatalf("expected wizard hidden after launch")
	}
	if _, err := c.Launch(context.Background()); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	if len(s.Campaigns()) != 1 {
		t.Fatalf("expected exactly one campaign")
	}
}

func TestCancel_ResetsDraftWithoutCampaign(t *testing.T) {
	c, s, _ := newTestController(t)
	must(t).ok(c.SetName("Q1"))
	must(t).ok(c.Next())

	st, err := c.Cancel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Open {
		t.Fatalf("expected wizard closed")
	}
	if !reflect.DeepEqual(s.CampaignDraft(), draft.Initial()) {
		t.Fatalf("expected draft reset")
	}
	if len(s.Campaigns()) != 0 {
		t.Fatalf("expected no campaign after cancel")
	}
}

func TestPreview_RendersSelectedTemplate(t *testing.T) {
	c, s, _ := newTestController(t)
	tpl := s.AddTemplate(crm.Template{Subject: "Hi {{FIRST_NAME}}", Body: "{{COMPANY}}: {{CTA}} {{PS}}"})

	if _, err := c.Preview("A"); !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("expected ErrNoTemplate, got %v", err)
	}
	if _, err := c.SetTemplate("missing"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	must(t).ok(c.SetTemplate(tpl.ID))
	must(t).ok(c.SetAIConfig(AIConfigPatch{CTA: crm.Ptr("Book a call")}))
	must(t).ok(c.SetVariable("PS", "Thanks"))

	got, err := c.Preview("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Subject != "Hi Ann" || got.Body != "Acme: Book a call Thanks" {
		t.Fatalf("unexpected preview %+v", got)
	}
	if _, err := c.Preview("Z"); !errors.Is(err, ErrUnknownLead) {
		t.Fatalf("expected ErrUnknownLead, got %v", err)
	}
}

func TestSetVariable_EmptyValueRemoves(t *testing.T) {
	c, _, _ := newTestController(t)
	must(t).ok(c.SetVariable("K", "v"))
	st, err := c.SetVariable("K", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := st.Draft.Variables["K"]; ok {
		t.Fatalf("expected variable removed")
	}
}

func TestStepTitles(t *testing.T) {
	if StepReview.Title() != "Review & Launch" || Step(9).Title() != "" {
		t.Fatalf("unexpected titles")
	}
}
