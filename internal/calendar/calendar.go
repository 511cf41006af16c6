// Package calendar keeps the sales calendar: events grouped by day of month and
// mirrored into a single key/value slot.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-crm/internal/kv"
	"sales-crm/pkg/metrics"
)

// SlotKey names the slot the events are persisted under.
const SlotKey = "calendar_events"

type EventType string

const (
	EventMeeting EventType = "meeting"
	EventCall    EventType = "call"
	EventDemo    EventType = "demo"
)

var typeColors = map[EventType]string{
	EventDemo:    "#2563EB",
	EventCall:    "#10b981",
	EventMeeting: "#8b5cf6",
}

var (
	ErrInvalidDay  = errors.New("calendar: day must be between 1 and 31")
	ErrInvalidType = errors.New("calendar: event type must be meeting, call or demo")
	ErrNoTitle     = errors.New("calendar: event title is required")
	ErrCorrupt     = errors.New("calendar: stored events are not valid")

	errSkip = errors.New("calendar: nothing to write")
)

// Event is one calendar entry. Time and Duration are free text; Date mirrors
// the day it is filed under.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        EventType `json:"type"`
	Time        string    `json:"time"`
	Date        string    `json:"date"`
	Duration    string    `json:"duration"`
	Attendees   []string  `json:"attendees"`
	Location    string    `json:"location"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
}

func (e Event) clone() Event {
	out := e
	out.Attendees = append([]string{}, e.Attendees...)
	return out
}

// Cell is one square of a month view. Day 0 pads the first week.
type Cell struct {
	Day    int `json:"day"`
	Events int `json:"events"`
}

// Service owns the in-memory copy of the events. Every mutation is written to
// the slot first and only applied in memory once the write succeeds.
type Service struct {
	kv  kv.Store
	log *slog.Logger

	mu     sync.RWMutex
	events map[int][]Event

	newID func() string
}

func New(store kv.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		kv:     store,
		log:    logger,
		events: map[int][]Event{},
		newID:  uuid.NewString,
	}
}

// Load reads the slot. A missing slot is seeded with the sample events and
// written back. A corrupt slot is reported and memory is left untouched.
func (s *Service) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, SlotKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		seed := SeedEvents()
		b, err := encode(seed)
		if err != nil {
			return err
		}
		if err := s.kv.Put(ctx, SlotKey, b); err != nil {
			metrics.RecordPersistenceError(SlotKey)
			return fmt.Errorf("calendar: seed slot: %w", err)
		}
		s.replace(seed)
		s.log.Info("calendar seeded", "days", len(seed))
		return nil
	case err != nil:
		metrics.RecordPersistenceError(SlotKey)
		return fmt.Errorf("calendar: load slot: %w", err)
	}

	events, err := decode(raw)
	if err != nil {
		metrics.RecordPersistenceError(SlotKey)
		return err
	}
	s.replace(events)
	return nil
}

// Events returns every event keyed by day.
func (s *Service) Events() map[int][]Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEvents(s.events)
}

// EventsOn returns the events filed under day, never nil.
func (s *Service) EventsOn(day int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events[day]))
	for _, e := range s.events[day] {
		out = append(out, e.clone())
	}
	return out
}

// AddEvent files ev under day. ID, Date and Color are filled when empty.
func (s *Service) AddEvent(ctx context.Context, day int, ev Event) (Event, error) {
	if day < 1 || day > 31 {
		return Event{}, ErrInvalidDay
	}
	if _, ok := typeColors[ev.Type]; !ok {
		return Event{}, ErrInvalidType
	}
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return Event{}, ErrNoTitle
	}
	if ev.ID == "" {
		ev.ID = s.newID()
	}
	if ev.Color == "" {
		ev.Color = typeColors[ev.Type]
	}
	ev.Date = dayKey(day)
	ev = ev.clone()

	err := s.write(ctx, func(m map[int][]Event) bool {
		m[day] = append(m[day], ev)
		return true
	})
	if err != nil {
		return Event{}, err
	}
	s.log.Info("calendar event added", "day", day, "event_id", ev.ID, "type", string(ev.Type))
	return ev.clone(), nil
}

// DeleteEvent removes the event id from day. Unknown ids are a no-op and
// report false without touching the slot.
func (s *Service) DeleteEvent(ctx context.Context, day int, id string) (bool, error) {
	if day < 1 || day > 31 {
		return false, ErrInvalidDay
	}
	removed := false
	err := s.write(ctx, func(m map[int][]Event) bool {
		removed = false
		list := m[day]
		for i := range list {
			if list[i].ID == id {
				list = append(list[:i:i], list[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			return false
		}
		if len(list) == 0 {
			delete(m, day)
		} else {
			m[day] = list
		}
		return true
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// MonthGrid lays out the month the way a Sunday-first calendar does, with
// event counts per day.
func (s *Service) MonthGrid(year int, month time.Month) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())

	s.mu.RLock()
	defer s.mu.RUnlock()

	cells := make([]Cell, 0, lead+days)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{})
	}
	for d := 1; d <= days; d++ {
		cells = append(cells, Cell{Day: d, Events: len(s.events[d])})
	}
	return cells
}

// write runs mutate against the events currently in the slot, so writers in
// other processes are not clobbered, and swaps the result in once the slot
// update commits. mutate returns false to skip the write.
func (s *Service) write(ctx context.Context, mutate func(map[int][]Event) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next map[int][]Event
	skipped := false
	_, err := s.kv.Update(ctx, SlotKey, func(cur []byte, found bool) ([]byte, error) {
		skipped = false
		next = cloneEvents(s.events)
		if found {
			stored, err := decode(cur)
			switch {
			case err == nil:
				next = stored
			case errors.Is(err, ErrCorrupt):
				// Overwrite the bad slot with what this process holds.
				metrics.RecordPersistenceError(SlotKey)
				s.log.Warn("calendar slot corrupt, replacing", "error", err)
			default:
				return nil, err
			}
		}
		if !mutate(next) {
			skipped = true
			return nil, errSkip
		}
		return encode(next)
	})
	if skipped {
		return nil
	}
	if err != nil {
		metrics.RecordPersistenceError(SlotKey)
		s.log.Error("calendar write failed", "error", err)
		return fmt.Errorf("calendar: write slot: %w", err)
	}
	s.events = next
	return nil
}

func (s *Service) replace(events map[int][]Event) {
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
}

func encode(events map[int][]Event) ([]byte, error) {
	out := make(map[string][]Event, len(events))
	for day, list := range events {
		out[dayKey(day)] = list
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("calendar: encode: %w", err)
	}
	return b, nil
}

func decode(raw []byte) (map[int][]Event, error) {
	var byKey map[string][]Event
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	out := make(map[int][]Event, len(byKey))
	for k, list := range byKey {
		day, err := strconv.Atoi(k)
		if err != nil || dayKey(day) != k || day < 1 || day > 31 {
			return nil, fmt.Errorf("%w: bad day key %q", ErrCorrupt, k)
		}
		out[day] = list
	}
	return out, nil
}

func dayKey(day int) string {
	return strconv.Itoa(day)
}

func cloneEvents(in map[int][]Event) map[int][]Event {
	out := make(map[int][]Event, len(in))
	for day, list := range in {
		cp := make([]Event, len(list))
		for i, e := range list {
			cp[i] = e.clone()
		}
		out[day] = cp
	}
	return out
}

// Days returns the days that have events, ascending.
func Days(events map[int][]Event) []int {
	days := make([]int, 0, len(events))
	for d := range events {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}
