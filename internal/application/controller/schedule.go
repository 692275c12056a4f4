package controller

import (
	"context"
	"sort"
	"strings"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/pkg/logger"
	"github.com/sync-campus/sync-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE
// Class name is the natural key of a schedule.
// ══════════════════════════════════════════════════════════════════════════════

// AddClass appends a class. A class with the same name is rejected with
// shared.ErrDuplicateClass.
func (c *ProfileController) AddClass(ctx context.Context, slot profile.ClassSlot) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	slot = normalizeSlot(slot)
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	if _, _, exists := p.FindClass(slot.Name); exists {
		return nil, shared.ErrDuplicateClass
	}

	schedule := append(append([]profile.ClassSlot{}, p.Schedule...), slot)
	if err := c.commit(ctx, "AddClass", profile.Patch{Schedule: &schedule}); err != nil {
		return nil, err
	}

	c.log.Debug("class added", logger.UserID(p.ID), logger.ClassName(slot.Name))
	return c.snapshot(), nil
}

// EditClass replaces the class named oldName. Renaming onto another existing
// class is rejected. A check-in recorded under the old name carries over to
// the new one so the class cannot be credited twice on the same day.
func (c *ProfileController) EditClass(ctx context.Context, oldName string, slot profile.ClassSlot) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	_, idx, ok := p.FindClass(oldName)
	if !ok {
		return nil, shared.ErrClassNotFound
	}

	slot = normalizeSlot(slot)
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	patch := profile.Patch{}
	if slot.Name != oldName {
		if _, _, exists := p.FindClass(slot.Name); exists {
			return nil, shared.ErrDuplicateClass
		}
		if last, ok := p.LastCheckInDates[oldName]; ok {
			patch.CheckIns = map[string]string{slot.Name: last}
		}
	}

	schedule := append([]profile.ClassSlot{}, p.Schedule...)
	schedule[idx] = slot
	patch.Schedule = &schedule

	if err := c.commit(ctx, "EditClass", patch); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

// RemoveClass removes a class from the schedule.
func (c *ProfileController) RemoveClass(ctx context.Context, name string) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	_, idx, ok := p.FindClass(name)
	if !ok {
		return nil, shared.ErrClassNotFound
	}

	schedule := make([]profile.ClassSlot, 0, len(p.Schedule)-1)
	schedule = append(schedule, p.Schedule[:idx]...)
	schedule = append(schedule, p.Schedule[idx+1:]...)

	if err := c.commit(ctx, "RemoveClass", profile.Patch{Schedule: &schedule}); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

// TodayClass is a class that meets today.
type TodayClass struct {
	Class     profile.ClassSlot `json:"class"`
	CheckedIn bool              `json:"checkedIn"`
}

// TodaysClasses lists the classes meeting on the clock's current weekday,
// ordered by start time, each flagged with today's check-in state.
func (c *ProfileController) TodaysClasses() []TodayClass {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	p := c.session.profile

	now := c.now().In(c.clock.Location())
	today := c.today()

	out := make([]TodayClass, 0, len(p.Schedule))
	for _, slot := range p.Schedule {
		if !slot.MeetsOn(now.Weekday()) {
			continue
		}
		out = append(out, TodayClass{
			Class:     slot,
			CheckedIn: p.CheckedInOn(slot.Name, today),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return startMinute(out[i].Class) < startMinute(out[j].Class)
	})
	return out
}

// startMinute returns minutes since midnight, or a large value when the
// start time is not parseable so such classes sort last.
func startMinute(slot profile.ClassSlot) int {
	h, m, err := timeutil.ParseClockTime(slot.StartTime)
	if err != nil {
		return 24 * 60
	}
	return h*60 + m
}

func normalizeSlot(slot profile.ClassSlot) profile.ClassSlot {
	slot.Name = strings.TrimSpace(slot.Name)
	slot.Location = strings.TrimSpace(slot.Location)
	slot.StartTime = strings.TrimSpace(slot.StartTime)
	slot.EndTime = strings.TrimSpace(slot.EndTime)

	seen := make(map[profile.Day]struct{}, len(slot.Days))
	days := make([]profile.Day, 0, len(slot.Days))
	for _, d := range slot.Days {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	slot.Days = days
	return slot
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

// UpdateDailyGoal sets the daily points target. Any positive value is accepted.
func (c *ProfileController) UpdateDailyGoal(ctx context.Context, goal int) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	if goal <= 0 {
		return nil, shared.ErrInvalidGoal
	}
	if err := c.commit(ctx, "UpdateDailyGoal", profile.Patch{DailyGoal: &goal}); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

// UpdateSettings changes the profile's contact email and display name.
// Login credentials are not affected.
func (c *ProfileController) UpdateSettings(ctx context.Context, email, name string) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrEmptyName
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, shared.ErrInvalidEmail
	}

	if err := c.commit(ctx, "UpdateSettings", profile.Patch{Email: &email, Name: &name}); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}
