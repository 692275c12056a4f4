package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestProfile(t *testing.T) *UserProfile {
	t.Helper()
	p, err := NewUserProfile(NewUserProfileParams{
		ID:       "u1",
		Username: "JaneDoe",
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Now:      testNow,
	})
	require.NoError(t, err)
	return p
}

func TestNewUserProfile_Defaults(t *testing.T) {
	p := newTestProfile(t)

	assert.Equal(t, "janedoe", p.Username)
	assert.Equal(t, 0, p.TotalPoints)
	assert.Equal(t, 0, p.DailyPoints)
	assert.Equal(t, 0, p.DailyStudyPoints)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, 250, p.DailyGoal)
	assert.Empty(t, p.Schedule)
	assert.NotNil(t, p.LastCheckInDates)
	assert.True(t, testNow.Equal(p.LastActiveDate))
}

func TestNewUserProfile_Validation(t *testing.T) {
	_, err := NewUserProfile(NewUserProfileParams{ID: "", Username: "jane"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewUserProfile(NewUserProfileParams{ID: "u1", Username: "j!"})
	assert.ErrorIs(t, err, shared.ErrInvalidUsername)

	p, err := NewUserProfile(NewUserProfileParams{ID: "u1", Username: "jane"})
	require.NoError(t, err)
	assert.Equal(t, DefaultDisplayName, p.Name)
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Jane Doe":          "JD",
		"jane middle doe":   "JD",
		"Madonna":           "MA",
		"x":                 "X",
		"":                  "??",
		"   ":               "??",
		"élodie  marchand ": "ÉM",
	}
	for name, want := range cases {
		p := &UserProfile{Name: name}
		assert.Equal(t, want, p.Initials(), name)
	}
}

func TestGoalProgress(t *testing.T) {
	p := &UserProfile{DailyGoal: 200, DailyPoints: 50}
	assert.InDelta(t, 0.25, p.GoalProgress(), 1e-9)

	p.DailyPoints = 500
	assert.Equal(t, 1.0, p.GoalProgress())

	p.DailyGoal = 0
	assert.Equal(t, 0.0, p.GoalProgress())
}

func TestClassSlot_MeetsOn(t *testing.T) {
	c := ClassSlot{Name: "CS101", Days: []Day{DayMon, DayWed}}

	assert.True(t, c.MeetsOn(time.Monday))
	assert.True(t, c.MeetsOn(time.Wednesday))
	assert.False(t, c.MeetsOn(time.Sunday))
}

func TestClassSlot_Validate(t *testing.T) {
	assert.NoError(t, ClassSlot{Name: "CS101", Days: []Day{DayFri}}.Validate())
	assert.ErrorIs(t, ClassSlot{Name: " "}.Validate(), shared.ErrInvalidClassName)
	assert.ErrorIs(t, ClassSlot{Name: "CS101", Days: []Day{"Funday"}}.Validate(), shared.ErrInvalidWeekday)
}

func TestPrependSync_CapsAtFive(t *testing.T) {
	var history []SyncEvent
	for i := 1; i <= 6; i++ {
		history = PrependSync(history, SyncEvent{ID: string(rune('0' + i))})
	}

	require.Len(t, history, MaxSyncHistory)
	assert.Equal(t, "6", history[0].ID)
	assert.Equal(t, "2", history[4].ID)
}

func TestClone_IsDeep(t *testing.T) {
	p := newTestProfile(t)
	p.Schedule = []ClassSlot{{Name: "CS101", Days: []Day{DayMon}}}
	p.LastCheckInDates["CS101"] = "2026-10-16"
	p.Buddies = []BuddyLink{{BuddyID: "b1", SharedClasses: []string{"CS101"}}}

	c := p.Clone()
	c.Schedule[0].Days[0] = DayTue
	c.LastCheckInDates["CS101"] = "2026-10-15"
	c.Buddies[0].SharedClasses[0] = "MATH"

	assert.Equal(t, DayMon, p.Schedule[0].Days[0])
	assert.Equal(t, "2026-10-16", p.LastCheckInDates["CS101"])
	assert.Equal(t, "CS101", p.Buddies[0].SharedClasses[0])
}

func TestPatch_AppliesOnlyGivenFields(t *testing.T) {
	p := newTestProfile(t)
	p.TotalPoints = 120
	p.LastCheckInDates["MATH"] = "2026-10-15"

	patch := Patch{
		DailyPoints: Ptr(70),
		CheckIns:    map[string]string{"CS101": "2026-10-16"},
	}
	require.False(t, patch.IsEmpty())
	patch.ApplyTo(p)

	assert.Equal(t, 120, p.TotalPoints)
	assert.Equal(t, 70, p.DailyPoints)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, map[string]string{"MATH": "2026-10-15", "CS101": "2026-10-16"}, p.LastCheckInDates)

	assert.True(t, Patch{}.IsEmpty())
}
