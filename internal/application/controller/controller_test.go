package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sync-campus/sync-hub/internal/application/identity"
	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/infrastructure/auth"
	"github.com/sync-campus/sync-hub/internal/infrastructure/persistence/memory"
	"github.com/sync-campus/sync-hub/pkg/idgen"
	"github.com/sync-campus/sync-hub/pkg/logger"
	"github.com/sync-campus/sync-hub/pkg/timeutil"
)

// Friday, 16 October 2026.
var friday = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type harness struct {
	store profile.Store
	clock *timeutil.FixedClock
	auth  *auth.PasswordProvider
	dir   *identity.Directory
	logs  *bytes.Buffer
}

func newHarness(t *testing.T, store profile.Store) *harness {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelDebug})
	clock := timeutil.NewFixedClock(friday)

	return &harness{
		store: store,
		clock: clock,
		auth: auth.NewPasswordProvider(
			memory.NewCredentialStore(),
			auth.NewPasswordHasher(bcrypt.MinCost),
			idgen.NewSequence("user"),
		),
		dir:  identity.NewDirectory(store, clock, log),
		logs: &buf,
	}
}

func (h *harness) controller() *ProfileController {
	return New(Dependencies{
		Store:     h.store,
		Directory: h.dir,
		Auth:      h.auth,
		Clock:     h.clock,
		IDs:       idgen.NewSequence("rec"),
		Logger:    logger.New(logger.Options{Output: h.logs, Level: logger.LevelDebug}),
	})
}

// account creates a profile directly and returns a controller signed in as it.
func (h *harness) account(t *testing.T, id, username string) *ProfileController {
	t.Helper()
	_, err := h.dir.CreateAccount(context.Background(), identity.CreateAccountInput{
		ID: id, Username: username, Name: "User " + username,
	})
	require.NoError(t, err)

	c := h.controller()
	_, err = c.Load(context.Background(), id)
	require.NoError(t, err)
	return c
}

func withClass(t *testing.T, c *ProfileController, name string, days ...profile.Day) {
	t.Helper()
	_, err := c.AddClass(context.Background(), profile.ClassSlot{Name: name, StartTime: "09:00", EndTime: "10:00", Days: days})
	require.NoError(t, err)
}

// failingStore hides the Transactor capability and fails selected writes.
type failingStore struct {
	profile.Store
	failUpdate bool
}

var errUnavailable = errors.New("connection refused")

func (s *failingStore) UpdateProfile(ctx context.Context, id string, patch profile.Patch) error {
	if s.failUpdate {
		return shared.NewStoreError("UpdateProfile", errUnavailable)
	}
	return s.Store.UpdateProfile(ctx, id, patch)
}

// ══════════════════════════════════════════════════════════════════════════════
// Accounts
// ══════════════════════════════════════════════════════════════════════════════

func TestSignup_NewAccountDefaults(t *testing.T) {
	h := newHarness(t, nil)
	c := h.controller()

	p, err := c.Signup(context.Background(), SignupInput{
		Email: "jane@example.com", Password: "secret123", Name: "Jane Doe", Username: "JaneDoe",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, p.TotalPoints)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, 250, p.DailyGoal)
	assert.Empty(t, p.Schedule)
	assert.Equal(t, "janedoe", p.Username)
	assert.Equal(t, p.ID, c.Session().UserID)
}

func TestSignup_UsernameTakenCaseInsensitive(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.controller().Signup(ctx, SignupInput{Email: "a@example.com", Password: "secret123", Username: "JaneDoe"})
	require.NoError(t, err)

	c := h.controller()
	_, err = c.Signup(ctx, SignupInput{Email: "b@example.com", Password: "secret123", Username: "janedoe"})
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)
	assert.Nil(t, c.Current())
}

// racyStore reports every username as free, as if a concurrent signup
// claimed it between the availability check and the reservation.
type racyStore struct {
	profile.Store
}

func (racyStore) LookupUsername(context.Context, string) (string, error) {
	return "", shared.ErrProfileNotFound
}

func TestSignup_CompensatesCredentialsWhenReservationLoses(t *testing.T) {
	inner := memory.NewStore()
	require.NoError(t, inner.ReserveUsername(context.Background(), "janedoe", "someone-else"))
	h := newHarness(t, racyStore{Store: inner})
	ctx := context.Background()

	_, err := h.controller().Signup(ctx, SignupInput{Email: "b@example.com", Password: "secret123", Username: "JaneDoe"})
	require.ErrorIs(t, err, shared.ErrUsernameTaken)

	_, err = h.auth.Authenticate(ctx, "b@example.com", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials, "credentials must be rolled back")
}

func TestLoginAndSignOut(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.controller().Signup(ctx, SignupInput{Email: "jane@example.com", Password: "secret123", Username: "jane"})
	require.NoError(t, err)

	c := h.controller()
	_, err = c.Login(ctx, "jane@example.com", "nope-nope")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	p, err := c.Login(ctx, "JANE@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "jane", p.Username)

	c.SignOut()
	assert.Nil(t, c.Current())
	assert.Nil(t, c.Session())
}

func TestResume_UsesAuthenticatedUser(t *testing.T) {
	h := newHarness(t, nil)
	h.account(t, "u1", "jane")

	c := h.controller()
	_, err := c.Resume(context.Background())
	assert.ErrorIs(t, err, shared.ErrNotSignedIn)

	p, err := c.Resume(auth.WithUserID(context.Background(), "u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
}

func TestSignInExternal_CreatesOnceThenReuses(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ext := identity.ExternalIdentity{UserID: "g12345678", Email: "sam.lee@gmail.com"}

	first, err := h.controller().SignInExternal(ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, "samlee", first.Username)
	assert.Equal(t, "Sync User", first.Name)

	second, err := h.controller().SignInExternal(ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "samlee", second.Username)
}

func TestDeleteAccount_RemovesEverything(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.controller()
	p, err := c.Signup(ctx, SignupInput{Email: "jane@example.com", Password: "secret123", Username: "jane"})
	require.NoError(t, err)
	h.account(t, "b1", "buddy")
	_, err = c.PerformGroupSync(ctx, "b1", nil)
	require.NoError(t, err)

	require.NoError(t, c.DeleteAccount(ctx))
	assert.Nil(t, c.Current())

	_, err = h.store.GetProfile(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
	links, err := h.store.ListBuddies(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	_, err = h.store.LookupUsername(ctx, "jane")
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
	_, err = h.auth.Authenticate(ctx, "jane@example.com", "secret123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestNoSession_OperationsAreNoOps(t *testing.T) {
	h := newHarness(t, nil)
	c := h.controller()
	ctx := context.Background()

	p, err := c.CheckIn(ctx, "CS101", 0)
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = c.LogStudySession(ctx, 60, nil)
	assert.NoError(t, err)
	assert.Nil(t, p)

	ok, err := c.RedeemReward(ctx, "Sticker", 100)
	assert.NoError(t, err)
	assert.False(t, ok)

	p, err = c.PerformGroupSync(ctx, "b1", nil)
	assert.NoError(t, err)
	assert.Nil(t, p)

	assert.Nil(t, c.TodaysClasses())
	assert.NoError(t, c.DeleteAccount(ctx))
}

// ══════════════════════════════════════════════════════════════════════════════
// Daily cycle
// ══════════════════════════════════════════════════════════════════════════════

func TestLoad_RolloverIsPersistedBeforeServing(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")
	withClass(t, c, "CS101", profile.DayFri, profile.DaySat)

	_, err := c.CheckIn(ctx, "CS101", 0)
	require.NoError(t, err)

	h.clock.AddDays(1)
	p, err := h.controller().Load(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, p.Streak)
	assert.Equal(t, 0, p.DailyPoints)
	assert.Equal(t, 50, p.TotalPoints)

	stored, err := h.store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Streak)
	assert.Equal(t, 0, stored.DailyPoints)
	assert.True(t, h.clock.Now().Equal(stored.LastActiveDate))
}

func TestLoad_GapResetsStreak(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.account(t, "u1", "jane")
	require.NoError(t, h.store.UpdateProfile(ctx, "u1", profile.Patch{Streak: profile.Ptr(9), DailyStudyPoints: profile.Ptr(30)}))

	h.clock.AddDays(3)
	c := h.controller()
	p, err := c.Load(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, 0, p.DailyStudyPoints)
}

func TestLoad_RolloverWriteFailureServesNothing(t *testing.T) {
	inner := memory.NewStore()
	h := newHarness(t, inner)
	h.account(t, "u1", "jane")

	failing := &failingStore{Store: inner, failUpdate: true}
	h.clock.AddDays(1)
	c := New(Dependencies{Store: failing, Clock: h.clock, Logger: logger.Nop()})

	p, err := c.Load(context.Background(), "u1")
	assert.Nil(t, p)
	assert.True(t, shared.IsStoreError(err))
	assert.Nil(t, c.Current())
}

// ══════════════════════════════════════════════════════════════════════════════
// Check-in and study sessions
// ══════════════════════════════════════════════════════════════════════════════

func TestCheckIn_AwardsBaseAndBuddyBonus(t *testing.T) {
	h := newHarness(t, nil)
	c := h.account(t, "u1", "jane")
	withClass(t, c, "CS101", profile.DayFri)

	p, err := c.CheckIn(context.Background(), "CS101", 2)
	require.NoError(t, err)

	assert.Equal(t, 70, p.TotalPoints)
	assert.Equal(t, 70, p.DailyPoints)
	assert.Equal(t, "2026-10-16", p.LastCheckInDates["CS101"])
}

func TestCheckIn_IsIdempotentPerDay(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")
	withClass(t, c, "Physics", profile.DayFri)

	first, err := c.CheckIn(ctx, "Physics", 0)
	require.NoError(t, err)
	h.clock.Advance(6 * time.Hour)
	second, err := c.CheckIn(ctx, "Physics", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	stored, _ := h.store.GetProfile(ctx, "u1")
	assert.Equal(t, 50, stored.TotalPoints)
}

func TestCheckIn_Errors(t *testing.T) {
	h := newHarness(t, nil)
	c := h.account(t, "u1", "jane")
	withClass(t, c, "CS101", profile.DayFri)

	_, err := c.CheckIn(context.Background(), "Chemistry", 0)
	assert.ErrorIs(t, err, shared.ErrClassNotFound)

	_, err = c.CheckIn(context.Background(), "CS101", -1)
	assert.ErrorIs(t, err, shared.ErrNegativeBuddyCount)
	assert.Equal(t, 0, c.Current().TotalPoints)
}

func TestCheckIn_StoreFailureLeavesStateUnchanged(t *testing.T) {
	inner := memory.NewStore()
	h := newHarness(t, inner)
	ctx := context.Background()
	setup := h.account(t, "u1", "jane")
	withClass(t, setup, "CS101", profile.DayFri)

	failing := &failingStore{Store: inner}
	c := New(Dependencies{Store: failing, Clock: h.clock, Logger: logger.New(logger.Options{Output: h.logs})})
	_, err := c.Load(ctx, "u1")
	require.NoError(t, err)
	before := c.Current()

	failing.failUpdate = true
	_, err = c.CheckIn(ctx, "CS101", 1)

	require.Error(t, err)
	assert.True(t, shared.IsStoreError(err))
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, before, c.Current())
	assert.Contains(t, h.logs.String(), `"operation":"CheckIn"`)
}

func TestLogStudySession(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")

	p, err := c.LogStudySession(ctx, 45, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, p.TotalPoints)

	p, err = c.LogStudySession(ctx, 15, []string{})
	require.NoError(t, err)
	assert.Equal(t, 10, p.TotalPoints)
	assert.Equal(t, 2, p.TotalSessions)
	require.Len(t, p.StudyLog, 2)
	assert.Equal(t, 15, p.StudyLog[0].DurationMinutes)
	assert.Equal(t, 0, p.StudyLog[0].PointsEarned)
	assert.Equal(t, "rec-2", p.StudyLog[0].ID)

	p, err = c.LogStudySession(ctx, 60, []string{"b1", "b2", "b1"})
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalPoints)
	assert.Equal(t, 50, p.DailyPoints)
	assert.Equal(t, 50, p.DailyStudyPoints)
	assert.Equal(t, []string{"b1", "b2"}, p.StudyLog[0].BuddiesInvolved)
}

func TestLogStudySession_RejectsNonPositiveMinutes(t *testing.T) {
	h := newHarness(t, nil)
	c := h.account(t, "u1", "jane")

	_, err := c.LogStudySession(context.Background(), 0, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidDuration)

	p := c.Current()
	assert.Equal(t, 0, p.TotalSessions)
	assert.Empty(t, p.StudyLog)
}

// ══════════════════════════════════════════════════════════════════════════════
// Buddies
// ══════════════════════════════════════════════════════════════════════════════

func TestPerformGroupSync_DedupAwardsOnce(t *testing.T) {
	for name, wrap := range map[string]func(profile.Store) profile.Store{
		"transactional": func(s profile.Store) profile.Store { return s },
		"compensating":  func(s profile.Store) profile.Store { return &failingStore{Store: s} },
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, wrap(memory.NewStore()))
			ctx := context.Background()
			c := h.account(t, "u1", "jane")
			h.account(t, "b1", "sam")

			p, err := c.PerformGroupSync(ctx, "b1", []string{"CS101"})
			require.NoError(t, err)
			require.Len(t, p.Buddies, 1)
			assert.Equal(t, "sam", p.Buddies[0].Username)
			assert.Equal(t, "User sam", p.SyncHistory[0].BuddyName)

			_, err = c.PerformGroupSync(ctx, "b1", []string{"CS101"})
			assert.ErrorIs(t, err, shared.ErrDuplicateBuddy)

			p = c.Current()
			assert.Equal(t, 50, p.TotalPoints)
			assert.Equal(t, 50, p.DailyPoints)
			assert.Len(t, p.Buddies, 1)
		})
	}
}

func TestPerformGroupSync_DedupChecksStoreNotOnlySnapshot(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")
	h.account(t, "b1", "sam")

	// Another session on the same account already linked b1.
	require.NoError(t, h.store.PutBuddy(ctx, "u1", profile.BuddyLink{BuddyID: "b1"}))

	_, err := c.PerformGroupSync(ctx, "b1", nil)
	assert.ErrorIs(t, err, shared.ErrDuplicateBuddy)
	assert.Equal(t, 0, c.Current().TotalPoints)
}

func TestPerformGroupSync_Errors(t *testing.T) {
	h := newHarness(t, nil)
	c := h.account(t, "u1", "jane")

	_, err := c.PerformGroupSync(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, shared.ErrSelfSync)

	_, err = c.PerformGroupSync(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, shared.ErrBuddyNotFound)
}

func TestPerformGroupSync_FailedAwardRemovesLink(t *testing.T) {
	inner := memory.NewStore()
	h := newHarness(t, inner)
	ctx := context.Background()
	h.account(t, "u1", "jane")
	h.account(t, "b1", "sam")

	failing := &failingStore{Store: inner, failUpdate: false}
	c := New(Dependencies{Store: failing, Clock: h.clock, Logger: logger.Nop()})
	_, err := c.Load(ctx, "u1")
	require.NoError(t, err)

	failing.failUpdate = true
	_, err = c.PerformGroupSync(ctx, "b1", nil)
	require.True(t, shared.IsStoreError(err))

	links, _ := inner.ListBuddies(ctx, "u1")
	assert.Empty(t, links)
	assert.Empty(t, c.Current().Buddies)

	failing.failUpdate = false
	p, err := c.PerformGroupSync(ctx, "b1", nil)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalPoints)
}

func TestSyncHistory_KeepsNewestFive(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")

	for i := 1; i <= 6; i++ {
		id := fmt.Sprintf("b%d", i)
		h.account(t, id, fmt.Sprintf("buddy%d", i))
		_, err := c.PerformGroupSync(ctx, id, nil)
		require.NoError(t, err)
	}

	p := c.Current()
	require.Len(t, p.SyncHistory, 5)
	assert.Equal(t, "User buddy6", p.SyncHistory[0].BuddyName)
	assert.Equal(t, "User buddy2", p.SyncHistory[4].BuddyName)
	assert.Equal(t, 300, p.TotalPoints)
	assert.Len(t, p.Buddies, 6)
}

func TestBuddyMaintenance(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")
	h.account(t, "b1", "sam")
	_, err := c.PerformGroupSync(ctx, "b1", []string{"CS101"})
	require.NoError(t, err)

	p, err := c.UpdateBuddySharedClasses(ctx, "b1", []string{"ART", "MATH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ART", "MATH"}, p.Buddies[0].SharedClasses)
	assert.Equal(t, 50, p.TotalPoints)

	_, err = c.UpdateBuddySharedClasses(ctx, "ghost", nil)
	assert.ErrorIs(t, err, shared.ErrBuddyNotFound)

	p, err = c.RemoveBuddy(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, p.Buddies)
	assert.Equal(t, 50, p.TotalPoints, "sync points are not clawed back")

	_, err = c.RemoveBuddy(ctx, "b1")
	assert.ErrorIs(t, err, shared.ErrBuddyNotFound)

	reloaded, err := h.controller().Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, reloaded.Buddies)
}

func TestDiscoverBuddy(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")
	withClass(t, c, "CS101", profile.DayMon)
	withClass(t, c, "ART", profile.DayTue)

	other := h.account(t, "b1", "SamLee")
	withClass(t, other, "ART", profile.DayTue)

	cand, err := c.DiscoverBuddy(ctx, "SAMLEE")
	require.NoError(t, err)
	assert.Equal(t, "b1", cand.ID)
	assert.Equal(t, []string{"ART"}, cand.SuggestedClasses)
	assert.False(t, cand.AlreadyLinked)

	_, err = c.DiscoverBuddy(ctx, "jane")
	assert.ErrorIs(t, err, shared.ErrSelfSync)

	_, err = c.DiscoverBuddy(ctx, "nobody")
	assert.ErrorIs(t, err, shared.ErrBuddyNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// Rewards
// ══════════════════════════════════════════════════════════════════════════════

func TestRedeemReward_InsufficientPointsChangesNothing(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.account(t, "u1", "jane")
	require.NoError(t, h.store.UpdateProfile(ctx, "u1", profile.Patch{TotalPoints: profile.Ptr(250)}))
	c := h.controller()
	before, err := c.Load(ctx, "u1")
	require.NoError(t, err)

	ok, err := c.RedeemReward(ctx, "Small Fries", 300)
	assert.False(t, ok)
	assert.ErrorIs(t, err, shared.ErrInsufficientPoints)
	assert.Equal(t, before, c.Current())
}

func TestRedeemReward_DeductsTotalOnly(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.account(t, "u1", "jane")
	require.NoError(t, h.store.UpdateProfile(ctx, "u1", profile.Patch{
		TotalPoints: profile.Ptr(400),
		DailyPoints: profile.Ptr(120),
	}))
	c := h.controller()
	_, err := c.Load(ctx, "u1")
	require.NoError(t, err)

	ok, err := c.RedeemCatalogReward(ctx, "r4")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = c.RedeemReward(ctx, "Sync Sticker", 100)
	require.NoError(t, err)
	require.True(t, ok)

	p := c.Current()
	assert.Equal(t, 0, p.TotalPoints)
	assert.Equal(t, 120, p.DailyPoints)
	require.Len(t, p.RedemptionHistory, 2)
	assert.Equal(t, "Sync Sticker", p.RedemptionHistory[0].RewardName)
	assert.Equal(t, "Small Fries", p.RedemptionHistory[1].RewardName)

	ok, err = c.RedeemReward(ctx, "Sync Sticker", 100)
	assert.False(t, ok)
	assert.ErrorIs(t, err, shared.ErrInsufficientPoints)
	assert.Equal(t, 0, c.Current().TotalPoints)

	_, err = c.RedeemCatalogReward(ctx, "r42")
	assert.ErrorIs(t, err, shared.ErrUnknownReward)
}

// ══════════════════════════════════════════════════════════════════════════════
// Schedule and settings
// ══════════════════════════════════════════════════════════════════════════════

func TestSchedule_AddEditRemove(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")
	withClass(t, c, "CS101", profile.DayFri)
	withClass(t, c, "MATH", profile.DayMon)

	_, err := c.AddClass(ctx, profile.ClassSlot{Name: "CS101"})
	assert.ErrorIs(t, err, shared.ErrDuplicateClass)

	_, err = c.EditClass(ctx, "BIO", profile.ClassSlot{Name: "BIO2"})
	assert.ErrorIs(t, err, shared.ErrClassNotFound)

	_, err = c.EditClass(ctx, "CS101", profile.ClassSlot{Name: "MATH"})
	assert.ErrorIs(t, err, shared.ErrDuplicateClass)

	p, err := c.EditClass(ctx, "MATH", profile.ClassSlot{Name: "MATH", Location: "Room 4", Days: []profile.Day{profile.DayMon}})
	require.NoError(t, err)
	assert.Equal(t, "Room 4", p.Schedule[1].Location)

	p, err = c.RemoveClass(ctx, "CS101")
	require.NoError(t, err)
	require.Len(t, p.Schedule, 1)
	assert.Equal(t, "MATH", p.Schedule[0].Name)

	_, err = c.RemoveClass(ctx, "CS101")
	assert.ErrorIs(t, err, shared.ErrClassNotFound)
}

func TestEditClass_RenameKeepsTodaysCheckIn(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")
	withClass(t, c, "CS101", profile.DayFri)

	_, err := c.CheckIn(ctx, "CS101", 0)
	require.NoError(t, err)
	_, err = c.EditClass(ctx, "CS101", profile.ClassSlot{Name: "CS 101", Days: []profile.Day{profile.DayFri}})
	require.NoError(t, err)

	p, err := c.CheckIn(ctx, "CS 101", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalPoints)
}

func TestTodaysClasses(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")

	_, err := c.AddClass(ctx, profile.ClassSlot{Name: "Late", StartTime: "02:00 PM", Days: []profile.Day{profile.DayFri}})
	require.NoError(t, err)
	_, err = c.AddClass(ctx, profile.ClassSlot{Name: "Early", StartTime: "08:30", Days: []profile.Day{profile.DayFri, profile.DayMon}})
	require.NoError(t, err)
	_, err = c.AddClass(ctx, profile.ClassSlot{Name: "Monday", StartTime: "07:00", Days: []profile.Day{profile.DayMon}})
	require.NoError(t, err)
	_, err = c.CheckIn(ctx, "Late", 0)
	require.NoError(t, err)

	today := c.TodaysClasses()
	require.Len(t, today, 2)
	assert.Equal(t, "Early", today[0].Class.Name)
	assert.False(t, today[0].CheckedIn)
	assert.Equal(t, "Late", today[1].Class.Name)
	assert.True(t, today[1].CheckedIn)
}

func TestUpdateDailyGoalAndSettings(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.account(t, "u1", "jane")

	_, err := c.UpdateDailyGoal(ctx, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidGoal)

	p, err := c.UpdateDailyGoal(ctx, 10000)
	require.NoError(t, err)
	assert.Equal(t, 10000, p.DailyGoal)

	_, err = c.UpdateSettings(ctx, "jane@example.com", "  ")
	assert.ErrorIs(t, err, shared.ErrEmptyName)

	p, err = c.UpdateSettings(ctx, "jane@new.example", "Jane Q Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Q Doe", p.Name)
	assert.Equal(t, "JD", p.Initials())

	stored, _ := h.store.GetProfile(ctx, "u1")
	assert.Equal(t, "jane@new.example", stored.Email)
	assert.Equal(t, "jane", stored.Username)
}
