// Package controller contains ProfileController, the only component that
// reads and writes persisted profile state. It loads a user's snapshot,
// delegates decisions to the domain packages (points, cycle, social, reward)
// and writes the resulting deltas back before updating its local copy.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/sync-campus/sync-hub/internal/application/identity"
	"github.com/sync-campus/sync-hub/internal/domain/cycle"
	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/domain/social"
	"github.com/sync-campus/sync-hub/pkg/idgen"
	"github.com/sync-campus/sync-hub/pkg/logger"
	"github.com/sync-campus/sync-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// AuthProvider is the authentication collaborator.
type AuthProvider interface {
	// CurrentUserID returns the user authenticated for ctx.
	CurrentUserID(ctx context.Context) (string, bool)

	// CreateAccount registers credentials and returns the new account id.
	CreateAccount(ctx context.Context, email, password string) (string, error)

	// Authenticate checks credentials and returns the account id.
	Authenticate(ctx context.Context, email, password string) (string, error)

	// DeleteAccount removes the credentials of an account.
	DeleteAccount(ctx context.Context, userID string) error
}

// Dependencies groups the collaborators of ProfileController.
type Dependencies struct {
	Store     profile.Store
	Directory *identity.Directory
	Auth      AuthProvider
	Clock     timeutil.Clock
	IDs       idgen.Provider
	Logger    *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session is the signed-in user's context: who they are and the last
// snapshot acknowledged by the store.
type Session struct {
	UserID   string
	LoadedAt time.Time

	// Rollover is the daily cycle outcome computed when the session loaded.
	Rollover cycle.Outcome

	profile *profile.UserProfile
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE CONTROLLER
// ══════════════════════════════════════════════════════════════════════════════

// ProfileController orchestrates profile operations for one session.
//
// Operations are serialized: each one holds the controller lock until the
// store acknowledges its write, so writes issued sequentially by a caller are
// applied in order. Local state changes only after a successful write.
//
// Without a loaded session, state-returning operations return (nil, nil)
// and RedeemReward returns (false, nil).
type ProfileController struct {
	store     profile.Store
	directory *identity.Directory
	auth      AuthProvider
	clock     timeutil.Clock
	ids       idgen.Provider
	log       *logger.Logger

	mu      sync.Mutex
	session *Session
}

// New creates a ProfileController with no session.
func New(deps Dependencies) *ProfileController {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = timeutil.NewSystemClock(time.UTC)
	}
	ids := deps.IDs
	if ids == nil {
		ids = idgen.UUIDProvider{}
	}
	directory := deps.Directory
	if directory == nil {
		directory = identity.NewDirectory(deps.Store, clock, log)
	}

	return &ProfileController{
		store:     deps.Store,
		directory: directory,
		auth:      deps.Auth,
		clock:     clock,
		ids:       ids,
		log:       log.With(logger.Component("profile_controller")),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Session lifecycle
// ──────────────────────────────────────────────────────────────────────────────

// Load starts a session for userID. The daily rollover is evaluated here and,
// when a new day has started, persisted before the snapshot is served.
func (c *ProfileController) Load(ctx context.Context, userID string) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx, userID)
}

// Resume loads the session of the user authenticated for ctx.
func (c *ProfileController) Resume(ctx context.Context) (*profile.UserProfile, error) {
	if c.auth == nil {
		return nil, shared.ErrNotSignedIn
	}
	userID, ok := c.auth.CurrentUserID(ctx)
	if !ok {
		return nil, shared.ErrNotSignedIn
	}
	return c.Load(ctx, userID)
}

func (c *ProfileController) loadLocked(ctx context.Context, userID string) (*profile.UserProfile, error) {
	p, err := c.store.GetProfile(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, c.storeFailure("GetProfile", userID, err)
	}

	buddies, err := c.store.ListBuddies(ctx, userID)
	if err != nil {
		return nil, c.storeFailure("ListBuddies", userID, err)
	}
	p.Buddies = social.Dedupe(buddies)

	decision := cycle.Evaluate(p.LastActiveDate, p.Streak, c.clock)
	if decision.RolledOver() {
		if err := c.store.UpdateProfile(ctx, userID, decision.Patch()); err != nil {
			return nil, c.storeFailure("UpdateProfile", userID, err)
		}
		cycle.Apply(p, decision)
		c.log.Info("daily rollover",
			logger.UserID(userID),
			logger.String("outcome", string(decision.Outcome)),
			logger.Int("streak", decision.Streak),
		)
	}

	c.session = &Session{
		UserID:   userID,
		LoadedAt: c.clock.Now(),
		Rollover: decision.Outcome,
		profile:  p,
	}
	return p.Clone(), nil
}

// SignOut drops the session.
func (c *ProfileController) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}

// Current returns a copy of the session snapshot, or nil when signed out.
func (c *ProfileController) Current() *profile.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Session returns a copy of the session metadata, or nil when signed out.
func (c *ProfileController) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	s.profile = nil
	return &s
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers (caller holds c.mu)
// ──────────────────────────────────────────────────────────────────────────────

func (c *ProfileController) snapshot() *profile.UserProfile {
	if c.session == nil {
		return nil
	}
	return c.session.profile.Clone()
}

// commit writes patch and, once acknowledged, applies it to the local copy.
func (c *ProfileController) commit(ctx context.Context, op string, patch profile.Patch) error {
	if err := c.store.UpdateProfile(ctx, c.session.UserID, patch); err != nil {
		return c.storeFailure(op, c.session.UserID, err)
	}
	patch.ApplyTo(c.session.profile)
	return nil
}

// storeFailure logs a failed store call and returns it as a StoreError.
// Domain errors reported by the store pass through unchanged.
func (c *ProfileController) storeFailure(op, userID string, err error) error {
	err = shared.NewStoreError(op, err)
	if shared.IsStoreError(err) {
		c.log.Error("store operation failed",
			logger.Operation(op),
			logger.UserID(userID),
			logger.Err(err),
		)
	}
	return err
}

func (c *ProfileController) now() time.Time {
	return c.clock.Now()
}

func (c *ProfileController) today() string {
	return timeutil.Today(c.clock)
}
