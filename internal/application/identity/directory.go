// Package identity resolves human-entered identifiers to profiles and owns
// account creation against the username registry.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/pkg/logger"
	"github.com/sync-campus/sync-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT CREATION
// Flow: Validate → Reserve username → Create profile
//
// With a transactional store both writes commit together. Otherwise the
// reservation is compensated (released) when profile creation fails.
// ══════════════════════════════════════════════════════════════════════════════

// CreateAccountInput contains the data for a new profile.
type CreateAccountInput struct {
	// ID - stable account id issued by the auth provider (required).
	ID string

	// Username - requested username, any casing (required).
	Username string

	// Name - display name (optional, defaults to "Sync User").
	Name string

	// Email - contact email (optional).
	Email string
}

// Step names a stage of account creation. Used in logs.
type Step string

const (
	StepValidate        Step = "validate"
	StepReserveUsername Step = "reserve_username"
	StepCreateProfile   Step = "create_profile"
	StepCompensate      Step = "compensate"
)

// Directory is the identity directory.
type Directory struct {
	store     profile.Store
	clock     timeutil.Clock
	log       *logger.Logger
	dailyGoal int
}

// NewDirectory creates a Directory.
func NewDirectory(store profile.Store, clock timeutil.Clock, log *logger.Logger) *Directory {
	if log == nil {
		log = logger.Nop()
	}
	return &Directory{
		store: store,
		clock: clock,
		log:   log.With(logger.Component("identity")),
	}
}

// SetDefaultDailyGoal sets the daily goal given to new profiles.
// Non-positive values restore profile.DefaultDailyGoal.
func (d *Directory) SetDefaultDailyGoal(goal int) {
	d.dailyGoal = goal
}

// CreateAccount creates a profile and claims its username atomically.
// Returns shared.ErrUsernameTaken when the lowercase username is owned by
// another account.
func (d *Directory) CreateAccount(ctx context.Context, in CreateAccountInput) (*profile.UserProfile, error) {
	p, err := profile.NewUserProfile(profile.NewUserProfileParams{
		ID:        in.ID,
		Username:  in.Username,
		Name:      in.Name,
		Email:     in.Email,
		Now:       d.clock.Now(),
		DailyGoal: d.dailyGoal,
	})
	if err != nil {
		return nil, err
	}

	if tx, ok := d.store.(profile.Transactor); ok {
		err = tx.WithinTx(ctx, func(ctx context.Context, s profile.Store) error {
			if err := s.ReserveUsername(ctx, p.Username, p.ID); err != nil {
				return err
			}
			return s.CreateProfile(ctx, p)
		})
	} else {
		err = d.createWithCompensation(ctx, p)
	}
	if err != nil {
		if shared.IsStoreError(err) {
			d.log.Error("account creation failed",
				logger.UserID(p.ID),
				logger.Username(p.Username),
				logger.Err(err),
			)
		}
		return nil, err
	}

	d.log.Info("account created", logger.UserID(p.ID), logger.Username(p.Username))
	return p, nil
}

func (d *Directory) createWithCompensation(ctx context.Context, p *profile.UserProfile) error {
	if err := d.store.ReserveUsername(ctx, p.Username, p.ID); err != nil {
		return err
	}

	createErr := d.store.CreateProfile(ctx, p)
	if createErr == nil {
		return nil
	}

	if err := d.store.ReleaseUsername(ctx, p.Username); err != nil {
		d.log.Error("username reservation rollback failed",
			logger.Bool("compensation_failed", true),
			logger.String("step", string(StepCompensate)),
			logger.UserID(p.ID),
			logger.Username(p.Username),
			logger.String("create_error", createErr.Error()),
			logger.Err(err),
		)
	} else {
		d.log.Warn("username reservation rolled back",
			logger.String("step", string(StepCreateProfile)),
			logger.UserID(p.ID),
			logger.Username(p.Username),
			logger.Err(createErr),
		)
	}
	return createErr
}

// IsUsernameAvailable reports whether the username can be claimed by a new account.
func (d *Directory) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	u, err := shared.NewUsername(username)
	if err != nil {
		return false, err
	}
	_, err = d.store.LookupUsername(ctx, u.String())
	switch {
	case err == nil:
		return false, nil
	case shared.IsNotFound(err):
		return true, nil
	default:
		return false, err
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOLUTION
// ══════════════════════════════════════════════════════════════════════════════

// Resolve interprets identifier as an account id first, then as a username.
// A miss is reported as (nil, false, nil); only store failures are errors.
func (d *Directory) Resolve(ctx context.Context, identifier string) (*profile.UserProfile, bool, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, false, nil
	}

	p, err := d.snapshot(ctx, identifier)
	if err == nil {
		return p, true, nil
	}
	if !shared.IsNotFound(err) {
		return nil, false, err
	}

	id, err := d.store.LookupUsername(ctx, shared.NormalizeUsername(identifier).String())
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	p, err = d.snapshot(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			d.log.Warn("username points to missing profile",
				logger.Username(identifier),
				logger.UserID(id),
			)
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}

// snapshot reads a possibly cached profile. Resolve results are only shown,
// never written back.
func (d *Directory) snapshot(ctx context.Context, id string) (*profile.UserProfile, error) {
	if r, ok := d.store.(profile.SnapshotReader); ok {
		return r.GetProfileSnapshot(ctx, id)
	}
	return d.store.GetProfile(ctx, id)
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETION
// ══════════════════════════════════════════════════════════════════════════════

// DeleteAccount removes the profile, its buddy records and its username entry.
func (d *Directory) DeleteAccount(ctx context.Context, p *profile.UserProfile) error {
	if tx, ok := d.store.(profile.Transactor); ok {
		return tx.WithinTx(ctx, func(ctx context.Context, s profile.Store) error {
			if err := s.DeleteProfile(ctx, p.ID); err != nil {
				return err
			}
			return releaseOwned(ctx, s, p)
		})
	}

	if err := d.store.DeleteProfile(ctx, p.ID); err != nil {
		return err
	}
	if err := releaseOwned(ctx, d.store, p); err != nil {
		d.log.Error("username release after profile deletion failed",
			logger.Bool("compensation_failed", true),
			logger.UserID(p.ID),
			logger.Username(p.Username),
			logger.Err(err),
		)
		return err
	}
	return nil
}

// releaseOwned releases the username only while p still owns it.
func releaseOwned(ctx context.Context, s profile.Store, p *profile.UserProfile) error {
	owner, err := s.LookupUsername(ctx, p.Username)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	if owner != p.ID {
		return nil
	}
	return s.ReleaseUsername(ctx, p.Username)
}

// ══════════════════════════════════════════════════════════════════════════════
// THIRD-PARTY SIGN-IN
// ══════════════════════════════════════════════════════════════════════════════

// ExternalIdentity is a user asserted by a third-party sign-in provider.
type ExternalIdentity struct {
	UserID      string
	Email       string
	DisplayName string
}

// shortIDLength is the id prefix length used in generated usernames.
const shortIDLength = 5

// CandidateUsernames returns the usernames tried for a third-party account,
// in order: the sanitized email local part (or user_<id> when unusable),
// then the same with an _<id> suffix.
func CandidateUsernames(ext ExternalIdentity) []string {
	short := string(shared.SanitizeUsername(shared.UserID(ext.UserID).Short(shortIDLength)))

	local := ext.Email
	if i := strings.Index(local, "@"); i >= 0 {
		local = local[:i]
	}
	base := shared.SanitizeUsername(local)
	if !base.IsValid() {
		base = shared.Username("user_" + short)
	}

	suffix := "_" + short
	head := string(base)
	if len(head)+len(suffix) > shared.MaxUsernameLength {
		head = head[:shared.MaxUsernameLength-len(suffix)]
	}
	fallback := head + suffix

	if fallback == string(base) {
		return []string{string(base)}
	}
	return []string{string(base), fallback}
}

// CreateExternalAccount creates a profile for a third-party identity.
func (d *Directory) CreateExternalAccount(ctx context.Context, ext ExternalIdentity) (*profile.UserProfile, error) {
	var lastErr error
	for _, username := range CandidateUsernames(ext) {
		p, err := d.CreateAccount(ctx, CreateAccountInput{
			ID:       ext.UserID,
			Username: username,
			Name:     ext.DisplayName,
			Email:    ext.Email,
		})
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, shared.ErrUsernameTaken) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
