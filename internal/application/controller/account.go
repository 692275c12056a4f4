package controller

import (
	"context"
	"strings"

	"github.com/sync-campus/sync-hub/internal/application/identity"
	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SIGN-UP
// Flow: Validate username → Create credentials → Create profile + username →
//
//	Load session
//
// A failed profile step deletes the credentials again (compensation).
// ══════════════════════════════════════════════════════════════════════════════

// SignupInput contains the data for credential sign-up.
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Username string
}

// Signup creates an account and signs it in.
func (c *ProfileController) Signup(ctx context.Context, in SignupInput) (*profile.UserProfile, error) {
	if c.auth == nil {
		return nil, shared.ErrNotSignedIn
	}
	if _, err := shared.NewUsername(in.Username); err != nil {
		return nil, err
	}

	// Fast rejection only; the reservation below is what guarantees uniqueness.
	available, err := c.directory.IsUsernameAvailable(ctx, in.Username)
	if err != nil {
		return nil, c.storeFailure("LookupUsername", "", err)
	}
	if !available {
		return nil, shared.ErrUsernameTaken
	}

	userID, err := c.auth.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	_, err = c.directory.CreateAccount(ctx, identity.CreateAccountInput{
		ID:       userID,
		Username: in.Username,
		Name:     in.Name,
		Email:    strings.TrimSpace(in.Email),
	})
	if err != nil {
		if delErr := c.auth.DeleteAccount(ctx, userID); delErr != nil {
			c.log.Error("credential rollback failed",
				logger.Bool("compensation_failed", true),
				logger.UserID(userID),
				logger.Username(in.Username),
				logger.Err(delErr),
			)
		}
		return nil, err
	}

	return c.Load(ctx, userID)
}

// Login checks credentials and loads the session.
func (c *ProfileController) Login(ctx context.Context, email, password string) (*profile.UserProfile, error) {
	if c.auth == nil {
		return nil, shared.ErrNotSignedIn
	}
	userID, err := c.auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.Load(ctx, userID)
}

// SignInExternal signs in a user asserted by a third-party provider,
// creating the profile on first sign-in.
func (c *ProfileController) SignInExternal(ctx context.Context, ext identity.ExternalIdentity) (*profile.UserProfile, error) {
	if !shared.UserID(ext.UserID).IsValid() {
		return nil, shared.NewDomainError("profile", "SignInExternal", shared.ErrInvalidID, "external user id is required")
	}

	_, err := c.store.GetProfile(ctx, ext.UserID)
	switch {
	case err == nil:
	case shared.IsNotFound(err):
		if _, err := c.directory.CreateExternalAccount(ctx, ext); err != nil {
			return nil, err
		}
	default:
		return nil, c.storeFailure("GetProfile", ext.UserID, err)
	}

	return c.Load(ctx, ext.UserID)
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETION
// ══════════════════════════════════════════════════════════════════════════════

// DeleteAccount removes the profile, its buddy records, its username and
// its credentials, then drops the session.
func (c *ProfileController) DeleteAccount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	p := c.session.profile

	if err := c.directory.DeleteAccount(ctx, p); err != nil {
		return c.storeFailure("DeleteAccount", p.ID, err)
	}
	if c.auth != nil {
		if err := c.auth.DeleteAccount(ctx, p.ID); err != nil {
			c.log.Error("credential deletion failed after profile removal",
				logger.Bool("compensation_failed", true),
				logger.UserID(p.ID),
				logger.Err(err),
			)
			c.session = nil
			return c.storeFailure("DeleteCredential", p.ID, err)
		}
	}

	c.log.Info("account deleted", logger.UserID(p.ID), logger.Username(p.Username))
	c.session = nil
	return nil
}
