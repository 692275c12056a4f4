package controller

import (
	"context"

	"github.com/sync-campus/sync-hub/internal/domain/points"
	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/domain/social"
	"github.com/sync-campus/sync-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROUP SYNC
// Flow: Self check → Duplicate check (against the store) → Load target →
//
//	Put buddy link → Award points + history
//
// ══════════════════════════════════════════════════════════════════════════════

// PerformGroupSync links the target account as a buddy and awards the sync
// bonus once. Errors: shared.ErrSelfSync, shared.ErrDuplicateBuddy,
// shared.ErrBuddyNotFound.
//
// The duplicate check reads the buddy collection from the store right before
// the write. With a transactional store the check and both writes run in one
// transaction; otherwise a failed points write removes the new link again.
func (c *ProfileController) PerformGroupSync(ctx context.Context, targetID string, sharedClasses []string) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	if targetID == p.ID {
		return nil, shared.ErrSelfSync
	}

	var (
		link  profile.BuddyLink
		patch profile.Patch
	)
	build := func(target *profile.UserProfile) {
		link = social.NewLink(target, sharedClasses)
		event := profile.SyncEvent{
			ID:        c.ids.NewID(),
			BuddyName: target.Name,
			Points:    points.SyncPoints(),
			Timestamp: c.now(),
		}
		patch = profile.Patch{
			TotalPoints: profile.Ptr(p.TotalPoints + points.SyncPoints()),
			DailyPoints: profile.Ptr(p.DailyPoints + points.SyncPoints()),
			SyncHistory: profile.Ptr(profile.PrependSync(p.SyncHistory, event)),
		}
	}

	var err error
	if tx, ok := c.store.(profile.Transactor); ok {
		err = tx.WithinTx(ctx, func(ctx context.Context, s profile.Store) error {
			target, err := c.prepareSync(ctx, s, p.ID, targetID)
			if err != nil {
				return err
			}
			build(target)
			if err := s.PutBuddy(ctx, p.ID, link); err != nil {
				return err
			}
			return s.UpdateProfile(ctx, p.ID, patch)
		})
	} else {
		err = c.syncWithCompensation(ctx, p.ID, targetID, build, &link, &patch)
	}
	if err != nil {
		return nil, c.storeFailure("PerformGroupSync", p.ID, err)
	}

	patch.ApplyTo(p)
	p.Buddies = social.Append(p.Buddies, link)

	c.log.Info("buddy synced",
		logger.UserID(p.ID),
		logger.BuddyID(targetID),
		logger.Points(points.SyncPoints()),
	)
	return c.snapshot(), nil
}

// prepareSync runs the duplicate and existence checks against s.
func (c *ProfileController) prepareSync(ctx context.Context, s profile.Store, ownerID, targetID string) (*profile.UserProfile, error) {
	existing, err := s.ListBuddies(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := social.CheckSyncTarget(ownerID, targetID, existing); err != nil {
		return nil, err
	}

	target, err := s.GetProfile(ctx, targetID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrBuddyNotFound
		}
		return nil, err
	}
	return target, nil
}

func (c *ProfileController) syncWithCompensation(
	ctx context.Context,
	ownerID, targetID string,
	build func(*profile.UserProfile),
	link *profile.BuddyLink,
	patch *profile.Patch,
) error {
	target, err := c.prepareSync(ctx, c.store, ownerID, targetID)
	if err != nil {
		return err
	}
	build(target)

	if err := c.store.PutBuddy(ctx, ownerID, *link); err != nil {
		return err
	}

	updateErr := c.store.UpdateProfile(ctx, ownerID, *patch)
	if updateErr == nil {
		return nil
	}

	if err := c.store.DeleteBuddy(ctx, ownerID, targetID); err != nil {
		c.log.Error("buddy link rollback failed",
			logger.Bool("compensation_failed", true),
			logger.UserID(ownerID),
			logger.BuddyID(targetID),
			logger.Err(err),
		)
	}
	return updateErr
}

// ══════════════════════════════════════════════════════════════════════════════
// BUDDY MAINTENANCE
// ══════════════════════════════════════════════════════════════════════════════

// UpdateBuddySharedClasses replaces the shared-class set of an existing buddy.
// No points are awarded.
func (c *ProfileController) UpdateBuddySharedClasses(ctx context.Context, buddyID string, classNames []string) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	buddies, link, err := social.WithSharedClasses(p.Buddies, buddyID, classNames)
	if err != nil {
		return nil, err
	}
	if err := c.store.PutBuddy(ctx, p.ID, link); err != nil {
		return nil, c.storeFailure("PutBuddy", p.ID, err)
	}
	p.Buddies = buddies
	return c.snapshot(), nil
}

// RemoveBuddy deletes a buddy link. Points earned from the sync are kept.
func (c *ProfileController) RemoveBuddy(ctx context.Context, buddyID string) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	buddies, found := social.Without(p.Buddies, buddyID)
	if !found {
		return nil, shared.ErrBuddyNotFound
	}
	if err := c.store.DeleteBuddy(ctx, p.ID, buddyID); err != nil {
		return nil, c.storeFailure("DeleteBuddy", p.ID, err)
	}
	p.Buddies = buddies

	c.log.Info("buddy removed", logger.UserID(p.ID), logger.BuddyID(buddyID))
	return c.snapshot(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DISCOVERY
// ══════════════════════════════════════════════════════════════════════════════

// DiscoverBuddy resolves an id or username to a sync candidate with the
// classes both users take pre-selected.
func (c *ProfileController) DiscoverBuddy(ctx context.Context, identifier string) (*social.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	target, found, err := c.directory.Resolve(ctx, identifier)
	if err != nil {
		return nil, c.storeFailure("Resolve", p.ID, err)
	}
	if !found {
		return nil, shared.ErrBuddyNotFound
	}
	if target.ID == p.ID {
		return nil, shared.ErrSelfSync
	}

	candidate := social.Discover(p, target)
	return &candidate, nil
}
