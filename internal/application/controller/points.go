package controller

import (
	"context"

	"github.com/sync-campus/sync-hub/internal/domain/points"
	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/reward"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/internal/domain/social"
	"github.com/sync-campus/sync-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK-IN
// ══════════════════════════════════════════════════════════════════════════════

// CheckIn credits attendance for a scheduled class once per calendar day.
// A second check-in for the same class on the same day returns the
// unchanged state.
func (c *ProfileController) CheckIn(ctx context.Context, className string, buddyCount int) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	if _, _, ok := p.FindClass(className); !ok {
		return nil, shared.ErrClassNotFound
	}

	today := c.today()
	if p.CheckedInOn(className, today) {
		return c.snapshot(), nil
	}

	earned, err := points.CheckInPoints(buddyCount)
	if err != nil {
		return nil, err
	}

	patch := profile.Patch{
		TotalPoints: profile.Ptr(p.TotalPoints + earned),
		DailyPoints: profile.Ptr(p.DailyPoints + earned),
		CheckIns:    map[string]string{className: today},
	}
	if err := c.commit(ctx, "CheckIn", patch); err != nil {
		return nil, err
	}

	c.log.Info("checked in",
		logger.UserID(p.ID),
		logger.ClassName(className),
		logger.Points(earned),
	)
	return c.snapshot(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDY SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

// LogStudySession records a study session. Sessions are independent events
// and are never deduplicated. Non-positive durations are rejected with
// shared.ErrInvalidDuration and nothing is recorded.
func (c *ProfileController) LogStudySession(ctx context.Context, minutes int, buddyIDs []string) (*profile.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	p := c.session.profile

	buddyIDs = social.Distinct(buddyIDs)
	earned, err := points.StudySessionPoints(minutes, len(buddyIDs))
	if err != nil {
		return nil, err
	}

	session := profile.StudySession{
		ID:              c.ids.NewID(),
		Date:            c.now(),
		DurationMinutes: minutes,
		PointsEarned:    earned,
		BuddiesInvolved: buddyIDs,
	}
	patch := profile.Patch{
		TotalPoints:      profile.Ptr(p.TotalPoints + earned),
		DailyPoints:      profile.Ptr(p.DailyPoints + earned),
		DailyStudyPoints: profile.Ptr(p.DailyStudyPoints + earned),
		TotalSessions:    profile.Ptr(p.TotalSessions + 1),
		StudyLog:         profile.Ptr(profile.PrependSession(p.StudyLog, session)),
	}
	if err := c.commit(ctx, "LogStudySession", patch); err != nil {
		return nil, err
	}

	c.log.Info("study session logged",
		logger.UserID(p.ID),
		logger.Int("minutes", minutes),
		logger.Int("buddies", len(buddyIDs)),
		logger.Points(earned),
	)
	return c.snapshot(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REDEMPTION
// ══════════════════════════════════════════════════════════════════════════════

// RedeemReward exchanges points for a reward. Only totalPoints is reduced;
// daily counters are left alone. When the balance is too low it returns
// false with shared.ErrInsufficientPoints and changes nothing.
func (c *ProfileController) RedeemReward(ctx context.Context, rewardName string, cost int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return false, nil
	}
	p := c.session.profile

	if err := reward.CheckRedemption(rewardName, cost, p.TotalPoints); err != nil {
		return false, err
	}

	redemption := profile.Redemption{
		ID:         c.ids.NewID(),
		RewardName: rewardName,
		Cost:       cost,
		Timestamp:  c.now(),
	}
	patch := profile.Patch{
		TotalPoints:       profile.Ptr(p.TotalPoints - cost),
		RedemptionHistory: profile.Ptr(profile.PrependRedemption(p.RedemptionHistory, redemption)),
	}
	if err := c.commit(ctx, "RedeemReward", patch); err != nil {
		return false, err
	}

	c.log.Info("reward redeemed",
		logger.UserID(p.ID),
		logger.String("reward", rewardName),
		logger.Points(-cost),
	)
	return true, nil
}

// RedeemCatalogReward redeems a reward by its catalog id.
func (c *ProfileController) RedeemCatalogReward(ctx context.Context, rewardID string) (bool, error) {
	r, err := reward.Find(rewardID)
	if err != nil {
		return false, err
	}
	return c.RedeemReward(ctx, r.Name, r.Cost)
}
