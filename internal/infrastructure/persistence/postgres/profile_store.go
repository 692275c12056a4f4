package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE STORE
// ══════════════════════════════════════════════════════════════════════════════

// ProfileStore implements profile.Store and profile.Transactor for PostgreSQL.
// Scalar profile fields are columns; schedule, history and check-in maps are
// JSONB documents.
type ProfileStore struct {
	conn *Connection
	q    Querier
	inTx bool
}

// NewProfileStore creates a ProfileStore bound to the connection pool.
func NewProfileStore(conn *Connection) *ProfileStore {
	return &ProfileStore{conn: conn, q: conn.Pool()}
}

var (
	_ profile.Store      = (*ProfileStore)(nil)
	_ profile.Transactor = (*ProfileStore)(nil)
)

const profileColumns = `
	id, username, name, email, total_points, daily_points, daily_study_points,
	streak, last_active_date, daily_goal, last_check_in_dates, schedule,
	total_sessions, study_log, sync_history, redemption_history`

// WithinTx runs fn with a store bound to one transaction. Nested calls reuse
// the outer transaction.
func (s *ProfileStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx profile.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	err := s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &ProfileStore{conn: s.conn, q: tx, inTx: true})
	})
	return shared.NewStoreError("WithinTx", err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Profiles
// ─────────────────────────────────────────────────────────────────────────────

// GetProfile loads a profile without its buddy collection.
func (s *ProfileStore) GetProfile(ctx context.Context, id string) (*profile.UserProfile, error) {
	row := s.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)

	p, err := scanProfile(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, shared.NewStoreError("GetProfile", err)
	}
	return p, nil
}

// CreateProfile inserts a new profile row.
func (s *ProfileStore) CreateProfile(ctx context.Context, p *profile.UserProfile) error {
	docs, err := marshalDocuments(p)
	if err != nil {
		return shared.NewStoreError("CreateProfile", err)
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		p.ID, p.Username, p.Name, p.Email,
		p.TotalPoints, p.DailyPoints, p.DailyStudyPoints,
		p.Streak, p.LastActiveDate, p.DailyGoal,
		docs.checkIns, docs.schedule,
		p.TotalSessions, docs.studyLog, docs.syncHistory, docs.redemptions,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrProfileExists
		}
		return shared.NewStoreError("CreateProfile", err)
	}
	return nil
}

// UpdateProfile writes only the fields set in patch.
func (s *ProfileStore) UpdateProfile(ctx context.Context, id string, patch profile.Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	query, args, err := buildUpdate(id, patch)
	if err != nil {
		return shared.NewStoreError("UpdateProfile", err)
	}

	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return shared.NewStoreError("UpdateProfile", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}
	return nil
}

// DeleteProfile removes the profile. Buddy rows cascade.
func (s *ProfileStore) DeleteProfile(ctx context.Context, id string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id); err != nil {
		return shared.NewStoreError("DeleteProfile", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Username registry
// ─────────────────────────────────────────────────────────────────────────────

// ReserveUsername claims usernameLower for id if it is free.
func (s *ProfileStore) ReserveUsername(ctx context.Context, usernameLower, id string) error {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO usernames (username_lower, user_id) VALUES ($1, $2)
		ON CONFLICT (username_lower) DO NOTHING
	`, usernameLower, id)
	if err != nil {
		return shared.NewStoreError("ReserveUsername", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	owner, err := s.LookupUsername(ctx, usernameLower)
	if err != nil {
		return err
	}
	if owner != id {
		return shared.ErrUsernameTaken
	}
	return nil
}

// ReleaseUsername frees usernameLower.
func (s *ProfileStore) ReleaseUsername(ctx context.Context, usernameLower string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM usernames WHERE username_lower = $1`, usernameLower); err != nil {
		return shared.NewStoreError("ReleaseUsername", err)
	}
	return nil
}

// LookupUsername returns the owner of usernameLower.
func (s *ProfileStore) LookupUsername(ctx context.Context, usernameLower string) (string, error) {
	var owner string
	err := s.q.QueryRow(ctx, `SELECT user_id FROM usernames WHERE username_lower = $1`, usernameLower).Scan(&owner)
	if err != nil {
		if IsNoRows(err) {
			return "", shared.ErrProfileNotFound
		}
		return "", shared.NewStoreError("LookupUsername", err)
	}
	return owner, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Buddies
// ─────────────────────────────────────────────────────────────────────────────

// ListBuddies returns the owner's buddies in link order.
func (s *ProfileStore) ListBuddies(ctx context.Context, ownerID string) ([]profile.BuddyLink, error) {
	rows, err := s.q.Query(ctx, `
		SELECT buddy_id, name, username, shared_classes
		FROM buddies
		WHERE owner_id = $1
		ORDER BY created_at, buddy_id
	`, ownerID)
	if err != nil {
		return nil, shared.NewStoreError("ListBuddies", err)
	}
	defer rows.Close()

	var links []profile.BuddyLink
	for rows.Next() {
		var (
			link    profile.BuddyLink
			classes []byte
		)
		if err := rows.Scan(&link.BuddyID, &link.Name, &link.Username, &classes); err != nil {
			return nil, shared.NewStoreError("ListBuddies", err)
		}
		if len(classes) > 0 {
			if err := json.Unmarshal(classes, &link.SharedClasses); err != nil {
				return nil, shared.NewStoreError("ListBuddies", err)
			}
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewStoreError("ListBuddies", err)
	}
	return links, nil
}

// PutBuddy inserts or replaces a buddy link, keeping its original position.
func (s *ProfileStore) PutBuddy(ctx context.Context, ownerID string, link profile.BuddyLink) error {
	classes, err := json.Marshal(nonNil(link.SharedClasses))
	if err != nil {
		return shared.NewStoreError("PutBuddy", err)
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO buddies (owner_id, buddy_id, name, username, shared_classes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, buddy_id) DO UPDATE SET
			name = EXCLUDED.name,
			username = EXCLUDED.username,
			shared_classes = EXCLUDED.shared_classes
	`, ownerID, link.BuddyID, link.Name, link.Username, classes)
	if err != nil {
		return shared.NewStoreError("PutBuddy", err)
	}
	return nil
}

// DeleteBuddy removes a buddy link.
func (s *ProfileStore) DeleteBuddy(ctx context.Context, ownerID, buddyID string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM buddies WHERE owner_id = $1 AND buddy_id = $2`, ownerID, buddyID); err != nil {
		return shared.NewStoreError("DeleteBuddy", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// buildUpdate renders the UPDATE statement for the fields set in patch.
// Check-ins are merged into the stored map with the jsonb || operator.
func buildUpdate(id string, patch profile.Patch) (string, []interface{}, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	setJSON := func(column string, value interface{}) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", column, err)
		}
		set(column, raw)
		return nil
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.TotalPoints != nil {
		set("total_points", *patch.TotalPoints)
	}
	if patch.DailyPoints != nil {
		set("daily_points", *patch.DailyPoints)
	}
	if patch.DailyStudyPoints != nil {
		set("daily_study_points", *patch.DailyStudyPoints)
	}
	if patch.Streak != nil {
		set("streak", *patch.Streak)
	}
	if patch.LastActiveDate != nil {
		set("last_active_date", *patch.LastActiveDate)
	}
	if patch.DailyGoal != nil {
		set("daily_goal", *patch.DailyGoal)
	}
	if len(patch.CheckIns) > 0 {
		raw, err := json.Marshal(patch.CheckIns)
		if err != nil {
			return "", nil, fmt.Errorf("marshal last_check_in_dates: %w", err)
		}
		args = append(args, raw)
		sets = append(sets, fmt.Sprintf("last_check_in_dates = last_check_in_dates || $%d::jsonb", len(args)))
	}
	if patch.Schedule != nil {
		if err := setJSON("schedule", nonNil(*patch.Schedule)); err != nil {
			return "", nil, err
		}
	}
	if patch.TotalSessions != nil {
		set("total_sessions", *patch.TotalSessions)
	}
	if patch.StudyLog != nil {
		if err := setJSON("study_log", nonNil(*patch.StudyLog)); err != nil {
			return "", nil, err
		}
	}
	if patch.SyncHistory != nil {
		if err := setJSON("sync_history", nonNil(*patch.SyncHistory)); err != nil {
			return "", nil, err
		}
	}
	if patch.RedemptionHistory != nil {
		if err := setJSON("redemption_history", nonNil(*patch.RedemptionHistory)); err != nil {
			return "", nil, err
		}
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

type profileDocuments struct {
	checkIns    []byte
	schedule    []byte
	studyLog    []byte
	syncHistory []byte
	redemptions []byte
}

func marshalDocuments(p *profile.UserProfile) (profileDocuments, error) {
	var (
		d   profileDocuments
		err error
	)
	checkIns := p.LastCheckInDates
	if checkIns == nil {
		checkIns = map[string]string{}
	}
	if d.checkIns, err = json.Marshal(checkIns); err != nil {
		return d, err
	}
	if d.schedule, err = json.Marshal(nonNil(p.Schedule)); err != nil {
		return d, err
	}
	if d.studyLog, err = json.Marshal(nonNil(p.StudyLog)); err != nil {
		return d, err
	}
	if d.syncHistory, err = json.Marshal(nonNil(p.SyncHistory)); err != nil {
		return d, err
	}
	if d.redemptions, err = json.Marshal(nonNil(p.RedemptionHistory)); err != nil {
		return d, err
	}
	return d, nil
}

// scanProfile scans a single profile from a row.
func scanProfile(row pgx.Row) (*profile.UserProfile, error) {
	var (
		p                                                      profile.UserProfile
		checkIns, schedule, studyLog, syncHistory, redemptions []byte
	)
	err := row.Scan(
		&p.ID, &p.Username, &p.Name, &p.Email,
		&p.TotalPoints, &p.DailyPoints, &p.DailyStudyPoints,
		&p.Streak, &p.LastActiveDate, &p.DailyGoal,
		&checkIns, &schedule,
		&p.TotalSessions, &studyLog, &syncHistory, &redemptions,
	)
	if err != nil {
		return nil, err
	}

	docs := []struct {
		raw []byte
		dst interface{}
	}{
		{checkIns, &p.LastCheckInDates},
		{schedule, &p.Schedule},
		{studyLog, &p.StudyLog},
		{syncHistory, &p.SyncHistory},
		{redemptions, &p.RedemptionHistory},
	}
	for _, d := range docs {
		if len(d.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("unmarshal profile %s: %w", p.ID, err)
		}
	}
	if p.LastCheckInDates == nil {
		p.LastCheckInDates = map[string]string{}
	}
	return &p, nil
}

// nonNil makes empty slices encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
