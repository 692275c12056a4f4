package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
)

func TestBuildUpdate_OnlySetFields(t *testing.T) {
	query, args, err := buildUpdate("u1", profile.Patch{
		TotalPoints: profile.Ptr(70),
		DailyPoints: profile.Ptr(70),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE profiles SET total_points = $1, daily_points = $2, updated_at = NOW() WHERE id = $3",
		query)
	assert.Equal(t, []interface{}{70, 70, "u1"}, args)
}

func TestBuildUpdate_MergesCheckIns(t *testing.T) {
	query, args, err := buildUpdate("u1", profile.Patch{
		CheckIns: map[string]string{"CS101": "2026-10-16"},
	})
	require.NoError(t, err)

	assert.Contains(t, query, "last_check_in_dates = last_check_in_dates || $1::jsonb")
	require.Len(t, args, 2)
	assert.JSONEq(t, `{"CS101":"2026-10-16"}`, string(args[0].([]byte)))
}

func TestBuildUpdate_EmptyHistoryEncodesAsArray(t *testing.T) {
	empty := []profile.ClassSlot(nil)
	_, args, err := buildUpdate("u1", profile.Patch{Schedule: &empty})
	require.NoError(t, err)

	assert.Equal(t, "[]", string(args[0].([]byte)))
}

func TestGetMigrations_Ordered(t *testing.T) {
	migs := GetMigrations()
	require.NotEmpty(t, migs)
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
}
