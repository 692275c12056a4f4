package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

func TestCatalog(t *testing.T) {
	items := Catalog()
	require.Len(t, items, 4)
	assert.Equal(t, "Sync Sticker", items[0].Name)
	assert.Equal(t, 300, items[3].Cost)

	items[0].Cost = 1
	assert.Equal(t, 100, Catalog()[0].Cost)
}

func TestFind(t *testing.T) {
	r, err := Find("r3")
	require.NoError(t, err)
	assert.Equal(t, "Soft Serve", r.Name)
	assert.Equal(t, 250, r.Cost)

	_, err = Find("r99")
	assert.ErrorIs(t, err, shared.ErrUnknownReward)
}

func TestCheckRedemption(t *testing.T) {
	assert.NoError(t, CheckRedemption("Small Fries", 300, 300))
	assert.ErrorIs(t, CheckRedemption("Small Fries", 300, 250), shared.ErrInsufficientPoints)
	assert.ErrorIs(t, CheckRedemption("Free", 0, 250), shared.ErrInvalidCost)
	assert.ErrorIs(t, CheckRedemption("Refund", -50, 250), shared.ErrInvalidCost)
	assert.ErrorIs(t, CheckRedemption("", 100, 250), shared.ErrEmptyRewardName)
}
