// Package points содержит правила начисления очков.
// Чистые функции без I/O: только расчёт дельт.
package points

import "github.com/sync-campus/sync-hub/internal/domain/shared"

// ══════════════════════════════════════════════════════════════════════════════
// RULES
// ══════════════════════════════════════════════════════════════════════════════

const (
	// CheckInBase - базовые очки за отметку на занятии.
	CheckInBase = 50

	// BuddyBonus - бонус за каждого напарника (отметка и учебная сессия).
	BuddyBonus = 10

	// StudyBlockMinutes - длина учебного блока.
	StudyBlockMinutes = 30

	// StudyBlockPoints - очки за каждый полный учебный блок.
	StudyBlockPoints = 10

	// SyncReward - разовая награда за нового напарника.
	SyncReward = 50
)

// CheckInPoints = 50 + 10 × buddyCount.
func CheckInPoints(buddyCount int) (int, error) {
	if buddyCount < 0 {
		return 0, shared.ErrNegativeBuddyCount
	}
	return CheckInBase + BuddyBonus*buddyCount, nil
}

// StudySessionPoints = floor(minutes / 30) × 10 + 10 × buddyCount.
// Сессия короче 30 минут без напарников даёт 0 очков, но остаётся валидной.
// minutes ≤ 0 отклоняется: такую сессию записывать нельзя.
func StudySessionPoints(minutes, buddyCount int) (int, error) {
	if minutes <= 0 {
		return 0, shared.ErrInvalidDuration
	}
	if buddyCount < 0 {
		return 0, shared.ErrNegativeBuddyCount
	}
	return (minutes/StudyBlockMinutes)*StudyBlockPoints + BuddyBonus*buddyCount, nil
}

// SyncPoints - награда за новую связь с напарником.
// Повторная синхронизация с существующим напарником очков не даёт.
func SyncPoints() int {
	return SyncReward
}
