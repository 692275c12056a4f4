// Package social содержит граф напарников пользователя.
// Связи односторонние: каждый пользователь хранит свой список напарников,
// и в этом списке не может быть двух записей с одним идентификатором.
package social

import (
	"strings"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LINK RULES
// ══════════════════════════════════════════════════════════════════════════════

// CheckSyncTarget проверяет, можно ли синхронизироваться с targetID.
// Вызывается непосредственно перед записью, а не только на уровне UI.
func CheckSyncTarget(ownerID, targetID string, existing []profile.BuddyLink) error {
	if ownerID == targetID {
		return shared.ErrSelfSync
	}
	if IsLinked(existing, targetID) {
		return shared.ErrDuplicateBuddy
	}
	return nil
}

// IsLinked возвращает true, если напарник уже есть в списке.
func IsLinked(buddies []profile.BuddyLink, buddyID string) bool {
	for _, b := range buddies {
		if b.BuddyID == buddyID {
			return true
		}
	}
	return false
}

// NewLink создаёт снимок имени и username напарника на момент синхронизации.
func NewLink(target *profile.UserProfile, sharedClasses []string) profile.BuddyLink {
	return profile.BuddyLink{
		BuddyID:       target.ID,
		Name:          target.Name,
		Username:      target.Username,
		SharedClasses: Distinct(sharedClasses),
	}
}

// Distinct убирает пустые и повторяющиеся значения, сохраняя порядок.
func Distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST OPERATIONS
// Все функции возвращают новый срез и не меняют входной.
// ══════════════════════════════════════════════════════════════════════════════

// Append добавляет связь в конец списка.
func Append(buddies []profile.BuddyLink, link profile.BuddyLink) []profile.BuddyLink {
	out := profile.CloneBuddies(buddies)
	return append(out, link)
}

// WithSharedClasses заменяет набор общих занятий у существующего напарника.
func WithSharedClasses(buddies []profile.BuddyLink, buddyID string, classes []string) ([]profile.BuddyLink, profile.BuddyLink, error) {
	out := profile.CloneBuddies(buddies)
	for i := range out {
		if out[i].BuddyID == buddyID {
			out[i].SharedClasses = Distinct(classes)
			return out, out[i], nil
		}
	}
	return nil, profile.BuddyLink{}, shared.ErrBuddyNotFound
}

// Without удаляет напарника из списка. Второе значение - был ли он там.
func Without(buddies []profile.BuddyLink, buddyID string) ([]profile.BuddyLink, bool) {
	out := make([]profile.BuddyLink, 0, len(buddies))
	found := false
	for _, b := range buddies {
		if b.BuddyID == buddyID {
			found = true
			continue
		}
		out = append(out, b)
	}
	return profile.CloneBuddies(out), found
}

// Dedupe оставляет первую запись для каждого идентификатора.
// Используется при слиянии дочерней коллекции в снимок профиля.
func Dedupe(buddies []profile.BuddyLink) []profile.BuddyLink {
	seen := make(map[string]struct{}, len(buddies))
	out := make([]profile.BuddyLink, 0, len(buddies))
	for _, b := range buddies {
		if _, dup := seen[b.BuddyID]; dup {
			continue
		}
		seen[b.BuddyID] = struct{}{}
		out = append(out, b)
	}
	return out
}
