package social

import "github.com/sync-campus/sync-hub/internal/domain/profile"

// ══════════════════════════════════════════════════════════════════════════════
// DISCOVERY
// ══════════════════════════════════════════════════════════════════════════════

// Candidate - найденный кандидат в напарники с предложенными общими занятиями.
// Предложение не окончательное: пользователь может изменить набор перед
// подтверждением синхронизации.
type Candidate struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Username         string   `json:"username"`
	Initials         string   `json:"initials"`
	SuggestedClasses []string `json:"suggestedClasses"`
	AlreadyLinked    bool     `json:"alreadyLinked"`
}

// SuggestSharedClasses возвращает пересечение имён занятий двух расписаний
// в порядке расписания вызывающего пользователя.
func SuggestSharedClasses(mine, theirs []profile.ClassSlot) []string {
	names := make(map[string]struct{}, len(theirs))
	for _, c := range theirs {
		names[c.Name] = struct{}{}
	}

	out := make([]string, 0)
	for _, c := range mine {
		if _, ok := names[c.Name]; ok {
			out = append(out, c.Name)
		}
	}
	return Distinct(out)
}

// Discover строит кандидата для владельца.
func Discover(owner, target *profile.UserProfile) Candidate {
	return Candidate{
		ID:               target.ID,
		Name:             target.Name,
		Username:         target.Username,
		Initials:         target.Initials(),
		SuggestedClasses: SuggestSharedClasses(owner.Schedule, target.Schedule),
		AlreadyLinked:    IsLinked(owner.Buddies, target.ID),
	}
}
