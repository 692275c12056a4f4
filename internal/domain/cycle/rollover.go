// Package cycle решает, начался ли новый календарный день для профиля,
// и вычисляет новую серию (streak).
//
// Сравнение идёт по календарным датам в локальной зоне, а не по
// прошедшему времени: 23:59 и 00:01 следующего дня - это разные дни.
package cycle

import (
	"time"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/pkg/timeutil"
)

// Outcome - результат проверки дня.
type Outcome string

const (
	// OutcomeSameDay - последняя активность сегодня, ничего не меняется.
	OutcomeSameDay Outcome = "same_day"
	// OutcomeContinued - последняя активность вчера, серия продолжается.
	OutcomeContinued Outcome = "continued"
	// OutcomeReset - пропуск в 2+ дня (или активности не было), серия сбрасывается.
	OutcomeReset Outcome = "reset"
)

// Decision - решение о смене дня.
type Decision struct {
	Outcome        Outcome
	Streak         int
	LastActiveDate time.Time
}

// RolledOver возвращает true, если нужно сбросить дневные счётчики.
func (d Decision) RolledOver() bool {
	return d.Outcome != OutcomeSameDay
}

// Patch возвращает изменения, которые нужно сохранить до того,
// как профиль будет отдан остальному приложению.
// Для OutcomeSameDay патч пустой.
func (d Decision) Patch() profile.Patch {
	if !d.RolledOver() {
		return profile.Patch{}
	}
	return profile.Patch{
		DailyPoints:      profile.Ptr(0),
		DailyStudyPoints: profile.Ptr(0),
		Streak:           profile.Ptr(d.Streak),
		LastActiveDate:   profile.Ptr(d.LastActiveDate),
	}
}

// Evaluate сравнивает lastActive с текущей датой часов.
//
//   - сегодня: без изменений;
//   - вчера: streak + 1, сброс дневных счётчиков, lastActive = now;
//   - раньше: streak = 1, сброс дневных счётчиков, lastActive = now.
//
// Нулевой lastActive считается отсутствием активности (сброс).
// lastActive в будущем (рассинхрон часов) считается сегодняшним днём.
func Evaluate(lastActive time.Time, streak int, clock timeutil.Clock) Decision {
	now := clock.Now()
	if streak < profile.InitialStreak {
		streak = profile.InitialStreak
	}

	if lastActive.IsZero() {
		return Decision{Outcome: OutcomeReset, Streak: profile.InitialStreak, LastActiveDate: now}
	}

	switch days := timeutil.DaysBetween(lastActive, now, clock.Location()); {
	case days <= 0:
		return Decision{Outcome: OutcomeSameDay, Streak: streak, LastActiveDate: lastActive}
	case days == 1:
		return Decision{Outcome: OutcomeContinued, Streak: streak + 1, LastActiveDate: now}
	default:
		return Decision{Outcome: OutcomeReset, Streak: profile.InitialStreak, LastActiveDate: now}
	}
}

// Apply применяет решение к профилю на месте.
func Apply(p *profile.UserProfile, d Decision) {
	d.Patch().ApplyTo(p)
}
