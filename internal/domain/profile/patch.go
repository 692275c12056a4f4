package profile

import "time"

// Patch - частичное обновление профиля. Применяются только ненулевые поля,
// остальные остаются нетронутыми.
type Patch struct {
	Name  *string
	Email *string

	TotalPoints      *int
	DailyPoints      *int
	DailyStudyPoints *int

	Streak         *int
	LastActiveDate *time.Time
	DailyGoal      *int

	// CheckIns сливается с LastCheckInDates по ключам (как точечное
	// обновление поля документа), а не заменяет всю карту.
	CheckIns map[string]string

	Schedule          *[]ClassSlot
	TotalSessions     *int
	StudyLog          *[]StudySession
	SyncHistory       *[]SyncEvent
	RedemptionHistory *[]Redemption
}

// IsEmpty возвращает true, если патч ничего не меняет.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil &&
		p.TotalPoints == nil && p.DailyPoints == nil && p.DailyStudyPoints == nil &&
		p.Streak == nil && p.LastActiveDate == nil && p.DailyGoal == nil &&
		len(p.CheckIns) == 0 && p.Schedule == nil && p.TotalSessions == nil &&
		p.StudyLog == nil && p.SyncHistory == nil && p.RedemptionHistory == nil
}

// ApplyTo применяет патч к профилю на месте.
func (p Patch) ApplyTo(u *UserProfile) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.TotalPoints != nil {
		u.TotalPoints = *p.TotalPoints
	}
	if p.DailyPoints != nil {
		u.DailyPoints = *p.DailyPoints
	}
	if p.DailyStudyPoints != nil {
		u.DailyStudyPoints = *p.DailyStudyPoints
	}
	if p.Streak != nil {
		u.Streak = *p.Streak
	}
	if p.LastActiveDate != nil {
		u.LastActiveDate = *p.LastActiveDate
	}
	if p.DailyGoal != nil {
		u.DailyGoal = *p.DailyGoal
	}
	if len(p.CheckIns) > 0 {
		if u.LastCheckInDates == nil {
			u.LastCheckInDates = make(map[string]string, len(p.CheckIns))
		}
		for k, v := range p.CheckIns {
			u.LastCheckInDates[k] = v
		}
	}
	if p.Schedule != nil {
		u.Schedule = cloneSchedule(*p.Schedule)
	}
	if p.TotalSessions != nil {
		u.TotalSessions = *p.TotalSessions
	}
	if p.StudyLog != nil {
		u.StudyLog = append([]StudySession{}, *p.StudyLog...)
	}
	if p.SyncHistory != nil {
		u.SyncHistory = append([]SyncEvent{}, *p.SyncHistory...)
	}
	if p.RedemptionHistory != nil {
		u.RedemptionHistory = append([]Redemption{}, *p.RedemptionHistory...)
	}
}

func cloneSchedule(in []ClassSlot) []ClassSlot {
	out := make([]ClassSlot, len(in))
	for i, c := range in {
		out[i] = c.clone()
	}
	return out
}

// Ptr возвращает указатель на значение. Удобно для сборки Patch.
func Ptr[T any](v T) *T {
	return &v
}
