package profile

import (
	"strings"
	"time"
	"unicode"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultDailyGoal - дневная цель по очкам для нового аккаунта.
	DefaultDailyGoal = 250

	// InitialStreak - серия нового аккаунта. Серия никогда не бывает меньше 1.
	InitialStreak = 1

	// MaxSyncHistory - сколько последних синхронизаций хранится в профиле.
	MaxSyncHistory = 5

	// DefaultDisplayName используется, когда внешний провайдер не вернул имя.
	DefaultDisplayName = "Sync User"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

// Day - день недели в расписании ("Mon", "Tue", ...).
type Day string

const (
	DayMon Day = "Mon"
	DayTue Day = "Tue"
	DayWed Day = "Wed"
	DayThu Day = "Thu"
	DayFri Day = "Fri"
	DaySat Day = "Sat"
	DaySun Day = "Sun"
)

var weekdayToDay = map[time.Weekday]Day{
	time.Monday:    DayMon,
	time.Tuesday:   DayTue,
	time.Wednesday: DayWed,
	time.Thursday:  DayThu,
	time.Friday:    DayFri,
	time.Saturday:  DaySat,
	time.Sunday:    DaySun,
}

// DayOf переводит time.Weekday в Day.
func DayOf(w time.Weekday) Day {
	return weekdayToDay[w]
}

// IsValid проверяет, что день известен.
func (d Day) IsValid() bool {
	switch d {
	case DayMon, DayTue, DayWed, DayThu, DayFri, DaySat, DaySun:
		return true
	default:
		return false
	}
}

// ClassSlot - занятие в расписании. Name - естественный ключ внутри расписания.
type ClassSlot struct {
	Name      string `json:"className"`
	Location  string `json:"location,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Days      []Day  `json:"days"`
}

// Validate проверяет занятие перед добавлением в расписание.
func (c ClassSlot) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.ErrInvalidClassName
	}
	for _, d := range c.Days {
		if !d.IsValid() {
			return shared.ErrInvalidWeekday
		}
	}
	return nil
}

// MeetsOn возвращает true, если занятие проходит в указанный день недели.
func (c ClassSlot) MeetsOn(w time.Weekday) bool {
	day := DayOf(w)
	for _, d := range c.Days {
		if d == day {
			return true
		}
	}
	return false
}

func (c ClassSlot) clone() ClassSlot {
	c.Days = append([]Day(nil), c.Days...)
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY RECORDS
// ══════════════════════════════════════════════════════════════════════════════

// StudySession - запись об учебной сессии.
type StudySession struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration"`
	PointsEarned    int       `json:"pointsEarned"`
	BuddiesInvolved []string  `json:"buddiesInvolved"`
}

// SyncEvent - запись о синхронизации с напарником.
type SyncEvent struct {
	ID        string    `json:"id"`
	BuddyName string    `json:"name"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// Redemption - запись об обмене очков на награду.
type Redemption struct {
	ID         string    `json:"id"`
	RewardName string    `json:"rewardName"`
	Cost       int       `json:"cost"`
	Timestamp  time.Time `json:"timestamp"`
}

// BuddyLink - снимок данных напарника на момент синхронизации.
// Хранится как дочерняя коллекция профиля с ключом (ownerID, BuddyID).
type BuddyLink struct {
	BuddyID       string   `json:"id"`
	Name          string   `json:"name"`
	Username      string   `json:"username"`
	SharedClasses []string `json:"sharedClasses"`
}

func (b BuddyLink) clone() BuddyLink {
	b.SharedClasses = append([]string(nil), b.SharedClasses...)
	return b
}

// ══════════════════════════════════════════════════════════════════════════════
// USER PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// UserProfile - документ пользователя. Меняется только через ProfileController.
type UserProfile struct {
	ID       string `json:"uid"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`

	TotalPoints      int `json:"totalPoints"`
	DailyPoints      int `json:"dailyPoints"`
	DailyStudyPoints int `json:"dailyStudyPoints"`

	Streak         int       `json:"streak"`
	LastActiveDate time.Time `json:"lastActiveDate"`
	DailyGoal      int       `json:"dailyGoal"`

	// LastCheckInDates: имя занятия -> дата последней отметки (YYYY-MM-DD).
	LastCheckInDates map[string]string `json:"lastCheckInDates"`
	Schedule         []ClassSlot       `json:"schedule"`

	TotalSessions     int            `json:"totalSessions"`
	StudyLog          []StudySession `json:"studyLog"`
	SyncHistory       []SyncEvent    `json:"syncHistory"`
	RedemptionHistory []Redemption   `json:"redemptionHistory"`

	// Buddies хранятся отдельно и подмешиваются при загрузке сессии.
	Buddies []BuddyLink `json:"buddies"`
}

// NewUserProfileParams - параметры для создания профиля.
type NewUserProfileParams struct {
	ID       string
	Username string
	Name     string
	Email    string
	Now      time.Time

	// DailyGoal - цель на день; 0 означает DefaultDailyGoal.
	DailyGoal int
}

// NewUserProfile создаёт профиль с обнулёнными счётчиками.
func NewUserProfile(params NewUserProfileParams) (*UserProfile, error) {
	if !shared.UserID(params.ID).IsValid() {
		return nil, shared.NewDomainError("profile", "Create", shared.ErrInvalidID, "user id is required")
	}
	username, err := shared.NewUsername(params.Username)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = DefaultDisplayName
	}

	goal := params.DailyGoal
	if goal <= 0 {
		goal = DefaultDailyGoal
	}

	return &UserProfile{
		ID:                params.ID,
		Username:          username.String(),
		Name:              name,
		Email:             strings.TrimSpace(params.Email),
		Streak:            InitialStreak,
		LastActiveDate:    params.Now,
		DailyGoal:         goal,
		LastCheckInDates:  map[string]string{},
		Schedule:          []ClassSlot{},
		StudyLog:          []StudySession{},
		SyncHistory:       []SyncEvent{},
		RedemptionHistory: []Redemption{},
		Buddies:           []BuddyLink{},
	}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// FindClass ищет занятие по имени.
func (p *UserProfile) FindClass(name string) (ClassSlot, int, bool) {
	for i, c := range p.Schedule {
		if c.Name == name {
			return c, i, true
		}
	}
	return ClassSlot{}, -1, false
}

// CheckedInOn возвращает true, если по занятию уже была отметка в этот день.
func (p *UserProfile) CheckedInOn(className, dayKey string) bool {
	return p.LastCheckInDates[className] == dayKey
}

// Initials возвращает инициалы для аватара: первые буквы первого и последнего
// слова, либо первые две буквы единственного слова. "??" для пустого имени.
func (p *UserProfile) Initials() string {
	parts := strings.Fields(p.Name)
	switch len(parts) {
	case 0:
		return "??"
	case 1:
		r := []rune(parts[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	default:
		first := []rune(parts[0])[0]
		last := []rune(parts[len(parts)-1])[0]
		return string([]rune{unicode.ToUpper(first), unicode.ToUpper(last)})
	}
}

// GoalProgress возвращает долю выполнения дневной цели в диапазоне [0, 1].
func (p *UserProfile) GoalProgress() float64 {
	if p.DailyGoal <= 0 || p.DailyPoints <= 0 {
		return 0
	}
	ratio := float64(p.DailyPoints) / float64(p.DailyGoal)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Clone возвращает глубокую копию профиля.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p

	c.LastCheckInDates = make(map[string]string, len(p.LastCheckInDates))
	for k, v := range p.LastCheckInDates {
		c.LastCheckInDates[k] = v
	}

	c.Schedule = make([]ClassSlot, len(p.Schedule))
	for i, s := range p.Schedule {
		c.Schedule[i] = s.clone()
	}

	c.StudyLog = make([]StudySession, len(p.StudyLog))
	for i, s := range p.StudyLog {
		s.BuddiesInvolved = append([]string(nil), s.BuddiesInvolved...)
		c.StudyLog[i] = s
	}

	c.SyncHistory = append([]SyncEvent{}, p.SyncHistory...)
	c.RedemptionHistory = append([]Redemption{}, p.RedemptionHistory...)
	c.Buddies = CloneBuddies(p.Buddies)

	return &c
}

// CloneBuddies возвращает глубокую копию списка напарников.
func CloneBuddies(in []BuddyLink) []BuddyLink {
	out := make([]BuddyLink, len(in))
	for i, b := range in {
		out[i] = b.clone()
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// History helpers
// ──────────────────────────────────────────────────────────────────────────────

// PrependSync добавляет событие в начало истории и обрезает её до MaxSyncHistory.
func PrependSync(history []SyncEvent, ev SyncEvent) []SyncEvent {
	out := make([]SyncEvent, 0, MaxSyncHistory)
	out = append(out, ev)
	for _, h := range history {
		if len(out) == MaxSyncHistory {
			break
		}
		out = append(out, h)
	}
	return out
}

// PrependSession добавляет сессию в начало журнала. Журнал не ограничен.
func PrependSession(log []StudySession, s StudySession) []StudySession {
	out := make([]StudySession, 0, len(log)+1)
	out = append(out, s)
	return append(out, log...)
}

// PrependRedemption добавляет обмен в начало истории. История не ограничена.
func PrependRedemption(history []Redemption, r Redemption) []Redemption {
	out := make([]Redemption, 0, len(history)+1)
	out = append(out, r)
	return append(out, history...)
}
