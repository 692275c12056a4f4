package mongo

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/sync-campus/sync-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENTS
// Field names follow the camelCase layout of the profile JSON.
// ══════════════════════════════════════════════════════════════════════════════

type userDoc struct {
	ID                string            `bson:"_id"`
	Username          string            `bson:"username"`
	Name              string            `bson:"name"`
	Email             string            `bson:"email"`
	TotalPoints       int               `bson:"totalPoints"`
	DailyPoints       int               `bson:"dailyPoints"`
	DailyStudyPoints  int               `bson:"dailyStudyPoints"`
	Streak            int               `bson:"streak"`
	LastActiveDate    time.Time         `bson:"lastActiveDate"`
	DailyGoal         int               `bson:"dailyGoal"`
	LastCheckInDates  map[string]string `bson:"lastCheckInDates"`
	Schedule          []classDoc        `bson:"schedule"`
	TotalSessions     int               `bson:"totalSessions"`
	StudyLog          []sessionDoc      `bson:"studyLog"`
	SyncHistory       []syncDoc         `bson:"syncHistory"`
	RedemptionHistory []redemptionDoc   `bson:"redemptionHistory"`
}

type classDoc struct {
	Name      string   `bson:"className"`
	Location  string   `bson:"location"`
	StartTime string   `bson:"startTime"`
	EndTime   string   `bson:"endTime"`
	Days      []string `bson:"days"`
}

type sessionDoc struct {
	ID              string    `bson:"id"`
	Date            time.Time `bson:"date"`
	DurationMinutes int       `bson:"duration"`
	PointsEarned    int       `bson:"pointsEarned"`
	BuddiesInvolved []string  `bson:"buddiesInvolved"`
}

type syncDoc struct {
	ID        string    `bson:"id"`
	BuddyName string    `bson:"name"`
	Points    int       `bson:"points"`
	Timestamp time.Time `bson:"timestamp"`
}

type redemptionDoc struct {
	ID         string    `bson:"id"`
	RewardName string    `bson:"rewardName"`
	Cost       int       `bson:"cost"`
	Timestamp  time.Time `bson:"timestamp"`
}

type usernameDoc struct {
	Username string `bson:"_id"`
	UserID   string `bson:"uid"`
}

type buddyDoc struct {
	OwnerID       string    `bson:"ownerId"`
	BuddyID       string    `bson:"buddyId"`
	Name          string    `bson:"name"`
	Username      string    `bson:"username"`
	SharedClasses []string  `bson:"sharedClasses"`
	CreatedAt     time.Time `bson:"createdAt"`
}

type credentialDoc struct {
	UserID       string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Map keys
// Class names are user input and may contain '.' or a leading '$', which
// MongoDB reserves in field paths. Both are stored as full-width look-alikes.
// ─────────────────────────────────────────────────────────────────────────────

var (
	keyEscaper   = strings.NewReplacer(".", "．", "$", "＄")
	keyUnescaper = strings.NewReplacer("．", ".", "＄", "$")
)

func escapeKey(k string) string   { return keyEscaper.Replace(k) }
func unescapeKey(k string) string { return keyUnescaper.Replace(k) }

// ─────────────────────────────────────────────────────────────────────────────
// Conversion
// ─────────────────────────────────────────────────────────────────────────────

func toUserDoc(p *profile.UserProfile) userDoc {
	return userDoc{
		ID:                p.ID,
		Username:          p.Username,
		Name:              p.Name,
		Email:             p.Email,
		TotalPoints:       p.TotalPoints,
		DailyPoints:       p.DailyPoints,
		DailyStudyPoints:  p.DailyStudyPoints,
		Streak:            p.Streak,
		LastActiveDate:    p.LastActiveDate.UTC(),
		DailyGoal:         p.DailyGoal,
		LastCheckInDates:  escapeCheckIns(p.LastCheckInDates),
		Schedule:          toClassDocs(p.Schedule),
		TotalSessions:     p.TotalSessions,
		StudyLog:          toSessionDocs(p.StudyLog),
		SyncHistory:       toSyncDocs(p.SyncHistory),
		RedemptionHistory: toRedemptionDocs(p.RedemptionHistory),
	}
}

func (d userDoc) toProfile() *profile.UserProfile {
	p := &profile.UserProfile{
		ID:               d.ID,
		Username:         d.Username,
		Name:             d.Name,
		Email:            d.Email,
		TotalPoints:      d.TotalPoints,
		DailyPoints:      d.DailyPoints,
		DailyStudyPoints: d.DailyStudyPoints,
		Streak:           d.Streak,
		LastActiveDate:   d.LastActiveDate,
		DailyGoal:        d.DailyGoal,
		LastCheckInDates: make(map[string]string, len(d.LastCheckInDates)),
		TotalSessions:    d.TotalSessions,
	}
	for k, v := range d.LastCheckInDates {
		p.LastCheckInDates[unescapeKey(k)] = v
	}
	for _, c := range d.Schedule {
		days := make([]profile.Day, 0, len(c.Days))
		for _, day := range c.Days {
			days = append(days, profile.Day(day))
		}
		p.Schedule = append(p.Schedule, profile.ClassSlot{
			Name: c.Name, Location: c.Location, StartTime: c.StartTime, EndTime: c.EndTime, Days: days,
		})
	}
	for _, s := range d.StudyLog {
		p.StudyLog = append(p.StudyLog, profile.StudySession{
			ID: s.ID, Date: s.Date, DurationMinutes: s.DurationMinutes,
			PointsEarned: s.PointsEarned, BuddiesInvolved: s.BuddiesInvolved,
		})
	}
	for _, s := range d.SyncHistory {
		p.SyncHistory = append(p.SyncHistory, profile.SyncEvent{
			ID: s.ID, BuddyName: s.BuddyName, Points: s.Points, Timestamp: s.Timestamp,
		})
	}
	for _, r := range d.RedemptionHistory {
		p.RedemptionHistory = append(p.RedemptionHistory, profile.Redemption{
			ID: r.ID, RewardName: r.RewardName, Cost: r.Cost, Timestamp: r.Timestamp,
		})
	}
	return p
}

func escapeCheckIns(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[escapeKey(k)] = v
	}
	return out
}

func toClassDocs(in []profile.ClassSlot) []classDoc {
	out := make([]classDoc, 0, len(in))
	for _, c := range in {
		days := make([]string, 0, len(c.Days))
		for _, d := range c.Days {
			days = append(days, string(d))
		}
		out = append(out, classDoc{Name: c.Name, Location: c.Location, StartTime: c.StartTime, EndTime: c.EndTime, Days: days})
	}
	return out
}

func toSessionDocs(in []profile.StudySession) []sessionDoc {
	out := make([]sessionDoc, 0, len(in))
	for _, s := range in {
		buddies := s.BuddiesInvolved
		if buddies == nil {
			buddies = []string{}
		}
		out = append(out, sessionDoc{
			ID: s.ID, Date: s.Date.UTC(), DurationMinutes: s.DurationMinutes,
			PointsEarned: s.PointsEarned, BuddiesInvolved: buddies,
		})
	}
	return out
}

func toSyncDocs(in []profile.SyncEvent) []syncDoc {
	out := make([]syncDoc, 0, len(in))
	for _, s := range in {
		out = append(out, syncDoc{ID: s.ID, BuddyName: s.BuddyName, Points: s.Points, Timestamp: s.Timestamp.UTC()})
	}
	return out
}

func toRedemptionDocs(in []profile.Redemption) []redemptionDoc {
	out := make([]redemptionDoc, 0, len(in))
	for _, r := range in {
		out = append(out, redemptionDoc{ID: r.ID, RewardName: r.RewardName, Cost: r.Cost, Timestamp: r.Timestamp.UTC()})
	}
	return out
}

// updateDocument renders the $set document for the fields set in patch.
// Check-ins are written as dotted paths so other classes' dates survive.
func updateDocument(patch profile.Patch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.TotalPoints != nil {
		set["totalPoints"] = *patch.TotalPoints
	}
	if patch.DailyPoints != nil {
		set["dailyPoints"] = *patch.DailyPoints
	}
	if patch.DailyStudyPoints != nil {
		set["dailyStudyPoints"] = *patch.DailyStudyPoints
	}
	if patch.Streak != nil {
		set["streak"] = *patch.Streak
	}
	if patch.LastActiveDate != nil {
		set["lastActiveDate"] = patch.LastActiveDate.UTC()
	}
	if patch.DailyGoal != nil {
		set["dailyGoal"] = *patch.DailyGoal
	}
	for class, day := range patch.CheckIns {
		set["lastCheckInDates."+escapeKey(class)] = day
	}
	if patch.Schedule != nil {
		set["schedule"] = toClassDocs(*patch.Schedule)
	}
	if patch.TotalSessions != nil {
		set["totalSessions"] = *patch.TotalSessions
	}
	if patch.StudyLog != nil {
		set["studyLog"] = toSessionDocs(*patch.StudyLog)
	}
	if patch.SyncHistory != nil {
		set["syncHistory"] = toSyncDocs(*patch.SyncHistory)
	}
	if patch.RedemptionHistory != nil {
		set["redemptionHistory"] = toRedemptionDocs(*patch.RedemptionHistory)
	}
	return set
}
