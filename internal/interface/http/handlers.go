package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sync-campus/sync-hub/internal/application/controller"
	"github.com/sync-campus/sync-hub/internal/domain/cycle"
	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/domain/reward"
	"github.com/sync-campus/sync-hub/internal/domain/shared"
	"github.com/sync-campus/sync-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / RESPONSE TYPES
// ══════════════════════════════════════════════════════════════════════════════

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	Profile   *profile.UserProfile `json:"profile"`
}

type settingsRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type goalRequest struct {
	DailyGoal int `json:"dailyGoal"`
}

type checkInRequest struct {
	ClassName  string `json:"className"`
	BuddyCount int    `json:"buddyCount"`
}

type sessionRequest struct {
	DurationMinutes int      `json:"duration"`
	BuddyIDs        []string `json:"buddyIds"`
}

type syncRequest struct {
	BuddyID       string   `json:"buddyId"`
	SharedClasses []string `json:"sharedClasses"`
}

type sharedClassesRequest struct {
	SharedClasses []string `json:"sharedClasses"`
}

// redeemRequest names either a catalog reward or a custom reward and cost.
type redeemRequest struct {
	RewardID   string `json:"rewardId"`
	RewardName string `json:"rewardName"`
	Cost       int    `json:"cost"`
}

// meResponse is the profile plus values derived for display.
type meResponse struct {
	*profile.UserProfile
	Initials     string        `json:"initials"`
	GoalProgress float64       `json:"goalProgress"`
	Rollover     cycle.Outcome `json:"rollover,omitempty"`
}

type redeemResponse struct {
	Redeemed bool                 `json:"redeemed"`
	Profile  *profile.UserProfile `json:"profile"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"name":    "Sync Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":  "/health",
			"signup":  "/api/v1/auth/signup",
			"login":   "/api/v1/auth/login",
			"profile": "/api/v1/me",
			"rewards": "/api/v1/rewards",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, r, http.StatusOK, map[string]interface{}{
			"healthy": true,
			"uptime":  s.Uptime().Round(time.Second).String(),
		})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleSignup handles POST /api/v1/auth/signup
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := s.newController(r)
	p, err := c.Signup(r.Context(), controller.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Username: req.Username,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusCreated, p)
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := s.newController(r)
	p, err := c.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, p)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, p *profile.UserProfile) {
	if s.deps.Tokens == nil || p == nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "Session could not be issued")
		return
	}
	token, exp, err := s.deps.Tokens.Issue(p.ID)
	if err != nil {
		s.logger.Error("issue token failed", logger.UserID(p.ID), logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "Session could not be issued")
		return
	}
	writeJSON(w, r, status, authResponse{Token: token, ExpiresAt: exp, Profile: p})
}

// handleGetMe handles GET /api/v1/me
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	p := c.Current()
	resp := meResponse{
		UserProfile:  p,
		Initials:     p.Initials(),
		GoalProgress: p.GoalProgress(),
	}
	if sess := c.Session(); sess != nil {
		resp.Rollover = sess.Rollover
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleDeleteMe handles DELETE /api/v1/me
func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := c.DeleteAccount(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// handleUpdateSettings handles PUT /api/v1/me/settings
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.UpdateSettings(r.Context(), req.Email, req.Name)
	})
}

// handleUpdateGoal handles PUT /api/v1/me/goal
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.UpdateDailyGoal(r.Context(), req.DailyGoal)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// POINTS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleCheckIn handles POST /api/v1/me/checkins
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.CheckIn(r.Context(), req.ClassName, req.BuddyCount)
	})
}

// handleLogSession handles POST /api/v1/me/sessions
func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.LogStudySession(r.Context(), req.DurationMinutes, req.BuddyIDs)
	})
}

// handleListRewards handles GET /api/v1/rewards
func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, reward.Catalog())
}

// handleRedeem handles POST /api/v1/me/redemptions
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, ok := s.session(w, r)
	if !ok {
		return
	}

	var (
		redeemed bool
		err      error
	)
	if req.RewardID != "" {
		redeemed, err = c.RedeemCatalogReward(r.Context(), req.RewardID)
	} else {
		redeemed, err = c.RedeemReward(r.Context(), req.RewardName, req.Cost)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, redeemResponse{Redeemed: redeemed, Profile: c.Current()})
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListClasses handles GET /api/v1/me/classes
func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	schedule := c.Current().Schedule
	if schedule == nil {
		schedule = []profile.ClassSlot{}
	}
	writeJSON(w, r, http.StatusOK, schedule)
}

// handleTodaysClasses handles GET /api/v1/me/classes/today
func (s *Server) handleTodaysClasses(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	today := c.TodaysClasses()
	if today == nil {
		today = []controller.TodayClass{}
	}
	writeJSON(w, r, http.StatusOK, today)
}

// handleAddClass handles POST /api/v1/me/classes
func (s *Server) handleAddClass(w http.ResponseWriter, r *http.Request) {
	var slot profile.ClassSlot
	if !decodeJSON(w, r, &slot) {
		return
	}
	s.withSessionStatus(w, r, http.StatusCreated, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.AddClass(r.Context(), slot)
	})
}

// handleEditClass handles PUT /api/v1/me/classes/{name}
func (s *Server) handleEditClass(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	var slot profile.ClassSlot
	if !decodeJSON(w, r, &slot) {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.EditClass(r.Context(), name, slot)
	})
}

// handleRemoveClass handles DELETE /api/v1/me/classes/{name}
func (s *Server) handleRemoveClass(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.RemoveClass(r.Context(), name)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// BUDDY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleDiscoverBuddy handles GET /api/v1/buddies/discover/{identifier}
func (s *Server) handleDiscoverBuddy(w http.ResponseWriter, r *http.Request) {
	identifier, ok := pathParam(w, r, "identifier")
	if !ok {
		return
	}
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	candidate, err := c.DiscoverBuddy(r.Context(), identifier)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, candidate)
}

// handleSyncBuddy handles POST /api/v1/me/buddies
func (s *Server) handleSyncBuddy(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withSessionStatus(w, r, http.StatusCreated, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.PerformGroupSync(r.Context(), req.BuddyID, req.SharedClasses)
	})
}

// handleUpdateBuddy handles PUT /api/v1/me/buddies/{id}
func (s *Server) handleUpdateBuddy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req sharedClassesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.UpdateBuddySharedClasses(r.Context(), id, req.SharedClasses)
	})
}

// handleRemoveBuddy handles DELETE /api/v1/me/buddies/{id}
func (s *Server) handleRemoveBuddy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	s.withSession(w, r, func(c *controller.ProfileController) (*profile.UserProfile, error) {
		return c.RemoveBuddy(r.Context(), id)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// newController builds a controller with no session for this request.
func (s *Server) newController(r *http.Request) *controller.ProfileController {
	return controller.New(controller.Dependencies{
		Store:     s.deps.Store,
		Directory: s.deps.Directory,
		Auth:      s.deps.Auth,
		Clock:     s.deps.Clock,
		IDs:       s.deps.IDs,
		Logger:    s.logger.With(logger.String(logger.RequestIDKey, middleware.GetReqID(r.Context()))),
	})
}

// session resumes the authenticated user's session. On failure the error
// response has been written.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*controller.ProfileController, bool) {
	c := s.newController(r)
	if _, err := c.Resume(r.Context()); err != nil {
		if shared.IsNotFound(err) {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Account no longer exists")
			return nil, false
		}
		s.writeError(w, r, err)
		return nil, false
	}
	return c, true
}

func (s *Server) withSession(w http.ResponseWriter, r *http.Request, op func(*controller.ProfileController) (*profile.UserProfile, error)) {
	s.withSessionStatus(w, r, http.StatusOK, op)
}

func (s *Server) withSessionStatus(w http.ResponseWriter, r *http.Request, status int, op func(*controller.ProfileController) (*profile.UserProfile, error)) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	p, err := op(c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, status, p)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON reads the request body into dst. On failure a 400 has been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return false
	}
	return true
}

// pathParam returns the unescaped URL parameter key.
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	value, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil || value == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_path", "Invalid "+key)
		return "", false
	}
	return value, true
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeError maps domain error kinds to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	message := "An unexpected error occurred"
	var de *shared.DomainError
	switch {
	case errors.As(err, &de):
		message = de.Message
	case status == http.StatusServiceUnavailable:
		message = "Storage is temporarily unavailable"
	}

	if status >= 500 {
		s.logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String(logger.RequestIDKey, middleware.GetReqID(r.Context())),
			logger.Err(err),
		)
	}
	writeJSONError(w, status, code, message)
}

func statusFor(err error) (int, string) {
	switch {
	case shared.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case shared.IsInsufficientBalance(err):
		return http.StatusUnprocessableEntity, "insufficient_points"
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case shared.IsAlreadyExists(err):
		return http.StatusConflict, "conflict"
	case shared.IsValidation(err):
		return http.StatusBadRequest, "validation_error"
	case shared.IsStoreError(err):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal_server_error"
	}
}
