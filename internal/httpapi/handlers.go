package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"agent-console/internal/audit"
	"agent-console/internal/auth"
	"agent-console/internal/directory"
	"agent-console/internal/presence"
	"agent-console/internal/rbac"
	"agent-console/internal/reporting"
	"agent-console/internal/session"
	"agent-console/internal/status"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Directory *directory.Service
	Sessions  *session.Manager
	Presence  *presence.Cache
	Audit     *audit.Service
	Reporting *reporting.Service

	// Redis backs the single-console slot taken at sign-in.
	Redis   *redis.Client
	SlotTTL time.Duration

	Log *slog.Logger
}

func (h Handlers) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// Portal is the sign-in surface the client used: "agent" or "admin".
	Portal string `json:"portal"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
}

// Login validates credentials against the chosen portal and issues a JWT
// pair. Agents additionally claim their single console slot and get their
// session started so the status clock begins immediately.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Portal == "" {
		req.Portal = rbac.RoleAgent
	}
	if !rbac.IsValidRole(req.Portal) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "portal must be agent or admin"})
		return
	}

	u, err := h.Directory.Authenticate(c.Request.Context(), req.Username, req.Password, req.Portal)
	switch {
	case err == nil:
	case errors.Is(err, directory.ErrRoleMismatch):
		// The account exists and the secret matched, but the wrong portal
		// was used. Say so explicitly; this mirrors the console UX.
		msg := "this account must use the agent portal"
		if req.Portal == rbac.RoleAgent {
			msg = "this account must use the admin portal"
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msg})
		return
	case errors.Is(err, directory.ErrInvalidCredentials), errors.Is(err, directory.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	default:
		h.logger().Error("login: authenticate failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}

	if u.Role == rbac.RoleAgent {
		ok, err := presence.AcquireConsoleSlot(c.Request.Context(), h.Redis, u.ID, h.SlotTTL)
		if err != nil {
			h.logger().Error("login: console slot acquire failed", "agent_id", u.ID, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a console session is already open for this account"})
			return
		}

		// Start the session eagerly so the available clock and the
		// simulated-call scheduler run from the moment of sign-in.
		if h.Sessions != nil {
			h.Sessions.Get(c.Request.Context(), u.ID)
		}
	}

	pair, err := h.Auth.IssuePair(time.Now(), u.ID, u.Username, u.Role)
	if err != nil {
		h.logger().Error("login: token issuance failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       u.ID,
		Username:     u.Username,
		Role:         u.Role,
	})
}

// Logout ends the console session. Agents may only sign out from gone_home;
// any other status keeps the shift clock honest.
func (h Handlers) Logout(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := auth.Role(c.Request.Context())

	if role == rbac.RoleAgent && h.Sessions != nil {
		if s, ok := h.Sessions.Peek(userID); ok && !s.CanSignOut() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "set status to gone_home before signing out"})
			return
		}
		h.Sessions.Release(userID)
		if h.Presence != nil {
			h.Presence.Clear(c.Request.Context(), userID)
		}
		if err := presence.ReleaseConsoleSlot(c.Request.Context(), h.Redis, userID); err != nil {
			h.logger().Error("logout: console slot release failed", "agent_id", userID, "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

// Me echoes the verified identity.
func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	uname, _ := auth.Username(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "username": uname, "role": role})
}

// --- Agent session ---

func (h Handlers) agentSession(c *gin.Context) (*session.Session, bool) {
	if h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sessions not configured"})
		return nil, false
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return h.Sessions.Get(c.Request.Context(), userID), true
}

// SessionView returns the agent's live console state.
func (h Handlers) SessionView(c *gin.Context) {
	s, ok := h.agentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus performs an agent-requested working-status change.
func (h Handlers) SetStatus(c *gin.Context) {
	s, ok := h.agentSession(c)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := s.Transition(c.Request.Context(), status.Status(req.Status)); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// AnswerCall accepts the ringing call. A stale click (nothing ringing) is
// not an error; the refreshed view tells the client what actually happened.
func (h Handlers) AnswerCall(c *gin.Context) {
	s, ok := h.agentSession(c)
	if !ok {
		return
	}
	s.Answer(c.Request.Context())
	c.JSON(http.StatusOK, s.View())
}

// DeclineCall refuses the ringing call.
func (h Handlers) DeclineCall(c *gin.Context) {
	s, ok := h.agentSession(c)
	if !ok {
		return
	}
	s.Decline(c.Request.Context())
	c.JSON(http.StatusOK, s.View())
}

// EndCall hangs up the active call.
func (h Handlers) EndCall(c *gin.Context) {
	s, ok := h.agentSession(c)
	if !ok {
		return
	}
	s.EndCall(c.Request.Context())
	c.JSON(http.StatusOK, s.View())
}

type outboundRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// PlaceOutbound dials out from an idle console.
func (h Handlers) PlaceOutbound(c *gin.Context) {
	s, ok := h.agentSession(c)
	if !ok {
		return
	}

	var req outboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.PhoneNumber == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phone_number required"})
		return
	}

	s.PlaceOutbound(c.Request.Context(), req.PhoneNumber)
	c.JSON(http.StatusOK, s.View())
}

const defaultRecentLimit = 10

// RecentCalls returns the agent's latest call records, most recent first.
func (h Handlers) RecentCalls(c *gin.Context) {
	s, ok := h.agentSession(c)
	if !ok {
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	recs, err := s.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger().Error("recent calls lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call log lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": recs})
}

// --- Admin: employee accounts ---

type createEmployeeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h Handlers) CreateEmployee(c *gin.Context) {
	if h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "directory not configured"})
		return
	}

	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := h.Directory.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeDirectoryError(c, err)
		return
	}

	h.auditAccountAction(c, audit.EventTypeAccountCreated, u.ID, "employee account created")
	c.JSON(http.StatusCreated, u)
}

func (h Handlers) ListEmployees(c *gin.Context) {
	if h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "directory not configured"})
		return
	}
	users, err := h.Directory.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.logger().Error("employee list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "employee list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": users})
}

func (h Handlers) GetEmployee(c *gin.Context) {
	if h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "directory not configured"})
		return
	}
	u, err := h.Directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDirectoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateEmployeeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h Handlers) UpdateEmployee(c *gin.Context) {
	if h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "directory not configured"})
		return
	}

	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := h.Directory.UpdateAccount(c.Request.Context(), c.Param("id"), req.Username, req.Password)
	if err != nil {
		h.writeDirectoryError(c, err)
		return
	}

	h.auditAccountAction(c, audit.EventTypeAccountUpdated, u.ID, "employee account updated")
	c.JSON(http.StatusOK, u)
}

func (h Handlers) DeleteEmployee(c *gin.Context) {
	if h.Directory == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "directory not configured"})
		return
	}
	id := c.Param("id")

	if err := h.Directory.Delete(c.Request.Context(), id); err != nil {
		h.writeDirectoryError(c, err)
		return
	}

	// Tear down any live console state for the deleted account.
	if h.Sessions != nil {
		h.Sessions.Release(id)
	}
	if h.Presence != nil {
		h.Presence.Clear(c.Request.Context(), id)
	}

	h.auditAccountAction(c, audit.EventTypeAccountDeleted, id, "employee account deleted")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// --- Admin: live presence and reporting ---

// PresenceBoard returns the live status wallboard.
func (h Handlers) PresenceBoard(c *gin.Context) {
	if h.Presence == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "presence not configured"})
		return
	}
	snap, err := h.Presence.Snapshot(c.Request.Context())
	if err != nil {
		h.logger().Error("presence snapshot failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "presence lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": snap})
}

// AgentSummary aggregates one agent's call and status history over a window.
// Defaults to the last 24 hours when from/to are omitted.
func (h Handlers) AgentSummary(c *gin.Context) {
	if h.Reporting == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}

	now := time.Now().UTC()
	from, to := now.Add(-24*time.Hour), now
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
	}

	out, err := h.Reporting.AgentSummary(c.Request.Context(), reporting.AgentSummaryRequest{
		AgentID: c.Param("id"),
		Range:   reporting.Range{From: from, To: to},
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid reporting window"})
			return
		}
		h.logger().Error("agent summary failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers ---

func (h Handlers) writeDirectoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, directory.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, directory.ErrUsernameTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "username already exists"})
	case errors.Is(err, directory.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "employee not found"})
	default:
		h.logger().Error("directory operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// auditAccountAction is best-effort; a failed audit write never fails the
// admin request.
func (h Handlers) auditAccountAction(c *gin.Context, typ audit.EventType, employeeID, message string) {
	if h.Audit == nil {
		return
	}
	actorID, _ := auth.UserID(c.Request.Context())
	actorRole, _ := auth.Role(c.Request.Context())
	if err := h.Audit.LogAccountAction(c.Request.Context(), typ, actorID, actorRole, c.ClientIP(), employeeID, message); err != nil {
		h.logger().Error("audit append failed", "type", string(typ), "err", err)
	}
}
