package httpapi

import (
	"net/http"
	"time"

	"callpay-platform/internal/audit"
	"callpay-platform/internal/auth"
	"callpay-platform/internal/ledger"
	"callpay-platform/internal/presence"
	"callpay-platform/internal/rates"
	"callpay-platform/internal/rbac"
	"callpay-platform/internal/reporting"
	"callpay-platform/internal/session"
	"callpay-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Sessions *session.Service
	Ledger   *ledger.Service
	Presence *presence.Tracker
	Rates    *rates.Service
	Reports  *reporting.Service
	Audit    *audit.Service
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
}

// Login issues a JWT token pair for an OTP-verified identity.
//
// NOTE: OTP delivery and verification are an upstream collaborator's
// concern; by the time this endpoint is reachable the identity has been
// proven. Role is always "user" here; admin tokens are minted out-of-band.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, rbac.RoleUser)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a token pair off a valid refresh token.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), claims.UserID, rbac.RoleUser)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

type initiateRequest struct {
	ReceiverID string `json:"receiver_id"`
	MediaType  string `json:"media_type"`
}

func (h Handlers) InitiateCall(c *gin.Context) {
	callerID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	sess, err := h.Sessions.Initiate(c.Request.Context(), callerID, req.ReceiverID, session.MediaType(req.MediaType))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess.View()})
}

func (h Handlers) AcceptCall(c *gin.Context) {
	actorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	sess, cred, err := h.Sessions.Accept(c.Request.Context(), actorID, c.Param("call_id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View(), "credential": cred})
}

func (h Handlers) RejectCall(c *gin.Context) {
	actorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	sess, err := h.Sessions.Reject(c.Request.Context(), actorID, c.Param("call_id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

func (h Handlers) CancelCall(c *gin.Context) {
	actorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	sess, err := h.Sessions.Cancel(c.Request.Context(), actorID, c.Param("call_id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

type endRequest struct {
	// ReportedDurationSeconds is client telemetry; billing ignores it.
	ReportedDurationSeconds *int `json:"reported_duration_seconds"`
}

func (h Handlers) EndCall(c *gin.Context) {
	actorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req endRequest
	// Body is optional: ending a call must never fail on missing telemetry.
	_ = c.ShouldBindJSON(&req)

	sess, err := h.Sessions.End(c.Request.Context(), actorID, c.Param("call_id"), req.ReportedDurationSeconds)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

type rateRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

func (h Handlers) RateCall(c *gin.Context) {
	actorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess, err := h.Sessions.Rate(c.Request.Context(), actorID, c.Param("call_id"), req.Rating, req.Feedback)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

func (h Handlers) GetCall(c *gin.Context) {
	actorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	sess, err := h.Sessions.Get(c.Request.Context(), actorID, c.Param("call_id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

// --- Wallet ---

func (h Handlers) WalletBalance(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	bal, err := h.Ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

func (h Handlers) WalletEntries(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	entries, err := h.Ledger.ListEntries(c.Request.Context(), userID, 50)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// --- Presence ---

func (h Handlers) Heartbeat(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	cameOnline, err := h.Presence.Heartbeat(c.Request.Context(), userID)
	if err != nil {
		logger.FromGin(c).Error("heartbeat failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": true, "came_online": cameOnline})
}

func (h Handlers) Offline(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err := h.Presence.SetOffline(c.Request.Context(), userID); err != nil {
		logger.FromGin(c).Error("offline failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": false})
}

// --- Profile ---

func (h Handlers) GetMyRates(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	out, err := h.Rates.Get(c.Request.Context(), userID)
	if err != nil {
		writeRatesError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) UpdateMyRates(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req rates.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Rates.Update(c.Request.Context(), userID, req)
	if err != nil {
		writeRatesError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) MySummary(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	to := time.Now().UTC()
	from := to.AddDate(0, -1, 0)
	out, err := h.Reports.AccountSummary(c.Request.Context(), userID, from, to)
	if err != nil {
		logger.FromGin(c).Error("summary failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Admin ---

// AdminForceEnd terminates a session on behalf of ops, through the same
// billed transition the reaper uses. RBAC: support or super_admin.
func (h Handlers) AdminForceEnd(c *gin.Context) {
	adminID, _ := auth.UserID(c.Request.Context())
	adminRole, _ := auth.Role(c.Request.Context())

	sess, err := h.Sessions.ForceTerminate(c.Request.Context(), c.Param("call_id"), session.EndReasonAdminForceEnd, session.EndedByAdmin)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	if err := h.Audit.LogAdminAction(c.Request.Context(), adminID, adminRole, "force end", sess.ID, "", sess.CoinsCharged); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

type adminManualCreditRequest struct {
	AccountID      string `json:"account_id"`
	AmountCoins    int64  `json:"amount_coins"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

// AdminManualCredit posts an ops balance correction.
// RBAC: super_admin only.
func (h Handlers) AdminManualCredit(c *gin.Context) {
	adminID, _ := auth.UserID(c.Request.Context())
	adminRole, _ := auth.Role(c.Request.Context())

	var req adminManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	entry, bal, err := h.Ledger.AdminManualCredit(c.Request.Context(), req.AccountID, ledger.AdminCreditRequest{
		AmountCoins:    req.AmountCoins,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
	})
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	if err := h.Audit.LogAdminAction(c.Request.Context(), adminID, adminRole, req.Reason, "", req.AccountID, req.AmountCoins); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "balance": bal})
}
