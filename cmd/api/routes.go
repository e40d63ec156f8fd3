package main

import (
	"net/http"

	"callpay-platform/internal/auth"
	"callpay-platform/internal/httpapi"
	"callpay-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMgr *auth.Manager) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/v1/auth/login", h.Login)
	r.POST("/v1/auth/refresh", h.Refresh)

	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(authMgr))
	{
		v1.POST("/calls", h.InitiateCall)
		v1.GET("/calls/:call_id", h.GetCall)
		v1.POST("/calls/:call_id/accept", h.AcceptCall)
		v1.POST("/calls/:call_id/reject", h.RejectCall)
		v1.POST("/calls/:call_id/cancel", h.CancelCall)
		v1.POST("/calls/:call_id/end", h.EndCall)
		v1.POST("/calls/:call_id/rate", h.RateCall)

		v1.GET("/wallet/balance", h.WalletBalance)
		v1.GET("/wallet/entries", h.WalletEntries)

		v1.POST("/presence/heartbeat", h.Heartbeat)
		v1.POST("/presence/offline", h.Offline)

		v1.GET("/me/summary", h.MySummary)
		v1.GET("/me/rates", h.GetMyRates)
		v1.PUT("/me/rates", h.UpdateMyRates)
	}

	admin := v1.Group("/admin")
	{
		admin.POST("/calls/:call_id/force-end",
			rbac.RequireAnyRole(rbac.RoleSupport),
			h.AdminForceEnd,
		)
		// Manual credits move money; support cannot do this.
		admin.POST("/wallets/manual-credit",
			rbac.RequireAnyRole(),
			h.AdminManualCredit,
		)
	}
}
