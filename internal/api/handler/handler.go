package handler

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"strangerlink/backend/internal/anonstore"
	"strangerlink/backend/internal/api/middleware"
	"strangerlink/backend/internal/auth"
	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/storage"
	"strangerlink/backend/internal/upgrade"
)

// flowTTL bounds how long an abandoned upgrade modal keeps its flow
// alive; stale entries are pruned on the next flow access.
const flowTTL = 30 * time.Minute

type flowEntry struct {
	flow    *upgrade.Flow
	created time.Time
}

// Handler carries the dependencies of the HTTP surface.
type Handler struct {
	Hub     *chathub.ManagerService
	Auth    *auth.Service
	Storage storage.Storage
	Anon    *anonstore.Store

	// flows are live upgrade attempts, one per opened modal.
	flowMu sync.Mutex
	flows  map[string]flowEntry
}

func NewHandler(hub *chathub.ManagerService, authSvc *auth.Service, store storage.Storage, anon *anonstore.Store) *Handler {
	return &Handler{
		Hub:     hub,
		Auth:    authSvc,
		Storage: store,
		Anon:    anon,
		flows:   make(map[string]flowEntry),
	}
}

// RegisterRoutes wires the HTTP surface onto the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/anonid", h.GetAnonID)

	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/signin", h.Signin)
	r.POST("/auth/signout", h.Signout)
	r.GET("/auth/me", middleware.RequireUser(h.Auth), h.Me)

	r.GET("/profiles", middleware.Auth(h.Auth), h.BrowseProfiles)
	r.GET("/rooms/:id/history", middleware.RequireUser(h.Auth), h.RoomHistory)
	r.POST("/report", middleware.RequireUser(h.Auth), h.Report)

	r.GET("/upgrade/plans", h.Plans)
	r.POST("/upgrade/start", h.StartUpgrade)
	r.POST("/upgrade/signup", h.UpgradeSignup)
	r.POST("/upgrade/profile", h.UpgradeProfile)
	r.POST("/upgrade/payment", h.UpgradePayment)

	r.GET("/ws", h.ServeWebSocket)
}
