package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"strangerlink/backend/internal/auth"
	"strangerlink/backend/internal/upgrade"
)

// Plans returns the premium plan catalog.
func (h *Handler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": upgrade.Plans()})
}

// StartUpgrade opens a new upgrade flow at the signup step and returns
// its id. Each opened modal gets its own flow; abandoning one and
// starting over resets to signup.
func (h *Handler) StartUpgrade(c *gin.Context) {
	deviceKey := c.GetHeader("X-Device-Key")

	flowID := uuid.New().String()
	flow := upgrade.NewFlow(h.Auth, h.Storage, h.Anon, deviceKey)

	h.flowMu.Lock()
	h.pruneFlowsLocked()
	h.flows[flowID] = flowEntry{flow: flow, created: time.Now()}
	h.flowMu.Unlock()

	c.JSON(http.StatusOK, gin.H{"flow_id": flowID, "step": flow.Step()})
}

type upgradeSignupRequest struct {
	FlowID   string `json:"flow_id" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) UpgradeSignup(c *gin.Context) {
	var req upgradeSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, ok := h.flowByID(req.FlowID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown upgrade flow"})
		return
	}

	token, err := flow.Signup(req.Email, req.Password)
	if err != nil {
		c.JSON(upgradeErrorStatus(err), gin.H{"error": err.Error(), "step": flow.Step()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": flow.Step(), "token": token, "user_id": flow.UserID()})
}

type upgradeProfileRequest struct {
	FlowID  string               `json:"flow_id" binding:"required"`
	Profile upgrade.ProfileInput `json:"profile" binding:"required"`
}

func (h *Handler) UpgradeProfile(c *gin.Context) {
	var req upgradeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, ok := h.flowByID(req.FlowID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown upgrade flow"})
		return
	}

	if err := flow.SubmitProfile(req.Profile); err != nil {
		c.JSON(upgradeErrorStatus(err), gin.H{"error": err.Error(), "step": flow.Step()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": flow.Step()})
}

type upgradePaymentRequest struct {
	FlowID string `json:"flow_id" binding:"required"`
	PlanID string `json:"plan_id" binding:"required"`
}

func (h *Handler) UpgradePayment(c *gin.Context) {
	var req upgradePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, ok := h.flowByID(req.FlowID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown upgrade flow"})
		return
	}

	if err := flow.ConfirmPayment(c.Request.Context(), req.PlanID); err != nil {
		c.JSON(upgradeErrorStatus(err), gin.H{"error": err.Error(), "step": flow.Step()})
		return
	}

	// The flow is finished; drop it so a re-opened modal starts fresh.
	h.flowMu.Lock()
	delete(h.flows, req.FlowID)
	h.flowMu.Unlock()

	c.JSON(http.StatusOK, gin.H{"step": upgrade.StepComplete})
}

func (h *Handler) flowByID(id string) (*upgrade.Flow, bool) {
	h.flowMu.Lock()
	defer h.flowMu.Unlock()
	h.pruneFlowsLocked()
	entry, ok := h.flows[id]
	if !ok {
		return nil, false
	}
	return entry.flow, true
}

// pruneFlowsLocked evicts flows past their TTL. Caller holds flowMu.
func (h *Handler) pruneFlowsLocked() {
	cutoff := time.Now().Add(-flowTTL)
	for id, entry := range h.flows {
		if entry.created.Before(cutoff) {
			delete(h.flows, id)
		}
	}
}

func upgradeErrorStatus(err error) int {
	switch {
	case errors.Is(err, upgrade.ErrWrongStep):
		return http.StatusConflict
	case errors.Is(err, auth.ErrUserExists),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, upgrade.ErrGenderRequired),
		errors.Is(err, upgrade.ErrUnderage),
		errors.Is(err, upgrade.ErrCountryEmpty):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
