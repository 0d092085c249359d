package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"strangerlink/backend/internal/filters"
	"strangerlink/backend/internal/models"
)

const browseLimit = 50

// BrowseProfiles lists partner profiles. Anonymous visitors may browse;
// filter parameters require a premium profile. Filtering the listing is
// independent of filtering matchmaking; this endpoint only affects what
// the browse page shows.
func (h *Handler) BrowseProfiles(c *gin.Context) {
	userID := c.GetString("user_id")

	spec, filtered := specFromQuery(c)
	if filtered {
		if userID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "upgrade required for advanced filters"})
			return
		}
		profile, err := h.Storage.GetProfileByUserID(userID)
		if err != nil || profile == nil || !profile.IsPremium {
			c.JSON(http.StatusForbidden, gin.H{"error": "upgrade required for advanced filters"})
			return
		}
	}

	excludeID := userID
	if excludeID == "" {
		excludeID = c.GetString("anon_id")
	}

	var (
		profiles []models.UserProfile
		err      error
	)
	if filtered {
		profiles, err = h.Storage.FindCandidateProfilesFiltered(excludeID, browseLimit, spec)
	} else {
		profiles, err = h.Storage.FindCandidateProfiles(excludeID, browseLimit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// RoomHistory returns the ordered transcript of a room the caller
// participated in.
func (h *Handler) RoomHistory(c *gin.Context) {
	userID := c.GetString("user_id")
	roomID := c.Param("id")

	room, err := h.Storage.GetRoomByID(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if room.User1ID != userID && room.User2ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this room"})
		return
	}

	history, err := h.Storage.GetChatHistory(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": history})
}

type reportRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// Report files a complaint against the other participant of a room.
func (h *Handler) Report(c *gin.Context) {
	userID := c.GetString("user_id")

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.Storage.GetRoomByID(req.RoomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if room.User1ID != userID && room.User2ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this room"})
		return
	}

	targetID := room.User1ID
	if targetID == userID {
		targetID = room.User2ID
	}

	complaint := &models.Complaint{
		ReporterID: userID,
		TargetID:   targetID,
		RoomID:     req.RoomID,
		Reason:     req.Reason,
	}
	if err := h.Storage.SaveComplaint(complaint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to file report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reported"})
}

// specFromQuery builds a filter spec from query parameters, merging each
// supplied field over the defaults. filtered reports whether any filter
// parameter was present at all.
func specFromQuery(c *gin.Context) (spec filters.Spec, filtered bool) {
	spec = filters.DefaultSpec()

	for _, key := range []string{"gender", "country", "race", "religion"} {
		if v, ok := c.GetQuery(key); ok {
			spec = spec.Merge(key, v)
			filtered = true
		}
	}

	if lo, hi, ok := rangeFromQuery(c, "age_min", "age_max", spec.AgeRange); ok {
		spec = spec.Merge("ageRange", [2]int{lo, hi})
		filtered = true
	}
	if lo, hi, ok := rangeFromQuery(c, "height_min", "height_max", spec.HeightRange); ok {
		spec = spec.Merge("heightRange", [2]int{lo, hi})
		filtered = true
	}

	return spec, filtered
}

func rangeFromQuery(c *gin.Context, minKey, maxKey string, current [2]int) (lo, hi int, ok bool) {
	lo, hi = current[0], current[1]
	if v, present := c.GetQuery(minKey); present {
		if n, err := strconv.Atoi(v); err == nil {
			lo, ok = n, true
		}
	}
	if v, present := c.GetQuery(maxKey); present {
		if n, err := strconv.Atoi(v); err == nil {
			hi, ok = n, true
		}
	}
	return lo, hi, ok
}
