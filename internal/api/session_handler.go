package api

import (
	"net/http"

	"fitcoach/internal/domain"
	"fitcoach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// --- DTOs ---

// CompleteSessionRequest is the client's report at the end of a session.
type CompleteSessionRequest struct {
	ExercisesCompleted []string `json:"exercisesCompleted"` // exercise ObjectID hex strings
	Notes              string   `json:"notes" binding:"max=2000"`
	Rating             int      `json:"rating"` // 1-5, omit when not rated
}

// --- Handler Methods ---

// ConfirmSession godoc
// @Summary Confirm a scheduled session
// @Description Moves the session to confirmed and schedules a reminder 15 minutes before it starts. Idempotent.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session's ObjectID Hex"
// @Success 200 {object} domain.TrainingSession
// @Failure 403 {object} gin.H "Not a participant of this session"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Session is completed, cancelled or no-show"
// @Failure 422 {object} gin.H "Session has no valid date and time"
// @Router /sessions/{sessionId}/confirm [post]
func (h *SessionHandler) ConfirmSession(c *gin.Context) {
	sessionID, ok := h.authorizedSession(c, domain.RoleClient, domain.RoleTrainer, domain.RoleAdmin)
	if !ok {
		return
	}
	session, err := h.sessions.ConfirmSession(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err, "Failed to confirm session.")
		return
	}
	c.JSON(http.StatusOK, session)
}

// CompleteSession godoc
// @Summary Complete a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session's ObjectID Hex"
// @Param completion body CompleteSessionRequest true "Completion data"
// @Success 200 {object} domain.TrainingSession
// @Failure 400 {object} gin.H "Invalid completion data"
// @Failure 409 {object} gin.H "Session already closed"
// @Router /sessions/{sessionId}/complete [post]
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	exercises := make([]primitive.ObjectID, 0, len(req.ExercisesCompleted))
	for _, hex := range req.ExercisesCompleted {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format: "+hex)
			return
		}
		exercises = append(exercises, id)
	}

	sessionID, ok := h.authorizedSession(c, domain.RoleClient, domain.RoleTrainer, domain.RoleAdmin)
	if !ok {
		return
	}
	session, err := h.sessions.CompleteSession(c.Request.Context(), sessionID, service.CompletionInput{
		ExercisesCompleted: exercises,
		Notes:              req.Notes,
		Rating:             req.Rating,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to complete session.")
		return
	}
	c.JSON(http.StatusOK, session)
}

// CancelSession cancels a session that has not happened yet.
func (h *SessionHandler) CancelSession(c *gin.Context) {
	sessionID, ok := h.authorizedSession(c, domain.RoleClient, domain.RoleTrainer, domain.RoleAdmin)
	if !ok {
		return
	}
	session, err := h.sessions.CancelSession(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel session.")
		return
	}
	c.JSON(http.StatusOK, session)
}

// MarkNoShow is used by the trainer (or the no-show job acting as admin).
func (h *SessionHandler) MarkNoShow(c *gin.Context) {
	sessionID, ok := h.authorizedSession(c, domain.RoleTrainer, domain.RoleAdmin)
	if !ok {
		return
	}
	session, err := h.sessions.MarkNoShow(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err, "Failed to mark session as no-show.")
		return
	}
	c.JSON(http.StatusOK, session)
}

// authorizedSession parses :sessionId and checks the caller takes part in the
// session under one of roles. Admins may act on any session.
func (h *SessionHandler) authorizedSession(c *gin.Context, roles ...domain.Role) (primitive.ObjectID, bool) {
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return primitive.NilObjectID, false
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return primitive.NilObjectID, false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return primitive.NilObjectID, false
	}

	session, err := h.sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err, "Failed to load session.")
		return primitive.NilObjectID, false
	}

	allowed := false
	for _, r := range roles {
		if r != role {
			continue
		}
		switch role {
		case domain.RoleAdmin:
			allowed = true
		case domain.RoleClient:
			allowed = session.ClientID == userID
		case domain.RoleTrainer:
			allowed = session.TrainerID == userID
		}
	}
	if !allowed {
		abortWithError(c, http.StatusForbidden, "Access denied: not a participant of this session.")
		return primitive.NilObjectID, false
	}
	return sessionID, true
}
