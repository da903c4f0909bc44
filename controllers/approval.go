package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"memo-approval-api/config"
	"memo-approval-api/models"
	"memo-approval-api/services"

	"github.com/gin-gonic/gin"
)

type ApproveRequest struct {
	MemoID  int    `json:"memo_id" binding:"required"`
	Role    string `json:"role" binding:"required"`
	Comment string `json:"comment"`
}

// RejectRequest keeps the legacy memoId key the frontend sends on rejection.
type RejectRequest struct {
	MemoID  int    `json:"memoId" binding:"required"`
	Role    string `json:"role" binding:"required"`
	Comment string `json:"comment"`
}

// ApproveMemo records a role's approval of a memo.
func ApproveMemo(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	applyDecision(c, req.MemoID, req.Role, models.ActionApprove, req.Comment)
}

// RejectMemo records a role's rejection of a memo.
func RejectMemo(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	applyDecision(c, req.MemoID, req.Role, models.ActionReject, req.Comment)
}

// ApproveDirector is the legacy single-purpose director shortcut. It runs
// through the same state machine as /approve, so a standing rejection still
// blocks it.
func ApproveDirector(c *gin.Context) {
	memoID, err := strconv.Atoi(c.Param("memo_id"))
	if err != nil || memoID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid memo ID"})
		return
	}
	applyDecision(c, memoID, models.RoleDirector.String(), models.ActionApprove, "")
}

func applyDecision(c *gin.Context, memoID int, roleName string, action models.Action, comment string) {
	role, ok := models.ParseRole(roleName)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown role '%s'", roleName)})
		return
	}

	result, err := services.NewApprovalService(config.DB).Apply(memoID, role, action, comment)
	if err != nil {
		var conflict *services.ConflictError
		switch {
		case errors.Is(err, services.ErrMemoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Memo not found"})
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("Memo already rejected by %s", conflict.RejectedBy.DisplayName()),
			})
		case errors.Is(err, services.ErrUnknownRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		default:
			log.Printf("Failed to apply %s by %s on memo %d: %v", action, role, memoID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save decision"})
		}
		return
	}

	verb := "approval"
	if action == models.ActionReject {
		verb = "rejection"
	}

	// The transition is committed; notification is best-effort from here on.
	imageURL := services.Store.SignedURL(result.ImageFilename, time.Hour)
	if err := services.NotifyDecision(result.Email, role, action, imageURL); err != nil {
		log.Printf("Decision saved but notification failed for memo %d: %v", memoID, err)
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("%s %s successful, but the notification could not be sent", role.DisplayName(), verb),
			"status":  result.Status,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s %s successful. Notification sent to %s", role.DisplayName(), verb, result.Email),
		"status":  result.Status,
	})
}
