package controllers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"memo-approval-api/config"
	"memo-approval-api/models"
	"memo-approval-api/services"
	"memo-approval-api/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// MaxMemoSize is the artifact size limit. Oversized submissions are a
// terminal outcome, not an error: no record is created and the submitter is
// told by mail.
const MaxMemoSize = 5 * 1024 * 1024

// Mail senders, swappable in tests.
var (
	notifySubmission = services.NotifySubmission
	notifyTooLarge   = services.NotifyTooLarge
)

// UploadMemo handles memo submission intake: validate, store the artifact,
// create the memo record with every approval triple untouched, then fan out
// the submitted notification to each destination role.
func UploadMemo(c *gin.Context) {
	person := utils.SanitizeInput(c.PostForm("person"))
	if person == "" {
		person = c.GetString("username")
	}
	department := utils.SanitizeInput(c.PostForm("department"))
	destination := strings.TrimSpace(c.PostForm("destination"))
	email := strings.TrimSpace(c.PostForm("email"))

	if person == "" || department == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submitter and department are required"})
		return
	}
	if !utils.ValidateEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid contact email is required"})
		return
	}

	destNames := models.ParseDestinationList(destination)
	if len(destNames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one destination is required"})
		return
	}

	fileHeader, err := c.FormFile("memo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Memo file is required"})
		return
	}
	if fileHeader.Size > MaxMemoSize {
		rejectTooLarge(c, person, email)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read memo file"})
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxMemoSize+1))
	file.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read memo file"})
		return
	}
	// Re-check after reading: the multipart size header is client-controlled.
	if len(data) > MaxMemoSize {
		rejectTooLarge(c, person, email)
		return
	}

	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Memo must be an image"})
		return
	}

	// Store the artifact before touching the database so a failed upload
	// leaves no partial memo record behind.
	stored, err := services.Store.Save(bytes.NewReader(data), fileHeader.Filename)
	if err != nil {
		log.Printf("Failed to store memo artifact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store memo"})
		return
	}

	destJSON, _ := json.Marshal(destNames)
	memo := models.Memo{
		SubmittedBy:   person,
		Department:    department,
		Destination:   string(destJSON),
		Email:         email,
		ImageFilename: stored,
		Status:        services.StatusPendingDirectorLabel,
		CreatedAt:     time.Now(),
	}
	if err := config.DB.Create(&memo).Error; err != nil {
		log.Printf("Failed to create memo record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save memo"})
		return
	}

	notified := notifyDestinations(&memo, destNames)

	message := "Memo uploaded, but no email sent: no matching departments found."
	if len(notified) > 0 {
		message = "Memo uploaded and email sent to: " + strings.Join(notified, ", ") + "."
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        message,
		"memo_id":        memo.ID,
		"image_filename": stored,
		"notified":       notified,
	})
}

// notifyDestinations mails one registered recipient per destination role.
// Unknown role names and roles without a recipient are skipped silently; only
// roles whose mail went out are reported.
func notifyDestinations(memo *models.Memo, destNames []string) []string {
	notified := make([]string, 0, len(destNames))
	for _, name := range destNames {
		role, ok := models.ParseRole(name)
		if !ok {
			continue
		}
		var recipient models.User
		if err := config.DB.
			Where("LOWER(role) = ? AND delete_at IS NULL", role.String()).
			First(&recipient).Error; err != nil {
			continue
		}
		if recipient.Email == "" {
			continue
		}
		if err := notifySubmission(recipient.Email, role, memo.SubmittedBy, memo.Department); err != nil {
			log.Printf("Failed to notify %s about memo %d: %v", role, memo.ID, err)
			continue
		}
		notified = append(notified, role.DisplayName())
	}
	return notified
}

func rejectTooLarge(c *gin.Context, person, email string) {
	if err := notifyTooLarge(email, person); err != nil {
		log.Printf("Failed to send size-limit notice to %s: %v", email, err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Memo is too large. No record was created, and the notification could not be sent.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Memo is too large. Notification sent to user."})
}

// ViewMemos lists every memo with its approval narrative, comments and a
// signed artifact link. An empty store returns an empty list.
func ViewMemos(c *gin.Context) {
	var memos []models.Memo
	if err := config.DB.Order("created_at DESC").Find(&memos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memos"})
		return
	}

	data := make([]gin.H, 0, len(memos))
	for i := range memos {
		memo := &memos[i]
		data = append(data, gin.H{
			"id":              memo.ID,
			"submitted_by":    memo.SubmittedBy,
			"department":      memo.Department,
			"destination":     models.ParseDestinationList(memo.Destination),
			"status":          memo.Status,
			"image_url":       services.Store.SignedURL(memo.ImageFilename, time.Hour),
			"created_at":      services.FormatTimestamp(memo.CreatedAt),
			"approval_status": services.ApprovalNarrative(memo),
			"comments":        services.CommentsByRole(memo),
		})
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK", "data": data})
}

// ServeUpload serves a stored artifact after validating its signed link.
func ServeUpload(c *gin.Context) {
	name := c.Param("filename")
	if !services.Store.Verify(name, c.Query("expires"), c.Query("sig")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired link"})
		return
	}

	rc, err := services.Store.Open(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}

// DownloadAll serves a ZIP of every stored memo artifact. The archive is
// built in memory before any byte is written, so a broken artifact surfaces
// as a clean error instead of truncated ZIP bytes after a 200 header.
func DownloadAll(c *gin.Context) {
	var filenames []string
	if err := config.DB.Model(&models.Memo{}).Pluck("image_filename", &filenames).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memos"})
		return
	}
	if len(filenames) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No memos found"})
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	seen := make(map[string]bool, len(filenames))
	added := 0
	for _, name := range filenames {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		rc, err := services.Store.Open(name)
		if err != nil {
			log.Printf("Skipping missing artifact %s: %v", name, err)
			continue
		}
		w, err := zw.Create(name)
		if err == nil {
			_, err = io.Copy(w, rc)
		}
		rc.Close()
		if err != nil {
			log.Printf("Failed to archive %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build archive"})
			return
		}
		added++
	}
	if err := zw.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build archive"})
		return
	}
	if added == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No stored artifacts found"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="all_memos.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
