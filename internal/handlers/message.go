package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

// MessageHandler serves the read path against the durable message store.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, userRepo: userRepo, audit: audit}
}

// ListThreads returns a page of conversation summaries for the caller, newest
// activity first.
func (h *MessageHandler) ListThreads(c *gin.Context) {
	userID := currentUserID(c)
	page, limit := pageParams(c, 20)

	threads, err := h.messageRepo.ListThreadSummaries(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load threads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page, "limit": limit, "threads": threads})
}

// GetThreadMessages returns a page of the conversation with one user, newest
// first; clients re-sort ascending for display.
func (h *MessageHandler) GetThreadMessages(c *gin.Context) {
	peerID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := currentUserID(c)
	page, limit := pageParams(c, 30)

	msgs, err := h.messageRepo.ListConversation(c.Request.Context(), userID, peerID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page, "limit": limit, "messages": msgs})
}

// MarkThreadRead flips the read flag on every unread message a sender has
// addressed to the caller, returning how many rows matched and changed.
func (h *MessageHandler) MarkThreadRead(c *gin.Context) {
	var req struct {
		FromUserID int64 `json:"from_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	matched, modified, err := h.messageRepo.MarkThreadRead(c.Request.Context(), req.FromUserID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark thread read"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("thread %d->%d marked read (%d messages)", req.FromUserID, userID, modified),
		requestIDFromContext(c), &userID)

	c.JSON(http.StatusOK, gin.H{"matched": matched, "modified": modified})
}

func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}

func currentUserID(c *gin.Context) int64 {
	if val, ok := c.Get("userID"); ok {
		if id, ok := val.(int64); ok {
			return id
		}
	}
	return 0
}
