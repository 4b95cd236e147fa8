package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/telemetry"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(1))
		c.Next()
	})
	r.GET("/messages/thread/me", handler.ListThreads)
	r.GET("/messages/thread/:user_id/me", handler.GetThreadMessages)
	r.POST("/messages/thread/mark-as-read", handler.MarkThreadRead)
	return r
}

func TestListThreadsSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	messageRepo.On("ListThreadSummaries", mock.Anything, int64(1), 1, 20).Return([]models.ThreadSummary{
		{
			User:        models.User{ID: 2, Fullname: "bob"},
			LastMessage: models.Message{ID: 9, SenderID: 2, ReceiverID: 1, Content: "hey"},
			UnreadCount: 3,
		},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/thread/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Threads []models.ThreadSummary `json:"threads"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Threads, 1)
	assert.Equal(t, int64(2), resp.Threads[0].User.ID)
	assert.Equal(t, 3, resp.Threads[0].UnreadCount)
	messageRepo.AssertExpectations(t)
}

func TestListThreadsRepoError(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	messageRepo.On("ListThreadSummaries", mock.Anything, int64(1), 1, 20).Return(([]models.ThreadSummary)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/thread/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestGetThreadMessagesSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	now := time.Now()
	messageRepo.On("ListConversation", mock.Anything, int64(1), int64(2), 1, 30).Return([]models.Message{
		{ID: 8, SenderID: 2, ReceiverID: 1, Content: "later", CreatedAt: now},
		{ID: 7, SenderID: 1, ReceiverID: 2, Content: "earlier", CreatedAt: now.Add(-time.Minute)},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/thread/2/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	// Newest first, as served by the store.
	assert.Equal(t, int64(8), resp.Messages[0].ID)
	messageRepo.AssertExpectations(t)
}

func TestGetThreadMessagesInvalidID(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/messages/thread/abc/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetThreadMessagesPaging(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	messageRepo.On("ListConversation", mock.Anything, int64(1), int64(2), 3, 10).Return([]models.Message{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/thread/2/me?page=3&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestMarkThreadReadSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	messageRepo.On("MarkThreadRead", mock.Anything, int64(2), int64(1)).Return(int64(4), int64(4), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/thread/mark-as-read", bytes.NewBufferString(`{"from_user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(4), resp["matched"])
	assert.Equal(t, int64(4), resp["modified"])
	messageRepo.AssertExpectations(t)
}

func TestMarkThreadReadEmitsAudit(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	publisher := new(mocks.PublisherMock)
	audit := telemetry.NewAuditEmitter(publisher, "audit.messenger", "messenger-service", "test")
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), audit)
	router := setupMessageRouter(handler)

	messageRepo.On("MarkThreadRead", mock.Anything, int64(2), int64(1)).Return(int64(1), int64(1), nil).Once()
	publisher.On("Publish", mock.Anything, "audit.messenger", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		return ok && envelope.EventType == "audit_log" && envelope.UserID != nil && *envelope.UserID == int64(1)
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/thread/mark-as-read", bytes.NewBufferString(`{"from_user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestMarkThreadReadMissingSender(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages/thread/mark-as-read", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
