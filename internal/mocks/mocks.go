package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/auth"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userID, peerID int64, page, limit int) ([]models.Message, error) {
	args := m.Called(ctx, userID, peerID, page, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListThreadSummaries(ctx context.Context, userID int64, page, limit int) ([]models.ThreadSummary, error) {
	args := m.Called(ctx, userID, page, limit)
	var threads []models.ThreadSummary
	if val := args.Get(0); val != nil {
		threads = val.([]models.ThreadSummary)
	}
	return threads, args.Error(1)
}

func (m *MessageRepositoryMock) MarkThreadRead(ctx context.Context, fromUserID, toUserID int64) (int64, int64, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SearchUsers(ctx context.Context, query string, page, limit int) (models.UserPage, error) {
	args := m.Called(ctx, query, page, limit)
	var result models.UserPage
	if val := args.Get(0); val != nil {
		result = val.(models.UserPage)
	}
	return result, args.Error(1)
}

func (m *UserRepositoryMock) SetOnline(ctx context.Context, userID int64, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Verify(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ auth.TokenVerifier = (*VerifierMock)(nil)
