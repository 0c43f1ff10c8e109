package handlers

import (
	"context"

	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"github.com/stretchr/testify/mock"
)

type MockPlatformService struct {
	mock.Mock
}

func (m *MockPlatformService) Credentials(ctx context.Context, userID int64) (map[models.Provider]*models.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Provider]*models.SocialAccount), args.Error(1)
}

func (m *MockPlatformService) BeginConnect(ctx context.Context, userID int64, platform models.Provider) (string, error) {
	args := m.Called(ctx, userID, platform)
	return args.String(0), args.Error(1)
}

func (m *MockPlatformService) CompleteConnect(ctx context.Context, userID int64, platform models.Provider, cb *transfer.OAuthCallback) (*models.SocialAccount, error) {
	args := m.Called(ctx, userID, platform, cb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func (m *MockPlatformService) AbandonConnect(ctx context.Context, platform models.Provider, state string) error {
	args := m.Called(ctx, platform, state)
	return args.Error(0)
}

func (m *MockPlatformService) ConnectionView(ctx context.Context, userID int64) (*transfer.ConnectionView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.ConnectionView), args.Error(1)
}

func (m *MockPlatformService) Profile(ctx context.Context, userID int64, platform models.Provider) (*transfer.ProfileInfo, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.ProfileInfo), args.Error(1)
}

func (m *MockPlatformService) SelectPage(ctx context.Context, userID int64, platform models.Provider, pageID string) error {
	args := m.Called(ctx, userID, platform, pageID)
	return args.Error(0)
}

func (m *MockPlatformService) Disconnect(ctx context.Context, userID int64, platform models.Provider) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

func (m *MockPlatformService) InstagramMedia(ctx context.Context, userID int64, limit int) ([]transfer.InstagramMedia, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.InstagramMedia), args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Submit(ctx context.Context, userID int64, draft *transfer.PostDraft) (*models.Post, error) {
	args := m.Called(ctx, userID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) PublishScheduled(ctx context.Context, postID int64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockPostService) EnqueueDue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) Remove(ctx context.Context, userID, postID int64) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) LoginURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockAuthService) LoginCallback(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Store(ctx context.Context, userID int64, file []byte, contentType string) (string, error) {
	args := m.Called(ctx, userID, file, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MediaAsset), args.Error(1)
}
