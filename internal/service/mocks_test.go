package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"github.com/stretchr/testify/mock"
)

type MockProviderClient struct {
	mock.Mock
	provider models.Provider
}

func newMockProviderClient(p models.Provider) *MockProviderClient {
	return &MockProviderClient{provider: p}
}

func (m *MockProviderClient) Provider() models.Provider {
	return m.provider
}

func (m *MockProviderClient) AuthorizationURL(attempt *models.AuthorizationAttempt) string {
	args := m.Called(attempt)
	return args.String(0)
}

func (m *MockProviderClient) ExchangeCode(ctx context.Context, code string, attempt *models.AuthorizationAttempt) (*models.SocialAccount, error) {
	args := m.Called(ctx, code, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func (m *MockProviderClient) FetchProfile(ctx context.Context, acc *models.SocialAccount) (*transfer.ProfileInfo, error) {
	args := m.Called(ctx, acc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.ProfileInfo), args.Error(1)
}

func (m *MockProviderClient) Publish(ctx context.Context, acc *models.SocialAccount, content *transfer.PublishContent) (*transfer.PublishResult, error) {
	args := m.Called(ctx, acc, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.PublishResult), args.Error(1)
}

type MockSocialAccountRepository struct {
	mock.Mock
}

func (m *MockSocialAccountRepository) Upsert(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	args := m.Called(ctx, tx, sa)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSocialAccountRepository) GetByPlatform(ctx context.Context, userID int64, platform models.Provider) (*models.SocialAccount, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) SetSelectedPage(ctx context.Context, userID int64, platform models.Provider, pageID string) error {
	args := m.Called(ctx, userID, platform, pageID)
	return args.Error(0)
}

func (m *MockSocialAccountRepository) Remove(ctx context.Context, userID int64, platform models.Provider) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	args := m.Called(ctx, tx, post)
	id := args.Get(0).(int64)
	if args.Error(1) == nil {
		post.ID = id
	}
	return id, args.Error(1)
}

func (m *MockPostRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) ClaimScheduled(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) CompletePublish(ctx context.Context, id int64, outcomes map[models.Provider]models.PublishOutcome) error {
	args := m.Called(ctx, id, outcomes)
	return args.Error(0)
}

func (m *MockPostRepository) ListDue(ctx context.Context, before time.Time) ([]*models.Post, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListStalePublishing(ctx context.Context, before time.Time) ([]*models.Post, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) AbandonPublishing(ctx context.Context, id int64, outcomes map[models.Provider]models.PublishOutcome) (bool, error) {
	args := m.Called(ctx, id, outcomes)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Remove(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCredentialSource struct {
	mock.Mock
}

func (m *MockCredentialSource) Credentials(ctx context.Context, userID int64) (map[models.Provider]*models.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Provider]*models.SocialAccount), args.Error(1)
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

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) SchedulePost(ctx context.Context, postID int64, at time.Time) error {
	args := m.Called(ctx, postID, at)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, bool, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	args := m.Called(ctx, tx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockMediaAssetRepository struct {
	mock.Mock
}

func (m *MockMediaAssetRepository) Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error) {
	args := m.Called(ctx, tx, ma)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMediaAssetRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MediaAsset), args.Error(1)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, file []byte, contentType string) error {
	args := m.Called(ctx, key, file, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}
