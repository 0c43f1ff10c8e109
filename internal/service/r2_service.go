package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ObjectStorage stores uploaded bytes and reports where they are served from.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, file []byte, contentType string) error
	PublicURL(key string) string
}

// R2Service is the Cloudflare R2 client. The S3 client is built once and
// shared by every caller.
type R2Service struct {
	config cfg.R2

	once   sync.Once
	mu     sync.RWMutex
	client *s3.Client
	err    error
}

func NewR2Service(c cfg.R2) *R2Service {
	return &R2Service{config: c}
}

// Init builds the client on first use. Later calls return the first result.
func (r *R2Service) Init(ctx context.Context) error {
	r.once.Do(func() {
		client, err := r.newClient(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.client, r.err = client, err
		if err != nil {
			slog.Error("r2 client init failed", "error", err.Error())
		}
	})

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

func (r *R2Service) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client != nil
}

func (r *R2Service) newClient(ctx context.Context) (*s3.Client, error) {
	if r.config.AccountID == "" || r.config.BucketName == "" {
		return nil, errors.New("r2 storage is not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.AccessKey, r.config.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.AccountID))
	}), nil
}

func (r *R2Service) Upload(ctx context.Context, key string, file []byte, contentType string) error {
	if err := r.Init(ctx); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	r.mu.RLock()
	client := r.client
	r.mu.RUnlock()

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *R2Service) PublicURL(key string) string {
	return strings.TrimRight(r.config.PublicURL, "/") + "/" + key
}

// MediaStore persists uploaded images and lists what a user has uploaded.
type MediaStore interface {
	// Store saves one image and returns its stable public URL.
	Store(ctx context.Context, userID int64, file []byte, contentType string) (string, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
}

type mediaStore struct {
	storage ObjectStorage
	ma      repository.MediaAssetRepository
}

func NewMediaStore(storage ObjectStorage, ma repository.MediaAssetRepository) MediaStore {
	return &mediaStore{storage: storage, ma: ma}
}

func (s *mediaStore) Store(ctx context.Context, userID int64, file []byte, contentType string) (string, error) {
	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if err := s.storage.Upload(ctx, key, file, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	ma := models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: contentType,
		FileSize: int64(len(file)),
		FileURL:  s.storage.PublicURL(key),
	}
	if _, err := s.ma.Create(ctx, nil, &ma); err != nil {
		return "", fmt.Errorf("record asset %s: %w", key, err)
	}
	return ma.FileURL, nil
}

func (s *mediaStore) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	if userID == 0 {
		return nil, validationErrorf("user is not valid")
	}

	assets, err := s.ma.ListByUserID(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list media assets", Err: err}
	}
	if assets == nil {
		assets = []*models.MediaAsset{}
	}
	return assets, nil
}
