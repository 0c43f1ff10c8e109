package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/repository"
	"github.com/maheshrc27/socialpro/internal/transfer"
)

// Scheduler hands a scheduled post to the deferred dispatcher.
type Scheduler interface {
	SchedulePost(ctx context.Context, postID int64, at time.Time) error
}

type PostService interface {
	// Submit validates the draft, uploads its images and either publishes it
	// to every selected provider or schedules it. It writes exactly one post.
	Submit(ctx context.Context, userID int64, draft *transfer.PostDraft) (*models.Post, error)
	// PublishScheduled runs the fan-out for a scheduled post once it is due.
	PublishScheduled(ctx context.Context, postID int64) error
	// EnqueueDue hands overdue scheduled posts back to the scheduler.
	EnqueueDue(ctx context.Context) (int, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr        repository.PostRepository
	creds     CredentialSource
	media     MediaStore
	publisher Publisher
	scheduler Scheduler
	now       func() time.Time
}

func NewPostService(
	pr repository.PostRepository,
	creds CredentialSource,
	media MediaStore,
	publisher Publisher,
	scheduler Scheduler) PostService {
	return &postService{
		pr:        pr,
		creds:     creds,
		media:     media,
		publisher: publisher,
		scheduler: scheduler,
		now:       time.Now,
	}
}

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {},
}

const scheduleLayout = "2006-01-02T15:04"

// ParseSchedule accepts RFC 3339 or the datetime-local form value. An empty
// string means publish now.
func ParseSchedule(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(scheduleLayout, raw, time.Local)
	if err != nil {
		return nil, validationErrorf("invalid scheduled time format: %s", raw)
	}
	return &t, nil
}

// ParseHashtags splits on whitespace and commas and prefixes each tag with #.
func ParseHashtags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimLeft(f, "#")
		if f == "" {
			continue
		}
		tags = append(tags, "#"+f)
	}
	return tags
}

type sniffedImage struct {
	data []byte
	mime string
}

func (s *postService) validate(draft *transfer.PostDraft) ([]sniffedImage, error) {
	if draft == nil {
		return nil, validationErrorf("post data is missing")
	}

	selected := 0
	for p, on := range draft.Platforms {
		if !on {
			continue
		}
		if _, err := models.ParseProvider(string(p)); err != nil {
			return nil, validationErrorf("unknown platform %q", p)
		}
		selected++
	}
	if selected == 0 {
		return nil, validationErrorf("no platform selected")
	}

	hasOverride := false
	for _, pc := range draft.PlatformSpecificContent {
		if strings.TrimSpace(pc.Content) != "" {
			hasOverride = true
		}
	}
	if strings.TrimSpace(draft.Content) == "" && !hasOverride && len(draft.Images) == 0 {
		return nil, validationErrorf("post content is empty")
	}

	if draft.Link != "" {
		u, err := url.Parse(draft.Link)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, validationErrorf("link must be an absolute http(s) URL")
		}
	}

	if draft.ScheduledFor != nil && !draft.ScheduledFor.After(s.now()) {
		return nil, validationErrorf("scheduled time must be in the future")
	}

	images := make([]sniffedImage, 0, len(draft.Images))
	for _, upload := range draft.Images {
		kind, err := filetype.Match(upload.Data)
		if err != nil || kind == types.Unknown {
			return nil, validationErrorf("unsupported file type: %s", upload.Name)
		}
		if _, ok := allowedImageTypes[kind.Extension]; !ok {
			return nil, validationErrorf("file type %s is not allowed", kind.Extension)
		}
		images = append(images, sniffedImage{data: upload.Data, mime: kind.MIME.Value})
	}
	return images, nil
}

func (s *postService) Submit(ctx context.Context, userID int64, draft *transfer.PostDraft) (*models.Post, error) {
	if userID == 0 {
		return nil, validationErrorf("user is not valid")
	}

	images, err := s.validate(draft)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	// Credentials come before uploads: a failure here must leave nothing in R2.
	var creds map[models.Provider]*models.SocialAccount
	if draft.ScheduledFor == nil {
		creds, err = s.creds.Credentials(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	imageURLs := make([]string, 0, len(images))
	for i, img := range images {
		fileURL, err := s.media.Store(ctx, userID, img.data, img.mime)
		if err != nil {
			slog.Info(err.Error())
			return nil, &StorageError{Op: fmt.Sprintf("upload image %d", i+1), Err: err}
		}
		imageURLs = append(imageURLs, fileURL)
	}

	platforms := make(map[models.Provider]bool, len(draft.Platforms))
	for p, on := range draft.Platforms {
		if on {
			platforms[p] = true
		}
	}

	overrides := make(map[models.Provider]models.PlatformContent)
	for p, pc := range draft.PlatformSpecificContent {
		if strings.TrimSpace(pc.Content) != "" {
			overrides[p] = pc
		}
	}

	post := &models.Post{
		UserID:                  userID,
		Content:                 strings.TrimSpace(draft.Content),
		Images:                  imageURLs,
		Link:                    draft.Link,
		Location:                draft.Location,
		Hashtags:                draft.Hashtags,
		Platforms:               platforms,
		PlatformSpecificContent: overrides,
		ScheduledFor:            draft.ScheduledFor,
		PlatformResponses:       map[models.Provider]models.PublishOutcome{},
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}

	if draft.ScheduledFor != nil {
		return s.schedule(ctx, post)
	}

	post.PlatformResponses = s.publisher.Publish(ctx, post, creds)
	post.Status = models.PostStatusPublished

	if _, err := s.pr.Create(ctx, nil, post); err != nil {
		return nil, &StorageError{Op: "create post", Err: err}
	}

	slog.Info("post published", "post_id", post.ID, "user_id", userID, "platforms", len(post.PlatformResponses))
	return post, nil
}

func (s *postService) schedule(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.Status = models.PostStatusScheduled

	if _, err := s.pr.Create(ctx, nil, post); err != nil {
		return nil, &StorageError{Op: "create post", Err: err}
	}

	// The sweep re-enqueues anything the scheduler misses here.
	if err := s.scheduler.SchedulePost(ctx, post.ID, *post.ScheduledFor); err != nil {
		slog.Error("failed to enqueue scheduled post", "post_id", post.ID, "error", err.Error())
	}
	return post, nil
}

func (s *postService) PublishScheduled(ctx context.Context, postID int64) error {
	claimed, err := s.pr.ClaimScheduled(ctx, postID)
	if err != nil {
		return &StorageError{Op: "claim post", Err: err}
	}
	if !claimed {
		slog.Info("scheduled post already handled", "post_id", postID)
		return nil
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return &StorageError{Op: "get post", Err: err}
	}
	if post == nil {
		return nil
	}

	outcomes := map[models.Provider]models.PublishOutcome{}
	creds, err := s.creds.Credentials(ctx, post.UserID)
	if err != nil {
		slog.Error("credentials unavailable for scheduled post", "post_id", postID, "error", err.Error())
		for _, p := range post.SelectedPlatforms() {
			outcomes[p] = models.PublishOutcome{Success: false, Error: "credentials unavailable"}
		}
	} else {
		outcomes = s.publisher.Publish(ctx, post, creds)
	}

	if err := s.pr.CompletePublish(ctx, postID, outcomes); err != nil {
		return &StorageError{Op: "complete post", Err: err}
	}

	slog.Info("scheduled post published", "post_id", postID, "platforms", len(outcomes))
	return nil
}

// stalePublishingAfter bounds how long a claimed post may sit in publishing
// before the sweep gives up on it.
const stalePublishingAfter = 30 * time.Minute

// interruptedMessage is recorded for every platform of a post whose publish
// never completed. Such posts are not retried.
const interruptedMessage = "publishing was interrupted"

func (s *postService) EnqueueDue(ctx context.Context) (int, error) {
	s.closeStalePublishing(ctx)

	posts, err := s.pr.ListDue(ctx, s.now())
	if err != nil {
		return 0, &StorageError{Op: "list due posts", Err: err}
	}

	enqueued := 0
	for _, post := range posts {
		if post.ScheduledFor == nil {
			continue
		}
		if err := s.scheduler.SchedulePost(ctx, post.ID, *post.ScheduledFor); err != nil {
			slog.Info("unable to enqueue due post", "post_id", post.ID, "error", err.Error())
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

func (s *postService) closeStalePublishing(ctx context.Context) {
	stale, err := s.pr.ListStalePublishing(ctx, s.now().Add(-stalePublishingAfter))
	if err != nil {
		slog.Info("unable to list stale publishing posts", "error", err.Error())
		return
	}

	for _, post := range stale {
		outcomes := make(map[models.Provider]models.PublishOutcome, len(post.Platforms))
		for _, p := range post.SelectedPlatforms() {
			outcomes[p] = models.PublishOutcome{Success: false, Error: interruptedMessage}
		}

		closed, err := s.pr.AbandonPublishing(ctx, post.ID, outcomes)
		if err != nil {
			slog.Info("unable to close stale post", "post_id", post.ID, "error", err.Error())
			continue
		}
		if closed {
			slog.Error("scheduled post interrupted while publishing", "post_id", post.ID)
		}
	}
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	if userID == 0 {
		return nil, validationErrorf("user is not valid")
	}
	if postID == 0 {
		return nil, validationErrorf("post id is not valid")
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, &StorageError{Op: "check post", Err: err}
	}
	if !isValid {
		return nil, ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, &StorageError{Op: "get post", Err: err}
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	if userID == 0 {
		return nil, validationErrorf("user is not valid")
	}

	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list posts", Err: err}
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if userID == 0 {
		return validationErrorf("user is not valid")
	}
	if postID == 0 {
		return validationErrorf("post_id is not valid")
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return &StorageError{Op: "check post", Err: err}
	}
	if !isValid {
		return ErrPostNotFound
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return &StorageError{Op: "remove post", Err: err}
	}
	return nil
}
