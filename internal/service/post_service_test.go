package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1}
	pdfBytes  = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
)

type postFixture struct {
	pr        *MockPostRepository
	creds     *MockCredentialSource
	media     *MockMediaStore
	scheduler *MockScheduler
	clients   map[models.Provider]*MockProviderClient
	svc       *postService
	now       time.Time
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	f := &postFixture{
		pr:        new(MockPostRepository),
		creds:     new(MockCredentialSource),
		media:     new(MockMediaStore),
		scheduler: new(MockScheduler),
		clients:   map[models.Provider]*MockProviderClient{},
		now:       time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	clients := map[models.Provider]ProviderClient{}
	for _, p := range models.Providers {
		c := newMockProviderClient(p)
		f.clients[p] = c
		clients[p] = c
	}

	svc := NewPostService(f.pr, f.creds, f.media, NewPublisher(clients, 2), f.scheduler).(*postService)
	svc.now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

func (f *postFixture) assertUntouched(t *testing.T) {
	t.Helper()
	f.pr.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	f.creds.AssertNotCalled(t, "Credentials", mock.Anything, mock.Anything)
	f.media.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.scheduler.AssertNotCalled(t, "SchedulePost", mock.Anything, mock.Anything, mock.Anything)
	for _, c := range f.clients {
		c.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	}
}

func selected(ps ...models.Provider) map[models.Provider]bool {
	out := map[models.Provider]bool{}
	for _, p := range ps {
		out[p] = true
	}
	return out
}

func TestSubmitValidation(t *testing.T) {
	past := time.Date(2024, 6, 1, 8, 59, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		userID  int64
		draft   *transfer.PostDraft
		wantMsg string
	}{
		{
			name:    "missing user",
			userID:  0,
			draft:   &transfer.PostDraft{Content: "hi", Platforms: selected(models.ProviderTwitter)},
			wantMsg: "user is not valid",
		},
		{
			name:    "no platform",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "hi"},
			wantMsg: "no platform selected",
		},
		{
			name:    "all platforms unchecked",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "hi", Platforms: map[models.Provider]bool{models.ProviderTwitter: false}},
			wantMsg: "no platform selected",
		},
		{
			name:    "unknown platform",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "hi", Platforms: map[models.Provider]bool{"myspace": true}},
			wantMsg: `unknown platform "myspace"`,
		},
		{
			name:    "empty content",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "   ", Platforms: selected(models.ProviderTwitter)},
			wantMsg: "post content is empty",
		},
		{
			name:    "relative link",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "hi", Link: "/about", Platforms: selected(models.ProviderTwitter)},
			wantMsg: "link must be an absolute http(s) URL",
		},
		{
			name:    "non http link",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "hi", Link: "ftp://files.example.com/a", Platforms: selected(models.ProviderTwitter)},
			wantMsg: "link must be an absolute http(s) URL",
		},
		{
			name:    "schedule in the past",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "hi", Platforms: selected(models.ProviderTwitter), ScheduledFor: &past},
			wantMsg: "scheduled time must be in the future",
		},
		{
			name:    "schedule at now",
			userID:  1,
			draft:   &transfer.PostDraft{Content: "hi", Platforms: selected(models.ProviderTwitter), ScheduledFor: &now},
			wantMsg: "scheduled time must be in the future",
		},
		{
			name:   "unknown file",
			userID: 1,
			draft: &transfer.PostDraft{
				Content:   "hi",
				Platforms: selected(models.ProviderTwitter),
				Images:    []transfer.Upload{{Name: "notes.txt", Data: []byte("plain text")}},
			},
			wantMsg: "unsupported file type: notes.txt",
		},
		{
			name:   "disallowed file",
			userID: 1,
			draft: &transfer.PostDraft{
				Content:   "hi",
				Platforms: selected(models.ProviderTwitter),
				Images:    []transfer.Upload{{Name: "doc.pdf", Data: pdfBytes}},
			},
			wantMsg: "file type pdf is not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostFixture(t)

			post, err := f.svc.Submit(context.Background(), tt.userID, tt.draft)

			assert.Nil(t, post)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantMsg, ve.Msg)
			f.assertUntouched(t)
		})
	}
}

func TestSubmitAcceptsOverrideOnlyAndImageOnly(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	f.creds.On("Credentials", mock.Anything, int64(1)).Return(map[models.Provider]*models.SocialAccount{}, nil)
	f.pr.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	f.media.On("Store", mock.Anything, int64(1), pngBytes, "image/png").Return("https://cdn/x.png", nil)

	_, err := f.svc.Submit(ctx, 1, &transfer.PostDraft{
		Platforms: selected(models.ProviderTwitter),
		PlatformSpecificContent: map[models.Provider]models.PlatformContent{
			models.ProviderTwitter: {Content: "only here"},
		},
	})
	assert.NoError(t, err)

	_, err = f.svc.Submit(ctx, 1, &transfer.PostDraft{
		Platforms: selected(models.ProviderInstagram),
		Images:    []transfer.Upload{{Name: "a.png", Data: pngBytes}},
	})
	assert.NoError(t, err)
}

func TestSubmitScheduledDefersPublishing(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	at := f.now.Add(2 * time.Hour)

	var created *models.Post
	f.pr.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*models.Post)
		}).
		Return(int64(77), nil).Once()
	f.scheduler.On("SchedulePost", mock.Anything, int64(77), at).Return(nil).Once()

	post, err := f.svc.Submit(ctx, 4, &transfer.PostDraft{
		Content:      "later",
		Hashtags:     []string{"#soon"},
		Platforms:    selected(models.ProviderTwitter, models.ProviderFacebook),
		ScheduledFor: &at,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(77), post.ID)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Empty(t, post.PlatformResponses)
	require.NotNil(t, post.ScheduledFor)
	assert.True(t, at.Equal(*post.ScheduledFor))
	assert.Same(t, post, created)

	f.pr.AssertNumberOfCalls(t, "Create", 1)
	f.scheduler.AssertExpectations(t)
	f.creds.AssertNotCalled(t, "Credentials", mock.Anything, mock.Anything)
	for _, c := range f.clients {
		c.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestSubmitScheduledSurvivesEnqueueFailure(t *testing.T) {
	f := newPostFixture(t)
	at := f.now.Add(time.Hour)

	f.pr.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(3), nil).Once()
	f.scheduler.On("SchedulePost", mock.Anything, int64(3), at).Return(errors.New("redis down")).Once()

	post, err := f.svc.Submit(context.Background(), 4, &transfer.PostDraft{
		Content:      "later",
		Platforms:    selected(models.ProviderTwitter),
		ScheduledFor: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
}

func TestSubmitPartialFailureWritesOnce(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	twAcc := &models.SocialAccount{Platform: models.ProviderTwitter, AccessToken: "tw"}
	liAcc := &models.SocialAccount{Platform: models.ProviderLinkedIn, AccessToken: "li", AccountID: "m1"}
	f.creds.On("Credentials", mock.Anything, int64(9)).Return(map[models.Provider]*models.SocialAccount{
		models.ProviderTwitter:  twAcc,
		models.ProviderLinkedIn: liAcc,
	}, nil).Once()

	f.clients[models.ProviderTwitter].On("Publish", mock.Anything, twAcc, mock.Anything).
		Return(&transfer.PublishResult{PostID: "tweet-1"}, nil).Once()
	f.clients[models.ProviderLinkedIn].On("Publish", mock.Anything, liAcc, mock.Anything).
		Return(nil, &PublishError{Provider: models.ProviderLinkedIn, Msg: "Not enough permissions"}).Once()

	f.pr.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(12), nil).Once()

	post, err := f.svc.Submit(ctx, 9, &transfer.PostDraft{
		Content:   "hello",
		Platforms: selected(models.ProviderTwitter, models.ProviderLinkedIn),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.Equal(t, map[models.Provider]models.PublishOutcome{
		models.ProviderTwitter:  {Success: true, PostID: "tweet-1"},
		models.ProviderLinkedIn: {Success: false, Error: "Not enough permissions"},
	}, post.PlatformResponses)

	f.pr.AssertNumberOfCalls(t, "Create", 1)
	f.clients[models.ProviderTwitter].AssertExpectations(t)
	f.clients[models.ProviderLinkedIn].AssertExpectations(t)
}

func TestSubmitSkipsUnconnectedPlatform(t *testing.T) {
	f := newPostFixture(t)

	twAcc := &models.SocialAccount{Platform: models.ProviderTwitter, AccessToken: "tw"}
	f.creds.On("Credentials", mock.Anything, int64(9)).Return(map[models.Provider]*models.SocialAccount{
		models.ProviderTwitter: twAcc,
	}, nil).Once()
	f.clients[models.ProviderTwitter].On("Publish", mock.Anything, twAcc, mock.Anything).
		Return(&transfer.PublishResult{PostID: "t"}, nil).Once()
	f.pr.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	post, err := f.svc.Submit(context.Background(), 9, &transfer.PostDraft{
		Content:   "hello",
		Platforms: selected(models.ProviderTwitter, models.ProviderFacebook),
	})
	require.NoError(t, err)

	assert.Contains(t, post.PlatformResponses, models.ProviderTwitter)
	assert.NotContains(t, post.PlatformResponses, models.ProviderFacebook)
	f.clients[models.ProviderFacebook].AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitUploadsImagesInOrder(t *testing.T) {
	f := newPostFixture(t)

	igAcc := &models.SocialAccount{Platform: models.ProviderInstagram, AccessToken: "ig"}
	f.creds.On("Credentials", mock.Anything, int64(2)).Return(map[models.Provider]*models.SocialAccount{
		models.ProviderInstagram: igAcc,
	}, nil).Once()

	f.media.On("Store", mock.Anything, int64(2), pngBytes, "image/png").Return("https://cdn/1.png", nil).Once()
	f.media.On("Store", mock.Anything, int64(2), jpegBytes, "image/jpeg").Return("https://cdn/2.jpg", nil).Once()

	f.clients[models.ProviderInstagram].On("Publish", mock.Anything, igAcc, mock.MatchedBy(func(c *transfer.PublishContent) bool {
		return assert.ObjectsAreEqual([]string{"https://cdn/1.png", "https://cdn/2.jpg"}, c.ImageURLs) &&
			c.Text == "look #a #b" && c.Link == "https://example.com"
	})).Return(&transfer.PublishResult{PostID: "ig-1"}, nil).Once()
	f.pr.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(5), nil).Once()

	post, err := f.svc.Submit(context.Background(), 2, &transfer.PostDraft{
		Content:   "look",
		Link:      "https://example.com",
		Hashtags:  []string{"#a", "#b"},
		Platforms: selected(models.ProviderInstagram),
		Images: []transfer.Upload{
			{Name: "1.png", Data: pngBytes},
			{Name: "2.jpg", Data: jpegBytes},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://cdn/1.png", "https://cdn/2.jpg"}, post.Images)
	assert.True(t, post.PlatformResponses[models.ProviderInstagram].Success)
	f.clients[models.ProviderInstagram].AssertExpectations(t)
}

func TestSubmitUploadFailure(t *testing.T) {
	f := newPostFixture(t)
	f.creds.On("Credentials", mock.Anything, int64(2)).Return(map[models.Provider]*models.SocialAccount{}, nil).Once()
	f.media.On("Store", mock.Anything, int64(2), pngBytes, "image/png").Return("", errors.New("bucket gone")).Once()

	_, err := f.svc.Submit(context.Background(), 2, &transfer.PostDraft{
		Content:   "x",
		Platforms: selected(models.ProviderTwitter),
		Images:    []transfer.Upload{{Name: "1.png", Data: pngBytes}},
	})

	var se *StorageError
	require.ErrorAs(t, err, &se)
	f.pr.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	for _, c := range f.clients {
		c.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestSubmitCredentialsFailureUploadsNothing(t *testing.T) {
	f := newPostFixture(t)
	f.creds.On("Credentials", mock.Anything, int64(2)).
		Return(nil, &StorageError{Op: "list social accounts", Err: errors.New("db down")}).Once()

	_, err := f.svc.Submit(context.Background(), 2, &transfer.PostDraft{
		Content:   "x",
		Platforms: selected(models.ProviderInstagram),
		Images:    []transfer.Upload{{Name: "1.png", Data: pngBytes}},
	})

	var se *StorageError
	require.ErrorAs(t, err, &se)
	f.media.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.pr.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishScheduled(t *testing.T) {
	ctx := context.Background()

	t.Run("already claimed", func(t *testing.T) {
		f := newPostFixture(t)
		f.pr.On("ClaimScheduled", mock.Anything, int64(8)).Return(false, nil).Once()

		require.NoError(t, f.svc.PublishScheduled(ctx, 8))
		f.pr.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		f.pr.AssertNotCalled(t, "CompletePublish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publishes and completes", func(t *testing.T) {
		f := newPostFixture(t)
		post := &models.Post{ID: 8, UserID: 3, Content: "due", Platforms: selected(models.ProviderTwitter)}
		acc := &models.SocialAccount{Platform: models.ProviderTwitter, AccessToken: "tw"}

		f.pr.On("ClaimScheduled", mock.Anything, int64(8)).Return(true, nil).Once()
		f.pr.On("GetByID", mock.Anything, int64(8)).Return(post, nil).Once()
		f.creds.On("Credentials", mock.Anything, int64(3)).Return(map[models.Provider]*models.SocialAccount{
			models.ProviderTwitter: acc,
		}, nil).Once()
		f.clients[models.ProviderTwitter].On("Publish", mock.Anything, acc, mock.Anything).
			Return(&transfer.PublishResult{PostID: "t-8"}, nil).Once()
		f.pr.On("CompletePublish", mock.Anything, int64(8), map[models.Provider]models.PublishOutcome{
			models.ProviderTwitter: {Success: true, PostID: "t-8"},
		}).Return(nil).Once()

		require.NoError(t, f.svc.PublishScheduled(ctx, 8))
		f.pr.AssertExpectations(t)
	})

	t.Run("credentials unavailable", func(t *testing.T) {
		f := newPostFixture(t)
		post := &models.Post{ID: 8, UserID: 3, Platforms: selected(models.ProviderTwitter, models.ProviderFacebook)}

		f.pr.On("ClaimScheduled", mock.Anything, int64(8)).Return(true, nil).Once()
		f.pr.On("GetByID", mock.Anything, int64(8)).Return(post, nil).Once()
		f.creds.On("Credentials", mock.Anything, int64(3)).Return(nil, errors.New("db down")).Once()
		f.pr.On("CompletePublish", mock.Anything, int64(8), map[models.Provider]models.PublishOutcome{
			models.ProviderTwitter:  {Success: false, Error: "credentials unavailable"},
			models.ProviderFacebook: {Success: false, Error: "credentials unavailable"},
		}).Return(nil).Once()

		require.NoError(t, f.svc.PublishScheduled(ctx, 8))
		f.pr.AssertExpectations(t)
	})

	t.Run("claim error", func(t *testing.T) {
		f := newPostFixture(t)
		f.pr.On("ClaimScheduled", mock.Anything, int64(8)).Return(false, errors.New("db down")).Once()

		var se *StorageError
		assert.ErrorAs(t, f.svc.PublishScheduled(ctx, 8), &se)
	})
}

func TestEnqueueDue(t *testing.T) {
	f := newPostFixture(t)
	a := f.now.Add(-time.Minute)
	b := f.now.Add(-time.Hour)

	f.pr.On("ListStalePublishing", mock.Anything, f.now.Add(-stalePublishingAfter)).Return(nil, nil).Once()
	f.pr.On("ListDue", mock.Anything, f.now).Return([]*models.Post{
		{ID: 1, ScheduledFor: &a},
		{ID: 2, ScheduledFor: &b},
		{ID: 3},
	}, nil).Once()
	f.scheduler.On("SchedulePost", mock.Anything, int64(1), a).Return(nil).Once()
	f.scheduler.On("SchedulePost", mock.Anything, int64(2), b).Return(errors.New("busy")).Once()

	n, err := f.svc.EnqueueDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.scheduler.AssertExpectations(t)
}

func TestEnqueueDueClosesStalePublishing(t *testing.T) {
	f := newPostFixture(t)

	f.pr.On("ListStalePublishing", mock.Anything, f.now.Add(-stalePublishingAfter)).Return([]*models.Post{
		{ID: 4, Status: models.PostStatusPublishing, Platforms: selected(models.ProviderTwitter, models.ProviderLinkedIn)},
		{ID: 5, Status: models.PostStatusPublishing, Platforms: selected(models.ProviderFacebook)},
	}, nil).Once()
	f.pr.On("AbandonPublishing", mock.Anything, int64(4), map[models.Provider]models.PublishOutcome{
		models.ProviderTwitter:  {Success: false, Error: interruptedMessage},
		models.ProviderLinkedIn: {Success: false, Error: interruptedMessage},
	}).Return(true, nil).Once()
	f.pr.On("AbandonPublishing", mock.Anything, int64(5), mock.Anything).Return(false, errors.New("db down")).Once()
	f.pr.On("ListDue", mock.Anything, f.now).Return(nil, nil).Once()

	n, err := f.svc.EnqueueDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	f.pr.AssertExpectations(t)
	f.scheduler.AssertNotCalled(t, "SchedulePost", mock.Anything, mock.Anything, mock.Anything)
	for _, c := range f.clients {
		c.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestEnqueueDueSurvivesStaleListingFailure(t *testing.T) {
	f := newPostFixture(t)
	at := f.now.Add(-time.Minute)

	f.pr.On("ListStalePublishing", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
	f.pr.On("ListDue", mock.Anything, f.now).Return([]*models.Post{{ID: 9, ScheduledFor: &at}}, nil).Once()
	f.scheduler.On("SchedulePost", mock.Anything, int64(9), at).Return(nil).Once()

	n, err := f.svc.EnqueueDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPostInfoAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)

	f.pr.On("CheckByUserID", mock.Anything, int64(5), int64(1)).Return(false, nil)
	_, err := f.svc.PostInfo(ctx, 5, 1)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, f.svc.Remove(ctx, 1, 5), ErrPostNotFound)
	f.pr.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)

	f.pr.On("CheckByUserID", mock.Anything, int64(6), int64(1)).Return(true, nil)
	f.pr.On("GetByID", mock.Anything, int64(6)).Return(&models.Post{ID: 6, UserID: 1}, nil)
	f.pr.On("Remove", mock.Anything, int64(6)).Return(nil).Once()

	post, err := f.svc.PostInfo(ctx, 6, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), post.ID)
	assert.NoError(t, f.svc.Remove(ctx, 1, 6))

	var ve *ValidationError
	_, err = f.svc.PostInfo(ctx, 0, 1)
	assert.ErrorAs(t, err, &ve)
}

func TestList(t *testing.T) {
	f := newPostFixture(t)
	f.pr.On("GetByUserID", mock.Anything, int64(1)).Return(nil, nil).Once()

	posts, err := f.svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestParseSchedule(t *testing.T) {
	got, err := ParseSchedule("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseSchedule("2030-01-02T15:04:05Z")
	require.NoError(t, err)
	assert.True(t, time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC).Equal(*got))

	got, err = ParseSchedule("2030-01-02T15:04")
	require.NoError(t, err)
	assert.True(t, time.Date(2030, 1, 2, 15, 4, 0, 0, time.Local).Equal(*got))

	_, err = ParseSchedule("tomorrow")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestParseHashtags(t *testing.T) {
	assert.Equal(t, []string{"#go", "#rust", "#zig"}, ParseHashtags("go, #rust  ##zig"))
	assert.Empty(t, ParseHashtags(" , # "))
}
