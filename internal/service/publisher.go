package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"golang.org/x/sync/errgroup"
)

// Publisher sends one post to every selected, connected provider.
type Publisher interface {
	Publish(ctx context.Context, post *models.Post, creds map[models.Provider]*models.SocialAccount) map[models.Provider]models.PublishOutcome
}

type publisher struct {
	clients map[models.Provider]ProviderClient
	limit   int
}

func NewPublisher(clients map[models.Provider]ProviderClient, concurrency int) Publisher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &publisher{clients: clients, limit: concurrency}
}

// Publish is best effort: each provider is attempted independently and a
// failure is recorded in its own outcome without touching the others.
// Providers without a credential are skipped and get no outcome.
func (p *publisher) Publish(ctx context.Context, post *models.Post, creds map[models.Provider]*models.SocialAccount) map[models.Provider]models.PublishOutcome {
	outcomes := make(map[models.Provider]models.PublishOutcome)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(p.limit)

	for _, provider := range post.SelectedPlatforms() {
		acc, ok := creds[provider]
		if !ok || acc == nil {
			slog.Info("skipping platform without credential", "post_id", post.ID, "platform", provider)
			continue
		}
		client, ok := p.clients[provider]
		if !ok {
			slog.Info("skipping platform without client", "post_id", post.ID, "platform", provider)
			continue
		}

		provider := provider
		content := ContentFor(post, provider)
		g.Go(func() error {
			outcome := publishOne(ctx, client, acc, content)

			mu.Lock()
			outcomes[provider] = outcome
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

func publishOne(ctx context.Context, client ProviderClient, acc *models.SocialAccount, content *transfer.PublishContent) (outcome models.PublishOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("publish panicked", "platform", client.Provider(), "panic", r)
			outcome = models.PublishOutcome{Success: false, Error: "internal error while publishing"}
		}
	}()

	result, err := client.Publish(ctx, acc, content)
	if err != nil {
		slog.Info("publish failed", "platform", client.Provider(), "error", err.Error())
		msg := err.Error()
		if pe, ok := err.(*PublishError); ok {
			msg = pe.Msg
		}
		return models.PublishOutcome{Success: false, Error: msg}
	}
	return models.PublishOutcome{Success: true, PostID: result.PostID}
}

// ContentFor builds what provider receives: the override when one is set,
// otherwise the shared content followed by the hashtags.
func ContentFor(post *models.Post, provider models.Provider) *transfer.PublishContent {
	text := ""
	if override, ok := post.PlatformSpecificContent[provider]; ok && strings.TrimSpace(override.Content) != "" {
		text = override.Content
	} else {
		parts := make([]string, 0, 2)
		if c := strings.TrimSpace(post.Content); c != "" {
			parts = append(parts, c)
		}
		if len(post.Hashtags) > 0 {
			parts = append(parts, strings.Join(post.Hashtags, " "))
		}
		text = strings.Join(parts, " ")
	}

	return &transfer.PublishContent{
		Text:      text,
		Link:      post.Link,
		ImageURLs: post.Images,
	}
}
