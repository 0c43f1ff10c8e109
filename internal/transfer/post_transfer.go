package transfer

import (
	"time"

	"github.com/maheshrc27/socialpro/internal/models"
)

// PostDraft is the composer input after form parsing.
type PostDraft struct {
	Content                 string
	Link                    string
	Location                string
	Hashtags                []string
	Platforms               map[models.Provider]bool
	PlatformSpecificContent map[models.Provider]models.PlatformContent
	ScheduledFor            *time.Time
	Images                  []Upload
}

// Upload is one attached file, read fully into memory.
type Upload struct {
	Name string
	Data []byte
}

// PublishContent is what a provider client receives for one post.
type PublishContent struct {
	Text      string
	Link      string
	ImageURLs []string
}

type PublishResult struct {
	PostID string `json:"postId"`
}

// ProfileInfo is the provider-neutral view of a connected identity.
type ProfileInfo struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	FollowersCount int64  `json:"followers_count,omitempty"`
	MediaCount     int64  `json:"media_count,omitempty"`
}

// ConnectionView is the per-user connection document returned to the dashboard.
type ConnectionView struct {
	Connections    map[models.Provider]bool                  `json:"connections"`
	SocialAccounts map[models.Provider]*models.SocialAccount `json:"socialAccounts"`
}
