package models

import "time"

type Post struct {
	ID                      int64                        `db:"id" json:"id"`
	UserID                  int64                        `db:"user_id" json:"userId"`
	Content                 string                       `db:"content" json:"content"`
	Images                  []string                     `db:"images" json:"images"`
	Link                    string                       `db:"link" json:"link"`
	Location                string                       `db:"location" json:"location"`
	Hashtags                []string                     `db:"hashtags" json:"hashtags"`
	Platforms               map[Provider]bool            `db:"platforms" json:"platforms"`
	PlatformSpecificContent map[Provider]PlatformContent `db:"platform_specific_content" json:"platformSpecificContent"`
	ScheduledFor            *time.Time                   `db:"scheduled_for" json:"scheduledFor"`
	Status                  string                       `db:"status" json:"status"` // published, scheduled, publishing
	PlatformResponses       map[Provider]PublishOutcome  `db:"platform_responses" json:"platformResponses"`
	CreatedAt               time.Time                    `db:"created_at" json:"createdAt"`
	UpdatedAt               time.Time                    `db:"updated_at" json:"updatedAt"`
}

type PlatformContent struct {
	Content string `json:"content"`
}

// PublishOutcome records what happened when the post was sent to one provider.
type PublishOutcome struct {
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	FileName  string    `db:"file_name" json:"fileName"`
	FileType  string    `db:"file_type" json:"fileType"`
	FileSize  int64     `db:"file_size" json:"fileSize"`
	FileURL   string    `db:"file_url" json:"fileUrl"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

const (
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
)

// SelectedPlatforms returns the providers flagged true, in Providers order.
func (p *Post) SelectedPlatforms() []Provider {
	var selected []Provider
	for _, provider := range Providers {
		if p.Platforms[provider] {
			selected = append(selected, provider)
		}
	}
	return selected
}
