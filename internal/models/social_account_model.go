package models

import (
	"time"
)

// SocialAccount is the stored credential for one (user, provider) pair.
type SocialAccount struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	Platform        Provider   `db:"platform" json:"platform"`
	AccountID       string     `db:"account_id" json:"account_id"`
	AccountName     string     `db:"account_name" json:"account_name"`
	AccountUsername string     `db:"account_username" json:"account_username"`
	ProfilePicture  string     `db:"profile_picture_url" json:"profile_picture"`
	Email           string     `db:"email" json:"email,omitempty"`
	AccessToken     string     `db:"access_token" json:"-"`
	RefreshToken    string     `db:"refresh_token" json:"-"`
	TokenExpiresAt  *time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	Pages           []Page     `db:"pages" json:"pages,omitempty"`
	SelectedPageID  string     `db:"selected_page_id" json:"selected_page_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Page is a Facebook Page, a LinkedIn organization, or an Instagram business
// account discovered through its parent Facebook Page.
type Page struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AccessToken    string `json:"access_token,omitempty"`
	InstagramID    string `json:"instagram_id,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
	FollowersCount int64  `json:"followers_count,omitempty"`
}

// SelectedPage returns the page used for publishing: the explicitly selected
// one, otherwise the first discovered page.
func (sa *SocialAccount) SelectedPage() (*Page, bool) {
	for i := range sa.Pages {
		if sa.Pages[i].ID == sa.SelectedPageID {
			return &sa.Pages[i], true
		}
	}
	if sa.SelectedPageID == "" && len(sa.Pages) > 0 {
		return &sa.Pages[0], true
	}
	return nil, false
}

func (sa *SocialAccount) ManagesPage(pageID string) bool {
	for _, p := range sa.Pages {
		if p.ID == pageID {
			return true
		}
	}
	return false
}

// AuthorizationAttempt is the single-use state issued when a connect flow starts.
type AuthorizationAttempt struct {
	UserID       int64     `json:"user_id"`
	Provider     Provider  `json:"provider"`
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
