package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"golang.org/x/oauth2"
)

const (
	instagramProfileFields = "username,profile_picture_url,name,biography,follows_count,followers_count,media_count"
	instagramMediaFields   = "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,like_count,comments_count"
	instagramCarouselLimit = 10
)

// InstagramMediaReader lists recently published media for a connected
// business account.
type InstagramMediaReader interface {
	RecentMedia(ctx context.Context, acc *models.SocialAccount, limit int) ([]transfer.InstagramMedia, error)
}

type instagramService struct {
	metaGraph
}

func NewInstagramService(app config.OAuthApp, ep Endpoints, client *http.Client) ProviderClient {
	return &instagramService{
		metaGraph: metaGraph{newProviderBase(models.ProviderInstagram, app, ep, instagramScopes, oauth2.AuthStyleInParams, client)},
	}
}

func (s *instagramService) AuthorizationURL(attempt *models.AuthorizationAttempt) string {
	return s.authCodeURL(attempt.State)
}

// ExchangeCode walks the user's Facebook Pages looking for linked Instagram
// business accounts. Every page that has one becomes a candidate; the first
// candidate is the account the credential publishes as.
func (s *instagramService) ExchangeCode(ctx context.Context, code string, attempt *models.AuthorizationAttempt) (*models.SocialAccount, error) {
	acc, err := s.exchangeToken(ctx, code)
	if err != nil {
		return nil, err
	}

	candidates, err := s.BusinessAccounts(ctx, acc.AccessToken)
	if err != nil {
		return nil, &TokenExchangeError{Provider: s.provider, Msg: errorText(err)}
	}
	if len(candidates) == 0 {
		return nil, &TokenExchangeError{Provider: s.provider, Msg: "no Instagram business account linked to your Facebook pages"}
	}

	for _, c := range candidates {
		acc.Pages = append(acc.Pages, models.Page{
			ID:          c.PageID,
			Name:        c.PageName,
			AccessToken: c.PageAccessToken,
			InstagramID: c.InstagramAccountID,
		})
	}
	acc.AccountID = candidates[0].InstagramAccountID
	acc.SelectedPageID = candidates[0].PageID
	return acc, nil
}

// BusinessAccounts returns the Instagram business accounts reachable through
// the pages the user token manages. Pages whose probe fails are skipped.
func (s *instagramService) BusinessAccounts(ctx context.Context, userToken string) ([]transfer.InstagramAccount, error) {
	pages, err := s.pages(ctx, userToken)
	if err != nil {
		return nil, err
	}

	var accounts []transfer.InstagramAccount
	for _, page := range pages {
		var link transfer.GraphInstagramLink
		params := url.Values{
			"fields":       {"instagram_business_account"},
			"access_token": {page.AccessToken},
		}
		if err := s.get(ctx, page.ID, params, &link); err != nil {
			slog.Info("instagram probe failed", "page", page.ID, "error", err.Error())
			continue
		}
		if link.InstagramBusinessAccount == nil || link.InstagramBusinessAccount.ID == "" {
			continue
		}
		accounts = append(accounts, transfer.InstagramAccount{
			PageID:             page.ID,
			PageName:           page.Name,
			PageAccessToken:    page.AccessToken,
			InstagramAccountID: link.InstagramBusinessAccount.ID,
		})
	}
	return accounts, nil
}

// target resolves the business account id and the token used to act on it.
func (s *instagramService) target(acc *models.SocialAccount) (string, string) {
	if page, ok := acc.SelectedPage(); ok && page.InstagramID != "" {
		token := page.AccessToken
		if token == "" {
			token = acc.AccessToken
		}
		return page.InstagramID, token
	}
	return acc.AccountID, acc.AccessToken
}

func (s *instagramService) FetchProfile(ctx context.Context, acc *models.SocialAccount) (*transfer.ProfileInfo, error) {
	igID, token := s.target(acc)
	if igID == "" {
		return nil, &ProfileFetchError{Provider: s.provider, Msg: "no Instagram business account selected"}
	}

	var user transfer.InstagramUserInfo
	params := url.Values{
		"fields":       {instagramProfileFields},
		"access_token": {token},
	}
	if err := s.get(ctx, igID, params, &user); err != nil {
		return nil, &ProfileFetchError{Provider: s.provider, Msg: errorText(err)}
	}

	return &transfer.ProfileInfo{
		ID:             igID,
		Username:       user.Username,
		Name:           user.Name,
		AvatarURL:      user.ProfilePicture,
		FollowersCount: user.FollowersCount,
		MediaCount:     user.MediaCount,
	}, nil
}

func (s *instagramService) RecentMedia(ctx context.Context, acc *models.SocialAccount, limit int) ([]transfer.InstagramMedia, error) {
	igID, token := s.target(acc)
	if igID == "" {
		return nil, &ProfileFetchError{Provider: s.provider, Msg: "no Instagram business account selected"}
	}

	var list transfer.InstagramMediaList
	params := url.Values{
		"fields":       {instagramMediaFields},
		"access_token": {token},
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if err := s.get(ctx, igID+"/media", params, &list); err != nil {
		return nil, &ProfileFetchError{Provider: s.provider, Msg: errorText(err)}
	}
	return list.Data, nil
}

// Publish creates a media container and publishes it. Several images become
// a carousel. Instagram has no text-only posts and no clickable captions, so
// the link is appended to the caption.
func (s *instagramService) Publish(ctx context.Context, acc *models.SocialAccount, content *transfer.PublishContent) (*transfer.PublishResult, error) {
	if len(content.ImageURLs) == 0 {
		return nil, &PublishError{Provider: s.provider, Msg: "Instagram requires at least one image"}
	}
	if len(content.ImageURLs) > instagramCarouselLimit {
		return nil, &PublishError{Provider: s.provider, Msg: fmt.Sprintf("Instagram carousels hold at most %d images", instagramCarouselLimit)}
	}

	igID, token := s.target(acc)
	if igID == "" {
		return nil, &PublishError{Provider: s.provider, Msg: "no Instagram business account selected"}
	}

	caption := appendLink(content.Text, content.Link)

	var containerID string
	var err error
	if len(content.ImageURLs) == 1 {
		containerID, err = s.singleContainer(ctx, igID, token, content.ImageURLs[0], caption)
	} else {
		containerID, err = s.carouselContainer(ctx, igID, token, content.ImageURLs, caption)
	}
	if err != nil {
		return nil, &PublishError{Provider: s.provider, Msg: errorText(err)}
	}

	mediaID, err := s.publishContainer(ctx, igID, token, containerID)
	if err != nil {
		return nil, &PublishError{Provider: s.provider, Msg: errorText(err)}
	}
	return &transfer.PublishResult{PostID: mediaID}, nil
}

func (s *instagramService) createContainer(ctx context.Context, igID string, params url.Values) (string, error) {
	var result transfer.GraphID
	if err := s.post(ctx, igID+"/media", params, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}
	return result.ID, nil
}

func (s *instagramService) singleContainer(ctx context.Context, igID, token, imageURL, caption string) (string, error) {
	return s.createContainer(ctx, igID, url.Values{
		"image_url":    {imageURL},
		"caption":      {caption},
		"access_token": {token},
	})
}

func (s *instagramService) carouselContainer(ctx context.Context, igID, token string, imageURLs []string, caption string) (string, error) {
	children := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		id, err := s.createContainer(ctx, igID, url.Values{
			"image_url":        {imageURL},
			"is_carousel_item": {"true"},
			"access_token":     {token},
		})
		if err != nil {
			return "", fmt.Errorf("carousel item %s: %w", imageURL, err)
		}
		children = append(children, id)
	}

	return s.createContainer(ctx, igID, url.Values{
		"media_type":   {"CAROUSEL"},
		"caption":      {caption},
		"children":     {strings.Join(children, ",")},
		"access_token": {token},
	})
}

func (s *instagramService) publishContainer(ctx context.Context, igID, token, containerID string) (string, error) {
	var result transfer.GraphID
	params := url.Values{
		"creation_id":  {containerID},
		"access_token": {token},
	}
	if err := s.post(ctx, igID+"/media_publish", params, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}
