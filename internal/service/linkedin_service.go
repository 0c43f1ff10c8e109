package service

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"golang.org/x/oauth2"
)

const (
	linkedinProfileProjection = "(id,localizedFirstName,localizedLastName,profilePicture(displayImage~:playableStreams))"
	linkedinEmailProjection   = "(elements*(handle~))"
	linkedinOrgsProjection    = "(elements*(organizationalTarget~(localizedName,vanityName,logoV2(original~:playableStreams),id,followersCount)))"
)

type linkedinService struct {
	providerBase
}

func NewLinkedInService(app config.OAuthApp, ep Endpoints, client *http.Client) ProviderClient {
	return &linkedinService{
		providerBase: newProviderBase(models.ProviderLinkedIn, app, ep, linkedinScopes, oauth2.AuthStyleInParams, client),
	}
}

func linkedinHeader(token string) http.Header {
	h := bearer(token)
	h.Set("X-Restli-Protocol-Version", "2.0.0")
	return h
}

func (s *linkedinService) AuthorizationURL(attempt *models.AuthorizationAttempt) string {
	return s.authCodeURL(attempt.State)
}

// ExchangeCode also lists the organizations the member administers. None is
// selected, so posts go out as the member until SelectPage picks one.
func (s *linkedinService) ExchangeCode(ctx context.Context, code string, attempt *models.AuthorizationAttempt) (*models.SocialAccount, error) {
	token, err := s.exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	acc := &models.SocialAccount{
		Platform:     s.provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		acc.TokenExpiresAt = &expiry
	}

	pages, err := s.organizations(ctx, token.AccessToken)
	if err != nil {
		slog.Info("linkedin organizations unavailable", "error", err.Error())
	}
	acc.Pages = pages
	return acc, nil
}

func (s *linkedinService) organizations(ctx context.Context, accessToken string) ([]models.Page, error) {
	var acls transfer.LinkedInOrganizationAcls
	url := s.api + "/organizationalEntityAcls?q=roleAssignee&role=ADMINISTRATOR&projection=" + linkedinOrgsProjection
	if _, err := s.doJSON(ctx, http.MethodGet, url, linkedinHeader(accessToken), nil, &acls, linkedinErrorMessage); err != nil {
		return nil, err
	}

	pages := make([]models.Page, 0, len(acls.Elements))
	for _, el := range acls.Elements {
		org := el.OrganizationalTarget
		pages = append(pages, models.Page{
			ID:             strconv.FormatInt(org.ID, 10),
			Name:           org.LocalizedName,
			LogoURL:        org.LogoV2.Original.LargestURL(),
			FollowersCount: org.FollowersCount,
		})
	}
	return pages, nil
}

func (s *linkedinService) FetchProfile(ctx context.Context, acc *models.SocialAccount) (*transfer.ProfileInfo, error) {
	var profile transfer.LinkedInProfile
	url := s.api + "/me?projection=" + linkedinProfileProjection
	if _, err := s.doJSON(ctx, http.MethodGet, url, linkedinHeader(acc.AccessToken), nil, &profile, linkedinErrorMessage); err != nil {
		return nil, &ProfileFetchError{Provider: s.provider, Msg: errorText(err)}
	}

	info := &transfer.ProfileInfo{
		ID:        profile.ID,
		Name:      strings.TrimSpace(profile.LocalizedFirstName + " " + profile.LocalizedLastName),
		AvatarURL: profile.ProfilePicture.DisplayImage.LargestURL(),
	}
	info.Username = info.Name

	var email transfer.LinkedInEmailResponse
	url = s.api + "/emailAddress?q=members&projection=" + linkedinEmailProjection
	if _, err := s.doJSON(ctx, http.MethodGet, url, linkedinHeader(acc.AccessToken), nil, &email, linkedinErrorMessage); err != nil {
		slog.Info("linkedin email unavailable", "error", err.Error())
	} else if len(email.Elements) > 0 {
		info.Email = email.Elements[0].Handle.EmailAddress
	}

	return info, nil
}

// author is the organization URN only when one was explicitly selected,
// else the member URN. Unlike Meta pages there is no first-page fallback.
func (s *linkedinService) author(acc *models.SocialAccount) (string, bool) {
	if acc.SelectedPageID != "" {
		for _, p := range acc.Pages {
			if p.ID == acc.SelectedPageID {
				return "urn:li:organization:" + p.ID, true
			}
		}
	}
	if acc.AccountID == "" {
		return "", false
	}
	return "urn:li:person:" + acc.AccountID, true
}

func (s *linkedinService) Publish(ctx context.Context, acc *models.SocialAccount, content *transfer.PublishContent) (*transfer.PublishResult, error) {
	author, ok := s.author(acc)
	if !ok {
		return nil, &PublishError{Provider: s.provider, Msg: "no LinkedIn identity to post as"}
	}

	post := transfer.LinkedInUgcPost{
		Author:         author,
		LifecycleState: "PUBLISHED",
	}
	post.SpecificContent.ShareContent = transfer.LinkedInShareContent{
		ShareCommentary:    transfer.LinkedInShareCommentary{Text: appendLink(content.Text, content.Link)},
		ShareMediaCategory: "NONE",
	}
	post.Visibility.MemberNetworkVisibility = "PUBLIC"

	var resp struct {
		ID string `json:"id"`
	}
	header, err := s.doJSON(ctx, http.MethodPost, s.api+"/ugcPosts", linkedinHeader(acc.AccessToken), post, &resp, linkedinErrorMessage)
	if err != nil {
		return nil, &PublishError{Provider: s.provider, Msg: errorText(err)}
	}

	id := resp.ID
	if id == "" && header != nil {
		id = header.Get("X-Restli-Id")
	}
	return &transfer.PublishResult{PostID: id}, nil
}
