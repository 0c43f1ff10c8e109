package service

import (
	"context"
	"net/http"

	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"github.com/maheshrc27/socialpro/pkg/utils"
	"golang.org/x/oauth2"
)

type twitterService struct {
	providerBase
}

func NewTwitterService(app config.OAuthApp, ep Endpoints, client *http.Client) ProviderClient {
	// Confidential clients authenticate with HTTP Basic; public PKCE clients
	// send only client_id in the form.
	style := oauth2.AuthStyleInParams
	if app.ClientSecret != "" {
		style = oauth2.AuthStyleInHeader
	}
	return &twitterService{
		providerBase: newProviderBase(models.ProviderTwitter, app, ep, twitterScopes, style, client),
	}
}

func (s *twitterService) AuthorizationURL(attempt *models.AuthorizationAttempt) string {
	return s.authCodeURL(attempt.State,
		oauth2.SetAuthURLParam("code_challenge", utils.CodeChallenge(attempt.CodeVerifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (s *twitterService) ExchangeCode(ctx context.Context, code string, attempt *models.AuthorizationAttempt) (*models.SocialAccount, error) {
	if attempt == nil || attempt.CodeVerifier == "" {
		return nil, &TokenExchangeError{Provider: s.provider, Msg: "missing code verifier"}
	}

	token, err := s.exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", attempt.CodeVerifier))
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
	return acc, nil
}

func (s *twitterService) FetchProfile(ctx context.Context, acc *models.SocialAccount) (*transfer.ProfileInfo, error) {
	var resp transfer.TwitterUserResponse
	url := s.api + "/users/me?user.fields=profile_image_url,public_metrics"
	if _, err := s.doJSON(ctx, http.MethodGet, url, bearer(acc.AccessToken), nil, &resp, twitterErrorMessage); err != nil {
		return nil, &ProfileFetchError{Provider: s.provider, Msg: errorText(err)}
	}

	return &transfer.ProfileInfo{
		ID:             resp.Data.ID,
		Username:       resp.Data.Username,
		Name:           resp.Data.Name,
		AvatarURL:      resp.Data.ProfileImageURL,
		FollowersCount: resp.Data.PublicMetrics.FollowersCount,
		MediaCount:     resp.Data.PublicMetrics.TweetCount,
	}, nil
}

func (s *twitterService) Publish(ctx context.Context, acc *models.SocialAccount, content *transfer.PublishContent) (*transfer.PublishResult, error) {
	text := appendLink(content.Text, content.Link)
	if text == "" {
		return nil, &PublishError{Provider: s.provider, Msg: "tweet text is empty"}
	}

	var resp transfer.TweetResponse
	_, err := s.doJSON(ctx, http.MethodPost, s.api+"/tweets", bearer(acc.AccessToken), transfer.TweetRequest{Text: text}, &resp, twitterErrorMessage)
	if err != nil {
		return nil, &PublishError{Provider: s.provider, Msg: errorText(err)}
	}

	return &transfer.PublishResult{PostID: resp.Data.ID}, nil
}
