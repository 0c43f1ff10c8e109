package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"golang.org/x/oauth2"
)

// metaGraph holds the Graph API calls shared by Facebook and Instagram.
type metaGraph struct {
	providerBase
}

func (g *metaGraph) graphURL(path string, params url.Values) string {
	return fmt.Sprintf("%s/%s?%s", g.api, path, params.Encode())
}

func (g *metaGraph) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	_, err := g.doJSON(ctx, http.MethodGet, g.graphURL(path, params), nil, nil, out, metaErrorMessage)
	return err
}

func (g *metaGraph) post(ctx context.Context, path string, params url.Values, out interface{}) error {
	_, err := g.doJSON(ctx, http.MethodPost, g.graphURL(path, params), nil, nil, out, metaErrorMessage)
	return err
}

func (g *metaGraph) pages(ctx context.Context, userToken string) ([]transfer.GraphPage, error) {
	var list transfer.GraphPageList
	params := url.Values{"access_token": {userToken}}
	if err := g.get(ctx, "me/accounts", params, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (g *metaGraph) exchangeToken(ctx context.Context, code string) (*models.SocialAccount, error) {
	token, err := g.exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	acc := &models.SocialAccount{
		Platform:    g.provider,
		AccessToken: token.AccessToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		acc.TokenExpiresAt = &expiry
	}
	return acc, nil
}

type facebookService struct {
	metaGraph
}

func NewFacebookService(app config.OAuthApp, ep Endpoints, client *http.Client) ProviderClient {
	return &facebookService{
		metaGraph: metaGraph{newProviderBase(models.ProviderFacebook, app, ep, facebookScopes, oauth2.AuthStyleInParams, client)},
	}
}

func (s *facebookService) AuthorizationURL(attempt *models.AuthorizationAttempt) string {
	return s.authCodeURL(attempt.State)
}

// ExchangeCode stores every page the user manages with its page token.
func (s *facebookService) ExchangeCode(ctx context.Context, code string, attempt *models.AuthorizationAttempt) (*models.SocialAccount, error) {
	acc, err := s.exchangeToken(ctx, code)
	if err != nil {
		return nil, err
	}

	pages, err := s.pages(ctx, acc.AccessToken)
	if err != nil {
		return nil, &TokenExchangeError{Provider: s.provider, Msg: errorText(err)}
	}

	for _, p := range pages {
		acc.Pages = append(acc.Pages, models.Page{ID: p.ID, Name: p.Name, AccessToken: p.AccessToken})
	}
	if len(acc.Pages) > 0 {
		acc.SelectedPageID = acc.Pages[0].ID
	}
	return acc, nil
}

func (s *facebookService) FetchProfile(ctx context.Context, acc *models.SocialAccount) (*transfer.ProfileInfo, error) {
	var user transfer.FacebookUserInfo
	params := url.Values{
		"fields":       {"id,name,email,picture"},
		"access_token": {acc.AccessToken},
	}
	if err := s.get(ctx, "me", params, &user); err != nil {
		return nil, &ProfileFetchError{Provider: s.provider, Msg: errorText(err)}
	}

	return &transfer.ProfileInfo{
		ID:        user.ID,
		Username:  user.Name,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.Picture.Data.URL,
	}, nil
}

// Publish posts to the selected page feed. Links go in the native link
// field so Facebook renders a preview card.
func (s *facebookService) Publish(ctx context.Context, acc *models.SocialAccount, content *transfer.PublishContent) (*transfer.PublishResult, error) {
	page, ok := acc.SelectedPage()
	if !ok {
		return nil, &PublishError{Provider: s.provider, Msg: "no Facebook page available"}
	}

	token := page.AccessToken
	if token == "" {
		token = acc.AccessToken
	}

	params := url.Values{
		"message":      {content.Text},
		"access_token": {token},
	}
	if content.Link != "" {
		params.Set("link", content.Link)
	}

	var resp transfer.GraphID
	if err := s.post(ctx, page.ID+"/feed", params, &resp); err != nil {
		return nil, &PublishError{Provider: s.provider, Msg: errorText(err)}
	}

	return &transfer.PublishResult{PostID: resp.ID}, nil
}
