package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"golang.org/x/oauth2"
)

// ProviderClient talks to one social platform: it builds the authorization
// URL, exchanges codes, reads profiles and publishes posts.
type ProviderClient interface {
	Provider() models.Provider
	AuthorizationURL(attempt *models.AuthorizationAttempt) string
	ExchangeCode(ctx context.Context, code string, attempt *models.AuthorizationAttempt) (*models.SocialAccount, error)
	FetchProfile(ctx context.Context, acc *models.SocialAccount) (*transfer.ProfileInfo, error)
	Publish(ctx context.Context, acc *models.SocialAccount, content *transfer.PublishContent) (*transfer.PublishResult, error)
}

// Endpoints locates a provider's OAuth and REST surfaces.
type Endpoints struct {
	AuthURL  string
	TokenURL string
	APIBase  string
}

const (
	TWITTER_AUTH_URL  = "https://twitter.com/i/oauth2/authorize"
	TWITTER_TOKEN_URL = "https://api.twitter.com/2/oauth2/token"
	TWITTER_API_URL   = "https://api.twitter.com/2"

	LINKEDIN_AUTH_URL  = "https://www.linkedin.com/oauth/v2/authorization"
	LINKEDIN_TOKEN_URL = "https://www.linkedin.com/oauth/v2/accessToken"
	LINKEDIN_API_URL   = "https://api.linkedin.com/v2"
)

var (
	instagramScopes = []string{"instagram_basic", "instagram_content_publish", "pages_show_list", "pages_read_engagement"}
	facebookScopes  = []string{"public_profile", "email", "pages_show_list", "pages_read_engagement", "pages_manage_posts"}
	twitterScopes   = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}
	linkedinScopes  = []string{"r_liteprofile", "r_emailaddress", "w_member_social", "r_organization_social", "w_organization_social", "rw_organization_admin"}
)

func DefaultEndpoints(p models.Provider, graphVersion string) Endpoints {
	switch p {
	case models.ProviderInstagram, models.ProviderFacebook:
		return Endpoints{
			AuthURL:  fmt.Sprintf("https://www.facebook.com/%s/dialog/oauth", graphVersion),
			TokenURL: fmt.Sprintf("https://graph.facebook.com/%s/oauth/access_token", graphVersion),
			APIBase:  fmt.Sprintf("https://graph.facebook.com/%s", graphVersion),
		}
	case models.ProviderTwitter:
		return Endpoints{AuthURL: TWITTER_AUTH_URL, TokenURL: TWITTER_TOKEN_URL, APIBase: TWITTER_API_URL}
	case models.ProviderLinkedIn:
		return Endpoints{AuthURL: LINKEDIN_AUTH_URL, TokenURL: LINKEDIN_TOKEN_URL, APIBase: LINKEDIN_API_URL}
	}
	return Endpoints{}
}

// NewProviderClients builds one client per supported provider against the
// production endpoints.
func NewProviderClients(cfg config.Config, client *http.Client) map[models.Provider]ProviderClient {
	return map[models.Provider]ProviderClient{
		models.ProviderInstagram: NewInstagramService(cfg.Instagram, DefaultEndpoints(models.ProviderInstagram, cfg.MetaGraphVersion), client),
		models.ProviderFacebook:  NewFacebookService(cfg.Facebook, DefaultEndpoints(models.ProviderFacebook, cfg.MetaGraphVersion), client),
		models.ProviderTwitter:   NewTwitterService(cfg.Twitter, DefaultEndpoints(models.ProviderTwitter, ""), client),
		models.ProviderLinkedIn:  NewLinkedInService(cfg.LinkedIn, DefaultEndpoints(models.ProviderLinkedIn, ""), client),
	}
}

// providerBase carries what every client shares: the OAuth app, the API
// base URL and the HTTP client used for both token and REST calls.
type providerBase struct {
	provider models.Provider
	oauth    *oauth2.Config
	api      string
	http     *http.Client
}

func newProviderBase(p models.Provider, app config.OAuthApp, ep Endpoints, scopes []string, style oauth2.AuthStyle, client *http.Client) providerBase {
	if client == nil {
		client = http.DefaultClient
	}
	return providerBase{
		provider: p,
		oauth: &oauth2.Config{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			RedirectURL:  app.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   ep.AuthURL,
				TokenURL:  ep.TokenURL,
				AuthStyle: style,
			},
		},
		api:  strings.TrimRight(ep.APIBase, "/"),
		http: client,
	}
}

func (b *providerBase) Provider() models.Provider {
	return b.provider
}

func (b *providerBase) authCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return b.oauth.AuthCodeURL(state, opts...)
}

func (b *providerBase) exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if code == "" {
		return nil, &TokenExchangeError{Provider: b.provider, Msg: "authorization code is empty"}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.http)
	token, err := b.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		slog.Info(err.Error())
		return nil, &TokenExchangeError{Provider: b.provider, Msg: exchangeErrorMessage(err)}
	}
	return token, nil
}

// exchangeErrorMessage prefers the OAuth2 error_description, then the Meta
// error.message, then the bare error code.
func exchangeErrorMessage(err error) string {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err.Error()
	}
	if re.ErrorDescription != "" {
		return re.ErrorDescription
	}
	if msg := metaErrorMessage(re.Body); msg != "" {
		return msg
	}
	if re.ErrorCode != "" {
		return re.ErrorCode
	}
	if re.Response != nil {
		return fmt.Sprintf("token endpoint returned %s", re.Response.Status)
	}
	return err.Error()
}

// apiError is a non-2xx response from a provider REST endpoint.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

type errorMessageFunc func(body []byte) string

func metaErrorMessage(body []byte) string {
	var ge transfer.GraphError
	if err := json.Unmarshal(body, &ge); err != nil {
		return ""
	}
	return ge.Error.Message
}

func twitterErrorMessage(body []byte) string {
	var te transfer.TwitterError
	if err := json.Unmarshal(body, &te); err != nil {
		return ""
	}
	switch {
	case te.Detail != "":
		return te.Detail
	case len(te.Errors) > 0 && te.Errors[0].Message != "":
		return te.Errors[0].Message
	}
	return te.Title
}

func linkedinErrorMessage(body []byte) string {
	var le transfer.LinkedInError
	if err := json.Unmarshal(body, &le); err != nil {
		return ""
	}
	return le.Message
}

// doJSON sends payload as JSON (when non-nil) and decodes a 2xx body into
// out. Non-2xx responses become *apiError with the provider's own message.
func (b *providerBase) doJSON(ctx context.Context, method, url string, header http.Header, payload, out interface{}, errMsg errorMessageFunc) (http.Header, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshalling payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if errMsg != nil {
			msg = errMsg(respBody)
		}
		if msg == "" {
			msg = fmt.Sprintf("unexpected status code from %s: %d", b.provider, resp.StatusCode)
		}
		slog.Info("provider request failed", "provider", b.provider, "status", resp.StatusCode, "error", msg)
		return resp.Header, &apiError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.Header, fmt.Errorf("error parsing response: %w", err)
		}
	}
	return resp.Header, nil
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

// errorText unwraps an apiError to the provider message.
func errorText(err error) string {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// appendLink adds the link to the text for providers that do not render
// a native link card.
func appendLink(text, link string) string {
	if link == "" || strings.Contains(text, link) {
		return text
	}
	if text == "" {
		return link
	}
	return text + " " + link
}
