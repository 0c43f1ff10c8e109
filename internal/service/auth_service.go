package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	config "github.com/maheshrc27/socialpro/configs"
	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/repository"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// AuthService signs users in with Google.
type AuthService interface {
	LoginURL(state string) string
	LoginCallback(ctx context.Context, code string) (int64, error)
}

type authService struct {
	oauth *oauth2.Config
	u     repository.UserRepository

	http        *http.Client
	apiEndpoint string
}

func NewAuthService(app config.OAuthApp, u repository.UserRepository, client *http.Client) AuthService {
	if client == nil {
		client = http.DefaultClient
	}
	return &authService{
		oauth: &oauth2.Config{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			RedirectURL:  app.RedirectURI,
			Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
		u:    u,
		http: client,
	}
}

func (s *authService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (s *authService) LoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return 0, err
	}

	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" || s.oauth.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return 0, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http)
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("google token exchange: %w", err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(s.oauth.Client(ctx, token))}
	if s.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(s.apiEndpoint))
	}
	api, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	info, err := api.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("google userinfo: %w", err)
	}

	user, exists, err := s.u.GetByGoogleID(ctx, info.Id)
	if err != nil {
		return 0, err
	}

	if !exists {
		return s.u.Create(ctx, nil, &models.User{
			GoogleID:       info.Id,
			Email:          info.Email,
			Name:           info.Name,
			ProfilePicture: info.Picture,
		})
	}

	user.Email = info.Email
	user.Name = info.Name
	user.ProfilePicture = info.Picture
	if err := s.u.Update(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}
