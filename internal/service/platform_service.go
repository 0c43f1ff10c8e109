package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/maheshrc27/socialpro/internal/repository"
	"github.com/maheshrc27/socialpro/internal/transfer"
	"github.com/maheshrc27/socialpro/pkg/utils"
)

// CredentialSource hands out decrypted credentials for publishing.
type CredentialSource interface {
	Credentials(ctx context.Context, userID int64) (map[models.Provider]*models.SocialAccount, error)
}

type PlatformService interface {
	CredentialSource
	// BeginConnect issues a fresh authorization attempt and returns the
	// provider URL the browser is sent to.
	BeginConnect(ctx context.Context, userID int64, platform models.Provider) (string, error)
	// CompleteConnect finishes the flow started by BeginConnect. Failures are
	// *ConnectError.
	CompleteConnect(ctx context.Context, userID int64, platform models.Provider, cb *transfer.OAuthCallback) (*models.SocialAccount, error)
	// AbandonConnect drops the attempt behind a callback that arrived
	// without a session.
	AbandonConnect(ctx context.Context, platform models.Provider, state string) error
	ConnectionView(ctx context.Context, userID int64) (*transfer.ConnectionView, error)
	Profile(ctx context.Context, userID int64, platform models.Provider) (*transfer.ProfileInfo, error)
	SelectPage(ctx context.Context, userID int64, platform models.Provider, pageID string) error
	Disconnect(ctx context.Context, userID int64, platform models.Provider) error
	InstagramMedia(ctx context.Context, userID int64, limit int) ([]transfer.InstagramMedia, error)
}

type platformService struct {
	states  repository.StateStore
	sa      repository.SocialAccountRepository
	clients map[models.Provider]ProviderClient
	cipher  *utils.TokenCipher
}

func NewPlatformService(
	states repository.StateStore,
	sa repository.SocialAccountRepository,
	clients map[models.Provider]ProviderClient,
	cipher *utils.TokenCipher) PlatformService {
	return &platformService{
		states:  states,
		sa:      sa,
		clients: clients,
		cipher:  cipher,
	}
}

func (s *platformService) client(platform models.Provider) (ProviderClient, error) {
	c, ok := s.clients[platform]
	if !ok {
		return nil, validationErrorf("unsupported platform %q", platform)
	}
	return c, nil
}

func (s *platformService) BeginConnect(ctx context.Context, userID int64, platform models.Provider) (string, error) {
	if userID == 0 {
		return "", validationErrorf("user is not valid")
	}

	c, err := s.client(platform)
	if err != nil {
		return "", err
	}

	state, err := utils.GenerateState()
	if err != nil {
		return "", err
	}

	attempt := &models.AuthorizationAttempt{
		UserID:    userID,
		Provider:  platform,
		State:     state,
		CreatedAt: time.Now(),
	}
	if platform == models.ProviderTwitter {
		attempt.CodeVerifier, err = utils.GenerateCodeVerifier()
		if err != nil {
			return "", err
		}
	}

	if err := s.states.Issue(ctx, attempt); err != nil {
		return "", &StorageError{Op: "issue authorization attempt", Err: err}
	}

	return c.AuthorizationURL(attempt), nil
}

func (s *platformService) CompleteConnect(ctx context.Context, userID int64, platform models.Provider, cb *transfer.OAuthCallback) (*models.SocialAccount, error) {
	fail := func(stage ConnectStage, err error) (*models.SocialAccount, error) {
		slog.Info("connect failed", "platform", platform, "stage", stage, "error", err.Error())
		return nil, &ConnectError{Provider: platform, Stage: stage, Err: err}
	}

	c, err := s.client(platform)
	if err != nil {
		return fail(StageValidating, err)
	}

	// The attempt is single use whatever happens next.
	attempt, err := s.states.Consume(ctx, userID, platform)
	if err != nil {
		return fail(StageValidating, &StorageError{Op: "consume authorization attempt", Err: err})
	}

	if cb.Error != "" {
		msg := cb.ErrorDescription
		if msg == "" {
			msg = cb.Error
		}
		return fail(StageValidating, &AuthorizationDeniedError{Provider: platform, Msg: msg})
	}

	if attempt == nil || cb.State == "" || subtle.ConstantTimeCompare([]byte(attempt.State), []byte(cb.State)) != 1 {
		return fail(StageValidating, &CsrfValidationError{Provider: platform})
	}

	acc, err := c.ExchangeCode(ctx, cb.Code, attempt)
	if err != nil {
		return fail(StageExchanging, err)
	}

	profile, err := c.FetchProfile(ctx, acc)
	if err != nil {
		return fail(StageExchanging, err)
	}

	acc.UserID = userID
	acc.Platform = platform
	if acc.AccountID == "" {
		acc.AccountID = profile.ID
	}
	acc.AccountName = profile.Name
	acc.AccountUsername = profile.Username
	acc.ProfilePicture = profile.AvatarURL
	acc.Email = profile.Email

	sealed, err := s.seal(acc)
	if err != nil {
		return fail(StagePersisting, &StorageError{Op: "encrypt tokens", Err: err})
	}

	id, err := s.sa.Upsert(ctx, nil, sealed)
	if err != nil {
		return fail(StagePersisting, &StorageError{Op: "save social account", Err: err})
	}
	acc.ID = id

	slog.Info("account connected", "user_id", userID, "platform", platform, "account_id", acc.AccountID)
	return acc, nil
}

// seal returns a copy of acc with every token encrypted.
func (s *platformService) seal(acc *models.SocialAccount) (*models.SocialAccount, error) {
	return s.transformTokens(acc, s.cipher.Seal)
}

func (s *platformService) open(acc *models.SocialAccount) (*models.SocialAccount, error) {
	return s.transformTokens(acc, s.cipher.Open)
}

func (s *platformService) transformTokens(acc *models.SocialAccount, fn func(string) (string, error)) (*models.SocialAccount, error) {
	out := *acc
	var err error
	if out.AccessToken, err = fn(acc.AccessToken); err != nil {
		return nil, err
	}
	if out.RefreshToken, err = fn(acc.RefreshToken); err != nil {
		return nil, err
	}

	out.Pages = make([]models.Page, len(acc.Pages))
	for i, p := range acc.Pages {
		if p.AccessToken, err = fn(p.AccessToken); err != nil {
			return nil, err
		}
		out.Pages[i] = p
	}
	return &out, nil
}

func (s *platformService) account(ctx context.Context, userID int64, platform models.Provider) (*models.SocialAccount, error) {
	if userID == 0 {
		return nil, validationErrorf("user is not valid")
	}
	if _, err := s.client(platform); err != nil {
		return nil, err
	}

	acc, err := s.sa.GetByPlatform(ctx, userID, platform)
	if err != nil {
		return nil, &StorageError{Op: "get social account", Err: err}
	}
	if acc == nil {
		return nil, &NotConnectedError{Provider: platform}
	}
	return acc, nil
}

func (s *platformService) openAccount(ctx context.Context, userID int64, platform models.Provider) (*models.SocialAccount, error) {
	acc, err := s.account(ctx, userID, platform)
	if err != nil {
		return nil, err
	}

	opened, err := s.open(acc)
	if err != nil {
		return nil, &StorageError{Op: "decrypt tokens", Err: err}
	}
	return opened, nil
}

func (s *platformService) Credentials(ctx context.Context, userID int64) (map[models.Provider]*models.SocialAccount, error) {
	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list social accounts", Err: err}
	}

	creds := make(map[models.Provider]*models.SocialAccount, len(accounts))
	for _, acc := range accounts {
		opened, err := s.open(acc)
		if err != nil {
			slog.Info("unable to decrypt credential", "platform", acc.Platform, "error", err.Error())
			continue
		}
		creds[acc.Platform] = opened
	}
	return creds, nil
}

func (s *platformService) AbandonConnect(ctx context.Context, platform models.Provider, state string) error {
	if err := s.states.Discard(ctx, platform, state); err != nil {
		return &StorageError{Op: "discard authorization attempt", Err: err}
	}
	slog.Info("connect abandoned without session", "platform", platform)
	return nil
}

func (s *platformService) ConnectionView(ctx context.Context, userID int64) (*transfer.ConnectionView, error) {
	if userID == 0 {
		return nil, validationErrorf("user is not valid")
	}

	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list social accounts", Err: err}
	}

	view := &transfer.ConnectionView{
		Connections:    make(map[models.Provider]bool, len(models.Providers)),
		SocialAccounts: make(map[models.Provider]*models.SocialAccount, len(accounts)),
	}
	for _, p := range models.Providers {
		view.Connections[p] = false
	}
	for _, acc := range accounts {
		view.Connections[acc.Platform] = true
		view.SocialAccounts[acc.Platform] = withoutTokens(acc)
	}
	return view, nil
}

func withoutTokens(acc *models.SocialAccount) *models.SocialAccount {
	out := *acc
	out.AccessToken = ""
	out.RefreshToken = ""
	out.Pages = make([]models.Page, len(acc.Pages))
	for i, p := range acc.Pages {
		p.AccessToken = ""
		out.Pages[i] = p
	}
	return &out
}

func (s *platformService) Profile(ctx context.Context, userID int64, platform models.Provider) (*transfer.ProfileInfo, error) {
	acc, err := s.openAccount(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	return s.clients[platform].FetchProfile(ctx, acc)
}

// PersonalIdentity is the SelectPage id that makes LinkedIn post as the member.
const PersonalIdentity = "person"

func (s *platformService) SelectPage(ctx context.Context, userID int64, platform models.Provider, pageID string) error {
	if !platform.PageBased() {
		return validationErrorf("%s has no pages to select", platform)
	}

	// LinkedIn members may post as themselves; an empty id or "person"
	// clears the organization.
	clearing := platform == models.ProviderLinkedIn && (pageID == "" || pageID == PersonalIdentity)
	if clearing {
		pageID = ""
	} else if pageID == "" {
		return validationErrorf("page id is required")
	}

	acc, err := s.account(ctx, userID, platform)
	if err != nil {
		return err
	}

	if !clearing && !acc.ManagesPage(pageID) {
		return validationErrorf("page %s is not managed by this %s account", pageID, platform)
	}

	if err := s.sa.SetSelectedPage(ctx, userID, platform, pageID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return &NotConnectedError{Provider: platform}
		}
		return &StorageError{Op: "select page", Err: err}
	}
	return nil
}

func (s *platformService) Disconnect(ctx context.Context, userID int64, platform models.Provider) error {
	if _, err := s.account(ctx, userID, platform); err != nil {
		return err
	}

	if err := s.sa.Remove(ctx, userID, platform); err != nil {
		return &StorageError{Op: "remove social account", Err: err}
	}
	slog.Info("account disconnected", "user_id", userID, "platform", platform)
	return nil
}

func (s *platformService) InstagramMedia(ctx context.Context, userID int64, limit int) ([]transfer.InstagramMedia, error) {
	reader, ok := s.clients[models.ProviderInstagram].(InstagramMediaReader)
	if !ok {
		return nil, fmt.Errorf("instagram client cannot list media")
	}

	acc, err := s.openAccount(ctx, userID, models.ProviderInstagram)
	if err != nil {
		return nil, err
	}
	return reader.RecentMedia(ctx, acc, limit)
}
