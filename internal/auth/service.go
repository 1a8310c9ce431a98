package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgAuth "github.com/uniformhub/gateway/pkg/auth"
	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/config"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/google"
	"github.com/uniformhub/gateway/pkg/logger"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResponse, error)
	Access(ctx context.Context, token string) (*AccessResponse, error)
}

type profileFetcher interface {
	UserInfo(ctx context.Context, accessToken string) (google.UserInfo, error)
}

type loginBackend interface {
	Login(ctx context.Context, req backend.LoginRequest) (backend.LoginResponse, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Google    profileFetcher
	Backend   loginBackend
	JWTConfig config.JWTConfig
	Logger    *logger.Logger
}

type service struct {
	google  profileFetcher
	backend loginBackend
	jwtCfg  config.JWTConfig
	logg    *logger.Logger
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Google == nil {
		return nil, fmt.Errorf("google profile client is required")
	}
	if params.Backend == nil {
		return nil, fmt.Errorf("login backend is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if !params.JWTConfig.Verify() {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &service{
		google:  params.Google,
		backend: params.Backend,
		jwtCfg:  params.JWTConfig,
		logg:    params.Logger,
	}, nil
}

// GoogleLogin verifies the Google token, exchanges the profile for a backend
// access token and resolves the caller's dashboard.
func (s *service) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResponse, error) {
	profile, err := s.google.UserInfo(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}

	resp, err := s.backend.Login(ctx, backend.LoginRequest{
		Email:    strings.ToLower(strings.TrimSpace(profile.Email)),
		Name:     profile.Name,
		Picture:  profile.Picture,
		GoogleID: profile.Subject,
	})
	if err != nil {
		return nil, err
	}

	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, resp.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend issued an unreadable access token")
	}
	access := claims.Access()

	logCtx := s.logg.WithActorRole(s.logg.WithUserEmail(ctx, access.Email), string(access.Role))
	s.logg.Info(logCtx, "google login succeeded")

	return &LoginResponse{
		AccessToken: resp.AccessToken,
		Access:      access,
		Redirect:    pkgAuth.DestinationFor(&access),
	}, nil
}

// Access decodes an existing token. A missing token is not an error: the
// caller is sent to the login page.
func (s *service) Access(_ context.Context, token string) (*AccessResponse, error) {
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, token)
	if errors.Is(err, pkgAuth.ErrMissingToken) {
		return &AccessResponse{Redirect: pkgAuth.DestinationFor(nil)}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	access := claims.Access()
	return &AccessResponse{Access: &access, Redirect: pkgAuth.DestinationFor(&access)}, nil
}
