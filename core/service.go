package core

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-mati/auth"
)

const (
	serviceLoggerName = "mati"
	oauthPath         = "oauth"
)

// Service is the Mati API client. It holds one set of client credentials and
// one active bearer token; every call is synchronous.
type Service struct {
	mu              sync.RWMutex
	config          Config
	credentials     *CredentialManager
	transport       TransportAdapter
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	now             Clock
	newCallID       CallIDGenerator
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(serviceLoggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(serviceLoggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.transport == nil {
		return nil, newConfigError("core: transport adapter is required", nil)
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.clock == nil {
		builder.clock = defaultClock
	}
	if builder.callIDGenerator == nil {
		builder.callIDGenerator = defaultCallID
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, wrapConfigError(err, nil)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, wrapConfigError(err, nil)
	}
	if builder.renewBefore != nil {
		finalConfig.Token.RenewBefore = *builder.renewBefore
	}

	service := &Service{
		credentials:     NewCredentialManager(builder.clock),
		transport:       builder.transport,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		now:             builder.clock,
		newCallID:       builder.callIDGenerator,
	}
	if err := service.Initialize(finalConfig); err != nil {
		return nil, err
	}
	return service, nil
}

// Initialize replaces the credentials, webhook secret and host, and drops any
// active token. It never performs a network call.
func (s *Service) Initialize(cfg Config) error {
	if s == nil {
		return newConfigError("core: service is nil", nil)
	}
	if err := cfg.Validate(); err != nil {
		return wrapConfigError(err, nil)
	}
	cfg.Host = cfg.resolvedHost()
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.credentials.Initialize(
		Credentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret},
		cfg.WebhookSecret,
		cfg.Host,
		cfg.Token,
	)
	return nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *Service) Credentials() *CredentialManager {
	if s == nil {
		return nil
	}
	return s.credentials
}

func (s *Service) Transport() TransportAdapter {
	if s == nil {
		return nil
	}
	return s.transport
}

func (s *Service) Logger() Logger {
	if s == nil {
		return glog.Nop()
	}
	return s.logger
}

// Authenticate exchanges the client credentials for a new bearer token and
// installs it as the active token. It is never retried internally.
func (s *Service) Authenticate(ctx context.Context) (auth.TokenResponse, error) {
	resp, _, err := s.authenticate(ctx)
	return resp, err
}

func (s *Service) authenticate(ctx context.Context) (resp auth.TokenResponse, token auth.BearerToken, err error) {
	startedAt := time.Now()
	fields := map[string]any{"auth_mode": string(AuthModeBasic)}
	defer func() {
		if err == nil {
			fields["token_type"] = token.TokenType
			if token.ExpiresAt != nil {
				fields["expires_at"] = token.ExpiresAt.Format(time.RFC3339)
			}
		}
		s.observeOperation(ctx, startedAt, "authenticate", err, fields)
	}()

	s.credentials.beginExchange()
	res, err := s.Call(ctx, Request{
		Path:   oauthPath,
		Method: http.MethodPost,
		Body:   FormBody{Values: auth.ClientCredentialsGrant()},
	}, AuthModeBasic)
	if err != nil {
		s.credentials.failExchange()
		return auth.TokenResponse{}, auth.BearerToken{}, newAuthError(err, fields)
	}
	fields["call_id"] = res.CallID

	resp, err = auth.DecodeTokenResponse(res.Body)
	if err != nil {
		s.credentials.failExchange()
		decodeErr := newDecodeError(err, "core: decode token response", map[string]any{"call_id": res.CallID})
		return auth.TokenResponse{}, auth.BearerToken{}, newAuthError(decodeErr, fields)
	}
	token = s.credentials.completeExchange(resp)
	s.logDebug(ctx, "bearer token installed", map[string]any{
		"call_id":    res.CallID,
		"token_type": token.TokenType,
	})
	return resp, token, nil
}

// AuthorizationHeader resolves the Authorization value for mode. Bearer mode
// authenticates once when no usable token is held.
func (s *Service) AuthorizationHeader(ctx context.Context, mode AuthMode) (string, error) {
	resolved, err := s.authorizationHeader(ctx, mode)
	return resolved.header, err
}

type authorization struct {
	header      string
	accessToken string
	// minted is set when the token was obtained by this resolution rather
	// than taken from the active token.
	minted bool
}

// authorizationHeader also reports the raw access token behind a bearer
// header so a 401 can retire exactly that token.
func (s *Service) authorizationHeader(ctx context.Context, mode AuthMode) (authorization, error) {
	normalized, ok := mode.normalize()
	if !ok {
		return authorization{}, newBadInputError("core: unsupported auth mode", map[string]any{"auth_mode": string(mode)})
	}
	switch normalized {
	case AuthModeNone:
		return authorization{}, nil
	case AuthModeBasic:
		return authorization{header: s.credentials.BasicHeader()}, nil
	}
	if token, ok := s.credentials.ActiveToken(); ok {
		return authorization{header: token.Header(), accessToken: token.AccessToken}, nil
	}
	_, token, err := s.authenticate(ctx)
	if err != nil {
		return authorization{}, err
	}
	return authorization{header: token.Header(), accessToken: token.AccessToken, minted: true}, nil
}
