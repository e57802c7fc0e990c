// Package mati is a client for the Mati identity-verification API.
//
// A client holds one set of OAuth client credentials, exchanges them for a
// bearer token on first use, and replays a request once when the token is
// rejected. Identities, verification inputs and verifications are exposed as
// typed values; webhook signatures are validated against the raw body.
package mati

import (
	"github.com/goliatone/go-mati/auth"
	"github.com/goliatone/go-mati/core"
	"github.com/goliatone/go-mati/transport"
)

type Config = core.Config
type TokenConfig = core.TokenConfig
type TransportConfig = core.TransportConfig

type Option = core.Option

type Service = core.Service

type AuthMode = core.AuthMode
type Request = core.Request
type Response = core.Response
type TokenResponse = auth.TokenResponse

type Identity = core.Identity
type IdentityStatus = core.IdentityStatus
type VerificationInput = core.VerificationInput
type DocumentPhoto = core.DocumentPhoto
type SelfiePhoto = core.SelfiePhoto
type SelfieVideo = core.SelfieVideo
type UploadResult = core.UploadResult

type Verification = core.Verification
type Document = core.Document
type Step = core.Step
type DocumentScore = core.DocumentScore

type WebhookResource = core.WebhookResource
type EventName = core.EventName

const (
	AuthModeBearer = core.AuthModeBearer
	AuthModeBasic  = core.AuthModeBasic
	AuthModeNone   = core.AuthModeNone

	DefaultHost = core.DefaultHost
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithTransport       = core.WithTransport
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithClock           = core.WithClock
	WithCallIDGenerator = core.WithCallIDGenerator
	WithRenewBefore     = core.WithRenewBefore
)

var (
	IsConfigError   = core.IsConfigError
	IsAuthError     = core.IsAuthError
	IsHTTPError     = core.IsHTTPError
	IsDecodeError   = core.IsDecodeError
	IsBadInputError = core.IsBadInputError
	HTTPStatusCode  = core.HTTPStatusCode
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// New builds a client that talks to the API over net/http. A WithTransport
// option replaces the default REST adapter.
func New(cfg Config, opts ...Option) (*Service, error) {
	adapter := transport.NewRESTAdapterFromConfig(cfg.Transport)
	options := make([]Option, 0, len(opts)+1)
	options = append(options, core.WithTransport(adapter))
	options = append(options, opts...)
	return core.NewService(cfg, options...)
}

// NewService builds a client without a default transport.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
