package mati

import (
	"fmt"

	"github.com/goliatone/go-mati/command"
	"github.com/goliatone/go-mati/query"
	"github.com/goliatone/go-mati/webhooks"
)

// CommandQueryService is the surface the facade binds its handlers to.
type CommandQueryService interface {
	command.MutatingService
	query.VerificationReader
	query.SignatureValidator
}

type Commands struct {
	Authenticate         *command.AuthenticateCommand
	CreateIdentity       *command.CreateIdentityCommand
	UploadValidationData *command.UploadValidationDataCommand
}

type Queries struct {
	RetrieveVerification *query.RetrieveVerificationQuery
	FetchVerification    *query.FetchVerificationQuery
	FetchResource        *query.FetchResourceQuery
	ValidateSignature    *query.ValidateSignatureQuery
}

// Facade exposes the client as go-command handlers.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("mati: service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			Authenticate:         command.NewAuthenticateCommand(service),
			CreateIdentity:       command.NewCreateIdentityCommand(service),
			UploadValidationData: command.NewUploadValidationDataCommand(service),
		},
		queries: Queries{
			RetrieveVerification: query.NewRetrieveVerificationQuery(service),
			FetchVerification:    query.NewFetchVerificationQuery(service),
			FetchResource:        query.NewFetchResourceQuery(service),
			ValidateSignature:    query.NewValidateSignatureQuery(service),
		},
	}, nil
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

// WebhookHandler returns an http.Handler that checks the x-signature header
// with the service's webhook secret before dispatching to events.
func (f *Facade) WebhookHandler(events webhooks.EventHandler) *webhooks.Handler {
	var verifier webhooks.Verifier
	if f != nil && f.service != nil {
		verifier = webhooks.NewServiceVerifier(f.service)
	}
	return webhooks.NewHandler(verifier, events)
}
