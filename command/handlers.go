package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-mati/auth"
	"github.com/goliatone/go-mati/core"
)

type MutatingService interface {
	Authenticate(ctx context.Context) (auth.TokenResponse, error)
	CreateIdentity(ctx context.Context, metadata map[string]any) (core.Identity, error)
	UploadValidationData(ctx context.Context, identityID string, inputs []core.VerificationInput) ([]core.UploadResult, error)
}

type AuthenticateCommand struct {
	service MutatingService
}

func NewAuthenticateCommand(service MutatingService) *AuthenticateCommand {
	return &AuthenticateCommand{service: service}
}

func (c *AuthenticateCommand) Execute(ctx context.Context, _ AuthenticateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authenticate service is required")
	}
	out, err := c.service.Authenticate(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateIdentityCommand struct {
	service MutatingService
}

func NewCreateIdentityCommand(service MutatingService) *CreateIdentityCommand {
	return &CreateIdentityCommand{service: service}
}

func (c *CreateIdentityCommand) Execute(ctx context.Context, msg CreateIdentityMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create identity service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.CreateIdentity(ctx, msg.Metadata)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UploadValidationDataCommand struct {
	service MutatingService
}

func NewUploadValidationDataCommand(service MutatingService) *UploadValidationDataCommand {
	return &UploadValidationDataCommand{service: service}
}

func (c *UploadValidationDataCommand) Execute(ctx context.Context, msg UploadValidationDataMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: upload validation data service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.UploadValidationData(ctx, msg.IdentityID, msg.Inputs)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
