package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-mati/core"
)

const (
	TypeAuthenticate         = "mati.command.authenticate"
	TypeCreateIdentity       = "mati.command.identity.create"
	TypeUploadValidationData = "mati.command.identity.upload_inputs"
)

type AuthenticateMessage struct{}

func (AuthenticateMessage) Type() string { return TypeAuthenticate }

func (AuthenticateMessage) Validate() error { return nil }

type CreateIdentityMessage struct {
	Metadata map[string]any
}

func (CreateIdentityMessage) Type() string { return TypeCreateIdentity }

func (CreateIdentityMessage) Validate() error { return nil }

type UploadValidationDataMessage struct {
	IdentityID string
	Inputs     []core.VerificationInput
}

func (UploadValidationDataMessage) Type() string { return TypeUploadValidationData }

func (m UploadValidationDataMessage) Validate() error {
	if strings.TrimSpace(m.IdentityID) == "" {
		return commandValidationError("identity_id", "identity id is required")
	}
	if len(m.Inputs) == 0 {
		return commandValidationError("inputs", "at least one input is required")
	}
	for i, input := range m.Inputs {
		if input == nil {
			return commandValidationError(fmt.Sprintf("inputs[%d]", i), "input is required")
		}
	}
	return nil
}
