package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-mati/core"
)

var (
	_ gocmd.Commander[AuthenticateMessage]         = (*AuthenticateCommand)(nil)
	_ gocmd.Commander[CreateIdentityMessage]       = (*CreateIdentityCommand)(nil)
	_ gocmd.Commander[UploadValidationDataMessage] = (*UploadValidationDataCommand)(nil)

	_ MutatingService = (*core.Service)(nil)
)
