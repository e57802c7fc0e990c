package query

import (
	"encoding/json"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-mati/core"
)

var (
	_ gocmd.Querier[RetrieveVerificationMessage, core.Verification] = (*RetrieveVerificationQuery)(nil)
	_ gocmd.Querier[FetchVerificationMessage, core.Verification]    = (*FetchVerificationQuery)(nil)
	_ gocmd.Querier[FetchResourceMessage, json.RawMessage]          = (*FetchResourceQuery)(nil)
	_ gocmd.Querier[ValidateSignatureMessage, bool]                 = (*ValidateSignatureQuery)(nil)

	_ VerificationReader = (*core.Service)(nil)
	_ SignatureValidator = (*core.Service)(nil)
)
