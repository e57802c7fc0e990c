package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	identitiesPath  = "v2/identities"
	sendInputSuffix = "send-input"
	inputsFieldName = "inputs"
)

type identityWire struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateIdentity registers a new identity carrying the caller's metadata.
func (s *Service) CreateIdentity(ctx context.Context, metadata map[string]any) (identity Identity, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if identity.ID != "" {
			fields["identity_id"] = identity.ID
			fields["identity_status"] = string(identity.Status)
		}
		s.observeOperation(ctx, startedAt, "identity.create", err, fields)
	}()

	if metadata == nil {
		metadata = map[string]any{}
	}
	res, err := s.Call(ctx, Request{
		Path:   identitiesPath,
		Method: http.MethodPost,
		Body:   JSONBody{Value: map[string]any{"metadata": metadata}},
	}, AuthModeBearer)
	if err != nil {
		return Identity{}, err
	}
	fields["call_id"] = res.CallID

	var wire identityWire
	if err := res.Decode(&wire); err != nil {
		return Identity{}, err
	}
	meta := map[string]any{"call_id": res.CallID}
	if strings.TrimSpace(wire.ID) == "" {
		return Identity{}, newDecodeError(nil, "core: identity response is missing id", meta)
	}
	status, err := ParseIdentityStatus(wire.Status)
	if err != nil {
		return Identity{}, newDecodeError(err, "core: decode identity", meta)
	}
	return Identity{ID: wire.ID, Status: status}, nil
}

// UploadValidationData sends every input in a single multipart request. The
// result at index i belongs to inputs[i].
func (s *Service) UploadValidationData(ctx context.Context, identityID string, inputs []VerificationInput) (results []UploadResult, err error) {
	startedAt := time.Now()
	identityID = strings.TrimSpace(identityID)
	fields := map[string]any{
		"identity_id": identityID,
		"input_count": len(inputs),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "identity.upload_inputs", err, fields)
	}()

	if identityID == "" {
		return nil, newBadInputError("core: identity id is required", fields)
	}
	body, err := buildUploadBody(inputs)
	if err != nil {
		return nil, newBadInputError(err.Error(), fields)
	}

	res, err := s.Call(ctx, Request{
		Path:   identitiesPath + "/" + url.PathEscape(identityID) + "/" + sendInputSuffix,
		Method: http.MethodPost,
		Body:   body,
	}, AuthModeBearer)
	if err != nil {
		return nil, err
	}
	fields["call_id"] = res.CallID

	var wire []uploadResultWire
	if err := res.Decode(&wire); err != nil {
		return nil, err
	}
	if len(wire) != len(inputs) {
		return nil, newDecodeError(nil,
			fmt.Sprintf("core: upload returned %d results for %d inputs", len(wire), len(inputs)),
			map[string]any{"call_id": res.CallID},
		)
	}
	results = make([]UploadResult, len(wire))
	for i, item := range wire {
		results[i] = UploadResult{Result: item.Result, Error: item.Error, Input: inputs[i]}
	}
	return results, nil
}

func buildUploadBody(inputs []VerificationInput) (MultipartBody, error) {
	if len(inputs) == 0 {
		return MultipartBody{}, fmt.Errorf("core: at least one input is required")
	}
	descriptors := make([]inputDescriptor, 0, len(inputs))
	files := make([]MultipartFile, 0, len(inputs))
	for i, input := range inputs {
		if input == nil {
			return MultipartBody{}, fmt.Errorf("core: input %d is nil", i)
		}
		if err := input.validate(i); err != nil {
			return MultipartBody{}, err
		}
		descriptors = append(descriptors, input.descriptor())
		files = append(files, MultipartFile{
			FieldName: PartName(input.InputType()),
			FileName:  input.FileName(),
			Content:   input.Reader(),
		})
	}
	encoded, err := json.Marshal(descriptors)
	if err != nil {
		return MultipartBody{}, fmt.Errorf("core: encode inputs: %w", err)
	}
	return MultipartBody{
		Fields: []MultipartField{{Name: inputsFieldName, Value: string(encoded)}},
		Files:  files,
	}, nil
}
