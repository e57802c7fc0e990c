package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type IdentityStatus string

const (
	IdentityStatusDeleted      IdentityStatus = "deleted"
	IdentityStatusPending      IdentityStatus = "pending"
	IdentityStatusRejected     IdentityStatus = "rejected"
	IdentityStatusReviewNeeded IdentityStatus = "reviewNeeded"
	IdentityStatusRunning      IdentityStatus = "running"
	IdentityStatusVerified     IdentityStatus = "verified"
)

func (s IdentityStatus) Valid() bool {
	switch s {
	case IdentityStatusDeleted,
		IdentityStatusPending,
		IdentityStatusRejected,
		IdentityStatusReviewNeeded,
		IdentityStatusRunning,
		IdentityStatusVerified:
		return true
	default:
		return false
	}
}

func ParseIdentityStatus(raw string) (IdentityStatus, error) {
	status := IdentityStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", fmt.Errorf("core: unknown identity status %q", raw)
	}
	return status, nil
}

type Identity struct {
	ID     string
	Status IdentityStatus
}

type InputType string

const (
	InputTypeDocumentPhoto InputType = "document-photo"
	InputTypeSelfiePhoto   InputType = "selfie-photo"
	InputTypeSelfieVideo   InputType = "selfie-video"
)

// PartName is the multipart field carrying the binary payload of an input.
func PartName(inputType InputType) string {
	switch inputType {
	case InputTypeSelfieVideo:
		return "video"
	case InputTypeSelfiePhoto:
		return "selfie"
	default:
		return "document"
	}
}

type DocumentType string

const (
	DocumentTypeDrivingLicense   DocumentType = "driving-license"
	DocumentTypeNationalID       DocumentType = "national-id"
	DocumentTypePassport         DocumentType = "passport"
	DocumentTypeProofOfResidency DocumentType = "proof-of-residency"
)

func (t DocumentType) IsGovernmentID() bool {
	switch t {
	case DocumentTypeNationalID, DocumentTypePassport, DocumentTypeDrivingLicense:
		return true
	default:
		return false
	}
}

type PageSide string

const (
	PageFront PageSide = "front"
	PageBack  PageSide = "back"
)

// VerificationInput is one file submitted for an identity. The set of
// implementations is closed: DocumentPhoto, SelfiePhoto and SelfieVideo.
type VerificationInput interface {
	InputType() InputType
	FileName() string
	Reader() io.Reader
	validate(index int) error
	descriptor() inputDescriptor
}

// Group returns a pointer for the optional input group field.
func Group(n int) *int {
	return &n
}

type DocumentPhoto struct {
	Filename string
	Type     DocumentType
	Page     PageSide
	Country  string
	Region   string
	Group    *int
	Content  io.Reader
}

func (DocumentPhoto) InputType() InputType { return InputTypeDocumentPhoto }
func (d DocumentPhoto) FileName() string   { return d.Filename }
func (d DocumentPhoto) Reader() io.Reader  { return d.Content }

func (d DocumentPhoto) validate(index int) error {
	if err := validateFile(index, d.Filename, d.Content); err != nil {
		return err
	}
	if strings.TrimSpace(string(d.Type)) == "" {
		return fmt.Errorf("core: input %d: document type is required", index)
	}
	if strings.TrimSpace(d.Country) == "" {
		return fmt.Errorf("core: input %d: country is required", index)
	}
	switch d.page() {
	case PageFront, PageBack:
	default:
		return fmt.Errorf("core: input %d: unsupported page %q", index, d.Page)
	}
	return nil
}

func (d DocumentPhoto) page() PageSide {
	if strings.TrimSpace(string(d.Page)) == "" {
		return PageFront
	}
	return d.Page
}

func (d DocumentPhoto) descriptor() inputDescriptor {
	return inputDescriptor{
		InputType: InputTypeDocumentPhoto,
		Group:     d.Group,
		Data: documentData{
			Type:     d.Type,
			Country:  d.Country,
			Page:     d.page(),
			Filename: d.Filename,
			Region:   d.Region,
		},
	}
}

type SelfiePhoto struct {
	Filename string
	Group    *int
	Content  io.Reader
}

func (SelfiePhoto) InputType() InputType { return InputTypeSelfiePhoto }
func (s SelfiePhoto) FileName() string   { return s.Filename }
func (s SelfiePhoto) Reader() io.Reader  { return s.Content }

func (s SelfiePhoto) validate(index int) error {
	return validateFile(index, s.Filename, s.Content)
}

func (s SelfiePhoto) descriptor() inputDescriptor {
	return inputDescriptor{
		InputType: InputTypeSelfiePhoto,
		Group:     s.Group,
		Data:      fileData{Filename: s.Filename},
	}
}

type SelfieVideo struct {
	Filename string
	Group    *int
	Content  io.Reader
}

func (SelfieVideo) InputType() InputType { return InputTypeSelfieVideo }
func (s SelfieVideo) FileName() string   { return s.Filename }
func (s SelfieVideo) Reader() io.Reader  { return s.Content }

func (s SelfieVideo) validate(index int) error {
	return validateFile(index, s.Filename, s.Content)
}

func (s SelfieVideo) descriptor() inputDescriptor {
	return inputDescriptor{
		InputType: InputTypeSelfieVideo,
		Group:     s.Group,
		Data:      fileData{Filename: s.Filename},
	}
}

func validateFile(index int, filename string, content io.Reader) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("core: input %d: filename is required", index)
	}
	if content == nil {
		return fmt.Errorf("core: input %d: content is required", index)
	}
	return nil
}

type inputDescriptor struct {
	InputType InputType `json:"inputType"`
	Group     *int      `json:"group,omitempty"`
	Data      any       `json:"data"`
}

// documentData always carries every key, region included when empty.
type documentData struct {
	Type     DocumentType `json:"type"`
	Country  string       `json:"country"`
	Page     PageSide     `json:"page"`
	Filename string       `json:"filename"`
	Region   string       `json:"region"`
}

type fileData struct {
	Filename string `json:"filename"`
}

// StepError is the error attached to a verification step or upload result.
// The API sends either an object or a bare string.
type StepError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// identifier returns the code, falling back to the type and then the message
// for errors that carry no code.
func (e *StepError) identifier() string {
	if e == nil {
		return ""
	}
	for _, candidate := range []string{e.Code, e.Type, e.Message} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func (e *StepError) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var code string
		if err := json.Unmarshal(data, &code); err != nil {
			return err
		}
		*e = StepError{Code: code, Message: code}
		return nil
	}
	type plain StepError
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*e = StepError(decoded)
	return nil
}

func (e *StepError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" && e.Code != "" && e.Message != e.Code {
		return e.Code + ": " + e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return e.Message
}

// UploadResult pairs the server outcome for one input with the input at the
// same position in the request.
type UploadResult struct {
	Result bool
	Error  *StepError
	Input  VerificationInput
}

type uploadResultWire struct {
	Result bool       `json:"result"`
	Error  *StepError `json:"error,omitempty"`
}
