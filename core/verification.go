package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	StepIDLiveness        = "liveness"
	StepIDDocumentReading = "document-reading"
	StepStatusSuccess     = 200
)

type Step struct {
	ID     string         `json:"id"`
	Status int            `json:"status"`
	Error  *StepError     `json:"error,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

type LivenessMedia struct {
	VideoURL  string
	SpriteURL string
	SelfieURL string
}

// LivenessMedia reads the media links a liveness step publishes in its data.
func (s Step) LivenessMedia() (LivenessMedia, bool) {
	if len(s.Data) == 0 {
		return LivenessMedia{}, false
	}
	media := LivenessMedia{
		VideoURL:  stringValue(s.Data["videoUrl"]),
		SpriteURL: stringValue(s.Data["spriteUrl"]),
		SelfieURL: stringValue(s.Data["selfieUrl"]),
	}
	if media == (LivenessMedia{}) {
		return LivenessMedia{}, false
	}
	return media, true
}

type DocumentField struct {
	Label string `json:"label,omitempty"`
	Value any    `json:"value,omitempty"`
}

type Document struct {
	Type    DocumentType             `json:"type"`
	Country string                   `json:"country"`
	Region  string                   `json:"region"`
	Photos  []string                 `json:"photos"`
	Steps   []Step                   `json:"steps"`
	Fields  map[string]DocumentField `json:"fields,omitempty"`
}

// DocumentType refines the document type with what the OCR step read: a
// national id carrying an elector key is an "ine", other national ids are
// "dni".
func (d Document) DocumentType() string {
	if d.Type != DocumentTypeNationalID && d.Type != DocumentTypePassport {
		return string(d.Type)
	}
	var reading *Step
	for i := range d.Steps {
		if d.Steps[i].ID == StepIDDocumentReading {
			reading = &d.Steps[i]
		}
	}
	if reading == nil || reading.Data == nil {
		return string(d.Type)
	}
	if d.Type == DocumentTypePassport {
		return "passport"
	}
	if cde, ok := reading.Data["cde"].(map[string]any); ok {
		if stringValue(cde["label"]) == "Elector Key" && stringValue(cde["value"]) != "" {
			return "ine"
		}
	}
	return "dni"
}

func (d Document) Address() string  { return d.fieldValue("address") }
func (d Document) FullName() string { return d.fieldValue("full_name") }
func (d Document) CURP() string     { return d.fieldValue("curp") }

func (d Document) fieldValue(name string) string {
	field, ok := d.Fields[name]
	if !ok {
		return ""
	}
	return stringValue(field.Value)
}

type IdentitySummary struct {
	ID          string
	Status      IdentityStatus
	DateCreated *time.Time
	DateUpdated *time.Time
}

type Verification struct {
	ID          string
	Expired     bool
	Steps       []Step
	Documents   []Document
	Metadata    map[string]any
	Computed    map[string]any
	Identity    *IdentitySummary
	HasProblem  *bool
	DateCreated *time.Time
	DateUpdated *time.Time
}

// DocumentScore summarises the steps of one document or of the liveness step.
// An empty step list is valid with a zero score.
type DocumentScore struct {
	IsValid    bool
	Score      int
	ErrorCodes []string
}

func ScoreSteps(steps []Step) DocumentScore {
	score := DocumentScore{IsValid: true}
	for _, step := range steps {
		if step.Status != StepStatusSuccess || step.Error != nil {
			score.IsValid = false
		}
		if step.Error != nil {
			if code := step.Error.identifier(); code != "" {
				score.ErrorCodes = append(score.ErrorCodes, code)
			}
			continue
		}
		score.Score += step.Status
	}
	return score
}

func (v Verification) lastDocument(match func(DocumentType) bool) (Document, bool) {
	for i := len(v.Documents) - 1; i >= 0; i-- {
		if match(v.Documents[i].Type) {
			return v.Documents[i], true
		}
	}
	return Document{}, false
}

func (v Verification) ProofOfResidencyDocument() (Document, bool) {
	return v.lastDocument(func(t DocumentType) bool { return t == DocumentTypeProofOfResidency })
}

func (v Verification) GovernmentIDDocument() (Document, bool) {
	return v.lastDocument(DocumentType.IsGovernmentID)
}

func (v Verification) LivenessStep() (Step, bool) {
	for i := len(v.Steps) - 1; i >= 0; i-- {
		if v.Steps[i].ID == StepIDLiveness {
			return v.Steps[i], true
		}
	}
	return Step{}, false
}

func (v Verification) ProofOfResidencyValidation() (DocumentScore, bool) {
	doc, ok := v.ProofOfResidencyDocument()
	if !ok {
		return DocumentScore{}, false
	}
	return ScoreSteps(doc.Steps), true
}

func (v Verification) GovernmentIDValidation() (DocumentScore, bool) {
	doc, ok := v.GovernmentIDDocument()
	if !ok {
		return DocumentScore{}, false
	}
	return ScoreSteps(doc.Steps), true
}

func (v Verification) LivenessValidation() (DocumentScore, bool) {
	step, ok := v.LivenessStep()
	if !ok {
		return DocumentScore{}, false
	}
	return ScoreSteps([]Step{step}), true
}

type verificationWire struct {
	ID          string               `json:"id"`
	Expired     bool                 `json:"expired"`
	Steps       []Step               `json:"steps"`
	Documents   []Document           `json:"documents"`
	Metadata    map[string]any       `json:"metadata"`
	Computed    map[string]any       `json:"computed"`
	Identity    *identitySummaryWire `json:"identity"`
	HasProblem  *bool                `json:"hasProblem"`
	DateCreated string               `json:"dateCreated"`
	DateUpdated string               `json:"dateUpdated"`
}

type identitySummaryWire struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// DecodeVerification maps a verification payload onto Verification. Unknown
// fields are ignored; a missing id or an unreadable date is an error.
func DecodeVerification(body []byte) (Verification, error) {
	var wire verificationWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return Verification{}, fmt.Errorf("core: decode verification: %w", err)
	}
	if strings.TrimSpace(wire.ID) == "" {
		return Verification{}, fmt.Errorf("core: verification is missing id")
	}
	out := Verification{
		ID:         wire.ID,
		Expired:    wire.Expired,
		Steps:      wire.Steps,
		Documents:  wire.Documents,
		Metadata:   wire.Metadata,
		Computed:   wire.Computed,
		HasProblem: wire.HasProblem,
	}
	if out.Steps == nil {
		out.Steps = []Step{}
	}
	if out.Documents == nil {
		out.Documents = []Document{}
	}
	for i := range out.Documents {
		if out.Documents[i].Steps == nil {
			out.Documents[i].Steps = []Step{}
		}
	}
	var err error
	if out.DateCreated, err = parseTimestamp("dateCreated", wire.DateCreated); err != nil {
		return Verification{}, err
	}
	if out.DateUpdated, err = parseTimestamp("dateUpdated", wire.DateUpdated); err != nil {
		return Verification{}, err
	}
	if wire.Identity != nil {
		summary := &IdentitySummary{
			ID:     wire.Identity.ID,
			Status: IdentityStatus(strings.TrimSpace(wire.Identity.Status)),
		}
		if summary.DateCreated, err = parseTimestamp("identity.dateCreated", wire.Identity.DateCreated); err != nil {
			return Verification{}, err
		}
		if summary.DateUpdated, err = parseTimestamp("identity.dateUpdated", wire.Identity.DateUpdated); err != nil {
			return Verification{}, err
		}
		out.Identity = summary
	}
	return out, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02",
}

func parseTimestamp(field string, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("core: %s is not an ISO-8601 timestamp: %q", field, raw)
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
