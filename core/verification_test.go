package core

import (
	"context"
	"reflect"
	"testing"
	"time"
)

const verificationFixture = `{
  "id": "5d1b2c3a",
  "expired": false,
  "unexpectedField": {"nested": true},
  "dateCreated": "2024-03-04T10:11:12.123Z",
  "dateUpdated": "2024-03-04T10:15:00Z",
  "hasProblem": false,
  "identity": {"id": "idn_1", "status": "verified", "dateCreated": "2024-03-04T10:00:00Z"},
  "metadata": {"email": "a@b.com"},
  "computed": {"age": {"data": 30}},
  "steps": [
    {"id": "liveness", "status": 200, "data": {"videoUrl": "https://media/video.mp4", "spriteUrl": "https://media/sprite.jpg", "selfieUrl": "https://media/selfie.jpg"}}
  ],
  "documents": [
    {"type": "proof-of-residency", "country": "MX", "region": "", "photos": ["p1"], "steps": [{"id": "document-reading", "status": 200}]},
    {"type": "passport", "country": "MX", "region": "", "photos": ["a"], "steps": [{"id": "document-reading", "status": 200}]},
    {"type": "passport", "country": "MX", "region": "", "photos": ["b"], "steps": [{"id": "template-matching", "status": 500, "error": {"type": "StepError", "code": "X", "message": "no match"}}]}
  ]
}`

func TestDecodeVerification_TypedSchemaIgnoresUnknownFields(t *testing.T) {
	verification, err := DecodeVerification([]byte(verificationFixture))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if verification.ID != "5d1b2c3a" || verification.Expired {
		t.Fatalf("unexpected verification header %+v", verification)
	}
	if len(verification.Documents) != 3 || len(verification.Steps) != 1 {
		t.Fatalf("expected typed documents and steps, got %d/%d", len(verification.Documents), len(verification.Steps))
	}
	if verification.Documents[2].Steps[0].Error == nil {
		t.Fatalf("expected typed step error")
	}
	want := time.Date(2024, 3, 4, 10, 11, 12, 123000000, time.UTC)
	if verification.DateCreated == nil || !verification.DateCreated.Equal(want) {
		t.Fatalf("unexpected dateCreated %v", verification.DateCreated)
	}
	if verification.HasProblem == nil || *verification.HasProblem {
		t.Fatalf("expected hasProblem=false")
	}
	if verification.Identity == nil || verification.Identity.Status != IdentityStatusVerified || verification.Identity.DateCreated == nil {
		t.Fatalf("unexpected identity summary %+v", verification.Identity)
	}
}

func TestDecodeVerification_RejectsMissingIDAndBadDates(t *testing.T) {
	if _, err := DecodeVerification([]byte(`{"expired":true}`)); err == nil {
		t.Fatalf("expected missing id error")
	}
	if _, err := DecodeVerification([]byte(`{"id":"v1","dateCreated":"yesterday"}`)); err == nil {
		t.Fatalf("expected timestamp error")
	}
}

func TestDecodeVerification_DefaultsEmptyLists(t *testing.T) {
	verification, err := DecodeVerification([]byte(`{"id":"v1","documents":[{"type":"passport"}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if verification.Steps == nil || verification.Documents[0].Steps == nil {
		t.Fatalf("expected empty, non-nil step lists")
	}
}

func TestVerification_GovernmentIDPicksLastDocument(t *testing.T) {
	verification, err := DecodeVerification([]byte(verificationFixture))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	doc, ok := verification.GovernmentIDDocument()
	if !ok {
		t.Fatalf("expected government id document")
	}
	if !reflect.DeepEqual(doc.Photos, []string{"b"}) {
		t.Fatalf("expected the last passport, got photos %v", doc.Photos)
	}
	score, ok := verification.GovernmentIDValidation()
	if !ok {
		t.Fatalf("expected government id validation")
	}
	if score.IsValid {
		t.Fatalf("expected invalid score")
	}
	if !reflect.DeepEqual(score.ErrorCodes, []string{"X"}) {
		t.Fatalf("unexpected error codes %v", score.ErrorCodes)
	}
	if score.Score != 0 {
		t.Fatalf("expected zero score, got %d", score.Score)
	}
}

func TestVerification_ProofOfResidencyAndLiveness(t *testing.T) {
	verification, err := DecodeVerification([]byte(verificationFixture))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	score, ok := verification.ProofOfResidencyValidation()
	if !ok || !score.IsValid || score.Score != 200 || score.ErrorCodes != nil {
		t.Fatalf("unexpected proof of residency score %+v", score)
	}
	liveness, ok := verification.LivenessValidation()
	if !ok || !liveness.IsValid || liveness.Score != 200 {
		t.Fatalf("unexpected liveness score %+v", liveness)
	}
	step, _ := verification.LivenessStep()
	media, ok := step.LivenessMedia()
	if !ok || media.VideoURL != "https://media/video.mp4" || media.SelfieURL != "https://media/selfie.jpg" {
		t.Fatalf("unexpected liveness media %+v", media)
	}
}

func TestVerification_MissingViewsReportAbsence(t *testing.T) {
	verification := Verification{ID: "v1"}
	if _, ok := verification.GovernmentIDDocument(); ok {
		t.Fatalf("expected no government id document")
	}
	if _, ok := verification.LivenessValidation(); ok {
		t.Fatalf("expected no liveness validation")
	}
}

func TestScoreSteps(t *testing.T) {
	empty := ScoreSteps(nil)
	if !empty.IsValid || empty.Score != 0 || empty.ErrorCodes != nil {
		t.Fatalf("unexpected empty score %+v", empty)
	}
	mixed := ScoreSteps([]Step{
		{ID: "a", Status: 200},
		{ID: "b", Status: 100},
		{ID: "c", Status: 500, Error: &StepError{Code: "c.failed"}},
	})
	if mixed.IsValid || mixed.Score != 300 || !reflect.DeepEqual(mixed.ErrorCodes, []string{"c.failed"}) {
		t.Fatalf("unexpected mixed score %+v", mixed)
	}
}

func TestScoreSteps_ErrorWithoutCodeFallsBack(t *testing.T) {
	score := ScoreSteps([]Step{
		{ID: "a", Status: 500, Error: &StepError{Type: "StepError", Message: "Template not matched"}},
		{ID: "b", Status: 500, Error: &StepError{Message: "Document expired"}},
		{ID: "c", Status: 500, Error: &StepError{}},
	})
	if score.IsValid || score.Score != 0 {
		t.Fatalf("unexpected score %+v", score)
	}
	if !reflect.DeepEqual(score.ErrorCodes, []string{"StepError", "Document expired"}) {
		t.Fatalf("unexpected error codes %q", score.ErrorCodes)
	}
}

func TestDocument_OCRHelpers(t *testing.T) {
	ine := Document{
		Type: DocumentTypeNationalID,
		Steps: []Step{{
			ID:     StepIDDocumentReading,
			Status: 200,
			Data:   map[string]any{"cde": map[string]any{"label": "Elector Key", "value": "ABC123"}},
		}},
		Fields: map[string]DocumentField{
			"address":   {Label: "Address", Value: "Calle 1"},
			"full_name": {Label: "Name", Value: "Ana Perez"},
			"curp":      {Label: "CURP", Value: "PEPA800101"},
		},
	}
	if got := ine.DocumentType(); got != "ine" {
		t.Fatalf("expected ine, got %q", got)
	}
	if ine.Address() != "Calle 1" || ine.FullName() != "Ana Perez" || ine.CURP() != "PEPA800101" {
		t.Fatalf("unexpected ocr fields %q %q %q", ine.Address(), ine.FullName(), ine.CURP())
	}

	dni := Document{Type: DocumentTypeNationalID, Steps: []Step{{ID: StepIDDocumentReading, Data: map[string]any{}}}}
	if got := dni.DocumentType(); got != "dni" {
		t.Fatalf("expected dni, got %q", got)
	}
	license := Document{Type: DocumentTypeDrivingLicense}
	if got := license.DocumentType(); got != "driving-license" {
		t.Fatalf("expected raw type, got %q", got)
	}
	if license.Address() != "" {
		t.Fatalf("expected empty address")
	}
}

func TestStepError_AcceptsStringOrObject(t *testing.T) {
	verification, err := DecodeVerification([]byte(`{"id":"v1","steps":[{"id":"a","status":500,"error":"timeout"},{"id":"b","status":500,"error":{"code":"b.bad"}}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if verification.Steps[0].Error == nil || verification.Steps[0].Error.Code != "timeout" {
		t.Fatalf("unexpected string error %+v", verification.Steps[0].Error)
	}
	if verification.Steps[1].Error == nil || verification.Steps[1].Error.Code != "b.bad" {
		t.Fatalf("unexpected object error %+v", verification.Steps[1].Error)
	}
}

func TestRetrieveVerification_GetsByID(t *testing.T) {
	var captured TransportRequest
	transport := &scriptedTransport{handler: apiRoutes(func(req TransportRequest) (TransportResponse, error) {
		captured = req
		return jsonResponse(200, verificationFixture), nil
	})}
	svc := newTestService(t, transport)

	verification, err := svc.RetrieveVerification(context.Background(), "5d1b2c3a")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if captured.Method != "GET" || captured.URL != "https://api.mati.test/v2/verifications/5d1b2c3a" {
		t.Fatalf("unexpected request %s %s", captured.Method, captured.URL)
	}
	if verification.ID != "5d1b2c3a" {
		t.Fatalf("unexpected verification id %q", verification.ID)
	}
}

func TestRetrieveVerification_BadPayloadIsDecodeError(t *testing.T) {
	transport := &scriptedTransport{handler: apiRoutes(func(TransportRequest) (TransportResponse, error) {
		return jsonResponse(200, `{"expired":false}`), nil
	})}
	svc := newTestService(t, transport)

	if _, err := svc.RetrieveVerification(context.Background(), "v1"); !IsDecodeError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFetchVerification_UsesResourceURL(t *testing.T) {
	var captured TransportRequest
	transport := &scriptedTransport{handler: apiRoutes(func(req TransportRequest) (TransportResponse, error) {
		captured = req
		return jsonResponse(200, `{"id":"db8d24783"}`), nil
	})}
	svc := newTestService(t, transport)

	verification, err := svc.FetchVerification(context.Background(), "https://api.getmati.com/api/v1/verifications/db8d24783")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if captured.URL != "https://api.getmati.com/api/v1/verifications/db8d24783" {
		t.Fatalf("unexpected url %q", captured.URL)
	}
	if captured.Headers["Authorization"] != "Bearer token-1" {
		t.Fatalf("expected bearer auth, got %q", captured.Headers["Authorization"])
	}
	if verification.ID != "db8d24783" {
		t.Fatalf("unexpected verification %+v", verification)
	}

	raw, err := svc.FetchResource(context.Background(), "https://api.getmati.com/api/v1/verifications/db8d24783")
	if err != nil {
		t.Fatalf("fetch resource: %v", err)
	}
	if string(raw) != `{"id":"db8d24783"}` {
		t.Fatalf("unexpected raw resource %s", raw)
	}

	if _, err := svc.FetchResource(context.Background(), "/relative"); !IsBadInputError(err) {
		t.Fatalf("expected bad input for relative url, got %v", err)
	}
}
