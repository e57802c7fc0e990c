package devkit

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-mati/core"
)

const (
	PathOAuth         = "oauth"
	PathIdentities    = "v2/identities"
	PathVerifications = "v2/verifications"
)

func JSONScript(status int, body string) TransportScript {
	return TransportScript{Response: core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}}
}

func ErrorScript(err error) TransportScript {
	return TransportScript{Err: err}
}

// TokenScript answers the oauth endpoint with accessToken valid for
// expiresIn seconds. A non-positive expiresIn omits the field.
func TokenScript(accessToken string, expiresIn int) TransportScript {
	body := fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer"}`, accessToken)
	if expiresIn > 0 {
		body = fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":%d}`, accessToken, expiresIn)
	}
	return JSONScript(http.StatusOK, body)
}

func UnauthorizedScript() TransportScript {
	return JSONScript(http.StatusUnauthorized, `{"code":401,"message":"Unauthorized"}`)
}

func IdentityScript(id string, status string) TransportScript {
	return JSONScript(http.StatusOK, fmt.Sprintf(`{"_id":%q,"id":%q,"status":%q,"alive":null}`, id, id, status))
}

func SendInputPath(identityID string) string {
	return PathIdentities + "/" + identityID + "/send-input"
}

func VerificationPath(verificationID string) string {
	return PathVerifications + "/" + verificationID
}

// VerificationFixture is a verification payload with a liveness step, a proof
// of residency and two passports, the second of which failed.
func VerificationFixture(id string) string {
	return fmt.Sprintf(`{
  "id": %q,
  "expired": false,
  "dateCreated": "2024-03-04T10:11:12.000Z",
  "identity": {"status": "verified"},
  "metadata": {"email": "a@b.com"},
  "computed": {},
  "steps": [
    {"id": "liveness", "status": 200, "data": {"videoUrl": "https://media.test/video.mp4", "spriteUrl": "https://media.test/sprite.jpg", "selfieUrl": "https://media.test/selfie.jpg"}, "error": null}
  ],
  "documents": [
    {"type": "proof-of-residency", "country": "MX", "region": "", "photos": ["https://media.test/por.jpg"], "steps": [{"id": "document-reading", "status": 200, "data": {}}], "fields": {"address": {"label": "Address", "value": "Calle 1"}}},
    {"type": "passport", "country": "MX", "region": "", "photos": ["https://media.test/passport-1.jpg"], "steps": [{"id": "template-matching", "status": 200}]},
    {"type": "passport", "country": "MX", "region": "", "photos": ["https://media.test/passport-2.jpg"], "steps": [{"id": "template-matching", "status": 500, "error": {"type": "StepError", "code": "X", "message": "Template not matched"}}]}
  ]
}`, id)
}
