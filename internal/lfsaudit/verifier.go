package lfsaudit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	verifyEndpointPathConstant         = "/info/lfs/verify"
	verifyAcceptHeaderNameConstant     = "Accept"
	verifyContentTypeHeaderConstant    = "Content-Type"
	verifyMediaTypeConstant            = "application/vnd.git-lfs+json"
	verifyRequestTimeoutConstant       = 5 * time.Minute
	verifyRequestErrorTemplateConstant = "verification request to %s failed: %w"
	endpointNotFoundTemplateConstant   = "verification endpoint %s does not exist (HTTP 404)"
)

// VerificationStatus classifies a verification endpoint response.
type VerificationStatus int

// Verification outcomes. Anything outside HTTP 200 and 404 means the object is
// not confirmed present; 404 means the endpoint itself is missing.
const (
	VerificationPresent VerificationStatus = iota
	VerificationMissing
)

// EndpointNotFoundError reports an HTTP 404 from the verification endpoint,
// which signals endpoint misconfiguration rather than object absence.
type EndpointNotFoundError struct {
	EndpointURL string
}

// Error describes the missing endpoint.
func (notFoundError EndpointNotFoundError) Error() string {
	return fmt.Sprintf(endpointNotFoundTemplateConstant, notFoundError.EndpointURL)
}

// ObjectVerifier probes a remote for the presence of one large object.
type ObjectVerifier interface {
	Verify(executionContext context.Context, remote Remote, pointer Pointer) (VerificationStatus, error)
}

type verifyRequestBody struct {
	Oid  string `json:"oid"`
	Size int64  `json:"size"`
}

// HTTPObjectVerifier verifies objects against the git-lfs verification endpoint.
type HTTPObjectVerifier struct {
	httpClient *http.Client
}

// NewHTTPObjectVerifier constructs a verifier with the protocol's five-minute timeout.
func NewHTTPObjectVerifier() *HTTPObjectVerifier {
	return &HTTPObjectVerifier{
		httpClient: &http.Client{Timeout: verifyRequestTimeoutConstant},
	}
}

// Verify posts the pointer's hash and size to the remote's verification endpoint.
func (verifier *HTTPObjectVerifier) Verify(executionContext context.Context, remote Remote, pointer Pointer) (VerificationStatus, error) {
	endpointURL := remote.URL + verifyEndpointPathConstant

	requestBody, marshalError := json.Marshal(verifyRequestBody{Oid: pointer.Oid, Size: pointer.Size})
	if marshalError != nil {
		return VerificationMissing, fmt.Errorf(verifyRequestErrorTemplateConstant, endpointURL, marshalError)
	}

	verifyRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, endpointURL, bytes.NewReader(requestBody))
	if requestError != nil {
		return VerificationMissing, fmt.Errorf(verifyRequestErrorTemplateConstant, endpointURL, requestError)
	}
	verifyRequest.Header.Set(verifyAcceptHeaderNameConstant, verifyMediaTypeConstant)
	verifyRequest.Header.Set(verifyContentTypeHeaderConstant, verifyMediaTypeConstant)
	if remote.Credential != nil {
		verifyRequest.SetBasicAuth(remote.Credential.Username, remote.Credential.Password)
	}

	verifyResponse, responseError := verifier.httpClient.Do(verifyRequest)
	if responseError != nil {
		return VerificationMissing, fmt.Errorf(verifyRequestErrorTemplateConstant, endpointURL, responseError)
	}
	defer verifyResponse.Body.Close()

	switch verifyResponse.StatusCode {
	case http.StatusOK:
		return VerificationPresent, nil
	case http.StatusNotFound:
		return VerificationMissing, EndpointNotFoundError{EndpointURL: endpointURL}
	default:
		return VerificationMissing, nil
	}
}
