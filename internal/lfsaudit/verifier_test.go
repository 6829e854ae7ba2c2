package lfsaudit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/allgit/internal/lfsaudit"
)

const (
	testVerifyRemoteNameConstant  = "origin"
	testVerifyOidConstant         = "abc123"
	testVerifyPointerNameConstant = "assets/big.bin"
	testVerifySizeConstant        = int64(2048)
	testVerifyUsernameConstant    = "auditor"
	testVerifyPasswordConstant    = "secret"
	testVerifyMediaTypeConstant   = "application/vnd.git-lfs+json"
)

type recordedVerifyRequest struct {
	method        string
	path          string
	accept        string
	contentType   string
	authenticated bool
	username      string
	password      string
	body          map[string]any
}

func startVerifyServer(testInstance *testing.T, statusCode int, recorded *recordedVerifyRequest) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		recorded.method = request.Method
		recorded.path = request.URL.Path
		recorded.accept = request.Header.Get("Accept")
		recorded.contentType = request.Header.Get("Content-Type")
		recorded.username, recorded.password, recorded.authenticated = request.BasicAuth()
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&recorded.body))
		responseWriter.WriteHeader(statusCode)
	}))
	testInstance.Cleanup(server.Close)
	return server
}

func TestHTTPObjectVerifierConfirmsPresence(testInstance *testing.T) {
	recorded := &recordedVerifyRequest{}
	server := startVerifyServer(testInstance, http.StatusOK, recorded)

	verifier := lfsaudit.NewHTTPObjectVerifier()
	remote := lfsaudit.Remote{
		Name:       testVerifyRemoteNameConstant,
		URL:        server.URL,
		Credential: &lfsaudit.Credential{Username: testVerifyUsernameConstant, Password: testVerifyPasswordConstant},
	}
	pointer := lfsaudit.Pointer{Name: testVerifyPointerNameConstant, OidType: "sha256", Oid: testVerifyOidConstant, Size: testVerifySizeConstant}

	verificationStatus, verificationError := verifier.Verify(context.Background(), remote, pointer)

	require.NoError(testInstance, verificationError)
	require.Equal(testInstance, lfsaudit.VerificationPresent, verificationStatus)
	require.Equal(testInstance, http.MethodPost, recorded.method)
	require.Equal(testInstance, "/info/lfs/verify", recorded.path)
	require.Equal(testInstance, testVerifyMediaTypeConstant, recorded.accept)
	require.Equal(testInstance, testVerifyMediaTypeConstant, recorded.contentType)
	require.True(testInstance, recorded.authenticated)
	require.Equal(testInstance, testVerifyUsernameConstant, recorded.username)
	require.Equal(testInstance, testVerifyPasswordConstant, recorded.password)
	require.Equal(testInstance, testVerifyOidConstant, recorded.body["oid"])
	require.Equal(testInstance, float64(testVerifySizeConstant), recorded.body["size"])
}

func TestHTTPObjectVerifierTreatsNotFoundAsMissingEndpoint(testInstance *testing.T) {
	recorded := &recordedVerifyRequest{}
	server := startVerifyServer(testInstance, http.StatusNotFound, recorded)

	verifier := lfsaudit.NewHTTPObjectVerifier()
	remote := lfsaudit.Remote{Name: testVerifyRemoteNameConstant, URL: server.URL}
	pointer := lfsaudit.Pointer{Name: testVerifyPointerNameConstant, OidType: "sha256", Oid: testVerifyOidConstant, Size: testVerifySizeConstant}

	verificationStatus, verificationError := verifier.Verify(context.Background(), remote, pointer)

	require.Equal(testInstance, lfsaudit.VerificationMissing, verificationStatus)
	notFoundError := lfsaudit.EndpointNotFoundError{}
	require.ErrorAs(testInstance, verificationError, &notFoundError)
	require.Contains(testInstance, notFoundError.Error(), server.URL)
	require.False(testInstance, recorded.authenticated)
}

func TestHTTPObjectVerifierTreatsOtherStatusesAsMissingObject(testInstance *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
	}{
		{name: "gone", statusCode: http.StatusGone},
		{name: "unprocessable", statusCode: http.StatusUnprocessableEntity},
		{name: "server error", statusCode: http.StatusInternalServerError},
	}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recorded := &recordedVerifyRequest{}
			server := startVerifyServer(testInstance, testCase.statusCode, recorded)

			verifier := lfsaudit.NewHTTPObjectVerifier()
			remote := lfsaudit.Remote{Name: testVerifyRemoteNameConstant, URL: server.URL}
			pointer := lfsaudit.Pointer{Name: testVerifyPointerNameConstant, OidType: "sha256", Oid: testVerifyOidConstant, Size: testVerifySizeConstant}

			verificationStatus, verificationError := verifier.Verify(context.Background(), remote, pointer)

			require.NoError(testInstance, verificationError)
			require.Equal(testInstance, lfsaudit.VerificationMissing, verificationStatus)
		})
	}
}

func TestHTTPObjectVerifierReportsTransportFailures(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	verifier := lfsaudit.NewHTTPObjectVerifier()
	remote := lfsaudit.Remote{Name: testVerifyRemoteNameConstant, URL: server.URL}
	pointer := lfsaudit.Pointer{Name: testVerifyPointerNameConstant, OidType: "sha256", Oid: testVerifyOidConstant, Size: testVerifySizeConstant}

	verificationStatus, verificationError := verifier.Verify(context.Background(), remote, pointer)

	require.Error(testInstance, verificationError)
	require.Equal(testInstance, lfsaudit.VerificationMissing, verificationStatus)
}
