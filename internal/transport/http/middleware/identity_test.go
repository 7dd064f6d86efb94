package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-payments-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier lets each test script the verifier outcome directly.
type stubVerifier struct {
	ident *domain.Identity
	err   error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*domain.Identity, error) {
	return s.ident, s.err
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func serve(t *testing.T, v TokenVerifier, header string, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	Identity(v)(next).ServeHTTP(rr, req)
	return rr
}

func decode401(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestIdentity_AbsentHeader_ProceedsAnonymously(t *testing.T) {
	rr := serve(t, &stubVerifier{}, "", http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIdentity_MalformedScheme_TreatedAsAbsent(t *testing.T) {
	// Not a Bearer scheme — identical treatment to no header at all.
	rr := serve(t, &stubVerifier{}, "Basic dXNlcjpwYXNz", http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIdentity_ExpiredToken_401WithCode(t *testing.T) {
	v := &stubVerifier{err: &domain.AuthError{Code: domain.AuthCodeTokenExpired, Reason: "token expired"}}
	rr := serve(t, v, "Bearer expired-token", http.HandlerFunc(okHandler))
	body := decode401(t, rr)
	assert.Equal(t, "TOKEN_EXPIRED", body["code"])
	assert.NotEmpty(t, body["message"])
}

func TestIdentity_InvalidToken_401WithCode(t *testing.T) {
	v := &stubVerifier{err: &domain.AuthError{Code: domain.AuthCodeTokenInvalid, Reason: "token invalid"}}
	rr := serve(t, v, "Bearer garbage", http.HandlerFunc(okHandler))
	body := decode401(t, rr)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestIdentity_RevokedToken_401WithCode(t *testing.T) {
	v := &stubVerifier{err: &domain.AuthError{Code: domain.AuthCodeTokenRevoked, Reason: "token revoked"}}
	rr := serve(t, v, "Bearer revoked-token", http.HandlerFunc(okHandler))
	body := decode401(t, rr)
	assert.Equal(t, "TOKEN_REVOKED", body["code"])
}

func TestIdentity_BackendOutage_DegradesToAnonymous(t *testing.T) {
	v := &stubVerifier{err: errors.New("identity backend unreachable")}
	var sawIdentity bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rr := serve(t, v, "Bearer some-token", next)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, sawIdentity)
}

func TestIdentity_ValidToken_InjectsIdentity(t *testing.T) {
	v := &stubVerifier{ident: &domain.Identity{SubjectID: "u1", Email: "a@b.com"}}
	var got *domain.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rr := serve(t, v, "Bearer good-token", next)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.SubjectID)
	assert.Equal(t, "a@b.com", got.Email)
}

func TestRequireIdentity_BlocksAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	RequireIdentity(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireIdentity_PassesVerified(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), identityKey, &domain.Identity{SubjectID: "u1"})
	rr := httptest.NewRecorder()
	RequireIdentity(http.HandlerFunc(okHandler)).ServeHTTP(rr, req.WithContext(ctx))
	assert.Equal(t, http.StatusOK, rr.Code)
}
