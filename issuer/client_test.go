package issuer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/schema"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "exp": exp.Unix()}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Login(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	access := signed(t, exp)
	user := &schema.Profile{Email: "a@b.c", FirstName: "Ada", IsActive: true}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			form := &schema.LoginForm{}
			_ = json.NewDecoder(r.Body).Decode(form)
			if form.Password != "pw" {
				writeJSON(w, http.StatusUnauthorized, &schema.Response[any]{Message: "Invalid credentials"})
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r1", Path: "/api/auth", HttpOnly: true})
			writeJSON(w, http.StatusOK, schema.NewResponse("ok", &schema.AuthData{AccessToken: access, User: user}))
		case "/api/auth/refresh":
			if c, err := r.Cookie("refreshToken"); err != nil || c.Value != "r1" {
				writeJSON(w, http.StatusUnauthorized, &schema.Response[any]{Message: "Refresh token missing"})
				return
			}
			writeJSON(w, http.StatusOK, schema.NewResponse("ok", &schema.AuthData{AccessToken: access}))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	jar, _ := cookiejar.New(nil)
	client := New(server.URL+"/api", WithJar(jar))

	_, err := client.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnauthorized))
	assert.EqualValues(t, "Refresh token missing", err.Error())

	_, err = client.Login(context.Background(), &schema.LoginForm{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnauthorized))
	assert.EqualValues(t, "Invalid credentials", err.Error())

	token, err := client.Login(context.Background(), &schema.LoginForm{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.EqualValues(t, access, token.AccessToken)
	assert.True(t, exp.Equal(token.Expiry))
	cred := &credential.Credential{Token: token}
	assert.EqualValues(t, user, cred.User())

	token, err = client.Refresh(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, access, token.AccessToken)
}

func TestClient_Classification(t *testing.T) {
	var testCases = []struct {
		description string
		status      int
		body        string
		strict      bool
		kind        error
		message     string
	}{
		{description: "success false", status: http.StatusOK, body: `{"success":false,"message":"Account disabled"}`, kind: schema.ErrRejected, message: "Account disabled"},
		{description: "conflict", status: http.StatusConflict, body: `{"success":false,"message":"Email already registered"}`, kind: schema.ErrRejected, message: "Email already registered"},
		{description: "missing token", status: http.StatusOK, body: `{"success":true,"data":{}}`, kind: schema.ErrRejected},
		{description: "garbage body", status: http.StatusOK, body: `<html>`, kind: schema.ErrRejected},
		{description: "opaque token strict", status: http.StatusOK, body: `{"success":true,"data":{"accessToken":"opaque"}}`, strict: true, kind: schema.ErrValidationFailure},
	}

	for _, testCase := range testCases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(testCase.status)
			_, _ = w.Write([]byte(testCase.body))
		}))
		client := New(server.URL, WithStrictDecode(testCase.strict))
		_, err := client.Register(context.Background(), &schema.RegisterForm{Email: "a@b.c"})
		server.Close()
		if !assert.Error(t, err, testCase.description) {
			continue
		}
		assert.True(t, errors.Is(err, testCase.kind), testCase.description)
		if testCase.message != "" {
			assert.EqualValues(t, testCase.message, err.Error(), testCase.description)
		}
	}
}

func TestClient_OpaqueTokenPermissive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, schema.NewResponse("ok", &schema.AuthData{AccessToken: "opaque"}))
	}))
	defer server.Close()
	token, err := New(server.URL).Login(context.Background(), &schema.LoginForm{})
	require.NoError(t, err)
	assert.EqualValues(t, "opaque", token.AccessToken)
	assert.True(t, token.Expiry.IsZero())
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()
	_, err := New(baseURL).Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrNetworkFailure))
}

func TestClient_LogoutAndProfile(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/auth/logout":
			writeJSON(w, http.StatusOK, &schema.Response[any]{Success: true, Message: "Logged out"})
		case "/auth/profile":
			writeJSON(w, http.StatusOK, schema.NewResponse("ok", &schema.Profile{Email: "a@b.c"}))
		}
	}))
	defer server.Close()
	client := New(server.URL)

	token, _ := credential.Decode(signed(t, time.Now().Add(time.Minute)))
	require.NoError(t, client.Logout(context.Background(), &credential.Credential{Token: token}))
	assert.EqualValues(t, "Bearer "+token.AccessToken, authorization)

	require.NoError(t, client.Logout(context.Background(), nil))
	assert.EqualValues(t, "", authorization)

	profile, err := client.Profile(context.Background(), http.DefaultClient)
	require.NoError(t, err)
	assert.EqualValues(t, "a@b.c", profile.Email)
}

type failingTransport struct{ err error }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }

func TestClient_ProfileKeepsTransportClassification(t *testing.T) {
	var testCases = []struct {
		description     string
		err             error
		expectNetwork   bool
		expectExhausted bool
	}{
		{description: "ended session", err: fmt.Errorf("%w: %w", schema.ErrRefreshExhausted, schema.FromStatus(401, "Invalid refresh token")), expectExhausted: true},
		{description: "classified network failure", err: schema.NewNetworkFailure(errors.New("connection reset")), expectNetwork: true},
		{description: "raw transport error", err: errors.New("connection refused"), expectNetwork: true},
	}
	for _, testCase := range testCases {
		doer := &http.Client{Transport: failingTransport{err: testCase.err}}
		_, err := New("http://localhost:8000/api").Profile(context.Background(), doer)
		require.Error(t, err, testCase.description)
		assert.Equal(t, testCase.expectNetwork, errors.Is(err, schema.ErrNetworkFailure), testCase.description)
		assert.Equal(t, testCase.expectExhausted, errors.Is(err, schema.ErrRefreshExhausted), testCase.description)
	}
}
