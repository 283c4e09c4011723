package session

import (
	"context"
	"errors"
	"net/http/cookiejar"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/internal/clock"
	"github.com/viant/authsession/issuer"
	"github.com/viant/authsession/marker"
	"github.com/viant/authsession/schema"
	"golang.org/x/oauth2"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type stubIssuer struct {
	mux          sync.Mutex
	loginToken   *oauth2.Token
	loginErr     error
	refreshToken *oauth2.Token
	refreshErr   error
	refreshCalls atomic.Int32
	logoutErr    error
	loggedOut    []*credential.Credential
}

func (s *stubIssuer) Refresh(ctx context.Context) (*oauth2.Token, error) {
	s.refreshCalls.Add(1)
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.refreshToken, s.refreshErr
}

func (s *stubIssuer) Register(ctx context.Context, form *schema.RegisterForm) (*oauth2.Token, error) {
	return s.loginToken, s.loginErr
}

func (s *stubIssuer) Login(ctx context.Context, form *schema.LoginForm) (*oauth2.Token, error) {
	return s.loginToken, s.loginErr
}

func (s *stubIssuer) Logout(ctx context.Context, cred *credential.Credential) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.loggedOut = append(s.loggedOut, cred)
	return s.logoutErr
}

func (s *stubIssuer) Profile(ctx context.Context, doer issuer.Doer) (*schema.Profile, error) {
	return &schema.Profile{Email: "ada@example.com", FirstName: "Augusta"}, nil
}

func token(value string, expiry time.Time, user *schema.Profile) *oauth2.Token {
	return credential.WithUser(&oauth2.Token{AccessToken: value, TokenType: "Bearer", Expiry: expiry}, user)
}

func newJarMarker(t *testing.T) *marker.JarMarker {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	m, err := marker.NewJarMarker(jar, "http://localhost:3000")
	require.NoError(t, err)
	return m
}

func present(t *testing.T, m marker.Marker) bool {
	ok, err := m.Present(context.Background())
	require.NoError(t, err)
	return ok
}

func TestSession_Login(t *testing.T) {
	fake := clock.Fake(epoch)
	ada := &schema.Profile{Email: "ada@example.com", FirstName: "Ada", IsActive: true}
	stub := &stubIssuer{loginToken: token("t1", epoch.Add(15*time.Minute), ada)}
	m := newJarMarker(t)
	s := New(stub, WithClock(fake), WithMarker(m))
	defer s.Close()

	var states []State
	cancel := s.Subscribe(func(state State) { states = append(states, state) })
	defer cancel()

	require.NoError(t, s.Login(context.Background(), &schema.LoginForm{Email: ada.Email, Password: "pw"}))

	state := s.State()
	assert.True(t, state.Authenticated)
	assert.False(t, state.Loading)
	assert.EqualValues(t, ada, state.User)
	assert.EqualValues(t, "t1", state.Credential.AccessToken())
	assert.True(t, present(t, m))

	deadline, ok := s.scheduler.Deadline()
	require.True(t, ok)
	assert.EqualValues(t, epoch.Add(13*time.Minute), deadline)

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[0].Authenticated)
	assert.True(t, states[1].Authenticated)
}

func TestSession_LoginFailure(t *testing.T) {
	stub := &stubIssuer{loginErr: schema.FromStatus(401, "Invalid credentials")}
	s := New(stub, WithClock(clock.Fake(epoch)))
	defer s.Close()

	var loading []bool
	s.Subscribe(func(state State) { loading = append(loading, state.Loading) })

	err := s.Login(context.Background(), &schema.LoginForm{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnauthorized))
	assert.EqualValues(t, "Invalid credentials", err.Error())
	assert.False(t, s.State().Authenticated)
	assert.EqualValues(t, []bool{true, false}, loading)
	assert.Nil(t, s.Credential())
}

func TestSession_Logout(t *testing.T) {
	fake := clock.Fake(epoch)
	stub := &stubIssuer{
		loginToken: token("t1", epoch.Add(15*time.Minute), &schema.Profile{Email: "a@b.c"}),
		logoutErr:  schema.NewNetworkFailure(errors.New("connection refused")),
	}
	m := newJarMarker(t)
	s := New(stub, WithClock(fake), WithMarker(m))
	defer s.Close()

	require.NoError(t, s.Login(context.Background(), &schema.LoginForm{}))
	s.Logout(context.Background())

	assert.EqualValues(t, State{}, s.State())
	assert.Nil(t, s.Credential())
	assert.False(t, present(t, m))
	_, armed := s.scheduler.Deadline()
	assert.False(t, armed)
	assert.EqualValues(t, 0, fake.Pending())
	require.Len(t, stub.loggedOut, 1)
	assert.EqualValues(t, "t1", stub.loggedOut[0].AccessToken())
}

func TestSession_Start(t *testing.T) {
	t.Run("no prior session", func(t *testing.T) {
		stub := &stubIssuer{refreshErr: schema.FromStatus(401, "Refresh token missing")}
		s := New(stub, WithClock(clock.Fake(epoch)))
		defer s.Close()
		s.Start(context.Background())
		assert.EqualValues(t, State{}, s.State())
		assert.EqualValues(t, 1, stub.refreshCalls.Load())
	})
	t.Run("prior session", func(t *testing.T) {
		user := &schema.Profile{Email: "a@b.c"}
		stub := &stubIssuer{refreshToken: token("t1", epoch.Add(15*time.Minute), user)}
		s := New(stub, WithClock(clock.Fake(epoch)))
		defer s.Close()
		s.Start(context.Background())
		state := s.State()
		assert.True(t, state.Authenticated)
		assert.False(t, state.Loading)
		assert.EqualValues(t, user, state.User)
	})
}

func TestSession_ProactiveRefresh(t *testing.T) {
	fake := clock.Fake(epoch)
	ada := &schema.Profile{Email: "ada@example.com"}
	stub := &stubIssuer{
		loginToken:   token("t1", epoch.Add(15*time.Minute), ada),
		refreshToken: token("t2", epoch.Add(28*time.Minute), nil),
	}
	s := New(stub, WithClock(fake))
	defer s.Close()
	require.NoError(t, s.Login(context.Background(), &schema.LoginForm{}))

	fake.Advance(13*time.Minute - time.Second)
	assert.EqualValues(t, 0, stub.refreshCalls.Load())

	fake.Advance(time.Second)
	require.Eventually(t, func() bool {
		return s.State().Credential.AccessToken() == "t2"
	}, 2*time.Second, time.Millisecond)
	assert.EqualValues(t, 1, stub.refreshCalls.Load())
	assert.EqualValues(t, ada, s.State().User)

	deadline, ok := s.scheduler.Deadline()
	require.True(t, ok)
	assert.EqualValues(t, epoch.Add(26*time.Minute), deadline)
}

func TestSession_DueCredentialRefreshesImmediately(t *testing.T) {
	fake := clock.Fake(epoch)
	stub := &stubIssuer{
		loginToken:   token("t1", epoch.Add(time.Minute), nil),
		refreshToken: token("t2", epoch.Add(15*time.Minute), nil),
	}
	s := New(stub, WithClock(fake))
	defer s.Close()
	require.NoError(t, s.Login(context.Background(), &schema.LoginForm{}))
	require.Eventually(t, func() bool {
		return s.State().Credential.AccessToken() == "t2"
	}, 2*time.Second, time.Millisecond)
	assert.EqualValues(t, 1, stub.refreshCalls.Load())
}

func TestSession_NoExpiryIsReactiveOnly(t *testing.T) {
	fake := clock.Fake(epoch)
	stub := &stubIssuer{loginToken: token("opaque", time.Time{}, nil)}
	s := New(stub, WithClock(fake))
	defer s.Close()
	require.NoError(t, s.Login(context.Background(), &schema.LoginForm{}))
	assert.True(t, s.State().Authenticated)
	_, armed := s.scheduler.Deadline()
	assert.False(t, armed)
}

func TestSession_BackgroundRefreshFailureEndsSession(t *testing.T) {
	fake := clock.Fake(epoch)
	stub := &stubIssuer{
		loginToken: token("t1", epoch.Add(15*time.Minute), nil),
		refreshErr: schema.FromStatus(401, "Invalid refresh token"),
	}
	m := newJarMarker(t)
	s := New(stub, WithClock(fake), WithMarker(m))
	defer s.Close()
	require.NoError(t, s.Login(context.Background(), &schema.LoginForm{}))
	fake.Advance(13 * time.Minute)
	require.Eventually(t, func() bool {
		return !s.State().Authenticated
	}, 2*time.Second, time.Millisecond)
	assert.False(t, present(t, m))
}

func TestSession_Profile(t *testing.T) {
	stub := &stubIssuer{loginToken: token("t1", epoch.Add(15*time.Minute), &schema.Profile{Email: "ada@example.com", FirstName: "Ada"})}
	s := New(stub, WithClock(clock.Fake(epoch)))
	defer s.Close()
	require.NoError(t, s.Login(context.Background(), &schema.LoginForm{}))
	profile, err := s.Profile(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, "Augusta", profile.FirstName)
	assert.EqualValues(t, "Augusta", s.State().User.FirstName)
}
