package marker

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarMarker(t *testing.T) {
	ctx := context.Background()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	m, err := NewJarMarker(jar, "http://localhost:3000")
	require.NoError(t, err)

	present, err := m.Present(ctx)
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, m.Mark(ctx, DefaultTTL))
	present, _ = m.Present(ctx)
	assert.True(t, present)

	require.NoError(t, m.Clear(ctx))
	present, _ = m.Present(ctx)
	assert.False(t, present)
}

func TestJarMarker_Cookie(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	m, err := NewJarMarker(jar, "https://app.example.com", WithName("session_hint"), WithSecure(true))
	require.NoError(t, err)
	cookie := m.Cookie(DefaultTTL)
	assert.EqualValues(t, "session_hint", cookie.Name)
	assert.EqualValues(t, "1", cookie.Value)
	assert.EqualValues(t, "/", cookie.Path)
	assert.EqualValues(t, 900, cookie.MaxAge)
	assert.EqualValues(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.True(t, cookie.Secure)
	assert.False(t, cookie.HttpOnly)
}

func TestFileMarker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewFileMarker(filepath.Join(t.TempDir(), "marker"), func() time.Time { return now })

	present, err := m.Present(ctx)
	require.NoError(t, err)
	assert.False(t, present)
	require.NoError(t, m.Clear(ctx))

	require.NoError(t, m.Mark(ctx, time.Minute))
	present, err = m.Present(ctx)
	require.NoError(t, err)
	assert.True(t, present)

	now = now.Add(2 * time.Minute)
	present, err = m.Present(ctx)
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, m.Mark(ctx, time.Minute))
	require.NoError(t, m.Clear(ctx))
	present, _ = m.Present(ctx)
	assert.False(t, present)
}

func TestNop(t *testing.T) {
	m := Nop()
	require.NoError(t, m.Mark(context.Background(), time.Minute))
	present, err := m.Present(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
}
