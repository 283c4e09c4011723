package marker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs"
)

// FileMarker stores the marker expiry instant (RFC3339) at an afs URL.
type FileMarker struct {
	fs  afs.Service
	URL string
	now func() time.Time
}

func (m *FileMarker) Mark(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expiry := m.now().Add(ttl).UTC().Format(time.RFC3339)
	if err := m.fs.Upload(ctx, m.URL, 0600, strings.NewReader(expiry)); err != nil {
		return fmt.Errorf("failed to write session marker %v: %w", m.URL, err)
	}
	return nil
}

func (m *FileMarker) Clear(ctx context.Context) error {
	exists, err := m.fs.Exists(ctx, m.URL)
	if err != nil || !exists {
		return err
	}
	if err = m.fs.Delete(ctx, m.URL); err != nil {
		return fmt.Errorf("failed to delete session marker %v: %w", m.URL, err)
	}
	return nil
}

// Present reports whether the marker exists and has not expired. An
// unreadable marker counts as absent.
func (m *FileMarker) Present(ctx context.Context) (bool, error) {
	exists, err := m.fs.Exists(ctx, m.URL)
	if err != nil || !exists {
		return false, err
	}
	data, err := m.fs.DownloadWithURL(ctx, m.URL)
	if err != nil {
		return false, fmt.Errorf("failed to read session marker %v: %w", m.URL, err)
	}
	expiry, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return false, nil
	}
	return m.now().Before(expiry), nil
}

// NewFileMarker creates a file marker at URL (file:// or mem://)
func NewFileMarker(URL string, now func() time.Time) *FileMarker {
	if now == nil {
		now = time.Now
	}
	return &FileMarker{fs: afs.New(), URL: URL, now: now}
}
