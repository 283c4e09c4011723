package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileJar is a thin wrapper around the standard cookiejar.Jar that persists
// cookies to a JSON file on each update and reloads them on startup.
// It keeps the http-only refresh cookie alive across CLI runs.
type FileJar struct {
	mu     sync.Mutex
	inner  *cookiejar.Jar
	path   string
	index  map[string]persistedCookie
	logger *slog.Logger
}

type persistedCookie struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Domain   string        `json:"domain"`
	Path     string        `json:"path"`
	Expires  time.Time     `json:"expires"`
	Secure   bool          `json:"secure"`
	HttpOnly bool          `json:"httpOnly"`
	SameSite http.SameSite `json:"sameSite,omitempty"`
}

type cookieSnapshot struct {
	Cookies []persistedCookie `json:"cookies"`
}

// NewFileJar creates a cookie jar persisted at path.
func NewFileJar(path string, logger *slog.Logger) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	j := &FileJar{inner: inner, path: path, index: map[string]persistedCookie{}, logger: logger}
	if err = j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *FileJar) Cookies(u *neturl.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func (j *FileJar) SetCookies(u *neturl.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	now := time.Now()
	for _, c := range cookies {
		pc := normalize(u, c, now)
		key := pc.Domain + "|" + pc.Path + "|" + pc.Name
		if c.MaxAge < 0 || (!pc.Expires.IsZero() && !now.Before(pc.Expires)) {
			delete(j.index, key)
			continue
		}
		j.index[key] = pc
	}
	if err := j.save(); err != nil {
		j.logger.Warn("failed to persist cookies", "path", j.path, "error", err)
	}
}

// normalize resolves host-only domains, default paths and Max-Age into
// the absolute form stored on disk.
func normalize(u *neturl.URL, c *http.Cookie, now time.Time) persistedCookie {
	domain := c.Domain
	if domain == "" {
		domain = u.Host
		if host, _, err := net.SplitHostPort(domain); err == nil && host != "" {
			domain = host
		}
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	expires := c.Expires
	if c.MaxAge > 0 {
		expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	return persistedCookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   domain,
		Path:     path,
		Expires:  expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
}

func (j *FileJar) save() error {
	snap := cookieSnapshot{Cookies: make([]persistedCookie, 0, len(j.index))}
	for _, pc := range j.index {
		snap.Cookies = append(snap.Cookies, pc)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	tmp := j.path + ".tmp"
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, j.path)
}

func (j *FileJar) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var snap cookieSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return err
	}
	now := time.Now()
	for _, pc := range snap.Cookies {
		if !pc.Expires.IsZero() && now.After(pc.Expires) {
			continue
		}
		scheme := "http"
		if pc.Secure {
			scheme = "https"
		}
		u := &neturl.URL{Scheme: scheme, Host: pc.Domain, Path: pc.Path}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:     pc.Name,
			Value:    pc.Value,
			Path:     pc.Path,
			Expires:  pc.Expires,
			Secure:   pc.Secure,
			HttpOnly: pc.HttpOnly,
			SameSite: pc.SameSite,
		}})
		j.index[pc.Domain+"|"+pc.Path+"|"+pc.Name] = pc
	}
	j.logger.Debug("cookies restored", "path", j.path, "count", len(j.index))
	return nil
}
