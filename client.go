package authsession

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/viant/authsession/issuer"
	"github.com/viant/authsession/marker"
	"github.com/viant/authsession/refresh"
	"github.com/viant/authsession/scheduler"
	"github.com/viant/authsession/session"
	"github.com/viant/authsession/transport"
)

// ClientOptions
//
// defines options for configuring a client session.
type ClientOptions struct {
	ConfigURL      string        `yaml:"-" json:"-" mapstructure:"-" short:"c" long:"config" description:"config file (yaml, json or toml)"`
	BaseURL        string        `yaml:"baseURL" json:"baseURL" mapstructure:"baseURL" short:"u" long:"url" description:"credential issuer API root"`
	SiteURL        string        `yaml:"siteURL,omitempty" json:"siteURL,omitempty" mapstructure:"siteURL" short:"s" long:"site" description:"site URL owning the session marker cookie"`
	Lead           time.Duration `yaml:"lead,omitempty" json:"lead,omitempty" mapstructure:"lead" long:"lead" description:"renew this long before the access token expires"`
	RefreshTimeout time.Duration `yaml:"refreshTimeout,omitempty" json:"refreshTimeout,omitempty" mapstructure:"refreshTimeout" long:"refresh-timeout" description:"bound on a single refresh call"`
	MarkerName     string        `yaml:"markerName,omitempty" json:"markerName,omitempty" mapstructure:"markerName" long:"marker-name" description:"session marker cookie name"`
	MarkerTTL      time.Duration `yaml:"markerTTL,omitempty" json:"markerTTL,omitempty" mapstructure:"markerTTL" long:"marker-ttl" description:"session marker lifetime"`
	MarkerURL      string        `yaml:"markerURL,omitempty" json:"markerURL,omitempty" mapstructure:"markerURL" short:"m" long:"marker" description:"file or mem URL of a file session marker"`
	Secure         bool          `yaml:"secure,omitempty" json:"secure,omitempty" mapstructure:"secure" long:"secure" description:"mark the session marker cookie Secure"`
	CookieJarPath  string        `yaml:"cookieJar,omitempty" json:"cookieJar,omitempty" mapstructure:"cookieJar" short:"j" long:"cookie-jar" description:"file persisting the refresh cookie between runs"`
	StrictDecode   bool          `yaml:"strictDecode,omitempty" json:"strictDecode,omitempty" mapstructure:"strictDecode" long:"strict" description:"reject access tokens without a decodable expiry"`
	LogLevel       string        `yaml:"logLevel,omitempty" json:"logLevel,omitempty" mapstructure:"logLevel" short:"l" long:"log-level" description:"log level" choice:"debug" choice:"info" choice:"warn" choice:"error"`
}

// Init fills unset options with defaults
func (c *ClientOptions) Init() {
	if c.BaseURL == "" {
		c.BaseURL = issuer.DefaultBaseURL
	}
	if c.Lead == 0 {
		c.Lead = scheduler.DefaultLead
	}
	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = refresh.DefaultTimeout
	}
	if c.MarkerName == "" {
		c.MarkerName = marker.DefaultName
	}
	if c.MarkerTTL == 0 {
		c.MarkerTTL = marker.DefaultTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// NewClient creates a session wired to the issuer at options.BaseURL.
func NewClient(options *ClientOptions) (*session.Session, error) {
	options.Init()
	logger := NewLogger(options.LogLevel)

	jar, err := options.cookieJar(logger)
	if err != nil {
		return nil, err
	}
	client := issuer.New(options.BaseURL,
		issuer.WithJar(jar),
		issuer.WithStrictDecode(options.StrictDecode),
		issuer.WithLogger(logger))

	sessionMarker, err := options.marker(jar)
	if err != nil {
		return nil, err
	}
	return session.New(client,
		session.WithMarker(sessionMarker),
		session.WithMarkerTTL(options.MarkerTTL),
		session.WithLead(options.Lead),
		session.WithRefreshTimeout(options.RefreshTimeout),
		session.WithLogger(logger)), nil
}

func (c *ClientOptions) cookieJar(logger *slog.Logger) (http.CookieJar, error) {
	if c.CookieJarPath != "" {
		jar, err := transport.NewFileJar(c.CookieJarPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open cookie jar %v: %w", c.CookieJarPath, err)
		}
		return jar, nil
	}
	return cookiejar.New(nil)
}

func (c *ClientOptions) marker(jar http.CookieJar) (marker.Marker, error) {
	switch {
	case c.MarkerURL != "":
		return marker.NewFileMarker(c.MarkerURL, nil), nil
	case c.SiteURL != "":
		return marker.NewJarMarker(jar, c.SiteURL, marker.WithName(c.MarkerName), marker.WithSecure(c.Secure))
	default:
		return marker.Nop(), nil
	}
}

// NewLogger creates a text logger writing to stderr at level
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
