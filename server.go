package authsession

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/viant/authsession/metrics"
	"github.com/viant/authsession/mock"
	"golang.org/x/time/rate"
)

// ServerOptions defines options for running the reference credential issuer.
type ServerOptions struct {
	ConfigURL   string        `yaml:"-" json:"-" mapstructure:"-" short:"c" long:"config" description:"config file (yaml, json or toml)"`
	Port        int           `yaml:"port" json:"port" mapstructure:"port" short:"p" long:"port" description:"listen port"`
	Secret      string        `yaml:"secret,omitempty" json:"-" mapstructure:"secret" long:"secret" description:"HS256 signing secret; random when empty"`
	AccessTTL   time.Duration `yaml:"accessTTL,omitempty" json:"accessTTL,omitempty" mapstructure:"accessTTL" long:"access-ttl" description:"access token lifetime"`
	RefreshTTL  time.Duration `yaml:"refreshTTL,omitempty" json:"refreshTTL,omitempty" mapstructure:"refreshTTL" long:"refresh-ttl" description:"refresh session lifetime"`
	RedisAddr   string        `yaml:"redisAddr,omitempty" json:"redisAddr,omitempty" mapstructure:"redisAddr" short:"r" long:"redis" description:"redis address for refresh sessions; memory when empty"`
	RedisPrefix string        `yaml:"redisPrefix,omitempty" json:"redisPrefix,omitempty" mapstructure:"redisPrefix" long:"redis-prefix" description:"redis key prefix"`
	Secure      bool          `yaml:"secure,omitempty" json:"secure,omitempty" mapstructure:"secure" long:"secure" description:"mark the refresh cookie Secure"`
	LoginRate   float64       `yaml:"loginRate,omitempty" json:"loginRate,omitempty" mapstructure:"loginRate" long:"login-rate" description:"login attempts per second per client IP"`
	LoginBurst  int           `yaml:"loginBurst,omitempty" json:"loginBurst,omitempty" mapstructure:"loginBurst" long:"login-burst" description:"login attempt burst"`
	LogLevel    string        `yaml:"logLevel,omitempty" json:"logLevel,omitempty" mapstructure:"logLevel" short:"l" long:"log-level" description:"log level" choice:"debug" choice:"info" choice:"warn" choice:"error"`
}

// Init fills unset options with defaults
func (s *ServerOptions) Init() {
	if s.Port == 0 {
		s.Port = 8000
	}
	if s.AccessTTL == 0 {
		s.AccessTTL = mock.DefaultAccessTTL
	}
	if s.RefreshTTL == 0 {
		s.RefreshTTL = mock.DefaultRefreshTTL
	}
	if s.LoginRate == 0 {
		s.LoginRate = 10
	}
	if s.LoginBurst == 0 {
		s.LoginBurst = 20
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

// NewServer creates the issuer HTTP server with its API under /api and
// Prometheus metrics under /metrics.
func NewServer(options *ServerOptions) (*http.Server, error) {
	options.Init()
	logger := NewLogger(options.LogLevel)
	serviceOptions := []mock.Option{
		mock.WithAccessTTL(options.AccessTTL),
		mock.WithRefreshTTL(options.RefreshTTL),
		mock.WithSecureCookies(options.Secure),
		mock.WithLoginRate(rate.Limit(options.LoginRate), options.LoginBurst),
		mock.WithLogger(logger),
	}
	if options.Secret != "" {
		serviceOptions = append(serviceOptions, mock.WithSecret([]byte(options.Secret)))
	}
	if options.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: options.RedisAddr})
		serviceOptions = append(serviceOptions, mock.WithRepository(mock.NewRedisRepository(client, options.RedisPrefix, nil)))
	}
	service := mock.New(serviceOptions...)

	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	metrics.RegisterCollectors(registry)

	router := service.Router()
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	return &http.Server{
		Addr:              fmt.Sprintf(":%v", options.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
