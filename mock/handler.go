package mock

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viant/authsession/schema"
)

const subjectKey = "subject"

// Mount registers the issuer routes on rg, normally the /api group
func (s *Service) Mount(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/register", s.rateLimit(), s.handleRegister)
	a.POST("/login", s.rateLimit(), s.handleLogin)
	a.POST("/refresh", s.handleRefresh)
	a.POST("/logout", s.handleLogout)
	a.GET("/profile", s.authenticate(), s.handleProfile)
	rg.GET("/resource", s.authenticate(), s.handleResource)
}

// Router builds a gin engine serving the issuer under /api
func (s *Service) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	s.Mount(router.Group("/api"))
	return router
}

func (s *Service) handleRegister(c *gin.Context) {
	form := &schema.RegisterForm{}
	if err := c.ShouldBindJSON(form); err != nil {
		s.fail(c, errFormIncomplete)
		return
	}
	data, refreshID, err := s.Register(c.Request.Context(), form)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setRefreshCookie(c, refreshID)
	c.JSON(http.StatusCreated, schema.NewResponse("Registration successful", data))
}

func (s *Service) handleLogin(c *gin.Context) {
	form := &schema.LoginForm{}
	if err := c.ShouldBindJSON(form); err != nil {
		s.fail(c, errFormIncomplete)
		return
	}
	data, refreshID, err := s.Login(c.Request.Context(), form)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setRefreshCookie(c, refreshID)
	c.JSON(http.StatusOK, schema.NewResponse("Login successful", data))
}

func (s *Service) handleRefresh(c *gin.Context) {
	refreshID, _ := c.Cookie(RefreshCookie)
	data, nextID, err := s.Refresh(c.Request.Context(), refreshID)
	if err != nil {
		if errors.Is(err, schema.ErrUnauthorized) {
			s.clearRefreshCookie(c)
		}
		s.fail(c, err)
		return
	}
	s.setRefreshCookie(c, nextID)
	c.JSON(http.StatusOK, schema.NewResponse("Token refreshed", data))
}

func (s *Service) handleLogout(c *gin.Context) {
	refreshID, _ := c.Cookie(RefreshCookie)
	if err := s.Logout(c.Request.Context(), refreshID); err != nil {
		s.fail(c, err)
		return
	}
	s.clearRefreshCookie(c)
	c.JSON(http.StatusOK, &schema.Response[any]{Success: true, Message: "Logged out"})
}

func (s *Service) handleProfile(c *gin.Context) {
	candidate, ok := s.subjects.Get(c.GetString(subjectKey))
	if !ok {
		s.fail(c, errAccessInvalid)
		return
	}
	c.JSON(http.StatusOK, schema.NewResponse("Profile", candidate.Profile))
}

func (s *Service) handleResource(c *gin.Context) {
	c.JSON(http.StatusOK, schema.NewResponse("This is a protected resource", gin.H{"subject": c.GetString(subjectKey)}))
}

// authenticate rejects requests without a valid, current access token
func (s *Service) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := s.verifyAccessToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="authsession"`)
			s.fail(c, err)
			c.Abort()
			return
		}
		c.Set(subjectKey, subject)
		c.Next()
	}
}

func (s *Service) fail(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	var classified *schema.Error
	if errors.As(err, &classified) && classified.Status != 0 {
		status, message = classified.Status, classified.Message
	} else {
		s.logger.Error("issuer request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, &schema.Response[any]{Success: false, Message: message})
}

func (s *Service) setRefreshCookie(c *gin.Context, refreshID string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, refreshID, int(s.refreshTTL.Seconds()), RefreshCookiePath, "", s.secure, true)
}

func (s *Service) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, "", -1, RefreshCookiePath, "", s.secure, true)
}
