package mock

import (
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// NewHTTPTestServer serves s on a local test listener; the API root is
// server.URL + "/api".
func NewHTTPTestServer(s *Service) *httptest.Server {
	gin.SetMode(gin.TestMode)
	return httptest.NewServer(s.Router())
}
