package http_access_middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/penaltydraw/internal/delivery/http/common"
)

// ReadOnly lets only safe methods through when mode is "RO".
func ReadOnly(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mode != "RO" {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		http_common.Fail(c, http.StatusBadGateway, "write operations not allowed on read-only instance")
		c.Abort()
	}
}
