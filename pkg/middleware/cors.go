package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/configs"
)

// CORSMiddleware 允许浏览器直接分片上传：放行 Content-Range 与角色请求头，暴露请求 ID.
func CORSMiddleware(server configs.ServerConfig, auth configs.AuthConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	config.AddAllowHeaders("Content-Range", HeaderRequestID)

	if auth.RoleHeader != "" {
		config.AddAllowHeaders(auth.RoleHeader)
	}

	config.AddExposeHeaders(HeaderRequestID)
	config.AllowFiles = server.Debug

	return cors.New(config)
}
