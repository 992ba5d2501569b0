package middleware

import (
	"net"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows only pages served from the API's own host and
// port to read state and post commands. A loopback host also admits
// "localhost" on the same port.
func DefaultCORSConfig(host, port string) CORSConfig {
	return CORSConfig{
		AllowOrigins: localOrigins(host, port),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept",
			"Origin",
			"Cache-Control",
			"X-Requested-With",
		},
		MaxAge: 12 * time.Hour,
	}
}

func localOrigins(host, port string) []string {
	origins := []string{"http://" + net.JoinHostPort(host, port)}
	if ip := net.ParseIP(host); (ip != nil && ip.IsLoopback()) || host == "localhost" {
		for _, alias := range []string{"localhost", "127.0.0.1"} {
			if alias != host {
				origins = append(origins, "http://"+net.JoinHostPort(alias, port))
			}
		}
	}
	return origins
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
