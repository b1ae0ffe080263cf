package middleware

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:5174",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:5174",
}

// AllowedOrigins parses a comma-separated origin allowlist, falling back to
// the local dev set.
func AllowedOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	if len(out) == 0 {
		return defaultAllowedOrigins
	}
	return out
}

func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     AllowedOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-PAID-ADMIN-TOKEN"},
		AllowCredentials: true,
	})
}
