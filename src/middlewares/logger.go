package middlewares

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		user := "-"
		if s := CurrentSession(c); s != nil {
			user = s.UserID.String()
		}
		log.Printf("%s %s %d %s user=%s ip=%s\n", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency.String(), user, c.ClientIP())
	}
}

func SecureHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Next()
}
