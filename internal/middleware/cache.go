package middleware

import "github.com/gin-gonic/gin"

// NoStore marks API responses as uncacheable. Risk indexes change on every
// check-in, so intermediaries must never serve a stale copy.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
