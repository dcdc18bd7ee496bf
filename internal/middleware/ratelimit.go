package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit throttles the public, unauthenticated tracking endpoints.
// rate uses the limiter formatted syntax, e.g. "30-M" for 30 per minute.
func RateLimit(rate string) gin.HandlerFunc {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		log.Fatalf("Invalid rate limit format %q: %v", rate, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, parsed)

	limiterMiddleware := stdlib.NewMiddleware(instance)

	return func(c *gin.Context) {
		limiterMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if c.Writer.Status() == http.StatusTooManyRequests {
			c.Abort()
			return
		}
	}
}
