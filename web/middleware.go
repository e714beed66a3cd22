package web

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// DefaultRate limits each client IP. Planning a trip may call the oracle, so
// the budget is tighter than a plain CRUD API would need.
var DefaultRate = limiter.Rate{
	Period: time.Hour,
	Limit:  300,
}

func CorsConfig() cors.Config {
	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConf.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	corsConf.MaxAge = 1 * time.Hour
	return corsConf
}

func limiterMiddleWare(rate limiter.Rate) gin.HandlerFunc {
	store := memory.NewStore()
	return mgin.NewMiddleware(limiter.New(store, rate))
}

func setupMiddlewares(r *gin.Engine, opts Options) {
	r.Use(limiterMiddleWare(opts.Rate))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(cors.New(CorsConfig()))
	// compressing the event stream would buffer it
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{eventsPath})))
	r.Use(secure.New(secure.Config{
		STSSeconds:           31536000,
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
		IsDevelopment:        opts.IsDev,
	}))
}
