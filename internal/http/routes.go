package http

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// SetupRoutes configures all application routes and middleware.
// Background helpers started here stop when ctx is cancelled.
func SetupRoutes(ctx context.Context, router *gin.Engine, env *Env, corsOrigin string) error {
	pages, err := loadTemplates()
	if err != nil {
		return errors.Wrap(err, "load templates")
	}
	router.HTMLRender = pages

	// --- Middleware ---
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(SecurityHeadersMiddleware())

	if corsOrigin == "" {
		corsOrigin = "*"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: corsOrigin != "*",
	}))

	router.NoRoute(env.notFound)

	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go limiter.Sweep(ctx, sweepInterval)

	moderator := ModeratorAuthMiddleware(env.Accounts)

	// --- Blog ---
	router.GET("/", env.PostList)
	router.GET("/post/:id/", OptionalModeratorMiddleware(env.Accounts), env.PostDetail)
	router.GET("/post/:id/comment/", env.CommentForm)
	router.POST("/post/:id/comment/", RateLimitMiddleware(limiter), env.AddComment)

	mod := router.Group("/", moderator)
	{
		mod.GET("/post/new/", env.PostNewForm)
		mod.POST("/post/new/", env.PostNew)
		mod.GET("/post/:id/edit/", env.PostEditForm)
		mod.POST("/post/:id/edit/", env.PostEdit)
		mod.GET("/draft/", env.PostDraftList)

		// The detail page links to these, so GET is accepted as well as POST.
		for _, method := range []string{"GET", "POST"} {
			mod.Handle(method, "/post/:id/publish/", env.PostPublish)
			mod.Handle(method, "/post/:id/remove/", env.PostRemove)
			mod.Handle(method, "/comment/:id/approve/", env.CommentApprove)
			mod.Handle(method, "/comment/:id/remove/", env.CommentRemove)
		}
	}

	// --- Polls ---
	pollsGroup := router.Group("/polls")
	{
		pollsGroup.GET("/", env.PollsIndex)
		pollsGroup.GET("/ws", env.PollsLive)
		pollsGroup.GET("/:id/", env.PollsDetail)
		pollsGroup.GET("/:id/results/", env.PollsResults)
		pollsGroup.POST("/:id/vote/", RateLimitMiddleware(limiter), env.PollsVote)
	}

	return nil
}
