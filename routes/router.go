package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/config"
	"github.com/ripplehq/ripple/controllers"
	"github.com/ripplehq/ripple/middleware"
	"github.com/ripplehq/ripple/services"
	"github.com/ripplehq/ripple/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	// Core services share one request-scoped data-access handle.
	ledger := services.NewVoteLedger(db)
	graph := services.NewFollowGraphStore(db)
	queries := services.NewPostAggregateQuery(db)
	postStore := services.NewPostStore(db)
	userStore := services.NewUserStore(db)
	feed := services.NewFeedService(db, queries, graph)
	feed.MinTrendingVotes = cfg.TrendingMinVotes
	stats := services.NewStatsService(db, graph)

	authController := controllers.NewAuthController(db, userStore)
	postController := controllers.NewPostController(db, feed, queries, postStore)
	voteController := controllers.NewVoteController(db, ledger)
	followController := controllers.NewFollowController(db, graph, userStore)
	statsController := controllers.NewStatsController(db, stats)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/posts", postController.ListFeed)
	protected.GET("/posts/:id", postController.GetPost)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.GET("/users/me/posts", postController.ListMyPosts)
	protected.DELETE("/users/me", authController.DeleteMe)
	protected.GET("/users/:id/posts", postController.ListUserPosts)

	protected.POST("/vote", voteController.Cast)
	protected.GET("/posts/:id/votes", voteController.GetTally)

	followGroup := protected.Group("/follow")
	followGroup.POST("", followController.Follow)
	followGroup.DELETE("/:id", followController.Unfollow)
	followGroup.GET("/followers", followController.MyFollowers)
	followGroup.GET("/following", followController.MyFollowing)
	followGroup.GET("/mutual", followController.Mutual)
	followGroup.GET("/status/:id", followController.Status)

	protected.GET("/users/:id/followers", followController.UserFollowers)
	protected.GET("/users/:id/following", followController.UserFollowing)
	protected.GET("/users/:id/stats", statsController.UserStats)
	protected.GET("/users/me/stats", statsController.MyStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
