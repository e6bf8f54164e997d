package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/services"
	"github.com/ripplehq/ripple/utils"
)

// StatsController serves per-user social statistics.
type StatsController struct {
	db    *gorm.DB
	stats *services.StatsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, stats *services.StatsService) *StatsController {
	return &StatsController{db: db, stats: stats}
}

// UserStats returns follower/following/post counts and votes received for a
// user, with relationship flags relative to the viewer when they differ.
func (s *StatsController) UserStats(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	targetID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	stats, err := s.stats.UserStats(targetID, viewerID)
	if err != nil {
		respondServiceError(ctx, err, 50050, "failed to load stats")
		return
	}
	utils.Success(ctx, gin.H{"stats": stats})
}

// MyStats returns the authenticated user's own statistics.
func (s *StatsController) MyStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	stats, err := s.stats.UserStats(userID, userID)
	if err != nil {
		respondServiceError(ctx, err, 50051, "failed to load stats")
		return
	}
	utils.Success(ctx, gin.H{"stats": stats})
}
