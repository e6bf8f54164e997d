package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/services"
	"github.com/ripplehq/ripple/utils"
)

// FollowController maps HTTP onto the follow graph.
type FollowController struct {
	db    *gorm.DB
	graph *services.FollowGraphStore
	users *services.UserStore
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(db *gorm.DB, graph *services.FollowGraphStore, users *services.UserStore) *FollowController {
	return &FollowController{db: db, graph: graph, users: users}
}

// Follow creates an edge from the authenticated user to the target.
func (f *FollowController) Follow(ctx *gin.Context) {
	var req struct {
		FollowingID uint `json:"following_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	edge, err := f.graph.Follow(userID, req.FollowingID)
	if err != nil {
		respondServiceError(ctx, err, 50040, "failed to follow user")
		return
	}

	counts, err := f.graph.Counts(userID)
	if err != nil {
		respondServiceError(ctx, err, 50041, "failed to load counts")
		return
	}
	utils.Success(ctx, gin.H{"follow": edge, "counts": counts})
}

// Unfollow removes the edge to the target; unfollowing someone not followed
// is NotFound so the caller can tell the two outcomes apart.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	targetID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid user id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	removed, err := f.graph.Unfollow(userID, targetID)
	if err != nil {
		respondServiceError(ctx, err, 50042, "failed to unfollow user")
		return
	}
	if !removed {
		utils.Error(ctx, http.StatusNotFound, 40440, "not following this user")
		return
	}

	counts, err := f.graph.Counts(userID)
	if err != nil {
		respondServiceError(ctx, err, 50043, "failed to load counts")
		return
	}
	utils.Success(ctx, gin.H{"message": "unfollowed", "counts": counts})
}

// MyFollowers lists the users following the authenticated user.
func (f *FollowController) MyFollowers(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	f.listFollowers(ctx, userID)
}

// MyFollowing lists the users the authenticated user follows.
func (f *FollowController) MyFollowing(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	f.listFollowing(ctx, userID)
}

// UserFollowers lists followers of any user.
func (f *FollowController) UserFollowers(ctx *gin.Context) {
	targetID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid user id")
		return
	}
	if _, err := f.users.ByID(targetID); err != nil {
		respondServiceError(ctx, err, 50044, "failed to load user")
		return
	}
	f.listFollowers(ctx, targetID)
}

// UserFollowing lists followings of any user.
func (f *FollowController) UserFollowing(ctx *gin.Context) {
	targetID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid user id")
		return
	}
	if _, err := f.users.ByID(targetID); err != nil {
		respondServiceError(ctx, err, 50044, "failed to load user")
		return
	}
	f.listFollowing(ctx, targetID)
}

func (f *FollowController) listFollowers(ctx *gin.Context, userID uint) {
	page := parsePage(ctx)
	followers, total, err := f.graph.Followers(userID, page)
	if err != nil {
		respondServiceError(ctx, err, 50045, "failed to list followers")
		return
	}
	utils.Success(ctx, gin.H{
		"items":    followers,
		"total":    total,
		"skip":     page.Skip,
		"limit":    page.Limit,
		"has_more": services.HasMore(total, page),
	})
}

func (f *FollowController) listFollowing(ctx *gin.Context, userID uint) {
	page := parsePage(ctx)
	following, total, err := f.graph.Following(userID, page)
	if err != nil {
		respondServiceError(ctx, err, 50046, "failed to list following")
		return
	}
	utils.Success(ctx, gin.H{
		"items":    following,
		"total":    total,
		"skip":     page.Skip,
		"limit":    page.Limit,
		"has_more": services.HasMore(total, page),
	})
}

// Mutual lists users who follow the authenticated user and are followed
// back.
func (f *FollowController) Mutual(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	users, err := f.graph.MutualFollows(userID)
	if err != nil {
		respondServiceError(ctx, err, 50047, "failed to list mutual follows")
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}

// Status reports both directed edges between the authenticated user and the
// target.
func (f *FollowController) Status(ctx *gin.Context) {
	targetID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid user id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if _, err := f.users.ByID(targetID); err != nil {
		respondServiceError(ctx, err, 50044, "failed to load user")
		return
	}

	status, err := f.graph.RelationshipStatus(userID, targetID)
	if err != nil {
		respondServiceError(ctx, err, 50048, "failed to resolve status")
		return
	}
	utils.Success(ctx, gin.H{"status": status})
}
