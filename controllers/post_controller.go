package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/services"
	"github.com/ripplehq/ripple/utils"
)

// PostController serves feed listings, single annotated posts and
// author-initiated post mutations.
type PostController struct {
	db      *gorm.DB
	feed    *services.FeedService
	queries *services.PostAggregateQuery
	store   *services.PostStore
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, feed *services.FeedService, queries *services.PostAggregateQuery, store *services.PostStore) *PostController {
	return &PostController{db: db, feed: feed, queries: queries, store: store}
}

// ListFeed is the single read entry point for post listings. A search term
// bypasses ranking; otherwise feed_type selects the strategy, and unknown
// types fall back to the recency listing.
func (p *PostController) ListFeed(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page := parsePage(ctx)

	req := services.FeedRequest{
		ViewerID:  viewerID,
		Type:      strings.TrimSpace(ctx.DefaultQuery("feed_type", services.FeedRecommended)),
		Timeframe: strings.TrimSpace(ctx.DefaultQuery("timeframe", "24h")),
		Search:    strings.TrimSpace(ctx.Query("search")),
		Page:      page,
	}

	posts, total, err := p.feed.GetFeed(req)
	if err != nil {
		respondServiceError(ctx, err, 50020, "failed to build feed")
		return
	}

	utils.Success(ctx, gin.H{
		"items":    posts,
		"total":    total,
		"skip":     page.Skip,
		"limit":    page.Limit,
		"has_more": services.HasMore(total, page),
	})
}

// GetPost returns one post with its vote aggregates and the viewer's
// like-state.
func (p *PostController) GetPost(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}

	post, err := p.queries.ByID(postID, viewerID)
	if err != nil {
		respondServiceError(ctx, err, 50021, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// ListMyPosts returns the authenticated user's posts with aggregates.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page := parsePage(ctx)

	posts, total, err := p.queries.ForAuthor(viewerID, viewerID, page)
	if err != nil {
		respondServiceError(ctx, err, 50022, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{
		"items":    posts,
		"total":    total,
		"skip":     page.Skip,
		"limit":    page.Limit,
		"has_more": services.HasMore(total, page),
	})
}

// ListUserPosts returns another user's posts with aggregates.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	authorID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid user id")
		return
	}
	page := parsePage(ctx)

	posts, total, err := p.queries.ForAuthor(authorID, viewerID, page)
	if err != nil {
		respondServiceError(ctx, err, 50023, "failed to list posts")
		return
	}
	utils.Success(ctx, gin.H{
		"items":    posts,
		"total":    total,
		"skip":     page.Skip,
		"limit":    page.Limit,
		"has_more": services.HasMore(total, page),
	})
}

// CreatePost publishes a new post for the authenticated user.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title     string `json:"title" binding:"required,min=1"`
		Content   string `json:"content" binding:"required"`
		Category  string `json:"category"`
		Published *bool  `json:"published"`
		Rating    int    `json:"rating"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}
	title := utils.Sanitize(strings.TrimSpace(req.Title))
	content := utils.Sanitize(req.Content)

	post, err := p.store.Create(userID, title, content, strings.TrimSpace(req.Category), published, req.Rating)
	if err != nil {
		respondServiceError(ctx, err, 50024, "failed to create post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost applies a partial update after the ownership check.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		Category  *string `json:"category"`
		Published *bool   `json:"published"`
		Rating    *int    `json:"rating"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	upd := services.PostUpdate{
		Category:  req.Category,
		Published: req.Published,
		Rating:    req.Rating,
	}
	if req.Title != nil {
		clean := utils.Sanitize(strings.TrimSpace(*req.Title))
		upd.Title = &clean
	}
	if req.Content != nil {
		clean := utils.Sanitize(*req.Content)
		upd.Content = &clean
	}

	post, err := p.store.Update(postID, userID, upd)
	if err != nil {
		respondServiceError(ctx, err, 50025, "failed to update post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post; the vote ledger entries go with it.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := p.store.Delete(postID, userID); err != nil {
		if services.KindOf(err) == services.KindForbidden && isAdmin(ctx) {
			// Admins may remove any post; rerun as the owner.
			var ownerID uint
			if err2 := p.db.Table("posts").Select("user_id").Where("id = ?", postID).Scan(&ownerID).Error; err2 == nil {
				if err3 := p.store.Delete(postID, ownerID); err3 == nil {
					utils.Success(ctx, gin.H{"message": "post deleted"})
					return
				}
			}
		}
		respondServiceError(ctx, err, 50026, "failed to delete post")
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}
