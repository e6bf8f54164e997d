package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/services"
	"github.com/ripplehq/ripple/utils"
)

// VoteController maps the vote lifecycle onto the ledger: +1/-1 create or
// overwrite a fact, 0 clears it.
type VoteController struct {
	db     *gorm.DB
	ledger *services.VoteLedger
}

// NewVoteController creates a new VoteController instance.
func NewVoteController(db *gorm.DB, ledger *services.VoteLedger) *VoteController {
	return &VoteController{db: db, ledger: ledger}
}

// Cast handles POST /vote.
func (v *VoteController) Cast(ctx *gin.Context) {
	var req struct {
		PostID uint `json:"post_id" binding:"required"`
		Dir    *int `json:"dir" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	dir := *req.Dir
	switch dir {
	case 1, -1:
		vote, err := v.ledger.Set(req.PostID, userID, dir)
		if err != nil {
			respondServiceError(ctx, err, 50030, "failed to record vote")
			return
		}
		utils.Success(ctx, gin.H{"vote": vote})
	case 0:
		// Distinguish "nothing to remove" from a successful removal.
		existing, err := v.ledger.Get(req.PostID, userID)
		if err != nil {
			respondServiceError(ctx, err, 50031, "failed to load vote")
			return
		}
		if existing == nil {
			utils.Error(ctx, http.StatusNotFound, 40430, "no vote to remove")
			return
		}
		if _, err := v.ledger.Clear(req.PostID, userID); err != nil {
			respondServiceError(ctx, err, 50032, "failed to clear vote")
			return
		}
		utils.Success(ctx, gin.H{"message": "vote cleared"})
	default:
		utils.Error(ctx, http.StatusBadRequest, 40031, "vote direction must be -1, 0 or +1")
	}
}

// GetTally returns the aggregate counts for one post plus the viewer's own
// direction.
func (v *VoteController) GetTally(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid post id")
		return
	}

	tally, err := v.ledger.Tally(postID, viewerID)
	if err != nil {
		respondServiceError(ctx, err, 50033, "failed to tally votes")
		return
	}

	var viewerDir int
	if vote, err := v.ledger.Get(postID, viewerID); err == nil && vote != nil {
		viewerDir = vote.Direction
	}
	utils.Success(ctx, gin.H{"tally": tally, "viewer_dir": viewerDir})
}
