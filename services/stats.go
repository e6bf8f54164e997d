package services

import (
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/models"
)

// SocialStats is the transient per-user aggregate the profile endpoints
// serve. Relationship is only present when computed against a viewer other
// than the subject.
type SocialStats struct {
	UserID            uint                `json:"user_id"`
	FollowerCount     int64               `json:"follower_count"`
	FollowingCount    int64               `json:"following_count"`
	PostCount         int64               `json:"post_count"`
	VotesReceived     int64               `json:"votes_received"`
	UpvotesReceived   int64               `json:"upvotes_received"`
	DownvotesReceived int64               `json:"downvotes_received"`
	Relationship      *RelationshipStatus `json:"relationship,omitempty"`
}

// StatsService aggregates the social graph and the vote ledger into per-user
// statistics.
type StatsService struct {
	db    *gorm.DB
	graph *FollowGraphStore
}

// NewStatsService creates a StatsService over the shared graph store.
func NewStatsService(db *gorm.DB, graph *FollowGraphStore) *StatsService {
	return &StatsService{db: db, graph: graph}
}

// UserStats computes the subject's counts fresh from the store. When
// viewerID is non-zero and different from the subject, the relationship
// between viewer and subject is attached.
func (s *StatsService) UserStats(userID, viewerID uint) (*SocialStats, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, NotFound("user", userID)
	}

	counts, err := s.graph.Counts(userID)
	if err != nil {
		return nil, err
	}

	stats := &SocialStats{
		UserID:         userID,
		FollowerCount:  counts.Followers,
		FollowingCount: counts.Following,
	}

	if err := s.db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&stats.PostCount).Error; err != nil {
		return nil, err
	}

	var received struct {
		Total int64
		Up    int64
		Down  int64
	}
	err = s.db.Table("votes").
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN votes.direction = 1 THEN 1 ELSE 0 END), 0) AS up, " +
			"COALESCE(SUM(CASE WHEN votes.direction = -1 THEN 1 ELSE 0 END), 0) AS down").
		Joins("JOIN posts ON posts.id = votes.post_id").
		Where("posts.user_id = ?", userID).
		Scan(&received).Error
	if err != nil {
		return nil, err
	}
	stats.VotesReceived = received.Total
	stats.UpvotesReceived = received.Up
	stats.DownvotesReceived = received.Down

	if viewerID != 0 && viewerID != userID {
		rel, err := s.graph.RelationshipStatus(viewerID, userID)
		if err != nil {
			return nil, err
		}
		stats.Relationship = &rel
	}
	return stats, nil
}
