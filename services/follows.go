package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ripplehq/ripple/models"
)

// FollowGraphStore owns the directed follow edges between users. Both lookup
// directions run against the same edge table; relationships are resolved by
// query, never by in-memory back-pointers.
type FollowGraphStore struct {
	db *gorm.DB
}

// NewFollowGraphStore creates a FollowGraphStore bound to a data-access
// handle.
func NewFollowGraphStore(db *gorm.DB) *FollowGraphStore {
	return &FollowGraphStore{db: db}
}

// GraphCounts holds both degree counts of one node in the follow graph.
type GraphCounts struct {
	Followers int64 `json:"follower_count"`
	Following int64 `json:"following_count"`
}

// RelationshipStatus describes the edges between two users from the first
// user's point of view.
type RelationshipStatus struct {
	IsFollowing  bool `json:"is_following"`
	IsFollowedBy bool `json:"is_followed_by"`
	IsMutual     bool `json:"is_mutual"`
}

// Follow creates the follower -> following edge. Self-follows are rejected
// before touching the store; a duplicate edge is a Conflict whether it is
// seen by the existence probe or by the storage uniqueness constraint.
func (s *FollowGraphStore) Follow(followerID, followingID uint) (*models.Follow, error) {
	if followerID == followingID {
		return nil, InvalidArgument("users cannot follow themselves")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", followingID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, NotFound("user", followingID)
	}

	following, err := s.IsFollowing(followerID, followingID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, Conflict("user", followingID, "already following this user")
	}

	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := s.db.Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("user", followingID, "already following this user")
		}
		return nil, err
	}
	return &edge, nil
}

// Unfollow removes the edge and reports whether one was removed.
func (s *FollowGraphStore) Unfollow(followerID, followingID uint) (bool, error) {
	res := s.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsFollowing reports whether the a -> b edge exists.
func (s *FollowGraphStore) IsFollowing(a, b uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// Followers lists the users following userID. Ordering is newest edge first
// with the follower id as tiebreak so pagination stays monotonic across
// repeated calls on unchanged data.
func (s *FollowGraphStore) Followers(userID uint, page Page) ([]models.User, int64, error) {
	var total int64
	if err := s.db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC, users.id ASC").
		Offset(page.Skip).Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Following lists the users userID follows, same ordering contract as
// Followers.
func (s *FollowGraphStore) Following(userID uint, page Page) ([]models.User, int64, error) {
	var total int64
	if err := s.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC, users.id ASC").
		Offset(page.Skip).Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Counts returns both degree counts for userID.
func (s *FollowGraphStore) Counts(userID uint) (GraphCounts, error) {
	var c GraphCounts
	if err := s.db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&c.Followers).Error; err != nil {
		return c, err
	}
	if err := s.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&c.Following).Error; err != nil {
		return c, err
	}
	return c, nil
}

// MutualFollows returns the intersection of userID's followers and
// followings: users where edges exist in both directions. Cycles elsewhere in
// the graph are irrelevant; only the two one-hop edges are consulted.
func (s *FollowGraphStore) MutualFollows(userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN follows out ON out.following_id = users.id AND out.follower_id = ?", userID).
		Joins("JOIN follows back ON back.follower_id = users.id AND back.following_id = ?", userID).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

// RelationshipStatus resolves both directed edges between a and b.
func (s *FollowGraphStore) RelationshipStatus(a, b uint) (RelationshipStatus, error) {
	isFollowing, err := s.IsFollowing(a, b)
	if err != nil {
		return RelationshipStatus{}, err
	}
	isFollowedBy, err := s.IsFollowing(b, a)
	if err != nil {
		return RelationshipStatus{}, err
	}
	return RelationshipStatus{
		IsFollowing:  isFollowing,
		IsFollowedBy: isFollowedBy,
		IsMutual:     isFollowing && isFollowedBy,
	}, nil
}
