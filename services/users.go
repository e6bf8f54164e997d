package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ripplehq/ripple/models"
)

// UserStore covers the few user operations the graph and ledger depend on.
// Plain profile CRUD beyond this lives with the serving layer.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore bound to a data-access handle.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// ByID returns the user or NotFound.
func (s *UserStore) ByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user", userID)
		}
		return nil, err
	}
	return &user, nil
}

// Delete removes the user and cascades: follow edges referencing the user in
// either direction, the user's vote facts, and the user's posts with their
// votes.
func (s *UserStore) Delete(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("user", userID)
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR following_id = ?", userID, userID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN (?)",
			tx.Model(&models.Post{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
