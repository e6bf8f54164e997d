package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ripplehq/ripple/models"
)

// VoteLedger owns the set of (post, voter) -> direction facts.
type VoteLedger struct {
	db *gorm.DB
}

// NewVoteLedger creates a VoteLedger bound to a data-access handle whose
// lifetime is scoped by the caller.
func NewVoteLedger(db *gorm.DB) *VoteLedger {
	return &VoteLedger{db: db}
}

// Tally is the aggregate view of one post's votes as seen by one viewer.
type Tally struct {
	Total          int64 `json:"total"`
	Up             int64 `json:"upvotes"`
	Down           int64 `json:"downvotes"`
	ViewerHasLiked bool  `json:"has_liked"`
}

// Get returns the voter's fact for the post, or nil when absent.
func (l *VoteLedger) Get(postID, voterID uint) (*models.Vote, error) {
	var vote models.Vote
	err := l.db.Where("post_id = ? AND user_id = ?", postID, voterID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// Set records direction (+1 or -1) for the voter on the post, creating the
// fact or overwriting the stored direction. Re-submitting the direction that
// is already stored is a Conflict, as is losing a create race to a concurrent
// writer: the composite key on votes makes the storage layer the arbiter.
func (l *VoteLedger) Set(postID, voterID uint, direction int) (*models.Vote, error) {
	if direction != 1 && direction != -1 {
		return nil, InvalidArgument("vote direction must be +1 or -1")
	}

	var count int64
	if err := l.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, NotFound("post", postID)
	}

	existing, err := l.Get(postID, voterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Direction == direction {
			return nil, Conflict("post", postID, "vote with this direction already exists")
		}
		existing.Direction = direction
		if err := l.db.Model(&models.Vote{}).
			Where("post_id = ? AND user_id = ?", postID, voterID).
			Update("direction", direction).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	vote := models.Vote{PostID: postID, UserID: voterID, Direction: direction}
	if err := l.db.Create(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("post", postID, "concurrent vote already recorded")
		}
		return nil, err
	}
	return &vote, nil
}

// Clear removes the voter's fact and reports whether one existed. Absence is
// not an error here; callers that must surface "nothing to remove" check the
// returned flag.
func (l *VoteLedger) Clear(postID, voterID uint) (bool, error) {
	res := l.db.Where("post_id = ? AND user_id = ?", postID, voterID).Delete(&models.Vote{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Tally aggregates one post's votes in a single pass. ViewerHasLiked is true
// whenever the viewer has any non-zero fact on the post, regardless of
// polarity.
func (l *VoteLedger) Tally(postID, viewerID uint) (Tally, error) {
	var row struct {
		Total     int64
		Up        int64
		Down      int64
		ViewerDir *int
	}
	err := l.db.Model(&models.Vote{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN direction = 1 THEN 1 ELSE 0 END), 0) AS up, "+
			"COALESCE(SUM(CASE WHEN direction = -1 THEN 1 ELSE 0 END), 0) AS down, "+
			"MAX(CASE WHEN user_id = ? THEN direction END) AS viewer_dir", viewerID).
		Where("post_id = ?", postID).
		Scan(&row).Error
	if err != nil {
		return Tally{}, err
	}
	return Tally{
		Total:          row.Total,
		Up:             row.Up,
		Down:           row.Down,
		ViewerHasLiked: row.ViewerDir != nil && *row.ViewerDir != 0,
	}, nil
}

// TallyMany returns tallies for every requested post in one round trip.
// Posts with no votes are present in the result with zero counts.
func (l *VoteLedger) TallyMany(postIDs []uint, viewerID uint) (map[uint]Tally, error) {
	out := make(map[uint]Tally, len(postIDs))
	for _, id := range postIDs {
		out[id] = Tally{}
	}
	if len(postIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		PostID    uint
		Total     int64
		Up        int64
		Down      int64
		ViewerDir *int
	}
	err := l.db.Model(&models.Vote{}).
		Select("post_id, COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN direction = 1 THEN 1 ELSE 0 END), 0) AS up, "+
			"COALESCE(SUM(CASE WHEN direction = -1 THEN 1 ELSE 0 END), 0) AS down, "+
			"MAX(CASE WHEN user_id = ? THEN direction END) AS viewer_dir", viewerID).
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.PostID] = Tally{
			Total:          r.Total,
			Up:             r.Up,
			Down:           r.Down,
			ViewerHasLiked: r.ViewerDir != nil && *r.ViewerDir != 0,
		}
	}
	return out, nil
}
