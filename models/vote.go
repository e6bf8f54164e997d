package models

// Vote records one user's directional vote on one post. The composite
// primary key keeps at most one fact per (post, voter) pair; a concurrent
// duplicate insert fails at the storage layer rather than silently forking.
type Vote struct {
	PostID    uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Direction int  `gorm:"not null" json:"dir"` // +1 upvote, -1 downvote
	Post      Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	User      User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
