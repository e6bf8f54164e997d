package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ripplehq/ripple/models"
)

// AnnotatedPost is a transient projection of a post with its vote aggregates
// and the viewer's like-state. It is derived fresh per query and never
// persisted or cached.
type AnnotatedPost struct {
	models.Post
	Votes        int64   `json:"votes"`
	Upvotes      int64   `json:"upvotes"`
	Downvotes    int64   `json:"downvotes"`
	HasLiked     bool    `json:"has_liked"`
	TrendScore   float64 `json:"trend_score,omitempty"`
	VoteVelocity float64 `json:"vote_velocity,omitempty"`
}

type annotatedRow struct {
	models.Post `gorm:"embedded"`
	Votes       int64
	Upvotes     int64
	Downvotes   int64
	ViewerDir   *int
}

func (r annotatedRow) annotated() AnnotatedPost {
	return AnnotatedPost{
		Post:      r.Post,
		Votes:     r.Votes,
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
		HasLiked:  r.ViewerDir != nil && *r.ViewerDir != 0,
	}
}

// PostAggregateQuery joins posts with the vote ledger using outer-join
// semantics: a post with zero votes still appears with all counts at zero.
type PostAggregateQuery struct {
	db *gorm.DB
}

// NewPostAggregateQuery creates a PostAggregateQuery bound to a data-access
// handle.
func NewPostAggregateQuery(db *gorm.DB) *PostAggregateQuery {
	return &PostAggregateQuery{db: db}
}

const annotatedSelect = "posts.*, " +
	"COUNT(votes.post_id) AS votes, " +
	"COALESCE(SUM(CASE WHEN votes.direction = 1 THEN 1 ELSE 0 END), 0) AS upvotes, " +
	"COALESCE(SUM(CASE WHEN votes.direction = -1 THEN 1 ELSE 0 END), 0) AS downvotes, " +
	"MAX(CASE WHEN votes.user_id = ? THEN votes.direction END) AS viewer_dir"

// annotatedQuery is the shared left-join/group-by skeleton every access
// pattern builds on.
func (q *PostAggregateQuery) annotatedQuery(viewerID uint) *gorm.DB {
	return q.db.Table("posts").
		Select(annotatedSelect, viewerID).
		Joins("LEFT JOIN votes ON votes.post_id = posts.id").
		Group("posts.id")
}

// ByID returns a single annotated post, or NotFound when it does not exist.
func (q *PostAggregateQuery) ByID(postID, viewerID uint) (*AnnotatedPost, error) {
	var count int64
	if err := q.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, NotFound("post", postID)
	}
	var row annotatedRow
	err := q.annotatedQuery(viewerID).
		Where("posts.id = ?", postID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	post := row.annotated()
	return &post, nil
}

// ForAuthor returns the author's posts, newest first.
func (q *PostAggregateQuery) ForAuthor(authorID, viewerID uint, page Page) ([]AnnotatedPost, int64, error) {
	var total int64
	if err := q.db.Model(&models.Post{}).Where("user_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []annotatedRow
	err := q.annotatedQuery(viewerID).
		Where("posts.user_id = ?", authorID).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return collect(rows), total, nil
}

// Search returns posts whose title or content contains term, matched
// case-insensitively, newest first. One contract for every entry point.
func (q *PostAggregateQuery) Search(term string, viewerID uint, page Page) ([]AnnotatedPost, int64, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	filter := q.db.Model(&models.Post{}).
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	var total int64
	if err := filter.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []annotatedRow
	err := q.annotatedQuery(viewerID).
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", pattern, pattern).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return collect(rows), total, nil
}

// Recent is the default aggregate listing: every post, newest first.
func (q *PostAggregateQuery) Recent(viewerID uint, page Page) ([]AnnotatedPost, int64, error) {
	var total int64
	if err := q.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []annotatedRow
	err := q.annotatedQuery(viewerID).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return collect(rows), total, nil
}

func collect(rows []annotatedRow) []AnnotatedPost {
	out := make([]AnnotatedPost, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.annotated())
	}
	return out
}

// PostStore handles author-initiated post mutations. Reads with aggregates
// live on PostAggregateQuery; this store only writes.
type PostStore struct {
	db *gorm.DB
}

// NewPostStore creates a PostStore bound to a data-access handle.
func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

// PostUpdate names exactly the mutable fields of a post. Nil means "leave
// unchanged"; there is no dynamic field merging.
type PostUpdate struct {
	Title     *string
	Content   *string
	Category  *string
	Published *bool
	Rating    *int
}

func (u PostUpdate) validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return InvalidArgument("title cannot be empty")
	}
	if u.Content != nil && strings.TrimSpace(*u.Content) == "" {
		return InvalidArgument("content cannot be empty")
	}
	if u.Rating != nil && (*u.Rating < 0 || *u.Rating > 5) {
		return InvalidArgument("rating must be between 0 and 5")
	}
	return nil
}

func (u PostUpdate) changes() map[string]interface{} {
	m := map[string]interface{}{}
	if u.Title != nil {
		m["title"] = *u.Title
	}
	if u.Content != nil {
		m["content"] = *u.Content
	}
	if u.Category != nil {
		m["category"] = *u.Category
	}
	if u.Published != nil {
		m["published"] = *u.Published
	}
	if u.Rating != nil {
		m["rating"] = *u.Rating
	}
	return m
}

// Create publishes a new post for the author.
func (s *PostStore) Create(authorID uint, title, content, category string, published bool, rating int) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, InvalidArgument("title cannot be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, InvalidArgument("content cannot be empty")
	}
	if category == "" {
		category = "general"
	}
	post := models.Post{
		UserID:    authorID,
		Title:     title,
		Content:   content,
		Category:  category,
		Published: published,
		Rating:    rating,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update applies the descriptor after the ownership check passes.
func (s *PostStore) Update(postID, requesterID uint, upd PostUpdate) (*models.Post, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("post", postID)
		}
		return nil, err
	}
	if err := requireOwner(post.UserID, requesterID, "post", postID); err != nil {
		return nil, err
	}
	changes := upd.changes()
	if len(changes) == 0 {
		return &post, nil
	}
	if err := s.db.Model(&post).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes the post after the ownership check passes; votes on the post
// go with it through the storage cascade.
func (s *PostStore) Delete(postID, requesterID uint) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("post", postID)
		}
		return err
	}
	if err := requireOwner(post.UserID, requesterID, "post", postID); err != nil {
		return err
	}
	// Explicit cascade keeps the vote ledger consistent even when the store
	// was migrated without foreign-key constraints.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}
