package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/ripplehq/ripple/models"
)

// Feed types the orchestrator dispatches on. Anything else falls back to the
// recency-ordered aggregate listing rather than failing: callers that need
// strict validation check the type before calling.
const (
	FeedFollowing   = "following"
	FeedTrending    = "trending"
	FeedRecommended = "recommended"
)

// timeframeHours maps the accepted trending windows to hours. Unrecognized
// values fall back to 24h.
var timeframeHours = map[string]int{
	"1h":  1,
	"6h":  6,
	"24h": 24,
	"7d":  168,
	"30d": 720,
}

// TimeframeHours resolves a trending window token to hours.
func TimeframeHours(timeframe string) int {
	if h, ok := timeframeHours[timeframe]; ok {
		return h
	}
	return 24
}

// FeedRequest carries everything one feed call needs. A non-empty Search
// term bypasses ranking entirely; search and ranking are mutually exclusive
// per request.
type FeedRequest struct {
	ViewerID  uint
	Type      string
	Timeframe string
	Search    string
	Page      Page
}

// FeedService owns the three ranking strategies and the dispatch between
// them. It reads through PostAggregateQuery and FollowGraphStore and keeps no
// state of its own between requests.
type FeedService struct {
	db      *gorm.DB
	queries *PostAggregateQuery
	graph   *FollowGraphStore

	// MinTrendingVotes excludes trending candidates with fewer total votes
	// before scoring. Zero disables the floor.
	MinTrendingVotes int

	now func() time.Time
}

// NewFeedService wires the strategies over shared query components.
func NewFeedService(db *gorm.DB, queries *PostAggregateQuery, graph *FollowGraphStore) *FeedService {
	return &FeedService{
		db:      db,
		queries: queries,
		graph:   graph,
		now:     time.Now,
	}
}

// GetFeed is the single entry point for the serving layer.
func (s *FeedService) GetFeed(req FeedRequest) ([]AnnotatedPost, int64, error) {
	if req.Search != "" {
		return s.queries.Search(req.Search, req.ViewerID, req.Page)
	}
	switch req.Type {
	case FeedFollowing:
		return s.Following(req.ViewerID, req.Page)
	case FeedTrending:
		return s.Trending(req.ViewerID, req.Timeframe, req.Page)
	case FeedRecommended:
		return s.Recommended(req.ViewerID, req.Page)
	default:
		return s.queries.Recent(req.ViewerID, req.Page)
	}
}

// Following returns posts authored by the users the viewer follows plus the
// viewer's own, in strict reverse-chronological order with no recency cutoff.
func (s *FeedService) Following(viewerID uint, page Page) ([]AnnotatedPost, int64, error) {
	followedAuthors := s.db.Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ?", viewerID)

	filter := s.db.Model(&models.Post{}).
		Where("user_id IN (?) OR user_id = ?", followedAuthors, viewerID)
	var total int64
	if err := filter.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []annotatedRow
	err := s.queries.annotatedQuery(viewerID).
		Where("posts.user_id IN (?) OR posts.user_id = ?", followedAuthors, viewerID).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return collect(rows), total, nil
}

// Trending scores published posts created inside the window by
// (upvotes - downvotes) / ageHours, with age floored to one hour so fresh
// posts do not divide by zero. Candidate aggregation is one grouped store
// query; scoring and ordering happen over the windowed set.
func (s *FeedService) Trending(viewerID uint, timeframe string, page Page) ([]AnnotatedPost, int64, error) {
	now := s.now()
	cutoff := now.Add(-time.Duration(TimeframeHours(timeframe)) * time.Hour)

	var rows []annotatedRow
	err := s.queries.annotatedQuery(viewerID).
		Where("posts.published = ? AND posts.created_at >= ?", true, cutoff).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	candidates := make([]AnnotatedPost, 0, len(rows))
	for _, r := range rows {
		if s.MinTrendingVotes > 0 && r.Votes < int64(s.MinTrendingVotes) {
			continue
		}
		p := r.annotated()
		ageHours := now.Sub(p.CreatedAt).Hours()
		if ageHours < 1.0 {
			ageHours = 1.0
		}
		p.TrendScore = float64(p.Upvotes-p.Downvotes) / ageHours
		p.VoteVelocity = float64(p.Votes) / ageHours
		candidates = append(candidates, p)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TrendScore != candidates[j].TrendScore {
			return candidates[i].TrendScore > candidates[j].TrendScore
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	return slicePage(candidates, page), int64(len(candidates)), nil
}

// Recommended personalizes on the viewer's voting history. Without history it
// falls back to popularity: published posts, viewer's own excluded, ordered
// by upvote count. With history it restricts candidates to the viewer's top
// three categories by interaction count and drops posts already voted on.
func (s *FeedService) Recommended(viewerID uint, page Page) ([]AnnotatedPost, int64, error) {
	var historyCount int64
	if err := s.db.Model(&models.Vote{}).Where("user_id = ?", viewerID).Count(&historyCount).Error; err != nil {
		return nil, 0, err
	}

	if historyCount == 0 {
		return s.popularityFallback(viewerID, page)
	}

	categories, err := s.topCategories(viewerID, 3)
	if err != nil {
		return nil, 0, err
	}
	if len(categories) == 0 {
		return s.popularityFallback(viewerID, page)
	}

	votedPosts := s.db.Model(&models.Vote{}).
		Select("post_id").
		Where("user_id = ?", viewerID)

	filter := s.db.Model(&models.Post{}).
		Where("published = ? AND category IN ? AND user_id <> ?", true, categories, viewerID).
		Where("id NOT IN (?)", votedPosts)
	var total int64
	if err := filter.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []annotatedRow
	err = s.queries.annotatedQuery(viewerID).
		Where("posts.published = ? AND posts.category IN ? AND posts.user_id <> ?", true, categories, viewerID).
		Where("posts.id NOT IN (?)", votedPosts).
		Order("upvotes DESC, posts.id ASC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return collect(rows), total, nil
}

func (s *FeedService) popularityFallback(viewerID uint, page Page) ([]AnnotatedPost, int64, error) {
	var total int64
	if err := s.db.Model(&models.Post{}).
		Where("published = ? AND user_id <> ?", true, viewerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []annotatedRow
	err := s.queries.annotatedQuery(viewerID).
		Where("posts.published = ? AND posts.user_id <> ?", true, viewerID).
		Order("upvotes DESC, posts.id ASC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return collect(rows), total, nil
}

// topCategories ranks the categories of posts the viewer has voted on by
// interaction count.
func (s *FeedService) topCategories(viewerID uint, limit int) ([]string, error) {
	var rows []struct {
		Category     string
		Interactions int64
	}
	err := s.db.Table("votes").
		Select("posts.category AS category, COUNT(votes.post_id) AS interactions").
		Joins("JOIN posts ON posts.id = votes.post_id").
		Where("votes.user_id = ?", viewerID).
		Group("posts.category").
		Order("interactions DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, r.Category)
	}
	return categories, nil
}

func slicePage(items []AnnotatedPost, page Page) []AnnotatedPost {
	if page.Skip >= len(items) {
		return []AnnotatedPost{}
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}
