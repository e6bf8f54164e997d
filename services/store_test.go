package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ripplehq/ripple/models"
)

// setupTestDB opens an isolated in-memory database per test. A single
// connection keeps every query on the same memory store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Vote{}, &models.Follow{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Email:    fmt.Sprintf("%s@example.com", name),
		Username: name,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

type postSpec struct {
	author    uint
	title     string
	category  string
	published bool
	createdAt time.Time
}

func seedPost(t *testing.T, db *gorm.DB, spec postSpec) models.Post {
	t.Helper()
	if spec.category == "" {
		spec.category = "general"
	}
	post := models.Post{
		UserID:    spec.author,
		Title:     spec.title,
		Content:   "content of " + spec.title,
		Category:  spec.category,
		Published: spec.published,
		CreatedAt: spec.createdAt,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post %s: %v", spec.title, err)
	}
	if !spec.published {
		// GORM replaces a zero-valued field carrying a default tag with the
		// default on insert, so published=false must be written directly.
		if err := db.Model(&post).UpdateColumn("published", false).Error; err != nil {
			t.Fatalf("seed post %s unpublish: %v", spec.title, err)
		}
		post.Published = false
	}
	return post
}

func seedVote(t *testing.T, db *gorm.DB, postID, userID uint, dir int) {
	t.Helper()
	if err := db.Create(&models.Vote{PostID: postID, UserID: userID, Direction: dir}).Error; err != nil {
		t.Fatalf("seed vote (%d,%d): %v", postID, userID, err)
	}
}

func seedFollow(t *testing.T, db *gorm.DB, followerID, followingID uint) {
	t.Helper()
	if err := db.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error; err != nil {
		t.Fatalf("seed follow %d->%d: %v", followerID, followingID, err)
	}
}
