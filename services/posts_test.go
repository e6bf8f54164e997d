package services

import (
	"testing"
	"time"

	"github.com/ripplehq/ripple/models"
)

func TestAggregateByID(t *testing.T) {
	db := setupTestDB(t)
	queries := NewPostAggregateQuery(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "first", published: true, createdAt: time.Now()})

	seedVote(t, db, post.ID, bob.ID, 1)
	seedVote(t, db, post.ID, carol.ID, -1)

	got, err := queries.ByID(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.Votes != 2 || got.Upvotes != 1 || got.Downvotes != 1 {
		t.Fatalf("aggregates = %d/%d/%d, want 2/1/1", got.Votes, got.Upvotes, got.Downvotes)
	}
	if !got.HasLiked {
		t.Fatal("upvoter not flagged as having voted")
	}

	got, err = queries.ByID(post.ID, carol.ID)
	if err != nil {
		t.Fatalf("by id for downvoter: %v", err)
	}
	if !got.HasLiked {
		t.Fatal("downvoter not flagged as having voted")
	}

	got, err = queries.ByID(post.ID, alice.ID)
	if err != nil {
		t.Fatalf("by id for non-voter: %v", err)
	}
	if got.HasLiked {
		t.Fatal("non-voter flagged as having voted")
	}

	if _, err := queries.ByID(9999, bob.ID); KindOf(err) != KindNotFound {
		t.Fatalf("missing post: kind = %v, want not found", KindOf(err))
	}
}

func TestAggregateIncludesZeroVotePosts(t *testing.T) {
	db := setupTestDB(t)
	queries := NewPostAggregateQuery(db)
	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "untouched", published: true, createdAt: time.Now()})

	posts, total, err := queries.Recent(alice.ID, NewPage(0, 20))
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if total != 1 || len(posts) != 1 {
		t.Fatalf("got %d posts (total %d), want 1", len(posts), total)
	}
	p := posts[0]
	if p.ID != post.ID || p.Votes != 0 || p.Upvotes != 0 || p.Downvotes != 0 || p.HasLiked {
		t.Fatalf("zero-vote post = %+v", p)
	}
}

func TestAggregateSearch(t *testing.T) {
	db := setupTestDB(t)
	queries := NewPostAggregateQuery(db)
	alice := seedUser(t, db, "alice")
	now := time.Now()

	inTitle := seedPost(t, db, postSpec{author: alice.ID, title: "Gopher habits", published: true, createdAt: now.Add(-2 * time.Hour)})
	inContent := models.Post{
		UserID:    alice.ID,
		Title:     "field notes",
		Content:   "spotted a GOPHER today",
		Category:  "general",
		Published: true,
		CreatedAt: now.Add(-1 * time.Hour),
	}
	if err := db.Create(&inContent).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	seedPost(t, db, postSpec{author: alice.ID, title: "unrelated", published: true, createdAt: now})

	posts, total, err := queries.Search("gopher", alice.ID, NewPage(0, 20))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("got %d posts (total %d), want 2", len(posts), total)
	}
	// Case-insensitive across title and content, newest first.
	if posts[0].ID != inContent.ID || posts[1].ID != inTitle.ID {
		t.Fatalf("order = [%q, %q]", posts[0].Title, posts[1].Title)
	}
}

func TestAggregateForAuthor(t *testing.T) {
	db := setupTestDB(t)
	queries := NewPostAggregateQuery(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	now := time.Now()

	seedPost(t, db, postSpec{author: alice.ID, title: "a1", published: true, createdAt: now.Add(-2 * time.Hour)})
	seedPost(t, db, postSpec{author: alice.ID, title: "a2", published: false, createdAt: now.Add(-1 * time.Hour)})
	seedPost(t, db, postSpec{author: bob.ID, title: "b1", published: true, createdAt: now})

	posts, total, err := queries.ForAuthor(alice.ID, alice.ID, NewPage(0, 20))
	if err != nil {
		t.Fatalf("for author: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("got %d posts (total %d), want 2", len(posts), total)
	}
	for _, p := range posts {
		if p.UserID != alice.ID {
			t.Fatalf("foreign post %q in author listing", p.Title)
		}
	}
}

func TestPostStoreCreate(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostStore(db)
	alice := seedUser(t, db, "alice")

	post, err := store.Create(alice.ID, "hello", "world", "", true, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID == 0 || post.Category != "general" {
		t.Fatalf("created post = %+v", post)
	}

	if _, err := store.Create(alice.ID, "  ", "world", "", true, 0); KindOf(err) != KindInvalidArgument {
		t.Fatalf("blank title: kind = %v, want invalid argument", KindOf(err))
	}
	if _, err := store.Create(alice.ID, "hello", "", "", true, 0); KindOf(err) != KindInvalidArgument {
		t.Fatalf("blank content: kind = %v, want invalid argument", KindOf(err))
	}
}

func TestPostStoreUpdate(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostStore(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "original", published: true, createdAt: time.Now()})

	title := "updated"
	published := false
	updated, err := store.Update(post.ID, alice.ID, PostUpdate{Title: &title, Published: &published})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "updated" {
		t.Fatalf("title = %q", updated.Title)
	}

	var stored models.Post
	if err := db.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Title != "updated" || stored.Published {
		t.Fatalf("stored post = %+v", stored)
	}
	// Untouched fields survive a partial update.
	if stored.Content != post.Content || stored.Category != post.Category {
		t.Fatalf("partial update clobbered other fields: %+v", stored)
	}

	if _, err := store.Update(post.ID, bob.ID, PostUpdate{Title: &title}); KindOf(err) != KindForbidden {
		t.Fatalf("non-owner update: kind = %v, want forbidden", KindOf(err))
	}
	if _, err := store.Update(9999, alice.ID, PostUpdate{Title: &title}); KindOf(err) != KindNotFound {
		t.Fatalf("missing post update: kind = %v, want not found", KindOf(err))
	}

	blank := "   "
	if _, err := store.Update(post.ID, alice.ID, PostUpdate{Title: &blank}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("blank title update: kind = %v, want invalid argument", KindOf(err))
	}
	badRating := 11
	if _, err := store.Update(post.ID, alice.ID, PostUpdate{Rating: &badRating}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("out-of-range rating: kind = %v, want invalid argument", KindOf(err))
	}
}

func TestPostStoreDeleteCascadesVotes(t *testing.T) {
	db := setupTestDB(t)
	store := NewPostStore(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "doomed", published: true, createdAt: time.Now()})
	seedVote(t, db, post.ID, bob.ID, 1)

	if err := store.Delete(post.ID, bob.ID); KindOf(err) != KindForbidden {
		t.Fatalf("non-owner delete: kind = %v, want forbidden", KindOf(err))
	}
	if err := store.Delete(post.ID, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(post.ID, alice.ID); KindOf(err) != KindNotFound {
		t.Fatalf("second delete: kind = %v, want not found", KindOf(err))
	}

	var votes int64
	if err := db.Model(&models.Vote{}).Where("post_id = ?", post.ID).Count(&votes).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if votes != 0 {
		t.Fatalf("%d votes survived post deletion", votes)
	}
}
