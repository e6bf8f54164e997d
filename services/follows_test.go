package services

import "testing"

func TestFollowGraphFollowAndUnfollow(t *testing.T) {
	db := setupTestDB(t)
	graph := NewFollowGraphStore(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	edge, err := graph.Follow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if edge.FollowerID != alice.ID || edge.FollowingID != bob.ID {
		t.Fatalf("edge = %+v", edge)
	}

	following, err := graph.IsFollowing(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("is following: %v", err)
	}
	if !following {
		t.Fatal("edge not visible after follow")
	}
	// The reverse edge does not exist.
	reverse, err := graph.IsFollowing(bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("reverse is following: %v", err)
	}
	if reverse {
		t.Fatal("reverse edge reported without being created")
	}

	removed, err := graph.Unfollow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if !removed {
		t.Fatal("unfollow did not report removal")
	}
	removed, err = graph.Unfollow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second unfollow: %v", err)
	}
	if removed {
		t.Fatal("second unfollow reported removal of absent edge")
	}
}

func TestFollowGraphRejections(t *testing.T) {
	db := setupTestDB(t)
	graph := NewFollowGraphStore(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	if _, err := graph.Follow(alice.ID, alice.ID); KindOf(err) != KindInvalidArgument {
		t.Fatalf("self-follow: kind = %v, want invalid argument", KindOf(err))
	}
	if _, err := graph.Follow(alice.ID, 9999); KindOf(err) != KindNotFound {
		t.Fatalf("missing target: kind = %v, want not found", KindOf(err))
	}
	if _, err := graph.Follow(alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := graph.Follow(alice.ID, bob.ID); KindOf(err) != KindConflict {
		t.Fatalf("duplicate follow: kind = %v, want conflict", KindOf(err))
	}
}

func TestFollowGraphCountsAndLists(t *testing.T) {
	db := setupTestDB(t)
	graph := NewFollowGraphStore(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	seedFollow(t, db, bob.ID, alice.ID)
	seedFollow(t, db, carol.ID, alice.ID)
	seedFollow(t, db, alice.ID, bob.ID)

	counts, err := graph.Counts(alice.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Followers != 2 || counts.Following != 1 {
		t.Fatalf("counts = %+v, want 2 followers, 1 following", counts)
	}

	followers, total, err := graph.Followers(alice.ID, NewPage(0, 20))
	if err != nil {
		t.Fatalf("followers: %v", err)
	}
	if total != 2 || len(followers) != 2 {
		t.Fatalf("followers total %d len %d, want 2/2", total, len(followers))
	}

	following, total, err := graph.Following(alice.ID, NewPage(0, 20))
	if err != nil {
		t.Fatalf("following: %v", err)
	}
	if total != 1 || len(following) != 1 || following[0].ID != bob.ID {
		t.Fatalf("following = %+v (total %d)", following, total)
	}
}

func TestFollowGraphListPagination(t *testing.T) {
	db := setupTestDB(t)
	graph := NewFollowGraphStore(db)
	alice := seedUser(t, db, "alice")
	names := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, n := range names {
		u := seedUser(t, db, n)
		seedFollow(t, db, u.ID, alice.ID)
	}

	first, total, err := graph.Followers(alice.ID, NewPage(0, 2))
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	second, _, err := graph.Followers(alice.ID, NewPage(2, 2))
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if total != 5 || len(first) != 2 || len(second) != 2 {
		t.Fatalf("total %d, pages %d/%d", total, len(first), len(second))
	}
	for _, a := range first {
		for _, b := range second {
			if a.ID == b.ID {
				t.Fatalf("user %d appears on both pages", a.ID)
			}
		}
	}
	if !HasMore(total, NewPage(2, 2)) {
		t.Fatal("has_more false with a page remaining")
	}
	if HasMore(total, NewPage(4, 2)) {
		t.Fatal("has_more true on the last page")
	}

	beyond, _, err := graph.Followers(alice.ID, NewPage(50, 2))
	if err != nil {
		t.Fatalf("page beyond end: %v", err)
	}
	if len(beyond) != 0 {
		t.Fatalf("page beyond end returned %d rows", len(beyond))
	}
}

func TestFollowGraphMutualAndStatus(t *testing.T) {
	db := setupTestDB(t)
	graph := NewFollowGraphStore(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	seedFollow(t, db, alice.ID, bob.ID)
	seedFollow(t, db, bob.ID, alice.ID)
	seedFollow(t, db, alice.ID, carol.ID)

	mutuals, err := graph.MutualFollows(alice.ID)
	if err != nil {
		t.Fatalf("mutual follows: %v", err)
	}
	if len(mutuals) != 1 || mutuals[0].ID != bob.ID {
		t.Fatalf("mutuals = %+v, want only bob", mutuals)
	}

	status, err := graph.RelationshipStatus(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("status alice->bob: %v", err)
	}
	if !status.IsFollowing || !status.IsFollowedBy || !status.IsMutual {
		t.Fatalf("alice->bob status = %+v, want fully mutual", status)
	}

	status, err = graph.RelationshipStatus(alice.ID, carol.ID)
	if err != nil {
		t.Fatalf("status alice->carol: %v", err)
	}
	if !status.IsFollowing || status.IsFollowedBy || status.IsMutual {
		t.Fatalf("alice->carol status = %+v, want one-way", status)
	}

	// Symmetric view from the other end.
	status, err = graph.RelationshipStatus(carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("status carol->alice: %v", err)
	}
	if status.IsFollowing || !status.IsFollowedBy || status.IsMutual {
		t.Fatalf("carol->alice status = %+v", status)
	}
}
