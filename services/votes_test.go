package services

import (
	"testing"
	"time"
)

func TestVoteLedgerSetAndGet(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewVoteLedger(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "first", published: true, createdAt: time.Now()})

	vote, err := ledger.Set(post.ID, bob.ID, 1)
	if err != nil {
		t.Fatalf("set vote: %v", err)
	}
	if vote.Direction != 1 {
		t.Fatalf("direction = %d, want 1", vote.Direction)
	}

	got, err := ledger.Get(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("get vote: %v", err)
	}
	if got == nil || got.Direction != 1 {
		t.Fatalf("get returned %+v, want direction 1", got)
	}

	// Flipping to the opposite direction overwrites the stored fact.
	if _, err := ledger.Set(post.ID, bob.ID, -1); err != nil {
		t.Fatalf("flip vote: %v", err)
	}
	got, err = ledger.Get(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("get flipped vote: %v", err)
	}
	if got.Direction != -1 {
		t.Fatalf("direction after flip = %d, want -1", got.Direction)
	}
}

func TestVoteLedgerGetAbsent(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewVoteLedger(db)
	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "first", published: true, createdAt: time.Now()})

	got, err := ledger.Get(post.ID, 999)
	if err != nil {
		t.Fatalf("get absent vote: %v", err)
	}
	if got != nil {
		t.Fatalf("get absent vote = %+v, want nil", got)
	}
}

func TestVoteLedgerSetRejections(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewVoteLedger(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "first", published: true, createdAt: time.Now()})

	if _, err := ledger.Set(post.ID, bob.ID, 2); KindOf(err) != KindInvalidArgument {
		t.Fatalf("direction 2: kind = %v, want invalid argument", KindOf(err))
	}
	if _, err := ledger.Set(post.ID, bob.ID, 0); KindOf(err) != KindInvalidArgument {
		t.Fatalf("direction 0: kind = %v, want invalid argument", KindOf(err))
	}
	if _, err := ledger.Set(9999, bob.ID, 1); KindOf(err) != KindNotFound {
		t.Fatalf("missing post: kind = %v, want not found", KindOf(err))
	}

	if _, err := ledger.Set(post.ID, bob.ID, 1); err != nil {
		t.Fatalf("initial vote: %v", err)
	}
	if _, err := ledger.Set(post.ID, bob.ID, 1); KindOf(err) != KindConflict {
		t.Fatalf("same-direction resubmit: kind = %v, want conflict", KindOf(err))
	}
}

func TestVoteLedgerClear(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewVoteLedger(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "first", published: true, createdAt: time.Now()})

	removed, err := ledger.Clear(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("clear absent: %v", err)
	}
	if removed {
		t.Fatal("clear absent reported removal")
	}

	if _, err := ledger.Set(post.ID, bob.ID, 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	removed, err = ledger.Clear(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !removed {
		t.Fatal("clear did not report removal")
	}
	got, err := ledger.Get(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if got != nil {
		t.Fatalf("vote survived clear: %+v", got)
	}
}

func TestVoteLedgerTally(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewVoteLedger(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	dave := seedUser(t, db, "dave")
	post := seedPost(t, db, postSpec{author: alice.ID, title: "first", published: true, createdAt: time.Now()})

	seedVote(t, db, post.ID, bob.ID, 1)
	seedVote(t, db, post.ID, carol.ID, 1)
	seedVote(t, db, post.ID, dave.ID, -1)

	tally, err := ledger.Tally(post.ID, bob.ID)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if tally.Total != 3 || tally.Up != 2 || tally.Down != 1 {
		t.Fatalf("tally = %+v, want total 3, up 2, down 1", tally)
	}
	if tally.Total != tally.Up+tally.Down {
		t.Fatalf("total %d != up %d + down %d", tally.Total, tally.Up, tally.Down)
	}
	if !tally.ViewerHasLiked {
		t.Fatal("upvoter not reported as having voted")
	}

	// A downvoter has voted too; the flag does not depend on polarity.
	tally, err = ledger.Tally(post.ID, dave.ID)
	if err != nil {
		t.Fatalf("tally for downvoter: %v", err)
	}
	if !tally.ViewerHasLiked {
		t.Fatal("downvoter not reported as having voted")
	}

	tally, err = ledger.Tally(post.ID, alice.ID)
	if err != nil {
		t.Fatalf("tally for non-voter: %v", err)
	}
	if tally.ViewerHasLiked {
		t.Fatal("non-voter reported as having voted")
	}
}

func TestVoteLedgerTallyMany(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewVoteLedger(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	voted := seedPost(t, db, postSpec{author: alice.ID, title: "voted", published: true, createdAt: time.Now()})
	silent := seedPost(t, db, postSpec{author: alice.ID, title: "silent", published: true, createdAt: time.Now()})

	seedVote(t, db, voted.ID, bob.ID, 1)

	tallies, err := ledger.TallyMany([]uint{voted.ID, silent.ID}, bob.ID)
	if err != nil {
		t.Fatalf("tally many: %v", err)
	}
	if len(tallies) != 2 {
		t.Fatalf("got %d tallies, want 2", len(tallies))
	}
	if tallies[voted.ID].Up != 1 || !tallies[voted.ID].ViewerHasLiked {
		t.Fatalf("voted post tally = %+v", tallies[voted.ID])
	}
	// Zero-vote posts still appear, with all counts at zero.
	if z := tallies[silent.ID]; z.Total != 0 || z.ViewerHasLiked {
		t.Fatalf("silent post tally = %+v, want zeros", z)
	}
}
