package ormr

import "testing"

// Tests against the real engine: an in-memory SQLite database per test.

func newSQLiteDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory(): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUsers(t *testing.T, db *DB, users ...user) {
	t.Helper()
	assertNoError(t, db.CreateTable(&user{}))
	for i := range users {
		if _, err := db.Insert(&users[i]); err != nil {
			t.Fatalf("Insert(%+v): %v", users[i], err)
		}
	}
}

func TestSQLite_InsertThenFindByID(t *testing.T) {
	db := newSQLiteDB(t)
	in := user{ID: 1, Name: "Alice", Email: "a@x.com"}
	seedUsers(t, db, in)

	var got user
	ok, err := db.FindByID(in.ID, &got)
	assertNoError(t, err)
	if !ok || got != in {
		t.Fatalf("ok=%v got=%+v, want %+v", ok, got, in)
	}
}

// TestSQLite_TextAffinityRoundTrip pushes numeric fields through the TEXT
// columns and back.
func TestSQLite_TextAffinityRoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	assertNoError(t, db.CreateTable(&reading{}))

	in := reading{ID: 3, Probe: "probe-a", Temp: 21.5, Count: 42}
	_, err := db.Insert(&in)
	assertNoError(t, err)

	var got reading
	ok, err := db.FindByID(in.ID, &got)
	assertNoError(t, err)
	if !ok || got != in {
		t.Fatalf("ok=%v got=%+v, want %+v", ok, got, in)
	}
}

func TestSQLite_UpdateThenRefetch(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db, user{ID: 1, Name: "Alice", Email: "a@x.com"})

	n, err := db.Update(&user{ID: 1, Name: "Alice", Email: "new@x.com"})
	assertNoError(t, err)
	if n != 1 {
		t.Fatalf("affected = %d, want 1", n)
	}

	var got user
	ok, err := db.FindByID(int64(1), &got)
	assertNoError(t, err)
	if !ok || got.Email != "new@x.com" || got.ID != 1 {
		t.Fatalf("refetch = %+v", got)
	}
}

func TestSQLite_DeleteMissingIDIsZeroRows(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db, user{ID: 1, Name: "Alice", Email: "a@x.com"})

	n, err := db.Delete(&user{}, int64(404))
	assertNoError(t, err)
	if n != 0 {
		t.Fatalf("affected = %d, want 0", n)
	}
}

func TestSQLite_QueryFiltersOrderLimit(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db,
		user{ID: 1, Name: "Alice", Email: "a@x.com"},
		user{ID: 2, Name: "Bob", Email: "b@y.org"},
		user{ID: 3, Name: "Carol", Email: "c@x.com"},
	)

	var xers []user
	assertNoError(t, db.Query(&user{}).WhereLike("email", "%@x.com").OrderBy("name", false).Fetch(&xers))
	if len(xers) != 2 || xers[0].Name != "Carol" || xers[1].Name != "Alice" {
		t.Fatalf("got %+v", xers)
	}

	// Key filters compare numerically: INTEGER affinity converts the text operand.
	var tail []user
	assertNoError(t, db.Query(&user{}).WhereGt("id", 1).WhereLt("id", 3).Fetch(&tail))
	if len(tail) != 1 || tail[0].ID != 2 {
		t.Fatalf("got %+v", tail)
	}

	var capped []user
	assertNoError(t, db.Query(&user{}).OrderBy("id", true).Limit(2).Fetch(&capped))
	if len(capped) != 2 || capped[0].ID != 1 || capped[1].ID != 2 {
		t.Fatalf("got %+v", capped)
	}
}

func TestSQLite_FetchOneSeesAtMostOne(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db,
		user{ID: 1, Name: "Alice", Email: "a@x.com"},
		user{ID: 2, Name: "Alison", Email: "al@x.com"},
	)

	var got user
	ok, err := db.Query(&user{}).WhereLike("name", "Ali%").OrderBy("id", true).FetchOne(&got)
	assertNoError(t, err)
	if !ok || got.ID != 1 {
		t.Fatalf("ok=%v got=%+v", ok, got)
	}
}

func TestSQLite_SelectAll(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db,
		user{ID: 1, Name: "Alice", Email: "a@x.com"},
		user{ID: 2, Name: "Bob", Email: "b@y.org"},
	)

	var all []user
	assertNoError(t, db.SelectAll(&all))
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
}

func TestSQLite_DropTable(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db, user{ID: 1, Name: "Alice", Email: "a@x.com"})
	assertNoError(t, db.DropTable(&user{}))

	// The table is gone: a read now fails at the engine.
	var all []user
	if err := db.SelectAll(&all); err == nil {
		t.Fatal("expected engine error after drop")
	}
}
