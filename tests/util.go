package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/party"
	"github.com/trezcool/tutorparty/storage/database"
)

// PrepareDB connects to TEST_DATABASE_URL, migrates it and empties its tables.
// Tests calling it are skipped when the variable is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Open(&core.Config{Database: core.DatabaseConfig{URL: dsn}})
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	truncate := func() {
		if _, err := db.Exec(`TRUNCATE events, members RESTART IDENTITY CASCADE`); err != nil {
			t.Fatalf("PrepareDB() failed: %v", err)
		}
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		_ = db.Close()
	})
	return db
}

func CreateMember(t *testing.T, repo party.Repository, partyCode, name string, createdAt ...time.Time) party.Member {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	m, err := repo.CreateMember(context.Background(), party.Member{Name: name, PartyCode: partyCode, CreatedAt: tstamp})
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return m
}
