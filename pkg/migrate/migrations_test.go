package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elcilc/clicle/pkg/migrate"
)

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestAlarmsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_alarms.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no alarms migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS alarms",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"idx_alarms_user_created",
		"DROP TABLE IF EXISTS alarms",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPostLikesMigrationEnforcesUniqueness(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_post_likes.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no post_likes migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}

	if !strings.Contains(string(data), "CREATE UNIQUE INDEX IF NOT EXISTS idx_post_likes_post_user") {
		t.Error("post_likes migration must enforce one like per user per post")
	}
}
