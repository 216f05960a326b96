package services

import (
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestPostgresListOrdersByInsertionWithinTimestamp(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=portfolio dbname=portfolio sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	query := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var records []photoRecord
		return listQuery(tx).Find(&records)
	})
	if !strings.Contains(query, "ORDER BY created_at DESC, seq DESC") {
		t.Fatalf("listing query %q lacks the insertion tiebreak", query)
	}
}
