package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect selects the column types used by Migrate.  Production runs on
// MySQL; SQLite is used by the repository tests.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

type table struct {
	name    string
	columns []string
	indexes []index
}

type index struct {
	name    string
	columns string
}

// Column placeholders:
//   {serial}  auto-increment integer key
//   {ts}      timestamp column
//   {bool}    boolean flag
//   {str}     short indexed string
var tables = []table{
	{
		name: "users",
		columns: []string{
			"id {serial}",
			"email {str} NOT NULL UNIQUE",
			"name VARCHAR(120) NOT NULL DEFAULT ''",
			"company VARCHAR(120) NOT NULL DEFAULT ''",
			"password_hash VARCHAR(255) NOT NULL",
			"role VARCHAR(20) NOT NULL",
			"is_active {bool} NOT NULL DEFAULT 1",
			"created_at {ts} NOT NULL",
			"updated_at {ts} NOT NULL",
		},
	},
	{
		name: "refresh_tokens",
		columns: []string{
			"id {serial}",
			"user_id BIGINT NOT NULL",
			"token_hash CHAR(64) NOT NULL UNIQUE",
			"expires_at {ts} NOT NULL",
			"revoked_at {ts} NULL",
			"created_at {ts} NOT NULL",
		},
		indexes: []index{{"idx_refresh_user", "user_id"}},
	},
	{
		name: "channels",
		columns: []string{
			"id CHAR(36) NOT NULL PRIMARY KEY",
			"name {str} NOT NULL UNIQUE",
			"description TEXT NOT NULL",
			"category VARCHAR(60) NOT NULL DEFAULT ''",
			"average_viewership BIGINT NOT NULL DEFAULT 0",
			"created_at {ts} NOT NULL",
		},
	},
	{
		name: "ad_slots",
		columns: []string{
			"id CHAR(36) NOT NULL PRIMARY KEY",
			"title VARCHAR(200) NOT NULL",
			"description TEXT NOT NULL",
			"channel_id CHAR(36) NOT NULL DEFAULT ''",
			"channel_name VARCHAR(120) NOT NULL",
			"start_time {ts} NOT NULL",
			"end_time {ts} NOT NULL",
			"duration_seconds INT NOT NULL",
			"price_cents BIGINT NOT NULL",
			"estimated_viewers BIGINT NOT NULL DEFAULT 0",
			"status VARCHAR(16) NOT NULL",
			"created_by BIGINT NOT NULL DEFAULT 0",
			"created_at {ts} NOT NULL",
			"updated_at {ts} NOT NULL",
		},
		indexes: []index{{"idx_slots_status", "status, start_time"}},
	},
	{
		name: "ads",
		columns: []string{
			"id CHAR(36) NOT NULL PRIMARY KEY",
			"advertiser_id BIGINT NOT NULL",
			"advertiser_name VARCHAR(120) NOT NULL DEFAULT ''",
			"title VARCHAR(200) NOT NULL",
			"description TEXT NOT NULL",
			"media_type VARCHAR(10) NOT NULL",
			"media_url VARCHAR(1024) NOT NULL",
			"thumbnail_url VARCHAR(1024) NOT NULL DEFAULT ''",
			"status VARCHAR(16) NOT NULL",
			"created_at {ts} NOT NULL",
		},
		indexes: []index{{"idx_ads_advertiser", "advertiser_id, created_at"}},
	},
	{
		name: "bookings",
		columns: []string{
			"id CHAR(36) NOT NULL PRIMARY KEY",
			"slot_id CHAR(36) NOT NULL",
			"advertiser_id BIGINT NOT NULL",
			"advertiser_name VARCHAR(120) NOT NULL",
			"ad_id CHAR(36) NULL",
			"ad_title VARCHAR(200) NOT NULL",
			"ad_description TEXT NOT NULL",
			"status VARCHAR(16) NOT NULL",
			"snap_title VARCHAR(200) NOT NULL",
			"snap_channel_name VARCHAR(120) NOT NULL",
			"snap_start_time {ts} NOT NULL",
			"snap_end_time {ts} NOT NULL",
			"snap_duration_seconds INT NOT NULL",
			"snap_price_cents BIGINT NOT NULL",
			"created_at {ts} NOT NULL",
			"updated_at {ts} NOT NULL",
		},
		indexes: []index{
			{"idx_bookings_slot", "slot_id"},
			{"idx_bookings_advertiser", "advertiser_id, created_at"},
			{"idx_bookings_status", "status, created_at"},
		},
	},
	{
		name: "notifications",
		columns: []string{
			"id CHAR(36) NOT NULL PRIMARY KEY",
			"user_id BIGINT NOT NULL",
			"title VARCHAR(200) NOT NULL",
			"message TEXT NOT NULL",
			"category VARCHAR(32) NOT NULL",
			"is_read {bool} NOT NULL DEFAULT 0",
			"target_id CHAR(36) NULL",
			"created_at {ts} NOT NULL",
		},
		indexes: []index{{"idx_notifications_user", "user_id, created_at"}},
	},
}

func (d Dialect) replacer() *strings.Replacer {
	if d == SQLite {
		return strings.NewReplacer(
			"{serial}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{ts}", "DATETIME",
			"{bool}", "BOOLEAN",
			"{str}", "VARCHAR(190)",
		)
	}
	return strings.NewReplacer(
		"{serial}", "BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY",
		"{ts}", "DATETIME(3)",
		"{bool}", "TINYINT(1)",
		"{str}", "VARCHAR(190)",
	)
}

// Statements renders the DDL for the dialect.  MySQL has no
// CREATE INDEX IF NOT EXISTS, so its indexes are declared inline.
func (d Dialect) Statements() []string {
	rep := d.replacer()
	var out []string
	for _, t := range tables {
		cols := make([]string, 0, len(t.columns)+len(t.indexes))
		for _, c := range t.columns {
			cols = append(cols, rep.Replace(c))
		}
		if d == MySQL {
			for _, ix := range t.indexes {
				cols = append(cols, fmt.Sprintf("INDEX %s (%s)", ix.name, ix.columns))
			}
		}
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", t.name, strings.Join(cols, ",\n  "))
		if d == MySQL {
			stmt += " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
		}
		out = append(out, stmt)
		if d == SQLite {
			for _, ix := range t.indexes {
				out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", ix.name, t.name, ix.columns))
			}
		}
	}
	return out
}

// Migrate creates any missing tables.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
