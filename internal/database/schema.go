package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables the service needs.  Every statement is
// idempotent so Migrate can run on each start.  users.email uses a binary
// collation: emails are identity keys compared exactly, case included.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		avatar_url    VARCHAR(1024) NULL,
		created_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		token_hash CHAR(64)    NOT NULL,
		expires_at DATETIME(6) NOT NULL,
		revoked_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS offerings (
		id                    VARCHAR(64)  NOT NULL PRIMARY KEY,
		title                 VARCHAR(255) NOT NULL,
		description           TEXT         NOT NULL,
		price_per_night_cents BIGINT       NOT NULL,
		max_guests            INT          NOT NULL,
		amenities             JSON         NOT NULL,
		photos                JSON         NOT NULL,
		created_at            DATETIME(6)  NOT NULL,
		CONSTRAINT chk_offerings_price CHECK (price_per_night_cents >= 0),
		CONSTRAINT chk_offerings_guests CHECK (max_guests >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id                CHAR(36)     NOT NULL PRIMARY KEY,
		user_email        VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		offering_id       VARCHAR(64)  NOT NULL,
		start_date        DATE         NOT NULL,
		end_date          DATE         NOT NULL,
		guests            INT          NOT NULL,
		total_price_cents BIGINT       NOT NULL,
		status            ENUM('pending','confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
		note              TEXT         NULL,
		created_at        DATETIME(6)  NOT NULL,
		updated_at        DATETIME(6)  NOT NULL,
		KEY idx_bookings_offering_dates (offering_id, start_date, end_date),
		KEY idx_bookings_user_created (user_email, created_at),
		CONSTRAINT chk_bookings_range CHECK (end_date > start_date),
		CONSTRAINT chk_bookings_guests CHECK (guests >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables.  It does not alter existing ones.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
