package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	// clientFoundRows=true -> RowsAffected counts matched rows, not changed ones
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema is applied statement by statement so the DSN does not need
// multiStatements=true.  Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS halls (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		seat_rows INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seat_categories (
		id CHAR(36) PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		price_cents INT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seats (
		id CHAR(36) PRIMARY KEY,
		hall_id CHAR(36) NOT NULL,
		seat_row INT NOT NULL,
		seat_number INT NOT NULL,
		category_id CHAR(36) NOT NULL,
		UNIQUE KEY uq_seats_position (hall_id, seat_row, seat_number),
		CONSTRAINT fk_seats_hall FOREIGN KEY (hall_id) REFERENCES halls(id) ON DELETE CASCADE,
		CONSTRAINT fk_seats_category FOREIGN KEY (category_id) REFERENCES seat_categories(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS films (
		id CHAR(36) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		duration_minutes INT NOT NULL,
		age_rating VARCHAR(8) NOT NULL,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id CHAR(36) PRIMARY KEY,
		film_id CHAR(36) NOT NULL,
		hall_id CHAR(36) NOT NULL,
		start_at DATETIME(6) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		KEY idx_sessions_hall_start (hall_id, start_at),
		CONSTRAINT fk_sessions_film FOREIGN KEY (film_id) REFERENCES films(id),
		CONSTRAINT fk_sessions_hall FOREIGN KEY (hall_id) REFERENCES halls(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id CHAR(36) PRIMARY KEY,
		client_id CHAR(36) NOT NULL,
		status VARCHAR(16) NOT NULL,
		total_cents INT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		KEY idx_purchases_client (client_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id CHAR(36) PRIMARY KEY,
		session_id CHAR(36) NOT NULL,
		seat_id CHAR(36) NOT NULL,
		seat_row INT NOT NULL,
		seat_number INT NOT NULL,
		category_id CHAR(36) NOT NULL,
		price_cents INT NOT NULL,
		status VARCHAR(16) NOT NULL,
		reserved_by CHAR(36) NULL,
		reserved_until DATETIME(6) NULL,
		purchase_id CHAR(36) NULL,
		UNIQUE KEY uq_tickets_session_seat (session_id, seat_id),
		KEY idx_tickets_expiry (status, reserved_until),
		KEY idx_tickets_purchase (purchase_id),
		CONSTRAINT fk_tickets_session FOREIGN KEY (session_id) REFERENCES sessions(id),
		CONSTRAINT fk_tickets_purchase FOREIGN KEY (purchase_id) REFERENCES purchases(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS payments (
		id CHAR(36) PRIMARY KEY,
		purchase_id CHAR(36) NOT NULL,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_payments_purchase (purchase_id, created_at),
		CONSTRAINT fk_payments_purchase FOREIGN KEY (purchase_id) REFERENCES purchases(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the engine's tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
