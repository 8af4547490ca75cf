package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// NewMySQLStore wires every MySQL repository around one connection pool.
func NewMySQLStore(db *sql.DB) *Store {
	return &Store{
		Tx:         NewSQLTxManager(db),
		Halls:      NewHallRepo(db),
		Seats:      NewSeatRepo(db),
		Categories: NewCategoryRepo(db),
		Films:      NewFilmRepo(db),
		Sessions:   NewSessionRepo(db),
		Tickets:    NewTicketRepo(db),
		Purchases:  NewPurchaseRepo(db),
		Payments:   NewPaymentRepo(db),
		Users:      NewUserRepo(db),
	}
}

// mapDuplicate turns MySQL error 1062 (duplicate entry) into ErrDuplicate.
func mapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrDuplicate
	}
	return err
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
