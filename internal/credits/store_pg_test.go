package credits

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreDebitSucceedsWhenBalanceCovers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE user_credits").
		WithArgs("user-1", 20, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "used", "updated_at"}).AddRow(480, 20, now))

	a, debited, err := store.Debit(context.Background(), "user-1", 20)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if !debited {
		t.Fatalf("expected debit to succeed")
	}
	if a.Balance != 480 || a.Used != 20 {
		t.Fatalf("account = %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreDebitShortBalanceLeavesRowUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	now := time.Now().UTC()

	// Conditional update matches no row, then the current state is read back.
	mock.ExpectQuery("UPDATE user_credits").
		WithArgs("user-1", 10, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "used", "updated_at"}))
	mock.ExpectQuery("SELECT balance, used, updated_at FROM user_credits").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance", "used", "updated_at"}).AddRow(5, 495, now))

	a, debited, err := store.Debit(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if debited {
		t.Fatalf("expected debit rejected")
	}
	if a.Balance != 5 {
		t.Fatalf("balance = %d, want 5", a.Balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreGetInitializesMissingAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT balance, used, updated_at FROM user_credits").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance", "used", "updated_at"}))
	mock.ExpectQuery("INSERT INTO user_credits").
		WithArgs("user-1", StartingBalance, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "used", "updated_at"}).AddRow(StartingBalance, 0, now))

	a, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a.Balance != StartingBalance || a.Used != 0 {
		t.Fatalf("account = %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
