package checkout

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewRepository(gormDB), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "checkout_attempts"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &Attempt{
		ID:          "7f1c0e5e-3a55-4c1e-9a53-0c6b1b0b2a10",
		OwnerID:     "user-1",
		VehicleID:   "bus-1",
		BookingDate: "2024-06-01",
		Method:      MethodCash,
		SeatCount:   2,
		Amount:      500,
		Currency:    "usd",
		Status:      AttemptStatusPending,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "checkout_attempts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "attempt-1", AttemptStatusSucceeded, "bk-1", "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus_Missing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "checkout_attempts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "ghost", AttemptStatusFailed, "", "boom")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByOwner(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "vehicle_id", "booking_date", "method", "seat_count", "amount", "currency", "external_ref", "status", "failure_reason", "created_at", "updated_at"}).
		AddRow("a-2", "user-1", "bus-1", "2024-06-01", "CARD", 2, 500.0, "usd", "pi_2", "PENDING", "", now, now).
		AddRow("a-1", "user-1", "bus-1", "2024-06-01", "CARD", 2, 500.0, "usd", "pi_1", "ABANDONED", "", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_attempts" WHERE owner_id = $1 ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	attempts, err := repo.ListByOwner(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "pi_2", attempts[0].ExternalRef)
	assert.Equal(t, AttemptStatusAbandoned, attempts[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
