package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campuspay-ledger/internal/domain/ledger"
	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(now time.Time) *ledger.Record {
	return &ledger.Record{
		TransactionID: uuid.New(),
		CardID:        "CARD001",
		Kind:          shared.RecordKindDebitSuccess,
		Amount:        150,
		CorrelationID: "corr-1",
		CreatedAt:     now,
	}
}

func TestLedgerRepository_Append(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}
	record := testRecord(time.Now())

	query := `
		INSERT INTO transactions \(transaction_id, card_id, kind, amount, correlation_id, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
		RETURNING id
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(record.TransactionID, record.CardID, record.Kind, record.Amount, record.CorrelationID, record.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		err := repo.Append(ctx, record)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), record.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(record.TransactionID, record.CardID, record.Kind, record.Amount, record.CorrelationID, record.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Append(ctx, record)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to append transaction record")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_GetByTransactionID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}
	now := time.Now()
	expected := testRecord(now)
	expected.ID = 7

	query := `
		SELECT id, transaction_id, card_id, kind, amount, correlation_id, created_at
		FROM transactions
		WHERE transaction_id = \$1
	`
	rows := pgxmock.NewRows([]string{"id", "transaction_id", "card_id", "kind", "amount", "correlation_id", "created_at"}).
		AddRow(expected.ID, expected.TransactionID, expected.CardID, expected.Kind, expected.Amount, expected.CorrelationID, expected.CreatedAt)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.TransactionID).WillReturnRows(rows)

		record, err := repo.GetByTransactionID(ctx, expected.TransactionID)
		assert.NoError(t, err)
		assert.Equal(t, expected, record)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.TransactionID).WillReturnError(pgx.ErrNoRows)

		record, err := repo.GetByTransactionID(ctx, expected.TransactionID)
		assert.Error(t, err)
		assert.Nil(t, record)
		var notFoundErr ledger.ErrRecordNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, expected.TransactionID, notFoundErr.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_RecentByCardID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}
	now := time.Now()
	cardID := "CARD001"

	newer := testRecord(now)
	newer.ID = 9
	older := testRecord(now.Add(-time.Minute))
	older.ID = 3
	older.Kind = shared.RecordKindCredit

	query := `
		SELECT id, transaction_id, card_id, kind, amount, correlation_id, created_at
		FROM transactions
		WHERE card_id = \$1
		ORDER BY id DESC
		LIMIT \$2
	`

	t.Run("returns newest first", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "transaction_id", "card_id", "kind", "amount", "correlation_id", "created_at"}).
			AddRow(newer.ID, newer.TransactionID, newer.CardID, newer.Kind, newer.Amount, newer.CorrelationID, newer.CreatedAt).
			AddRow(older.ID, older.TransactionID, older.CardID, older.Kind, older.Amount, older.CorrelationID, older.CreatedAt)

		mock.ExpectQuery(query).WithArgs(cardID, 5).WillReturnRows(rows)

		records, err := repo.RecentByCardID(ctx, cardID, 5)
		assert.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, newer, records[0])
		assert.Equal(t, older, records[1])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty history", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "transaction_id", "card_id", "kind", "amount", "correlation_id", "created_at"})
		mock.ExpectQuery(query).WithArgs(cardID, 5).WillReturnRows(rows)

		records, err := repo.RecentByCardID(ctx, cardID, 5)
		assert.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs(cardID, 5).WillReturnError(dbErr)

		records, err := repo.RecentByCardID(ctx, cardID, 5)
		assert.Error(t, err)
		assert.Nil(t, records)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_CountByCardID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}
	cardID := "CARD001"

	query := `
		SELECT COUNT\(\*\)
		FROM transactions
		WHERE card_id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(cardID).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))

		count, err := repo.CountByCardID(ctx, cardID)
		assert.NoError(t, err)
		assert.Equal(t, int64(12), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs(cardID).WillReturnError(dbErr)

		count, err := repo.CountByCardID(ctx, cardID)
		assert.Error(t, err)
		assert.Zero(t, count)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
