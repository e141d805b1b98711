package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"QuenoClient/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (BetRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewBetRepository(db), mock
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{-3, 50, 1, 50},
		{2, 101, 2, 20},
		{5, 100, 5, 100},
	}
	for _, tc := range cases {
		p, s := NormalizePage(tc.page, tc.size)
		assert.Equal(t, tc.wantPage, p)
		assert.Equal(t, tc.wantSize, s)
	}
}

func TestListByUserOrdersAndPages(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bet_records" WHERE user_wallet = $1`)).
		WithArgs("0xabc").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bet_records" WHERE user_wallet = $1 ORDER BY resolved_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs("0xabc", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bet_id", "user_wallet", "resolved_at"}).
			AddRow(2, "bet-2", "0xabc", now).
			AddRow(1, "bet-1", "0xabc", now.Add(-time.Minute)))

	list, total, err := repo.ListByUser(context.Background(), "0xabc", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, list, 2)
	assert.Equal(t, "bet-2", list[0].BetID)
	assert.Equal(t, "bet-1", list[1].BetID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserFirstPageDefaults(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bet_records" WHERE user_wallet = $1`)).
		WithArgs("0xabc").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bet_records" WHERE user_wallet = $1 ORDER BY resolved_at DESC LIMIT $2`)).
		WithArgs("0xabc", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, total, err := repo.ListByUser(context.Background(), "0xabc", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByBetID(t *testing.T) {
	repo, mock := newMockRepo(t)
	query := regexp.QuoteMeta(`SELECT * FROM "bet_records" WHERE bet_id = $1 ORDER BY "bet_records"."id" LIMIT $2`)

	mock.ExpectQuery(query).
		WithArgs("bet-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bet_id", "user_wallet", "currency"}).
			AddRow(7, "bet-1", "0xabc", "ETH"))
	rec, err := repo.GetByBetID(context.Background(), "bet-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rec.ID)
	assert.Equal(t, "ETH", rec.Currency)

	mock.ExpectQuery(query).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.GetByBetID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBetRecord(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "bet_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	rec := &model.BetRecord{
		BetID:       "bet-42",
		UserWallet:  "0xabc",
		Amount:      decimal.RequireFromString("0.5"),
		Currency:    "ETH",
		SubmittedAt: time.Now(),
		ResolvedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateBetRecord(context.Background(), rec))
	assert.Equal(t, uint64(42), rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
