package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/models"
	"llama_lend/internal/modules/postgres/journal/sql"
	"llama_lend/internal/mutation"
	"llama_lend/pkg/db"
)

// fakeTx перехватывает Exec, остальные методы pgx.Tx не нужны.
type fakeTx struct {
	pgx.Tx
	query string
	args  []any
	err   error
}

func (t *fakeTx) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	t.query, t.args = query, args
	return pgconn.NewCommandTag("INSERT 0 1"), t.err
}

type fakeTxManager struct {
	tx   *fakeTx
	runs int
}

func (m *fakeTxManager) RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx pgx.Tx) error) error {
	m.runs++
	return fn(ctx, m.tx)
}

func (m *fakeTxManager) Conn() db.Transaction { return m.tx }

func entry() mutation.Entry {
	return mutation.Entry{
		ID:     uuid.MustParse("6f1c2a6e-3b1d-4a57-9a0e-0c1b8f5a7d11"),
		Kind:   models.MutationRepay,
		Scope:  models.Scope{ChainID: 1, MarketID: "wsteth", UserAddress: "0xAbC"},
		Status: mutation.StatusConfirming,
		TxHash: "0xaction",
		Variables: models.RequestParams{
			ChainID:      1,
			MarketID:     "wsteth",
			UserAddress:  "0xAbC",
			UserBorrowed: decimal.RequireFromString("500.25"),
			Slippage:     decimal.RequireFromString("0.1"),
		},
		At: time.Unix(1700000000, 0).UTC(),
	}
}

func TestAppendInsertsOneRow(t *testing.T) {
	tm := &fakeTxManager{tx: &fakeTx{}}
	j := New(tm)

	require.NoError(t, j.Append(context.Background(), entry()))
	assert.Equal(t, 1, tm.runs)
	assert.Contains(t, tm.tx.query, "INSERT INTO mutation_journal")
	require.Len(t, tm.tx.args, 10)
	assert.Equal(t, "repay", tm.tx.args[1])
	assert.Equal(t, "0xabc", tm.tx.args[4])
	assert.Equal(t, "confirming", tm.tx.args[5])
	assert.Equal(t, "0xaction", tm.tx.args[6])
}

func TestAppendWrapsError(t *testing.T) {
	boom := errors.New("connection reset")
	j := New(&fakeTxManager{tx: &fakeTx{err: boom}})

	err := j.Append(context.Background(), entry())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Journal.Append")
}

func TestEntryFromRow(t *testing.T) {
	e := entry()
	params, err := insertParams(e)
	require.NoError(t, err)

	got, err := entryFromRow(sql.MutationJournal{
		ID:         7,
		MutationID: params.MutationID,
		Kind:       params.Kind,
		ChainID:    params.ChainID,
		MarketID:   params.MarketID,
		UserAddr:   params.UserAddr,
		Status:     params.Status,
		TxHash:     params.TxHash,
		Variables:  params.Variables,
		CreatedAt:  params.CreatedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, mutation.StatusConfirming, got.Status)
	assert.Equal(t, "0xabc", got.Scope.UserAddress)
	assert.True(t, got.Variables.UserBorrowed.Equal(decimal.RequireFromString("500.25")))
	assert.True(t, got.At.Equal(e.At))
}

func TestEntryFromRowRejectsUnknownStatus(t *testing.T) {
	_, err := entryFromRow(sql.MutationJournal{
		ID:        3,
		Status:    "mined",
		Variables: []byte(`{}`),
		CreatedAt: pgtype.Timestamptz{Valid: true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}
