// Package journal хранит переходы мутаций в таблице mutation_journal.
package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"llama_lend/internal/models"
	"llama_lend/internal/modules/postgres/journal/sql"
	"llama_lend/internal/mutation"
	"llama_lend/pkg/db"
)

// Journal implement db store
type Journal struct {
	db  db.TxManager
	sql *sql.Queries
}

var _ mutation.Journal = (*Journal)(nil)

// New instance
func New(tm db.TxManager) *Journal {
	return &Journal{
		db:  tm,
		sql: sql.New(),
	}
}

func (j *Journal) Append(ctx context.Context, e mutation.Entry) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Journal.Append: %w", err)
		}
	}()

	params, err := insertParams(e)
	if err != nil {
		return err
	}
	return j.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return j.sql.Insert(ctxTx, tx, params)
	})
}

// History — все переходы одной мутации по порядку.
func (j *Journal) History(ctx context.Context, id uuid.UUID) (out []mutation.Entry, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Journal.History: %w", err)
		}
	}()

	rows, err := j.sql.ListByMutation(ctx, j.db.Conn(), id)
	if err != nil {
		return nil, err
	}
	return entries(rows)
}

// Recent — последние limit переходов по (сеть, рынок, пользователь), новые первыми.
func (j *Journal) Recent(ctx context.Context, scope models.Scope, limit int32) (out []mutation.Entry, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Journal.Recent: %w", err)
		}
	}()

	rows, err := j.sql.ListByScope(ctx, j.db.Conn(), &sql.ListByScopeParams{
		ChainID:  scope.ChainID,
		MarketID: scope.MarketID,
		UserAddr: strings.ToLower(scope.UserAddress),
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	return entries(rows)
}

func insertParams(e mutation.Entry) (*sql.InsertParams, error) {
	data, err := sonic.Marshal(e.Variables)
	if err != nil {
		return nil, fmt.Errorf("marshal variables: %w", err)
	}
	return &sql.InsertParams{
		MutationID: e.ID,
		Kind:       string(e.Kind),
		ChainID:    e.Scope.ChainID,
		MarketID:   e.Scope.MarketID,
		UserAddr:   strings.ToLower(e.Scope.UserAddress),
		Status:     e.Status.String(),
		TxHash:     e.TxHash,
		Error:      e.Error,
		Variables:  data,
		CreatedAt:  pgtype.Timestamptz{Time: e.At, Valid: true},
	}, nil
}

func entries(rows []sql.MutationJournal) ([]mutation.Entry, error) {
	out := make([]mutation.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := entryFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func entryFromRow(r sql.MutationJournal) (mutation.Entry, error) {
	status, ok := mutation.ParseStatus(r.Status)
	if !ok {
		return mutation.Entry{}, fmt.Errorf("row %d: unknown status %q", r.ID, r.Status)
	}
	var vars models.RequestParams
	if err := sonic.Unmarshal(r.Variables, &vars); err != nil {
		return mutation.Entry{}, fmt.Errorf("row %d: unmarshal variables: %w", r.ID, err)
	}
	return mutation.Entry{
		ID:   r.MutationID,
		Kind: models.MutationKind(r.Kind),
		Scope: models.Scope{
			ChainID:     r.ChainID,
			MarketID:    r.MarketID,
			UserAddress: r.UserAddr,
		},
		Status:    status,
		TxHash:    r.TxHash,
		Error:     r.Error,
		Variables: vars,
		At:        r.CreatedAt.Time,
	}, nil
}
