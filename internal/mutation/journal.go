package mutation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"llama_lend/internal/models"
)

// Entry — одна запись журнала: переход мутации в новый статус.
type Entry struct {
	ID        uuid.UUID
	Kind      models.MutationKind
	Scope     models.Scope
	Status    Status
	TxHash    string
	Error     string
	Variables models.RequestParams
	At        time.Time
}

// Journal сохраняет переходы. Ошибка журнала мутацию не валит.
type Journal interface {
	Append(ctx context.Context, e Entry) error
}

// History — чтение журнала по позиции, новые записи первыми.
type History interface {
	Recent(ctx context.Context, scope models.Scope, limit int32) ([]Entry, error)
}

type MemoryJournal struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryJournal() *MemoryJournal { return &MemoryJournal{} }

func (j *MemoryJournal) Append(_ context.Context, e Entry) error {
	j.mu.Lock()
	j.entries = append(j.entries, e)
	j.mu.Unlock()
	return nil
}

func (j *MemoryJournal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// Statuses — статусы одной мутации по порядку.
func (j *MemoryJournal) Statuses(id uuid.UUID) []Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Status
	for _, e := range j.entries {
		if e.ID == id {
			out = append(out, e.Status)
		}
	}
	return out
}

func (j *MemoryJournal) Recent(_ context.Context, scope models.Scope, limit int32) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Entry
	for i := len(j.entries) - 1; i >= 0 && (limit <= 0 || int32(len(out)) < limit); i-- {
		e := j.entries[i]
		if e.Scope.ChainID == scope.ChainID && e.Scope.MarketID == scope.MarketID &&
			strings.EqualFold(e.Scope.UserAddress, scope.UserAddress) {
			out = append(out, e)
		}
	}
	return out, nil
}

type nopJournal struct{}

func (nopJournal) Append(context.Context, Entry) error { return nil }
