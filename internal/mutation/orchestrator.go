// Package mutation — машина состояний пользовательской транзакции:
// проверки, approve, запись, ожидание квитанции, инвалидация кэша и уведомление.
package mutation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"llama_lend/internal/errs"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/notify"
	"llama_lend/internal/wallet"
)

// FailureMessage — общий текст уведомления об ошибке. Подробности показываются в форме.
const FailureMessage = "Transaction failed"

// Action — подготовленные вызовы одной транзакции для выбранного варианта рынка.
type Action struct {
	Variant market.Variant
	// IsApproved == nil: approve для операции не нужен
	IsApproved func(ctx context.Context) (bool, error)
	Approve    func(ctx context.Context) ([]string, error)
	Execute    func(ctx context.Context) (string, error)
}

// Definition описывает вид мутации.
type Definition struct {
	Kind     models.MutationKind
	Validate func(p models.RequestParams) error
	// Prepare не ходит в сеть: выбирает вариант и проверяет обязательные идентификаторы
	Prepare func(h market.Handle, p models.RequestParams) (Action, error)
	Success func(p models.RequestParams) string
}

// Invalidator — кэш производных значений.
type Invalidator interface {
	InvalidateScope(s models.Scope) int
}

type Orchestrator struct {
	registry market.Registry
	wallet   wallet.Provider
	cache    Invalidator
	notifier notify.Notifier
	journal  Journal
	tracer   opentracing.Tracer
	log      *zap.Logger
	metrics  *Metrics
	now      func() time.Time
}

type Option func(*Orchestrator)

func WithJournal(j Journal) Option { return func(o *Orchestrator) { o.journal = j } }

func WithTracer(t opentracing.Tracer) Option { return func(o *Orchestrator) { o.tracer = t } }

func WithLogger(l *zap.Logger) Option { return func(o *Orchestrator) { o.log = l } }

func WithMetrics(m *Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }

func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

func New(registry market.Registry, w wallet.Provider, cache Invalidator, n notify.Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		wallet:   w,
		cache:    cache,
		notifier: n,
		journal:  nopJournal{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = opentracing.GlobalTracer()
	}
	return o
}

// Result — итог отправки.
type Result struct {
	ID            uuid.UUID
	Kind          models.MutationKind
	Variant       market.Variant
	ApproveHashes []string
	TxHash        string
	Receipt       wallet.Receipt
	// Rejected: пользователь отменил подпись, мутация тихо вернулась в idle
	Rejected bool
}

// Snapshot — состояние мутации для формы.
type Snapshot struct {
	Status Status
	Err    error
	Last   *Result
}

func (s Snapshot) IsPending() bool { return s.Status.Pending() }

// Mutation — один вид транзакции. Одновременно в работе должна быть одна отправка
// на (рынок, пользователь, вид): блокировать повторную отправку обязан вызывающий.
type Mutation struct {
	o   *Orchestrator
	def Definition

	mu     sync.Mutex
	status Status
	err    error
	last   *Result
}

func (o *Orchestrator) Mutation(def Definition) *Mutation {
	if def.Prepare == nil {
		panic("mutation: definition requires Prepare")
	}
	return &Mutation{o: o, def: def}
}

func (m *Mutation) Kind() models.MutationKind { return m.def.Kind }

func (m *Mutation) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Status: m.status, Err: m.err, Last: m.last}
}

// Reset очищает локальное состояние. Отправленную транзакцию это не отменяет.
func (m *Mutation) Reset() {
	m.mu.Lock()
	m.status, m.err = StatusIdle, nil
	m.mu.Unlock()
}

type run struct {
	id      uuid.UUID
	started time.Time
	params  models.RequestParams
	span    opentracing.Span
	res     *Result
}

// Submit проводит транзакцию через все шаги. Ошибка возвращается и остаётся в State().Err;
// отмена подписи пользователем ошибкой не считается.
func (m *Mutation) Submit(ctx context.Context, p models.RequestParams) (*Result, error) {
	o := m.o
	r := &run{id: uuid.New(), started: o.now()}
	r.res = &Result{ID: r.id, Kind: m.def.Kind}

	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, o.tracer, "mutation."+string(m.def.Kind))
	defer span.Finish()
	span.SetTag("mutation.id", r.id.String())
	r.span = span

	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()

	action, err := m.precondition(p)
	if err != nil {
		r.params = p
		return nil, m.fail(ctx, r, err)
	}
	p.UserAddress = o.wallet.Address()
	r.params = p
	r.res.Variant = action.Variant
	span.SetTag("market.id", p.MarketID)
	span.SetTag("market.variant", action.Variant.String())
	o.log.Info("mutation.start",
		zap.String("id", r.id.String()),
		zap.String("kind", string(m.def.Kind)),
		zap.Stringer("scope", p.Scope()),
		zap.Stringer("variant", action.Variant),
	)

	m.transition(ctx, r, StatusValidating, "", nil)
	if err := m.validate(ctx, p); err != nil {
		return nil, m.fail(ctx, r, err)
	}

	if action.IsApproved != nil {
		if err := m.approve(ctx, r, action); err != nil {
			if errs.IsUserRejection(err) {
				return m.rejected(ctx, r), nil
			}
			return nil, m.fail(ctx, r, err)
		}
	}

	m.transition(ctx, r, StatusExecuting, "", nil)
	hash, err := m.execute(ctx, action)
	if err != nil {
		if errs.IsUserRejection(err) {
			return m.rejected(ctx, r), nil
		}
		return nil, m.fail(ctx, r, err)
	}
	r.res.TxHash = hash
	span.SetTag("tx.hash", hash)

	m.transition(ctx, r, StatusConfirming, hash, nil)
	rcpt, err := m.confirm(ctx, hash)
	if err != nil {
		if errs.IsUserRejection(err) {
			return m.rejected(ctx, r), nil
		}
		return nil, m.fail(ctx, r, err)
	}
	r.res.Receipt = rcpt

	return m.succeed(ctx, r), nil
}

// precondition — кошелёк подключён, рынок найден, идентификаторы на месте. Без сети.
func (m *Mutation) precondition(p models.RequestParams) (Action, error) {
	const op = "Mutation.Precondition"
	if m.o.wallet == nil || m.o.wallet.Address() == "" {
		return Action{}, errs.Configuration(op, "wallet is not connected")
	}
	h, err := m.o.registry.Market(p.ChainID, p.MarketID)
	if err != nil {
		return Action{}, err
	}
	p.UserAddress = m.o.wallet.Address()
	action, err := m.def.Prepare(h, p)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnknown {
			err = errs.Configuration(op, "%s: %v", m.def.Kind, err)
		}
		return Action{}, err
	}
	if action.Execute == nil {
		return Action{}, errs.Configuration(op, "%s has no execute call", m.def.Kind)
	}
	if action.IsApproved != nil && action.Approve == nil {
		return Action{}, errs.Configuration(op, "%s checks approval but cannot approve", m.def.Kind)
	}
	return action, nil
}

func (m *Mutation) validate(ctx context.Context, p models.RequestParams) error {
	if m.def.Validate == nil {
		return nil
	}
	span, _ := m.o.step(ctx, "validate")
	defer span.Finish()
	err := m.def.Validate(p)
	if err != nil && errs.KindOf(err) != errs.KindValidation {
		err = errs.Validation("Mutation.Validate", err)
	}
	return err
}

// approve: execute возможен только после того, как последнее чтение статуса вернуло true.
func (m *Mutation) approve(ctx context.Context, r *run, a Action) error {
	const op = "Mutation.Approve"
	span, ctx := m.o.step(ctx, "approve")
	defer span.Finish()

	approved, err := a.IsApproved(ctx)
	if err != nil {
		return approvalErr(op, err)
	}
	if approved {
		return nil
	}

	m.transition(ctx, r, StatusApproving, "", nil)
	hashes, err := a.Approve(ctx)
	if err != nil {
		return approvalErr(op, err)
	}
	r.res.ApproveHashes = hashes
	for _, h := range hashes {
		rcpt, err := m.o.wallet.WaitForTransactionReceipt(ctx, h)
		if err != nil {
			return approvalErr(op, err)
		}
		if rcpt.Error != "" {
			return approvalErr(op, errors.New(rcpt.Error))
		}
		if rcpt.Reverted() {
			return errs.Approval(op, errors.Errorf("approve transaction %s reverted", h))
		}
	}

	approved, err = a.IsApproved(ctx)
	if err != nil {
		return approvalErr(op, err)
	}
	if !approved {
		return errs.Approval(op, errors.New("allowance is still insufficient after approve"))
	}
	return nil
}

func (m *Mutation) execute(ctx context.Context, a Action) (string, error) {
	const op = "Mutation.Execute"
	span, ctx := m.o.step(ctx, "execute")
	defer span.Finish()

	hash, err := a.Execute(ctx)
	if err != nil {
		switch {
		case errs.IsUserRejection(err):
			return "", errs.UserRejected(op, err)
		case errs.KindOf(err) == errs.KindConfiguration:
			return "", err
		}
		return "", errs.Execution(op, err)
	}
	if hash == "" {
		return "", errs.Execution(op, errors.New("no transaction hash returned"))
	}
	return hash, nil
}

func (m *Mutation) confirm(ctx context.Context, hash string) (wallet.Receipt, error) {
	const op = "Mutation.Confirm"
	span, ctx := m.o.step(ctx, "confirm")
	defer span.Finish()

	rcpt, err := m.o.wallet.WaitForTransactionReceipt(ctx, hash)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnknown {
			err = errs.Network(op, err)
		}
		return rcpt, err
	}
	if rcpt.Error != "" {
		if errs.IsUserRejectionMessage(rcpt.Error) {
			return rcpt, errs.UserRejected(op, errors.New(rcpt.Error))
		}
		return rcpt, errs.Receipt(op, errors.New(rcpt.Error))
	}
	if rcpt.Reverted() {
		return rcpt, errs.Execution(op, errors.Errorf("transaction %s reverted", hash))
	}
	return rcpt, nil
}

func approvalErr(op string, err error) error {
	switch {
	case errs.IsUserRejection(err):
		return errs.UserRejected(op, err)
	case errs.KindOf(err) == errs.KindConfiguration:
		return err
	}
	return errs.Approval(op, err)
}

func (m *Mutation) succeed(ctx context.Context, r *run) *Result {
	o := m.o
	m.transition(ctx, r, StatusSucceeded, r.res.TxHash, nil)

	invalidated := 0
	if o.cache != nil {
		invalidated = o.cache.InvalidateScope(r.params.Scope())
	}
	msg := "Transaction complete"
	if m.def.Success != nil {
		msg = m.def.Success(r.params)
	}
	o.notify(msg, notify.LevelSuccess)
	o.metrics.observe(string(m.def.Kind), "success", o.now().Sub(r.started).Seconds())
	o.log.Info("mutation.success",
		zap.String("id", r.id.String()),
		zap.String("kind", string(m.def.Kind)),
		zap.String("tx", r.res.TxHash),
		zap.Int("invalidated", invalidated),
	)

	m.mu.Lock()
	m.status, m.err, m.last = StatusIdle, nil, r.res
	m.mu.Unlock()
	return r.res
}

func (m *Mutation) rejected(ctx context.Context, r *run) *Result {
	o := m.o
	r.res.Rejected = true
	r.span.SetTag("mutation.rejected", true)
	o.metrics.observe(string(m.def.Kind), "rejected", o.now().Sub(r.started).Seconds())
	o.log.Info("mutation.rejected", zap.String("id", r.id.String()), zap.String("kind", string(m.def.Kind)))
	m.transition(ctx, r, StatusIdle, r.res.TxHash, nil)
	return r.res
}

func (m *Mutation) fail(ctx context.Context, r *run, err error) error {
	o := m.o
	ext.Error.Set(r.span, true)
	r.span.SetTag("error.kind", errs.KindOf(err).String())
	m.transition(ctx, r, StatusFailed, r.res.TxHash, err)

	o.notify(FailureMessage, notify.LevelError)
	o.metrics.observe(string(m.def.Kind), errs.KindOf(err).String(), o.now().Sub(r.started).Seconds())
	o.log.Error("mutation.error",
		zap.String("id", r.id.String()),
		zap.String("kind", string(m.def.Kind)),
		zap.Stringer("error_kind", errs.KindOf(err)),
		zap.Error(err),
	)
	return err
}

func (m *Mutation) transition(ctx context.Context, r *run, s Status, hash string, err error) {
	m.mu.Lock()
	m.status = s
	if err != nil {
		m.err = err
	}
	m.mu.Unlock()

	m.o.log.Debug("mutation.transition",
		zap.String("id", r.id.String()),
		zap.Stringer("status", s),
	)
	e := Entry{
		ID:        r.id,
		Kind:      m.def.Kind,
		Scope:     r.params.Scope(),
		Status:    s,
		TxHash:    hash,
		Variables: r.params,
		At:        m.o.now(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	if jerr := m.o.journal.Append(context.WithoutCancel(ctx), e); jerr != nil {
		m.o.log.Warn("mutation journal append failed", zap.String("id", r.id.String()), zap.Error(jerr))
	}
}

func (o *Orchestrator) step(ctx context.Context, name string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContextWithTracer(ctx, o.tracer, name)
}

func (o *Orchestrator) notify(msg string, level notify.Level) {
	if o.notifier != nil {
		o.notifier.Notify(msg, level)
	}
}
