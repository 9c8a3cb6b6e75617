package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/borrow"
	"llama_lend/internal/market"
	"llama_lend/internal/market/markettest"
	"llama_lend/internal/models"
	"llama_lend/internal/mutation"
	"llama_lend/internal/notify"
	"llama_lend/internal/params"
	"llama_lend/internal/query"
	"llama_lend/internal/wallet/wallettest"
)

const wallet = "0x00000000000000000000000000000000000000aa"

func borrowFixture(t *testing.T) (*Telegram, *sentSpy, *markettest.Loan, *mutation.MemoryJournal) {
	t.Helper()
	client := query.NewClient()
	t.Cleanup(client.Close)

	loan := markettest.NewLoan()
	meta := models.Market{
		ID: "wsteth", ChainID: 1, Kind: models.MarketMint,
		Collateral: models.Token{Symbol: "wstETH", Decimals: 18},
		Borrowed:   models.Token{Symbol: "crvUSD", Decimals: 18},
	}
	reg := market.NewStaticRegistry(&markettest.Market{Meta: meta, LoanAPI: loan})
	w := wallettest.New(wallet)
	svc := borrow.New(client, reg, w, nil)
	journal := mutation.NewMemoryJournal()
	o := mutation.New(reg, w, client, &notify.Recorder{}, mutation.WithJournal(journal))

	q := &Quoter{
		Flow: svc.CreateLoan,
		Markets: func(id string) (models.Market, bool) {
			return meta, id == meta.ID
		},
		Defaults: params.DefaultDefaults,
		User:     wallet,
		Create:   svc.Mutations(o)[models.MutationCreateLoan],
	}
	spy := &sentSpy{}
	return newTelegram(spy, ownChat, monitorStub{}, journal, q, nil), spy, loan, journal
}

func TestBorrowCommandSubmitsLoan(t *testing.T) {
	tg, spy, loan, journal := borrowFixture(t)
	loan.Approval.Set(true)

	tg.handleUpdate(context.Background(), command(ownChat, "/borrow wsteth 2 1000 12"))

	require.Eventually(t, func() bool { return len(spy.texts()) == 2 }, time.Second, 5*time.Millisecond)
	texts := spy.texts()
	assert.Equal(t, "Submitting loan on `wsteth`: collateral `2 wstETH`, debt `1000 crvUSD`", texts[0])
	assert.Equal(t, "Loan created, tx `0xaction`", texts[1])
	assert.Equal(t, 1, loan.Calls.Count("createLoan"))

	// попытка видна в /history
	entries, err := journal.Recent(context.Background(), models.Scope{ChainID: 1, MarketID: "wsteth", UserAddress: wallet}, 10)
	require.NoError(t, err)
	var succeeded bool
	for _, e := range entries {
		if e.Status == mutation.StatusSucceeded {
			succeeded = true
			assert.Equal(t, "0xaction", e.TxHash)
		}
	}
	assert.True(t, succeeded)
	assert.Eventually(t, func() bool { return !tg.submitting.Load() }, time.Second, 5*time.Millisecond)
}

func TestBorrowCommandReportsFailure(t *testing.T) {
	tg, spy, loan, journal := borrowFixture(t)
	loan.Approval.Set(true)
	loan.Exec.Err = errors.New("execution reverted: Debt too high")

	tg.handleUpdate(context.Background(), command(ownChat, "/borrow wsteth 2 1000"))

	require.Eventually(t, func() bool { return len(spy.texts()) == 2 }, time.Second, 5*time.Millisecond)
	reply := spy.texts()[1]
	assert.Contains(t, reply, "Loan was not created: ")
	assert.Contains(t, reply, "Debt too high")

	entries := journal.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, mutation.StatusFailed, entries[len(entries)-1].Status)
}

func TestBorrowCommandGuards(t *testing.T) {
	tg, spy, loan, _ := borrowFixture(t)
	ctx := context.Background()

	tg.handleUpdate(ctx, command(ownChat, "/borrow wsteth 2"))
	tg.submitting.Store(true)
	tg.handleUpdate(ctx, command(ownChat, "/borrow wsteth 2 1000"))

	require.Len(t, spy.msgs, 2)
	assert.Equal(t, borrowUsage, spy.msgs[0].Text)
	assert.Equal(t, "A loan transaction is already in progress", spy.msgs[1].Text)
	assert.Empty(t, loan.Calls.List())
}

func TestBorrowDisabledWithoutSubmitter(t *testing.T) {
	tg, spy, _ := quoteFixture(t)
	tg.handleUpdate(context.Background(), command(ownChat, "/borrow wsteth 2 1000"))

	require.Len(t, spy.msgs, 1)
	assert.Equal(t, "Borrowing is disabled", spy.msgs[0].Text)
}
