package markettest

import (
	"context"

	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
)

// User — фейк UserAPI.
type User struct {
	Calls         *Calls
	Exists        bool
	Health        decimal.Decimal
	HealthNotFull decimal.Decimal
	Bands         models.Bands
	State         models.UserState
	OracleBand    int
	Err           error
}

func NewUser() *User { return &User{Calls: &Calls{}} }

func (u *User) LoanExists(_ context.Context, user string) (bool, error) {
	u.Calls.add("loanExists", user)
	return u.Exists, u.Err
}

func (u *User) UserHealth(_ context.Context, user string, full bool) (decimal.Decimal, error) {
	u.Calls.add("userHealth", user, full)
	if full {
		return u.Health, u.Err
	}
	return u.HealthNotFull, u.Err
}

func (u *User) UserBands(_ context.Context, user string) (models.Bands, error) {
	u.Calls.add("userBands", user)
	return u.Bands, u.Err
}

func (u *User) UserState(_ context.Context, user string) (models.UserState, error) {
	u.Calls.add("userState", user)
	return u.State, u.Err
}

func (u *User) OraclePriceBand(context.Context) (int, error) {
	u.Calls.add("oraclePriceBand")
	return u.OracleBand, u.Err
}

// Vault — фейк VaultAPI.
type Vault struct {
	Calls    *Calls
	Approval *Approval
	Exec     Exec
}

func NewVault() *Vault { return &Vault{Calls: &Calls{}, Approval: &Approval{}} }

func (v *Vault) StakeIsApproved(_ context.Context, amount decimal.Decimal) (bool, error) {
	v.Calls.add("vault.stakeIsApproved", amount)
	return v.Approval.Get(), nil
}

func (v *Vault) StakeApprove(_ context.Context, amount decimal.Decimal) ([]string, error) {
	v.Calls.add("vault.stakeApprove", amount)
	return v.Approval.approve()
}

func (v *Vault) Stake(_ context.Context, amount decimal.Decimal) (string, error) {
	v.Calls.add("vault.stake", amount)
	return v.Exec.result()
}
