package healthmode

import "fmt"

// FormType — форма, из которой меняется позиция.
type FormType string

const (
	FormCreateLoan         FormType = "create-loan"
	FormBorrowMore         FormType = "borrow-more"
	FormCollateralDecrease FormType = "collateral-decrease"
)

// Mode — что показать пользователю рядом с health.
type Mode struct {
	State        State
	Health       string
	Message      string
	WarningTitle string
}

// ModeInput — данные формы для сообщения.
type ModeInput struct {
	Form            FormType
	Amount          string
	BorrowedSymbol  string
	Health          string
	FirstBand       int
	OraclePriceBand *int
	// Current — текущее состояние позиции, Next — после действия
	Current State
	Next    State
}

// ModeFor строит сообщение по форме. Предупреждение показывается, только если
// новые бэнды близки к оракулу.
func ModeFor(in ModeInput) Mode {
	mode := Mode{State: Healthy, Health: in.Health}
	if !IsCloseToLiquidation(in.FirstBand, nil, in.OraclePriceBand) {
		return mode
	}

	var msg string
	if in.Next == CloseToLiquidation {
		if in.Current == in.Next || in.Current == SoftLiquidation {
			msg = "You are still close to soft liquidation."
		} else {
			switch in.Form {
			case FormCollateralDecrease:
				msg = fmt.Sprintf("Removing %s collateral, will put you close to soft liquidation.", in.Amount)
			case FormCreateLoan:
				msg = fmt.Sprintf("Borrowing %s %s will put you close to soft liquidation.", in.Amount, in.BorrowedSymbol)
			default:
				msg = fmt.Sprintf("Increasing your borrowed amount by %s %s will put you close to soft liquidation.", in.Amount, in.BorrowedSymbol)
			}
		}
	}
	return Mode{
		State:        CloseToLiquidation,
		Health:       in.Health,
		Message:      msg,
		WarningTitle: "Close to liquidation range!",
	}
}
