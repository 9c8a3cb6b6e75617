package service

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/shopspring/decimal"
)

const controllerABIJSON = `[
{"inputs":[{"name":"user","type":"address"},{"name":"full","type":"bool"}],"name":"health","outputs":[{"name":"","type":"int256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"user","type":"address"}],"name":"user_state","outputs":[{"name":"","type":"uint256[4]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"user","type":"address"}],"name":"read_user_tick_numbers","outputs":[{"name":"","type":"int256[2]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"user","type":"address"}],"name":"loan_exists","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"collateral","type":"uint256"},{"name":"N","type":"uint256"}],"name":"max_borrowable","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"collateral","type":"uint256"},{"name":"debt","type":"uint256"},{"name":"N","type":"uint256"}],"name":"calculate_debt_n1","outputs":[{"name":"","type":"int256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"user","type":"address"},{"name":"d_collateral","type":"int256"},{"name":"d_debt","type":"int256"},{"name":"full","type":"bool"},{"name":"N","type":"uint256"}],"name":"health_calculator","outputs":[{"name":"","type":"int256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"debt","type":"uint256"},{"name":"N","type":"uint256"}],"name":"min_collateral","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"collateral","type":"uint256"},{"name":"debt","type":"uint256"},{"name":"N","type":"uint256"}],"name":"create_loan","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[{"name":"collateral","type":"uint256"},{"name":"debt","type":"uint256"}],"name":"borrow_more","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[{"name":"_d_debt","type":"uint256"}],"name":"repay","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const ammABIJSON = `[
{"inputs":[],"name":"active_band","outputs":[{"name":"","type":"int256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"n","type":"int256"}],"name":"p_oracle_up","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"n","type":"int256"}],"name":"p_oracle_down","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const erc20ABIJSON = `[
{"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	controllerABI = mustParse(controllerABIJSON)
	ammABI        = mustParse(ammABIJSON)
	erc20ABI      = mustParse(erc20ABIJSON)
)

func mustParse(raw string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return a
}

// healthPrecision: контроллер отдаёт health с 18 знаками, 1e18 == 100%.
const healthPrecision = 18

var hundred = decimal.NewFromInt(100)

func toDecimal(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}

func toPercent(v *big.Int) decimal.Decimal {
	return toDecimal(v, healthPrecision).Mul(hundred)
}

// toWei переводит сумму токена в целые единицы контракта, хвост за decimals отбрасывается.
func toWei(v decimal.Decimal, decimals int32) *big.Int {
	return v.Shift(decimals).BigInt()
}
