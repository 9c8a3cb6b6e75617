package service

import (
	"fmt"
	"strings"

	"llama_lend/internal/healthmode"
	"llama_lend/internal/models"
	monitor "llama_lend/internal/modules/monitor/service"
	"llama_lend/internal/mutation"
)

const helpText = "*llama lend monitor*\n\n" +
	"/status: watched positions\n" +
	"/history N: last transactions of position N\n" +
	"/quote MARKET COLLATERAL [DEBT] [RANGE]: new loan quote\n" +
	"/borrow MARKET COLLATERAL DEBT [RANGE]: open the loan from the configured wallet"

func stateIcon(s healthmode.State) string {
	switch s {
	case healthmode.CloseToLiquidation:
		return "🟠"
	case healthmode.SoftLiquidation:
		return "🔴"
	case healthmode.HardLiquidation:
		return "💀"
	}
	return "🟢"
}

func short(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func formatStatus(reports []monitor.Report) string {
	if len(reports) == 0 {
		return "📭 No positions to show"
	}
	var b strings.Builder
	b.WriteString("*📊 Positions*\n")
	for i, r := range reports {
		d := r.Details
		fmt.Fprintf(&b, "\n%d. `%s` %s\n", i+1, r.Position.Market.ID, short(r.Position.User))
		if !d.Exists {
			b.WriteString("   no loan\n")
			continue
		}
		bands := d.Bands.Ascending()
		fmt.Fprintf(&b, "   %s %s, health `%s%%`\n", stateIcon(d.Status), d.Status.Label(),
			healthmode.DisplayHealth(d.Health, d.HealthNotFull).StringFixed(2))
		fmt.Fprintf(&b, "   debt `%s %s`, bands `%d..%d`\n",
			d.State.Debt.StringFixed(2), r.Position.Market.Borrowed.Symbol, bands[0], bands[1])
	}
	return b.String()
}

func formatHistory(p models.WatchedPosition, entries []mutation.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*🧾* `%s` %s\n", p.Market.ID, short(p.User))
	if len(entries) == 0 {
		b.WriteString("\nno transactions yet")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "\n`%s` %s: %s", e.At.UTC().Format("01-02 15:04"), e.Kind, e.Status)
		if e.TxHash != "" {
			fmt.Fprintf(&b, " `%s`", short(e.TxHash))
		}
		if e.Error != "" {
			fmt.Fprintf(&b, " (%s)", e.Error)
		}
	}
	return b.String()
}

func formatQuote(m models.Market, p models.RequestParams, q quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*🧮 Quote* `%s`\n", m.ID)
	fmt.Fprintf(&b, "collateral `%s %s`, range `%d`\n", p.UserCollateral.String(), m.Collateral.Symbol, p.Range)
	if q.maxDebt != nil {
		fmt.Fprintf(&b, "max borrowable `%s %s`\n", q.maxDebt.StringFixed(2), m.Borrowed.Symbol)
	}
	if !p.Debt.IsPositive() {
		if q.maxDebt == nil {
			b.WriteString("quote is unavailable right now")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "debt `%s %s`\n", p.Debt.String(), m.Borrowed.Symbol)
	if q.bands != nil {
		bands := q.bands.Ascending()
		fmt.Fprintf(&b, "bands `%d..%d`\n", bands[0], bands[1])
	}
	if q.health != nil {
		tier := healthmode.TierFor(*q.health)
		fmt.Fprintf(&b, "health `%s%%`", q.health.StringFixed(2))
		if tier.Message != "" {
			b.WriteString(", " + tier.Message)
		}
		b.WriteString("\n")
	}
	if q.prices != nil {
		fmt.Fprintf(&b, "liquidation range `%s..%s`\n", q.prices[0].StringFixed(2), q.prices[1].StringFixed(2))
	}
	if q.gas != nil {
		step := "loan"
		if q.gas.Approval {
			step = "approval"
		}
		fmt.Fprintf(&b, "gas `%d` for %s\n", q.gas.Units, step)
	}
	if q.bands == nil && q.health == nil {
		b.WriteString("quote is unavailable right now")
	}
	return b.String()
}
