package app

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/egaotan/solana-lending-balance/balance"
	"github.com/egaotan/solana-lending-balance/env"
	"github.com/egaotan/solana-lending-balance/store"
)

type Token struct {
	Key    string `json:"key"`
	Symbol string `json:"symbol"`
}

type Balance struct {
	User             string `json:"user"`
	Reserve          string `json:"reserve"`
	CollateralMint   string `json:"collateral_mint"`
	CollateralToken  string `json:"collateral_token"`
	CollateralAmount uint64 `json:"collateral_amount"`
	CollateralSupply uint64 `json:"collateral_supply"`
	Token            *Token `json:"token"`
	TotalLiquidity   string `json:"total_liquidity"`
	Balance          string `json:"balance"`
	BalanceUi        string `json:"balance_ui"`
	Slot             uint64 `json:"slot"`
}

type BalanceSnapshot struct {
	Time             string `json:"time"`
	Reserve          string `json:"reserve"`
	CollateralAmount uint64 `json:"collateral_amount"`
	CollateralSupply uint64 `json:"collateral_supply"`
	TotalLiquidity   string `json:"total_liquidity"`
	Balance          string `json:"balance"`
	BalanceUi        string `json:"balance_ui,omitempty"`
	Slot             uint64 `json:"slot"`
}

func buildBalance(report *balance.Report) *Balance {
	return &Balance{
		User:             report.User.String(),
		Reserve:          report.Reserve.String(),
		CollateralMint:   report.CollateralMint.String(),
		CollateralToken:  report.CollateralToken.String(),
		CollateralAmount: report.CollateralAmount,
		CollateralSupply: report.CollateralSupply,
		Token: &Token{
			Key:    report.LiquidityMint.String(),
			Symbol: report.Token.Symbol,
		},
		TotalLiquidity: report.Result.TotalLiquidity.String(),
		Balance:        report.Balance().String(),
		BalanceUi:      report.BalanceUi().String(),
		Slot:           report.Slot,
	}
}

// buildBalanceSnapshots formats stored balances with token when it is known.
func buildBalanceSnapshots(snapshots []*store.BalanceSnapshot, token *env.Token) []*BalanceSnapshot {
	items := make([]*BalanceSnapshot, 0, len(snapshots))
	for _, snapshot := range snapshots {
		item := &BalanceSnapshot{
			Time:             snapshot.CreatedAt.Format(time.RFC3339),
			Reserve:          snapshot.Reserve,
			CollateralAmount: snapshot.CollateralAmount,
			CollateralSupply: snapshot.CollateralSupply,
			TotalLiquidity:   snapshot.TotalLiquidity,
			Balance:          snapshot.Balance,
			Slot:             snapshot.Slot,
		}
		if token != nil {
			if amount, err := decimal.NewFromString(snapshot.Balance); err == nil {
				item.BalanceUi = amount.Shift(-int32(token.Decimal)).String()
			}
		}
		items = append(items, item)
	}
	return items
}
