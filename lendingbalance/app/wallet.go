package app

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/env"
)

const SolDecimals = 9

// WalletBalance is what an owner holds outside the reserve: lamports plus the
// liquidity and collateral token accounts.
type WalletBalance struct {
	Owner             solana.PublicKey
	Lamports          uint64
	LiquidityAccount  solana.PublicKey
	Liquidity         uint64
	LiquidityToken    *env.Token
	CollateralAccount solana.PublicKey
	Collateral        uint64
	CollateralToken   *env.Token
}

func (w *WalletBalance) SolUi() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(w.Lamports), -SolDecimals)
}

func (w *WalletBalance) LiquidityUi() decimal.Decimal {
	return w.LiquidityToken.AmountUi(new(big.Int).SetUint64(w.Liquidity))
}

func (w *WalletBalance) CollateralUi() decimal.Decimal {
	return w.CollateralToken.AmountUi(new(big.Int).SetUint64(w.Collateral))
}

// WalletBalance reads owner's sol and associated token balances. A missing
// token account holds nothing.
func (lb *LendingBalance) WalletBalance(owner solana.PublicKey) (*WalletBalance, error) {
	if owner.IsZero() {
		owner = lb.user
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("user is not set, config key or user is required")
	}
	lamports, err := lb.system.Balance(owner)
	if err != nil {
		return nil, err
	}
	w := &WalletBalance{Owner: owner, Lamports: lamports}
	if w.LiquidityAccount, err = lb.splToken.AssociatedAccount(owner, lb.config.LiquidityMint); err != nil {
		return nil, err
	}
	if w.CollateralAccount, err = lb.splToken.AssociatedAccount(owner, lb.config.CollateralMint); err != nil {
		return nil, err
	}
	if err := lb.splToken.RetrieveAccounts([]solana.PublicKey{w.LiquidityAccount, w.CollateralAccount}); err != nil {
		return nil, err
	}
	if account := lb.splToken.GetAccount(w.LiquidityAccount); account != nil {
		w.Liquidity = account.Amount
	}
	if account := lb.splToken.GetAccount(w.CollateralAccount); account != nil {
		w.Collateral = account.Amount
	}
	if w.LiquidityToken, err = lb.token(lb.config.LiquidityMint); err != nil {
		return nil, err
	}
	if w.CollateralToken, err = lb.token(lb.config.CollateralMint); err != nil {
		return nil, err
	}
	return w, nil
}

// token looks mint up in the token list and falls back to the decimals of
// the mint account, which are cached after the first read.
func (lb *LendingBalance) token(mint solana.PublicKey) (*env.Token, error) {
	if token := lb.env.Token(mint); token != nil {
		return token, nil
	}
	keyed := lb.splToken.GetMint(mint)
	if keyed == nil {
		if err := lb.splToken.RetrieveMints([]solana.PublicKey{mint}); err != nil {
			return nil, err
		}
		keyed = lb.splToken.GetMint(mint)
	}
	if keyed == nil {
		return nil, fmt.Errorf("mint(%s): %w", mint, backend.ErrAccountNotFound)
	}
	return lb.env.TokenOrDefault(mint, keyed.Decimals), nil
}
