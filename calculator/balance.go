package calculator

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	Wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

var (
	ErrDivisionByZero     = errors.New("collateral mint supply is zero")
	ErrLiquidityUnderflow = errors.New("platform fees exceed available plus borrowed liquidity")
	ErrMissingOperand     = errors.New("operand is missing")
)

// ArithmeticError is returned instead of a balance when the operands can not
// produce one. Retrying with the same operands fails the same way.
type ArithmeticError struct {
	Op  string
	Err error
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *ArithmeticError) Unwrap() error {
	return e.Err
}

type Inputs struct {
	UserCollateralAmount uint64
	CollateralMintSupply uint64
	AvailableAmount      uint64
	BorrowedAmountWads   *big.Int
	PlatformAmountWads   *big.Int
}

type Result struct {
	NormalizedBorrowed     *big.Int
	NormalizedPlatformFees *big.Int
	TotalLiquidity         *big.Int
	UserBalance            *big.Int
}

// UserBalance converts a collateral token amount into the reserve liquidity it
// redeems for, in liquidity base units.
func UserBalance(in *Inputs) (*Result, error) {
	if in == nil || in.BorrowedAmountWads == nil || in.PlatformAmountWads == nil {
		return nil, &ArithmeticError{Op: "user balance", Err: ErrMissingOperand}
	}
	normalizedBorrowed := new(big.Int).Quo(in.BorrowedAmountWads, Wad)
	normalizedPlatformFees := new(big.Int).Quo(in.PlatformAmountWads, Wad)
	available := new(big.Int).SetUint64(in.AvailableAmount)
	collateral := new(big.Int).SetUint64(in.UserCollateralAmount)
	supply := new(big.Int).SetUint64(in.CollateralMintSupply)

	if supply.Sign() == 0 {
		return nil, &ArithmeticError{Op: "user balance", Err: ErrDivisionByZero}
	}
	totalLiquidity, err := TotalLiquidity(available, normalizedBorrowed, normalizedPlatformFees)
	if err != nil {
		return nil, err
	}
	return &Result{
		NormalizedBorrowed:     normalizedBorrowed,
		NormalizedPlatformFees: normalizedPlatformFees,
		TotalLiquidity:         totalLiquidity,
		UserBalance:            share(collateral, totalLiquidity, supply),
	}, nil
}

// TotalLiquidity is available + borrowed - fees, all in base units.
func TotalLiquidity(available, borrowed, fees *big.Int) (*big.Int, error) {
	if available == nil || borrowed == nil || fees == nil {
		return nil, &ArithmeticError{Op: "total liquidity", Err: ErrMissingOperand}
	}
	gross := new(big.Int).Add(available, borrowed)
	if fees.Cmp(gross) > 0 {
		return nil, &ArithmeticError{
			Op:  fmt.Sprintf("total liquidity %s + %s - %s", available, borrowed, fees),
			Err: ErrLiquidityUnderflow,
		}
	}
	return gross.Sub(gross, fees), nil
}

// Calculate returns collateral * (available + borrowed - fees) / supply. The
// multiplication happens before the truncating division.
func Calculate(available, borrowed, collateral, fees, supply *big.Int) (*big.Int, error) {
	if supply == nil || collateral == nil {
		return nil, &ArithmeticError{Op: "user balance", Err: ErrMissingOperand}
	}
	if supply.Sign() == 0 {
		return nil, &ArithmeticError{Op: "user balance", Err: ErrDivisionByZero}
	}
	totalLiquidity, err := TotalLiquidity(available, borrowed, fees)
	if err != nil {
		return nil, err
	}
	return share(collateral, totalLiquidity, supply), nil
}

// share is collateral * totalLiquidity / supply. supply must be non-zero.
func share(collateral, totalLiquidity, supply *big.Int) *big.Int {
	balance := new(big.Int).Mul(collateral, totalLiquidity)
	return balance.Quo(balance, supply)
}
