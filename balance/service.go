package balance

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/calculator"
	"github.com/egaotan/solana-lending-balance/env"
	"github.com/egaotan/solana-lending-balance/lending"
	"github.com/egaotan/solana-lending-balance/spltoken"
)

type Report struct {
	User             solana.PublicKey
	Reserve          solana.PublicKey
	CollateralMint   solana.PublicKey
	LiquidityMint    solana.PublicKey
	CollateralToken  solana.PublicKey
	CollateralAmount uint64
	CollateralSupply uint64
	Slot             uint64
	Token            *env.Token
	Result           *calculator.Result
}

func (r *Report) Balance() *big.Int {
	return r.Result.UserBalance
}

func (r *Report) BalanceUi() decimal.Decimal {
	return r.Token.AmountUi(r.Result.UserBalance)
}

func (r *Report) TotalLiquidityUi() decimal.Decimal {
	return r.Token.AmountUi(r.Result.TotalLiquidity)
}

type Service struct {
	ctx            context.Context
	log            *log.Logger
	backend        *backend.Backend
	spltoken       *spltoken.Program
	lending        *lending.Program
	env            *env.Env
	reserve        solana.PublicKey
	collateralMint solana.PublicKey
}

func NewService(ctx context.Context, be *backend.Backend, token *spltoken.Program, lend *lending.Program,
	e *env.Env, reserve, collateralMint solana.PublicKey, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		ctx:            ctx,
		log:            logger,
		backend:        be,
		spltoken:       token,
		lending:        lend,
		env:            e,
		reserve:        reserve,
		collateralMint: collateralMint,
	}
}

func (s *Service) Reserve() solana.PublicKey {
	return s.reserve
}

// Balance reads the user's collateral token account, the collateral mint and
// the reserve in one request and converts the collateral into liquidity. A
// user without a collateral token account holds zero collateral.
func (s *Service) Balance(user solana.PublicKey) (*Report, error) {
	collateralToken, err := s.spltoken.AssociatedAccount(user, s.collateralMint)
	if err != nil {
		return nil, err
	}
	accounts, err := s.backend.Accounts([]solana.PublicKey{collateralToken, s.collateralMint, s.reserve})
	if err != nil {
		return nil, err
	}
	collateralAmount := uint64(0)
	if accounts[0].Account != nil {
		account, err := s.spltoken.ParseAccount(accounts[0])
		if err != nil {
			return nil, err
		}
		if account.Mint != s.collateralMint {
			return nil, fmt.Errorf("account(%s) is not collateral account, expected: %s, actual: %s",
				collateralToken, s.collateralMint, account.Mint)
		}
		collateralAmount = account.Amount
	}
	mint, err := s.spltoken.ParseMint(accounts[1])
	if err != nil {
		return nil, err
	}
	reserve, err := s.lending.ParseReserve(accounts[2])
	if err != nil {
		return nil, err
	}
	result, err := calculator.UserBalance(&calculator.Inputs{
		UserCollateralAmount: collateralAmount,
		CollateralMintSupply: mint.Supply,
		AvailableAmount:      reserve.Liquidity.AvailableAmount,
		BorrowedAmountWads:   reserve.Liquidity.BorrowedAmount,
		PlatformAmountWads:   reserve.Liquidity.PlatformAmountWads,
	})
	if err != nil {
		return nil, fmt.Errorf("balance of user(%s) in reserve(%s) err: %w", user, s.reserve, err)
	}
	token := s.env.TokenOrDefault(reserve.Liquidity.MintPubKey, reserve.Liquidity.MintDecimals)
	report := &Report{
		User:             user,
		Reserve:          s.reserve,
		CollateralMint:   s.collateralMint,
		LiquidityMint:    reserve.Liquidity.MintPubKey,
		CollateralToken:  collateralToken,
		CollateralAmount: collateralAmount,
		CollateralSupply: mint.Supply,
		Slot:             reserve.Height,
		Token:            token,
		Result:           result,
	}
	s.log.Printf("user(%s) collateral: %d, supply: %d, total liquidity: %s, balance: %s %s",
		user, collateralAmount, mint.Supply, result.TotalLiquidity, report.BalanceUi(), token.Symbol)
	return report, nil
}
