package app

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/lending"
)

type TransferResult struct {
	Amount    uint64
	Signature solana.Signature
	Skipped   bool
}

func (lb *LendingBalance) payer() (solana.PublicKey, error) {
	player := lb.backend.Player()
	if player.IsZero() {
		return solana.PublicKey{}, fmt.Errorf("wallet is not set, config key is required")
	}
	if err := lb.system.CheckFeePayer(player); err != nil {
		return solana.PublicKey{}, err
	}
	return player, nil
}

// tokenAmount returns amount, or the whole balance of account when amount is
// nil. A missing account holds nothing.
func (lb *LendingBalance) tokenAmount(account solana.PublicKey, amount *uint64) (uint64, error) {
	exist, err := lb.backend.HasAccount(account)
	if err != nil {
		return 0, err
	}
	balance := uint64(0)
	if exist {
		balance, err = lb.splToken.GetBalance(account)
		if err != nil {
			return 0, err
		}
	}
	if amount == nil {
		return balance, nil
	}
	if *amount > balance {
		return 0, fmt.Errorf("account(%s) balance is not enough, expected: %d, actual: %d",
			account, *amount, balance)
	}
	return *amount, nil
}

// reserve reads the configured reserve and checks it against the accounts the
// instructions pass to the lending program.
func (lb *LendingBalance) reserve() (*lending.KeyedReserve, error) {
	reserve, err := lb.lending.RetrieveReserve(lb.config.Reserve)
	if err != nil {
		return nil, err
	}
	checks := []struct {
		name     string
		expected solana.PublicKey
		actual   solana.PublicKey
	}{
		{"lending market", lb.config.LendingMarket, reserve.LendingMarket},
		{"liquidity mint", lb.config.LiquidityMint, reserve.Liquidity.MintPubKey},
		{"liquidity supply", lb.config.ReserveLiquiditySupply, reserve.Liquidity.SupplyPubKey},
		{"liquidity oracle", lb.config.ReserveLiquidityOracle, reserve.Liquidity.OraclePubKey},
	}
	for _, check := range checks {
		if check.expected != check.actual {
			return nil, fmt.Errorf("reserve(%s) %s is not valid, expected: %s, actual: %s",
				lb.config.Reserve, check.name, check.expected, check.actual)
		}
	}
	return reserve, nil
}

// Deposit moves liquidity from the wallet into the reserve, creating the
// collateral account first when the wallet has none.
func (lb *LendingBalance) Deposit(amount *uint64) (*TransferResult, error) {
	player, err := lb.payer()
	if err != nil {
		return nil, err
	}
	source, err := lb.splToken.AssociatedAccount(player, lb.config.LiquidityMint)
	if err != nil {
		return nil, err
	}
	depositAmount, err := lb.tokenAmount(source, amount)
	if err != nil {
		return nil, err
	}
	if depositAmount == 0 {
		lb.log.Printf("nothing to deposit, skip")
		return &TransferResult{Skipped: true}, nil
	}
	reserve, err := lb.reserve()
	if err != nil {
		return nil, err
	}
	destination, err := lb.splToken.AssociatedAccount(player, lb.config.CollateralMint)
	if err != nil {
		return nil, err
	}
	exist, err := lb.backend.HasAccount(destination)
	if err != nil {
		return nil, err
	}
	instructions := make([]solana.Instruction, 0, 3)
	if !exist {
		lb.log.Printf("create collateral account: %s", destination)
		instructions = append(instructions, lb.splToken.InstructionCreateAssociated(player, player, lb.config.CollateralMint))
	}
	instructions = append(instructions, lb.lending.InstructionRefreshReserve(reserve.Key, reserve.Liquidity.OraclePubKey))
	deposit, err := lb.lending.InstructionDepositReserveLiquidity(&lending.DepositParams{
		Amount:                 depositAmount,
		SourceLiquidity:        source,
		DestinationCollateral:  destination,
		Reserve:                reserve.Key,
		ReserveLiquiditySupply: reserve.Liquidity.SupplyPubKey,
		ReserveCollateralMint:  lb.config.CollateralMint,
		LendingMarket:          reserve.LendingMarket,
		UserTransferAuthority:  player,
	})
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, deposit)
	return lb.send("deposit", depositAmount, instructions)
}

// Redeem burns collateral for liquidity, creating the liquidity account first
// when the wallet has none.
func (lb *LendingBalance) Redeem(amount *uint64) (*TransferResult, error) {
	player, err := lb.payer()
	if err != nil {
		return nil, err
	}
	source, err := lb.splToken.AssociatedAccount(player, lb.config.CollateralMint)
	if err != nil {
		return nil, err
	}
	redeemAmount, err := lb.tokenAmount(source, amount)
	if err != nil {
		return nil, err
	}
	if redeemAmount == 0 {
		lb.log.Printf("nothing to withdraw, skip")
		return &TransferResult{Skipped: true}, nil
	}
	reserve, err := lb.reserve()
	if err != nil {
		return nil, err
	}
	destination, err := lb.splToken.AssociatedAccount(player, lb.config.LiquidityMint)
	if err != nil {
		return nil, err
	}
	exist, err := lb.backend.HasAccount(destination)
	if err != nil {
		return nil, err
	}
	instructions := make([]solana.Instruction, 0, 3)
	if !exist {
		lb.log.Printf("create liquidity account: %s", destination)
		instructions = append(instructions, lb.splToken.InstructionCreateAssociated(player, player, lb.config.LiquidityMint))
	}
	instructions = append(instructions, lb.lending.InstructionRefreshReserve(reserve.Key, reserve.Liquidity.OraclePubKey))
	redeem, err := lb.lending.InstructionRedeemReserveCollateral(&lending.RedeemParams{
		Amount:                 redeemAmount,
		SourceCollateral:       source,
		DestinationLiquidity:   destination,
		Reserve:                reserve.Key,
		ReserveCollateralMint:  lb.config.CollateralMint,
		ReserveLiquiditySupply: reserve.Liquidity.SupplyPubKey,
		LendingMarket:          reserve.LendingMarket,
		UserTransferAuthority:  player,
	})
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, redeem)
	return lb.send("redeem", redeemAmount, instructions)
}

func (lb *LendingBalance) send(action string, amount uint64, instructions []solana.Instruction) (*TransferResult, error) {
	signature, err := lb.backend.SendInstructions(instructions)
	if err != nil {
		return nil, fmt.Errorf("%s %d err: %w", action, amount, err)
	}
	lb.log.Printf("%s %d, transaction: %s", action, amount, signature)
	if err := lb.backend.Confirm(signature, lb.confirmInterval); err != nil {
		return nil, fmt.Errorf("%s %d, transaction(%s) err: %w", action, amount, signature, err)
	}
	lb.log.Printf("%s %d, transaction confirmed: %s", action, amount, signature)
	return &TransferResult{Amount: amount, Signature: signature}, nil
}
