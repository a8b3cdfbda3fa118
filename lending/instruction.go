package lending

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/program"
)

const (
	InstructionRefreshReserve          uint8 = 3
	InstructionDepositReserveLiquidity uint8 = 4
	InstructionRedeemReserveCollateral uint8 = 5
)

func amountData(tag uint8, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = tag
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

func (p *Program) InstructionRefreshReserve(reserve solana.PublicKey, oracle solana.PublicKey) solana.Instruction {
	return program.NewInstruction(p.id, []*solana.AccountMeta{
		{PublicKey: reserve, IsSigner: false, IsWritable: true},
		{PublicKey: oracle, IsSigner: false, IsWritable: false},
		{PublicKey: program.SysClock, IsSigner: false, IsWritable: false},
	}, []byte{InstructionRefreshReserve})
}

type DepositParams struct {
	Amount                 uint64
	SourceLiquidity        solana.PublicKey
	DestinationCollateral  solana.PublicKey
	Reserve                solana.PublicKey
	ReserveLiquiditySupply solana.PublicKey
	ReserveCollateralMint  solana.PublicKey
	LendingMarket          solana.PublicKey
	UserTransferAuthority  solana.PublicKey
}

// InstructionDepositReserveLiquidity moves Amount liquidity from the user into
// the reserve and mints collateral to DestinationCollateral.
func (p *Program) InstructionDepositReserveLiquidity(params *DepositParams) (solana.Instruction, error) {
	authority, err := p.LendingMarketAuthority(params.LendingMarket)
	if err != nil {
		return nil, err
	}
	return program.NewInstruction(p.id, []*solana.AccountMeta{
		{PublicKey: params.SourceLiquidity, IsSigner: false, IsWritable: true},
		{PublicKey: params.DestinationCollateral, IsSigner: false, IsWritable: true},
		{PublicKey: params.Reserve, IsSigner: false, IsWritable: true},
		{PublicKey: params.ReserveLiquiditySupply, IsSigner: false, IsWritable: true},
		{PublicKey: params.ReserveCollateralMint, IsSigner: false, IsWritable: true},
		{PublicKey: params.LendingMarket, IsSigner: false, IsWritable: false},
		{PublicKey: authority, IsSigner: false, IsWritable: false},
		{PublicKey: params.UserTransferAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: program.SysClock, IsSigner: false, IsWritable: false},
		{PublicKey: program.Token, IsSigner: false, IsWritable: false},
	}, amountData(InstructionDepositReserveLiquidity, params.Amount)), nil
}

type RedeemParams struct {
	Amount                 uint64
	SourceCollateral       solana.PublicKey
	DestinationLiquidity   solana.PublicKey
	Reserve                solana.PublicKey
	ReserveCollateralMint  solana.PublicKey
	ReserveLiquiditySupply solana.PublicKey
	LendingMarket          solana.PublicKey
	UserTransferAuthority  solana.PublicKey
}

// InstructionRedeemReserveCollateral burns Amount collateral and returns the
// matching liquidity to DestinationLiquidity.
func (p *Program) InstructionRedeemReserveCollateral(params *RedeemParams) (solana.Instruction, error) {
	authority, err := p.LendingMarketAuthority(params.LendingMarket)
	if err != nil {
		return nil, err
	}
	return program.NewInstruction(p.id, []*solana.AccountMeta{
		{PublicKey: params.SourceCollateral, IsSigner: false, IsWritable: true},
		{PublicKey: params.DestinationLiquidity, IsSigner: false, IsWritable: true},
		{PublicKey: params.Reserve, IsSigner: false, IsWritable: true},
		{PublicKey: params.ReserveCollateralMint, IsSigner: false, IsWritable: true},
		{PublicKey: params.ReserveLiquiditySupply, IsSigner: false, IsWritable: true},
		{PublicKey: params.LendingMarket, IsSigner: false, IsWritable: false},
		{PublicKey: authority, IsSigner: false, IsWritable: false},
		{PublicKey: params.UserTransferAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: program.SysClock, IsSigner: false, IsWritable: false},
		{PublicKey: program.Token, IsSigner: false, IsWritable: false},
	}, amountData(InstructionRedeemReserveCollateral, params.Amount)), nil
}
