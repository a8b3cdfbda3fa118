// Package balancetest seeds a backendtest.Client with a lending reserve, its
// collateral mint and user collateral accounts.
package balancetest

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/backend/backendtest"
	"github.com/egaotan/solana-lending-balance/calculator"
	"github.com/egaotan/solana-lending-balance/lending"
	"github.com/egaotan/solana-lending-balance/program"
	"github.com/egaotan/solana-lending-balance/spltoken"
)

// ReserveAccountSize is the size of a live reserve account. The bytes past
// lending.ReserveLayoutSize hold the collateral and config sections.
const ReserveAccountSize = 571

type Fixture struct {
	Client         *backendtest.Client
	Reserve        solana.PublicKey
	CollateralMint solana.PublicKey
	LiquidityMint  solana.PublicKey
	Layout         *lending.ReserveLayout
	// ReserveSize is the length SetReserve pads the encoded layout to.
	ReserveSize int
}

func Wads(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), calculator.Wad)
}

// NewFixture seeds a reserve with 1_000_000 available, 2_000_000 borrowed and
// 500_000 platform fees over a collateral supply of 1000, plus the liquidity
// mint.
func NewFixture(client *backendtest.Client) *Fixture {
	f := &Fixture{
		Client:         client,
		Reserve:        program.Tulip_Usdc_Reserve,
		CollateralMint: program.TuUSDC,
		LiquidityMint:  program.USDC,
		ReserveSize:    ReserveAccountSize,
		Layout: &lending.ReserveLayout{
			Version:        1,
			LastUpdateSlot: lending.LastUpdateLayout{Slot: client.Slot},
			LendingMarket:  program.TulipLendingMkt,
			Liquidity: lending.ReserveLiquidityLayout{
				MintPubKey:           program.USDC,
				MintDecimals:         6,
				SupplyPubKey:         program.Tulip_Usdc_LiquiditySupply,
				OraclePubKey:         program.Tulip_Usdc_Oracle,
				AvailableAmount:      1_000_000,
				BorrowedAmount:       Wads(2_000_000),
				CumulativeBorrowRate: Wads(1),
				MarketPrice:          Wads(1),
				PlatformAmountWads:   Wads(500_000),
			},
		},
	}
	f.SetReserve()
	f.SetMintSupply(1000)
	f.Client.SetAccount(f.LiquidityMint, program.Token, encode(&spltoken.MintLayout{
		Supply:        5_000_000_000,
		Decimals:      6,
		IsInitialized: 1,
	}))
	return f
}

func (f *Fixture) SetReserve() {
	data, err := f.Layout.Encode()
	if err != nil {
		panic(err)
	}
	for len(data) < f.ReserveSize {
		data = append(data, 0xff)
	}
	f.Client.SetAccount(f.Reserve, program.TulipLending, data)
}

func (f *Fixture) SetMintSupply(supply uint64) {
	f.Client.SetAccount(f.CollateralMint, program.Token, encode(&spltoken.MintLayout{
		Supply:        supply,
		Decimals:      6,
		IsInitialized: 1,
	}))
}

// SetTokenAccount creates owner's associated account of mint holding amount
// and returns its address.
func (f *Fixture) SetTokenAccount(owner, mint solana.PublicKey, amount uint64) solana.PublicKey {
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		panic(err)
	}
	f.Client.SetAccount(address, program.Token, encode(&spltoken.AccountLayout{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  spltoken.AccountStateInitialized,
	}))
	return address
}

func (f *Fixture) SetCollateral(owner solana.PublicKey, amount uint64) solana.PublicKey {
	return f.SetTokenAccount(owner, f.CollateralMint, amount)
}

func (f *Fixture) SetLiquidity(owner solana.PublicKey, amount uint64) solana.PublicKey {
	return f.SetTokenAccount(owner, f.LiquidityMint, amount)
}

func encode(v interface{}) []byte {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
