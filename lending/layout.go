package lending

import (
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/layout"
)

var (
	LastUpdateLayoutSize       = (&LastUpdateLayout{}).schema().Size()
	ReserveLiquidityLayoutSize = (&ReserveLiquidityLayout{}).schema().Size()
	ReserveLayoutSize          = (&ReserveLayout{}).Schema().Size()
)

type LastUpdateLayout struct {
	Slot  uint64
	Stale bool
}

func (lastUpdate *LastUpdateLayout) schema() layout.Schema {
	return layout.Schema{
		layout.U64("slot", &lastUpdate.Slot),
		layout.Bool("stale", &lastUpdate.Stale),
	}
}

// BorrowedAmount, CumulativeBorrowRate, MarketPrice and PlatformAmountWads are
// wads (scaled by 1e18). AvailableAmount is in base units.
type ReserveLiquidityLayout struct {
	MintPubKey           solana.PublicKey
	MintDecimals         uint8
	SupplyPubKey         solana.PublicKey
	FeeReceiver          solana.PublicKey
	OraclePubKey         solana.PublicKey
	AvailableAmount      uint64
	BorrowedAmount       *big.Int
	CumulativeBorrowRate *big.Int
	MarketPrice          *big.Int
	PlatformAmountWads   *big.Int
	PlatformFees         uint8
}

func (liquidity *ReserveLiquidityLayout) schema() layout.Schema {
	return layout.Schema{
		layout.PublicKey("mintPubKey", &liquidity.MintPubKey),
		layout.U8("mintDecimals", &liquidity.MintDecimals),
		layout.PublicKey("supplyPubKey", &liquidity.SupplyPubKey),
		layout.PublicKey("feeReceiver", &liquidity.FeeReceiver),
		layout.PublicKey("oraclePubKey", &liquidity.OraclePubKey),
		layout.U64("availableAmount", &liquidity.AvailableAmount),
		layout.U128("borrowedAmount", &liquidity.BorrowedAmount),
		layout.U128("cumulativeBorrowRate", &liquidity.CumulativeBorrowRate),
		layout.U128("marketPrice", &liquidity.MarketPrice),
		layout.U128("platformAmountWads", &liquidity.PlatformAmountWads),
		layout.U8("platformFees", &liquidity.PlatformFees),
	}
}

type ReserveLayout struct {
	Version          uint8
	LastUpdateSlot   LastUpdateLayout
	LendingMarket    solana.PublicKey
	BorrowAuthorizer solana.PublicKey
	Liquidity        ReserveLiquidityLayout
}

// Schema is the reserve account wire format. Changing it breaks compatibility
// with existing accounts unless Version changes with it.
func (reserve *ReserveLayout) Schema() layout.Schema {
	return layout.Schema{
		layout.U8("version", &reserve.Version),
		layout.Struct("lastUpdateSlot", reserve.LastUpdateSlot.schema()...),
		layout.PublicKey("lendingMarket", &reserve.LendingMarket),
		layout.PublicKey("borrowAuthorizer", &reserve.BorrowAuthorizer),
		layout.Struct("liquidity", reserve.Liquidity.schema()...),
	}
}

func (reserve *ReserveLayout) Encode() ([]byte, error) {
	return reserve.Schema().Encode()
}

func DecodeReserve(data []byte) (*ReserveLayout, error) {
	reserve := &ReserveLayout{}
	if err := reserve.Schema().Decode(data); err != nil {
		return nil, err
	}
	return reserve, nil
}

type KeyedReserve struct {
	Key    solana.PublicKey
	Height uint64
	ReserveLayout
}
