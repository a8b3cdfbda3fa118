package spltoken

import (
	"github.com/gagliardetto/solana-go"
)

var (
	AccountLayoutSize = 165
	MintLayoutSize    = 82
)

const (
	AccountStateUninitialized uint8 = iota
	AccountStateInitialized
	AccountStateFrozen
)

type AccountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       [4]byte
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       [4]byte
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption [4]byte
	CloseAuthority       solana.PublicKey
}

func (account *AccountLayout) IsFrozen() bool {
	return account.State == AccountStateFrozen
}

type MintLayout struct {
	MintAuthorityOption   [4]byte
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         uint8
	FreezeAuthorityOption [4]byte
	FreezeAuthority       solana.PublicKey
}

type KeyedAccount struct {
	Key    solana.PublicKey
	Height uint64
	AccountLayout
}

type KeyedMint struct {
	Key    solana.PublicKey
	Height uint64
	MintLayout
}
