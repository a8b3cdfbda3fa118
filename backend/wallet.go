package backend

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type Wallet struct {
	pubkey solana.PublicKey
	prikey solana.PrivateKey
}

func (backend *Backend) ImportWallet(priKey string) (solana.PublicKey, error) {
	pri, err := solana.PrivateKeyFromBase58(priKey)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("private key is not valid, err: %w", err)
	}
	pub := pri.PublicKey()
	backend.wallets = append(backend.wallets, &Wallet{
		pubkey: pub,
		prikey: pri,
	})
	return pub, nil
}

func (backend *Backend) getWallet(key solana.PublicKey) *solana.PrivateKey {
	for _, wallet := range backend.wallets {
		if wallet.pubkey == key {
			return &wallet.prikey
		}
	}
	return nil
}

func (backend *Backend) SetPlayer(player solana.PublicKey) {
	backend.player = player
}

func (backend *Backend) Player() solana.PublicKey {
	return backend.player
}
