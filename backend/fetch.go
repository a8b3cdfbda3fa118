package backend

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	MultipleAccountSliceSize = 100
)

var ErrAccountNotFound = errors.New("account not found")

type Account struct {
	PubKey  solana.PublicKey
	Account *rpc.Account
	Height  uint64
}

func (account *Account) Data() []byte {
	if account.Account == nil || account.Account.Data == nil {
		return nil
	}
	return account.Account.Data.GetBinary()
}

// Accounts fetches pubkeys in slices of MultipleAccountSliceSize. Missing
// accounts come back with a nil Account.
func (backend *Backend) Accounts(pubkeys []solana.PublicKey) ([]*Account, error) {
	accounts := make([]*Account, 0, len(pubkeys))
	index, end := 0, 0
	for index < len(pubkeys) {
		if end = index + MultipleAccountSliceSize; end > len(pubkeys) {
			end = len(pubkeys)
		}
		getMultipleAccountsRsp, err := backend.rpcClient.GetMultipleAccountsWithOpts(backend.ctx, pubkeys[index:end],
			&rpc.GetMultipleAccountsOpts{Encoding: solana.EncodingBase64, Commitment: backend.commitment})
		if err != nil {
			return nil, err
		}
		if len(getMultipleAccountsRsp.Value) != end-index {
			return nil, fmt.Errorf("get accounts err, some account is missing, expected: %d, actual: %d",
				end-index, len(getMultipleAccountsRsp.Value))
		}
		for i, account := range getMultipleAccountsRsp.Value {
			accounts = append(accounts, &Account{
				PubKey:  pubkeys[index+i],
				Height:  getMultipleAccountsRsp.Context.Slot,
				Account: account,
			})
		}
		index = end
	}
	return accounts, nil
}

func (backend *Backend) Account(pubkey solana.PublicKey) (*Account, error) {
	response, err := backend.rpcClient.GetAccountInfo(backend.ctx, pubkey)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("account(%s): %w", pubkey, ErrAccountNotFound)
		}
		return nil, err
	}
	if response.Value == nil {
		return nil, fmt.Errorf("account(%s): %w", pubkey, ErrAccountNotFound)
	}
	return &Account{
		PubKey:  pubkey,
		Height:  response.Context.Slot,
		Account: response.Value,
	}, nil
}

// HasAccount reports whether pubkey exists. Only a not-found answer is false,
// any other rpc failure is returned.
func (backend *Backend) HasAccount(pubkey solana.PublicKey) (bool, error) {
	_, err := backend.Account(pubkey)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	return false, err
}

// Lamports returns the SOL balance of pubkey in lamports.
func (backend *Backend) Lamports(pubkey solana.PublicKey) (uint64, error) {
	response, err := backend.rpcClient.GetBalance(backend.ctx, pubkey, backend.commitment)
	if err != nil {
		return 0, err
	}
	return response.Value, nil
}
