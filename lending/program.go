package lending

import (
	"context"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/layout"
)

type Program struct {
	backend *backend.Backend
	log     *log.Logger
	ctx     context.Context
	id      solana.PublicKey
}

func NewProgram(ctx context.Context, be *backend.Backend, id solana.PublicKey, logger *log.Logger) *Program {
	if logger == nil {
		logger = log.Default()
	}
	p := &Program{
		ctx:     ctx,
		backend: be,
		log:     logger,
		id:      id,
	}
	return p
}

func (p *Program) Name() string {
	return "lending"
}

func (p *Program) Id() solana.PublicKey {
	return p.id
}

func (p *Program) RetrieveReserve(key solana.PublicKey) (*KeyedReserve, error) {
	account, err := p.backend.Account(key)
	if err != nil {
		return nil, err
	}
	return p.ParseReserve(account)
}

// ParseReserve checks the owner of a fetched reserve account and decodes it.
func (p *Program) ParseReserve(account *backend.Account) (*KeyedReserve, error) {
	if account.Account == nil {
		return nil, fmt.Errorf("reserve(%s): %w", account.PubKey, backend.ErrAccountNotFound)
	}
	if account.Account.Owner != p.id {
		return nil, fmt.Errorf("account(%s) is not lending program account, expected: %s, actual: %s",
			account.PubKey, p.id, account.Account.Owner)
	}
	data := account.Data()
	if len(data) < ReserveLayoutSize {
		return nil, fmt.Errorf("reserve(%s) data is not valid: %w", account.PubKey,
			&layout.DecodeError{Expected: ReserveLayoutSize, Actual: len(data)})
	}
	// collateral and config sections follow the liquidity and are not decoded
	reserve, err := DecodeReserve(data[:ReserveLayoutSize])
	if err != nil {
		return nil, fmt.Errorf("reserve(%s) data is not valid: %w", account.PubKey, err)
	}
	p.log.Printf("reserve(%s) slot: %d, stale: %v, available: %d, borrowed: %s, platform: %s",
		account.PubKey, reserve.LastUpdateSlot.Slot, reserve.LastUpdateSlot.Stale,
		reserve.Liquidity.AvailableAmount, reserve.Liquidity.BorrowedAmount, reserve.Liquidity.PlatformAmountWads)
	return &KeyedReserve{
		Key:           account.PubKey,
		Height:        account.Height,
		ReserveLayout: *reserve,
	}, nil
}

// LendingMarketAuthority is the program derived address that owns the
// market's token accounts.
func (p *Program) LendingMarketAuthority(market solana.PublicKey) (solana.PublicKey, error) {
	authority, _, err := solana.FindProgramAddress([][]byte{market[:]}, p.id)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("lending market(%s) authority err: %w", market, err)
	}
	return authority, nil
}
