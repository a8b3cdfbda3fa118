package spltoken

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/program"
)

type Program struct {
	backend  *backend.Backend
	log      *log.Logger
	ctx      context.Context
	id       solana.PublicKey
	lock     sync.RWMutex
	mints    map[solana.PublicKey]*KeyedMint
	accounts map[solana.PublicKey]*KeyedAccount
}

func NewProgram(ctx context.Context, be *backend.Backend, logger *log.Logger) *Program {
	if logger == nil {
		logger = log.Default()
	}
	p := &Program{
		ctx:      ctx,
		backend:  be,
		log:      logger,
		id:       program.Token,
		mints:    make(map[solana.PublicKey]*KeyedMint),
		accounts: make(map[solana.PublicKey]*KeyedAccount),
	}
	return p
}

func (p *Program) Name() string {
	return "spl token"
}

func (p *Program) Id() solana.PublicKey {
	return p.id
}

// RetrieveAccounts fetches token accounts into the cache. Accounts that are
// missing or do not parse are logged and dropped from it.
func (p *Program) RetrieveAccounts(pubkeys []solana.PublicKey) error {
	accounts, err := p.backend.Accounts(pubkeys)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if _, err := p.ParseAccount(account); err != nil {
			p.log.Printf("%s", err)
			p.lock.Lock()
			delete(p.accounts, account.PubKey)
			p.lock.Unlock()
			continue
		}
	}
	return nil
}

func (p *Program) GetAccount(key solana.PublicKey) *KeyedAccount {
	p.lock.RLock()
	defer p.lock.RUnlock()
	account, ok := p.accounts[key]
	if !ok {
		return nil
	}
	return account
}

func (p *Program) RetrieveMints(pubkeys []solana.PublicKey) error {
	accounts, err := p.backend.Accounts(pubkeys)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if _, err := p.ParseMint(account); err != nil {
			p.log.Printf("%s", err)
			p.lock.Lock()
			delete(p.mints, account.PubKey)
			p.lock.Unlock()
			continue
		}
	}
	return nil
}

func (p *Program) GetMint(key solana.PublicKey) *KeyedMint {
	p.lock.RLock()
	defer p.lock.RUnlock()
	mint, ok := p.mints[key]
	if !ok {
		return nil
	}
	return mint
}

// ParseAccount decodes a token account and caches it.
func (p *Program) ParseAccount(account *backend.Account) (*KeyedAccount, error) {
	data, err := p.checkAccount(account, AccountLayoutSize)
	if err != nil {
		return nil, err
	}
	layout := AccountLayout{}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &layout); err != nil {
		return nil, fmt.Errorf("spl token account(%s) data is not valid, err: %w", account.PubKey, err)
	}
	return p.upsertAccount(account.PubKey, account.Height, layout), nil
}

// ParseMint decodes a mint account and caches it.
func (p *Program) ParseMint(account *backend.Account) (*KeyedMint, error) {
	data, err := p.checkAccount(account, MintLayoutSize)
	if err != nil {
		return nil, err
	}
	layout := MintLayout{}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &layout); err != nil {
		return nil, fmt.Errorf("spl token mint(%s) data is not valid, err: %w", account.PubKey, err)
	}
	return p.upsertMint(account.PubKey, account.Height, layout), nil
}

func (p *Program) checkAccount(account *backend.Account, size int) ([]byte, error) {
	if account.Account == nil {
		return nil, fmt.Errorf("account(%s): %w", account.PubKey, backend.ErrAccountNotFound)
	}
	if account.Account.Owner != p.id {
		return nil, fmt.Errorf("account(%s) is not spl token program account, expected: %s, actual: %s",
			account.PubKey, p.id, account.Account.Owner)
	}
	data := account.Data()
	if len(data) != size {
		return nil, fmt.Errorf("spl token account(%s) data size is not valid, expected: %d, actual: %d",
			account.PubKey, size, len(data))
	}
	return data, nil
}

func (p *Program) upsertAccount(pubkey solana.PublicKey, height uint64, layout AccountLayout) *KeyedAccount {
	p.lock.Lock()
	defer p.lock.Unlock()
	keyed, ok := p.accounts[pubkey]
	if !ok {
		keyed = &KeyedAccount{Key: pubkey}
		p.accounts[pubkey] = keyed
	}
	keyed.Height = height
	keyed.AccountLayout = layout
	return &KeyedAccount{Key: pubkey, Height: height, AccountLayout: layout}
}

func (p *Program) upsertMint(pubkey solana.PublicKey, height uint64, layout MintLayout) *KeyedMint {
	p.lock.Lock()
	defer p.lock.Unlock()
	keyed, ok := p.mints[pubkey]
	if !ok {
		keyed = &KeyedMint{Key: pubkey}
		p.mints[pubkey] = keyed
	}
	keyed.Height = height
	keyed.MintLayout = layout
	return &KeyedMint{Key: pubkey, Height: height, MintLayout: layout}
}

// GetBalance fetches a token account and returns its amount.
func (p *Program) GetBalance(key solana.PublicKey) (uint64, error) {
	account, err := p.backend.Account(key)
	if err != nil {
		return 0, err
	}
	keyed, err := p.ParseAccount(account)
	if err != nil {
		return 0, err
	}
	return keyed.Amount, nil
}

// AssociatedAccount derives owner's associated token account for mint.
func (p *Program) AssociatedAccount(owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("associated account of owner(%s) mint(%s) err: %w", owner, mint, err)
	}
	return address, nil
}

func (p *Program) InstructionCreateAssociated(payer solana.PublicKey, owner solana.PublicKey, mint solana.PublicKey) solana.Instruction {
	return associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build()
}
