package system

import (
	"context"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/program"
)

// MinimumFeeLamports covers the signature fee of one lending transaction.
const MinimumFeeLamports = uint64(5000)

type Program struct {
	backend *backend.Backend
	log     *log.Logger
	ctx     context.Context
	id      solana.PublicKey
}

func NewProgram(ctx context.Context, be *backend.Backend, logger *log.Logger) *Program {
	if logger == nil {
		logger = log.Default()
	}
	p := &Program{
		ctx:     ctx,
		backend: be,
		log:     logger,
		id:      program.System,
	}
	return p
}

func (p *Program) Name() string {
	return "system"
}

func (p *Program) Id() solana.PublicKey {
	return p.id
}

func (p *Program) Balance(owner solana.PublicKey) (uint64, error) {
	lamports, err := p.backend.Lamports(owner)
	if err != nil {
		return 0, fmt.Errorf("balance of account(%s) err: %w", owner, err)
	}
	return lamports, nil
}

// CheckFeePayer fails when payer can not pay for a transaction.
func (p *Program) CheckFeePayer(payer solana.PublicKey) error {
	lamports, err := p.Balance(payer)
	if err != nil {
		return err
	}
	p.log.Printf("fee payer(%s) balance: %d lamports", payer, lamports)
	if lamports < MinimumFeeLamports {
		return fmt.Errorf("fee payer(%s) balance is not enough, expected: %d, actual: %d",
			payer, MinimumFeeLamports, lamports)
	}
	return nil
}
