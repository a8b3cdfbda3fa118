package env

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
)

type Env struct {
	logger     *log.Logger
	ctx        context.Context
	tokensFile string
	lock       sync.RWMutex
	tokens     map[solana.PublicKey]*Token
}

func NewEnv(ctx context.Context, tokensFile string) *Env {
	env := &Env{
		ctx:        ctx,
		logger:     log.Default(),
		tokensFile: tokensFile,
		tokens:     make(map[solana.PublicKey]*Token),
	}
	return env
}

// Start loads the token registry. A missing tokens file leaves the registry
// empty, any other read or parse failure is returned.
func (e *Env) Start() error {
	e.logger.Printf("start env......")
	err := e.loadTokens()
	if os.IsNotExist(err) {
		e.logger.Printf("tokens file %s not found, token registry is empty", e.tokensFile)
		return nil
	}
	return err
}

func (e *Env) Stop() {
	e.logger.Printf("stop env......")
}
