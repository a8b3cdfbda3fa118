package system

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/backend/backendtest"
)

func TestProgram_CheckFeePayer(t *testing.T) {
	client := backendtest.NewClient()
	logger := log.New(io.Discard, "", 0)
	p := NewProgram(context.Background(), backend.NewBackend(context.Background(), client, logger), logger)
	payer := solana.NewWallet().PublicKey()

	err := p.CheckFeePayer(payer)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is not enough")

	client.Lamports[payer] = 1_000_000
	balance, err := p.Balance(payer)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), balance)
	require.NoError(t, p.CheckFeePayer(payer))
}
