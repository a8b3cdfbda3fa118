package backend

import (
	"context"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/egaotan/solana-lending-balance/config"
	"github.com/egaotan/solana-lending-balance/utils"
)

// RpcClient is the part of the solana rpc api the backend talks to.
// *rpc.Client satisfies it.
type RpcClient interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

var _ RpcClient = (*rpc.Client)(nil)

type Backend struct {
	logger     *log.Logger
	rpcClient  RpcClient
	ctx        context.Context
	wallets    []*Wallet
	player     solana.PublicKey
	commitment rpc.CommitmentType
}

func NewBackend(ctx context.Context, client RpcClient, logger *log.Logger) *Backend {
	if logger == nil {
		logger = log.Default()
	}
	backend := &Backend{
		rpcClient:  client,
		ctx:        ctx,
		logger:     logger,
		wallets:    make([]*Wallet, 0),
		commitment: rpc.CommitmentProcessed,
	}
	return backend
}

// NewBackendFromNodes connects to the first usable node.
func NewBackendFromNodes(ctx context.Context, nodes []*config.Node) (*Backend, error) {
	for _, node := range nodes {
		if !node.Usable {
			continue
		}
		logger := utils.NewLog(config.LogPath, config.BackendLog)
		logger.Printf("use rpc node: %s", node.Rpc)
		return NewBackend(ctx, rpc.New(node.Rpc), logger), nil
	}
	return nil, fmt.Errorf("no usable rpc node")
}

func (backend *Backend) SetCommitment(commitment rpc.CommitmentType) {
	backend.commitment = commitment
}

func (backend *Backend) Version() (string, error) {
	version, err := backend.rpcClient.GetVersion(backend.ctx)
	if err != nil {
		return "", err
	}
	return version.SolanaCore, nil
}
