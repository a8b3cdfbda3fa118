// Package backendtest provides an in-memory backend.RpcClient for tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type Client struct {
	mu           sync.Mutex
	Slot         uint64
	Accounts     map[solana.PublicKey]*rpc.Account
	Lamports     map[solana.PublicKey]uint64
	Blockhash    solana.Hash
	Sent         []*solana.Transaction
	Statuses     map[solana.Signature][]*rpc.SignatureStatusesResult
	Status       *rpc.SignatureStatusesResult
	MultipleErr  error
	MultipleCall int
	ShortReply   bool
	// Commitment is the commitment of the last account or balance read.
	Commitment rpc.CommitmentType
}

func NewClient() *Client {
	return &Client{
		Slot:     100,
		Accounts: make(map[solana.PublicKey]*rpc.Account),
		Lamports: make(map[solana.PublicKey]uint64),
		Statuses: make(map[solana.Signature][]*rpc.SignatureStatusesResult),
	}
}

func (c *Client) SetAccount(key solana.PublicKey, owner solana.PublicKey, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[key] = &rpc.Account{
		Owner:    owner,
		Lamports: 1,
		Data:     rpc.DataBytesOrJSONFromBytes(data),
	}
}

func (c *Client) context() rpc.RPCContext {
	return rpc.RPCContext{Context: rpc.Context{Slot: c.Slot}}
}

func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.Accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{RPCContext: c.context(), Value: value}, nil
}

func (c *Client) GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MultipleCall++
	c.Commitment = opts.Commitment
	if c.MultipleErr != nil {
		return nil, c.MultipleErr
	}
	values := make([]*rpc.Account, 0, len(accounts))
	for _, account := range accounts {
		values = append(values, c.Accounts[account])
	}
	if c.ShortReply && len(values) > 0 {
		values = values[:len(values)-1]
	}
	return &rpc.GetMultipleAccountsResult{RPCContext: c.context(), Value: values}, nil
}

func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Commitment = commitment
	return &rpc.GetBalanceResult{RPCContext: c.context(), Value: c.Lamports[account]}, nil
}

func (c *Client) GetVersion(ctx context.Context) (*rpc.GetVersionResult, error) {
	return &rpc.GetVersionResult{SolanaCore: "1.18.0"}, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &rpc.GetLatestBlockhashResult{
		RPCContext: c.context(),
		Value:      &rpc.LatestBlockhashResult{Blockhash: c.Blockhash, LastValidBlockHeight: c.Slot + 150},
	}, nil
}

func (c *Client) SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(transaction.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("transaction is not signed")
	}
	c.Sent = append(c.Sent, transaction)
	return transaction.Signatures[0], nil
}

// GetSignatureStatuses pops the next queued status for each signature. The
// last queued status repeats once the queue is drained, signatures with no
// queue get Status.
func (c *Client) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make([]*rpc.SignatureStatusesResult, 0, len(transactionSignatures))
	for _, signature := range transactionSignatures {
		queue := c.Statuses[signature]
		if len(queue) == 0 {
			values = append(values, c.Status)
			continue
		}
		values = append(values, queue[0])
		if len(queue) > 1 {
			c.Statuses[signature] = queue[1:]
		}
	}
	return &rpc.GetSignatureStatusesResult{RPCContext: c.context(), Value: values}, nil
}
