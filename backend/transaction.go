package backend

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SendInstructions builds one transaction paid by the player, signs it with
// the imported wallets and sends it.
func (backend *Backend) SendInstructions(is []solana.Instruction) (solana.Signature, error) {
	if backend.player.IsZero() {
		return solana.Signature{}, fmt.Errorf("fee payer is not set")
	}
	latest, err := backend.rpcClient.GetLatestBlockhash(backend.ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, err
	}
	builder := solana.NewTransactionBuilder()
	for _, i := range is {
		builder.AddInstruction(i)
	}
	builder.SetRecentBlockHash(latest.Value.Blockhash)
	builder.SetFeePayer(backend.player)
	trx, err := builder.Build()
	if err != nil {
		return solana.Signature{}, err
	}
	if _, err := trx.Sign(backend.getWallet); err != nil {
		return solana.Signature{}, err
	}
	signature, err := backend.rpcClient.SendTransactionWithOpts(backend.ctx, trx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: backend.commitment,
	})
	if err != nil {
		return solana.Signature{}, err
	}
	backend.logger.Printf("send transaction: %s, instructions: %d", signature, len(is))
	return signature, nil
}

// Confirm polls the signature status every interval until the transaction is
// confirmed or the backend context ends. A failed transaction is an error.
func (backend *Backend) Confirm(signature solana.Signature, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		confirmed, err := backend.confirmed(signature)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}
		backend.logger.Printf("wait transaction confirmation: %s", signature)
		select {
		case <-ticker.C:
		case <-backend.ctx.Done():
			return backend.ctx.Err()
		}
	}
}

func (backend *Backend) confirmed(signature solana.Signature) (bool, error) {
	response, err := backend.rpcClient.GetSignatureStatuses(backend.ctx, true, signature)
	if err != nil {
		return false, err
	}
	if len(response.Value) == 0 || response.Value[0] == nil {
		return false, nil
	}
	status := response.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("transaction(%s) failed, err: %v", signature, status.Err)
	}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	}
	return false, nil
}
