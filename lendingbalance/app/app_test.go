package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/backend/backendtest"
	"github.com/egaotan/solana-lending-balance/balance/balancetest"
	"github.com/egaotan/solana-lending-balance/config"
	"github.com/egaotan/solana-lending-balance/env"
	"github.com/egaotan/solana-lending-balance/lending"
	"github.com/egaotan/solana-lending-balance/program"
	"github.com/egaotan/solana-lending-balance/store"
)

func discardLoggers(name string) *log.Logger {
	return log.New(io.Discard, "", 0)
}

type testApp struct {
	lb      *LendingBalance
	client  *backendtest.Client
	fixture *balancetest.Fixture
	player  solana.PublicKey
}

func newTestApp(t *testing.T, withStore bool) *testApp {
	t.Helper()
	wallet := solana.NewWallet()
	cfg := &config.Config{
		Nodes: []*config.Node{{Rpc: "http://127.0.0.1:8899", Usable: true}},
		Key:   wallet.PrivateKey.String(),
	}
	if withStore {
		cfg.DBDialect = config.DialectSqlite
		cfg.DBUrl = filepath.Join(t.TempDir(), "app.db")
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	client := backendtest.NewClient()
	client.Status = &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusFinalized}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	be := backend.NewBackend(ctx, client, discardLoggers(""))
	lb, err := New(ctx, cfg, be, discardLoggers)
	require.NoError(t, err)
	lb.confirmInterval = time.Millisecond
	lb.env.AddToken(program.USDC, &env.Token{Symbol: "USDC", Name: "USD Coin", Decimal: 6})
	t.Cleanup(lb.Stop)

	return &testApp{
		lb:      lb,
		client:  client,
		fixture: balancetest.NewFixture(client),
		player:  wallet.PublicKey(),
	}
}

func programIds(tx *solana.Transaction) []solana.PublicKey {
	ids := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, instruction := range tx.Message.Instructions {
		ids = append(ids, tx.Message.AccountKeys[instruction.ProgramIDIndex])
	}
	return ids
}

func TestNew_UserDefaultsToWallet(t *testing.T) {
	ta := newTestApp(t, false)
	require.Equal(t, ta.player, ta.lb.User())
	require.Equal(t, ta.player, ta.lb.backend.Player())
	require.NoError(t, ta.lb.Start())
}

func TestNew_InvalidKey(t *testing.T) {
	cfg := &config.Config{Key: "not a key"}
	cfg.SetDefaults()
	be := backend.NewBackend(context.Background(), backendtest.NewClient(), discardLoggers(""))
	_, err := New(context.Background(), cfg, be, discardLoggers)
	require.Error(t, err)
}

func TestNew_AppliesCommitment(t *testing.T) {
	ta := newTestApp(t, false)
	_, err := ta.lb.Balance(solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.Equal(t, rpc.CommitmentProcessed, ta.client.Commitment)

	cfg := &config.Config{User: solana.NewWallet().PublicKey(), Commitment: rpc.CommitmentFinalized}
	cfg.SetDefaults()
	client := backendtest.NewClient()
	balancetest.NewFixture(client)
	be := backend.NewBackend(context.Background(), client, discardLoggers(""))
	lb, err := New(context.Background(), cfg, be, discardLoggers)
	require.NoError(t, err)
	t.Cleanup(lb.Stop)
	_, err = lb.Balance(solana.PublicKey{})
	require.NoError(t, err)
	require.Equal(t, rpc.CommitmentFinalized, client.Commitment)
}

func TestLendingBalance_Balance(t *testing.T) {
	ta := newTestApp(t, false)
	ta.fixture.SetCollateral(ta.player, 100)

	report, err := ta.lb.Balance(solana.PublicKey{})
	require.NoError(t, err)
	require.Equal(t, ta.player, report.User)
	require.Equal(t, "250000", report.Balance().String())
}

func TestLendingBalance_DepositCreatesCollateralAccount(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 1_000_000_000
	ta.fixture.SetLiquidity(ta.player, 5_000_000)

	result, err := ta.lb.Deposit(nil)
	require.NoError(t, err)
	require.False(t, result.Skipped)
	require.Equal(t, uint64(5_000_000), result.Amount)
	require.Len(t, ta.client.Sent, 1)

	tx := ta.client.Sent[0]
	require.Equal(t, result.Signature, tx.Signatures[0])
	require.Equal(t, []solana.PublicKey{program.AssociatedToken, program.TulipLending, program.TulipLending}, programIds(tx))
	require.Equal(t, []byte{lending.InstructionRefreshReserve}, []byte(tx.Message.Instructions[1].Data))
	require.Equal(t, lending.InstructionDepositReserveLiquidity, tx.Message.Instructions[2].Data[0])
}

func TestLendingBalance_DepositAmount(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 1_000_000_000
	ta.fixture.SetLiquidity(ta.player, 5_000_000)
	ta.fixture.SetCollateral(ta.player, 10)

	amount := uint64(1_000)
	result, err := ta.lb.Deposit(&amount)
	require.NoError(t, err)
	require.Equal(t, amount, result.Amount)
	require.Equal(t, []solana.PublicKey{program.TulipLending, program.TulipLending}, programIds(ta.client.Sent[0]))

	amount = 6_000_000
	_, err = ta.lb.Deposit(&amount)
	require.Error(t, err)
	require.Contains(t, err.Error(), "balance is not enough")
	require.Len(t, ta.client.Sent, 1)
}

func TestLendingBalance_DepositSkipsZero(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 1_000_000_000

	result, err := ta.lb.Deposit(nil)
	require.NoError(t, err)
	require.True(t, result.Skipped)
	require.Empty(t, ta.client.Sent)
}

func TestLendingBalance_DepositWithoutFee(t *testing.T) {
	ta := newTestApp(t, false)
	ta.fixture.SetLiquidity(ta.player, 5_000_000)

	_, err := ta.lb.Deposit(nil)
	require.Error(t, err)
	require.Empty(t, ta.client.Sent)
}

func TestLendingBalance_DepositChecksReserve(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 1_000_000_000
	ta.fixture.SetLiquidity(ta.player, 5_000_000)
	ta.fixture.Layout.Liquidity.OraclePubKey = solana.NewWallet().PublicKey()
	ta.fixture.SetReserve()

	_, err := ta.lb.Deposit(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "liquidity oracle is not valid")
	require.Empty(t, ta.client.Sent)

	ta.fixture.SetCollateral(ta.player, 100)
	_, err = ta.lb.Redeem(nil)
	require.Error(t, err)
	require.Empty(t, ta.client.Sent)
}

func TestLendingBalance_DepositFailedTransaction(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 1_000_000_000
	ta.fixture.SetLiquidity(ta.player, 5_000_000)
	ta.client.Status = &rpc.SignatureStatusesResult{Err: map[string]interface{}{"InstructionError": []interface{}{2, "Custom"}}}

	_, err := ta.lb.Deposit(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed")
}

func TestLendingBalance_Redeem(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 1_000_000_000
	ta.fixture.SetCollateral(ta.player, 100)

	result, err := ta.lb.Redeem(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(100), result.Amount)
	tx := ta.client.Sent[0]
	require.Equal(t, []solana.PublicKey{program.AssociatedToken, program.TulipLending, program.TulipLending}, programIds(tx))
	require.Equal(t, lending.InstructionRedeemReserveCollateral, tx.Message.Instructions[2].Data[0])

	ta.fixture.SetLiquidity(ta.player, 0)
	amount := uint64(40)
	result, err = ta.lb.Redeem(&amount)
	require.NoError(t, err)
	require.Equal(t, amount, result.Amount)
	require.Len(t, programIds(ta.client.Sent[1]), 2)
}

func TestLendingBalance_RedeemSkipsZero(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 1_000_000_000
	ta.fixture.SetCollateral(ta.player, 0)

	result, err := ta.lb.Redeem(nil)
	require.NoError(t, err)
	require.True(t, result.Skipped)
}

func TestLendingBalance_WalletBalance(t *testing.T) {
	ta := newTestApp(t, false)
	ta.client.Lamports[ta.player] = 2_500_000_000
	liquidityAccount := ta.fixture.SetLiquidity(ta.player, 5_000_000)

	wallet, err := ta.lb.WalletBalance(solana.PublicKey{})
	require.NoError(t, err)
	require.Equal(t, ta.player, wallet.Owner)
	require.Equal(t, "2.5", wallet.SolUi().String())
	require.Equal(t, liquidityAccount, wallet.LiquidityAccount)
	require.Equal(t, uint64(5_000_000), wallet.Liquidity)
	require.Equal(t, "5", wallet.LiquidityUi().String())
	require.Equal(t, "USDC", wallet.LiquidityToken.Symbol)
	require.Equal(t, uint64(0), wallet.Collateral)
	require.Equal(t, program.TuUSDC.String(), wallet.CollateralToken.Symbol)
	require.Equal(t, uint8(6), wallet.CollateralToken.Decimal)

	ta.fixture.SetCollateral(ta.player, 1_500_000)
	delete(ta.client.Accounts, liquidityAccount)
	wallet, err = ta.lb.WalletBalance(ta.player)
	require.NoError(t, err)
	require.Equal(t, uint64(0), wallet.Liquidity)
	require.Equal(t, "1.5", wallet.CollateralUi().String())
}

func TestLendingBalance_WalletBalanceMissingMint(t *testing.T) {
	ta := newTestApp(t, false)
	delete(ta.client.Accounts, ta.fixture.CollateralMint)

	_, err := ta.lb.WalletBalance(ta.player)
	require.True(t, errors.Is(err, backend.ErrAccountNotFound))
}

func serve(lb *LendingBalance, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	lb.router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestRPC_GetBalance(t *testing.T) {
	ta := newTestApp(t, false)
	user := solana.NewWallet().PublicKey()
	ta.fixture.SetCollateral(user, 100)

	recorder := serve(ta.lb, "/api/balance?user="+user.String())
	require.Equal(t, http.StatusOK, recorder.Code)
	var body Balance
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, user.String(), body.User)
	require.Equal(t, "250000", body.Balance)
	require.Equal(t, "0.25", body.BalanceUi)
	require.Equal(t, "USDC", body.Token.Symbol)
	require.Equal(t, program.USDC.String(), body.Token.Key)

	recorder = serve(ta.lb, "/api/balance?user=bad")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	delete(ta.client.Accounts, ta.fixture.Reserve)
	recorder = serve(ta.lb, "/api/balance?user="+user.String())
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestRPC_GetHistory(t *testing.T) {
	ta := newTestApp(t, true)
	require.NoError(t, ta.lb.Start())
	user := solana.NewWallet().PublicKey()
	for i := uint64(1); i <= 3; i++ {
		ta.lb.store.StoreBalance(&store.BalanceSnapshot{
			User:           user.String(),
			Reserve:        ta.fixture.Reserve.String(),
			TotalLiquidity: "2500000",
			Balance:        "250000",
			Slot:           i,
			CreatedAt:      time.Now(),
		})
	}
	require.Eventually(t, func() bool {
		snapshots, err := ta.lb.store.GetBalances(user.String(), 10)
		return err == nil && len(snapshots) == 3
	}, time.Second, 10*time.Millisecond)

	recorder := serve(ta.lb, "/api/history?limit=2&user="+user.String())
	require.Equal(t, http.StatusOK, recorder.Code)
	var body []*BalanceSnapshot
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body, 2)
	require.Equal(t, uint64(3), body[0].Slot)
	require.Equal(t, "0.25", body[0].BalanceUi)

	recorder = serve(ta.lb, "/api/history?limit=0")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRPC_GetHistoryUnregisteredToken(t *testing.T) {
	ta := newTestApp(t, true)
	require.NoError(t, ta.lb.Start())
	ta.lb.env = env.NewEnv(context.Background(), "")
	user := solana.NewWallet().PublicKey()
	ta.lb.store.StoreBalance(&store.BalanceSnapshot{
		User:      user.String(),
		Reserve:   ta.fixture.Reserve.String(),
		Balance:   "250000",
		Slot:      7,
		CreatedAt: time.Now(),
	})
	require.Eventually(t, func() bool {
		snapshots, err := ta.lb.store.GetBalances(user.String(), 10)
		return err == nil && len(snapshots) == 1
	}, time.Second, 10*time.Millisecond)

	recorder := serve(ta.lb, "/api/history?user="+user.String())
	require.Equal(t, http.StatusOK, recorder.Code)
	var body []*BalanceSnapshot
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "0.25", body[0].BalanceUi)
}

func TestRPC_GetHistoryWithoutStore(t *testing.T) {
	ta := newTestApp(t, false)
	recorder := serve(ta.lb, "/api/history")
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
