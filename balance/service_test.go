package balance_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/backend/backendtest"
	"github.com/egaotan/solana-lending-balance/balance"
	"github.com/egaotan/solana-lending-balance/balance/balancetest"
	"github.com/egaotan/solana-lending-balance/calculator"
	"github.com/egaotan/solana-lending-balance/env"
	"github.com/egaotan/solana-lending-balance/layout"
	"github.com/egaotan/solana-lending-balance/lending"
	"github.com/egaotan/solana-lending-balance/program"
	"github.com/egaotan/solana-lending-balance/spltoken"
)

func newService(t *testing.T) (*balance.Service, *balancetest.Fixture) {
	t.Helper()
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)
	client := backendtest.NewClient()
	be := backend.NewBackend(ctx, client, logger)
	fixture := balancetest.NewFixture(client)
	e := env.NewEnv(ctx, "")
	e.AddToken(program.USDC, &env.Token{Symbol: "USDC", Name: "USD Coin", Decimal: 6})
	service := balance.NewService(ctx, be, spltoken.NewProgram(ctx, be, logger),
		lending.NewProgram(ctx, be, program.TulipLending, logger), e,
		fixture.Reserve, fixture.CollateralMint, logger)
	return service, fixture
}

func TestService_Balance(t *testing.T) {
	service, fixture := newService(t)
	user := solana.NewWallet().PublicKey()
	collateralToken := fixture.SetCollateral(user, 100)

	report, err := service.Balance(user)
	require.NoError(t, err)
	require.Equal(t, collateralToken, report.CollateralToken)
	require.Equal(t, uint64(100), report.CollateralAmount)
	require.Equal(t, uint64(1000), report.CollateralSupply)
	require.Equal(t, "250000", report.Balance().String())
	require.Equal(t, "2500000", report.Result.TotalLiquidity.String())
	require.Equal(t, "0.25", report.BalanceUi().String())
	require.Equal(t, "USDC", report.Token.Symbol)
	require.Equal(t, uint64(100), report.Slot)
}

func TestService_BalanceIgnoresReserveTail(t *testing.T) {
	service, fixture := newService(t)
	user := solana.NewWallet().PublicKey()
	fixture.SetCollateral(user, 100)
	require.Len(t, fixture.Client.Accounts[fixture.Reserve].Data.GetBinary(), balancetest.ReserveAccountSize)

	report, err := service.Balance(user)
	require.NoError(t, err)
	require.Equal(t, "250000", report.Balance().String())

	fixture.ReserveSize = lending.ReserveLayoutSize
	fixture.SetReserve()
	report, err = service.Balance(user)
	require.NoError(t, err)
	require.Equal(t, "250000", report.Balance().String())
}

func TestService_BalanceWithoutCollateralAccount(t *testing.T) {
	service, _ := newService(t)
	report, err := service.Balance(solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.Equal(t, uint64(0), report.CollateralAmount)
	require.Equal(t, "0", report.Balance().String())
}

func TestService_BalanceZeroSupply(t *testing.T) {
	service, fixture := newService(t)
	user := solana.NewWallet().PublicKey()
	fixture.SetCollateral(user, 100)
	fixture.SetMintSupply(0)

	_, err := service.Balance(user)
	require.True(t, errors.Is(err, calculator.ErrDivisionByZero))
}

func TestService_BalanceBadReserve(t *testing.T) {
	service, fixture := newService(t)
	fixture.Client.SetAccount(fixture.Reserve, program.TulipLending, make([]byte, lending.ReserveLayoutSize-1))

	_, err := service.Balance(solana.NewWallet().PublicKey())
	var decodeErr *layout.DecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestService_BalanceMissingReserve(t *testing.T) {
	service, fixture := newService(t)
	delete(fixture.Client.Accounts, fixture.Reserve)

	_, err := service.Balance(solana.NewWallet().PublicKey())
	require.True(t, errors.Is(err, backend.ErrAccountNotFound))
}

func TestService_BalanceWrongCollateralMint(t *testing.T) {
	service, fixture := newService(t)
	user := solana.NewWallet().PublicKey()
	address, _, err := solana.FindAssociatedTokenAddress(user, fixture.CollateralMint)
	require.NoError(t, err)
	other := solana.NewWallet().PublicKey()
	fixture.SetTokenAccount(user, other, 5)
	otherAddress, _, err := solana.FindAssociatedTokenAddress(user, other)
	require.NoError(t, err)
	fixture.Client.Accounts[address] = fixture.Client.Accounts[otherAddress]

	_, err = service.Balance(user)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is not collateral account")
}
