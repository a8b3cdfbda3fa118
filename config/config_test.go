package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/egaotan/solana-lending-balance/program"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestLoad_Defaults(t *testing.T) {
	file := writeConfig(t, `{
		"nodes": [
			{"rpc": "http://127.0.0.1:8899", "ws": "ws://127.0.0.1:8900", "usable": false},
			{"rpc": "https://api.mainnet-beta.solana.com", "usable": true}
		],
		"db_dialect": "sqlite",
		"db_url": "balance.db"
	}`)
	cfg, err := Load(file)
	require.NoError(t, err)
	require.Len(t, cfg.UsableNodes(), 1)
	require.Equal(t, "https://api.mainnet-beta.solana.com", cfg.UsableNodes()[0].Rpc)
	require.Equal(t, program.TulipLending, cfg.LendingProgram)
	require.Equal(t, program.Tulip_Usdc_Reserve, cfg.Reserve)
	require.Equal(t, program.TuUSDC, cfg.CollateralMint)
	require.Equal(t, program.USDC, cfg.LiquidityMint)
	require.Equal(t, DefaultTicker, cfg.Ticker)
	require.Equal(t, DialectSqlite, cfg.DBDialect)
	require.Equal(t, rpc.CommitmentProcessed, cfg.Commitment)
	require.True(t, cfg.User.IsZero())
}

func TestLoad_Overrides(t *testing.T) {
	reserve := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	file := writeConfig(t, `{
		"nodes": [{"rpc": "http://127.0.0.1:8899", "usable": true}],
		"reserve": "`+reserve.String()+`",
		"user": "`+user.String()+`",
		"ticker": 30,
		"commitment": "finalized"
	}`)
	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, reserve, cfg.Reserve)
	require.Equal(t, user, cfg.User)
	require.Equal(t, uint64(30), cfg.Ticker)
	require.Equal(t, rpc.CommitmentFinalized, cfg.Commitment)
	require.Equal(t, DialectMysql, cfg.DBDialect)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"nodes": [`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"nodes": [{"rpc": "http://127.0.0.1:8899", "usable": false}]}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no usable node")
}

func TestLoad_InvalidCommitment(t *testing.T) {
	_, err := Load(writeConfig(t, `{
		"nodes": [{"rpc": "http://127.0.0.1:8899", "usable": true}],
		"commitment": "recent"
	}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "commitment(recent) is not valid")
}
