package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/egaotan/solana-lending-balance/program"
)

var (
	ConfigPath    = "./"
	ConfigFile    = ConfigPath + "config.json"
	TokensFile    = ConfigPath + "tokens.json"
	LogPath       = "./logs/"
	BackendLog    = "backend"
	LendingLog    = "lending"
	SplTokenLog   = "spl_token"
	StoreLog      = "store"
	ListenLog     = "balance_listen"
	NetworkLog    = "network"
	AppLog        = "lending_balance"
	DefaultTicker = uint64(10)
)

const (
	DialectMysql  = "mysql"
	DialectSqlite = "sqlite"
)

type Node struct {
	Rpc    string `json:"rpc"`
	Ws     string `json:"ws"`
	Usable bool   `json:"usable"`
}

type Config struct {
	Nodes                  []*Node            `json:"nodes"`
	DetectNetwork          bool               `json:"detect_network"`
	Commitment             rpc.CommitmentType `json:"commitment"`
	Key                    string             `json:"key"`
	User                   solana.PublicKey   `json:"user"`
	LendingProgram         solana.PublicKey   `json:"lending_program"`
	LendingMarket          solana.PublicKey   `json:"lending_market"`
	Reserve                solana.PublicKey   `json:"reserve"`
	ReserveLiquidityOracle solana.PublicKey   `json:"reserve_liquidity_oracle"`
	ReserveLiquiditySupply solana.PublicKey   `json:"reserve_liquidity_supply"`
	LiquidityMint          solana.PublicKey   `json:"liquidity_mint"`
	CollateralMint         solana.PublicKey   `json:"collateral_mint"`
	WorkSpace              string             `json:"workspace"`
	DingUrl                string             `json:"ding_url"`
	DBDialect              string             `json:"db_dialect"`
	DBUrl                  string             `json:"db_url"`
	DBScheme               string             `json:"db_scheme"`
	DBUser                 string             `json:"db_user"`
	DBPasswd               string             `json:"db_passwd"`
	Listen                 string             `json:"listen"`
	Ticker                 uint64             `json:"ticker"`
}

func Load(file string) (*Config, error) {
	infoJson, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var cfg Config
	err = json.Unmarshal(infoJson, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config file(%s) is not valid, err: %w", file, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills the reserve accounts left empty with the tulip usdc
// reserve.
func (cfg *Config) SetDefaults() {
	setKey := func(key *solana.PublicKey, value solana.PublicKey) {
		if key.IsZero() {
			*key = value
		}
	}
	setKey(&cfg.LendingProgram, program.TulipLending)
	setKey(&cfg.LendingMarket, program.TulipLendingMkt)
	setKey(&cfg.Reserve, program.Tulip_Usdc_Reserve)
	setKey(&cfg.ReserveLiquidityOracle, program.Tulip_Usdc_Oracle)
	setKey(&cfg.ReserveLiquiditySupply, program.Tulip_Usdc_LiquiditySupply)
	setKey(&cfg.LiquidityMint, program.USDC)
	setKey(&cfg.CollateralMint, program.TuUSDC)
	if cfg.Ticker == 0 {
		cfg.Ticker = DefaultTicker
	}
	if cfg.DBDialect == "" {
		cfg.DBDialect = DialectMysql
	}
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentProcessed
	}
}

func (cfg *Config) Validate() error {
	if len(cfg.UsableNodes()) == 0 {
		return fmt.Errorf("config has no usable node")
	}
	if cfg.Reserve.IsZero() {
		return fmt.Errorf("config reserve is empty")
	}
	if cfg.CollateralMint.IsZero() {
		return fmt.Errorf("config collateral_mint is empty")
	}
	if cfg.LendingProgram.IsZero() {
		return fmt.Errorf("config lending_program is empty")
	}
	switch cfg.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("config commitment(%s) is not valid", cfg.Commitment)
	}
	return nil
}

func (cfg *Config) UsableNodes() []*Node {
	usableNodes := make([]*Node, 0, len(cfg.Nodes))
	for _, node := range cfg.Nodes {
		if node.Usable {
			usableNodes = append(usableNodes, node)
		}
	}
	return usableNodes
}
