package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/egaotan/solana-lending-balance/backend"
	"github.com/egaotan/solana-lending-balance/balance"
	"github.com/egaotan/solana-lending-balance/balancelisten"
	"github.com/egaotan/solana-lending-balance/config"
	"github.com/egaotan/solana-lending-balance/dingsdk"
	"github.com/egaotan/solana-lending-balance/env"
	"github.com/egaotan/solana-lending-balance/lending"
	"github.com/egaotan/solana-lending-balance/networkdetect"
	"github.com/egaotan/solana-lending-balance/spltoken"
	"github.com/egaotan/solana-lending-balance/store"
	"github.com/egaotan/solana-lending-balance/system"
	"github.com/egaotan/solana-lending-balance/utils"
)

const (
	ConfirmInterval = 3 * time.Second
	DetectPingCount = 3
)

type LoggerFactory func(name string) *log.Logger

func FileLoggers(name string) *log.Logger {
	return utils.NewLog(config.LogPath, name)
}

type LendingBalance struct {
	ctx             context.Context
	cancel          context.CancelFunc
	log             *log.Logger
	config          *config.Config
	backend         *backend.Backend
	env             *env.Env
	splToken        *spltoken.Program
	system          *system.Program
	lending         *lending.Program
	balance         *balance.Service
	store           *store.Store
	dsdk            *dingsdk.DingSdk
	balanceListen   *balancelisten.BalanceListen
	httpServer      *http.Server
	user            solana.PublicKey
	confirmInterval time.Duration
}

// NewLendingBalance connects to the configured nodes. With detect_network set
// the node with the lowest ping wins, otherwise the first usable one.
func NewLendingBalance(ctx context.Context, cfg *config.Config) (*LendingBalance, error) {
	nodes := cfg.UsableNodes()
	if cfg.DetectNetwork && len(nodes) > 1 {
		node, rtt, err := networkdetect.DetectNodes(nodes, DetectPingCount, FileLoggers(config.NetworkLog))
		if err != nil {
			return nil, err
		}
		fmt.Printf("detect node: %s, rtt: %s\n", node.Rpc, rtt)
		nodes = []*config.Node{node}
	}
	be, err := backend.NewBackendFromNodes(ctx, nodes)
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, be, FileLoggers)
}

func New(ctx context.Context, cfg *config.Config, be *backend.Backend, loggers LoggerFactory) (*LendingBalance, error) {
	ctx, cancel := context.WithCancel(ctx)
	lb := &LendingBalance{
		ctx:             ctx,
		cancel:          cancel,
		log:             loggers(config.AppLog),
		config:          cfg,
		backend:         be,
		user:            cfg.User,
		confirmInterval: ConfirmInterval,
	}
	if cfg.Commitment != "" {
		be.SetCommitment(cfg.Commitment)
	}
	if cfg.Key != "" {
		player, err := be.ImportWallet(cfg.Key)
		if err != nil {
			cancel()
			return nil, err
		}
		be.SetPlayer(player)
		if lb.user.IsZero() {
			lb.user = player
		}
	}
	lb.env = env.NewEnv(ctx, config.TokensFile)
	lb.splToken = spltoken.NewProgram(ctx, be, loggers(config.SplTokenLog))
	lb.system = system.NewProgram(ctx, be, lb.log)
	lb.lending = lending.NewProgram(ctx, be, cfg.LendingProgram, loggers(config.LendingLog))
	lb.balance = balance.NewService(ctx, be, lb.splToken, lb.lending, lb.env, cfg.Reserve, cfg.CollateralMint, lb.log)
	if cfg.DBUrl != "" {
		dao, err := store.NewDao(cfg.DBDialect, cfg.DBUrl, cfg.DBScheme, cfg.DBUser, cfg.DBPasswd)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("open %s store err: %w", cfg.DBDialect, err)
		}
		lb.store = store.NewStore(ctx, dao, loggers(config.StoreLog))
	}
	lb.dsdk = dingsdk.NewDingSdk(cfg.DingUrl)
	lb.balanceListen = balancelisten.NewBalanceListen(ctx, lb.balance, lb.user,
		time.Duration(cfg.Ticker)*time.Second, lb.store, lb.dsdk, loggers(config.ListenLog))
	return lb, nil
}

func (lb *LendingBalance) User() solana.PublicKey {
	return lb.user
}

// Player is the wallet that signs deposits and redeems.
func (lb *LendingBalance) Player() solana.PublicKey {
	return lb.backend.Player()
}

func (lb *LendingBalance) Start() error {
	if err := lb.env.Start(); err != nil {
		return err
	}
	version, err := lb.backend.Version()
	if err != nil {
		return fmt.Errorf("rpc node is not available, err: %w", err)
	}
	lb.log.Printf("rpc node version: %s", version)
	if lb.store != nil {
		lb.store.Start()
	}
	lb.log.Printf("lending balance has started......")
	return nil
}

func (lb *LendingBalance) Stop() {
	lb.cancel()
	if lb.store != nil {
		lb.store.Stop()
	}
	lb.env.Stop()
	lb.log.Printf("lending balance has stopped......")
}

func (lb *LendingBalance) Balance(user solana.PublicKey) (*balance.Report, error) {
	if user.IsZero() {
		user = lb.user
	}
	if user.IsZero() {
		return nil, fmt.Errorf("user is not set, config key or user is required")
	}
	return lb.balance.Balance(user)
}

// Watch polls the user balance and serves the http api until the context
// ends.
func (lb *LendingBalance) Watch() error {
	if lb.user.IsZero() {
		return fmt.Errorf("user is not set, config key or user is required")
	}
	lb.balanceListen.Start()
	lb.StartRPC()
	<-lb.ctx.Done()
	lb.StopRPC()
	lb.balanceListen.Stop()
	return nil
}
