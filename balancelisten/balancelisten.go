package balancelisten

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/egaotan/solana-lending-balance/balance"
	"github.com/egaotan/solana-lending-balance/dingsdk"
	"github.com/egaotan/solana-lending-balance/store"
)

type BalanceSource interface {
	Balance(user solana.PublicKey) (*balance.Report, error)
	Reserve() solana.PublicKey
}

type BalanceListen struct {
	ctx     context.Context
	wg      sync.WaitGroup
	log     *log.Logger
	source  BalanceSource
	user    solana.PublicKey
	ticker  time.Duration
	store   *store.Store
	dsdk    *dingsdk.DingSdk
	last    *big.Int
	updates int
}

// NewBalanceListen polls the balance of user every ticker. st and dsdk may be
// nil.
func NewBalanceListen(ctx context.Context, source BalanceSource, user solana.PublicKey, ticker time.Duration,
	st *store.Store, dsdk *dingsdk.DingSdk, logger *log.Logger) *BalanceListen {
	if logger == nil {
		logger = log.Default()
	}
	bl := &BalanceListen{
		ctx:    ctx,
		log:    logger,
		source: source,
		user:   user,
		ticker: ticker,
		store:  st,
		dsdk:   dsdk,
	}
	return bl
}

func (bl *BalanceListen) Start() {
	bl.wg.Add(1)
	go bl.AccountBalance()
}

func (bl *BalanceListen) Stop() {
	bl.wg.Wait()
}

func (bl *BalanceListen) AccountBalance() {
	defer bl.wg.Done()
	bl.restore()
	bl.check()
	timer := time.NewTicker(bl.ticker)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			bl.check()
		case <-bl.ctx.Done():
			return
		}
	}
}

// restore starts from the last stored balance, so an unchanged balance after
// a restart is neither stored nor notified again.
func (bl *BalanceListen) restore() {
	if bl.store == nil {
		return
	}
	reserve := bl.source.Reserve()
	snapshot, err := bl.store.GetLatestBalance(bl.user.String(), reserve.String())
	if err != nil {
		bl.log.Printf("latest balance of user(%s) err: %s", bl.user, err)
		return
	}
	if snapshot == nil {
		return
	}
	last, ok := new(big.Int).SetString(snapshot.Balance, 10)
	if !ok {
		bl.log.Printf("latest balance of user(%s) is not valid: %s", bl.user, snapshot.Balance)
		return
	}
	bl.log.Printf("user(%s) restore balance: %s, slot: %d", bl.user, last, snapshot.Slot)
	bl.last = last
}

func (bl *BalanceListen) check() {
	report, err := bl.source.Balance(bl.user)
	if err != nil {
		bl.log.Printf("balance of user(%s) err: %s", bl.user, err)
		return
	}
	if bl.last != nil && bl.last.Cmp(report.Balance()) == 0 {
		return
	}
	bl.update(report)
}

func (bl *BalanceListen) update(report *balance.Report) {
	oldBalance := report.Token.AmountUi(bl.last)
	newBalance := report.BalanceUi()
	bl.log.Printf("user(%s) balance update: %s -> %s %s", bl.user, oldBalance, newBalance, report.Token.Symbol)
	if bl.store != nil {
		bl.store.StoreBalance(&store.BalanceSnapshot{
			User:             report.User.String(),
			Reserve:          report.Reserve.String(),
			CollateralAmount: report.CollateralAmount,
			CollateralSupply: report.CollateralSupply,
			TotalLiquidity:   report.Result.TotalLiquidity.String(),
			Balance:          report.Balance().String(),
			Slot:             report.Slot,
			CreatedAt:        time.Now(),
		})
	}
	if bl.last != nil {
		bl.notify(report.Token.Symbol, oldBalance, newBalance)
	}
	bl.last = new(big.Int).Set(report.Balance())
	bl.updates++
}

func (bl *BalanceListen) notify(symbol string, oldBalance, newBalance decimal.Decimal) {
	if !bl.dsdk.Enabled() {
		return
	}
	ttStr := time.Now().Format("2006-01-02 15:04:05")
	content := fmt.Sprintf("lending balance update: \n%s -> %s %s (%s);\ntime: %s;",
		oldBalance.StringFixed(2), newBalance.StringFixed(2), symbol,
		newBalance.Sub(oldBalance).StringFixed(2), ttStr)
	if _, err := bl.dsdk.Notify(bl.ctx, dingsdk.NewTextNotify(content)); err != nil {
		bl.log.Printf("notify balance update err: %s", err)
	}
}
