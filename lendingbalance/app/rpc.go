package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

type errorResponse struct {
	Error string `json:"error"`
}

func (lb *LendingBalance) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	g := router.Group("/api")
	g.GET("/balance", lb.getBalance)
	g.GET("/history", lb.getHistory)
	return router
}

func (lb *LendingBalance) StartRPC() {
	lb.httpServer = &http.Server{
		Addr:    lb.config.Listen,
		Handler: lb.router(),
	}
	lb.log.Printf("start rpc server on %s......", lb.config.Listen)
	go func() {
		if err := lb.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lb.log.Printf("ListenAndServe: %s", err.Error())
		}
	}()
}

func (lb *LendingBalance) StopRPC() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lb.httpServer.Shutdown(ctx); err != nil {
		lb.log.Printf("rpc server shutdown err: %s", err)
		return
	}
	lb.log.Printf("rpc server has stopped......")
}

func (lb *LendingBalance) queryUser(c *gin.Context) (solana.PublicKey, bool) {
	userStr, ok := c.GetQuery("user")
	if !ok || userStr == "" {
		if lb.user.IsZero() {
			c.JSON(http.StatusBadRequest, &errorResponse{Error: "parameter user is required"})
			return solana.PublicKey{}, false
		}
		return lb.user, true
	}
	user, err := solana.PublicKeyFromBase58(userStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, &errorResponse{Error: "parameter user is invalid: " + err.Error()})
		return solana.PublicKey{}, false
	}
	return user, true
}

func (lb *LendingBalance) getBalance(c *gin.Context) {
	user, ok := lb.queryUser(c)
	if !ok {
		return
	}
	report, err := lb.Balance(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, &errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, buildBalance(report))
}

func (lb *LendingBalance) getHistory(c *gin.Context) {
	if lb.store == nil {
		c.JSON(http.StatusServiceUnavailable, &errorResponse{Error: "store is not configured"})
		return
	}
	user, ok := lb.queryUser(c)
	if !ok {
		return
	}
	limit := DefaultHistoryLimit
	if limitStr, ok := c.GetQuery("limit"); ok {
		value, err := strconv.Atoi(limitStr)
		if err != nil || value <= 0 {
			c.JSON(http.StatusBadRequest, &errorResponse{Error: "parameter limit is invalid"})
			return
		}
		limit = value
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	snapshots, err := lb.store.GetBalances(user.String(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, &errorResponse{Error: err.Error()})
		return
	}
	token, err := lb.token(lb.config.LiquidityMint)
	if err != nil {
		lb.log.Printf("history of user(%s) without balance_ui, err: %s", user, err)
	}
	c.JSON(http.StatusOK, buildBalanceSnapshots(snapshots, token))
}
