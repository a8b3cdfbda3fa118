package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/egaotan/solana-lending-balance/config"
	"github.com/egaotan/solana-lending-balance/env"
	"github.com/egaotan/solana-lending-balance/lendingbalance/app"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	go shutdown(cancel, quit)

	if err := newRootCmd(ctx).Execute(); err != nil {
		os.Exit(1)
	}
}

func shutdown(cancel context.CancelFunc, quit <-chan os.Signal) {
	osCall := <-quit
	fmt.Printf("System call: %v, lending balance is shutting down......\n", osCall)
	cancel()
}

func newRootCmd(ctx context.Context) *cobra.Command {
	var workSpace string
	var cfg *config.Config
	rootCmd := &cobra.Command{
		Use:           "lendingbalance",
		Short:         "Read and move a user's balance in a solana lending reserve.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadWorkSpace(workSpace)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVarP(&workSpace, "workspace", "w", ".", "directory holding config.json and tokens.json")

	run := func(f func(lb *app.LendingBalance) error) error {
		lb, err := app.NewLendingBalance(ctx, cfg)
		if err != nil {
			return err
		}
		if err := lb.Start(); err != nil {
			lb.Stop()
			return err
		}
		defer lb.Stop()
		return f(lb)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "balance",
			Short: "Print the liquidity the user's collateral redeems for",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(lb *app.LendingBalance) error {
					report, err := lb.Balance(lb.User())
					if err != nil {
						return err
					}
					fmt.Printf("user: %s\n", report.User)
					fmt.Printf("collateral: %d / %d\n", report.CollateralAmount, report.CollateralSupply)
					fmt.Printf("total liquidity: %s %s\n", report.TotalLiquidityUi(), report.Token.Symbol)
					fmt.Printf("balance: %s %s\n", report.BalanceUi(), report.Token.Symbol)
					wallet, err := lb.WalletBalance(report.User)
					if err != nil {
						return err
					}
					printWallet(os.Stdout, wallet)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "deposit [amount]",
			Short: "Deposit liquidity, in base units, the whole wallet balance without amount",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount(args)
				if err != nil {
					return err
				}
				return run(func(lb *app.LendingBalance) error {
					return transferWithWallet(lb, "deposit", lb.Deposit, amount)
				})
			},
		},
		&cobra.Command{
			Use:   "redeem [amount]",
			Short: "Redeem collateral, in base units, the whole collateral balance without amount",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount(args)
				if err != nil {
					return err
				}
				return run(func(lb *app.LendingBalance) error {
					return transferWithWallet(lb, "withdraw", lb.Redeem, amount)
				})
			},
		},
		&cobra.Command{
			Use:   "tokens <tokenlist.json>",
			Short: "Import a solana token list into tokens.json",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return importTokens(ctx, args[0])
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Record and notify balance changes, serve the http api",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(lb *app.LendingBalance) error {
					return lb.Watch()
				})
			},
		},
	)
	return rootCmd
}

func loadWorkSpace(workSpace string) (*config.Config, error) {
	if err := os.Chdir(workSpace); err != nil {
		return nil, err
	}
	cfg, err := config.Load(config.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.WorkSpace, _ = os.Getwd()
	fmt.Printf("work space: %s\n", cfg.WorkSpace)

	t := time.Now()
	t_str := t.Format("2006-01-02")
	config.LogPath = fmt.Sprintf("%s%s_log/", config.LogPath, t_str)
	return cfg, nil
}

func importTokens(ctx context.Context, file string) error {
	tokenList, err := env.ReadTokenList(file)
	if err != nil {
		return err
	}
	e := env.NewEnv(ctx, config.TokensFile)
	if err := e.Start(); err != nil {
		return err
	}
	defer e.Stop()
	count := e.ImportTokenList(tokenList)
	if err := e.SaveTokens(); err != nil {
		return err
	}
	fmt.Printf("import %d tokens from %s into %s\n", count, file, config.TokensFile)
	return nil
}

func parseAmount(args []string) (*uint64, error) {
	if len(args) == 0 {
		return nil, nil
	}
	amount, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("amount %s is not valid, err: %w", args[0], err)
	}
	return &amount, nil
}

// transferWithWallet prints the wallet of the signer before and after the
// transfer.
func transferWithWallet(lb *app.LendingBalance, action string, transfer func(amount *uint64) (*app.TransferResult, error), amount *uint64) error {
	wallet, err := lb.WalletBalance(lb.Player())
	if err != nil {
		return err
	}
	printWallet(os.Stdout, wallet)
	if err := printTransfer(action, transfer, amount); err != nil {
		return err
	}
	wallet, err = lb.WalletBalance(lb.Player())
	if err != nil {
		return err
	}
	printWallet(os.Stdout, wallet)
	return nil
}

func printWallet(w io.Writer, wallet *app.WalletBalance) {
	fmt.Fprintf(w, "wallet: %s\n", wallet.Owner)
	fmt.Fprintf(w, "  SOL: %s\n", wallet.SolUi())
	fmt.Fprintf(w, "  %s: %s\n", wallet.LiquidityToken.Symbol, wallet.LiquidityUi())
	fmt.Fprintf(w, "  %s: %s\n", wallet.CollateralToken.Symbol, wallet.CollateralUi())
}

func printTransfer(action string, transfer func(amount *uint64) (*app.TransferResult, error), amount *uint64) error {
	result, err := transfer(amount)
	if err != nil {
		return err
	}
	if result.Skipped {
		fmt.Printf("nothing to %s, skip\n", action)
		return nil
	}
	fmt.Printf("%s %d, transaction: %s\n", action, result.Amount, result.Signature)
	return nil
}
