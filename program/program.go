package program

import "github.com/gagliardetto/solana-go"

var (
	Token           = solana.TokenProgramID
	AssociatedToken = solana.SPLAssociatedTokenAccountProgramID
	System          = solana.SystemProgramID
	SysClock        = solana.SysVarClockPubkey
	SysRent         = solana.SysVarRentPubkey
	TulipLending    = solana.MustPublicKeyFromBase58("4bcFeLv4nydFrsZqV5CgwCVrPhkQKsXtzfy2KyMz7ozM")
	TulipLendingMkt = solana.MustPublicKeyFromBase58("D1cqtVThyebK9KXKGXrCEuiqaNf5L4UfM1vHgCqiJxym")
)

var (
	USDC   = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	TuUSDC = solana.MustPublicKeyFromBase58("Amig8TisuLpzun8XyGfC5HJHHGUQEscjLgoTWsCCKihg")
)

var (
	Tulip_Usdc_Reserve         = solana.MustPublicKeyFromBase58("FTkSmGsJ3ZqDSHdcnY7ejN1pWV3Ej7i88MYpZyyaqgGt")
	Tulip_Usdc_Oracle          = solana.MustPublicKeyFromBase58("ExzpbWgczTgd8J58BrnESndmzBkRVfc6PhFjSGiQXgAB")
	Tulip_Usdc_LiquiditySupply = solana.MustPublicKeyFromBase58("64QJd6MYXUjCBvCaZKaqxiKmaMkPUdNonE1KuY1YoGGb")
)
