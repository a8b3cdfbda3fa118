package store

import "time"

type BalanceSnapshot struct {
	Id               uint64    `gorm:"primaryKey;autoIncrement"`
	User             string    `gorm:"type:varchar(48);not null;index:idx_user_reserve"`
	Reserve          string    `gorm:"type:varchar(48);not null;index:idx_user_reserve"`
	CollateralAmount uint64    `gorm:"not null"`
	CollateralSupply uint64    `gorm:"not null"`
	TotalLiquidity   string    `gorm:"type:varchar(80);not null"`
	Balance          string    `gorm:"type:varchar(80);not null"`
	Slot             uint64    `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
}
