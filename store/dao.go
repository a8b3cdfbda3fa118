package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/egaotan/solana-lending-balance/config"
)

type Dao struct {
	db *gorm.DB
}

func dialector(dialect, url, scheme, user, passwd string) (gorm.Dialector, error) {
	switch dialect {
	case config.DialectMysql, "":
		return mysql.Open(user + ":" + passwd + "@tcp(" + url + ")/" +
			scheme + "?charset=utf8&parseTime=True"), nil
	case config.DialectSqlite:
		return sqlite.Open(url), nil
	}
	return nil, fmt.Errorf("db dialect %s is not support", dialect)
}

func NewDao(dialect, url, scheme, user, passwd string) (*Dao, error) {
	d, err := dialector(dialect, url, scheme, user, passwd)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(&BalanceSnapshot{})
	if err != nil {
		return nil, err
	}
	return &Dao{db: db}, nil
}

func (dao *Dao) SaveBalanceSnapshot(snapshot *BalanceSnapshot) error {
	return dao.db.Create(snapshot).Error
}

func (dao *Dao) SelectLatestBalance(user, reserve string) (*BalanceSnapshot, error) {
	snapshots := make([]*BalanceSnapshot, 0, 1)
	res := dao.db.Where(&BalanceSnapshot{User: user, Reserve: reserve}).Order("id desc").Limit(1).Find(&snapshots)
	if res.Error != nil {
		return nil, res.Error
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return snapshots[0], nil
}

func (dao *Dao) SelectBalances(user string, limit int) ([]*BalanceSnapshot, error) {
	snapshots := make([]*BalanceSnapshot, 0)
	res := dao.db.Where(&BalanceSnapshot{User: user}).Order("id desc").Limit(limit).Find(&snapshots)
	return snapshots, res.Error
}
