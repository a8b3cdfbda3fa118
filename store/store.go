package store

import (
	"context"
	"log"
	"sync"
)

type Store struct {
	ctx         context.Context
	log         *log.Logger
	wg          sync.WaitGroup
	balanceChan chan *BalanceSnapshot
	dao         *Dao
}

func NewStore(ctx context.Context, dao *Dao, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{
		ctx:         ctx,
		log:         logger,
		balanceChan: make(chan *BalanceSnapshot, 32),
		dao:         dao,
	}
	return s
}

func (s *Store) Start() {
	s.wg.Add(1)
	go s.store()
}

// Stop waits for the writer to drain after the context is done.
func (s *Store) Stop() {
	s.wg.Wait()
}

func (s *Store) store() {
	defer s.wg.Done()
	for {
		select {
		case snapshot := <-s.balanceChan:
			s.save(snapshot)
		case <-s.ctx.Done():
			for {
				select {
				case snapshot := <-s.balanceChan:
					s.save(snapshot)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) save(snapshot *BalanceSnapshot) {
	if err := s.dao.SaveBalanceSnapshot(snapshot); err != nil {
		s.log.Printf("save balance snapshot of user(%s) err: %s", snapshot.User, err)
	}
}

func (s *Store) StoreBalance(snapshot *BalanceSnapshot) {
	select {
	case s.balanceChan <- snapshot:
	case <-s.ctx.Done():
	}
}

func (s *Store) GetLatestBalance(user, reserve string) (*BalanceSnapshot, error) {
	return s.dao.SelectLatestBalance(user, reserve)
}

func (s *Store) GetBalances(user string, limit int) ([]*BalanceSnapshot, error) {
	return s.dao.SelectBalances(user, limit)
}
