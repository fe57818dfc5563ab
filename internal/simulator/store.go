// Package simulator is an in-process stand-in for the live-market backend:
// an in-memory lot store, the bid validation rules, the three REST endpoints
// the synchronizer consumes, and the push events the real backend emits.
package simulator

import (
	"fmt"
	"sync"

	"livemarket-sync/internal/models"
)

// LotStore defines storage for the simulated backend
type LotStore interface {
	AddLot(lot models.Lot)
	GetLot(lotID int64) (models.Lot, error)
	ListLots() []models.Lot
	RecordBid(lotID int64, bid models.Bid) error
	SetApproval(lotID int64, approved bool) error
	SetStatus(lotID int64, status string) error
}

// MemoryStore is a concurrency-safe in-memory implementation of LotStore
type MemoryStore struct {
	mu    sync.RWMutex
	lots  map[int64]models.Lot
	order []int64 // insertion order, keeps listings stable
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lots: make(map[int64]models.Lot)}
}

// AddLot registers a lot with the store, replacing any lot with the same id.
func (s *MemoryStore) AddLot(lot models.Lot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lots[lot.LotID]; !ok {
		s.order = append(s.order, lot.LotID)
	}
	s.lots[lot.LotID] = lot
}

// GetLot returns one lot by id
func (s *MemoryStore) GetLot(lotID int64) (models.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return models.Lot{}, fmt.Errorf("get lot %d: %w", lotID, ErrLotNotFound)
	}
	return cloneLot(lot), nil
}

// ListLots returns all lots in insertion order
func (s *MemoryStore) ListLots() []models.Lot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lots := make([]models.Lot, 0, len(s.order))
	for _, id := range s.order {
		lots = append(lots, cloneLot(s.lots[id]))
	}
	return lots
}

// RecordBid appends a bid to a lot's history and advances its current bid
func (s *MemoryStore) RecordBid(lotID int64, bid models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return fmt.Errorf("record bid for lot %d: %w", lotID, ErrLotNotFound)
	}
	lot.BidHistory = append(lot.BidHistory, bid)
	lot.CurrentBid = bid.Amount
	s.lots[lotID] = lot
	return nil
}

// SetApproval flips a lot's approved-for-live flag
func (s *MemoryStore) SetApproval(lotID int64, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return fmt.Errorf("approve lot %d: %w", lotID, ErrLotNotFound)
	}
	lot.ApprovedForLive = approved
	s.lots[lotID] = lot
	return nil
}

// SetStatus moves a lot to another auction status
func (s *MemoryStore) SetStatus(lotID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return fmt.Errorf("set status of lot %d: %w", lotID, ErrLotNotFound)
	}
	lot.Status = status
	s.lots[lotID] = lot
	return nil
}

// cloneLot copies a lot deeply enough that callers cannot mutate the store.
func cloneLot(lot models.Lot) models.Lot {
	if lot.Car != nil {
		car := *lot.Car
		if car.Dealer != nil {
			dealer := *car.Dealer
			car.Dealer = &dealer
		}
		lot.Car = &car
	}
	lot.BidHistory = append([]models.Bid(nil), lot.BidHistory...)
	return lot
}
