package watchlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Notivest/price-fetcher/internal/market"
	"github.com/Notivest/price-fetcher/internal/store"
)

var (
	ErrExists   = errors.New("symbol already exists")
	ErrNotFound = errors.New("symbol not found")
)

// Service manages the watched symbol roster. Symbols are normalized to
// trimmed uppercase before they reach the store.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) List() ([]market.WatchListItem, error) {
	return s.store.WatchlistAll()
}

func (s *Service) Add(item market.WatchListItem) error {
	key := normalize(item.Symbol)
	if key == "" {
		return fmt.Errorf("symbol is required")
	}
	item.Symbol = key
	ok, err := s.store.WatchlistAdd(item)
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *Service) Patch(symbol string, enabled *bool, priority *int) error {
	ok, err := s.store.WatchlistUpdate(normalize(symbol), enabled, priority)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(symbol string) error {
	ok, err := s.store.WatchlistRemove(normalize(symbol))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Contains(symbol string) (bool, error) {
	return s.store.WatchlistContains(normalize(symbol))
}

// EnabledSymbols returns the enabled symbols in listing order, parsed into
// SymbolIds. This feeds every refresh tick.
func (s *Service) EnabledSymbols() ([]market.SymbolId, error) {
	items, err := s.store.WatchlistAll()
	if err != nil {
		return nil, err
	}
	out := make([]market.SymbolId, 0, len(items))
	for _, item := range items {
		if !item.Enabled {
			continue
		}
		out = append(out, market.ParseSymbol(item.Symbol))
	}
	return out, nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
