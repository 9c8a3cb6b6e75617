package market

import (
	"fmt"
	"sync"

	"llama_lend/internal/errs"
)

// Registry — поиск рынка по id.
type Registry interface {
	Market(chainID int64, marketID string) (Handle, error)
}

// StaticRegistry — реестр, заполненный при старте.
type StaticRegistry struct {
	mu      sync.RWMutex
	markets map[string]Handle
}

func NewStaticRegistry(handles ...Handle) *StaticRegistry {
	r := &StaticRegistry{markets: make(map[string]Handle, len(handles))}
	for _, h := range handles {
		r.Add(h)
	}
	return r
}

func registryKey(chainID int64, marketID string) string {
	return fmt.Sprintf("%d/%s", chainID, marketID)
}

func (r *StaticRegistry) Add(h Handle) {
	info := h.Info()
	r.mu.Lock()
	r.markets[registryKey(info.ChainID, info.ID)] = h
	r.mu.Unlock()
}

func (r *StaticRegistry) Market(chainID int64, marketID string) (Handle, error) {
	r.mu.RLock()
	h, ok := r.markets[registryKey(chainID, marketID)]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.Configuration("Registry.Market", "market %s not found on chain %d", marketID, chainID)
	}
	return h, nil
}
