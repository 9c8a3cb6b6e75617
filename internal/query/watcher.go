package query

import (
	"sync"

	"llama_lend/internal/models"
)

// Watcher держит последние параметры узла. State всегда отдаёт значение
// для последних параметров: ответ старого запроса попадает в кэш под своим ключом,
// но наружу не виден.
type Watcher[P models.Scoped, T any] struct {
	node *Node[P, T]

	mu      sync.Mutex
	params  P
	set     bool
	enabled bool
}

func (n *Node[P, T]) Watch() *Watcher[P, T] {
	return &Watcher[P, T]{node: n, enabled: true}
}

// Set меняет параметры и запускает загрузку для них.
func (w *Watcher[P, T]) Set(p P) State[T] {
	w.mu.Lock()
	w.params, w.set = p, true
	enabled := w.enabled
	w.mu.Unlock()
	return w.node.Query(p, enabled)
}

func (w *Watcher[P, T]) SetEnabled(v bool) {
	w.mu.Lock()
	w.enabled = v
	w.mu.Unlock()
}

func (w *Watcher[P, T]) Params() (P, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.params, w.set
}

func (w *Watcher[P, T]) State() State[T] {
	w.mu.Lock()
	p, set, enabled := w.params, w.set, w.enabled
	w.mu.Unlock()
	if !set {
		return State[T]{}
	}
	return w.node.Query(p, enabled)
}
