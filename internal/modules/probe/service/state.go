package service

import (
	"sync/atomic"
	"time"
)

// State — состояние процесса для проб и /healthz.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	headsConnected atomic.Bool
	lastHead       atomic.Uint64
	lastHeadUnix   atomic.Int64 // unix seconds
	lastRefresh    atomic.Int64 // unix seconds
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetHeadsConnected(v bool) { s.headsConnected.Store(v) }
func (s *State) HeadsConnected() bool     { return s.headsConnected.Load() }

// TouchHead запоминает номер последнего блока и время его получения.
func (s *State) TouchHead(number uint64, t time.Time) {
	s.lastHead.Store(number)
	s.lastHeadUnix.Store(t.Unix())
}

func (s *State) LastHead() (uint64, time.Time) {
	return s.lastHead.Load(), unix(s.lastHeadUnix.Load())
}

func (s *State) TouchRefresh(t time.Time) { s.lastRefresh.Store(t.Unix()) }
func (s *State) LastRefresh() time.Time  { return unix(s.lastRefresh.Load()) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func unix(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
