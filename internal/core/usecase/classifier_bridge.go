package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

// ScheduledTask is a one-shot task that can be cancelled before it fires.
// *time.Timer satisfies it.
type ScheduledTask interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) ScheduledTask
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) ScheduledTask {
	return time.AfterFunc(d, f)
}

func SystemScheduler() Scheduler {
	return systemScheduler{}
}

const (
	AnalysisOutcomeSuccess = "success"
	AnalysisOutcomeFailure = "failure"
	AnalysisOutcomeStale   = "stale"
)

// AnalysisObserver receives classifier bridge telemetry.
type AnalysisObserver interface {
	ObserveAnalysis(outcome string, duration time.Duration)
	ObserveSuperseded()
	SetActiveDrafts(n int)
}

type noopAnalysisObserver struct{}

func (noopAnalysisObserver) ObserveAnalysis(string, time.Duration) {}
func (noopAnalysisObserver) ObserveSuperseded()                    {}
func (noopAnalysisObserver) SetActiveDrafts(int)                   {}

type BridgeConfig struct {
	// MinChars is the description length (in characters) that must be exceeded
	// before classification is attempted.
	MinChars    int
	QuietPeriod time.Duration
	CallTimeout time.Duration
}

func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		MinChars:    20,
		QuietPeriod: 1500 * time.Millisecond,
		CallTimeout: 15 * time.Second,
	}
}

func (c BridgeConfig) normalize() BridgeConfig {
	out := c
	def := DefaultBridgeConfig()
	if out.MinChars < 0 {
		out.MinChars = def.MinChars
	}
	if out.QuietPeriod <= 0 {
		out.QuietPeriod = def.QuietPeriod
	}
	if out.CallTimeout <= 0 {
		out.CallTimeout = def.CallTimeout
	}
	return out
}

type BridgeOption func(*ClassifierBridge)

func WithScheduler(s Scheduler) BridgeOption {
	return func(b *ClassifierBridge) {
		if s != nil {
			b.scheduler = s
		}
	}
}

func WithAnalysisObserver(o AnalysisObserver) BridgeOption {
	return func(b *ClassifierBridge) {
		if o != nil {
			b.observer = o
		}
	}
}

func WithBridgeLogger(l *slog.Logger) BridgeOption {
	return func(b *ClassifierBridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// ClassifierBridge turns a stream of description edits into at most one
// scheduled classification request and publishes the latest accepted result.
//
// All transitions run under mu. A response is accepted only when its sequence
// number is the most recently issued one; anything older is dropped.
type ClassifierBridge struct {
	analyzer  ports.IncidentAnalyzer
	cfg       BridgeConfig
	scheduler Scheduler
	observer  AnalysisObserver
	logger    *slog.Logger

	baseCtx   context.Context
	cancelAll context.CancelFunc
	inFlight  sync.WaitGroup

	mu          sync.Mutex
	description string
	analysis    *domain.IncidentAnalysis
	loading     bool
	revision    uint64
	pending     ScheduledTask
	generation  uint64
	seq         uint64
	closed      bool
	subscribers map[int]chan domain.AnalysisState
	nextSubID   int
}

func NewClassifierBridge(analyzer ports.IncidentAnalyzer, cfg BridgeConfig, opts ...BridgeOption) *ClassifierBridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &ClassifierBridge{
		analyzer:    analyzer,
		cfg:         cfg.normalize(),
		scheduler:   SystemScheduler(),
		observer:    noopAnalysisObserver{},
		logger:      slog.Default(),
		baseCtx:     ctx,
		cancelAll:   cancel,
		subscribers: make(map[int]chan domain.AnalysisState),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Update records a new description and drives the debounce state machine.
func (b *ClassifierBridge) Update(description string) domain.AnalysisState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return b.stateLocked()
	}
	b.description = description

	if utf8.RuneCountInString(description) <= b.cfg.MinChars {
		b.cancelPendingLocked()
		// Invalidate whatever is in flight for the previous text.
		b.seq++
		b.setLocked(nil, false)
		return b.stateLocked()
	}

	if b.cancelPendingLocked() {
		b.observer.ObserveSuperseded()
	}
	gen := b.generation
	b.pending = b.scheduler.AfterFunc(b.cfg.QuietPeriod, func() { b.fire(gen) })
	b.setLocked(b.analysis, true)
	return b.stateLocked()
}

func (b *ClassifierBridge) State() domain.AnalysisState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *ClassifierBridge) Description() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.description
}

// Subscribe returns a channel that always holds the latest state. The current
// state is delivered immediately. The channel is closed on unsubscribe or Close.
func (b *ClassifierBridge) Subscribe() (<-chan domain.AnalysisState, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.AnalysisState, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = ch
	ch <- b.stateLocked()

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
}

// Close cancels the scheduled request, aborts in-flight calls and waits for them.
func (b *ClassifierBridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.cancelPendingLocked()
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()

	b.cancelAll()
	b.inFlight.Wait()
}

func (b *ClassifierBridge) fire(gen uint64) {
	b.mu.Lock()
	if b.closed || b.pending == nil || gen != b.generation {
		b.mu.Unlock()
		return
	}
	b.pending = nil
	b.seq++
	seq := b.seq
	text := b.description
	b.inFlight.Add(1)
	b.mu.Unlock()

	defer b.inFlight.Done()
	b.issue(seq, text)
}

func (b *ClassifierBridge) issue(seq uint64, text string) {
	ctx, cancel := context.WithTimeout(b.baseCtx, b.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	analysis, err := b.analyzer.Analyze(ctx, text)
	if err == nil {
		err = analysis.Validate()
	}
	elapsed := time.Since(start)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if seq != b.seq {
		b.observer.ObserveAnalysis(AnalysisOutcomeStale, elapsed)
		b.logger.Debug("analysis_stale_dropped", "seq", seq, "latest_seq", b.seq)
		return
	}

	// Another request may already be waiting out its quiet period.
	loading := b.pending != nil
	if err != nil {
		b.observer.ObserveAnalysis(AnalysisOutcomeFailure, elapsed)
		b.logger.Warn("analysis_failed",
			"seq", seq,
			"duration_ms", float64(elapsed.Microseconds())/1000.0,
			"error", err,
		)
		b.setLocked(b.analysis, loading)
		return
	}

	b.observer.ObserveAnalysis(AnalysisOutcomeSuccess, elapsed)
	result := analysis.Clone()
	b.setLocked(&result, loading)
}

// cancelPendingLocked reports whether a scheduled request was superseded. A
// timer that already fired but is still waiting on mu counts too: the
// generation bump makes fire drop it.
func (b *ClassifierBridge) cancelPendingLocked() bool {
	b.generation++
	if b.pending == nil {
		return false
	}
	b.pending.Stop()
	b.pending = nil
	return true
}

func (b *ClassifierBridge) setLocked(analysis *domain.IncidentAnalysis, loading bool) {
	if analysis == b.analysis && loading == b.loading {
		return
	}
	b.analysis = analysis
	b.loading = loading
	b.revision++

	state := b.stateLocked()
	for _, ch := range b.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

func (b *ClassifierBridge) stateLocked() domain.AnalysisState {
	state := domain.AnalysisState{
		Loading:  b.loading,
		Revision: b.revision,
	}
	if b.analysis != nil {
		cp := b.analysis.Clone()
		state.Analysis = &cp
	}
	return state
}
