package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

type DraftConfig struct {
	Bridge      BridgeConfig
	IdleTimeout time.Duration
}

func DefaultDraftConfig() DraftConfig {
	return DraftConfig{
		Bridge:      DefaultBridgeConfig(),
		IdleTimeout: 30 * time.Minute,
	}
}

type draftEntry struct {
	id        string
	ownerID   string
	bridge    *ClassifierBridge
	openedAt  time.Time
	touchedAt time.Time
	// submitting is set while a Submit call owns the draft.
	submitting bool
}

// DraftUseCase owns the open report forms. Each draft has its own classifier
// bridge, torn down on submit, discard, idle expiry or shutdown.
type DraftUseCase struct {
	analyzer   ports.IncidentAnalyzer
	reports    ports.ReportService
	cfg        DraftConfig
	observer   AnalysisObserver
	bridgeOpts []BridgeOption
	logger     *slog.Logger
	now        func() time.Time

	mu     sync.Mutex
	drafts map[string]*draftEntry
}

func NewDraftUseCase(
	analyzer ports.IncidentAnalyzer,
	reports ports.ReportService,
	cfg DraftConfig,
	observer AnalysisObserver,
	opts ...BridgeOption,
) *DraftUseCase {
	if observer == nil {
		observer = noopAnalysisObserver{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultDraftConfig().IdleTimeout
	}
	bridgeOpts := append([]BridgeOption{WithAnalysisObserver(observer)}, opts...)
	return &DraftUseCase{
		analyzer:   analyzer,
		reports:    reports,
		cfg:        cfg,
		observer:   observer,
		bridgeOpts: bridgeOpts,
		logger:     slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
		drafts:     make(map[string]*draftEntry),
	}
}

func (uc *DraftUseCase) Open(ctx context.Context, user domain.User) (*domain.Draft, error) {
	if user.ID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "open draft", errors.New("user is required"))
	}
	uc.Sweep(ctx)

	now := uc.now()
	entry := &draftEntry{
		id:        uuid.NewString(),
		ownerID:   user.ID,
		bridge:    NewClassifierBridge(uc.analyzer, uc.cfg.Bridge, uc.bridgeOpts...),
		openedAt:  now,
		touchedAt: now,
	}

	uc.mu.Lock()
	uc.drafts[entry.id] = entry
	active := len(uc.drafts)
	uc.mu.Unlock()
	uc.observer.SetActiveDrafts(active)

	return entry.snapshot(now), nil
}

func (uc *DraftUseCase) State(_ context.Context, user domain.User, draftID string) (*domain.Draft, error) {
	entry, touched, err := uc.lookup(user, draftID, false)
	if err != nil {
		return nil, err
	}
	return entry.snapshot(touched), nil
}

func (uc *DraftUseCase) UpdateDescription(_ context.Context, user domain.User, draftID, description string) (*domain.Draft, error) {
	entry, touched, err := uc.lookup(user, draftID, true)
	if err != nil {
		return nil, err
	}
	entry.bridge.Update(description)
	return entry.snapshot(touched), nil
}

// Watch streams bridge state changes. The returned stop func must be called
// when the caller is done; the channel is closed when the draft goes away.
func (uc *DraftUseCase) Watch(_ context.Context, user domain.User, draftID string) (<-chan domain.AnalysisState, func(), error) {
	entry, _, err := uc.lookup(user, draftID, false)
	if err != nil {
		return nil, nil, err
	}
	ch, stop := entry.bridge.Subscribe()
	return ch, stop, nil
}

// Submit files the report using whatever analysis the form holds right now.
// It never waits for or triggers classification.
func (uc *DraftUseCase) Submit(
	ctx context.Context,
	user domain.User,
	draftID string,
	submission domain.ReportSubmission,
) (*domain.Report, error) {
	entry, err := uc.claim(user, draftID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(submission.Description) == "" {
		submission.Description = entry.bridge.Description()
	}
	summary := ""
	if state := entry.bridge.State(); state.Analysis != nil {
		summary = state.Analysis.Summary
	}

	report, err := uc.reports.Submit(ctx, user, submission, summary)
	if err != nil {
		uc.mu.Lock()
		entry.submitting = false
		uc.mu.Unlock()
		return nil, err
	}
	uc.remove(entry.id)
	return report, nil
}

// claim marks the draft as being submitted so a concurrent Submit of the
// same form fails instead of filing a second report.
func (uc *DraftUseCase) claim(user domain.User, draftID string) (*draftEntry, error) {
	entry, _, err := uc.lookup(user, draftID, false)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if current, ok := uc.drafts[draftID]; !ok || current != entry || entry.submitting {
		return nil, domain.WrapError(domain.ErrNotFound, "submit draft", fmt.Errorf("draft %s is already submitted", draftID))
	}
	entry.submitting = true
	return entry, nil
}

func (uc *DraftUseCase) Discard(_ context.Context, user domain.User, draftID string) error {
	entry, _, err := uc.lookup(user, draftID, false)
	if err != nil {
		return err
	}
	uc.remove(entry.id)
	return nil
}

func (uc *DraftUseCase) DiscardAll(_ context.Context, user domain.User) int {
	uc.mu.Lock()
	victims := make([]*draftEntry, 0)
	for id, entry := range uc.drafts {
		if entry.ownerID == user.ID {
			victims = append(victims, entry)
			delete(uc.drafts, id)
		}
	}
	active := len(uc.drafts)
	uc.mu.Unlock()

	uc.closeAll(victims)
	uc.observer.SetActiveDrafts(active)
	return len(victims)
}

// Sweep tears down drafts that have not been edited within the idle timeout.
func (uc *DraftUseCase) Sweep(context.Context) int {
	cutoff := uc.now().Add(-uc.cfg.IdleTimeout)

	uc.mu.Lock()
	victims := make([]*draftEntry, 0)
	for id, entry := range uc.drafts {
		if entry.touchedAt.Before(cutoff) && !entry.submitting {
			victims = append(victims, entry)
			delete(uc.drafts, id)
		}
	}
	active := len(uc.drafts)
	uc.mu.Unlock()

	if len(victims) == 0 {
		return 0
	}
	uc.closeAll(victims)
	uc.observer.SetActiveDrafts(active)
	uc.logger.Info("drafts_expired", "count", len(victims), "active", active)
	return len(victims)
}

// RunJanitor sweeps idle drafts every interval until ctx is done.
func (uc *DraftUseCase) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.Sweep(ctx)
		}
	}
}

// CloseAll tears down every draft. Used on shutdown.
func (uc *DraftUseCase) CloseAll() {
	uc.mu.Lock()
	victims := make([]*draftEntry, 0, len(uc.drafts))
	for id, entry := range uc.drafts {
		victims = append(victims, entry)
		delete(uc.drafts, id)
	}
	uc.mu.Unlock()

	uc.closeAll(victims)
	uc.observer.SetActiveDrafts(0)
}

func (uc *DraftUseCase) lookup(user domain.User, draftID string, touch bool) (*draftEntry, time.Time, error) {
	now := uc.now()

	uc.mu.Lock()
	entry, ok := uc.drafts[draftID]
	if !ok {
		uc.mu.Unlock()
		return nil, time.Time{}, domain.WrapError(domain.ErrNotFound, "lookup draft", fmt.Errorf("draft %s", draftID))
	}
	if entry.ownerID != user.ID {
		uc.mu.Unlock()
		return nil, time.Time{}, domain.WrapError(domain.ErrForbidden, "lookup draft", fmt.Errorf("draft %s belongs to another user", draftID))
	}
	if now.Sub(entry.touchedAt) > uc.cfg.IdleTimeout {
		delete(uc.drafts, draftID)
		active := len(uc.drafts)
		uc.mu.Unlock()
		entry.bridge.Close()
		uc.observer.SetActiveDrafts(active)
		return nil, time.Time{}, domain.WrapError(domain.ErrNotFound, "lookup draft", fmt.Errorf("draft %s expired", draftID))
	}
	if touch {
		entry.touchedAt = now
	}
	touched := entry.touchedAt
	uc.mu.Unlock()
	return entry, touched, nil
}

func (uc *DraftUseCase) remove(id string) {
	uc.mu.Lock()
	entry, ok := uc.drafts[id]
	delete(uc.drafts, id)
	active := len(uc.drafts)
	uc.mu.Unlock()

	if ok {
		entry.bridge.Close()
	}
	uc.observer.SetActiveDrafts(active)
}

func (uc *DraftUseCase) closeAll(entries []*draftEntry) {
	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(e *draftEntry) {
			defer wg.Done()
			e.bridge.Close()
		}(entry)
	}
	wg.Wait()
}

func (e *draftEntry) snapshot(updatedAt time.Time) *domain.Draft {
	return &domain.Draft{
		ID:          e.id,
		OwnerID:     e.ownerID,
		Description: e.bridge.Description(),
		State:       e.bridge.State(),
		OpenedAt:    e.openedAt,
		UpdatedAt:   updatedAt,
	}
}
