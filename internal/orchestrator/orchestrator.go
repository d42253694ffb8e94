package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/classify"
	"github.com/selvester69/notifications/internal/domain"
	"github.com/selvester69/notifications/internal/render"
	"github.com/selvester69/notifications/internal/store"
)

// Fatal processing errors. Per-channel failures never surface here;
// they become outcome entries instead.
var (
	// ErrTemplateNotFound means no template was resolvable for any
	// target channel. Retrying cannot fix it.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrPreferenceLookup means the preference collaborator was
	// unreachable and fail-open is disabled
	ErrPreferenceLookup = errors.New("preference lookup failed")
)

const trackingTimeout = 5 * time.Second

// Config controls orchestration policy
type Config struct {
	// DefaultLanguage is the template language resolved for every
	// lookup
	DefaultLanguage string

	// DefaultChannel is the channel whose template serves as fallback
	// when a target channel has no template of its own
	DefaultChannel domain.Channel

	// PreferenceFailOpen treats a failed preference lookup as an empty
	// preference set instead of failing the event
	PreferenceFailOpen bool
}

// Orchestrator coordinates one event's fan-out: classify, resolve
// templates and preferences, render per enabled channel, dispatch each
// branch in isolation, and track the outcomes.
type Orchestrator struct {
	classifier  *classify.Classifier
	templates   TemplateResolver
	preferences PreferenceReader
	tracker     Tracker
	dispatcher  Dispatcher
	cfg         Config
	log         *zap.Logger
}

// New creates an orchestrator
func New(classifier *classify.Classifier, templates TemplateResolver, preferences PreferenceReader,
	tracker Tracker, dispatcher Dispatcher, cfg Config, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		classifier:  classifier,
		templates:   templates,
		preferences: preferences,
		tracker:     tracker,
		dispatcher:  dispatcher,
		cfg:         cfg,
		log:         log,
	}
}

// ProcessEvent runs the full fan-out for one event and returns one
// outcome per attempted channel, in preference order. It returns an
// error only when a shared prerequisite fails: per-channel failures
// stay local to their outcome entry, so one failing channel never
// aborts the others.
func (o *Orchestrator) ProcessEvent(ctx context.Context, event *domain.Event) ([]domain.DispatchOutcome, error) {
	category := o.classifier.Classify(event.EventType)

	o.log.Info("Processing event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("user_id", event.UserID),
		zap.String("category", string(category)))

	// template and preference lookups are independent reads; run them
	// concurrently, but both must settle before any dispatch
	type templateResult struct {
		template *domain.Template
		err      error
	}
	defaultTemplateCh := make(chan templateResult, 1)
	go func() {
		template, err := o.templates.Lookup(ctx, event.EventType, o.cfg.DefaultChannel, o.cfg.DefaultLanguage)
		defaultTemplateCh <- templateResult{template: template, err: err}
	}()

	preferences, prefErr := o.preferences.ListEnabled(ctx, event.UserID, category)
	defaultResult := <-defaultTemplateCh

	if prefErr != nil {
		if !o.cfg.PreferenceFailOpen {
			return nil, fmt.Errorf("%w for user %s: %w", ErrPreferenceLookup, event.UserID, prefErr)
		}
		o.log.Warn("Preference lookup failed, treating as empty preference set",
			zap.String("user_id", event.UserID),
			zap.Error(prefErr))
		preferences = nil
	}

	// the store contract already filters, but a disabled record slipping
	// through must never produce a dispatch
	enabled := make([]*domain.Preference, 0, len(preferences))
	for _, preference := range preferences {
		if preference.Enabled {
			enabled = append(enabled, preference)
		}
	}
	preferences = enabled

	// absence of preference means do not notify, not a fault
	if len(preferences) == 0 {
		o.log.Info("No enabled channels for user",
			zap.String("user_id", event.UserID),
			zap.String("category", string(category)))
		return []domain.DispatchOutcome{}, nil
	}

	defaultTemplate := defaultResult.template
	if defaultResult.err != nil && !errors.Is(defaultResult.err, store.ErrNotFound) {
		return nil, fmt.Errorf("template lookup for %s: %w", event.EventType, defaultResult.err)
	}

	// resolve one template per target channel, falling back to the
	// default channel's template so a channel without its own template
	// still renders something
	templates := make([]*domain.Template, len(preferences))
	resolved := 0
	for i, preference := range preferences {
		template, err := o.resolveTemplate(ctx, event.EventType, preference.Channel, defaultTemplate)
		if err != nil {
			return nil, fmt.Errorf("template lookup for %s on %s: %w", event.EventType, preference.Channel, err)
		}
		if template != nil {
			resolved++
		}
		templates[i] = template
	}

	if resolved == 0 {
		return nil, fmt.Errorf("%w for event type %s", ErrTemplateNotFound, event.EventType)
	}

	// no dispatch is issued once the caller has cancelled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes := o.fanOut(ctx, event, preferences, templates)

	notificationID := uuid.NewString()
	go o.track(notificationID, event, outcomes)

	// in-flight branches ran to completion, but a cancelled caller
	// still sees the processing as cancelled
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	return outcomes, nil
}

// resolveTemplate returns the channel's own template, the default
// fallback, or nil when neither exists
func (o *Orchestrator) resolveTemplate(ctx context.Context, eventType string, channel domain.Channel, fallback *domain.Template) (*domain.Template, error) {
	if channel == o.cfg.DefaultChannel {
		return fallback, nil
	}

	template, err := o.templates.Lookup(ctx, eventType, channel, o.cfg.DefaultLanguage)
	if errors.Is(err, store.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return template, nil
}

// fanOut renders and dispatches one branch per enabled channel. The
// branches are independent: each only reads the shared event and its
// own template, and writes its own outcome slot. Branch contexts are
// detached from caller cancellation because a started delivery is not
// preemptible; the registry bounds each dispatch with its own timeout.
func (o *Orchestrator) fanOut(ctx context.Context, event *domain.Event, preferences []*domain.Preference, templates []*domain.Template) []domain.DispatchOutcome {
	branchCtx := context.WithoutCancel(ctx)
	outcomes := make([]domain.DispatchOutcome, len(preferences))

	var wg sync.WaitGroup
	for i, preference := range preferences {
		wg.Add(1)
		go func(i int, channel domain.Channel, template *domain.Template) {
			defer wg.Done()

			if template == nil {
				outcomes[i] = domain.DispatchOutcome{
					Channel:   channel,
					ErrorKind: domain.ErrorKindTemplateNotFound,
					Detail:    fmt.Sprintf("no template for %s on channel %s", event.EventType, channel),
				}
				return
			}

			subject, body := render.Message(template.Subject, template.Body, event.Data)
			outcomes[i] = o.dispatcher.Dispatch(branchCtx, event.UserID, domain.RenderedMessage{
				Channel: channel,
				Subject: subject,
				Body:    body,
			})
		}(i, preference.Channel, templates[i])
	}
	wg.Wait()

	return outcomes
}

// track records one delivery record per outcome. Tracking is
// best-effort: failures are logged and never fail the orchestration.
func (o *Orchestrator) track(notificationID string, event *domain.Event, outcomes []domain.DispatchOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), trackingTimeout)
	defer cancel()

	now := time.Now()
	records := make([]*domain.DeliveryRecord, 0, len(outcomes))
	for _, outcome := range outcomes {
		status := domain.DeliveryStatusSent
		if !outcome.Success {
			status = domain.DeliveryStatusFailed
		}
		records = append(records, &domain.DeliveryRecord{
			ID:             uuid.NewString(),
			NotificationID: notificationID,
			UserID:         event.UserID,
			EventType:      event.EventType,
			Channel:        string(outcome.Channel),
			Status:         status,
			ErrorKind:      string(outcome.ErrorKind),
			Detail:         outcome.Detail,
			CreatedAt:      now,
		})
	}

	if err := o.tracker.Record(ctx, records); err != nil {
		o.log.Warn("Failed to record delivery outcomes",
			zap.String("notification_id", notificationID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
	}
}
