// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/ladder/internal/core/effects"
	"github.com/example/ladder/internal/logging"
	"github.com/example/ladder/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place side effects of a
// transition happen.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the notification
// outbox, the certificate issuer and the employee directory.
type DefaultEffectExecutor struct {
	notifier     secondary.Notifier
	certificates secondary.CertificateIssuer
	employees    secondary.EmployeeRepository
	logger       *logging.Logger
	now          func() time.Time
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
// employees may be nil, in which case advance-level effects fail.
func NewEffectExecutor(
	notifier secondary.Notifier,
	certificates secondary.CertificateIssuer,
	employees secondary.EmployeeRepository,
	logger *logging.Logger,
) *DefaultEffectExecutor {
	if logger == nil {
		logger = logging.Default()
	}
	return &DefaultEffectExecutor{
		notifier:     notifier,
		certificates: certificates,
		employees:    employees,
		logger:       logger.With("effects"),
		now:          time.Now,
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.NotifyEffect:
		return e.executeNotify(ctx, typed)
	case effects.CertificateEffect:
		return e.executeCertificate(ctx, typed)
	case effects.AdvanceLevelEffect:
		return e.executeAdvanceLevel(ctx, typed)
	case effects.LogEffect:
		e.executeLog(typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeNotify(ctx context.Context, eff effects.NotifyEffect) error {
	if eff.RecipientID == "" {
		e.logger.Warn("dropping %s notification for promotion %s: no recipient", eff.EventType, eff.PromotionID)
		return nil
	}
	return e.notifier.Notify(ctx, &secondary.NotificationRecord{
		ID:          uuid.NewString(),
		RecipientID: eff.RecipientID,
		EventType:   eff.EventType,
		PromotionID: eff.PromotionID,
		Message:     eff.Message,
		CreatedAt:   formatTime(e.now()),
	})
}

func (e *DefaultEffectExecutor) executeCertificate(ctx context.Context, eff effects.CertificateEffect) error {
	issued, err := e.certificates.Issue(ctx, &secondary.CertificateRecord{
		ID:          uuid.NewString(),
		PromotionID: eff.PromotionID,
		EmployeeID:  eff.EmployeeID,
		JobTitleID:  eff.JobTitleID,
		GradeID:     eff.GradeID,
		IssuedAt:    formatTime(e.now()),
	})
	if err != nil {
		return err
	}
	if !issued {
		e.logger.Info("certificate for promotion %s already issued", eff.PromotionID)
	}
	return nil
}

func (e *DefaultEffectExecutor) executeAdvanceLevel(ctx context.Context, eff effects.AdvanceLevelEffect) error {
	if e.employees == nil {
		return fmt.Errorf("no employee directory configured")
	}
	return e.employees.UpdateLevel(ctx, eff.EmployeeID, eff.JobTitleID, eff.GradeID)
}

func (e *DefaultEffectExecutor) executeLog(eff effects.LogEffect) {
	msg := eff.Message
	if len(eff.Fields) > 0 {
		keys := make([]string, 0, len(eff.Fields))
		for k := range eff.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, eff.Fields[k]))
		}
		msg += " " + strings.Join(parts, " ")
	}

	switch logging.ParseLevel(eff.Level) {
	case logging.LevelDebug:
		e.logger.Debug("%s", msg)
	case logging.LevelWarn:
		e.logger.Warn("%s", msg)
	case logging.LevelError:
		e.logger.Error("%s", msg)
	default:
		e.logger.Info("%s", msg)
	}
}
