package service

import (
	"context"

	"github.com/madadhq/invoice-financing/internal/application/dispatcher"
	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
	"github.com/madadhq/invoice-financing/internal/domain/event"
	"github.com/madadhq/invoice-financing/internal/errs"
)

// AuditTrailService records committed workflow transitions and serves
// the per-application history to admins.
type AuditTrailService interface {
	Record(ctx context.Context, evt *event.Event) error
	History(ctx context.Context, principal entity.Principal, applicationID int64) ([]*entity.TransitionRecord, error)
}

type auditTrailServiceImpl struct {
	transitionRepo port.TransitionLogRepository
	logger         Logger
}

// NewAuditTrailService creates a new AuditTrailService
func NewAuditTrailService(transitionRepo port.TransitionLogRepository, logger Logger) AuditTrailService {
	return &auditTrailServiceImpl{
		transitionRepo: transitionRepo,
		logger:         logger,
	}
}

// RegisterAuditTrail subscribes the recorder to every transition event type.
func RegisterAuditTrail(events dispatcher.Dispatcher, audit AuditTrailService) {
	types := []event.Type{
		event.TypeApplicationSubmitted,
		event.TypeApplicationRouted,
		event.TypeLenderApproved,
		event.TypeLenderDisapproved,
		event.TypeInvoiceUploaded,
		event.TypeBuyerApproved,
		event.TypeBuyerDisapproved,
		event.TypeInvoiceFunded,
		event.TypeLoanRepaid,
		event.TypeApplicationClosed,
	}
	for _, t := range types {
		events.SubscribeNamed(t, "audit-trail", audit.Record)
	}
}

// Record persists one transition event as an audit row
func (s *auditTrailServiceImpl) Record(ctx context.Context, evt *event.Event) error {
	record := &entity.TransitionRecord{
		ApplicationID: evt.ApplicationID,
		EventType:     evt.Type.String(),
		ActorID:       evt.ActorID,
		ActorRole:     evt.ActorRole,
		FromStatus:    evt.FromStatus,
		ToStatus:      evt.ToStatus,
	}
	if err := s.transitionRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to record transition",
			"error", err,
			"application_id", evt.ApplicationID,
			"event_type", evt.Type)
		return err
	}
	return nil
}

// History returns the chronological transition trail of an application.
// Admin only.
func (s *auditTrailServiceImpl) History(ctx context.Context, principal entity.Principal, applicationID int64) ([]*entity.TransitionRecord, error) {
	if principal.Role != entity.RoleAdmin {
		return nil, errs.Forbidden("only admins can view the transition history")
	}

	records, err := s.transitionRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		s.logger.Error("Failed to list transition history",
			"error", err,
			"application_id", applicationID)
		return nil, errs.Internal(err)
	}
	return records, nil
}
