package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/madadhq/invoice-financing/internal/application/dispatcher"
	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
	"github.com/madadhq/invoice-financing/internal/domain/event"
	"github.com/madadhq/invoice-financing/internal/domain/scoring"
	"github.com/madadhq/invoice-financing/internal/domain/workflow"
	"github.com/madadhq/invoice-financing/internal/errs"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Notifier fans a message out to a set of recipients. Delivery is
// best-effort: the workflow never blocks or rolls back on a failed
// dispatch.
type Notifier interface {
	Dispatch(ctx context.Context, recipients []int64, title, message, link string) error
}

// SubmitInput carries the fields an MSME supplies on submission.
type SubmitInput struct {
	CreditScore   int
	MonthlyAvgTxn float64
	Documents     entity.Documents
}

// LenderDecisionInput carries the lender's terms alongside the decision.
type LenderDecisionInput struct {
	Decision     string // "approve" or "disapprove"
	InterestRate float64
	Tenure       int
}

// RoutingResult summarizes a successful lender assignment.
type RoutingResult struct {
	ApplicationID int64   `json:"application_id"`
	LenderID      int64   `json:"lender_id"`
	LenderName    string  `json:"lender_name"`
	AssignedLimit float64 `json:"assigned_limit"`
	Status        string  `json:"status"`
}

// FinancingService is the workflow engine: it validates role, ownership
// and state preconditions for every transition, computes the next
// application state, and emits notifications after the state write commits.
type FinancingService interface {
	SubmitApplication(ctx context.Context, principal entity.Principal, input SubmitInput) (*entity.Application, error)
	RouteToLender(ctx context.Context, principal entity.Principal, applicationID int64) (*RoutingResult, error)
	LenderDecision(ctx context.Context, principal entity.Principal, applicationID int64, input LenderDecisionInput) (*entity.Application, error)
	UploadInvoice(ctx context.Context, principal entity.Principal, applicationID int64, buyerEmail, invoiceURL string) (*entity.Application, error)
	BuyerDecision(ctx context.Context, principal entity.Principal, applicationID int64, decision string) (*entity.Application, error)
	FundInvoice(ctx context.Context, principal entity.Principal, applicationID int64, invoiceAmount float64) (*entity.Application, error)
	MarkRepaid(ctx context.Context, principal entity.Principal, applicationID int64) (*entity.Application, error)
	CloseApplication(ctx context.Context, principal entity.Principal, applicationID int64) (*entity.Application, error)
	ListApplications(ctx context.Context, principal entity.Principal, skip, limit int) ([]*ApplicationView, error)
	GetApplication(ctx context.Context, principal entity.Principal, applicationID int64) (*ApplicationView, error)
}

type financingServiceImpl struct {
	appRepo    port.ApplicationRepository
	userRepo   port.UserRepository
	lenderRepo port.LenderRepository
	notifier   Notifier
	events     dispatcher.Dispatcher
	logger     Logger
}

// NewFinancingService creates a new FinancingService. The events
// dispatcher may be nil; transitions then go unpublished.
func NewFinancingService(
	appRepo port.ApplicationRepository,
	userRepo port.UserRepository,
	lenderRepo port.LenderRepository,
	notifier Notifier,
	events dispatcher.Dispatcher,
	logger Logger,
) FinancingService {
	return &financingServiceImpl{
		appRepo:    appRepo,
		userRepo:   userRepo,
		lenderRepo: lenderRepo,
		notifier:   notifier,
		events:     events,
		logger:     logger,
	}
}

// SubmitApplication creates a new application in the submitted state and
// notifies every admin.
func (s *financingServiceImpl) SubmitApplication(ctx context.Context, principal entity.Principal, input SubmitInput) (*entity.Application, error) {
	if principal.Role != entity.RoleMSME {
		return nil, errs.Forbidden("only msme users can submit applications")
	}
	if input.CreditScore < entity.CreditScoreMin || input.CreditScore > entity.CreditScoreMax {
		return nil, errs.Newf(errs.KindValidation, "credit score must be between %d and %d", entity.CreditScoreMin, entity.CreditScoreMax)
	}
	if input.MonthlyAvgTxn < 0 {
		return nil, errs.Validation("monthly average transaction must not be negative")
	}

	now := time.Now()
	app := &entity.Application{
		MSMEID:        principal.UserID,
		CreditScore:   input.CreditScore,
		MonthlyAvgTxn: input.MonthlyAvgTxn,
		Documents:     input.Documents,
		Status:        workflow.StateSubmitted.String(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		s.logger.Error("Failed to create application", "error", err, "msme_id", principal.UserID)
		return nil, errs.Internal(err)
	}

	admins, err := s.userRepo.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		s.logger.Error("Failed to list admins for notification", "error", err, "application_id", app.ID)
	} else {
		recipients := make([]int64, 0, len(admins))
		for _, admin := range admins {
			recipients = append(recipients, admin.ID)
		}
		s.notify(ctx, recipients,
			"New Application Submitted",
			"An application has been submitted and is awaiting your review.",
			app.ID)
	}

	s.publish(event.TypeApplicationSubmitted, principal, app.ID, "", app.Status)
	s.logger.Info("Application submitted", "application_id", app.ID, "msme_id", principal.UserID)
	return app, nil
}

// RouteToLender runs the scoring engine over all lender profiles and
// assigns the best-fit lender and credit limit. The application is left
// unchanged when no lender yields a positive limit.
func (s *financingServiceImpl) RouteToLender(ctx context.Context, principal entity.Principal, applicationID int64) (*RoutingResult, error) {
	if principal.Role != entity.RoleAdmin {
		return nil, errs.Forbidden("only admins can route applications")
	}

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	machine := workflow.NewFinancingStateMachine(workflow.State(app.Status))
	if !machine.CanFire(workflow.TriggerRouteToLender) {
		return nil, errs.InvalidState("application is already processed")
	}

	lenders, err := s.lenderRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list lender profiles", "error", err)
		return nil, errs.Internal(err)
	}

	result := scoring.Score(app, lenders)
	if result.Lender == nil || result.Limit <= 0 {
		return nil, errs.New(errs.KindNoEligibleLender, "no lender is eligible for this application")
	}

	if err := machine.Fire(ctx, workflow.TriggerRouteToLender); err != nil {
		return nil, errs.Wrap(errs.KindInvalidState, "routing not permitted", err)
	}

	prev := app.Status
	app.AssignedLenderID = &result.Lender.ID
	app.AssignedLimit = &result.Limit
	app.Status = machine.State().String()

	if err := s.saveApplication(ctx, app); err != nil {
		return nil, err
	}

	s.publish(event.TypeApplicationRouted, principal, app.ID, prev, app.Status)
	s.notify(ctx, []int64{app.MSMEID},
		"Application Forwarded to Lender",
		"Your application has been successfully forwarded to the lender for review.",
		app.ID)
	s.notify(ctx, []int64{result.Lender.UserID},
		"New Application Received",
		"You have received a new application. Please review it at your earliest convenience.",
		app.ID)

	s.logger.Info("Application routed to lender",
		"application_id", app.ID,
		"lender_id", result.Lender.ID,
		"assigned_limit", result.Limit)

	return &RoutingResult{
		ApplicationID: app.ID,
		LenderID:      result.Lender.ID,
		LenderName:    result.Lender.Name,
		AssignedLimit: result.Limit,
		Status:        app.Status,
	}, nil
}

// LenderDecision records the assigned lender's approval or disapproval.
// Approval fixes the interest rate and tenure and stamps the approval date.
func (s *financingServiceImpl) LenderDecision(ctx context.Context, principal entity.Principal, applicationID int64, input LenderDecisionInput) (*entity.Application, error) {
	if input.Decision != "approve" && input.Decision != "disapprove" {
		return nil, errs.Validation(`invalid decision: use "approve" or "disapprove"`)
	}

	_, app, err := s.loadAssignedApplication(ctx, principal, applicationID)
	if err != nil {
		return nil, err
	}

	trigger := workflow.TriggerLenderApprove
	eventType := event.TypeLenderApproved
	if input.Decision == "disapprove" {
		trigger = workflow.TriggerLenderDisapprove
		eventType = event.TypeLenderDisapproved
	}

	machine := workflow.NewFinancingStateMachine(workflow.State(app.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, errs.Wrap(errs.KindInvalidState, "application is not awaiting a lender decision", err)
	}

	if input.Decision == "approve" {
		if input.InterestRate <= 0 {
			return nil, errs.Validation("interest rate must be positive")
		}
		if input.Tenure <= 0 {
			return nil, errs.Validation("tenure must be a positive number of months")
		}
		now := time.Now()
		app.LenderApprovalDate = &now
		app.InterestRate = &input.InterestRate
		app.Tenure = &input.Tenure
	}
	prev := app.Status
	app.Status = machine.State().String()

	if err := s.saveApplication(ctx, app); err != nil {
		return nil, err
	}

	s.publish(eventType, principal, app.ID, prev, app.Status)
	if input.Decision == "approve" {
		s.notify(ctx, []int64{app.MSMEID},
			"Lender Approved Your Application",
			"Congratulations! The lender has approved your application. You can now proceed with the next steps.",
			app.ID)
	} else {
		s.notify(ctx, []int64{app.MSMEID},
			"Lender Disapproved Your Application",
			"We regret to inform you that your application has been disapproved by the lender. Please contact us for more details or assistance.",
			app.ID)
	}

	s.logger.Info("Lender decision recorded",
		"application_id", app.ID,
		"decision", input.Decision,
		"status", app.Status)
	return app, nil
}

// UploadInvoice binds the buyer resolved by email and stores the invoice
// URL against the application.
func (s *financingServiceImpl) UploadInvoice(ctx context.Context, principal entity.Principal, applicationID int64, buyerEmail, invoiceURL string) (*entity.Application, error) {
	if principal.Role != entity.RoleMSME {
		return nil, errs.Forbidden("only msme users can upload invoices")
	}

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.MSMEID != principal.UserID {
		return nil, errs.Forbidden("this application does not belong to you")
	}

	if invoiceURL == "" {
		return nil, errs.Validation("no invoice file uploaded")
	}
	if buyerEmail == "" {
		return nil, errs.Validation("buyer email is required")
	}

	machine := workflow.NewFinancingStateMachine(workflow.State(app.Status))
	if !machine.CanFire(workflow.TriggerUploadInvoice) {
		return nil, errs.InvalidState("application is not lender approved")
	}

	buyer, err := s.userRepo.GetByEmailAndRole(ctx, buyerEmail, entity.RoleBuyer)
	if err != nil {
		s.logger.Error("Failed to look up buyer", "error", err, "email", buyerEmail)
		return nil, errs.Internal(err)
	}
	if buyer == nil {
		return nil, errs.NotFound("buyer with the provided email")
	}

	if err := machine.Fire(ctx, workflow.TriggerUploadInvoice); err != nil {
		return nil, errs.Wrap(errs.KindInvalidState, "invoice upload not permitted", err)
	}

	prev := app.Status
	app.BuyerID = &buyer.ID
	app.UploadedInvoice = invoiceURL
	app.Status = machine.State().String()

	if err := s.saveApplication(ctx, app); err != nil {
		return nil, err
	}

	s.publish(event.TypeInvoiceUploaded, principal, app.ID, prev, app.Status)
	s.notify(ctx, []int64{buyer.ID},
		"Invoice Uploaded",
		"An invoice has been uploaded against your account and is awaiting your confirmation.",
		app.ID)

	s.logger.Info("Invoice uploaded", "application_id", app.ID, "buyer_id", buyer.ID)
	return app, nil
}

// BuyerDecision records the buyer's confirmation of the uploaded invoice.
// Any decision value other than "approved" disapproves it.
func (s *financingServiceImpl) BuyerDecision(ctx context.Context, principal entity.Principal, applicationID int64, decision string) (*entity.Application, error) {
	if principal.Role != entity.RoleBuyer {
		return nil, errs.Forbidden("only buyers can confirm invoices")
	}

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.BuyerID == nil || *app.BuyerID != principal.UserID {
		return nil, errs.Forbidden("you are not authorized to confirm this invoice")
	}

	trigger := workflow.TriggerBuyerDisapprove
	if decision == "approved" {
		trigger = workflow.TriggerBuyerApprove
	}

	machine := workflow.NewFinancingStateMachine(workflow.State(app.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, errs.Wrap(errs.KindInvalidState, "invoice has not been uploaded yet", err)
	}

	now := time.Now()
	prev := app.Status
	app.BuyerApprovalDate = &now
	app.Status = machine.State().String()

	if err := s.saveApplication(ctx, app); err != nil {
		return nil, err
	}

	eventType := event.TypeBuyerDisapproved
	if trigger == workflow.TriggerBuyerApprove {
		eventType = event.TypeBuyerApproved
	}
	s.publish(eventType, principal, app.ID, prev, app.Status)

	if trigger == workflow.TriggerBuyerApprove {
		s.notify(ctx, []int64{app.MSMEID},
			"Buyer Approved Your Invoice",
			"The buyer has confirmed the invoice on your application.",
			app.ID)
	} else {
		s.notify(ctx, []int64{app.MSMEID},
			"Buyer Disapproved Your Invoice",
			"The buyer has declined the invoice on your application.",
			app.ID)
	}

	s.logger.Info("Buyer decision recorded", "application_id", app.ID, "status", app.Status)
	return app, nil
}

// FundInvoice disburses the invoice amount minus fees:
//
//	fees = invoiceAmount * (interestRate/100) * (tenure/12)
func (s *financingServiceImpl) FundInvoice(ctx context.Context, principal entity.Principal, applicationID int64, invoiceAmount float64) (*entity.Application, error) {
	_, app, err := s.loadAssignedApplication(ctx, principal, applicationID)
	if err != nil {
		return nil, err
	}

	machine := workflow.NewFinancingStateMachine(workflow.State(app.Status))
	if !machine.CanFire(workflow.TriggerFundInvoice) {
		return nil, errs.InvalidState("invoice must be buyer approved before funding")
	}

	if invoiceAmount <= 0 {
		return nil, errs.Validation("invoice amount must be positive")
	}
	if app.InterestRate == nil || app.Tenure == nil {
		return nil, errs.Validation("missing interest rate or tenure")
	}
	if app.AssignedLimit == nil {
		return nil, errs.InvalidState("application has no assigned limit")
	}
	if invoiceAmount > *app.AssignedLimit {
		return nil, errs.Newf(errs.KindInsufficientLimit, "invoice amount exceeds assigned limit of %.2f", *app.AssignedLimit)
	}

	if err := machine.Fire(ctx, workflow.TriggerFundInvoice); err != nil {
		return nil, errs.Wrap(errs.KindInvalidState, "funding not permitted", err)
	}

	fees := invoiceAmount * (*app.InterestRate / 100) * (float64(*app.Tenure) / 12)
	fundedAmount := invoiceAmount - fees
	now := time.Now()

	prev := app.Status
	app.InvoiceAmount = &invoiceAmount
	app.FundedAmount = &fundedAmount
	app.DisbursedDate = &now
	app.Status = machine.State().String()

	if err := s.saveApplication(ctx, app); err != nil {
		return nil, err
	}

	s.publish(event.TypeInvoiceFunded, principal, app.ID, prev, app.Status)
	s.notify(ctx, []int64{app.MSMEID},
		"Invoice Funded",
		"You have successfully received the funds from the lender for your application.",
		app.ID)

	s.logger.Info("Invoice funded",
		"application_id", app.ID,
		"invoice_amount", invoiceAmount,
		"funded_amount", fundedAmount)
	return app, nil
}

// MarkRepaid flags the funded loan as repaid and notifies the lender.
// The status remains invoice_funded; only closeApplication moves it on.
func (s *financingServiceImpl) MarkRepaid(ctx context.Context, principal entity.Principal, applicationID int64) (*entity.Application, error) {
	if principal.Role != entity.RoleMSME {
		return nil, errs.Forbidden("only msme users can mark repayment")
	}

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.MSMEID != principal.UserID {
		return nil, errs.Forbidden("this application does not belong to you")
	}
	if workflow.State(app.Status) != workflow.StateInvoiceFunded {
		return nil, errs.InvalidState("invoice must be funded before marking as repaid")
	}
	if app.IsRepaid {
		return nil, errs.InvalidState("repayment has already been recorded")
	}

	now := time.Now()
	app.IsRepaid = true
	app.RepaymentDate = &now

	if err := s.saveApplication(ctx, app); err != nil {
		return nil, err
	}

	s.publish(event.TypeLoanRepaid, principal, app.ID, app.Status, app.Status)

	if app.AssignedLenderID != nil {
		lender, err := s.lenderRepo.GetByID(ctx, *app.AssignedLenderID)
		if err != nil || lender == nil {
			s.logger.Error("Failed to resolve lender for repayment notification",
				"error", err, "application_id", app.ID)
		} else {
			msmeName := ""
			if msme, err := s.userRepo.GetByID(ctx, app.MSMEID); err == nil && msme != nil {
				msmeName = msme.Name
			}
			s.notify(ctx, []int64{lender.UserID},
				fmt.Sprintf("%s Repaid the Loan", msmeName),
				"The MSME has successfully repaid the loan you provided.",
				app.ID)
		}
	}

	s.logger.Info("Repayment recorded", "application_id", app.ID)
	return app, nil
}

// CloseApplication moves a repaid application to its terminal closed state.
func (s *financingServiceImpl) CloseApplication(ctx context.Context, principal entity.Principal, applicationID int64) (*entity.Application, error) {
	_, app, err := s.loadAssignedApplication(ctx, principal, applicationID)
	if err != nil {
		return nil, err
	}

	if !app.IsRepaid {
		return nil, errs.InvalidState("repayment has not been made yet")
	}

	machine := workflow.NewFinancingStateMachine(workflow.State(app.Status))
	if err := machine.Fire(ctx, workflow.TriggerClose); err != nil {
		return nil, errs.Wrap(errs.KindInvalidState, "application cannot be closed", err)
	}
	prev := app.Status
	app.Status = machine.State().String()

	if err := s.saveApplication(ctx, app); err != nil {
		return nil, err
	}

	s.publish(event.TypeApplicationClosed, principal, app.ID, prev, app.Status)
	s.logger.Info("Application closed", "application_id", app.ID)
	return app, nil
}

// ListApplications returns the role-filtered application list, newest
// first: admins see everything, lenders their assignments, buyers and
// msmes their own.
func (s *financingServiceImpl) ListApplications(ctx context.Context, principal entity.Principal, skip, limit int) ([]*ApplicationView, error) {
	query := port.ApplicationQuery{Skip: skip, Limit: limit}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	if query.Skip < 0 {
		query.Skip = 0
	}

	switch principal.Role {
	case entity.RoleAdmin:
		// no filter
	case entity.RoleLender:
		lender, err := s.lenderRepo.GetByUserID(ctx, principal.UserID)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if lender == nil {
			return nil, errs.NotFound("lender profile")
		}
		query.AssignedLenderID = lender.ID
	case entity.RoleBuyer:
		query.BuyerID = principal.UserID
	case entity.RoleMSME:
		query.MSMEID = principal.UserID
	default:
		return nil, errs.Forbidden("unauthorized role")
	}

	apps, err := s.appRepo.List(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list applications", "error", err, "role", principal.Role)
		return nil, errs.Internal(err)
	}

	views := make([]*ApplicationView, 0, len(apps))
	for _, app := range apps {
		views = append(views, s.buildView(ctx, app))
	}
	return views, nil
}

// GetApplication returns the normalized view of one application, with
// ownership enforced for every non-admin role.
func (s *financingServiceImpl) GetApplication(ctx context.Context, principal entity.Principal, applicationID int64) (*ApplicationView, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	switch principal.Role {
	case entity.RoleAdmin:
		// admins can view anything
	case entity.RoleLender:
		lender, err := s.lenderRepo.GetByUserID(ctx, principal.UserID)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if lender == nil || app.AssignedLenderID == nil || *app.AssignedLenderID != lender.ID {
			return nil, errs.Forbidden("this application is not assigned to you")
		}
	default:
		ownsAsMSME := app.MSMEID == principal.UserID
		ownsAsBuyer := app.BuyerID != nil && *app.BuyerID == principal.UserID
		if !ownsAsMSME && !ownsAsBuyer {
			return nil, errs.Forbidden("you are not a party to this application")
		}
	}

	return s.buildView(ctx, app), nil
}

// loadApplication fetches an application or raises NotFound.
func (s *financingServiceImpl) loadApplication(ctx context.Context, id int64) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get application", "error", err, "application_id", id)
		return nil, errs.Internal(err)
	}
	if app == nil {
		return nil, errs.NotFound("application")
	}
	return app, nil
}

// loadAssignedApplication resolves the caller's lender profile and the
// application, enforcing the assigned-lender ownership predicate.
func (s *financingServiceImpl) loadAssignedApplication(ctx context.Context, principal entity.Principal, applicationID int64) (*entity.LenderProfile, *entity.Application, error) {
	if principal.Role != entity.RoleLender {
		return nil, nil, errs.Forbidden("only lenders can perform this action")
	}

	lender, err := s.lenderRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		s.logger.Error("Failed to get lender profile", "error", err, "user_id", principal.UserID)
		return nil, nil, errs.Internal(err)
	}
	if lender == nil {
		return nil, nil, errs.NotFound("lender profile")
	}

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if app.AssignedLenderID == nil || *app.AssignedLenderID != lender.ID {
		return nil, nil, errs.Forbidden("this application is not assigned to you")
	}
	return lender, app, nil
}

// saveApplication performs the compare-and-swap write and maps a version
// mismatch to Conflict for the caller to retry.
func (s *financingServiceImpl) saveApplication(ctx context.Context, app *entity.Application) error {
	err := s.appRepo.Update(ctx, app)
	if err == nil {
		return nil
	}
	if errors.Is(err, port.ErrVersionMismatch) {
		return errs.Wrap(errs.KindConflict, "application was modified concurrently", err)
	}
	s.logger.Error("Failed to update application", "error", err, "application_id", app.ID)
	return errs.Internal(err)
}

// publish emits a transition event after the state write commits. The
// background context detaches handlers from the request lifetime.
func (s *financingServiceImpl) publish(t event.Type, principal entity.Principal, applicationID int64, from, to string) {
	if s.events == nil {
		return
	}
	s.events.DispatchAsync(context.Background(),
		event.New(t, applicationID, principal.UserID, principal.Role, from, to))
}

// notify dispatches a fan-out and logs failures without propagating them.
func (s *financingServiceImpl) notify(ctx context.Context, recipients []int64, title, message string, applicationID int64) {
	if len(recipients) == 0 {
		return
	}
	link := strconv.FormatInt(applicationID, 10)
	if err := s.notifier.Dispatch(ctx, recipients, title, message, link); err != nil {
		s.logger.Error("Failed to dispatch notification",
			"error", err,
			"title", title,
			"application_id", applicationID)
	}
}

// buildView resolves the application's parties and projects the
// API-facing view.
func (s *financingServiceImpl) buildView(ctx context.Context, app *entity.Application) *ApplicationView {
	msme, err := s.userRepo.GetByID(ctx, app.MSMEID)
	if err != nil {
		s.logger.Error("Failed to resolve msme for view", "error", err, "application_id", app.ID)
	}

	var buyer *entity.User
	if app.BuyerID != nil {
		buyer, err = s.userRepo.GetByID(ctx, *app.BuyerID)
		if err != nil {
			s.logger.Error("Failed to resolve buyer for view", "error", err, "application_id", app.ID)
		}
	}

	var lender *entity.LenderProfile
	if app.AssignedLenderID != nil {
		lender, err = s.lenderRepo.GetByID(ctx, *app.AssignedLenderID)
		if err != nil {
			s.logger.Error("Failed to resolve lender for view", "error", err, "application_id", app.ID)
		}
	}

	return ProjectApplication(app, msme, buyer, lender)
}
