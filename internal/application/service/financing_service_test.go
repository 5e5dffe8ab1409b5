package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
	"github.com/madadhq/invoice-financing/internal/domain/workflow"
	"github.com/madadhq/invoice-financing/internal/errs"
)

// Mock repositories

type mockAppRepo struct {
	createFunc  func(ctx context.Context, app *entity.Application) error
	getByIDFunc func(ctx context.Context, id int64) (*entity.Application, error)
	listFunc    func(ctx context.Context, q port.ApplicationQuery) ([]*entity.Application, error)
	updateFunc  func(ctx context.Context, app *entity.Application) error

	updated *entity.Application
}

func (m *mockAppRepo) Create(ctx context.Context, app *entity.Application) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, app)
	}
	app.ID = 1
	app.Version = 1
	return nil
}

func (m *mockAppRepo) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAppRepo) List(ctx context.Context, q port.ApplicationQuery) ([]*entity.Application, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, q)
	}
	return []*entity.Application{}, nil
}

func (m *mockAppRepo) Update(ctx context.Context, app *entity.Application) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, app)
	}
	m.updated = app
	app.Version++
	return nil
}

type mockUserRepo struct {
	getByIDFunc           func(ctx context.Context, id int64) (*entity.User, error)
	getByEmailFunc        func(ctx context.Context, email string) (*entity.User, error)
	getByEmailAndRoleFunc func(ctx context.Context, email, role string) (*entity.User, error)
	listByRoleFunc        func(ctx context.Context, role string) ([]*entity.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.User{ID: id, Name: "User", Email: "user@example.com"}, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmailAndRole(ctx context.Context, email, role string) (*entity.User, error) {
	if m.getByEmailAndRoleFunc != nil {
		return m.getByEmailAndRoleFunc(ctx, email, role)
	}
	return nil, nil
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	if m.listByRoleFunc != nil {
		return m.listByRoleFunc(ctx, role)
	}
	return []*entity.User{}, nil
}

type mockLenderRepo struct {
	getByIDFunc     func(ctx context.Context, id int64) (*entity.LenderProfile, error)
	getByUserIDFunc func(ctx context.Context, userID int64) (*entity.LenderProfile, error)
	listFunc        func(ctx context.Context) ([]*entity.LenderProfile, error)
}

func (m *mockLenderRepo) Create(ctx context.Context, profile *entity.LenderProfile) error {
	return nil
}

func (m *mockLenderRepo) GetByID(ctx context.Context, id int64) (*entity.LenderProfile, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockLenderRepo) GetByUserID(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockLenderRepo) List(ctx context.Context) ([]*entity.LenderProfile, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.LenderProfile{}, nil
}

type dispatched struct {
	recipients []int64
	title      string
}

type mockNotifier struct {
	dispatchErr error
	calls       []dispatched
}

func (m *mockNotifier) Dispatch(ctx context.Context, recipients []int64, title, message, link string) error {
	m.calls = append(m.calls, dispatched{recipients: recipients, title: title})
	return m.dispatchErr
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Fixtures

var (
	msmePrincipal   = entity.Principal{UserID: 10, Email: "msme@example.com", Role: entity.RoleMSME}
	adminPrincipal  = entity.Principal{UserID: 20, Email: "admin@example.com", Role: entity.RoleAdmin}
	lenderPrincipal = entity.Principal{UserID: 30, Email: "lender@example.com", Role: entity.RoleLender}
	buyerPrincipal  = entity.Principal{UserID: 40, Email: "buyer@example.com", Role: entity.RoleBuyer}
)

func testLenderProfile() *entity.LenderProfile {
	return &entity.LenderProfile{
		ID:                        5,
		UserID:                    lenderPrincipal.UserID,
		Name:                      "Lender One",
		CreditScoreThreshold:      700,
		CreditScoreMultiplierHigh: 1.5,
		CreditScoreMultiplierLow:  1.0,
		DocumentMultipliers:       entity.DocumentMultipliers{All4: 1.2, Any3: 1.1, Any2: 1.05, OnlyCR: 1.0},
		BankStatementMultiplier:   1.2,
		AuditedReportMultiplier:   1.5,
	}
}

func testApplication(status workflow.State) *entity.Application {
	lenderID := int64(5)
	limit := 10000.0
	app := &entity.Application{
		ID:            1,
		Version:       1,
		MSMEID:        msmePrincipal.UserID,
		CreditScore:   750,
		MonthlyAvgTxn: 10000,
		Documents:     entity.Documents{CR: "/uploads/documents/cr.pdf"},
		Status:        status.String(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if status.LenderAssigned() {
		app.AssignedLenderID = &lenderID
		app.AssignedLimit = &limit
	}
	if status.BuyerAssigned() {
		buyerID := buyerPrincipal.UserID
		app.BuyerID = &buyerID
		app.UploadedInvoice = "/uploads/invoices/inv.pdf"
	}
	switch status {
	case workflow.StateLenderApproved, workflow.StateInvoiceUploaded,
		workflow.StateBuyerApproved, workflow.StateInvoiceFunded, workflow.StateClosed:
		rate := 10.0
		tenure := 6
		app.InterestRate = &rate
		app.Tenure = &tenure
	}
	return app
}

func newTestService(appRepo *mockAppRepo, userRepo *mockUserRepo, lenderRepo *mockLenderRepo, notifier *mockNotifier) FinancingService {
	return NewFinancingService(appRepo, userRepo, lenderRepo, notifier, nil, nopLogger{})
}

func assertKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := errs.KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, kind, err)
	}
}

// SubmitApplication

func TestSubmitApplication_Success(t *testing.T) {
	appRepo := &mockAppRepo{}
	userRepo := &mockUserRepo{
		listByRoleFunc: func(ctx context.Context, role string) ([]*entity.User, error) {
			if role != entity.RoleAdmin {
				t.Errorf("ListByRole role = %s, want %s", role, entity.RoleAdmin)
			}
			return []*entity.User{{ID: 20}, {ID: 21}}, nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(appRepo, userRepo, &mockLenderRepo{}, notifier)

	app, err := svc.SubmitApplication(context.Background(), msmePrincipal, SubmitInput{
		CreditScore:   750,
		MonthlyAvgTxn: 10000,
		Documents:     entity.Documents{CR: "/uploads/documents/cr.pdf"},
	})
	if err != nil {
		t.Fatalf("SubmitApplication() failed: %v", err)
	}

	if app.Status != workflow.StateSubmitted.String() {
		t.Errorf("status = %s, want %s", app.Status, workflow.StateSubmitted)
	}
	if app.MSMEID != msmePrincipal.UserID {
		t.Errorf("msme_id = %d, want %d", app.MSMEID, msmePrincipal.UserID)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("notifications dispatched = %d, want 1", len(notifier.calls))
	}
	if len(notifier.calls[0].recipients) != 2 {
		t.Errorf("recipients = %v, want both admins", notifier.calls[0].recipients)
	}
}

func TestSubmitApplication_ForbiddenForNonMSME(t *testing.T) {
	svc := newTestService(&mockAppRepo{}, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	for _, principal := range []entity.Principal{adminPrincipal, lenderPrincipal, buyerPrincipal} {
		_, err := svc.SubmitApplication(context.Background(), principal, SubmitInput{CreditScore: 700})
		assertKind(t, err, errs.KindForbidden)
	}
}

func TestSubmitApplication_CreditScoreOutOfRange(t *testing.T) {
	svc := newTestService(&mockAppRepo{}, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	for _, score := range []int{-1, 801} {
		_, err := svc.SubmitApplication(context.Background(), msmePrincipal, SubmitInput{CreditScore: score})
		assertKind(t, err, errs.KindValidation)
	}
}

func TestSubmitApplication_NotificationFailureDoesNotFail(t *testing.T) {
	userRepo := &mockUserRepo{
		listByRoleFunc: func(ctx context.Context, role string) ([]*entity.User, error) {
			return []*entity.User{{ID: 20}}, nil
		},
	}
	notifier := &mockNotifier{dispatchErr: errors.New("insert failed")}
	svc := newTestService(&mockAppRepo{}, userRepo, &mockLenderRepo{}, notifier)

	_, err := svc.SubmitApplication(context.Background(), msmePrincipal, SubmitInput{CreditScore: 700})
	if err != nil {
		t.Fatalf("SubmitApplication() should succeed despite notification failure, got %v", err)
	}
}

// RouteToLender

func TestRouteToLender_SelectsBestLender(t *testing.T) {
	app := testApplication(workflow.StateSubmitted)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	weaker := testLenderProfile()
	weaker.ID = 6
	weaker.UserID = 31
	weaker.CreditScoreMultiplierHigh = 1.1
	lenderRepo := &mockLenderRepo{
		listFunc: func(ctx context.Context) ([]*entity.LenderProfile, error) {
			return []*entity.LenderProfile{weaker, testLenderProfile()}, nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, notifier)

	result, err := svc.RouteToLender(context.Background(), adminPrincipal, app.ID)
	if err != nil {
		t.Fatalf("RouteToLender() failed: %v", err)
	}

	if result.LenderID != 5 {
		t.Errorf("lender_id = %d, want 5", result.LenderID)
	}
	// 10000 * 1.5 * 1.0 * 1.2 * 1.5 with only the cr document present
	if result.AssignedLimit != 27000 {
		t.Errorf("assigned_limit = %v, want 27000", result.AssignedLimit)
	}
	if result.Status != workflow.StateAssignedToLender.String() {
		t.Errorf("status = %s, want %s", result.Status, workflow.StateAssignedToLender)
	}
	if app.AssignedLenderID == nil || *app.AssignedLenderID != 5 {
		t.Error("application should carry the assigned lender id")
	}

	// msme and lender are both notified
	if len(notifier.calls) != 2 {
		t.Fatalf("notifications dispatched = %d, want 2", len(notifier.calls))
	}
}

func TestRouteToLender_ForbiddenForNonAdmin(t *testing.T) {
	svc := newTestService(&mockAppRepo{}, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.RouteToLender(context.Background(), msmePrincipal, 1)
	assertKind(t, err, errs.KindForbidden)
}

func TestRouteToLender_ApplicationNotFound(t *testing.T) {
	svc := newTestService(&mockAppRepo{}, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.RouteToLender(context.Background(), adminPrincipal, 99)
	assertKind(t, err, errs.KindNotFound)
}

func TestRouteToLender_AlreadyProcessed(t *testing.T) {
	for _, status := range []workflow.State{workflow.StateRejected, workflow.StateInvoiceUploaded, workflow.StateClosed} {
		t.Run(string(status), func(t *testing.T) {
			app := testApplication(status)
			appRepo := &mockAppRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
					return app, nil
				},
			}
			svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

			_, err := svc.RouteToLender(context.Background(), adminPrincipal, app.ID)
			assertKind(t, err, errs.KindInvalidState)
		})
	}
}

func TestRouteToLender_RerouteAfterLenderDisapproval(t *testing.T) {
	app := testApplication(workflow.StateLenderDisapproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		listFunc: func(ctx context.Context) ([]*entity.LenderProfile, error) {
			return []*entity.LenderProfile{testLenderProfile()}, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	result, err := svc.RouteToLender(context.Background(), adminPrincipal, app.ID)
	if err != nil {
		t.Fatalf("RouteToLender() after disapproval failed: %v", err)
	}
	if result.Status != workflow.StateAssignedToLender.String() {
		t.Errorf("status = %s, want %s", result.Status, workflow.StateAssignedToLender)
	}
}

func TestRouteToLender_NoEligibleLender(t *testing.T) {
	app := testApplication(workflow.StateSubmitted)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.RouteToLender(context.Background(), adminPrincipal, app.ID)
	assertKind(t, err, errs.KindNoEligibleLender)

	// the application must be left untouched
	if appRepo.updated != nil {
		t.Error("application should not be written when no lender is eligible")
	}
	if app.Status != workflow.StateSubmitted.String() {
		t.Errorf("status = %s, want %s", app.Status, workflow.StateSubmitted)
	}
	if app.AssignedLenderID != nil {
		t.Error("no lender should be assigned")
	}
}

// LenderDecision

func TestLenderDecision_Approve(t *testing.T) {
	app := testApplication(workflow.StateAssignedToLender)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, notifier)

	got, err := svc.LenderDecision(context.Background(), lenderPrincipal, app.ID, LenderDecisionInput{
		Decision:     "approve",
		InterestRate: 10,
		Tenure:       6,
	})
	if err != nil {
		t.Fatalf("LenderDecision() failed: %v", err)
	}

	if got.Status != workflow.StateLenderApproved.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateLenderApproved)
	}
	if got.InterestRate == nil || *got.InterestRate != 10 {
		t.Error("interest rate should be recorded")
	}
	if got.Tenure == nil || *got.Tenure != 6 {
		t.Error("tenure should be recorded")
	}
	if got.LenderApprovalDate == nil {
		t.Error("lender approval date should be stamped")
	}
	if len(notifier.calls) != 1 || notifier.calls[0].recipients[0] != msmePrincipal.UserID {
		t.Error("msme should be notified of the approval")
	}
}

func TestLenderDecision_Disapprove(t *testing.T) {
	app := testApplication(workflow.StateAssignedToLender)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	got, err := svc.LenderDecision(context.Background(), lenderPrincipal, app.ID, LenderDecisionInput{Decision: "disapprove"})
	if err != nil {
		t.Fatalf("LenderDecision() failed: %v", err)
	}

	if got.Status != workflow.StateLenderDisapproved.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateLenderDisapproved)
	}
	if got.InterestRate != nil || got.Tenure != nil {
		t.Error("disapproval should not record terms")
	}
}

func TestLenderDecision_InvalidDecisionValue(t *testing.T) {
	svc := newTestService(&mockAppRepo{}, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.LenderDecision(context.Background(), lenderPrincipal, 1, LenderDecisionInput{Decision: "maybe"})
	assertKind(t, err, errs.KindValidation)
}

func TestLenderDecision_ApproveRequiresPositiveTerms(t *testing.T) {
	app := testApplication(workflow.StateAssignedToLender)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.LenderDecision(context.Background(), lenderPrincipal, app.ID, LenderDecisionInput{Decision: "approve", InterestRate: 0, Tenure: 6})
	assertKind(t, err, errs.KindValidation)

	_, err = svc.LenderDecision(context.Background(), lenderPrincipal, app.ID, LenderDecisionInput{Decision: "approve", InterestRate: 10, Tenure: 0})
	assertKind(t, err, errs.KindValidation)
}

func TestLenderDecision_NotAssignedToCaller(t *testing.T) {
	app := testApplication(workflow.StateAssignedToLender)
	otherLenderID := int64(99)
	app.AssignedLenderID = &otherLenderID
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.LenderDecision(context.Background(), lenderPrincipal, app.ID, LenderDecisionInput{Decision: "approve", InterestRate: 10, Tenure: 6})
	assertKind(t, err, errs.KindForbidden)
}

func TestLenderDecision_WrongState(t *testing.T) {
	app := testApplication(workflow.StateInvoiceUploaded)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.LenderDecision(context.Background(), lenderPrincipal, app.ID, LenderDecisionInput{Decision: "approve", InterestRate: 10, Tenure: 6})
	assertKind(t, err, errs.KindInvalidState)
}

// UploadInvoice

func TestUploadInvoice_Success(t *testing.T) {
	app := testApplication(workflow.StateLenderApproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	userRepo := &mockUserRepo{
		getByEmailAndRoleFunc: func(ctx context.Context, email, role string) (*entity.User, error) {
			if role != entity.RoleBuyer {
				t.Errorf("buyer lookup role = %s, want %s", role, entity.RoleBuyer)
			}
			return &entity.User{ID: buyerPrincipal.UserID, Email: email}, nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(appRepo, userRepo, &mockLenderRepo{}, notifier)

	got, err := svc.UploadInvoice(context.Background(), msmePrincipal, app.ID, "buyer@portal.com", "/uploads/invoices/inv.pdf")
	if err != nil {
		t.Fatalf("UploadInvoice() failed: %v", err)
	}

	if got.Status != workflow.StateInvoiceUploaded.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateInvoiceUploaded)
	}
	if got.BuyerID == nil || *got.BuyerID != buyerPrincipal.UserID {
		t.Error("buyer should be bound to the application")
	}
	if got.UploadedInvoice != "/uploads/invoices/inv.pdf" {
		t.Errorf("uploaded_invoice = %s", got.UploadedInvoice)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].recipients[0] != buyerPrincipal.UserID {
		t.Error("buyer should be notified")
	}
}

func TestUploadInvoice_NotOwner(t *testing.T) {
	app := testApplication(workflow.StateLenderApproved)
	app.MSMEID = 999
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.UploadInvoice(context.Background(), msmePrincipal, app.ID, "buyer@portal.com", "/uploads/invoices/inv.pdf")
	assertKind(t, err, errs.KindForbidden)
}

func TestUploadInvoice_BuyerNotFound(t *testing.T) {
	app := testApplication(workflow.StateLenderApproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.UploadInvoice(context.Background(), msmePrincipal, app.ID, "missing@portal.com", "/uploads/invoices/inv.pdf")
	assertKind(t, err, errs.KindNotFound)
}

func TestUploadInvoice_MissingFile(t *testing.T) {
	app := testApplication(workflow.StateLenderApproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.UploadInvoice(context.Background(), msmePrincipal, app.ID, "buyer@portal.com", "")
	assertKind(t, err, errs.KindValidation)
}

func TestUploadInvoice_WrongState(t *testing.T) {
	app := testApplication(workflow.StateAssignedToLender)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.UploadInvoice(context.Background(), msmePrincipal, app.ID, "buyer@portal.com", "/uploads/invoices/inv.pdf")
	assertKind(t, err, errs.KindInvalidState)
}

// BuyerDecision

func TestBuyerDecision_Approve(t *testing.T) {
	app := testApplication(workflow.StateInvoiceUploaded)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	got, err := svc.BuyerDecision(context.Background(), buyerPrincipal, app.ID, "approved")
	if err != nil {
		t.Fatalf("BuyerDecision() failed: %v", err)
	}

	if got.Status != workflow.StateBuyerApproved.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateBuyerApproved)
	}
	if got.BuyerApprovalDate == nil {
		t.Error("buyer approval date should be stamped")
	}
}

func TestBuyerDecision_AnyOtherValueDisapproves(t *testing.T) {
	app := testApplication(workflow.StateInvoiceUploaded)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	got, err := svc.BuyerDecision(context.Background(), buyerPrincipal, app.ID, "rejected")
	if err != nil {
		t.Fatalf("BuyerDecision() failed: %v", err)
	}
	if got.Status != workflow.StateBuyerDisapproved.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateBuyerDisapproved)
	}
}

func TestBuyerDecision_NotTheBoundBuyer(t *testing.T) {
	app := testApplication(workflow.StateInvoiceUploaded)
	otherBuyer := int64(999)
	app.BuyerID = &otherBuyer
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.BuyerDecision(context.Background(), buyerPrincipal, app.ID, "approved")
	assertKind(t, err, errs.KindForbidden)
}

// FundInvoice

func TestFundInvoice_ComputesFeesAndFundedAmount(t *testing.T) {
	app := testApplication(workflow.StateBuyerApproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, notifier)

	got, err := svc.FundInvoice(context.Background(), lenderPrincipal, app.ID, 5000)
	if err != nil {
		t.Fatalf("FundInvoice() failed: %v", err)
	}

	// fees = 5000 * (10/100) * (6/12) = 250
	if got.FundedAmount == nil || *got.FundedAmount != 4750 {
		t.Errorf("funded_amount = %v, want 4750", got.FundedAmount)
	}
	if got.InvoiceAmount == nil || *got.InvoiceAmount != 5000 {
		t.Errorf("invoice_amount = %v, want 5000", got.InvoiceAmount)
	}
	if got.Status != workflow.StateInvoiceFunded.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateInvoiceFunded)
	}
	if got.DisbursedDate == nil {
		t.Error("disbursed date should be stamped")
	}
	if len(notifier.calls) != 1 || notifier.calls[0].recipients[0] != msmePrincipal.UserID {
		t.Error("msme should be notified of the funding")
	}
}

func TestFundInvoice_ExceedsAssignedLimit(t *testing.T) {
	app := testApplication(workflow.StateBuyerApproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.FundInvoice(context.Background(), lenderPrincipal, app.ID, 10001)
	assertKind(t, err, errs.KindInsufficientLimit)

	if app.Status != workflow.StateBuyerApproved.String() {
		t.Errorf("status = %s, want %s", app.Status, workflow.StateBuyerApproved)
	}
}

func TestFundInvoice_BeforeBuyerApproval(t *testing.T) {
	app := testApplication(workflow.StateInvoiceUploaded)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.FundInvoice(context.Background(), lenderPrincipal, app.ID, 5000)
	assertKind(t, err, errs.KindInvalidState)
}

func TestFundInvoice_NonPositiveAmount(t *testing.T) {
	app := testApplication(workflow.StateBuyerApproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.FundInvoice(context.Background(), lenderPrincipal, app.ID, 0)
	assertKind(t, err, errs.KindValidation)
}

// MarkRepaid

func TestMarkRepaid_Success(t *testing.T) {
	app := testApplication(workflow.StateInvoiceFunded)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, notifier)

	got, err := svc.MarkRepaid(context.Background(), msmePrincipal, app.ID)
	if err != nil {
		t.Fatalf("MarkRepaid() failed: %v", err)
	}

	if !got.IsRepaid {
		t.Error("is_repaid should be set")
	}
	if got.RepaymentDate == nil {
		t.Error("repayment date should be stamped")
	}
	// repayment does not advance the status; only closing does
	if got.Status != workflow.StateInvoiceFunded.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateInvoiceFunded)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].recipients[0] != lenderPrincipal.UserID {
		t.Error("assigned lender should be notified of the repayment")
	}
}

func TestMarkRepaid_BeforeFunding(t *testing.T) {
	app := testApplication(workflow.StateBuyerApproved)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.MarkRepaid(context.Background(), msmePrincipal, app.ID)
	assertKind(t, err, errs.KindInvalidState)
}

func TestMarkRepaid_AlreadyRepaid(t *testing.T) {
	app := testApplication(workflow.StateInvoiceFunded)
	app.IsRepaid = true
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	_, err := svc.MarkRepaid(context.Background(), msmePrincipal, app.ID)
	assertKind(t, err, errs.KindInvalidState)
}

// CloseApplication

func TestCloseApplication_Success(t *testing.T) {
	app := testApplication(workflow.StateInvoiceFunded)
	app.IsRepaid = true
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	got, err := svc.CloseApplication(context.Background(), lenderPrincipal, app.ID)
	if err != nil {
		t.Fatalf("CloseApplication() failed: %v", err)
	}
	if got.Status != workflow.StateClosed.String() {
		t.Errorf("status = %s, want %s", got.Status, workflow.StateClosed)
	}
}

func TestCloseApplication_BeforeRepayment(t *testing.T) {
	app := testApplication(workflow.StateInvoiceFunded)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.CloseApplication(context.Background(), lenderPrincipal, app.ID)
	assertKind(t, err, errs.KindInvalidState)

	if app.Status != workflow.StateInvoiceFunded.String() {
		t.Errorf("status = %s, want %s", app.Status, workflow.StateInvoiceFunded)
	}
}

// Optimistic concurrency

func TestConcurrentUpdateReturnsConflict(t *testing.T) {
	app := testApplication(workflow.StateAssignedToLender)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
		updateFunc: func(ctx context.Context, app *entity.Application) error {
			return port.ErrVersionMismatch
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})

	_, err := svc.LenderDecision(context.Background(), lenderPrincipal, app.ID, LenderDecisionInput{
		Decision:     "approve",
		InterestRate: 10,
		Tenure:       6,
	})
	assertKind(t, err, errs.KindConflict)
}

// Listing and views

func TestListApplications_RoleFilters(t *testing.T) {
	var captured port.ApplicationQuery
	appRepo := &mockAppRepo{
		listFunc: func(ctx context.Context, q port.ApplicationQuery) ([]*entity.Application, error) {
			captured = q
			return []*entity.Application{}, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})
	ctx := context.Background()

	if _, err := svc.ListApplications(ctx, adminPrincipal, 0, 10); err != nil {
		t.Fatalf("ListApplications(admin) failed: %v", err)
	}
	if captured.MSMEID != 0 || captured.BuyerID != 0 || captured.AssignedLenderID != 0 {
		t.Errorf("admin query should be unfiltered, got %+v", captured)
	}

	if _, err := svc.ListApplications(ctx, msmePrincipal, 0, 10); err != nil {
		t.Fatalf("ListApplications(msme) failed: %v", err)
	}
	if captured.MSMEID != msmePrincipal.UserID {
		t.Errorf("msme query should filter by msme_id, got %+v", captured)
	}

	if _, err := svc.ListApplications(ctx, buyerPrincipal, 0, 10); err != nil {
		t.Fatalf("ListApplications(buyer) failed: %v", err)
	}
	if captured.BuyerID != buyerPrincipal.UserID {
		t.Errorf("buyer query should filter by buyer_id, got %+v", captured)
	}

	if _, err := svc.ListApplications(ctx, lenderPrincipal, 0, 10); err != nil {
		t.Fatalf("ListApplications(lender) failed: %v", err)
	}
	if captured.AssignedLenderID != 5 {
		t.Errorf("lender query should filter by assigned lender profile id, got %+v", captured)
	}
}

func TestListApplications_DefaultsPagination(t *testing.T) {
	var captured port.ApplicationQuery
	appRepo := &mockAppRepo{
		listFunc: func(ctx context.Context, q port.ApplicationQuery) ([]*entity.Application, error) {
			captured = q
			return []*entity.Application{}, nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, &mockLenderRepo{}, &mockNotifier{})

	if _, err := svc.ListApplications(context.Background(), adminPrincipal, -5, 0); err != nil {
		t.Fatalf("ListApplications() failed: %v", err)
	}
	if captured.Skip != 0 || captured.Limit != 10 {
		t.Errorf("query = %+v, want skip 0 limit 10", captured)
	}
}

func TestGetApplication_OwnershipEnforced(t *testing.T) {
	app := testApplication(workflow.StateInvoiceUploaded)
	appRepo := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Application, error) {
			return app, nil
		},
	}
	lenderRepo := &mockLenderRepo{
		getByUserIDFunc: func(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
		getByIDFunc: func(ctx context.Context, id int64) (*entity.LenderProfile, error) {
			return testLenderProfile(), nil
		},
	}
	svc := newTestService(appRepo, &mockUserRepo{}, lenderRepo, &mockNotifier{})
	ctx := context.Background()

	// every party to the application can view it
	for _, principal := range []entity.Principal{adminPrincipal, msmePrincipal, buyerPrincipal, lenderPrincipal} {
		if _, err := svc.GetApplication(ctx, principal, app.ID); err != nil {
			t.Errorf("GetApplication(%s) failed: %v", principal.Role, err)
		}
	}

	stranger := entity.Principal{UserID: 777, Role: entity.RoleMSME}
	_, err := svc.GetApplication(ctx, stranger, app.ID)
	assertKind(t, err, errs.KindForbidden)
}
