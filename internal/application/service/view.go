package service

import (
	"strconv"
	"time"

	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// NotAvailable is the sentinel rendered for any field the application has
// not reached yet. The domain model keeps explicit optionals; the sentinel
// exists only in this API projection.
const NotAvailable = "N/A"

// PartyView identifies an msme or buyer in API responses.
type PartyView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LenderView identifies the assigned lender in API responses.
type LenderView struct {
	Name        string `json:"name"`
	ProgramCode string `json:"programCode"`
}

// DocumentsView renders the six document slots with sentinels.
type DocumentsView struct {
	CR              string `json:"cr"`
	TradeLicense    string `json:"tradeLicense"`
	TaxCard         string `json:"taxCard"`
	EstdCertificate string `json:"estdCertificate"`
	AuditedReport   string `json:"auditedReport"`
	BankStatement   string `json:"bankStatement"`
}

// ApplicationView is the normalized API projection of an Application.
// Field names follow the public API contract, with absent values rendered
// as the "N/A" sentinel and dates as RFC 3339 strings.
type ApplicationView struct {
	ID                 int64         `json:"_id"`
	MSME               PartyView     `json:"msme"`
	Buyer              PartyView     `json:"buyer"`
	AssignedLender     LenderView    `json:"assignedLender"`
	Documents          DocumentsView `json:"documents"`
	CreditScore        string        `json:"creditScore"`
	Status             string        `json:"status"`
	AssignedLimit      string        `json:"assignedLimit"`
	UploadedInvoice    string        `json:"uploadedInvoice"`
	InvoiceAmount      string        `json:"invoiceAmount"`
	FundedAmount       string        `json:"fundedAmount"`
	RepaymentDate      string        `json:"repaymentDate"`
	DisbursedDate      string        `json:"disbursedDate"`
	BuyerApprovalDate  string        `json:"buyerApprovalDate"`
	LenderApprovalDate string        `json:"lenderApprovalDate"`
	InterestRate       string        `json:"interestRate"`
	Tenure             string        `json:"tenure"`
	MonthlyAvgTxn      string        `json:"monthlyAverageTransaction"`
	IsRepaid           bool          `json:"isRepaid"`
	CreatedAt          string        `json:"createdAt"`
	UpdatedAt          string        `json:"updatedAt"`
}

// ProjectApplication builds the normalized view of an application. Any
// party pointer may be nil; the projection substitutes sentinels rather
// than failing.
func ProjectApplication(app *entity.Application, msme, buyer *entity.User, lender *entity.LenderProfile) *ApplicationView {
	view := &ApplicationView{
		ID:                 app.ID,
		MSME:               projectParty(msme),
		Buyer:              projectParty(buyer),
		AssignedLender:     projectLender(lender),
		Documents:          projectDocuments(app.Documents),
		CreditScore:        strconv.Itoa(app.CreditScore),
		Status:             orNA(app.Status),
		AssignedLimit:      floatOrNA(app.AssignedLimit),
		UploadedInvoice:    orNA(app.UploadedInvoice),
		InvoiceAmount:      floatOrNA(app.InvoiceAmount),
		FundedAmount:       floatOrNA(app.FundedAmount),
		RepaymentDate:      dateOrNA(app.RepaymentDate),
		DisbursedDate:      dateOrNA(app.DisbursedDate),
		BuyerApprovalDate:  dateOrNA(app.BuyerApprovalDate),
		LenderApprovalDate: dateOrNA(app.LenderApprovalDate),
		InterestRate:       floatOrNA(app.InterestRate),
		MonthlyAvgTxn:      strconv.FormatFloat(app.MonthlyAvgTxn, 'f', -1, 64),
		IsRepaid:           app.IsRepaid,
		CreatedAt:          app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          app.UpdatedAt.Format(time.RFC3339),
	}

	view.Tenure = NotAvailable
	if app.Tenure != nil {
		view.Tenure = strconv.Itoa(*app.Tenure)
	}

	return view
}

func projectParty(user *entity.User) PartyView {
	if user == nil {
		return PartyView{Name: NotAvailable, Email: NotAvailable}
	}
	return PartyView{Name: orNA(user.Name), Email: orNA(user.Email)}
}

func projectLender(lender *entity.LenderProfile) LenderView {
	if lender == nil {
		return LenderView{Name: NotAvailable, ProgramCode: NotAvailable}
	}
	return LenderView{Name: orNA(lender.Name), ProgramCode: orNA(lender.ProgramCode)}
}

func projectDocuments(docs entity.Documents) DocumentsView {
	return DocumentsView{
		CR:              orNA(docs.CR),
		TradeLicense:    orNA(docs.TradeLicense),
		TaxCard:         orNA(docs.TaxCard),
		EstdCertificate: orNA(docs.EstdCertificate),
		AuditedReport:   orNA(docs.AuditedReport),
		BankStatement:   orNA(docs.BankStatement),
	}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func floatOrNA(f *float64) string {
	if f == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func dateOrNA(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}
	return t.Format(time.RFC3339)
}
