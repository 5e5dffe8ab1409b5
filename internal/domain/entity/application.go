package entity

import "time"

// Credit score bounds accepted on submission.
const (
	CreditScoreMin = 0
	CreditScoreMax = 800
)

// Documents is the fixed six-slot record of uploaded document URLs.
// An empty string means the slot was never filled.
type Documents struct {
	CR              string `json:"cr"`
	TradeLicense    string `json:"trade_license"`
	TaxCard         string `json:"tax_card"`
	EstdCertificate string `json:"estd_certificate"`
	AuditedReport   string `json:"audited_report"`
	BankStatement   string `json:"bank_statement"`
}

// RequiredPresent counts how many of the four registry documents
// (cr, tradeLicense, taxCard, estdCertificate) are present.
func (d Documents) RequiredPresent() int {
	n := 0
	for _, url := range []string{d.CR, d.TradeLicense, d.TaxCard, d.EstdCertificate} {
		if url != "" {
			n++
		}
	}
	return n
}

// Application is the central financing aggregate. Optional fields are
// pointers; each is set exactly once by the workflow transition that
// produces it. Version is the optimistic-concurrency token checked and
// incremented on every write.
type Application struct {
	ID               int64  `json:"id"`
	Version          int64  `json:"version"`
	MSMEID           int64  `json:"msme_id"`
	BuyerID          *int64 `json:"buyer_id,omitempty"`
	AssignedLenderID *int64 `json:"assigned_lender_id,omitempty"`

	CreditScore       int       `json:"credit_score"`
	MonthlyAvgTxn     float64   `json:"monthly_avg_transaction"`
	Documents         Documents `json:"documents"`

	AssignedLimit   *float64 `json:"assigned_limit,omitempty"`
	InterestRate    *float64 `json:"interest_rate,omitempty"`
	Tenure          *int     `json:"tenure,omitempty"`
	UploadedInvoice string   `json:"uploaded_invoice,omitempty"`
	InvoiceAmount   *float64 `json:"invoice_amount,omitempty"`
	FundedAmount    *float64 `json:"funded_amount,omitempty"`

	LenderApprovalDate *time.Time `json:"lender_approval_date,omitempty"`
	BuyerApprovalDate  *time.Time `json:"buyer_approval_date,omitempty"`
	DisbursedDate      *time.Time `json:"disbursed_date,omitempty"`
	RepaymentDate      *time.Time `json:"repayment_date,omitempty"`

	IsRepaid bool   `json:"is_repaid"`
	Status   string `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
