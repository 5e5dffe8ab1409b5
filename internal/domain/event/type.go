package event

// Type identifies the type of domain event
type Type string

const (
	TypeApplicationSubmitted Type = "application.submitted"
	TypeApplicationRouted    Type = "application.routed"
	TypeLenderApproved       Type = "lender.approved"
	TypeLenderDisapproved    Type = "lender.disapproved"
	TypeInvoiceUploaded      Type = "invoice.uploaded"
	TypeBuyerApproved        Type = "buyer.approved"
	TypeBuyerDisapproved     Type = "buyer.disapproved"
	TypeInvoiceFunded        Type = "invoice.funded"
	TypeLoanRepaid           Type = "loan.repaid"
	TypeApplicationClosed    Type = "application.closed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationSubmitted,
		TypeApplicationRouted,
		TypeLenderApproved,
		TypeLenderDisapproved,
		TypeInvoiceUploaded,
		TypeBuyerApproved,
		TypeBuyerDisapproved,
		TypeInvoiceFunded,
		TypeLoanRepaid,
		TypeApplicationClosed:
		return true
	default:
		return false
	}
}
