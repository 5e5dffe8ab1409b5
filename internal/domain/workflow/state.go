package workflow

// State represents a workflow state in the financing lifecycle
type State string

const (
	StateSubmitted         State = "submitted"
	StateUnderReview       State = "under_review"
	StateApproved          State = "approved"
	StateRejected          State = "rejected"
	StateAssignedToLender  State = "assigned_to_lender"
	StateLenderApproved    State = "lender_approved"
	StateLenderDisapproved State = "lender_disapproved"
	StateInvoiceUploaded   State = "invoice_uploaded"
	StateBuyerApproved     State = "buyer_approved"
	StateBuyerDisapproved  State = "buyer_disapproved"
	StateInvoiceFunded     State = "invoice_funded"
	StateClosed            State = "closed"
)

var validStates = map[State]bool{
	StateSubmitted:         true,
	StateUnderReview:       true,
	StateApproved:          true,
	StateRejected:          true,
	StateAssignedToLender:  true,
	StateLenderApproved:    true,
	StateLenderDisapproved: true,
	StateInvoiceUploaded:   true,
	StateBuyerApproved:     true,
	StateBuyerDisapproved:  true,
	StateInvoiceFunded:     true,
	StateClosed:            true,
}

// lender_disapproved is not terminal: an admin may re-route the
// application to a different lender as long as no buyer is bound.
var terminalStates = map[State]bool{
	StateRejected:         true,
	StateBuyerDisapproved: true,
	StateClosed:           true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// LenderAssigned reports whether a lender assignment exists at this state.
// Applications in these states must carry a non-nil assignedLender.
func (s State) LenderAssigned() bool {
	switch s {
	case StateAssignedToLender, StateLenderApproved, StateLenderDisapproved,
		StateInvoiceUploaded, StateBuyerApproved, StateBuyerDisapproved,
		StateInvoiceFunded, StateClosed:
		return true
	}
	return false
}

// BuyerAssigned reports whether a buyer is bound to the application at this state.
func (s State) BuyerAssigned() bool {
	switch s {
	case StateInvoiceUploaded, StateBuyerApproved, StateBuyerDisapproved,
		StateInvoiceFunded, StateClosed:
		return true
	}
	return false
}
