package workflow

// NewFinancingStateMachine creates a state machine configured for the
// invoice-financing lifecycle, positioned at initialState.
//
// Routing to a lender is permitted from every state in which no buyer is
// bound and the application has not been terminally processed; re-routing
// after a lender disapproval assigns the application to a fresh lender.
func NewFinancingStateMachine(initialState State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateSubmitted).
		Permit(TriggerRouteToLender, StateAssignedToLender)

	builder.Configure(StateUnderReview).
		Permit(TriggerRouteToLender, StateAssignedToLender)

	// approved is a recognized legacy state with no defined producer and
	// no outgoing transitions; records that carry it cannot be re-routed.
	builder.Configure(StateAssignedToLender).
		Permit(TriggerLenderApprove, StateLenderApproved).
		Permit(TriggerLenderDisapprove, StateLenderDisapproved).
		Permit(TriggerRouteToLender, StateAssignedToLender)

	builder.Configure(StateLenderApproved).
		Permit(TriggerUploadInvoice, StateInvoiceUploaded).
		Permit(TriggerRouteToLender, StateAssignedToLender)

	builder.Configure(StateLenderDisapproved).
		Permit(TriggerRouteToLender, StateAssignedToLender)

	builder.Configure(StateInvoiceUploaded).
		Permit(TriggerBuyerApprove, StateBuyerApproved).
		Permit(TriggerBuyerDisapprove, StateBuyerDisapproved)

	builder.Configure(StateBuyerApproved).
		Permit(TriggerFundInvoice, StateInvoiceFunded)

	builder.Configure(StateInvoiceFunded).
		Permit(TriggerClose, StateClosed)

	// rejected, buyer_disapproved and closed are terminal - no outgoing transitions

	return builder.Build(initialState)
}
