package workflow

// Trigger represents an action that can cause a state transition
type Trigger string

const (
	TriggerSubmit           Trigger = "SUBMIT"
	TriggerRouteToLender    Trigger = "ROUTE_TO_LENDER"
	TriggerLenderApprove    Trigger = "LENDER_APPROVE"
	TriggerLenderDisapprove Trigger = "LENDER_DISAPPROVE"
	TriggerUploadInvoice    Trigger = "UPLOAD_INVOICE"
	TriggerBuyerApprove     Trigger = "BUYER_APPROVE"
	TriggerBuyerDisapprove  Trigger = "BUYER_DISAPPROVE"
	TriggerFundInvoice      Trigger = "FUND_INVOICE"
	TriggerClose            Trigger = "CLOSE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
