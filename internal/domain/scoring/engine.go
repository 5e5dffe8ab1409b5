// Package scoring implements the deterministic lender-selection algorithm.
package scoring

import "github.com/madadhq/invoice-financing/internal/domain/entity"

// Result is the outcome of scoring one application against a lender set.
// Lender is nil when no lender produced a positive limit; callers must
// treat that as a failure, never as a zero-limit assignment.
type Result struct {
	Lender *entity.LenderProfile
	Limit  float64
}

// Score evaluates every lender profile against the application and returns
// the lender with the strictly greatest computed limit. Ties keep the first
// lender in iteration order.
//
// For each lender L:
//
//	scoreMul = creditScore > L.threshold ? L.high : L.low
//	tier     = L.documentMultipliers[count of present registry docs]
//	total    = monthlyAvgTxn * scoreMul * tier * L.bankStatementMul * L.auditedReportMul
func Score(app *entity.Application, lenders []*entity.LenderProfile) Result {
	best := Result{}
	presentDocs := app.Documents.RequiredPresent()

	for _, lender := range lenders {
		scoreMul := lender.CreditScoreMultiplierLow
		if app.CreditScore > lender.CreditScoreThreshold {
			scoreMul = lender.CreditScoreMultiplierHigh
		}

		tier := lender.TierMultiplier(presentDocs)

		total := app.MonthlyAvgTxn * scoreMul * tier *
			lender.BankStatementMultiplier * lender.AuditedReportMultiplier

		if total > best.Limit {
			best = Result{Lender: lender, Limit: total}
		}
	}

	return best
}
