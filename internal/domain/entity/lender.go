package entity

import "time"

// DocumentMultipliers maps document-completeness tiers to scoring multipliers.
// The tier is chosen by how many of the four registry documents are present.
type DocumentMultipliers struct {
	All4   float64 `json:"all4"`
	Any3   float64 `json:"any3"`
	Any2   float64 `json:"any2"`
	OnlyCR float64 `json:"only_cr"`
}

// LenderProfile holds a lender's scoring policy. Each lender user account
// owns exactly one profile.
type LenderProfile struct {
	ID                        int64               `json:"id"`
	UserID                    int64               `json:"user_id"`
	Name                      string              `json:"name"`
	ProgramCode               string              `json:"program_code"`
	CreditScoreThreshold      int                 `json:"credit_score_threshold"`
	CreditScoreMultiplierHigh float64             `json:"credit_score_multiplier_high"`
	CreditScoreMultiplierLow  float64             `json:"credit_score_multiplier_low"`
	DocumentMultipliers       DocumentMultipliers `json:"document_multipliers"`
	BankStatementMultiplier   float64             `json:"bank_statement_multiplier"`
	AuditedReportMultiplier   float64             `json:"audited_report_multiplier"`
	CreatedAt                 time.Time           `json:"created_at"`
	UpdatedAt                 time.Time           `json:"updated_at"`
}

// TierMultiplier returns the completeness-tier multiplier for the given
// number of present registry documents.
func (p *LenderProfile) TierMultiplier(presentDocs int) float64 {
	switch presentDocs {
	case 4:
		return p.DocumentMultipliers.All4
	case 3:
		return p.DocumentMultipliers.Any3
	case 2:
		return p.DocumentMultipliers.Any2
	default:
		return p.DocumentMultipliers.OnlyCR
	}
}
