package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// LenderRepository handles lender profile database operations
type LenderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLenderRepository creates a new lender repository
func NewLenderRepository(db *sql.DB, logger *zap.Logger) *LenderRepository {
	return &LenderRepository{
		db:     db,
		logger: logger,
	}
}

const lenderColumns = `
	id, user_id, name, program_code, credit_score_threshold,
	credit_score_multiplier_high, credit_score_multiplier_low,
	doc_multiplier_all4, doc_multiplier_any3, doc_multiplier_any2, doc_multiplier_only_cr,
	bank_statement_multiplier, audited_report_multiplier,
	created_at, updated_at`

// Create inserts a new lender profile and sets its generated ID
func (r *LenderRepository) Create(ctx context.Context, profile *entity.LenderProfile) error {
	query := `
		INSERT INTO lender_profiles (
			user_id, name, program_code, credit_score_threshold,
			credit_score_multiplier_high, credit_score_multiplier_low,
			doc_multiplier_all4, doc_multiplier_any3, doc_multiplier_any2, doc_multiplier_only_cr,
			bank_statement_multiplier, audited_report_multiplier
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Name,
		profile.ProgramCode,
		profile.CreditScoreThreshold,
		profile.CreditScoreMultiplierHigh,
		profile.CreditScoreMultiplierLow,
		profile.DocumentMultipliers.All4,
		profile.DocumentMultipliers.Any3,
		profile.DocumentMultipliers.Any2,
		profile.DocumentMultipliers.OnlyCR,
		profile.BankStatementMultiplier,
		profile.AuditedReportMultiplier,
	)
	if err != nil {
		r.logger.Error("Failed to create lender profile", zap.String("name", profile.Name), zap.Error(err))
		return fmt.Errorf("failed to create lender profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	profile.ID = id
	return nil
}

// GetByID retrieves a lender profile by ID
func (r *LenderRepository) GetByID(ctx context.Context, id int64) (*entity.LenderProfile, error) {
	query := `SELECT ` + lenderColumns + ` FROM lender_profiles WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByUserID retrieves the profile owned by a lender user account
func (r *LenderRepository) GetByUserID(ctx context.Context, userID int64) (*entity.LenderProfile, error) {
	query := `SELECT ` + lenderColumns + ` FROM lender_profiles WHERE user_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// List retrieves all lender profiles ordered by ID
func (r *LenderRepository) List(ctx context.Context) ([]*entity.LenderProfile, error) {
	query := `SELECT ` + lenderColumns + ` FROM lender_profiles ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list lender profiles", zap.Error(err))
		return nil, fmt.Errorf("failed to list lender profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*entity.LenderProfile
	for rows.Next() {
		profile, err := scanLender(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

func (r *LenderRepository) scanOne(row *sql.Row) (*entity.LenderProfile, error) {
	var p entity.LenderProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.ProgramCode,
		&p.CreditScoreThreshold,
		&p.CreditScoreMultiplierHigh,
		&p.CreditScoreMultiplierLow,
		&p.DocumentMultipliers.All4,
		&p.DocumentMultipliers.Any3,
		&p.DocumentMultipliers.Any2,
		&p.DocumentMultipliers.OnlyCR,
		&p.BankStatementMultiplier,
		&p.AuditedReportMultiplier,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get lender profile", zap.Error(err))
		return nil, fmt.Errorf("failed to get lender profile: %w", err)
	}
	return &p, nil
}

func scanLender(rows *sql.Rows) (*entity.LenderProfile, error) {
	var p entity.LenderProfile
	err := rows.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.ProgramCode,
		&p.CreditScoreThreshold,
		&p.CreditScoreMultiplierHigh,
		&p.CreditScoreMultiplierLow,
		&p.DocumentMultipliers.All4,
		&p.DocumentMultipliers.Any3,
		&p.DocumentMultipliers.Any2,
		&p.DocumentMultipliers.OnlyCR,
		&p.BankStatementMultiplier,
		&p.AuditedReportMultiplier,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan lender profile: %w", err)
	}
	return &p, nil
}
