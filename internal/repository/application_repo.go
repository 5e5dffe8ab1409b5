package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// ApplicationRepository handles financing application database operations
type ApplicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sql.DB, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

const applicationColumns = `
	id, version, msme_id, buyer_id, assigned_lender_id,
	credit_score, monthly_avg_txn,
	doc_cr, doc_trade_license, doc_tax_card, doc_estd_certificate,
	doc_audited_report, doc_bank_statement,
	assigned_limit, interest_rate, tenure,
	uploaded_invoice, invoice_amount, funded_amount,
	lender_approval_date, buyer_approval_date, disbursed_date, repayment_date,
	is_repaid, status, created_at, updated_at`

// Create inserts a new application at version 1 and sets its generated ID
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	query := `
		INSERT INTO applications (
			version, msme_id, buyer_id, assigned_lender_id,
			credit_score, monthly_avg_txn,
			doc_cr, doc_trade_license, doc_tax_card, doc_estd_certificate,
			doc_audited_report, doc_bank_statement,
			assigned_limit, interest_rate, tenure,
			uploaded_invoice, invoice_amount, funded_amount,
			lender_approval_date, buyer_approval_date, disbursed_date, repayment_date,
			is_repaid, status
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		app.MSMEID,
		app.BuyerID,
		app.AssignedLenderID,
		app.CreditScore,
		app.MonthlyAvgTxn,
		app.Documents.CR,
		app.Documents.TradeLicense,
		app.Documents.TaxCard,
		app.Documents.EstdCertificate,
		app.Documents.AuditedReport,
		app.Documents.BankStatement,
		app.AssignedLimit,
		app.InterestRate,
		app.Tenure,
		app.UploadedInvoice,
		app.InvoiceAmount,
		app.FundedAmount,
		app.LenderApprovalDate,
		app.BuyerApprovalDate,
		app.DisbursedDate,
		app.RepaymentDate,
		app.IsRepaid,
		app.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.Int64("msme_id", app.MSMEID), zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	app.ID = id
	app.Version = 1
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	app, err := scanApplication(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// List retrieves applications matching the query, newest first
func (r *ApplicationRepository) List(ctx context.Context, q port.ApplicationQuery) ([]*entity.Application, error) {
	var conds []string
	var args []interface{}

	if q.MSMEID != 0 {
		conds = append(conds, "msme_id = ?")
		args = append(args, q.MSMEID)
	}
	if q.BuyerID != 0 {
		conds = append(conds, "buyer_id = ?")
		args = append(args, q.BuyerID)
	}
	if q.AssignedLenderID != 0 {
		conds = append(conds, "assigned_lender_id = ?")
		args = append(args, q.AssignedLenderID)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, q.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.Application
	for rows.Next() {
		app, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// Update writes the application back, guarded by the version the caller
// read. If the stored version differs the write is rejected with
// port.ErrVersionMismatch and no rows change. On success app.Version is
// advanced to the new stored value.
func (r *ApplicationRepository) Update(ctx context.Context, app *entity.Application) error {
	query := `
		UPDATE applications SET
			version = version + 1,
			buyer_id = ?, assigned_lender_id = ?,
			credit_score = ?, monthly_avg_txn = ?,
			doc_cr = ?, doc_trade_license = ?, doc_tax_card = ?, doc_estd_certificate = ?,
			doc_audited_report = ?, doc_bank_statement = ?,
			assigned_limit = ?, interest_rate = ?, tenure = ?,
			uploaded_invoice = ?, invoice_amount = ?, funded_amount = ?,
			lender_approval_date = ?, buyer_approval_date = ?, disbursed_date = ?, repayment_date = ?,
			is_repaid = ?, status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		app.BuyerID,
		app.AssignedLenderID,
		app.CreditScore,
		app.MonthlyAvgTxn,
		app.Documents.CR,
		app.Documents.TradeLicense,
		app.Documents.TaxCard,
		app.Documents.EstdCertificate,
		app.Documents.AuditedReport,
		app.Documents.BankStatement,
		app.AssignedLimit,
		app.InterestRate,
		app.Tenure,
		app.UploadedInvoice,
		app.InvoiceAmount,
		app.FundedAmount,
		app.LenderApprovalDate,
		app.BuyerApprovalDate,
		app.DisbursedDate,
		app.RepaymentDate,
		app.IsRepaid,
		app.Status,
		app.ID,
		app.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update application", zap.Int64("id", app.ID), zap.Error(err))
		return fmt.Errorf("failed to update application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionMismatch
	}

	app.Version++
	return nil
}

func scanApplication(scan func(dest ...interface{}) error) (*entity.Application, error) {
	var app entity.Application
	var (
		buyerID          sql.NullInt64
		assignedLenderID sql.NullInt64
		assignedLimit    sql.NullFloat64
		interestRate     sql.NullFloat64
		tenure           sql.NullInt64
		invoiceAmount    sql.NullFloat64
		fundedAmount     sql.NullFloat64
		lenderApproval   sql.NullTime
		buyerApproval    sql.NullTime
		disbursed        sql.NullTime
		repayment        sql.NullTime
	)

	err := scan(
		&app.ID,
		&app.Version,
		&app.MSMEID,
		&buyerID,
		&assignedLenderID,
		&app.CreditScore,
		&app.MonthlyAvgTxn,
		&app.Documents.CR,
		&app.Documents.TradeLicense,
		&app.Documents.TaxCard,
		&app.Documents.EstdCertificate,
		&app.Documents.AuditedReport,
		&app.Documents.BankStatement,
		&assignedLimit,
		&interestRate,
		&tenure,
		&app.UploadedInvoice,
		&invoiceAmount,
		&fundedAmount,
		&lenderApproval,
		&buyerApproval,
		&disbursed,
		&repayment,
		&app.IsRepaid,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if buyerID.Valid {
		app.BuyerID = &buyerID.Int64
	}
	if assignedLenderID.Valid {
		app.AssignedLenderID = &assignedLenderID.Int64
	}
	if assignedLimit.Valid {
		app.AssignedLimit = &assignedLimit.Float64
	}
	if interestRate.Valid {
		app.InterestRate = &interestRate.Float64
	}
	if tenure.Valid {
		t := int(tenure.Int64)
		app.Tenure = &t
	}
	if invoiceAmount.Valid {
		app.InvoiceAmount = &invoiceAmount.Float64
	}
	if fundedAmount.Valid {
		app.FundedAmount = &fundedAmount.Float64
	}
	if lenderApproval.Valid {
		app.LenderApprovalDate = &lenderApproval.Time
	}
	if buyerApproval.Valid {
		app.BuyerApprovalDate = &buyerApproval.Time
	}
	if disbursed.Valid {
		app.DisbursedDate = &disbursed.Time
	}
	if repayment.Valid {
		app.RepaymentDate = &repayment.Time
	}

	return &app, nil
}
