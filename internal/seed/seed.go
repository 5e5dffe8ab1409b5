// Package seed creates the demo accounts and lender programs used by
// local and staging environments. Seeding is idempotent: existing
// accounts are left untouched.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

type account struct {
	name     string
	email    string
	password string
	role     string
	profile  *entity.LenderProfile
}

var accounts = []account{
	{name: "ABC Trading", email: "abc@msme.com", password: "Password123", role: entity.RoleMSME},
	{name: "Madad Admin", email: "admin@madad.com", password: "AdminPass123", role: entity.RoleAdmin},
	{
		name: "Lender One", email: "lender1@portal.com", password: "LenderPass1", role: entity.RoleLender,
		profile: &entity.LenderProfile{
			ProgramCode:               "P1a",
			CreditScoreThreshold:      700,
			CreditScoreMultiplierHigh: 1.5,
			CreditScoreMultiplierLow:  1.0,
			DocumentMultipliers:       entity.DocumentMultipliers{All4: 1.2, Any3: 1.1, Any2: 1.05, OnlyCR: 1},
			BankStatementMultiplier:   1.2,
			AuditedReportMultiplier:   1.5,
		},
	},
	{
		name: "Lender Two", email: "lender2@portal.com", password: "LenderPass2", role: entity.RoleLender,
		profile: &entity.LenderProfile{
			ProgramCode:               "P2",
			CreditScoreThreshold:      700,
			CreditScoreMultiplierHigh: 1.5,
			CreditScoreMultiplierLow:  0.9,
			DocumentMultipliers:       entity.DocumentMultipliers{All4: 1.5, Any3: 1.25, Any2: 1.1, OnlyCR: 1},
			BankStatementMultiplier:   1.25,
			AuditedReportMultiplier:   1.25,
		},
	},
	{
		name: "Lender Three", email: "lender3@portal.com", password: "LenderPass3", role: entity.RoleLender,
		profile: &entity.LenderProfile{
			ProgramCode:               "P3",
			CreditScoreThreshold:      600,
			CreditScoreMultiplierHigh: 1.25,
			CreditScoreMultiplierLow:  1.0,
			DocumentMultipliers:       entity.DocumentMultipliers{All4: 1.25, Any3: 1.2, Any2: 1.1, OnlyCR: 1},
			BankStatementMultiplier:   1.25,
			AuditedReportMultiplier:   1.5,
		},
	},
	{name: "Buyer One", email: "buyer@portal.com", password: "BuyerPass123", role: entity.RoleBuyer},
}

// Run seeds the demo accounts. Each account is attempted independently
// so one failure does not stop the rest.
func Run(ctx context.Context, userRepo port.UserRepository, lenderRepo port.LenderRepository, logger *zap.Logger) {
	logger.Info("Seeding demo accounts")

	for _, acc := range accounts {
		if err := seedAccount(ctx, userRepo, lenderRepo, acc); err != nil {
			logger.Error("Failed to seed account", zap.String("email", acc.email), zap.Error(err))
		}
	}
}

func seedAccount(ctx context.Context, userRepo port.UserRepository, lenderRepo port.LenderRepository, acc account) error {
	user, err := userRepo.GetByEmail(ctx, acc.email)
	if err != nil {
		return err
	}
	if user == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user = &entity.User{
			Name:         acc.name,
			Email:        acc.email,
			PasswordHash: string(hash),
			Role:         acc.role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
	}

	if acc.profile == nil {
		return nil
	}

	existing, err := lenderRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	profile := *acc.profile
	profile.UserID = user.ID
	profile.Name = acc.name
	return lenderRepo.Create(ctx, &profile)
}
