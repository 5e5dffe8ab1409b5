package port

import (
	"context"
	"errors"

	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// ErrVersionMismatch is returned by ApplicationRepository.Update when the
// stored version no longer matches the version the caller read.
var ErrVersionMismatch = errors.New("application version mismatch")

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailAndRole(ctx context.Context, email, role string) (*entity.User, error)
	ListByRole(ctx context.Context, role string) ([]*entity.User, error)
}

// LenderRepository defines persistence operations for LenderProfile
type LenderRepository interface {
	Create(ctx context.Context, profile *entity.LenderProfile) error
	GetByID(ctx context.Context, id int64) (*entity.LenderProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*entity.LenderProfile, error)
	List(ctx context.Context) ([]*entity.LenderProfile, error)
}

// ApplicationQuery filters the application list by ownership.
// Zero-valued fields are ignored.
type ApplicationQuery struct {
	MSMEID           int64
	BuyerID          int64
	AssignedLenderID int64
	Skip             int
	Limit            int
}

// ApplicationRepository defines persistence operations for Application.
// Update is a compare-and-swap on the version the caller read: the write
// applies only if the stored version still matches, and increments it.
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id int64) (*entity.Application, error)
	List(ctx context.Context, q ApplicationQuery) ([]*entity.Application, error)
	Update(ctx context.Context, app *entity.Application) error
}

// TransitionLogRepository defines persistence operations for the
// per-application audit trail
type TransitionLogRepository interface {
	Create(ctx context.Context, record *entity.TransitionRecord) error
	ListByApplication(ctx context.Context, applicationID int64) ([]*entity.TransitionRecord, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error
	ListByRecipient(ctx context.Context, recipientID int64) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, recipientID int64) (int, error)
	MarkAllRead(ctx context.Context, recipientID int64) error
}
