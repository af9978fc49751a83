package users

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/khanghh/clubhub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FirstByEmail(ctx context.Context, email string) (*model.User, error)
	FirstByID(ctx context.Context, userID uint) (*model.User, error)
	Activate(ctx context.Context, email string, passwordHash string) (*model.User, error)
	UpdateRole(ctx context.Context, email string, role model.Role) error
	MarkCodeSent(ctx context.Context, email string, at time.Time) error
	DeleteExpiredUnverified(ctx context.Context, now time.Time) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *userRepository) first(ctx context.Context, query interface{}, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FirstByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) FirstByID(ctx context.Context, userID uint) (*model.User, error) {
	return r.first(ctx, "id = ?", userID)
}

// Activate persists a verified user for email. An unverified row left from an
// older registration is flipped in place, otherwise a new row is inserted.
func (r *userRepository) Activate(ctx context.Context, email string, passwordHash string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = model.User{
				Email:      email,
				Password:   passwordHash,
				Role:       model.RoleUser,
				IsVerified: true,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		if user.IsVerified {
			return ErrEmailRegistered
		}
		updates := map[string]interface{}{
			"password":                passwordHash,
			"is_verified":             true,
			"verification_expires_at": nil,
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		user.Password = passwordHash
		user.IsVerified = true
		user.VerificationExpiresAt = nil
		return nil
	})
	if isDuplicateKey(err) {
		return nil, ErrEmailRegistered
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, email string, role model.Role) error {
	ret := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND is_verified = ?", email, true).
		Update("role", role)
	if ret.Error != nil {
		return ret.Error
	}
	if ret.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MarkCodeSent records when a verification code was last mailed for an
// unverified row.
func (r *userRepository) MarkCodeSent(ctx context.Context, email string, at time.Time) error {
	ret := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND is_verified = ?", email, false).
		Update("last_code_sent_at", at)
	if ret.Error != nil {
		return ret.Error
	}
	if ret.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteExpiredUnverified removes unverified rows whose verification window
// closed before now. Verified rows are never matched.
func (r *userRepository) DeleteExpiredUnverified(ctx context.Context, now time.Time) (int64, error) {
	ret := r.db.WithContext(ctx).
		Where("is_verified = ? AND verification_expires_at IS NOT NULL AND verification_expires_at < ?", false, now).
		Delete(&model.User{})
	return ret.RowsAffected, ret.Error
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db}
}
