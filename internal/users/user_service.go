package users

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/khanghh/clubhub/internal/auth"
	"github.com/khanghh/clubhub/internal/common"
	"github.com/khanghh/clubhub/internal/store"
	"github.com/khanghh/clubhub/model"
	"github.com/khanghh/clubhub/params"
	"golang.org/x/crypto/bcrypt"
)

// CodeSender delivers a verification code to an email address.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email string, code string, expiresIn time.Duration) error
}

type Options struct {
	MasterKey      string
	PendingTTL     time.Duration
	ResendCooldown time.Duration
}

type RegisterResult struct {
	Email     string
	Pending   bool // a registration was already waiting for verification, no mail sent
	ExpiresAt time.Time
}

type Session struct {
	User  *model.User
	Token string
}

type UserService struct {
	userRepo   UserRepository
	pending    store.Store[PendingRegistration]
	codeSender CodeSender
	tokens     *auth.TokenIssuer
	opts       Options
	now        func() time.Time
}

func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *UserService) hashCode(email string, code string) string {
	return common.CalculateHash(s.opts.MasterKey, email, ":", code)
}

func (s *UserService) newCode(email string) (string, string, error) {
	code, err := common.GenerateOTP(params.VerificationCodeLength)
	if err != nil {
		return "", "", err
	}
	return code, s.hashCode(email, code), nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	return s.userRepo.FirstByID(ctx, userID)
}

func (s *UserService) Register(ctx context.Context, email string, password string) (*RegisterResult, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < params.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.userRepo.FirstByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if user != nil && user.IsVerified {
		return nil, ErrEmailRegistered
	}

	existing, err := s.pending.Get(ctx, email)
	if err == nil {
		return &RegisterResult{Email: email, Pending: true, ExpiresAt: existing.ExpiresAt}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	code, codeHash, err := s.newCode(email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reg := PendingRegistration{
		Email:        email,
		PasswordHash: string(passwordHash),
		CodeHash:     codeHash,
		CreatedAt:    now,
		LastSentAt:   now,
		ExpiresAt:    now.Add(s.opts.PendingTTL),
	}
	err = s.pending.Create(ctx, email, &reg, s.opts.PendingTTL)
	if errors.Is(err, store.ErrExists) {
		return &RegisterResult{Email: email, Pending: true, ExpiresAt: reg.ExpiresAt}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.codeSender.SendVerificationCode(ctx, email, code, s.opts.PendingTTL); err != nil {
		if delErr := s.pending.Delete(ctx, email); delErr != nil && !errors.Is(delErr, store.ErrNotFound) {
			slog.Error("failed to discard pending registration", "email", email, "error", delErr)
		}
		return nil, err
	}
	return &RegisterResult{Email: email, ExpiresAt: reg.ExpiresAt}, nil
}

func (s *UserService) ResendCode(ctx context.Context, email string) (*RegisterResult, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	var (
		code string
		prev PendingRegistration
	)
	reg, err := s.pending.Update(ctx, email, func(reg *PendingRegistration) (time.Duration, error) {
		now := s.now()
		if wait := reg.LastSentAt.Add(s.opts.ResendCooldown).Sub(now); wait > 0 {
			return 0, &CooldownError{RetryAfter: wait}
		}
		newCode, codeHash, err := s.newCode(email)
		if err != nil {
			return 0, err
		}
		prev = *reg
		code = newCode
		reg.CodeHash = codeHash
		reg.Attempts = 0
		reg.LastSentAt = now
		reg.ExpiresAt = now.Add(s.opts.PendingTTL)
		return s.opts.PendingTTL, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return s.reopenUnverified(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	if err := s.codeSender.SendVerificationCode(ctx, email, code, s.opts.PendingTTL); err != nil {
		s.rollbackResend(ctx, &prev, reg.CodeHash)
		return nil, err
	}
	return &RegisterResult{Email: email, ExpiresAt: reg.ExpiresAt}, nil
}

// rollbackResend puts back the registration as it was before a resend whose
// mail never went out, unless another resend replaced it meanwhile.
func (s *UserService) rollbackResend(ctx context.Context, prev *PendingRegistration, sentCodeHash string) {
	_, err := s.pending.Update(ctx, prev.Email, func(reg *PendingRegistration) (time.Duration, error) {
		if reg.CodeHash != sentCodeHash {
			return 0, errResendSuperseded
		}
		remaining := prev.ExpiresAt.Sub(s.now())
		if remaining <= 0 {
			return 0, ErrRegistrationExpired
		}
		*reg = *prev
		return remaining, nil
	})
	switch {
	case err == nil, errors.Is(err, store.ErrNotFound), errors.Is(err, errResendSuperseded):
	case errors.Is(err, ErrRegistrationExpired):
		if err := s.pending.Delete(ctx, prev.Email); err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to discard pending registration", "email", prev.Email, "error", err)
		}
	default:
		slog.Error("failed to roll back verification code", "email", prev.Email, "error", err)
	}
}

// reopenUnverified starts a new pending registration for an unverified user
// row that has none, reusing the row's password hash.
func (s *UserService) reopenUnverified(ctx context.Context, email string) (*RegisterResult, error) {
	user, err := s.userRepo.FirstByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNoPendingRegistration
	}
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrEmailRegistered
	}

	now := s.now()
	if user.LastCodeSentAt != nil {
		if wait := user.LastCodeSentAt.Add(s.opts.ResendCooldown).Sub(now); wait > 0 {
			return nil, &CooldownError{RetryAfter: wait}
		}
	}
	code, codeHash, err := s.newCode(email)
	if err != nil {
		return nil, err
	}
	reg := PendingRegistration{
		Email:        email,
		PasswordHash: user.Password,
		CodeHash:     codeHash,
		CreatedAt:    now,
		LastSentAt:   now,
		ExpiresAt:    now.Add(s.opts.PendingTTL),
	}
	err = s.pending.Create(ctx, email, &reg, s.opts.PendingTTL)
	if errors.Is(err, store.ErrExists) {
		return nil, &CooldownError{RetryAfter: s.opts.ResendCooldown}
	}
	if err != nil {
		return nil, err
	}

	if err := s.codeSender.SendVerificationCode(ctx, email, code, s.opts.PendingTTL); err != nil {
		if delErr := s.pending.Delete(ctx, email); delErr != nil && !errors.Is(delErr, store.ErrNotFound) {
			slog.Error("failed to discard pending registration", "email", email, "error", delErr)
		}
		return nil, err
	}
	if err := s.userRepo.MarkCodeSent(ctx, email, now); err != nil {
		slog.Warn("failed to stamp verification code time", "email", email, "error", err)
	}
	return &RegisterResult{Email: email, ExpiresAt: reg.ExpiresAt}, nil
}

// recordFailedAttempt counts a wrong code against the pending registration and
// discards it once the attempt budget is spent.
func (s *UserService) recordFailedAttempt(ctx context.Context, email string) error {
	exhausted := false
	_, err := s.pending.Update(ctx, email, func(reg *PendingRegistration) (time.Duration, error) {
		remaining := reg.ExpiresAt.Sub(s.now())
		if remaining <= 0 {
			return 0, ErrRegistrationExpired
		}
		reg.Attempts++
		exhausted = reg.Attempts >= params.VerificationMaxAttempts
		return remaining, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrRegistrationExpired
	}
	if err != nil {
		return err
	}
	if exhausted {
		if err := s.pending.Delete(ctx, email); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return ErrTooManyAttempts
	}
	return ErrInvalidCode
}

func (s *UserService) Verify(ctx context.Context, email string, code string) (*Session, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	codeHash := s.hashCode(email, strings.TrimSpace(code))
	reg, err := s.pending.Take(ctx, email, func(reg *PendingRegistration) error {
		if !s.now().Before(reg.ExpiresAt) {
			return ErrRegistrationExpired
		}
		if !common.HashEqual(reg.CodeHash, codeHash) {
			return ErrInvalidCode
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRegistrationExpired
	}
	if errors.Is(err, ErrInvalidCode) {
		return nil, s.recordFailedAttempt(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Activate(ctx, reg.Email, reg.PasswordHash)
	if err != nil {
		if !errors.Is(err, ErrEmailRegistered) {
			s.restorePending(ctx, reg)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// restorePending puts a taken registration back so the user can retry after a
// failed activation.
func (s *UserService) restorePending(ctx context.Context, reg *PendingRegistration) {
	remaining := reg.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return
	}
	if err := s.pending.Create(ctx, reg.Email, reg, remaining); err != nil {
		slog.Error("failed to restore pending registration", "email", reg.Email, "error", err)
	}
}

func (s *UserService) Login(ctx context.Context, email string, password string) (*Session, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FirstByEmail(ctx, email)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil {
			if !user.IsVerified {
				return nil, ErrPendingVerification
			}
			token, err := s.tokens.Issue(user)
			if err != nil {
				return nil, err
			}
			return &Session{User: user, Token: token}, nil
		}
		if user.IsVerified {
			return nil, ErrInvalidCredentials
		}
		// an unverified row may have been re-registered with a new password
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	reg, err := s.pending.Get(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(reg.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return nil, ErrPendingVerification
}

func (s *UserService) Promote(ctx context.Context, email string, role string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	r, err := model.ParseRole(role)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateRole(ctx, email, r)
}

func NewUserService(userRepo UserRepository, pending store.Store[PendingRegistration], codeSender CodeSender, tokens *auth.TokenIssuer, opts Options) *UserService {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = params.PendingRegistrationTTL
	}
	if opts.ResendCooldown <= 0 {
		opts.ResendCooldown = params.ResendCodeCooldown
	}
	return &UserService{
		userRepo:   userRepo,
		pending:    pending,
		codeSender: codeSender,
		tokens:     tokens,
		opts:       opts,
		now:        time.Now,
	}
}
