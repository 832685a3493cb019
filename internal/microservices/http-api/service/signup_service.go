package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/mailer"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// SignupService issues confirmation codes, creating the account on first contact.
type SignupService interface {
	// RequestCode is idempotent for an exact (username, email) pair: every call
	// rotates the stored hash and mails a fresh code.
	RequestCode(ctx context.Context, username, email string) (*models.User, error)
}

type SignupConfig struct {
	MailFrom    string
	MailTimeout time.Duration
}

type signupService struct {
	userRepo repository.UserRepository
	sender   mailer.Sender
	cfg      SignupConfig
	logger   *slog.Logger

	// overridable in tests
	newCode func() (string, error)
}

func NewSignupService(userRepo repository.UserRepository, sender mailer.Sender, cfg SignupConfig, logger *slog.Logger) SignupService {
	if cfg.MailTimeout <= 0 {
		cfg.MailTimeout = 10 * time.Second
	}
	return &signupService{
		userRepo: userRepo,
		sender:   sender,
		cfg:      cfg,
		logger:   logger,
		newCode:  auth.NewConfirmationCode,
	}
}

func validateIdentity(username, email string) error {
	if username == models.ReservedUsername {
		return validationf("username %q is reserved", username)
	}
	if !models.ValidUsername(username) {
		return validationf("username must be 1-150 characters of letters, digits and @.+-_")
	}
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return validationf("invalid email address")
	}
	return nil
}

func (s *signupService) RequestCode(ctx context.Context, username, email string) (*models.User, error) {
	if err := validateIdentity(username, email); err != nil {
		metrics.ConfirmationCodesIssued.WithLabelValues("rejected").Inc()
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate confirmation code: %w", err)
	}
	// hash outside the transaction so the row lock is not held across bcrypt
	hash, err := auth.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}

	var (
		user    *models.User
		created bool
	)
	err = s.userRepo.Transaction(ctx, func(repo repository.UserRepository) error {
		u, isNew, err := lockOrCreate(ctx, repo, username, email)
		if err != nil {
			return err
		}
		if err := repo.SetConfirmationHash(ctx, u.ID, hash); err != nil {
			return fmt.Errorf("store confirmation hash: %w", err)
		}
		u.ConfirmationHash = hash

		// delivery failure rolls back the account and the rotated hash
		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.MailTimeout)
		defer cancel()
		if err := s.sender.Send(sendCtx, mailer.ConfirmationMessage(s.cfg.MailFrom, u.Email, u.Username, code)); err != nil {
			return fmt.Errorf("%w: %v", ErrDelivery, err)
		}

		user, created = u, isNew
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDelivery):
			metrics.ConfirmationCodesIssued.WithLabelValues("delivery_failed").Inc()
			s.logger.WarnContext(ctx, "confirmation mail not delivered", "username", username, "error", err)
		case errors.Is(err, ErrValidation):
			metrics.ConfirmationCodesIssued.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	if created {
		metrics.ConfirmationCodesIssued.WithLabelValues("created").Inc()
		s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	} else {
		metrics.ConfirmationCodesIssued.WithLabelValues("rotated").Inc()
	}
	return user, nil
}

// lockOrCreate returns the locked account for the exact pair, inserting it when
// neither the username nor the email is taken.
func lockOrCreate(ctx context.Context, repo repository.UserRepository, username, email string) (*models.User, bool, error) {
	u, err := repo.LockByUsername(ctx, username)
	switch {
	case err == nil:
		if u.Email != email {
			return nil, false, validationf("username %q is registered with a different email", username)
		}
		return u, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil, false, validationf("email is registered with a different username")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	candidate := &models.User{Username: username, Email: email, Role: models.RoleUser}
	inserted, err := repo.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	if inserted {
		return candidate, true, nil
	}

	// a concurrent request for the same identity committed first
	u, err = repo.LockByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, validationf("email is registered with a different username")
	}
	if err != nil {
		return nil, false, err
	}
	if u.Email != email {
		return nil, false, validationf("username %q is registered with a different email", username)
	}
	return u, false, nil
}
