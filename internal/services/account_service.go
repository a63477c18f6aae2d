package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/twittor/backend/internal/metrics"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
	"github.com/anonto42/twittor/backend/internal/token"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/anonto42/twittor/backend/pkg/mailer"
	"go.uber.org/zap"
)

const (
	EmailKindActivate = "activate"
	EmailKindReset    = "reset_password"
)

// EmailComposer renders the bodies of account emails.
type EmailComposer interface {
	Activation(user *models.User, link string) (text, html string, err error)
	PasswordReset(user *models.User, link, requestLink string) (text, html string, err error)
}

// AccountOptions carries the settings AccountService needs from the config.
type AccountOptions struct {
	BaseURL         string
	SubjectActivate string
	SubjectReset    string
}

// AccountService owns activation, password reset and profile edits.
type AccountService struct {
	userRepo   repositories.UserRepository
	signer     *token.Signer
	mailer     mailer.Mailer
	deliveries mailer.DeliveryLog
	composer   EmailComposer
	opts       AccountOptions
}

func NewAccountService(userRepo repositories.UserRepository, signer *token.Signer, m mailer.Mailer, composer EmailComposer, opts AccountOptions) *AccountService {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.SubjectActivate == "" {
		opts.SubjectActivate = "[twittor] Activate your account"
	}
	if opts.SubjectReset == "" {
		opts.SubjectReset = "[twittor] Reset your password"
	}
	return &AccountService{userRepo: userRepo, signer: signer, mailer: m, composer: composer, opts: opts}
}

// WithDeliveryLog records every email attempt in log. A nil log disables recording.
func (s *AccountService) WithDeliveryLog(log mailer.DeliveryLog) *AccountService {
	s.deliveries = log
	return s
}

// SendActivation emails user a link that activates the account.
func (s *AccountService) SendActivation(ctx context.Context, user *models.User) error {
	tok, err := s.signer.Issue(user.ID, token.PurposeActivate)
	if err != nil {
		return models.NewInternalError(err)
	}
	text, html, err := s.composer.Activation(user, s.opts.BaseURL+"/user_activate/"+tok)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.dispatch(ctx, EmailKindActivate, mailer.Message{
		Subject:    s.opts.SubjectActivate,
		Recipients: []string{user.Email},
		TextBody:   text,
		HTMLBody:   html,
	})
	return nil
}

// RequestPasswordReset emails a reset link when email belongs to a user. Unknown
// addresses are silently ignored so callers cannot tell them apart.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if user == nil {
		logger.Log.Debug("password reset requested for unknown email")
		return nil
	}

	tok, err := s.signer.Issue(user.ID, token.PurposeReset)
	if err != nil {
		return models.NewInternalError(err)
	}
	text, html, err := s.composer.PasswordReset(user,
		s.opts.BaseURL+"/password_reset/"+tok,
		s.opts.BaseURL+"/reset_password_request",
	)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.dispatch(ctx, EmailKindReset, mailer.Message{
		Subject:    s.opts.SubjectReset,
		Recipients: []string{user.Email},
		TextBody:   text,
		HTMLBody:   html,
	})
	return nil
}

// VerifyToken returns the user a token was issued to. An invalid or expired token,
// or one whose user is gone, yields nil without an error.
func (s *AccountService) VerifyToken(ctx context.Context, tok string, purpose token.Purpose) (*models.User, error) {
	id, ok := s.signer.Verify(tok, purpose)
	if !ok {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Activate marks the token's user as activated. It returns nil for a bad token.
func (s *AccountService) Activate(ctx context.Context, tok string) (*models.User, error) {
	user, err := s.VerifyToken(ctx, tok, token.PurposeActivate)
	if err != nil || user == nil {
		return nil, err
	}
	if err := s.userRepo.SetActivated(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsActivated = true
	return user, nil
}

// ActivateByUsername activates an account without a token.
func (s *AccountService) ActivateByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if err := s.userRepo.SetActivated(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsActivated = true
	return user, nil
}

// ResetPassword sets a new password for the token's user. It returns nil for a bad token.
func (s *AccountService) ResetPassword(ctx context.Context, tok, password string) (*models.User, error) {
	user, err := s.VerifyToken(ctx, tok, token.PurposeReset)
	if err != nil || user == nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.SetPassword(ctx, user.ID, user.PasswordHash); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, aboutMe string) error {
	aboutMe = strings.TrimSpace(aboutMe)
	if len([]rune(aboutMe)) > 140 {
		return models.NewFieldError("about_me", "Field cannot be longer than 140 characters.")
	}
	return s.userRepo.UpdateAboutMe(ctx, userID, aboutMe)
}

// dispatch sends msg and records the outcome. Failures never reach the caller.
func (s *AccountService) dispatch(ctx context.Context, kind string, msg mailer.Message) {
	err := s.mailer.Send(ctx, msg)
	metrics.EmailsSentTotal.WithLabelValues(kind, metrics.Result(err)).Inc()
	if err != nil {
		logger.Log.Error("failed to send email",
			zap.String("kind", kind),
			zap.Strings("recipients", msg.Recipients),
			zap.Error(err),
		)
	}

	if s.deliveries == nil {
		return
	}
	if recErr := s.deliveries.Record(ctx, mailer.Delivery{Kind: kind, Message: msg, Err: err, At: time.Now()}); recErr != nil {
		logger.Log.Warn("failed to record email delivery", zap.String("kind", kind), zap.Error(recErr))
	}
}
