// Package services contains server-side business logic. This file implements
// AuthService, which drives the registration, confirmation, login and
// second-factor flows and mints challenge/session JWTs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/dbx"
	"github.com/whispervault/whispervault/internal/logging"
	"github.com/whispervault/whispervault/internal/server/auth"
	"github.com/whispervault/whispervault/internal/server/config"
	"github.com/whispervault/whispervault/internal/server/models"
	"github.com/whispervault/whispervault/internal/server/notify"
	"github.com/whispervault/whispervault/internal/server/repositories/repomanager"
	"github.com/whispervault/whispervault/internal/server/totp"
)

// Named flow errors. Each wraps a common sentinel so the transport layer can
// map them to a status code with errors.Is while still picking a precise
// message.
var (
	ErrEmailNotConfirmed = fmt.Errorf("email not confirmed: %w", common.ErrorForbidden)
	ErrAlreadyConfirmed  = fmt.Errorf("email already confirmed: %w", common.ErrorValidation)
	ErrNo2FASetup        = fmt.Errorf("no 2FA setup: %w", common.ErrorUnauthorized)
	ErrInvalidCode       = fmt.Errorf("invalid code: %w", common.ErrorUnauthorized)
	ErrNoSMSCodePending  = fmt.Errorf("no SMS code sent or code expired: %w", common.ErrorValidation)
	ErrNoPhoneOnFile     = fmt.Errorf("no phone number on file: %w", common.ErrorValidation)
)

const bcryptCost = 12

// dummyHash is compared against when the account does not exist, so a login
// probe costs the same whether or not the email is registered.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// RegisterParams is the validated registration request.
type RegisterParams struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Phone     string `validate:"omitempty"`
}

// ConfirmResult is returned after a successful email confirmation. The
// authenticator enrollment material is included so the UI can render it, and
// TempToken lets the user proceed straight to the second factor.
type ConfirmResult struct {
	Account    *models.Account
	OtpauthURL string
	QRDataURL  string
	ManualCode string
	TempToken  string
}

// SessionResult is returned by the second-factor verifiers. This is the only
// place a full session token is minted.
type SessionResult struct {
	Token   string
	Account *models.Account
}

// AuthService drives the account state machine:
// unconfirmed -> confirmed -> password-checked -> second-factor-verified.
type AuthService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	mailer            notify.Mailer
	sms               notify.SMSSender
	log               logging.Logger
	validate          *validator.Validate
	jwtSecret         []byte
	challengeValidity time.Duration
	sessionValidity   time.Duration
	smsCodeValidity   time.Duration
	totpIssuer        string
	dispatchTimeout   time.Duration
}

// NewAuthService constructs an AuthService from repositories, notifiers and
// server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, mailer notify.Mailer, sms notify.SMSSender, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		db:                db,
		repomanager:       m,
		mailer:            mailer,
		sms:               sms,
		log:               log.With("module", "auth"),
		validate:          validator.New(),
		jwtSecret:         []byte(cfg.SecretKey),
		challengeValidity: cfg.ChallengeTokenValidityDuration,
		sessionValidity:   cfg.SessionTokenValidityDuration,
		smsCodeValidity:   cfg.SMSCodeValidityDuration,
		totpIssuer:        cfg.TOTPIssuer,
		dispatchTimeout:   30 * time.Second,
	}
}

// Register creates an unconfirmed account and dispatches the confirmation
// email. No tokens are issued; the caller has to confirm the email first.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*models.Account, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	secret, err := totp.GenerateSecret(s.totpIssuer, p.Email)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		ID:                uuid.NewString(),
		Email:             p.Email,
		PasswordHash:      string(hash),
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		TOTPSecret:        secret,
		ConfirmationToken: &token,
		Is2FAEnabled:      true,
	}
	if p.Phone != "" {
		account.Phone = &p.Phone
	}

	repo := s.repomanager.Accounts(s.db)
	account, err = repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.dispatchConfirmationEmail(account.Email, token, secret)
	return account, nil
}

// Confirm marks the account behind token as confirmed and clears the token,
// so a second call with the same link fails. The enrollment QR is regenerated
// from the stored secret; a new secret is never issued here.
func (s *AuthService) Confirm(ctx context.Context, token string) (*ConfirmResult, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByConfirmationToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching confirmation token: %w", err)
	}
	if err := repo.ConfirmEmail(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("error confirming email: %w", err)
	}

	uri := totp.ProvisioningURI(account.TOTPSecret, s.totpIssuer, account.Email)
	qr, err := totp.QRDataURL(uri)
	if err != nil {
		s.log.Error(ctx, "qr generation failed", "error", err)
		qr = ""
	}
	temp, err := auth.GenerateChallengeToken(account.ID, s.jwtSecret, s.challengeValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account.EmailConfirmed = true
	account.ConfirmationToken = nil
	return &ConfirmResult{
		Account:    account,
		OtpauthURL: uri,
		QRDataURL:  qr,
		ManualCode: account.TOTPSecret,
		TempToken:  temp,
	}, nil
}

// ResendConfirmation rotates the confirmation token for an unconfirmed
// account and re-sends the email. The TOTP secret stays as registered.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error searching account: %w", err)
	}
	if account.EmailConfirmed {
		return ErrAlreadyConfirmed
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	if err := repo.SetConfirmationToken(ctx, account.ID, token); err != nil {
		return fmt.Errorf("error storing confirmation token: %w", err)
	}

	s.dispatchConfirmationEmail(account.Email, token, account.TOTPSecret)
	return nil
}

// Login verifies the password and, on success, mints a short-lived challenge
// token. A full session is never issued here; the second factor always
// follows. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn a comparison anyway
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}
	if account.PasswordHash == "" {
		return "", common.ErrorUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}
	if !account.EmailConfirmed {
		return "", ErrEmailNotConfirmed
	}

	temp, err := auth.GenerateChallengeToken(account.ID, s.jwtSecret, s.challengeValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return temp, nil
}

// VerifyTOTP checks an authenticator code for the challenged account and, on
// success, mints the session token. Codes one step either side of the current
// 30-second window are accepted.
func (s *AuthService) VerifyTOTP(ctx context.Context, userID, code string) (*SessionResult, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNo2FASetup
		}
		return nil, common.ErrorInternal
	}
	if account.TOTPSecret == "" {
		return nil, ErrNo2FASetup
	}
	if !totp.Verify(totp.Normalize(code), account.TOTPSecret) {
		return nil, ErrInvalidCode
	}
	return s.issueSession(account)
}

// SendSMSCode generates a fresh 6-digit code, stores it with a TTL
// (replacing any pending one) and dispatches it to the account's phone.
func (s *AuthService) SendSMSCode(ctx context.Context, userID string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no account found: %w", common.ErrorValidation)
		}
		return common.ErrorInternal
	}
	if account.Phone == nil || *account.Phone == "" {
		return ErrNoPhoneOnFile
	}

	code, err := common.MakeSMSCode(6)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.SMSCodes(s.db).Upsert(ctx, account.ID, code, s.smsCodeValidity); err != nil {
		return fmt.Errorf("error storing sms code: %w", err)
	}

	s.dispatchSMS(*account.Phone, fmt.Sprintf("Your WhisperVault verification code is: %s", code))
	return nil
}

// VerifySMSCode checks the pending code for the challenged account. The code
// is single use: a successful verification deletes it before the session
// token is minted.
func (s *AuthService) VerifySMSCode(ctx context.Context, userID, code string) (*SessionResult, error) {
	var account *models.Account

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pending, err := s.repomanager.SMSCodes(tx).Find(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrNoSMSCodePending
			}
			return common.ErrorInternal
		}
		if code != pending.Code {
			return ErrInvalidCode
		}
		if err := s.repomanager.SMSCodes(tx).Delete(ctx, userID); err != nil {
			return fmt.Errorf("error deleting sms code: %w", err)
		}

		account, err = s.repomanager.Accounts(tx).GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return common.ErrorInternal
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.issueSession(account)
}

func (s *AuthService) issueSession(account *models.Account) (*SessionResult, error) {
	token, err := auth.GenerateSessionToken(account.ID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &SessionResult{Token: token, Account: account}, nil
}

// dispatchConfirmationEmail sends the email in the background. Delivery
// failures are logged; they never fail the request that triggered them.
func (s *AuthService) dispatchConfirmationEmail(email, token, secret string) {
	uri := totp.ProvisioningURI(secret, s.totpIssuer, email)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
		defer cancel()

		qr, err := totp.QRDataURL(uri)
		if err != nil {
			s.log.Error(ctx, "qr generation failed", "error", err)
		}
		if err := s.mailer.SendConfirmation(ctx, email, token, qr, secret); err != nil {
			s.log.Error(ctx, "confirmation email failed", "to", email, "error", err)
			return
		}
		s.log.Info(ctx, "confirmation email sent", "to", email)
	}()
}

func (s *AuthService) dispatchSMS(to, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
		defer cancel()

		if err := s.sms.Send(ctx, to, body); err != nil {
			s.log.Error(ctx, "sms send failed", "to", to, "error", err)
			return
		}
		s.log.Info(ctx, "sms code sent", "to", to)
	}()
}
