package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/HammerMeetNail/watchtogether/internal/models"
)

const minPasswordLength = 8

var (
	// ErrInvalidCredentials is an authentication failure, not a service
	// error kind; handlers answer it with 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrNameRequired           = newError(ErrValidation, "Name is required")
	ErrInvalidEmail           = newError(ErrValidation, "A valid email is required")
	ErrPasswordTooShort       = newError(ErrValidation, "Password must be at least 8 characters")
	ErrSocialEmailRequired    = newError(ErrValidation, "The provider did not return an email address")
	ErrInvalidSocialProfile   = newError(ErrValidation, "The provider returned an incomplete profile")
	ErrUnlinkRequiresPassword = newError(ErrValidation, "Set a password before unlinking your social account")
	ErrNoLinkedProvider       = newError(ErrValidation, "No social account is linked")
	ErrEmailAlreadyExists     = newError(ErrConflict, "Email already registered")
	ErrProviderConflict       = newError(ErrConflict, "This email is already linked to another social account")
	ErrProviderAlreadyLinked  = newError(ErrConflict, "This social account is linked to another user")
	ErrUserNotFound           = newError(ErrNotFound, "User not found")
)

const userColumns = `id, email, name, provider, provider_id, avatar, password_hash, email_verified_at, created_at, updated_at`

// IdentityService resolves local and social credentials to users.
type IdentityService struct {
	db         DB
	bcryptCost int
}

func NewIdentityService(db DB, bcryptCost int) *IdentityService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityService{db: db, bcryptCost: bcryptCost}
}

func (s *IdentityService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return s.create(ctx, models.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
}

func (s *IdentityService) create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		params.Email, params.Name, params.PasswordHash,
	))
	if isUniqueViolation(err) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Authenticate checks an email and password. Unknown emails, social-only
// accounts and wrong passwords are indistinguishable to the caller.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := getUserBy(ctx, s.db, "email", normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *IdentityService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return getUserBy(ctx, s.db, "id", id)
}

// ResolveOrCreateBySocialProfile maps a provider identity to a user. The same
// (provider, provider_id) always resolves to the same user; a matching email
// is linked unless it already belongs to another social account; otherwise a
// verified user is created.
func (s *IdentityService) ResolveOrCreateBySocialProfile(ctx context.Context, profile models.SocialProfile) (*models.User, error) {
	profile, err := cleanProfile(profile)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = withTx(ctx, s.db, func(tx Tx) error {
		existing, err := getUserByProvider(ctx, tx, profile.Provider, profile.ProviderID)
		if err == nil {
			user, err = scanUser(tx.QueryRow(ctx,
				`UPDATE users
				 SET name = $1, avatar = COALESCE(NULLIF($2, ''), avatar), updated_at = NOW()
				 WHERE id = $3
				 RETURNING `+userColumns,
				profile.Name, profile.Avatar, existing.ID,
			))
			if err != nil {
				return fmt.Errorf("refreshing social user: %w", err)
			}
			return nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		existing, err = getUserBy(ctx, tx, "email", profile.Email)
		if err == nil {
			if existing.Provider != nil {
				return ErrProviderConflict
			}
			user, err = linkProvider(ctx, tx, existing.ID, profile)
			return err
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		user, err = scanUser(tx.QueryRow(ctx,
			`INSERT INTO users (email, name, provider, provider_id, avatar, email_verified_at)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW())
			 RETURNING `+userColumns,
			profile.Email, profile.Name, profile.Provider, profile.ProviderID, profile.Avatar,
		))
		if isUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("creating social user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// LinkProvider attaches a social identity to an existing account.
func (s *IdentityService) LinkProvider(ctx context.Context, userID uuid.UUID, profile models.SocialProfile) (*models.User, error) {
	profile, err := cleanProfile(profile)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = withTx(ctx, s.db, func(tx Tx) error {
		owner, err := getUserByProvider(ctx, tx, profile.Provider, profile.ProviderID)
		if err == nil && owner.ID != userID {
			return ErrProviderAlreadyLinked
		}
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return err
		}

		current, err := getUserBy(ctx, tx, "id", userID)
		if err != nil {
			return err
		}
		if current.Provider != nil && (*current.Provider != profile.Provider || current.ProviderID == nil || *current.ProviderID != profile.ProviderID) {
			return ErrProviderConflict
		}

		user, err = linkProvider(ctx, tx, userID, profile)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UnlinkProvider removes the social identity. Accounts without a password
// would be left with no way to sign in, so they are refused.
func (s *IdentityService) UnlinkProvider(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	current, err := getUserBy(ctx, s.db, "id", userID)
	if err != nil {
		return nil, err
	}
	if current.Provider == nil {
		return nil, ErrNoLinkedProvider
	}
	if !current.HasPassword() {
		return nil, ErrUnlinkRequiresPassword
	}

	user, err := scanUser(s.db.QueryRow(ctx,
		`UPDATE users SET provider = NULL, provider_id = NULL, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unlinking provider: %w", err)
	}
	return user, nil
}

func linkProvider(ctx context.Context, q Querier, userID uuid.UUID, profile models.SocialProfile) (*models.User, error) {
	user, err := scanUser(q.QueryRow(ctx,
		`UPDATE users
		 SET provider = $1, provider_id = $2,
		     avatar = COALESCE(NULLIF($3, ''), avatar),
		     email_verified_at = COALESCE(email_verified_at, NOW()),
		     updated_at = NOW()
		 WHERE id = $4
		 RETURNING `+userColumns,
		profile.Provider, profile.ProviderID, profile.Avatar, userID,
	))
	if isUniqueViolation(err) {
		return nil, ErrProviderAlreadyLinked
	}
	if err != nil {
		return nil, fmt.Errorf("linking provider: %w", err)
	}
	return user, nil
}

// getUserBy loads a user by a trusted column name.
func getUserBy(ctx context.Context, q Querier, column string, value any) (*models.User, error) {
	user, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", column, err)
	}
	return user, nil
}

func getUserByProvider(ctx context.Context, q Querier, provider, providerID string) (*models.User, error) {
	user, err := scanUser(q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`,
		provider, providerID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by provider: %w", err)
	}
	return user, nil
}

func scanUser(row Row) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Provider, &u.ProviderID, &u.Avatar, &u.PasswordHash,
		&u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func cleanProfile(p models.SocialProfile) (models.SocialProfile, error) {
	p.Provider = strings.TrimSpace(p.Provider)
	p.ProviderID = strings.TrimSpace(p.ProviderID)
	p.Email = normalizeEmail(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	if p.Provider == "" || p.ProviderID == "" {
		return p, ErrInvalidSocialProfile
	}
	if p.Email == "" {
		return p, ErrSocialEmailRequired
	}
	if p.Name == "" {
		p.Name = strings.SplitN(p.Email, "@", 2)[0]
	}
	return p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
