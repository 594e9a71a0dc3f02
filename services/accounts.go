package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront-api/models"
	"storefront-api/ratelimit"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// ValidPhone reports whether phone is exactly ten digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// TokenIssuer signs access tokens for accounts.
type TokenIssuer interface {
	Issue(account *models.Account) (string, error)
}

type ResolveInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type ProfileUpdate struct {
	Email   *string
	Address *string
}

// AccountService implements sign-in and account administration.
type AccountService struct {
	db      *gorm.DB
	tokens  TokenIssuer
	lockout *ratelimit.Lockout
	cost    int
}

func NewAccountService(db *gorm.DB, tokens TokenIssuer, lockout *ratelimit.Lockout) *AccountService {
	return &AccountService{db: db, tokens: tokens, lockout: lockout, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AccountService) WithHashCost(cost int) *AccountService {
	s.cost = cost
	return s
}

func validateIdentity(name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return Validation("name", "name is required")
	}
	if !ValidPhone(phone) {
		return Validation("phone", "phone must be exactly 10 digits")
	}
	return nil
}

// Resolve signs in the account with the given name, or registers it when no
// such name exists. created is true for a new registration.
func (s *AccountService) Resolve(ctx context.Context, in ResolveInput) (account *models.Account, token string, created bool, err error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateIdentity(in.Name, in.Phone); err != nil {
		return nil, "", false, err
	}

	if s.lockout != nil {
		locked, err := s.lockout.Locked(ctx, in.Name)
		if err != nil {
			return nil, "", false, wrap("check lockout", err)
		}
		if locked {
			return nil, "", false, TooManyAttempts(fmt.Sprintf("too many failed attempts, try again in %s", s.lockout.Window()))
		}
	}

	var existing models.Account
	err = s.db.WithContext(ctx).Where("name = ?", in.Name).First(&existing).Error
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(in.Phone)) != nil {
			return nil, "", false, s.failedAttempt(ctx, in.Name)
		}
		if s.lockout != nil {
			if err := s.lockout.Succeed(ctx, in.Name); err != nil {
				log.Warn().Err(err).Str("name", in.Name).Msg("reset login failures")
			}
		}
		account = &existing
	case isNotFound(err):
		account, err = s.create(ctx, in, models.RoleCustomer)
		if err != nil {
			return nil, "", false, err
		}
		created = true
	default:
		return nil, "", false, wrap("find account", err)
	}

	token, err = s.tokens.Issue(account)
	if err != nil {
		return nil, "", false, wrap("issue token", err)
	}
	return account, token, created, nil
}

func (s *AccountService) failedAttempt(ctx context.Context, name string) error {
	if s.lockout == nil {
		return Unauthorized("invalid name or phone")
	}
	remaining, err := s.lockout.Fail(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Msg("record login failure")
		return Unauthorized("invalid name or phone")
	}
	if remaining == 0 {
		return TooManyAttempts(fmt.Sprintf("too many failed attempts, try again in %s", s.lockout.Window()))
	}
	return Unauthorized(fmt.Sprintf("invalid name or phone, %d attempts left", remaining))
}

func (s *AccountService) create(ctx context.Context, in ResolveInput, role models.Role) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Phone), s.cost)
	if err != nil {
		return nil, wrap("hash phone", err)
	}
	account := &models.Account{
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        strings.TrimSpace(in.Email),
		Address:      strings.TrimSpace(in.Address),
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, Conflict("an account with this phone number already exists")
		}
		return nil, wrap("create account", err)
	}
	return account, nil
}

// CreateAccount registers an account with an explicit role. Only admins and
// the create-admin command reach it.
func (s *AccountService) CreateAccount(ctx context.Context, in ResolveInput, role models.Role) (*models.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateIdentity(in.Name, in.Phone); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, Validation("role", "role must be customer or admin")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, wrap("count accounts", err)
	}
	if count > 0 {
		return nil, Conflict("an account with this name already exists")
	}
	return s.create(ctx, in, role)
}

// DeleteAccount removes an admin account. Admins cannot delete themselves and
// customer accounts are never deleted this way.
func (s *AccountService) DeleteAccount(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return Forbidden("you cannot delete your own account")
	}
	target, err := s.GetAccount(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role != models.RoleAdmin {
		return Forbidden("only admin accounts can be deleted")
	}
	if err := s.db.WithContext(ctx).Delete(&models.Account{}, targetID).Error; err != nil {
		return wrap("delete account", err)
	}
	log.Info().Uint("actor_id", actorID).Uint("account_id", targetID).Msg("admin account deleted")
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("account")
		}
		return nil, wrap("get account", err)
	}
	return &account, nil
}

// UpdateProfile changes contact details. Name, phone and role stay fixed.
func (s *AccountService) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) (*models.Account, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if upd.Email != nil {
		changes["email"] = strings.TrimSpace(*upd.Email)
	}
	if upd.Address != nil {
		changes["address"] = strings.TrimSpace(*upd.Address)
	}
	if len(changes) == 0 {
		return account, nil
	}
	if err := s.db.WithContext(ctx).Model(account).Updates(changes).Error; err != nil {
		return nil, wrap("update profile", err)
	}
	return s.GetAccount(ctx, id)
}

// ListAccounts returns accounts newest first, optionally limited to one role.
func (s *AccountService) ListAccounts(ctx context.Context, role models.Role) ([]models.Account, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if role != "" {
		if !role.Valid() {
			return nil, Validation("role", "role must be customer or admin")
		}
		q = q.Where("role = ?", role)
	}
	var accounts []models.Account
	if err := q.Find(&accounts).Error; err != nil {
		return nil, wrap("list accounts", err)
	}
	return accounts, nil
}

// EnsureAdmin creates an admin account unless the phone is already registered,
// in which case the existing account is returned untouched.
func (s *AccountService) EnsureAdmin(ctx context.Context, name, phone string) (*models.Account, bool, error) {
	var existing models.Account
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, wrap("find admin", err)
	}
	account, err := s.CreateAccount(ctx, ResolveInput{Name: name, Phone: phone}, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}
