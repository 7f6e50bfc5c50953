package database

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Users stores dashboard accounts.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create hashes password with bcrypt and saves a new account.
func (u *Users) Create(ctx context.Context, username, password string, role models.Role) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Username: username, PasswordHash: string(hashed), Role: role}
	if err := u.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	return user, nil
}

// Authenticate returns the user when password matches the stored hash.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (u *Users) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin seeds the first admin account when no admin exists yet.
func (u *Users) EnsureAdmin(ctx context.Context, username, password string) error {
	var count int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if username == "" || password == "" {
		return errors.New("no admin account exists and ADMIN_USERNAME/ADMIN_PASSWORD are not set")
	}
	if _, err := u.Create(ctx, username, password, models.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logging.WithContext(ctx).WithField("username", username).Info("Seeded admin account")
	return nil
}
