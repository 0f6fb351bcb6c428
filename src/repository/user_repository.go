package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *GormUserRepository {
	logger.WithField("component", "GormUserRepository").
		Info("Creating new GormUserRepository with MainDB")

	return &GormUserRepository{
		db: database.MainDB,
	}
}

func (r *GormUserRepository) WithDB(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user. A duplicate email or username surfaces as a
// ConflictError so the HTTP layer can answer 409.
func (r *GormUserRepository) Create(
	ctx context.Context,
	user *model.User,
) error {

	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &model.ConflictError{Resource: "user"}
		}

		logger.WithFields(map[string]interface{}{
			"repo": "GormUserRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create user")

		return &model.StoreError{Op: "create user", Err: err}
	}

	return nil
}

// FindByID returns (nil, nil) if no user exists with that id.
func (r *GormUserRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.User, error) {

	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &model.StoreError{Op: "find user", Err: err}
	}

	return &user, nil
}

// FindByEmail returns (nil, nil) if no user exists with that email.
func (r *GormUserRepository) FindByEmail(
	ctx context.Context,
	email string,
) (*model.User, error) {

	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &model.StoreError{Op: "find user", Err: err}
	}

	return &user, nil
}

// FindByOAuth returns (nil, nil) if no user is linked to that provider
// identity.
func (r *GormUserRepository) FindByOAuth(
	ctx context.Context,
	provider string,
	oauthID string,
) (*model.User, error) {

	var user model.User
	err := r.db.WithContext(ctx).
		Where("oauth_provider = ? AND oauth_id = ?", provider, oauthID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &model.StoreError{Op: "find user", Err: err}
	}

	return &user, nil
}

// UpdateUsername changes the user's unique handle; 409 on collision.
func (r *GormUserRepository) UpdateUsername(
	ctx context.Context,
	id uint,
	username string,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("username", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &model.ConflictError{Resource: "username"}
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "GormUserRepository",
			"op":      "UpdateUsername",
			"user_id": id,
		}).WithError(err).Error("Failed to update username")

		return &model.StoreError{Op: "update username", Err: err}
	}

	return nil
}
