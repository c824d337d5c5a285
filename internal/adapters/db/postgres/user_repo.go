package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/khattakbelt/community-api/internal/domain/apperrors"
	"github.com/khattakbelt/community-api/internal/domain/model"
)

// storeTimeout bounds every store call so a slow database degrades to a
// fast failure instead of an unbounded stall.
const storeTimeout = 5 * time.Second

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (p *UserRepo) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		if conflict := asConflict(err); conflict != nil {
			return uuid.Nil, conflict
		}
		return uuid.Nil, apperrors.WrapInternal(err, "CreateUser")
	}
	return user.ID, nil
}

func (p *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var u model.User
	res := p.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, apperrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, apperrors.WrapInternal(err, "GetUserByEmail")
	}
	return u, nil
}

func (p *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var u model.User
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, apperrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, apperrors.WrapInternal(err, "GetUserByID")
	}
	return u, nil
}

func (p *UserRepo) GetUserByEmailOrUsername(ctx context.Context, email, username string) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var u model.User
	res := p.db.WithContext(ctx).Where("email = ? OR username = ?", email, username).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, apperrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, apperrors.WrapInternal(err, "GetUserByEmailOrUsername")
	}
	return u, nil
}

func (p *UserRepo) UpdateUser(ctx context.Context, user model.User) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res := p.db.WithContext(ctx).Save(&user)
	if err := res.Error; err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		return apperrors.WrapInternal(err, "UpdateUser")
	}
	return nil
}

func (p *UserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res := p.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if err := res.Error; err != nil {
		return apperrors.WrapInternal(err, "DeleteUser")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// asConflict translates a unique-constraint violation (SQLSTATE 23505) into
// the conflict error naming the offending field. Anything else returns nil.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	field := "email"
	if strings.Contains(pgErr.ConstraintName, "username") {
		field = "username"
	}
	return &apperrors.ConflictError{Field: field}
}
