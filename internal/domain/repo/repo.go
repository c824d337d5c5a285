package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/khattakbelt/community-api/internal/domain/model"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	// GetUserByEmailOrUsername returns the first user matching either value,
	// used to name the conflicting field before a create is attempted.
	GetUserByEmailOrUsername(ctx context.Context, email, username string) (model.User, error)

	UpdateUser(ctx context.Context, u model.User) error

	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type NewsRepo interface {
	CreateNews(ctx context.Context, n model.News) (uuid.UUID, error)

	GetNewsByID(ctx context.Context, id uuid.UUID) (model.News, error)

	// ListNews returns one page, newest first, plus the total row count.
	ListNews(ctx context.Context, offset, limit int) ([]model.News, int64, error)

	UpdateNews(ctx context.Context, n model.News) error

	DeleteNews(ctx context.Context, id uuid.UUID) error
}

// NewsCache holds rendered feed pages. A miss is (nil, false, nil).
type NewsCache interface {
	GetPage(ctx context.Context, page, limit int) ([]byte, bool, error)

	SetPage(ctx context.Context, page, limit int, payload []byte) error

	InvalidatePages(ctx context.Context) error
}
