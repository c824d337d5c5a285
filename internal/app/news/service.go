package news

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khattakbelt/community-api/internal/app/auth"
	"github.com/khattakbelt/community-api/internal/app/dto"
	"github.com/khattakbelt/community-api/internal/domain/apperrors"
	"github.com/khattakbelt/community-api/internal/domain/model"
	"github.com/khattakbelt/community-api/internal/domain/repo"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50

	defaultCategory = "Infrastructure"
)

// Page is one slice of the feed, newest first.
type Page struct {
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Pages int64        `json:"pages"`
	News  []model.News `json:"news"`
}

type Service interface {
	Create(ctx context.Context, actor model.User, in dto.NewsCreateDTO) (model.News, error)
	List(ctx context.Context, page, limit int) (Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.News, error)
	Update(ctx context.Context, actor model.User, id uuid.UUID, in dto.NewsUpdateDTO) (model.News, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
}

type newsService struct {
	newsRepo repo.NewsRepo
	cache    repo.NewsCache
	v        *validator.Validate
	log      *zap.Logger
}

// New builds the feed service. cache may be nil, which disables page caching.
func New(nr repo.NewsRepo, cache repo.NewsCache, v *validator.Validate, log *zap.Logger) Service {
	return &newsService{newsRepo: nr, cache: cache, v: v, log: log}
}

func (s *newsService) Create(ctx context.Context, actor model.User, in dto.NewsCreateDTO) (model.News, error) {
	if err := s.v.Struct(in); err != nil {
		return model.News{}, apperrors.NewInvalidArgument(err.Error())
	}

	category := in.Category
	if category == "" {
		category = defaultCategory
	}

	item := model.News{
		ID:          uuid.New(),
		Title:       in.Title,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		AuthorID:    actor.ID,
		Author:      actor.Username,
		Category:    category,
		ImageBase64: in.ImageBase64,
		IsFeatured:  in.IsFeatured,
	}
	if _, err := s.newsRepo.CreateNews(ctx, item); err != nil {
		return model.News{}, apperrors.WrapInternal(err, "CreateNews")
	}

	s.dropCachedPages(ctx)
	return item, nil
}

func (s *newsService) List(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if s.cache != nil {
		if payload, ok, err := s.cache.GetPage(ctx, page, limit); err == nil && ok {
			var cached Page
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		} else if err != nil {
			// A failing cache only costs the database round trip.
			s.log.Warn("news page cache read failed", zap.Error(err))
		}
	}

	items, total, err := s.newsRepo.ListNews(ctx, (page-1)*limit, limit)
	if err != nil {
		return Page{}, apperrors.WrapInternal(err, "ListNews")
	}

	result := Page{
		Total: total,
		Page:  page,
		Pages: (total + int64(limit) - 1) / int64(limit),
		News:  items,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.SetPage(ctx, page, limit, payload); err != nil {
				s.log.Warn("news page cache write failed", zap.Error(err))
			}
		}
	}
	return result, nil
}

func (s *newsService) GetByID(ctx context.Context, id uuid.UUID) (model.News, error) {
	item, err := s.newsRepo.GetNewsByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return model.News{}, err
		}
		return model.News{}, apperrors.WrapInternal(err, "GetNewsByID")
	}
	return item, nil
}

func (s *newsService) Update(ctx context.Context, actor model.User, id uuid.UUID, in dto.NewsUpdateDTO) (model.News, error) {
	item, err := s.newsRepo.GetNewsByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return model.News{}, err
		}
		return model.News{}, apperrors.WrapInternal(err, "UpdateNews")
	}

	if !auth.CanMutate(actor, item.AuthorID) {
		return model.News{}, apperrors.ErrPermissionDenied
	}

	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Excerpt != nil {
		item.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		item.Content = *in.Content
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.ImageBase64 != nil {
		item.ImageBase64 = *in.ImageBase64
	}
	if in.IsFeatured != nil {
		item.IsFeatured = *in.IsFeatured
	}

	// A partial update must not blank a field creation requires.
	if err := validateMerged(item); err != nil {
		return model.News{}, err
	}

	if err := s.newsRepo.UpdateNews(ctx, item); err != nil {
		return model.News{}, apperrors.WrapInternal(err, "UpdateNews")
	}

	s.dropCachedPages(ctx)
	return item, nil
}

func (s *newsService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	item, err := s.newsRepo.GetNewsByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.WrapInternal(err, "DeleteNews")
	}

	if !auth.CanMutate(actor, item.AuthorID) {
		return apperrors.ErrPermissionDenied
	}

	if err := s.newsRepo.DeleteNews(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.WrapInternal(err, "DeleteNews")
	}

	s.dropCachedPages(ctx)
	return nil
}

func validateMerged(item model.News) error {
	var violations []apperrors.FieldViolation
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", item.Title},
		{"excerpt", item.Excerpt},
		{"content", item.Content},
	} {
		if strings.TrimSpace(f.value) == "" {
			violations = append(violations, apperrors.FieldViolation{
				Field: f.name, Message: f.name + " is required",
			})
		}
	}
	if len(violations) > 0 {
		return apperrors.NewValidation(violations...)
	}
	return nil
}

func (s *newsService) dropCachedPages(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePages(ctx); err != nil {
		s.log.Warn("news page cache invalidation failed", zap.Error(err))
	}
}
