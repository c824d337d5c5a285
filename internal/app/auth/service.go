package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khattakbelt/community-api/internal/app/dto"
	"github.com/khattakbelt/community-api/internal/domain/apperrors"
	"github.com/khattakbelt/community-api/internal/domain/model"
	"github.com/khattakbelt/community-api/internal/domain/repo"
)

// maxEncodedImageLen is the base64 expansion of the 1 MiB picture cap.
const maxEncodedImageLen = 1 << 20 * 4 / 3

type Service interface {
	Register(ctx context.Context, in dto.RegisterDTO) (model.Session, error)
	Login(ctx context.Context, in dto.LoginDTO) (model.Session, error)

	// Authenticate resolves a bearer token to a live identity. It is the
	// verification half of the access guard; it performs no writes.
	Authenticate(ctx context.Context, rawToken string) (model.User, error)

	GetProfile(ctx context.Context, id uuid.UUID) (model.User, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, in dto.UpdateDetailsDTO) (model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in dto.UpdateProfileDTO) (model.User, error)
	UpdateProfilePicture(ctx context.Context, id uuid.UUID, in dto.ProfilePictureDTO) (model.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	userRepo  repo.UserRepo
	issuer    *TokenIssuer
	v         *validator.Validate
	newsCache repo.NewsCache
	log       *zap.Logger
}

// New builds the identity service. newsCache may be nil, which disables the
// page-cache purge that account deletion otherwise triggers.
func New(ur repo.UserRepo, issuer *TokenIssuer, v *validator.Validate, newsCache repo.NewsCache, log *zap.Logger) Service {
	return &authService{userRepo: ur, issuer: issuer, v: v, newsCache: newsCache, log: log}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.Session, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Session{}, asValidation(err)
	}

	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	existing, err := a.userRepo.GetUserByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		field := "username"
		if existing.Email == email {
			field = "email"
		}
		return model.Session{}, &apperrors.ConflictError{Field: field}
	case !errors.Is(err, apperrors.ErrNotFound):
		return model.Session{}, apperrors.WrapInternal(err, "Register")
	}

	passwordHash, err := HashPassword(in.Password)
	if err != nil {
		return model.Session{}, err
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		Visibility:   model.VisibilityPublic,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		// The unique index is the real serialization point; the pre-check
		// above only names the field for the common path.
		if apperrors.IsAlreadyExists(err) {
			return model.Session{}, err
		}
		return model.Session{}, apperrors.WrapInternal(err, "Register")
	}

	return a.openSession(user)
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.Session, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Session{}, asValidation(err)
	}

	user, err := a.userRepo.GetUserByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		// Same failure as a wrong password so the response does not reveal
		// whether the email is registered.
		return model.Session{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return model.Session{}, apperrors.WrapInternal(err, "Login")
	}

	if !CheckPassword(in.Password, user.PasswordHash) {
		return model.Session{}, apperrors.ErrInvalidCredentials
	}

	return a.openSession(user)
}

func (a *authService) Authenticate(ctx context.Context, rawToken string) (model.User, error) {
	subject, err := a.issuer.Verify(rawToken)
	if err != nil {
		return model.User{}, apperrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByID(ctx, subject)
	if err != nil {
		// A token for a since-deleted identity is indistinguishable from
		// any other invalid token.
		return model.User{}, apperrors.ErrInvalidToken
	}
	return user, nil
}

func (a *authService) GetProfile(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := a.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, apperrors.WrapInternal(err, "GetProfile")
	}
	return user, nil
}

func (a *authService) UpdateDetails(ctx context.Context, id uuid.UUID, in dto.UpdateDetailsDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, asValidation(err)
	}

	user, err := a.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if in.FirstName != "" {
		user.FirstName = strings.TrimSpace(in.FirstName)
	}
	if in.LastName != "" {
		user.LastName = strings.TrimSpace(in.LastName)
	}
	if in.Email != "" {
		user.Email = normalizeEmail(in.Email)
	}
	if in.Password != "" {
		// The only update path that re-hashes; profile-field changes must
		// never touch the digest.
		hash, err := HashPassword(in.Password)
		if err != nil {
			return model.User{}, err
		}
		user.PasswordHash = hash
	}

	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		if apperrors.IsAlreadyExists(err) {
			return model.User{}, err
		}
		return model.User{}, apperrors.WrapInternal(err, "UpdateDetails")
	}
	return user, nil
}

func (a *authService) UpdateProfile(ctx context.Context, id uuid.UUID, in dto.UpdateProfileDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, asValidation(err)
	}

	user, err := a.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.AboutMe = strings.TrimSpace(in.AboutMe)
	user.Skills = string(in.Skills)
	user.Experience = strings.TrimSpace(in.Experience)
	user.Education = strings.TrimSpace(in.Education)
	user.Interests = string(in.Interests)
	if in.Visibility != "" {
		user.Visibility = model.Visibility(in.Visibility)
	}

	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		return model.User{}, apperrors.WrapInternal(err, "UpdateProfile")
	}
	return user, nil
}

func (a *authService) UpdateProfilePicture(ctx context.Context, id uuid.UUID, in dto.ProfilePictureDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, asValidation(err)
	}
	if !strings.HasPrefix(in.Image, "data:image/") {
		return model.User{}, apperrors.NewValidation(apperrors.FieldViolation{
			Field: "image", Message: "invalid image format",
		})
	}
	if len(in.Image) > maxEncodedImageLen {
		return model.User{}, apperrors.NewValidation(apperrors.FieldViolation{
			Field: "image", Message: "image exceeds the 1MB limit",
		})
	}

	user, err := a.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	user.ProfilePic = in.Image
	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		return model.User{}, apperrors.WrapInternal(err, "UpdateProfilePicture")
	}
	return user, nil
}

func (a *authService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := a.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.WrapInternal(err, "DeleteAccount")
	}

	// Deleting the account cascades to the user's articles, so any cached
	// feed pages are stale now.
	if a.newsCache != nil {
		if err := a.newsCache.InvalidatePages(ctx); err != nil {
			a.log.Warn("news page cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

func (a *authService) openSession(user model.User) (model.Session, error) {
	token, expiresAt, err := a.issuer.Issue(user.ID)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// asValidation converts validator errors into the per-field taxonomy the
// handlers serialize.
func asValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInvalidArgument(err.Error())
	}

	violations := make([]apperrors.FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, apperrors.FieldViolation{
			Field:   lowerFirst(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return apperrors.NewValidation(violations...)
}

func validationMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "please enter a valid email"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " cannot exceed " + fe.Param() + " characters"
	case "alphanum":
		return field + " may only contain letters and digits"
	case "strongpwd":
		return "password must be at least 6 characters with upper, lower and digit"
	case "oneof":
		return field + " must be one of " + fe.Param()
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
