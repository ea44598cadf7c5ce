package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

// UserService is the user registry: create and look up users by email.
type UserService struct {
	repo     domain.UserRepository
	validate *validator.Validate
}

func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo, validate: validator.New()}
}

type newUserInput struct {
	Email string `validate:"required,email,max=255"`
	Name  string `validate:"required,max=255"`
}

// CreateUser inserts a user. Emails are trimmed and lowercased before they
// are stored or compared.
func (s *UserService) CreateUser(ctx context.Context, email, name string) (*domain.User, error) {
	in := newUserInput{
		Email: normalizeEmail(email),
		Name:  strings.TrimSpace(name),
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}

	id, err := s.repo.Create(ctx, in.Email, in.Name)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: id, Email: in.Email, Name: in.Name}, nil
}

func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "please enter an email to load data")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("no user found with email %s: %w", email, domain.ErrNotFound)
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "email":
		return domain.NewValidationError(field, "must be a valid email address")
	case "max":
		return domain.NewValidationError(field, "must be at most "+fe.Param()+" characters")
	default:
		return domain.NewValidationError(field, "is invalid")
	}
}
