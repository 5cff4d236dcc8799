package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/internal/session"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
)

// Service reads and completes extended user profiles.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Resolve(ctx context.Context, userID uuid.UUID) (session.Profile, error)
	Complete(ctx context.Context, userID uuid.UUID, input CompleteInput) (*models.User, error)
}

// CompleteInput carries the onboarding form data.
type CompleteInput struct {
	AccountType string
	PhoneNumber string
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

// Resolve implements session.ProfileResolver. Lookup failures surface as
// errors; the session watcher downgrades them to an incomplete profile.
func (s *service) Resolve(ctx context.Context, userID uuid.UUID) (session.Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return session.Profile{}, err
	}
	return session.Profile{
		AccountType: user.AccountType,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

func (s *service) Complete(ctx context.Context, userID uuid.UUID, input CompleteInput) (*models.User, error) {
	accountType, err := enums.ParseAccountType(input.AccountType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type")
	}
	phone := strings.TrimSpace(input.PhoneNumber)
	if len(phone) < 10 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number must have at least 10 digits")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.AccountType = &accountType
	user.PhoneNumber = &phone
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
