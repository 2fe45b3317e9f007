package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
)

type SaveProfileInput struct {
	First    string
	Last     string
	Position string
}

type ProfileService struct {
	repo      profile.Repository
	validator *validator.Validate
}

func NewProfileService(repo profile.Repository) *ProfileService {
	return &ProfileService{
		repo:      repo,
		validator: validator.New(),
	}
}

// Current returns the stored profile; ok is false until one has been saved.
func (s *ProfileService) Current(ctx context.Context) (profile.Profile, bool, error) {
	p, ok, err := s.repo.Load(ctx)
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	return p, ok, nil
}

// Save validates and overwrites the stored profile. Nothing is written when
// validation fails.
func (s *ProfileService) Save(ctx context.Context, input SaveProfileInput) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Save")
	defer span.End()

	pos, ok := profile.ParsePosition(input.Position)
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: position must be Skater or Goalie", ErrInvalidInput)
	}

	p := profile.Profile{
		FirstName: strings.TrimSpace(input.First),
		LastName:  strings.TrimSpace(input.Last),
		Position:  pos,
	}
	if err := s.validator.StructCtx(ctx, p); err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return profile.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return "please enter both first and last name"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldLabel(fe.Field()), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fieldLabel(fe.Field()))
	}
}

func fieldLabel(field string) string {
	switch field {
	case "FirstName":
		return "first name"
	case "LastName":
		return "last name"
	default:
		return strings.ToLower(field)
	}
}
