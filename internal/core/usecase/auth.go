package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

// InboxSeeder fills a freshly created practitioner's inbox.
type InboxSeeder interface {
	SeedInbox(ctx context.Context, user domain.User) error
}

// AuthUseCase implements the simulated practitioner login. Credentials are
// required to be present but are never checked.
type AuthUseCase struct {
	users     ports.UserStore
	inbox     InboxSeeder
	reference domain.Reference
	now       func() time.Time
}

func NewAuthUseCase(users ports.UserStore, inbox InboxSeeder, reference domain.Reference) *AuthUseCase {
	return &AuthUseCase{
		users:     users,
		inbox:     inbox,
		reference: reference,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, *domain.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "login", errors.New("email and password are required"))
	}
	medicalID := strings.TrimSpace(req.MedicalID)
	if medicalID == "" {
		medicalID = domain.DefaultMedicalID
	}

	user, err := uc.users.FindByMedicalID(ctx, medicalID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		user, err = uc.register(ctx, domain.User{
			Name:      domain.DefaultLoginName,
			Role:      domain.DefaultLoginRole,
			MedicalID: medicalID,
			Email:     strings.TrimSpace(req.Email),
		})
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	session, err := uc.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (uc *AuthUseCase) Signup(ctx context.Context, req domain.SignupRequest) (*domain.Session, *domain.User, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	medicalID := strings.TrimSpace(req.MedicalID)

	var problems []error
	if first == "" || last == "" {
		problems = append(problems, errors.New("first and last name are required"))
	}
	if strings.TrimSpace(req.Email) == "" {
		problems = append(problems, errors.New("email is required"))
	}
	if medicalID == "" {
		problems = append(problems, errors.New("medical id is required"))
	}
	if req.Password == "" {
		problems = append(problems, errors.New("password is required"))
	} else if req.Password != req.ConfirmPassword {
		problems = append(problems, errors.New("passwords do not match"))
	}
	specialty := strings.TrimSpace(req.Specialty)
	if specialty == "" {
		specialty = domain.DefaultSpecialty
	}
	if !uc.reference.HasSpecialty(specialty) {
		problems = append(problems, fmt.Errorf("unknown specialty %q", req.Specialty))
	}
	if len(problems) > 0 {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "signup", errors.Join(problems...))
	}

	if _, err := uc.users.FindByMedicalID(ctx, medicalID); err == nil {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "signup", fmt.Errorf("medical id %s is already registered", medicalID))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	user, err := uc.register(ctx, domain.User{
		Name:      fmt.Sprintf("Dr. %s %s", first, last),
		Role:      specialty,
		MedicalID: medicalID,
		Email:     strings.TrimSpace(req.Email),
	})
	if err != nil {
		return nil, nil, err
	}
	session, err := uc.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	if err := uc.users.DeleteSession(ctx, token); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.WrapError(domain.ErrUnauthorized, "logout", err)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("missing bearer token"))
	}
	session, err := uc.users.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", err)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	user, err := uc.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", err)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (uc *AuthUseCase) register(ctx context.Context, user domain.User) (*domain.User, error) {
	user.ID = uuid.NewString()
	user.PhotoURL = domain.DefaultProfilePhotoURL
	user.IsAuthenticated = true
	user.JoinedAt = uc.now()
	if err := uc.users.SaveUser(ctx, &user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	if uc.inbox != nil {
		if err := uc.inbox.SeedInbox(ctx, user); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (uc *AuthUseCase) openSession(ctx context.Context, userID string) (*domain.Session, error) {
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: uc.now(),
	}
	if err := uc.users.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}
