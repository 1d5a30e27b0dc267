package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/types"
)

// DBClient is the account storage the user service needs. Both the Postgres
// and SQLite stores satisfy it.
type DBClient interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateResumeText(ctx context.Context, id uuid.UUID, text string) error
}

// UserService provides business logic for accounts and their stored résumé
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:        dbUser.ID,
		Name:      dbUser.Name,
		Email:     dbUser.Email,
		HasResume: dbUser.HasResume(),
		CreatedAt: dbUser.CreatedAt,
		UpdatedAt: dbUser.UpdatedAt,
	}
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	if err := s.passwordConfig.CheckStrength(req.Password); err != nil {
		return nil, &ErrValidation{Field: "password", Message: err.Error()}
	}

	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.db.CreateUser(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user: %w", err)
	}
	if dbUser == nil {
		return nil, fmt.Errorf("created user not found: %s", userID)
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Unknown email and wrong password look the same to the caller
	if dbUser == nil || dbUser.PasswordHash == "" {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// Profile returns the account for userID
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	dbUser, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// ResumeText returns the stored résumé text, empty when none was uploaded
func (s *UserService) ResumeText(ctx context.Context, userID uuid.UUID) (string, error) {
	dbUser, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return dbUser.ResumeText, nil
}

// UpdateResume cleans raw résumé text and stores it on the account.
// It returns the metadata of the stored text.
func (s *UserService) UpdateResume(ctx context.Context, userID uuid.UUID, raw string) (*ingestion.Metadata, error) {
	text, meta, err := ingestion.NormalizeResume(raw)
	if err != nil {
		return nil, &ErrValidation{Field: "text", Message: err.Error()}
	}

	if err := s.db.UpdateResumeText(ctx, userID, text); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrUserNotFound{UserID: userID}
		}
		return nil, fmt.Errorf("failed to store resume text: %w", err)
	}
	return meta, nil
}

func (s *UserService) loadUser(ctx context.Context, userID uuid.UUID) (*db.User, error) {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return dbUser, nil
}
