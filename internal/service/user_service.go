package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"required,oneof=supervisor vendor"`
	LocationID string `json:"location_id" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DTO for returning User without exposing sensitive data
type UserResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Location *string `json:"location,omitempty"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (UserResponse, error)
	ListVendors(ctx context.Context) ([]UserResponse, error)
}

type userService struct {
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	locationRepo repository.LocationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) UserService {
	return &userService{
		userRepo:     userRepo,
		locationRepo: locationRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// Register creates a supervisor or vendor account. Admin accounts are seeded
// at startup, never self-registered.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	if req.Role != model.RoleSupervisor && req.Role != model.RoleVendor {
		return UserResponse{}, errors.New("role must be supervisor or vendor")
	}

	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return UserResponse{}, ErrInvalidLocation
	}

	if _, err := s.locationRepo.FindByID(ctx, locationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, ErrInvalidLocation
		}
		return UserResponse{}, fmt.Errorf("failed to find location: %w", err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, errors.New("failed to hash password")
	}

	user := &model.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hashedPassword),
		Role:       req.Role,
		LocationID: &locationID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.userRepo.Create(txCtx, user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"role":        req.Role,
			"location_id": req.LocationID,
		})
		audit := &model.AuditLog{
			UserID:     &user.ID,
			Action:     model.ActionRegisterAccount,
			EntityID:   user.ID.String(),
			EntityName: user.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})

	if err != nil {
		return UserResponse{}, err
	}

	return mapToUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	// Same fallback strategy as the middleware
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return TokenResponse{}, errors.New("failed to generate token")
	}

	return TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return UserResponse{}, errors.New("user not found")
	}
	return mapToUserResponse(user), nil
}

// ListVendors feeds the admin's vendor assignment list, sorted by name with
// locations attached.
func (s *userService) ListVendors(ctx context.Context) ([]UserResponse, error) {
	vendors, err := s.userRepo.ListByRole(ctx, model.RoleVendor)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}

	res := make([]UserResponse, 0, len(vendors))
	for i := range vendors {
		res = append(res, mapToUserResponse(&vendors[i]))
	}
	return res, nil
}

func mapToUserResponse(user *model.User) UserResponse {
	res := UserResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	if user.Location != nil {
		loc := user.Location.City + ", " + user.Location.State
		res.Location = &loc
	}
	return res
}
