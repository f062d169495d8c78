package service

import (
	"errors"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/jwt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = notFoundError("user not found")
	ErrWrongPassword = validationError("current password is incorrect")
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

type AuthService interface {
	Register(req *RegisterRequest) (*model.User, error)
	Authenticate(username, password string) (*model.User, error)
	Login(username, password string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*model.UserResponse, error)
	ChangePassword(username, oldPassword, newPassword string) error
	EnsureAdmin(username, email, password string) (bool, error)
	ListUsers() ([]model.UserResponse, error)
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(req *RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if len(req.Password) < MinPasswordLength {
		return nil, validationError("password must be at least %d characters", MinPasswordLength)
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, validationError("username %q already exists", req.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, validationError("email %q is already registered", req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{Username: req.Username, Email: req.Email}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	user.CreatedBy = "register"
	user.UpdatedBy = "register"

	if err := s.userRepo.Create(user); err != nil {
		return nil, writeError(err, "register user")
	}

	log.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate never says which of username or password was wrong.
func (s *authService) Authenticate(username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthentication
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrAuthentication
	}
	return user, nil
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.Authenticate(username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) ValidateToken(tokenString string) (*model.UserResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, &Error{Kind: KindAuthentication, Message: err.Error()}
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, lookupError(err, "user")
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(username, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < MinPasswordLength {
		return validationError("new password must be at least %d characters", MinPasswordLength)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

// EnsureAdmin creates the bootstrap administrator once; later calls are no-ops.
func (s *authService) EnsureAdmin(username, email, password string) (bool, error) {
	admin := &model.User{Username: username, Email: email, IsAdmin: true}
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	created, err := s.userRepo.EnsureUser(admin)
	if err != nil {
		return false, err
	}
	if created {
		log.Info().Str("username", username).Msg("bootstrap administrator created")
	}
	return created, nil
}

func (s *authService) ListUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	resp := make([]model.UserResponse, len(users))
	for i := range users {
		resp[i] = users[i].ToResponse()
	}
	return resp, nil
}
