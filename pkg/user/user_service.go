package user

import (
	"context"
	"errors"

	"foodgram-api/domain"
	"foodgram-api/entities"
	"foodgram-api/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	// SubscriptionStore is the slice of the subscription repository the
	// user service needs for viewer-relative is_subscribed flags.
	SubscriptionStore interface {
		IsSubscribed(ctx context.Context, subscriberID, authorID string) (bool, error)
		GetSubscribedAuthorIDs(ctx context.Context, subscriberID string) ([]uuid.UUID, error)
	}

	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		GetUser(ctx context.Context, id, viewerID string) (domain.UserResponse, error)
		GetUsers(ctx context.Context, viewerID string) ([]domain.UserResponse, error)
	}

	userService struct {
		userRepository UserRepository
		subscriptions  SubscriptionStore
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, subscriptions SubscriptionStore, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		subscriptions:  subscriptions,
		jwtService:     jwtService,
	}
}

func UserResponseFromEntity(user *entities.User, isSubscribed bool) domain.UserResponse {
	return domain.UserResponse{
		Email:        user.Email,
		ID:           user.ID.String(),
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterResponse{}, err
	}

	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.RegisterResponse{}, domain.ErrUsernameAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		Role:      domain.RoleUser,
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		// Concurrent registration of the same email lands on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.RegisterResponse{}, err
	}

	return domain.RegisterResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsNotValid
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsNotValid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	return domain.LoginResponse{
		Token: token,
		User:  UserResponseFromEntity(user, false),
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return UserResponseFromEntity(user, false), nil
}

func (s *userService) GetUser(ctx context.Context, id, viewerID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	var subscribed bool
	if viewerID != "" {
		if subscribed, err = s.subscriptions.IsSubscribed(ctx, viewerID, id); err != nil {
			return domain.UserResponse{}, err
		}
	}
	return UserResponseFromEntity(user, subscribed), nil
}

func (s *userService) GetUsers(ctx context.Context, viewerID string) ([]domain.UserResponse, error) {
	users, err := s.userRepository.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	subscribed := map[uuid.UUID]bool{}
	if viewerID != "" {
		authorIDs, err := s.subscriptions.GetSubscribedAuthorIDs(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range authorIDs {
			subscribed[id] = true
		}
	}

	response := make([]domain.UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, UserResponseFromEntity(user, subscribed[user.ID]))
	}
	return response, nil
}
