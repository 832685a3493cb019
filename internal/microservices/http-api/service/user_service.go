package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type UserService interface {
	Me(ctx context.Context, actor Actor) (*models.User, error)
	// UpdateMe never changes the role, whatever the payload carried.
	UpdateMe(ctx context.Context, actor Actor, req dto.UpdateMeRequest) (*models.User, error)

	// admin only
	List(ctx context.Context, actor Actor, search string, page, pageSize int) ([]models.User, int64, error)
	Create(ctx context.Context, actor Actor, req dto.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, actor Actor, username string) (*models.User, error)
	Update(ctx context.Context, actor Actor, username string, req dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor Actor, username string) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *userService) UpdateMe(ctx context.Context, actor Actor, req dto.UpdateMeRequest) (*models.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.apply(ctx, actor.UserID, req.AsUserUpdate())
}

func (s *userService) List(ctx context.Context, actor Actor, search string, page, pageSize int) ([]models.User, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.userRepo.List(ctx, search, page, pageSize)
}

func (s *userService) Create(ctx context.Context, actor Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateIdentity(req.Username, req.Email); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, validationf("unknown role %q", role)
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Role:      role,
		Bio:       req.Bio,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translate(err, "username or email")
	}
	s.logger.InfoContext(ctx, "user created by admin", "user_id", user.ID, "username", user.Username, "by", actor.Username)
	return user, nil
}

func (s *userService) Get(ctx context.Context, actor Actor, username string) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", username))
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor Actor, username string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", username))
	}
	return s.apply(ctx, user.ID, req)
}

func (s *userService) Delete(ctx context.Context, actor Actor, username string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return translate(err, fmt.Sprintf("user %q", username))
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return translate(err, fmt.Sprintf("user %q", username))
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", user.ID, "username", username, "by", actor.Username)
	return nil
}

// apply validates the partial update and writes only the fields that were sent.
func (s *userService) apply(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	fields := map[string]any{}

	if req.Username != nil {
		if *req.Username == models.ReservedUsername || !models.ValidUsername(*req.Username) {
			return nil, validationf("invalid username")
		}
		fields["username"] = *req.Username
	}
	if req.Email != nil {
		if err := validate.Var(*req.Email, "required,email,max=254"); err != nil {
			return nil, validationf("invalid email address")
		}
		fields["email"] = *req.Email
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, validationf("unknown role %q", *req.Role)
		}
		fields["role"] = *req.Role
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}

	if err := s.userRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email already taken", ErrConflict)
		}
		return nil, translate(err, "user")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}
