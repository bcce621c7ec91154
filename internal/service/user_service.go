package service

import (
	"context"
	"errors"
	"fmt"

	"stocktrack/internal/model"
	"stocktrack/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"` // ignored: created accounts are always employees
	Status   string `json:"status" binding:"omitempty,oneof=active suspended"`
}

type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// DTO for returning User without exposing the password hash
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UserService defines the admin-only account management operations. Every
// mutation takes the acting user so the audit trail and self-action checks
// see who is behind the request.
type UserService interface {
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	GetUserByID(ctx context.Context, id uint) (*UserResponse, error)
	CreateUser(ctx context.Context, actor *model.User, req CreateUserRequest) (*UserResponse, error)
	UpdateUsername(ctx context.Context, actor *model.User, id uint, req UpdateUsernameRequest) (*UserResponse, error)
	ChangePassword(ctx context.Context, actor *model.User, id uint, req ChangePasswordRequest) error
	SetStatus(ctx context.Context, actor *model.User, id uint, req SetStatusRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actor *model.User, id uint) error
}

type userService struct {
	repo      repository.UserRepository
	activity  ActivityService
	txManager repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, activity ActivityService, txManager repository.TransactionManager) UserService {
	return &userService{repo: repo, activity: activity, txManager: txManager}
}

func mapUserToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, *mapUserToResponse(&u))
	}

	return responses, total, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return mapUserToResponse(user), nil
}

// CreateUser provisions an employee account. The role field of the request is
// ignored: admin accounts only ever come from the bootstrap seed.
func (s *userService) CreateUser(ctx context.Context, actor *model.User, req CreateUserRequest) (*UserResponse, error) {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return nil, errors.New("username must be between 3 and 50 characters")
	}
	if len(req.Password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	status := req.Status
	if status == "" {
		status = model.StatusActive
	}
	if !model.ValidStatus(status) {
		return nil, errors.New("status must be active or suspended")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         model.RoleEmployee,
		Status:       status,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByUsername(txCtx, req.Username); err == nil {
			return ErrUsernameTaken
		}
		return s.repo.Create(txCtx, user)
	})
	if err != nil {
		// The unique index backs the pre-check against concurrent creates.
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.activity.Record(ctx, actor, model.ActionCreateUser,
		fmt.Sprintf("Created user %q (%s)", user.Username, user.Status))

	return mapUserToResponse(user), nil
}

func (s *userService) UpdateUsername(ctx context.Context, actor *model.User, id uint, req UpdateUsernameRequest) (*UserResponse, error) {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return nil, errors.New("username must be between 3 and 50 characters")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Username == user.Username {
		return mapUserToResponse(user), nil
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	oldName := user.Username
	user.Username = req.Username
	if err := s.repo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.activity.Record(ctx, actor, model.ActionUpdateUser,
		fmt.Sprintf("Renamed user %q to %q", oldName, user.Username))

	return mapUserToResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, actor *model.User, id uint, req ChangePasswordRequest) error {
	if len(req.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	// The new password itself never reaches the audit trail.
	s.activity.Record(ctx, actor, model.ActionSetPassword,
		fmt.Sprintf("Changed password for user %q", user.Username))

	return nil
}

// SetStatus activates or suspends an account. Suspension goes through a single
// guarded statement so two concurrent requests cannot both strip the last
// active admin.
func (s *userService) SetStatus(ctx context.Context, actor *model.User, id uint, req SetStatusRequest) (*UserResponse, error) {
	if !model.ValidStatus(req.Status) {
		return nil, errors.New("status must be active or suspended")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	oldStatus := user.Status
	if oldStatus == req.Status {
		return mapUserToResponse(user), nil
	}

	if req.Status == model.StatusSuspended {
		rows, err := s.repo.SuspendUnlessLastActiveAdmin(ctx, id)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// The guard refused, or the row vanished meanwhile.
			if _, err := s.repo.GetByID(ctx, id); err != nil {
				return nil, ErrNotFound
			}
			return nil, ErrLastActiveAdmin
		}
	} else {
		user.Status = model.StatusActive
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	s.activity.Record(ctx, actor, model.ActionSetUserState,
		fmt.Sprintf("Changed status of user %q from %s to %s", updated.Username, oldStatus, updated.Status))

	return mapUserToResponse(updated), nil
}

// DeleteUser hard-deletes an account. Self-deletion is always rejected, and
// the last active admin survives any delete attempt via the guarded statement.
func (s *userService) DeleteUser(ctx context.Context, actor *model.User, id uint) error {
	if actor != nil && actor.ID == id {
		return ErrSelfDelete
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	rows, err := s.repo.DeleteUnlessLastActiveAdmin(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return ErrNotFound
		}
		return ErrLastActiveAdmin
	}

	s.activity.Record(ctx, actor, model.ActionDeleteUser,
		fmt.Sprintf("Deleted user %q", user.Username))

	return nil
}
