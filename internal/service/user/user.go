package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
	"github.com/nkiryanov/bankledger/internal/service/audit"
	"github.com/nkiryanov/bankledger/internal/service/auth"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type UserService struct {
	hasher   auth.PasswordHasher
	userRepo repository.UserRepo
	recorder auditRecorder
}

func NewService(hasher auth.PasswordHasher, userRepo repository.UserRepo, recorder auditRecorder) *UserService {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}

	return &UserService{
		hasher:   hasher,
		userRepo: userRepo,
		recorder: recorder,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Country   string
	UserType  models.UserType
}

// Register creates active customer with pending kyc
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	user, err := s.createCustomer(ctx, in)
	if err != nil {
		return user, err
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: &user.ID,
		Action:  models.AuditUserRegistered,
		Details: map[string]any{"email": user.Email},
	})

	return user, nil
}

// CreateByAdmin creates customer on behalf of staff member
func (s *UserService) CreateByAdmin(ctx context.Context, actor models.Actor, in RegisterInput) (models.User, error) {
	if !actor.Role.IsStaff() {
		return models.User{}, apperrors.ErrUnauthorized
	}

	user, err := s.createCustomer(ctx, in)
	if err != nil {
		return user, err
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditCustomerCreatedByAdmin,
		Details: map[string]any{"user_id": user.ID.String(), "email": user.Email},
		After:   audit.Snapshot(user),
	})

	return user, nil
}

func (s *UserService) createCustomer(ctx context.Context, in RegisterInput) (models.User, error) {
	var user models.User

	if in.Password == "" {
		return user, fmt.Errorf("password: %w", apperrors.ErrInvalidValue)
	}
	if in.UserType == "" {
		in.UserType = models.UserTypePersonal
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, models.User{
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		HashedPassword: hash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Phone:          in.Phone,
		Address:        in.Address,
		Country:        in.Country,
		UserType:       in.UserType,
		Role:           models.RoleCustomer,
		Status:         models.UserStatusActive,
		KycStatus:      models.KycStatusPending,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Me returns profile of the actor
func (s *UserService) Me(ctx context.Context, actor models.Actor) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, actor.UserID)
}

func (s *UserService) Get(ctx context.Context, actor models.Actor, userID uuid.UUID) (models.User, error) {
	if !actor.Role.IsStaff() {
		return models.User{}, apperrors.ErrUnauthorized
	}
	return s.userRepo.GetUserByID(ctx, userID)
}

type ListOpts struct {
	Status models.UserStatus // filter by status if not empty
	Offset int
	Limit  int
}

// List returns page of customers and total count matching filter
func (s *UserService) List(ctx context.Context, actor models.Actor, opts ListOpts) ([]models.User, int, error) {
	if !actor.Role.IsStaff() {
		return nil, 0, apperrors.ErrUnauthorized
	}

	limit := opts.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	listOpts := repository.ListUsersOpts{
		Role:   models.RoleCustomer,
		Status: opts.Status,
		Offset: max(opts.Offset, 0),
		Limit:  limit,
	}

	users, err := s.userRepo.ListUsers(ctx, listOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("can't list users. Err: %w", err)
	}

	total, err := s.userRepo.CountUsers(ctx, listOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("can't count users. Err: %w", err)
	}

	return users, total, nil
}

// Update changes status, kyc status or notes of a user, staff only
func (s *UserService) Update(ctx context.Context, actor models.Actor, userID uuid.UUID, opts repository.UpdateUserOpts) (models.User, error) {
	if !actor.Role.IsStaff() {
		return models.User{}, apperrors.ErrUnauthorized
	}

	before, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return before, err
	}

	after, err := s.userRepo.UpdateUser(ctx, userID, opts)
	if err != nil {
		return after, err
	}

	s.recorder.Record(ctx, models.AuditEntry{
		ActorID: audit.ActorID(actor),
		Action:  models.AuditCustomerUpdated,
		Details: map[string]any{"user_id": userID.String()},
		Before:  audit.Snapshot(before),
		After:   audit.Snapshot(after),
	})

	return after, nil
}
