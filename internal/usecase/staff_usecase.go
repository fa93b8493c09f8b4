package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/policy"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrPasswordRequired = errors.New("password is required for a new account")

// SeedStaffInput describes an account created from the command line.
type SeedStaffInput struct {
	Email    string
	Password string
	Role     entity.Role
	Name     string
}

type StaffUsecase interface {
	// UpdateProfile changes the role of an identity. Open sessions are
	// revoked when the role changes so the new role applies at next login.
	UpdateProfile(ctx context.Context, actor entity.Actor, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	// SeedStaff creates the account or repairs an existing one.
	SeedStaff(ctx context.Context, in SeedStaffInput) (*dto.ProfileResponse, error)
}

type staffUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	provisioning ProvisioningUsecase
	auditService service.AuditService
	sessions     service.SessionStore
}

func NewStaffUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	provisioning ProvisioningUsecase,
	auditService service.AuditService,
	sessions service.SessionStore,
) StaffUsecase {
	return &staffUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		provisioning: provisioning,
		auditService: auditService,
		sessions:     sessions,
	}
}

func (u *staffUsecase) UpdateProfile(ctx context.Context, actor entity.Actor, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if err := policy.Authorize(actor, policy.ManageStaff); err != nil {
		return nil, err
	}

	role := entity.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var (
		profile     *entity.UserProfile
		hasPatient  bool
		roleChanged bool
	)
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		user, err := u.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			u.log.Warnf("Failed to find user by ID: %+v", err)
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		profile, err = u.provisioning.Provision(ctx, tx, user, role)
		if err != nil {
			return err
		}

		oldValue := converter.ProfileToResponse(profile, false)
		roleChanged = profile.Role != role
		profile.Role = role
		if name := strings.TrimSpace(req.DisplayName); name != "" {
			profile.DisplayName = name
		}
		if err := u.profileRepo.Update(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to update profile of user %s: %+v", userID, err)
			return err
		}
		if isStaff := role == entity.RoleAdmin; user.IsStaff != isStaff {
			user.IsStaff = isStaff
			if err := u.userRepo.Update(ctx, tx, user); err != nil {
				u.log.Warnf("Failed to update staff flag of user %s: %+v", userID, err)
				return err
			}
		}

		patient, err := u.provisioning.EnsurePatient(ctx, tx, user, profile)
		if err != nil {
			return err
		}
		hasPatient = patient != nil

		return u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionProfileUpdate, "user_profile", userID.String(), oldValue, converter.ProfileToResponse(profile, hasPatient))
	})
	if err != nil {
		return nil, err
	}

	if roleChanged {
		if err := u.sessions.RevokeAll(ctx, userID); err != nil {
			u.log.Warnf("Failed to revoke sessions of user %s: %+v", userID, err)
		}
		u.log.Infof("User %s is now %s", userID, role)
	}

	return converter.ProfileToResponse(profile, hasPatient), nil
}

func (u *staffUsecase) SeedStaff(ctx context.Context, in SeedStaffInput) (*dto.ProfileResponse, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var (
		profile    *entity.UserProfile
		hasPatient bool
	)
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		user, err := u.userRepo.FindByEmail(ctx, tx, email)
		if err != nil {
			u.log.Warnf("Failed to find user by email: %+v", err)
			return err
		}

		if user == nil {
			if in.Password == "" {
				return ErrPasswordRequired
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
			if err != nil {
				u.log.Warnf("Failed to hash password: %+v", err)
				return err
			}
			first, last := splitName(in.Name)
			user = &entity.User{
				Email:     email,
				Password:  string(hashed),
				FirstName: first,
				LastName:  last,
				IsStaff:   in.Role == entity.RoleAdmin,
				IsActive:  true,
			}
			if err := u.userRepo.Create(ctx, tx, user); err != nil {
				if isDuplicateKeyError(err, "email") {
					return ErrEmailAlreadyExists
				}
				u.log.Warnf("Failed to create user: %+v", err)
				return err
			}
			u.log.Infof("Created %s account %s", in.Role, email)
		} else if isStaff := in.Role == entity.RoleAdmin; user.IsStaff != isStaff {
			user.IsStaff = isStaff
			if err := u.userRepo.Update(ctx, tx, user); err != nil {
				u.log.Warnf("Failed to update user %s: %+v", user.ID, err)
				return err
			}
		}

		profile, err = u.provisioning.Provision(ctx, tx, user, in.Role)
		if err != nil {
			return err
		}
		if profile.Role != in.Role {
			profile.Role = in.Role
			if err := u.profileRepo.Update(ctx, tx, profile); err != nil {
				u.log.Warnf("Failed to update profile of user %s: %+v", user.ID, err)
				return err
			}
			u.log.Infof("Repaired role of %s to %s", email, in.Role)
		}

		patient, err := u.provisioning.EnsurePatient(ctx, tx, user, profile)
		if err != nil {
			return err
		}
		hasPatient = patient != nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.ProfileToResponse(profile, hasPatient), nil
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}
