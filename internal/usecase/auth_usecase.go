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
	"clinic-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists, please log in")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
)

// Landing routes per role, returned at login.
const (
	LandingAdmin    = "/api/v1/admin/dashboard"
	LandingAgent    = "/api/v1/agent/dashboard"
	LandingExtranet = "/api/v1/extranet"
)

// LandingRoute is where an identity with role starts after login.
func LandingRoute(role entity.Role) string {
	switch role {
	case entity.RoleAdmin:
		return LandingAdmin
	case entity.RoleAgent:
		return LandingAgent
	default:
		return LandingExtranet
	}
}

type AuthUsecase interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error)
	Extranet(ctx context.Context, actor entity.Actor) (*dto.ExtranetResponse, error)
}

type authUsecase struct {
	tx           database.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	provisioning ProvisioningUsecase
	auditService service.AuditService
	jwtService   *jwt.JWTService
	sessions     service.SessionStore
}

func NewAuthUsecase(
	tx database.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	provisioning ProvisioningUsecase,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	sessions service.SessionStore,
) AuthUsecase {
	return &authUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		provisioning: provisioning,
		auditService: auditService,
		jwtService:   jwtService,
		sessions:     sessions,
	}
}

// Signup creates an ordinary user account. Staff accounts come from the
// seed-staff command or a role change by an administrator.
func (u *authUsecase) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashedPassword),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		IsActive:  true,
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.userRepo.FindByEmail(ctx, tx, user.Email)
		if err != nil {
			u.log.Warnf("Failed to find user by email: %+v", err)
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		profile, err := u.provisioning.Provision(ctx, tx, user, entity.RoleUser)
		if err != nil {
			return err
		}
		user.Profile = profile

		return u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]string{
			"email": user.Email,
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("User %s signed up", user.ID)
	return converter.UserToResponse(user, entity.RoleUser), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Read-only lookup, no transaction needed
	user, err := u.userRepo.FindByEmail(ctx, u.tx.Conn(ctx), strings.TrimSpace(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Profile == nil {
		// Identities created outside the API get their profile on first login.
		err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
			profile, err := u.provisioning.Provision(ctx, tx, user, entity.RoleUser)
			if err != nil {
				return err
			}
			user.Profile = profile
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	role := policy.EffectiveRole(user.Profile.Role, user.IsStaff)

	tokens, err := u.issueTokens(ctx, user.ID, user.Email, role)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, u.tx.Conn(ctx), &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), nil); err != nil {
		u.log.Warnf("Failed to record login of user %s: %+v", user.ID, err)
	}

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error {
	if err := u.sessions.Revoke(ctx, userID, accessTokenID, jwt.AccessToken); err != nil {
		return err
	}

	// The refresh token is optional; a foreign or invalid one is ignored.
	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == userID {
			if err := u.sessions.Revoke(ctx, userID, claims.TokenID, jwt.RefreshToken); err != nil {
				return err
			}
		}
	}

	if err := u.auditService.LogCreate(ctx, u.tx.Conn(ctx), &userID, entity.AuditActionUserLogout, "user", userID.String(), nil); err != nil {
		u.log.Warnf("Failed to record logout of user %s: %+v", userID, err)
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	valid, err := u.sessions.IsValid(ctx, claims.UserID, claims.TokenID, jwt.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrTokenRevoked
	}

	// Rotate: the old refresh token is single use
	if err := u.sessions.Revoke(ctx, claims.UserID, claims.TokenID, jwt.RefreshToken); err != nil {
		return nil, err
	}

	// The role may have changed since the token was issued
	user, err := u.userRepo.FindByID(ctx, u.tx.Conn(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound
	}

	profileRole := entity.RoleUser
	if user.Profile != nil {
		profileRole = user.Profile.Role
	}

	return u.issueTokens(ctx, user.ID, user.Email, policy.EffectiveRole(profileRole, user.IsStaff))
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.tx.Conn(ctx), actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user, actor.Role), nil
}

func (u *authUsecase) Extranet(ctx context.Context, actor entity.Actor) (*dto.ExtranetResponse, error) {
	user, err := u.GetCurrentUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &dto.ExtranetResponse{
		Role:        string(actor.Role),
		DisplayName: user.DisplayName,
		Landing:     LandingRoute(actor.Role),
		Links:       extranetLinks(actor),
	}, nil
}

// extranetLinks lists the entry points the actor may use.
func extranetLinks(actor entity.Actor) []string {
	links := []struct {
		capability policy.Capability
		route      string
	}{
		{policy.BookAppointment, "/api/v1/appointments"},
		{policy.ViewOwnAppointments, "/api/v1/queue"},
		{policy.ManageQueue, LandingAgent},
		{policy.ViewReports, LandingAdmin},
	}

	routes := make([]string, 0, len(links))
	for _, l := range links {
		if policy.Can(actor, l.capability) {
			routes = append(routes, l.route)
		}
	}
	return routes
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string, role entity.Role) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, string(role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, string(role))
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.sessions.Store(ctx, userID, accessTokenID, jwt.AccessToken, u.jwtService.GetAccessExpiry()); err != nil {
		return nil, err
	}
	if err := u.sessions.Store(ctx, userID, refreshTokenID, jwt.RefreshToken, u.jwtService.GetRefreshExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:         string(role),
		Landing:      LandingRoute(role),
	}, nil
}
