package impl

import (
	"context"
	"log/slog"

	"levelup/config"
	deliverycontext "levelup/internal/delivery/context"
	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/domain/repository"
	"levelup/internal/domain/service"
	"levelup/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	hasher        service.PasswordHasher
	tokenService  service.TokenService
	welcomeBonus  int
	referralBonus int
	retryLimit    int
	logger        *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	loyalty := config.DefaultLoyalty()
	if params.Config != nil && params.Config.Loyalty != nil {
		loyalty = params.Config.Loyalty
	}

	return &authService{
		txManager:     params.TxManager,
		userRepo:      params.UserRepo,
		hasher:        params.Hasher,
		tokenService:  params.TokenService,
		welcomeBonus:  loyalty.WelcomeBonus,
		referralBonus: loyalty.ReferralBonus,
		retryLimit:    loyalty.CodeRetryLimit,
		logger:        params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account, assigns its referral code and applies the
// referral bonuses in the same transaction. An invalid supplied referral code
// is ignored rather than failing the registration.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	// bcrypt is CPU-bound; hash before entering the transaction.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, findErr := userRepo.FindByEmail(ctx, input.Email)
		if findErr == nil {
			return errors.Wrap(domainerrors.ErrEmailAlreadyRegistered, "email already registered")
		}
		if !errors.Is(findErr, repository.ErrUserNotFound) {
			return errors.Wrap(findErr, "failed to check email availability")
		}

		referralCode, codeErr := uniqueReferralCode(ctx, userRepo, input.Name, srv.retryLimit)
		if codeErr != nil {
			return codeErr
		}

		newUser := &entity.User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hashedPassword,
			TaxID:        input.TaxID,
			Phone:        input.Phone,
			Role:         entity.RoleUser,
			MemberType:   entity.MemberTypeForEmail(input.Email),
			Level:        entity.DefaultLevel,
			ReferralCode: referralCode,
			Active:       true,
		}

		if input.ReferralCode != "" {
			if bonusErr := srv.applyReferralBonuses(ctx, userRepo, newUser, input.ReferralCode); bonusErr != nil {
				return bonusErr
			}
		}

		if createErr := userRepo.Create(ctx, newUser); createErr != nil {
			if errors.Is(createErr, repository.ErrDuplicateReferralCode) {
				return errors.Wrap(domainerrors.ErrCodeGenerationExhausted, "referral code collided on insert")
			}

			return errors.Wrap(createErr, "failed to create user during registration")
		}

		registeredUser = newUser

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	accessToken, err := srv.tokenService.GenerateToken(registeredUser.ID, registeredUser.Role.String())
	if err != nil {
		srv.log(ctx).Error("Failed to generate token after registration", slog.Any("userID", registeredUser.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate token after registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registeredUser.ID))

	return &usecase.RegisterOutput{
		User:        registeredUser,
		AccessToken: accessToken,
	}, nil
}

// applyReferralBonuses resolves the supplied code and, when valid, grants the
// welcome bonus to the new account and the referral bonus to the referrer.
// The referrer bonus is persisted before registration continues. Unknown
// codes are ignored; administrative referrers never accrue points.
func (srv *authService) applyReferralBonuses(ctx context.Context, userRepo repository.UserRepository, newUser *entity.User, code string) error {
	referrer, err := userRepo.FindByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Debug("Ignoring unknown referral code", slog.String("code", code))

			return nil
		}

		return errors.Wrap(err, "failed to resolve referral code")
	}

	newUser.Points += srv.welcomeBonus
	newUser.ReferredBy = code

	if !referrer.IsReferrer() {
		srv.log(ctx).Debug("Referrer is administrative, skipping referral bonus", slog.Any("referrerID", referrer.ID))

		return nil
	}

	locked, err := userRepo.FindByIDForUpdate(ctx, referrer.ID)
	if err != nil {
		return errors.Wrap(err, "failed to lock referrer row")
	}

	locked.Points += srv.referralBonus
	if err := userRepo.Update(ctx, locked); err != nil {
		return errors.Wrap(err, "failed to persist referral bonus")
	}

	return nil
}

// Login verifies credentials and issues a session token.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	loggedInUser, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load account for login")
	}

	// bcrypt check outside any transaction (CPU-bound).
	if !srv.hasher.Check(input.Password, loggedInUser.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if !loggedInUser.Active {
		return nil, errors.Wrap(domainerrors.ErrAccountInactive, "login rejected for inactive account")
	}

	accessToken, err := srv.tokenService.GenerateToken(loggedInUser.ID, loggedInUser.Role.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token during login")
	}

	srv.log(ctx).Debug("Login completed", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{
		AccessToken: accessToken,
		User:        loggedInUser,
	}, nil
}

// uniqueReferralCode draws referral codes until one is free, bounded by the
// configured retry limit.
func uniqueReferralCode(ctx context.Context, userRepo repository.UserRepository, name string, retryLimit int) (string, error) {
	for attempt := 0; attempt < retryLimit; attempt++ {
		code, err := generateReferralCode(name)
		if err != nil {
			return "", err
		}

		_, err = userRepo.FindByReferralCode(ctx, code)
		if errors.Is(err, repository.ErrUserNotFound) {
			return code, nil
		}
		if err != nil {
			return "", errors.Wrap(err, "failed to check referral code uniqueness")
		}
	}

	return "", errors.Wrap(domainerrors.ErrCodeGenerationExhausted, "referral code retries exhausted")
}
