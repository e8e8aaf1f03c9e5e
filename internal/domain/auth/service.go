package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/user"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/jwt"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/logger"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/password"
)

// SignupBonusReference is the ledger reference of the promotional seed.
const SignupBonusReference = "signup-bonus"

// TxRunner runs fn inside a database transaction
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// WalletOpener opens the wallet of a new account inside its signup transaction
type WalletOpener interface {
	OpenTx(ctx context.Context, tx *sqlx.Tx, owner uuid.UUID) error
	ApplyTx(ctx context.Context, tx *sqlx.Tx, e wallet.Entry) (*wallet.Transaction, error)
	Announce(ctx context.Context, t *wallet.Transaction)
}

// Service handles authentication business logic
type Service struct {
	userRepo    user.Repository
	tx          TxRunner
	wallets     WalletOpener
	jwtService  *jwt.Service
	redis       *redis.Client // nil if Redis disabled
	signupBonus int64
}

// NewService creates auth service
func NewService(userRepo user.Repository, tx TxRunner, wallets WalletOpener, jwtService *jwt.Service, redis *redis.Client, signupBonus int64) *Service {
	return &Service{
		userRepo:    userRepo,
		tx:          tx,
		wallets:     wallets,
		jwtService:  jwtService,
		redis:       redis,
		signupBonus: signupBonus,
	}
}

// Register creates the account and its wallet in one transaction
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Phone = normalizePhone(req.Phone)

	// 1. Validate role
	if !user.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	// 2. Hash password
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	// 3. Create account, wallet and optional bonus atomically
	u := &user.User{
		ID:           uuid.New(),
		Phone:        req.Phone,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         user.Role(req.Role),
		KYCStatus:    user.KYCNone,
	}

	var bonus *wallet.Transaction
	err = s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.userRepo.CreateTx(ctx, tx, u); err != nil {
			return err
		}
		if err := s.wallets.OpenTx(ctx, tx, u.ID); err != nil {
			return err
		}
		if s.signupBonus <= 0 {
			return nil
		}
		var err error
		bonus, err = s.wallets.ApplyTx(ctx, tx, wallet.Entry{
			OwnerID:   u.ID,
			Change:    s.signupBonus,
			Kind:      wallet.KindAdminCredit,
			Reference: SignupBonusReference,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, user.ErrPhoneAlreadyExists) {
			return nil, ErrPhoneAlreadyExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	s.wallets.Announce(ctx, bonus)

	logger.LogInfo(ctx, "account registered", "user_id", u.ID.String(), "role", req.Role)

	// 4. Generate tokens
	resp, err := s.generateTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	balance := int64(0)
	if bonus != nil {
		balance = bonus.BalanceAfter
	}
	resp.Balance = &balance
	return resp, nil
}

// Login authenticates user by phone and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Phone = normalizePhone(req.Phone)

	// 1. Find user
	u, err := s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive() {
		return nil, ErrUserDisabled
	}

	// 3. Generate tokens
	return s.generateTokens(ctx, u)
}

// Refresh rotates the refresh token and issues a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	// 1. Signature, expiry and type
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	// 2. The stored hash must still be live; deleting it is the rotation
	refreshHash := jwt.HashRefreshToken(refreshToken)
	if s.redis != nil {
		n, err := s.redis.Del(ctx, refreshKey(refreshHash)).Result()
		if err != nil {
			return nil, fmt.Errorf("refresh token store: %w", err)
		}
		if n == 0 {
			return nil, ErrInvalidRefreshToken
		}
	}

	// 3. Get user
	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, ErrUserDisabled
	}

	// 4. Generate new tokens
	return s.generateTokens(ctx, u)
}

// Logout invalidates refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" || s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, refreshKey(jwt.HashRefreshToken(refreshToken))).Err()
}

// GetCurrentUser returns current user by ID
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp := NewUserResponse(u)
	return &resp, nil
}

// generateTokens creates access and refresh tokens
func (s *Service) generateTokens(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	// Store hash(refresh) in Redis
	if s.redis != nil {
		key := refreshKey(jwt.HashRefreshToken(refreshToken))
		if err := s.redis.Set(ctx, key, u.ID.String(), s.jwtService.GetRefreshTTL()).Err(); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
	}

	return &AuthResponse{
		User: NewUserResponse(u),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}

func refreshKey(hash string) string {
	return "refresh:" + hash
}
