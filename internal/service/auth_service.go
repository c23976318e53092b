package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/waveline/backstage/internal/config"
	"github.com/waveline/backstage/internal/entity"
	"github.com/waveline/backstage/internal/repository"
	"github.com/waveline/backstage/pkg/errcode"
	"github.com/waveline/backstage/pkg/idgen"
	"github.com/waveline/backstage/pkg/jwt"
	"github.com/waveline/backstage/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication logic
type AuthService struct {
	accountRepo repository.AccountRepository
	cfg         *config.Config
	tokenStore  *jwt.TokenStore
}

// NewAuthService creates a new AuthService
func NewAuthService(accountRepo repository.AccountRepository, cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		cfg:         cfg,
		tokenStore:  jwt.NewTokenStore(rdb, cfg.JWT.ExpireHours),
	}
}

// RegisterRequest represents account registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents account login request
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	PlatformId int    `json:"platform_id"`
}

// LoginResponse represents account login response
type LoginResponse struct {
	Token       string              `json:"token"`
	AccountInfo *entity.AccountInfo `json:"account_info"`
}

// Register registers a new account
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.AccountInfo, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errcode.ErrInvalidParam
	}

	existing, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		logger.CtxError(ctx, "check account exists failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if existing != nil {
		return nil, errcode.ErrAccountExists
	}

	accountId, err := idgen.NextID()
	if err != nil {
		logger.CtxError(ctx, "generate account id failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.CtxError(ctx, "hash password failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	account := &entity.Account{
		Id:       accountId,
		Username: req.Username,
		Password: string(hashedPassword),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		logger.CtxError(ctx, "create account failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	logger.CtxInfo(ctx, "account registered: account_id=%d, username=%s", accountId, req.Username)
	return account.ToAccountInfo(), nil
}

// Login authenticates an account and returns a token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	account, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		logger.CtxError(ctx, "get account failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if account == nil {
		return nil, errcode.ErrAccountNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, errcode.ErrPasswordWrong
	}

	token, err := jwt.GenerateToken(account.Id, req.PlatformId, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		logger.CtxError(ctx, "generate token failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	if err := s.tokenStore.StoreToken(ctx, account.Id, req.PlatformId, token); err != nil {
		logger.CtxError(ctx, "store token failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	// Single device per platform policy
	kickedTokens, err := s.tokenStore.KickOtherTokens(ctx, account.Id, req.PlatformId, token)
	if err != nil {
		logger.CtxWarn(ctx, "kick other tokens failed: %v", err)
	} else if len(kickedTokens) > 0 {
		logger.CtxInfo(ctx, "kicked %d tokens for account_id=%d, platform_id=%d", len(kickedTokens), account.Id, req.PlatformId)
	}

	logger.CtxInfo(ctx, "account logged in: account_id=%d, platform_id=%d", account.Id, req.PlatformId)
	return &LoginResponse{
		Token:       token,
		AccountInfo: account.ToAccountInfo(),
	}, nil
}

// ValidateToken validates a token and returns claims
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := jwt.ParseToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	valid, err := s.tokenStore.IsTokenValid(ctx, claims.AccountId, claims.PlatformId, token)
	if err != nil {
		logger.CtxWarn(ctx, "check token status failed: %v", err)
		// Fall back to JWT validation only if Redis check fails
		return claims, nil
	}
	if !valid {
		return nil, errcode.ErrTokenInvalid
	}

	return claims, nil
}

// Logout invalidates an account's token
func (s *AuthService) Logout(ctx context.Context, accountId int64, platformId int, token string) error {
	if err := s.tokenStore.InvalidateToken(ctx, accountId, platformId, token); err != nil {
		logger.CtxError(ctx, "invalidate token failed: %v", err)
		return errcode.ErrInternalServer
	}
	logger.CtxInfo(ctx, "account logged out: account_id=%d, platform_id=%d", accountId, platformId)
	return nil
}
