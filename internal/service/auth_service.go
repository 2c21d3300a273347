package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/email"
	"github.com/mihintamu/scholarai-server/internal/pkg/jwt"
	"github.com/mihintamu/scholarai-server/internal/pkg/oauth"
	"github.com/mihintamu/scholarai-server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailNotVerified   = errors.New("邮箱尚未验证")
	ErrInvalidVerifyCode  = errors.New("验证码无效或已过期")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidAccessCode  = errors.New("访问码无效")
	ErrNotAdmin           = errors.New("该账号不是管理员")
)

type AuthService struct {
	userRepo       *repository.UserRepository
	subRepo        *repository.SubscriptionRepository
	accessCodeRepo *repository.AccessCodeRepository
	emailService   *email.Service
	cfg            *config.Config
	githubOAuth    *oauth.GithubOAuth
}

func NewAuthService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	accessCodeRepo *repository.AccessCodeRepository,
	emailService *email.Service,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		subRepo:        subRepo,
		accessCodeRepo: accessCodeRepo,
		emailService:   emailService,
		cfg:            cfg,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
	}
}

// Register 用户注册，成功后自动开通 free 套餐
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	// 检查邮箱是否存在
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	// 检查用户名是否存在
	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 生成验证码
	verifyCode, err := generateRandomCode(32)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	expiresAt := time.Now().Add(24 * time.Hour)

	user := &model.User{
		Username:              req.Username,
		Email:                 &req.Email,
		PasswordHash:          &passwordStr,
		PhoneNumber:           req.PhoneNumber,
		Role:                  model.RoleUser,
		VerificationCode:      &verifyCode,
		VerificationExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	// 开通 free 套餐
	if err := s.createFreeSubscription(user.ID); err != nil {
		return nil, err
	}

	// 发送验证邮件，失败不阻塞注册
	if s.emailService != nil {
		if err := s.emailService.SendVerificationCode(req.Email, verifyCode); err != nil {
			log.Printf("Failed to send verification email to %s: %v", req.Email, err)
		}
	}

	// 开发环境临时方案：自动验证邮箱
	if s.cfg.Server.Mode == "debug" {
		user.EmailVerified = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 检查邮箱是否验证（生产环境强制要求，开发环境跳过）
	if !user.EmailVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	// 验证密码
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.buildLoginResponse(user)
}

// VerifyEmail 验证邮箱
func (s *AuthService) VerifyEmail(code string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByVerificationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerifyCode
		}
		return nil, err
	}

	// 检查验证码是否过期
	if user.VerificationExpiresAt == nil || time.Now().After(*user.VerificationExpiresAt) {
		return nil, ErrInvalidVerifyCode
	}

	user.EmailVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	// 欢迎邮件，失败忽略
	if s.emailService != nil && user.Email != nil {
		if err := s.emailService.SendWelcome(*user.Email, user.Username); err != nil {
			log.Printf("Failed to send welcome email: %v", err)
		}
	}

	return s.buildLoginResponse(user)
}

// AdminLogin 管理员登录。访问码仅用于首次开通管理员账号，
// 已有账号的授权以 users.role 为准。
func (s *AuthService) AdminLogin(req *dto.AdminLoginRequest) (*dto.LoginResponse, error) {
	valid, err := s.accessCodeRepo.Exists(req.AccessCode)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidAccessCode
	}

	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// 首次使用访问码：创建管理员账号
		return s.createAdminAccount(req)
	}

	// 已有账号：校验密码后提升为管理员
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Role != model.RoleAdmin {
		user.Role = model.RoleAdmin
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return s.buildLoginResponse(user)
}

func (s *AuthService) createAdminAccount(req *dto.AdminLoginRequest) (*dto.LoginResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordStr := string(hashedPassword)

	username := adminUsernameFromEmail(req.Email)
	exists, _ := s.userRepo.ExistsByUsername(username)
	if exists {
		suffix, _ := generateRandomCode(8)
		username = fmt.Sprintf("%s_%s", username, suffix)
	}

	user := &model.User{
		Username:      username,
		Email:         &req.Email,
		PasswordHash:  &passwordStr,
		Role:          model.RoleAdmin,
		EmailVerified: true, // 访问码本身就是开通凭证
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if err := s.createFreeSubscription(user.ID); err != nil {
		return nil, err
	}

	return s.buildLoginResponse(user)
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile 更新用户资料
func (s *AuthService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = *req.Username
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return s.buildUserInfo(user), nil
}

// UpdateAvatar 更新头像地址
func (s *AuthService) UpdateAvatar(userID int64, avatarURL string) error {
	return s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": avatarURL})
}

// GetGithubAuthURL 获取 GitHub 授权 URL
func (s *AuthService) GetGithubAuthURL(state string) string {
	return s.githubOAuth.GetAuthURL(state)
}

// GithubCallback 处理 GitHub OAuth 回调
func (s *AuthService) GithubCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	// 用 code 换取 token
	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	// 获取 GitHub 用户信息
	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	githubIDStr := fmt.Sprintf("%d", githubUser.ID)

	// 检查用户是否已存在
	user, err := s.userRepo.GetByGithubID(githubIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		user = &model.User{
			Username:      githubUser.Login,
			GithubID:      &githubIDStr,
			AvatarURL:     githubUser.AvatarURL,
			Role:          model.RoleUser,
			EmailVerified: true, // OAuth 用户默认已验证
		}

		if githubUser.Email != "" {
			user.Email = &githubUser.Email
		}

		// 确保用户名唯一
		exists, _ := s.userRepo.ExistsByUsername(user.Username)
		if exists {
			user.Username = fmt.Sprintf("%s_%d", githubUser.Login, githubUser.ID)
		}

		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		if err := s.createFreeSubscription(user.ID); err != nil {
			return nil, err
		}
	}

	return s.buildLoginResponse(user)
}

func (s *AuthService) createFreeSubscription(userID int64) error {
	tier := s.cfg.Plans.Tiers["free"]
	return s.subRepo.Create(&model.Subscription{
		UserID:           userID,
		PlanID:           tier.ID,
		PlanName:         "free",
		CreditsRemaining: tier.Credits,
		Status:           "active",
	})
}

func (s *AuthService) buildLoginResponse(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  s.buildUserInfo(user),
	}, nil
}

func (s *AuthService) buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		PhoneNumber:   user.PhoneNumber,
		Role:          user.Role,
		AvatarURL:     user.AvatarURL,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}

	if user.Email != nil {
		info.Email = *user.Email
	}

	return info
}

func adminUsernameFromEmail(emailAddr string) string {
	for i := 0; i < len(emailAddr); i++ {
		if emailAddr[i] == '@' {
			return emailAddr[:i]
		}
	}
	return emailAddr
}

func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
