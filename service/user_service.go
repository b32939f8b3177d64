package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roomvault/vault-sdk/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 身份层：注册/登录，签出 Redis token。
// 替代后端行级安全的“会话隐式身份”——登录换 token，之后所有授权判定显式传 userID。
type UserService struct {
	*Service
	tokenService  *TokenService
	loginTokenTTL time.Duration
}

func NewUserService(s *Service) *UserService {
	log.Println("NewUserService")
	return &UserService{
		Service:       s,
		tokenService:  NewTokenService(s.RDB),
		loginTokenTTL: 7 * 24 * time.Hour,
	}
}

// --- types ---

type UserDTO struct {
	ID        uint64    `json:"id"`
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func toUserDTO(u *models.User) UserDTO {
	if u == nil {
		return UserDTO{}
	}
	return UserDTO{
		ID:        u.ID,
		UID:       u.UID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// Register 注册（写库）
func (s *UserService) Register(req RegisterReq) (*UserDTO, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("输入账号")
	}
	password := strings.TrimSpace(req.Password)
	if password == "" {
		return nil, fmt.Errorf("输入密码")
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("用户名已存在")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UID:      uuid.New().String(),
		Username: username,
		Nickname: strings.TrimSpace(req.Nickname),
		Password: string(hash),
	}
	if user.Nickname == "" {
		user.Nickname = user.Username
	}

	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	dto := toUserDTO(&user)
	return &dto, nil
}

// Login 登录并写 Redis token，返回 token + 用户信息
func (s *UserService) Login(ctx context.Context, req LoginReq) (*LoginResp, error) {
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		return nil, fmt.Errorf("需要账户和密码")
	}

	var u models.User
	if err := s.DB.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("账户或密码无效")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("账户或密码无效")
	}

	now := time.Now()
	_ = s.DB.Model(&models.User{}).Where("id = ?", u.ID).
		Update("last_login_at", &now).Error

	resp := &LoginResp{User: toUserDTO(&u)}

	if s.RDB == nil {
		return resp, nil
	}

	token, err := s.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.StoreToken(ctx, token, u.ID, s.loginTokenTTL); err != nil {
		return nil, err
	}
	resp.Token = token
	return resp, nil
}

// GetUserInfo 按 ID 取用户信息。
func (s *UserService) GetUserInfo(userID uint64) (*UserDTO, error) {
	var u models.User
	if err := s.DB.Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	dto := toUserDTO(&u)
	return &dto, nil
}
