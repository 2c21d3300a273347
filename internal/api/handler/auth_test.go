package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mihintamu/scholarai-server/config"
	"github.com/mihintamu/scholarai-server/internal/model/dto"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
	"github.com/mihintamu/scholarai-server/internal/repository"
	"github.com/mihintamu/scholarai-server/internal/service"
	"github.com/mihintamu/scholarai-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testHandlerConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
		Plans: config.PlansConfig{
			Tiers: map[string]config.PlanTier{
				"free":    {ID: "plan_free", Credits: 1, Price: 0},
				"basic":   {ID: "plan_basic", Credits: 8, Price: 499},
				"premium": {ID: "plan_premium", Credits: 30, Price: 2499},
			},
		},
	}
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	accessCodeRepo := repository.NewAccessCodeRepository(db)

	authService := service.NewAuthService(userRepo, subRepo, accessCodeRepo, nil, testHandlerConfig())
	handler := NewAuthHandler(authService, nil)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, db, cleanup
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)

	req := dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "testuser",
		Password: "password123",
	}

	w := performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)

	req := dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "testuser1",
		Password: "password123",
	}

	// First registration
	w := performRequest(router, "POST", "/register", req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Duplicate email
	req.Username = "testuser2"
	w = performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_Register_InvalidRequest(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)

	// Missing required fields
	req := map[string]string{
		"email": "invalid-email",
	}

	w := performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_Login_UnverifiedEmail(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	registerReq := dto.RegisterRequest{
		Email:    "login@example.com",
		Username: "loginuser",
		Password: "password123",
	}
	w := performRequest(router, "POST", "/register", registerReq)
	require.Equal(t, http.StatusOK, w.Code)

	// 未验证邮箱时登录被拒
	loginReq := dto.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	}
	w = performRequest(router, "POST", "/login", loginReq)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/login", handler.Login)

	req := dto.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "wrongpassword",
	}

	w := performRequest(router, "POST", "/login", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuthHandler_VerifyEmail_InvalidCode(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/verify-email", handler.VerifyEmail)

	req := dto.VerifyEmailRequest{
		Code: "invalid-code",
	}

	w := performRequest(router, "POST", "/verify-email", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_AdminLogin_InvalidAccessCode(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/admin-login", handler.AdminLogin)

	req := dto.AdminLoginRequest{
		Email:      "admin@example.com",
		Password:   "adminpass",
		AccessCode: "WRONG",
	}

	w := performRequest(router, "POST", "/admin-login", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestAuthHandler_AdminLogin_Success(t *testing.T) {
	handler, db, cleanup := setupAuthHandler(t)
	defer cleanup()

	testutil.TestAccessCode(t, db, "SCHOLAR-2024")

	router := gin.New()
	router.POST("/admin-login", handler.AdminLogin)

	req := dto.AdminLoginRequest{
		Email:      "admin@example.com",
		Password:   "adminpass",
		AccessCode: "SCHOLAR-2024",
	}

	w := performRequest(router, "POST", "/admin-login", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestAuthHandler_GithubCallback_MissingCode(t *testing.T) {
	handler, _, cleanup := setupAuthHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/callback", handler.GithubCallback)

	req := httptest.NewRequest("GET", "/callback", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}
