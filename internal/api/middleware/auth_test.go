package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/pkg/jwt"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		response.Success(c, gin.H{"user_id": userID, "role": GetRole(c)})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestAuth_MissingHeader(t *testing.T) {
	router := setupProtectedRouter()

	w, resp := doRequest(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	router := setupProtectedRouter()

	_, resp := doRequest(router, "Token abc123")
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	router := setupProtectedRouter()

	_, resp := doRequest(router, "Bearer not-a-real-token")
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	router := setupProtectedRouter()

	token, err := jwt.GenerateToken(1, model.RoleUser, "other-secret", 24)
	require.NoError(t, err)

	_, resp := doRequest(router, "Bearer "+token)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	router := setupProtectedRouter()

	token, err := jwt.GenerateToken(42, model.RoleUser, testSecret, 24)
	require.NoError(t, err)

	w, resp := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), data["user_id"])
	assert.Equal(t, model.RoleUser, data["role"])
}

func TestAdminOnly_UserRejected(t *testing.T) {
	router := setupProtectedRouter(AdminOnly())

	token, err := jwt.GenerateToken(1, model.RoleUser, testSecret, 24)
	require.NoError(t, err)

	_, resp := doRequest(router, "Bearer "+token)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestAdminOnly_AdminAllowed(t *testing.T) {
	router := setupProtectedRouter(AdminOnly())

	token, err := jwt.GenerateToken(1, model.RoleAdmin, testSecret, 24)
	require.NoError(t, err)

	_, resp := doRequest(router, "Bearer "+token)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}
