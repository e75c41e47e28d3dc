package auth

import "github.com/gin-gonic/gin"

// AuthModule implements the app.Module interface for authentication.
type AuthModule struct {
	handler *AuthHandler
	authMW  gin.HandlerFunc
}

// NewModule creates a new AuthModule. authMW guards the profile route and may
// be nil in tests; login and register are always public.
// Panics if h is nil.
func NewModule(h *AuthHandler, authMW gin.HandlerFunc) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h, authMW: authMW}
}

// RegisterRoutes registers auth API routes.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", m.handler.Login)
	auth.POST("/register", m.handler.Register)
	if m.authMW != nil {
		auth.GET("/profile", m.authMW, m.handler.Profile)
	} else {
		auth.GET("/profile", m.handler.Profile)
	}
}
