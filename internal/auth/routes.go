package auth

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, authService AuthServicePort) {
	controller := &AuthController{AuthService: authService}

	user := r.Group("/api/user")
	{
		user.POST("/signup", controller.SignUp)
		user.POST("/login", controller.Login)
		user.POST("/logout", controller.Logout)
		user.POST("/refresh", controller.Refresh)
		user.GET("/me", controller.Me)
	}
}
