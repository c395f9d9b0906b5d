package routes

import (
	"github.com/MStepRom/kursova2025/internal/handlers"
	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(rg *gin.RouterGroup, handler *handlers.AuthHandler) {
	{
		rg.POST("/register", handler.Register)
		rg.POST("/login", handler.Login)
	}
}

func RegisterTaskRoutes(rg *gin.RouterGroup, handler *handlers.TaskHandler) {
	{
		rg.GET("", handler.GetTasks)
		rg.POST("", handler.CreateTask)
		rg.PUT("/:id", handler.UpdateTask)
		rg.DELETE("/:id", handler.DeleteTask)
	}
}

func RegisterPollRoutes(rg *gin.RouterGroup, handler *handlers.PollHandler) {
	{
		rg.GET("", handler.GetPolls)
		rg.POST("", handler.CreatePoll)
		rg.GET("/:id", handler.GetPollByID)
		rg.DELETE("/:id", handler.DeletePoll)
		rg.POST("/:id/vote", handler.Vote)
	}
}
