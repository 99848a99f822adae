package api

import (
	"github.com/gin-gonic/gin"
	"github.com/soracom/connectivity-benchmark/internal/repository"
)

// NewRouter wires the run history routes. Everything under /api/v1 needs a
// bearer token signed with secret.
func NewRouter(repo *repository.RunRepository, secret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	rh := NewRunHandler(repo)

	apiGroup := r.Group("/api/v1")
	apiGroup.Use(AuthMiddleware(secret))
	{
		apiGroup.GET("/runs", rh.ListRuns)
		apiGroup.GET("/runs/:id", rh.GetRun)
		apiGroup.GET("/runs/iccid/:iccid", rh.ListRunsByICCID)
	}
	return r
}
