package api

import (
	"net/http"

	voiceCallHandler "voice-bridge/internal/voicecall/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	router           *gin.RouterGroup
	voiceCallHandler voiceCallHandler.Handler
}

func New(router *gin.RouterGroup, voiceCallHandler voiceCallHandler.Handler) API {
	return API{
		router:           router,
		voiceCallHandler: voiceCallHandler,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := a.router.Group("/api")
	{
		phoneGroup := apiGroup.Group("/phone")
		phoneGroup.GET("/incoming", a.voiceCallHandler.HandleIncomingCall)
		phoneGroup.POST("/incoming", a.voiceCallHandler.ValidateSignature, a.voiceCallHandler.HandleIncomingCall)
		phoneGroup.GET("/media-stream", a.voiceCallHandler.ValidateSignature, a.voiceCallHandler.HandleMediaStream)
	}
	{
		callsGroup := apiGroup.Group("/calls")
		callsGroup.GET("/active", a.voiceCallHandler.HandleActiveCalls)
		callsGroup.GET("/:id", a.voiceCallHandler.HandleGetCall)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
