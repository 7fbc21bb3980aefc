package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/judgegodwins/sketch-server/game"
	"github.com/judgegodwins/sketch-server/token"
	"github.com/judgegodwins/sketch-server/util"
)

type Server struct {
	config     *util.Config
	logger     *zap.Logger
	tokenMaker token.Maker
	manager    *game.Manager
	router     *gin.Engine
}

func NewServer(config *util.Config, logger *zap.Logger) (*Server, error) {
	maker, err := token.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, err
	}

	manager, err := game.NewManager(config, logger, maker)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(util.RequestLogger(logger), gin.Recovery())

	server := &Server{
		config:     config,
		logger:     logger,
		tokenMaker: maker,
		manager:    manager,
		router:     router,
	}

	router.GET("/ws", manager.ServeWS)
	router.POST("/auth/username", server.TokenGenerator)
	router.GET("/auth/me", server.AuthMiddleware, server.GetTokenData)
	router.GET("/rooms/:id", server.CheckRoom)

	return server, nil
}

func (s *Server) Start() error {
	handler := cors.AllowAll().Handler(s.router)
	return http.ListenAndServe(fmt.Sprintf(":%v", s.config.Port), handler)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
