package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/judgegodwins/sketch-server/api"
	"github.com/judgegodwins/sketch-server/util"
)

func main() {
	util.InitValidator()

	logger, err := util.InitLogger()

	if err != nil {
		log.Fatal(err)
	}

	defer logger.Sync()

	config, err := util.LoadConfig()

	if err != nil {
		logger.Fatal("cannot load config", zap.Error(err))
	}

	server, err := api.NewServer(config, logger)

	if err != nil {
		logger.Fatal("cannot create server", zap.Error(err))
	}

	logger.Info("starting server", zap.String("port", config.Port))

	logger.Fatal("server stopped", zap.Error(server.Start()))
}
