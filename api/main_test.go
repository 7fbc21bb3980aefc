package api

import (
	"log"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/judgegodwins/sketch-server/util"
)

var testServer *Server

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	config := &util.Config{
		Port:              "8080",
		TokenSymmetricKey: "YELLOW SUBMARINE, BLACK WIZARDRY",
		RoundSeconds:      60,
	}

	var err error
	testServer, err = NewServer(config, zap.NewNop())

	if err != nil {
		log.Fatal("cannot create server: ", err)
	}

	os.Exit(m.Run())
}
