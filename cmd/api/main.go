package main

import (
	"context"
	"os"

	"github.com/yigit/unilink/internal/bootstrap"
	"github.com/yigit/unilink/internal/config"
	"github.com/yigit/unilink/internal/pkg/logger"
	"github.com/yigit/unilink/internal/server"
)

//go:generate swag init -g cmd/api/main.go -d ../../ -o ../../docs

// @title UniLink Lecturer API
// @version 1.0
// @description Lecturer portal API: consultations, direct messages, notifications and communities.
// @description Live views are served over WebSocket; pass the access token as ?token= when headers cannot be set.

// @contact.name API Support
// @contact.email support@unilink.lk

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>"

func main() {
	configPath := config.GetEnv("UNILINK_CONFIG", bootstrap.DefaultConfigPath)

	srv, err := server.NewServer(context.Background(), configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
