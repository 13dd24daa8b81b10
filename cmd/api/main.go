package main

import (
	"context"
	"os"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/logger"
	"github.com/Kamal-Wagle/mucsitbackend/internal/server"
)

// @title MUCSIT Backend API
// @version 1.0
// @description Notes, assignments, resources and drive files for the MUCSIT university platform

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	ctx := context.Background()

	srv, err := server.NewServer(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
