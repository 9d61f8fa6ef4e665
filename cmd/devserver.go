package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"grveyardapp/pkg/devserver"
)

var (
	devServerPort int
	devServerSeed int
)

func init() {
	devServerCmd.Flags().IntVar(&devServerPort, "port", 8080, "port to listen on")
	devServerCmd.Flags().IntVar(&devServerSeed, "seed", 60, "number of assets to seed")
}

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run an in-memory grveyard backend for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		gin.SetMode(gin.ReleaseMode)

		backend := devserver.NewBackend()
		if devServerSeed > 0 {
			backend.SeedAssets(devServerSeed, "seed-owner")
			logger.WithField("count", devServerSeed).Info("seeded assets")
		}

		addr := fmt.Sprintf(":%d", devServerPort)
		logger.WithField("addr", addr).Info("dev backend listening")
		return http.ListenAndServe(addr, backend.Router())
	},
}
