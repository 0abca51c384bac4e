package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faceforge",
	Short: "Multi-tenant face ingestion and identity clustering service",
	Long: `FaceForge ingests images, detects the faces in them through an external
face analysis provider and incrementally groups the faces into identity
clusters. Faces that start a new cluster are queued for human review.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
