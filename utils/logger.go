package utils

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger returns a production zap logger, or a development one when
// GIN_MODE is not "release".
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
