package main

import (
	"log/slog"
	"os"

	"github.com/Rakhulsr/go-storefront/app/cmd"
	"github.com/Rakhulsr/go-storefront/app/utils/logger"
)

func main() {
	logger.Setup(os.Getenv("APP_ENV") == "production")

	if err := cmd.RunCli(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
