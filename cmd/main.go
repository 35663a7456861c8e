package main

import (
	"fxconvert/internal/app"

	"github.com/sirupsen/logrus"
)

// @title fxconvert API
// @version 1.0
// @description Currency conversion over cached daily reference rates.
// @BasePath /api/v1
func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Fatal("Application stopped")
	}
}
