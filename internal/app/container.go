package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/flashdeck/internal/adapter/recorder"
	"github.com/eslsoft/flashdeck/internal/infrastructure/config"
	"github.com/eslsoft/flashdeck/internal/usecase"
	"github.com/eslsoft/flashdeck/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  *usecase.CardStore
	Study  usecase.StudyUsecase
	Tally  *recorder.Tally
	Backup *backup.Service
}
