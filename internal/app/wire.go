//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/flashdeck/internal/infrastructure/config"
	"github.com/eslsoft/flashdeck/internal/infrastructure/logger"
	"github.com/eslsoft/flashdeck/internal/usecase"
	"github.com/eslsoft/flashdeck/internal/usecase/backup"
)

var configSet = wire.NewSet(
	config.Load,
	logger.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

var storageSet = wire.NewSet(
	ProvideKVStore,
	ProvideCardStore,
)

var recorderSet = wire.NewSet(
	ProvideTally,
	ProvideRecorder,
)

var usecaseSet = wire.NewSet(
	usecase.NewStudyUsecase,
	backup.NewService,
	wire.Bind(new(backup.Store), new(*usecase.CardStore)),
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		storageSet,
		recorderSet,
		usecaseSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
