//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"go-fund-registry-service/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		RuntimeInfraSet,
		RepositorySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}
