package di

import (
	"go.uber.org/zap"

	"kellerliste/application/commands/bus"
	"kellerliste/application/ports"
	querybus "kellerliste/application/queries/bus"
	"kellerliste/application/services"
	"kellerliste/infrastructure/config"
	lambdahandlers "kellerliste/interfaces/lambda"
	"kellerliste/pkg/auth"
	"kellerliste/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	Repository       ports.InventoryRepository
	Publisher        ports.EventPublisher
	Metrics          *observability.Metrics
	Tracer           *observability.Tracer
	JWTValidator     *auth.JWTValidator
	CommandBus       *bus.CommandBus
	QueryBus         *querybus.QueryBus
	InventoryService *services.InventoryService
	AuthService      *services.AuthService
	Lambda           *lambdahandlers.Handlers
}

// Shutdown flushes buffered log entries
func (c *Container) Shutdown() {
	_ = c.Logger.Sync()
}
