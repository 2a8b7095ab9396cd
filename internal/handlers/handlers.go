package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/config"
	"github.com/temcen/storefront/internal/services"
	"github.com/temcen/storefront/pkg/models"
)

type Handlers struct {
	Health  *HealthHandler
	Session *SessionHandler
}

func New(cfg *config.Config, logger *logrus.Logger, services *services.Services) *Handlers {
	formatter := models.NewFormatter(cfg.Storefront.Currency)

	return &Handlers{
		Health:  NewHealthHandler(logger, services.Health),
		Session: NewSessionHandler(logger, services.Storefront, formatter, cfg.Storefront.TitleDisplayLength),
	}
}
