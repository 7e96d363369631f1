package handler

import (
	"github.com/metrilive/internal/db"
	"github.com/metrilive/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	facebook *service.FacebookService
	accounts *service.AccountService
	metrics  *service.MetricsService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(store *db.Store, graph service.GraphAPI) *API {
	return &API{
		facebook: service.NewFacebookService(store, graph),
		accounts: service.NewAccountService(store),
		metrics:  service.NewMetricsService(store),
	}
}
