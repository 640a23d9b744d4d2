package app

import (
	"context"
	"fmt"

	"github.com/feinhq/fein/internal/app/auth"
	"github.com/feinhq/fein/internal/app/services/accounts"
	"github.com/feinhq/fein/internal/app/services/reports"
	"github.com/feinhq/fein/internal/app/services/tags"
	"github.com/feinhq/fein/internal/app/services/transactions"
	"github.com/feinhq/fein/internal/app/services/users"
	"github.com/feinhq/fein/internal/app/storage"
	"github.com/feinhq/fein/internal/app/storage/memory"
	"github.com/feinhq/fein/internal/app/system"
	"github.com/feinhq/fein/internal/logging"
	"github.com/feinhq/fein/internal/metrics"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users        storage.UserStore
	Accounts     storage.AccountStore
	Transactions storage.TransactionStore
	Tags         storage.TagStore
	Reports      storage.ReportStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logging.Logger

	Users        *users.Service
	Accounts     *accounts.Service
	Transactions *transactions.Service
	Tags         *tags.Service
	Reports      *reports.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, authMgr *auth.Manager, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.NewDefault("app")
	}
	if authMgr == nil {
		return nil, fmt.Errorf("auth manager is required")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Accounts == nil {
		stores.Accounts = mem
	}
	if stores.Transactions == nil {
		stores.Transactions = mem
	}
	if stores.Tags == nil {
		stores.Tags = mem
	}
	if stores.Reports == nil {
		stores.Reports = mem
	}

	manager := system.NewManager()

	userService := users.New(stores.Users, authMgr, log)
	acctService := accounts.New(stores.Users, stores.Accounts, log)
	txnService := transactions.New(stores.Accounts, stores.Transactions, log)
	tagService := tags.New(stores.Tags, stores.Transactions, log)
	reportService := reports.New(stores.Reports, log)

	for _, name := range []string{"users", "accounts", "transactions", "tags"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:      manager,
		log:          log,
		Users:        userService,
		Accounts:     acctService,
		Transactions: txnService,
		Tags:         tagService,
		Reports:      reportService,
	}, nil
}

// AttachMetrics wires Prometheus counters into the services that emit them.
func (a *Application) AttachMetrics(m *metrics.Metrics) {
	a.Users.AttachMetrics(m)
	a.Transactions.AttachMetrics(m)
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
