package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/dispatcher"
	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/application/service"
	"github.com/garyjia/event-finance/internal/config"
	"github.com/garyjia/event-finance/internal/infrastructure/messaging"
	"github.com/garyjia/event-finance/internal/infrastructure/messaging/amqp"
	"github.com/garyjia/event-finance/internal/infrastructure/persistence/repository"
	"github.com/garyjia/event-finance/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/event-finance/internal/infrastructure/report"
	"github.com/garyjia/event-finance/internal/infrastructure/storage"
	"github.com/garyjia/event-finance/internal/infrastructure/worker"
	httpapi "github.com/garyjia/event-finance/internal/interfaces/http"
	"github.com/garyjia/event-finance/pkg/database"
	"github.com/garyjia/event-finance/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB        *database.DB
	TxManager *sqlite.DB
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	Storage    port.FileStorage
	Config     *config.Config
	Logger     *zap.Logger
}

// ProvideDatabase opens the database and, when enabled, applies pending
// migrations before any repository uses it.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := database.NewMigrator(cfg.Path, logger).Up(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &DatabaseBundle{
		DB:        db,
		TxManager: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Event:      repository.NewEventRepository(sqlDB, logger),
		BudgetItem: repository.NewBudgetItemRepository(sqlDB, logger),
		Expense:    repository.NewExpenseRepository(sqlDB, logger),
		Workflow:   repository.NewWorkflowRepository(sqlDB, logger),
	}, nil
}

// ProvideDispatcher creates the in-process event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewKVLogger(logger))), nil
}

// ProvidePublisher connects the broker publisher and subscribes it to every
// domain event. A disabled broker yields a no-op publisher.
func ProvidePublisher(ctx context.Context, cfg *config.MessagingConfig, d dispatcher.Dispatcher, logger *zap.Logger) (port.EventPublisher, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Messaging disabled, domain events stay in process")
		return messaging.NopPublisher{}, nil
	}

	publisher, err := amqp.Dial(ctx, amqp.Config{
		URL:        cfg.URL,
		Exchange:   cfg.Exchange,
		MaxRetries: cfg.MaxRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect publisher: %w", err)
	}

	messaging.Register(d, publisher)
	return publisher, nil
}

// ProvideStorage creates the local storage exports are written to.
func ProvideStorage(cfg *config.ExportConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil || cfg.Dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	return storage.NewLocalFileStorage(cfg.Dir, logger), nil
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.Config == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger := utils.NewKVLogger(deps.Logger)
	repos := deps.Repos

	auth := service.NewAuthorizer(deps.Config.Policy(), deps.Config.Permissions.DemoMode)
	deletions := service.NewDeletionRegistry(deps.Config.Lifecycle.DeleteTicketTTL)
	summaries := service.NewSummaryService(repos.Event, repos.BudgetItem, repos.Expense, logger)

	return &ServiceBundle{
		Authorizer:  auth,
		Deletions:   deletions,
		Events:      service.NewEventService(repos.Event, auth, deps.Dispatcher, logger),
		BudgetItems: service.NewBudgetItemService(repos.Event, repos.BudgetItem, auth, deletions, deps.Dispatcher, logger),
		Expenses:    service.NewExpenseService(repos.Event, repos.Expense, repos.Workflow, deps.TxManager, auth, deps.Dispatcher, logger),
		Summaries:   summaries,
		Exports:     service.NewExportService(summaries, repos.Expense, report.NewWorkbookRenderer(deps.Logger), deps.Storage, logger),
	}, nil
}

// ProvideTokenIssuer creates the bearer token issuer. It returns nil when no
// secret is configured, which config validation only allows in demo mode.
func ProvideTokenIssuer(cfg *config.AuthConfig) (*httpapi.TokenIssuer, error) {
	if cfg == nil || cfg.JWTSecret == "" {
		return nil, nil
	}
	return httpapi.NewTokenIssuer(cfg.JWTSecret, cfg.Issuer, cfg.TokenTTL)
}

// ProvideHTTPServer creates the HTTP server over the service bundle.
func ProvideHTTPServer(cfg *config.ServerConfig, services *ServiceBundle, tokens *httpapi.TokenIssuer, health httpapi.HealthFunc, logger *zap.Logger) *httpapi.Server {
	return httpapi.NewServer(
		httpapi.ServerConfig{
			Host:         cfg.Host,
			Port:         cfg.Port,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		httpapi.Services{
			Events:      services.Events,
			BudgetItems: services.BudgetItems,
			Expenses:    services.Expenses,
			Summaries:   services.Summaries,
			Exports:     services.Exports,
		},
		services.Authorizer,
		tokens,
		health,
		utils.NewKVLogger(logger),
	)
}

// ProvideWorkers creates the worker manager with the ticket sweeper registered.
func ProvideWorkers(cfg *config.LifecycleConfig, deletions *service.DeletionRegistry, logger *zap.Logger) (*worker.WorkerManager, error) {
	if cfg == nil || deletions == nil {
		return nil, fmt.Errorf("lifecycle config and deletion registry are required")
	}

	manager := worker.NewWorkerManager(logger)
	manager.Register(worker.NewTicketSweepWorker(cfg.SweepInterval, deletions, logger))
	return manager, nil
}
