package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/dispatcher"
	"github.com/pixelpine/studio-crm/internal/application/service"
	"github.com/pixelpine/studio-crm/internal/application/workflow"
	"github.com/pixelpine/studio-crm/internal/config"
	"github.com/pixelpine/studio-crm/internal/domain/event"
	"github.com/pixelpine/studio-crm/internal/infrastructure/email"
	"github.com/pixelpine/studio-crm/internal/infrastructure/export"
	"github.com/pixelpine/studio-crm/internal/infrastructure/persistence/repository"
	"github.com/pixelpine/studio-crm/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/pixelpine/studio-crm/internal/interfaces/http"
	"github.com/pixelpine/studio-crm/pkg/database"
	"github.com/pixelpine/studio-crm/pkg/utils"
)

// sugaredLogger adapts zap to the dispatcher's minimal logging interface
type sugaredLogger struct {
	s *zap.SugaredLogger
}

func (l sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func main() {
	// Local development credentials live in .env; absence is fine.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Studio CRM",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	// Repositories
	clientRepo := repository.NewClientRepository(db.DB, logger)
	projectRepo := repository.NewProjectRepository(db.DB, logger)
	milestoneRepo := repository.NewMilestoneRepository(db.DB, logger)
	invoiceRepo := repository.NewInvoiceRepository(db.DB, logger)
	paymentRepo := repository.NewPaymentRepository(db.DB, logger)
	fileRepo := repository.NewFileRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	commRepo := repository.NewCommunicationRepository(db.DB, logger)
	logRepo := repository.NewWorkflowLogRepository(db.DB, logger)
	inquiryRepo := repository.NewInquiryRepository(db.DB, logger)
	packageRepo := repository.NewPackageRepository(db.DB, logger)

	// External collaborators and services
	emailClient := email.NewClient(cfg.Email, logger)
	notificationService := service.NewNotificationService(clientRepo, notificationRepo, commRepo, logger)
	inquiryService := service.NewInquiryService(inquiryRepo, clientRepo, emailClient, cfg.Portal.LoginURL, logger)

	// Workflow engine
	engine := workflow.NewEngine(
		projectRepo, milestoneRepo, invoiceRepo, paymentRepo, fileRepo, logRepo,
		txManager, notificationService,
		workflow.Config{
			TaxRate:        cfg.Billing.TaxRate,
			InvoiceDueDays: cfg.Billing.InvoiceDueDays,
		},
		logger,
	)

	// Event dispatcher: every domain event routes to the engine
	events := dispatcher.New(dispatcher.WithLogger(sugaredLogger{s: logger.Sugar()}))
	for _, eventType := range []event.Type{
		event.TypeProjectStatusChanged,
		event.TypeMilestoneCompleted,
		event.TypeInvoiceCreated,
		event.TypePaymentReceived,
		event.TypeFileUploaded,
	} {
		events.SubscribeNamed(eventType, "workflow-engine", engine.HandleEvent)
	}
	defer events.Close()

	exporter := export.NewInvoiceExporter(invoiceRepo, clientRepo, logger)

	handlers := httpserver.NewHandlers(
		clientRepo, projectRepo, milestoneRepo, invoiceRepo, paymentRepo,
		fileRepo, notificationRepo, commRepo, packageRepo,
		inquiryService, engine, events, exporter, logger,
	)
	server := httpserver.NewServer(cfg.Server, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
