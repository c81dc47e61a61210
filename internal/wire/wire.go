// Package wire provides dependency injection for the ladder application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"os"
	"sync"

	cliadapter "github.com/example/ladder/internal/adapters/cli"
	"github.com/example/ladder/internal/adapters/sqlite"
	"github.com/example/ladder/internal/app"
	"github.com/example/ladder/internal/config"
	ladderctx "github.com/example/ladder/internal/context"
	"github.com/example/ladder/internal/db"
	"github.com/example/ladder/internal/importer"
	"github.com/example/ladder/internal/logging"
	"github.com/example/ladder/internal/ports/primary"
)

var (
	cfg      *config.Config
	database *sql.DB

	requirementService  primary.RequirementService
	employeeService     primary.EmployeeService
	masteryService      primary.MasteryService
	promotionService    primary.PromotionService
	evaluationService   primary.EvaluationService
	notificationService primary.NotificationService
	logService          primary.LogService
	importerInstance    *importer.Importer

	once sync.Once
)

// SetConfig fixes the configuration used to build services. Must be called
// before the first service is requested; later calls have no effect.
func SetConfig(c *config.Config) {
	if cfg == nil {
		cfg = c
	}
}

// Config returns the configuration services were (or will be) built with.
func Config() *config.Config {
	if cfg == nil {
		loaded, err := ladderctx.LoadConfig()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	return cfg
}

// Database returns the shared database handle.
func Database() *sql.DB {
	once.Do(initServices)
	return database
}

// RequirementService returns the singleton RequirementService instance.
func RequirementService() primary.RequirementService {
	once.Do(initServices)
	return requirementService
}

// EmployeeService returns the singleton EmployeeService instance.
func EmployeeService() primary.EmployeeService {
	once.Do(initServices)
	return employeeService
}

// MasteryService returns the singleton MasteryService instance.
func MasteryService() primary.MasteryService {
	once.Do(initServices)
	return masteryService
}

// PromotionService returns the singleton PromotionService instance.
func PromotionService() primary.PromotionService {
	once.Do(initServices)
	return promotionService
}

// EvaluationService returns the singleton EvaluationService instance.
func EvaluationService() primary.EvaluationService {
	once.Do(initServices)
	return evaluationService
}

// NotificationService returns the singleton NotificationService instance.
func NotificationService() primary.NotificationService {
	once.Do(initServices)
	return notificationService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

// Importer returns the singleton Importer instance.
func Importer() *importer.Importer {
	once.Do(initServices)
	return importerInstance
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	c := Config()
	logging.SetDefault(logging.New(os.Stderr, logging.ParseLevel(c.LogLevel)))
	logger := logging.Default()

	var err error
	database, err = db.Open(c.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	logger.With("wire").Debug("using database %s", c.DBPath)

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	tx := sqlite.NewTransactor(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(auditRepo)
	requirementRepo := sqlite.NewRequirementRepository(database, logWriter)
	employeeRepo := sqlite.NewEmployeeRepository(database)
	promotionRepo := sqlite.NewPromotionRepository(database, logWriter)
	progressRepo := sqlite.NewProgressRepository(database)
	notificationRepo := sqlite.NewNotificationRepository(database)
	certificateRepo := sqlite.NewCertificateRepository(database)

	// Create effect executor with injected repositories
	executor := app.NewEffectExecutor(notificationRepo, certificateRepo, employeeRepo, logger)

	// Create services (primary ports implementation)
	mastery := app.NewMasteryService(employeeRepo, requirementRepo, promotionRepo, progressRepo)
	promotions := app.NewPromotionService(
		tx, promotionRepo, progressRepo, requirementRepo, employeeRepo, certificateRepo,
		mastery, executor,
		app.PromotionOptions{AdvanceLevelOnComplete: c.AdvanceLevel(), Logger: logger},
	)
	requirements := app.NewRequirementService(requirementRepo)
	employees := app.NewEmployeeService(employeeRepo)

	requirementService = requirements
	employeeService = employees
	masteryService = mastery
	promotionService = promotions
	evaluationService = app.NewEvaluationService(tx, promotionRepo, progressRepo, promotions)
	notificationService = app.NewNotificationService(notificationRepo)
	logService = app.NewLogService(auditRepo)
	importerInstance = importer.New(tx, requirements, employees)
}

// PromotionAdapter returns a new PromotionAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func PromotionAdapter() *cliadapter.PromotionAdapter {
	return PromotionAdapterWithOutput(os.Stdout)
}

// PromotionAdapterWithOutput returns a new PromotionAdapter writing to the given output.
func PromotionAdapterWithOutput(out io.Writer) *cliadapter.PromotionAdapter {
	once.Do(initServices)
	return cliadapter.NewPromotionAdapter(promotionService, evaluationService, out)
}

// MatrixAdapter returns a new MatrixAdapter writing to stdout.
func MatrixAdapter() *cliadapter.MatrixAdapter {
	return MatrixAdapterWithOutput(os.Stdout)
}

// MatrixAdapterWithOutput returns a new MatrixAdapter writing to the given output.
func MatrixAdapterWithOutput(out io.Writer) *cliadapter.MatrixAdapter {
	once.Do(initServices)
	return cliadapter.NewMatrixAdapter(requirementService, masteryService, out)
}
