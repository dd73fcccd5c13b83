package bootstrap

import (
	"log"
	"time"

	"simbah-be/internal/config"
	"simbah-be/internal/constant"
	"simbah-be/internal/controller"
	"simbah-be/internal/pkg/logger"
	"simbah-be/internal/service"
	"simbah-be/pkg/audit"
	"simbah-be/pkg/datastore"
	"simbah-be/pkg/llm/mistral"
	pktNats "simbah-be/pkg/nats"
	"simbah-be/pkg/report"
	"simbah-be/pkg/schema"
)

type Container struct {
	QueryController     controller.IQueryController
	AssistantController controller.IAssistantController

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Datastore executor: built once here and shared by every request. A
	// direct DSN takes precedence; otherwise statements go through the
	// Supabase exec_sql RPC.
	var executor datastore.Executor
	if cfg.Database.Connection != "" {
		db, err := datastore.NewGormDB(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to Postgres: %v", err)
		}
		executor = datastore.NewGormExecutor(db)
		log.Printf("[INFO] Using datastore executor: DIRECT POSTGRES")
	} else {
		executor = datastore.NewSupabaseExecutor(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey)
		log.Printf("[INFO] Using datastore executor: SUPABASE RPC")
	}

	llmProvider := mistral.NewProvider(cfg.Keys.Mistral, cfg.Ai.Model)
	llmProvider.MaxRetries = cfg.Ai.MaxRetries
	llmProvider.InitialDelay = time.Duration(cfg.Ai.InitialDelayMs) * time.Millisecond

	introspector := schema.NewIntrospector(executor, cfg.Ai.SchemaFilePaths, sysLogger)
	renderer := report.NewRenderer(constant.ReportFooter)

	// Audit trail is best-effort: a missing NATS just logs a warning.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	auditor := audit.NewNatsPublisher(natsPub, sysLogger)

	queryService := service.NewQueryService(llmProvider, introspector, executor, renderer, auditor, sysLogger)
	assistantService := service.NewAssistantService(llmProvider, sysLogger)

	return &Container{
		QueryController:     controller.NewQueryController(queryService),
		AssistantController: controller.NewAssistantController(assistantService),
		Logger:              sysLogger,
	}
}
