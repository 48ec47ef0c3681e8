package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"process_mate/internal/adapters"
	"process_mate/internal/bootstrap"
	analysisDelivery "process_mate/internal/delivery/analysis"
	gameDelivery "process_mate/internal/delivery/game"
	ownMiddleware "process_mate/internal/middleware"
	repo "process_mate/internal/repository"
	"process_mate/internal/rules"
	analysisuc "process_mate/internal/usecase/analysis"
	gameuc "process_mate/internal/usecase/game"
)

type mainDeliveryHandler struct {
	game     *gameDelivery.GameHandler
	analysis *analysisDelivery.AnalysisHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	port := cfg.ServerPort
	if port == "" {
		port = ":8080"
	}
	logger.Infof("Server is running on port %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Post("/api/game/load", h.game.HandleLoadGame)
	r.Post("/api/game/new", h.game.HandleNewGame)
	r.Get("/api/game/state", h.game.HandleGetState)
	r.Post("/api/game/move", h.game.HandleMove)
	r.Post("/api/game/navigate", h.game.HandleNavigate)
	r.Post("/api/game/variation/delete", h.game.HandleDeleteVariation)
	r.Post("/api/game/close", h.game.HandleCloseGame)
	r.Post("/api/game/explain", h.game.HandleExplainMove)
	r.Get("/ws/board", h.game.HandleBoardSession)

	r.Post("/api/analyze", h.analysis.HandleAnalyze)
	r.Post("/api/engine-analysis", h.analysis.HandleEngineAnalysis)
	r.Post("/api/validate-pgn", h.analysis.HandleValidatePgn)
	r.Get("/api/health", h.analysis.HandleHealth)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	gameStore := repo.NewGameRepository(cfg, log, databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)
	oracle := rules.NewOracle()

	var llm gameuc.LlmStore
	if cfg.LlmApiKey != "" {
		llmAdapter := adapters.NewLlmAdapter(cfg.LlmApiKey, cfg.LlmAgentKey)
		llm = repo.NewLlmRepository(llmAdapter, log)
	}

	gameUseCase := gameuc.NewGameUseCase(gameStore, oracle, llm, log)
	analysisUseCase := analysisuc.NewAnalysisUseCase(repo.NewAnalysisRepository(cfg, log), log)

	return &mainDeliveryHandler{
		game:     gameDelivery.NewGameHandler(log, gameUseCase, analysisUseCase),
		analysis: analysisDelivery.NewAnalysisHandler(log, analysisUseCase),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second) // give connections time to close
}
