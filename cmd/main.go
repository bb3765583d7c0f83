package main

import (
  "fmt"
  "os"

  rediscache "github.com/hearthplan/homeplan-backend/internal/clients/redis"
  "github.com/hearthplan/homeplan-backend/internal/db"
  "github.com/hearthplan/homeplan-backend/internal/handlers"
  "github.com/hearthplan/homeplan-backend/internal/logger"
  "github.com/hearthplan/homeplan-backend/internal/middleware"
  "github.com/hearthplan/homeplan-backend/internal/repos"
  "github.com/hearthplan/homeplan-backend/internal/server"
  "github.com/hearthplan/homeplan-backend/internal/services"
  "github.com/hearthplan/homeplan-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  maxOccurrences := utils.GetEnvAsInt("RECURRENCE_MAX_OCCURRENCES", 366, log)
  lookaheadDays := utils.GetEnvAsInt("CATCHUP_LOOKAHEAD_DAYS", 14, log)
  maxPerDay := utils.GetEnvAsInt("CATCHUP_MAX_PER_DAY", 8, log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  childRepo := repos.NewChildRepo(thePG, log)
  topicRepo := repos.NewTopicRepo(thePG, log)
  sessionRepo := repos.NewStudySessionRepo(thePG, log)
  timeBlockRepo := repos.NewTimeBlockRepo(thePG, log)
  importedEventRepo := repos.NewImportedEventRepo(thePG, log)
  catchUpEntryRepo := repos.NewCatchUpEntryRepo(thePG, log)

  // Redis occurrence cache (optional)
  occurrenceCache, err := rediscache.NewOccurrenceCache(log)
  if err != nil {
    log.Warn("Occurrence cache unavailable, recomputing per request", "error", err)
    occurrenceCache = nil
  }

  // Services
  log.Info("Setting up Services from main...")
  commitmentIndex := services.NewCommitmentIndex(thePG, log, timeBlockRepo, importedEventRepo, occurrenceCache, maxOccurrences)
  conflictDetector := services.NewConflictDetector(log, commitmentIndex, sessionRepo)
  capacityService := services.NewCapacityService(log, commitmentIndex, sessionRepo)
  completionNotifier := services.NewLogCompletionNotifier(log)
  sessionService := services.NewSessionService(thePG, log, childRepo, topicRepo, sessionRepo, catchUpEntryRepo, conflictDetector, capacityService, completionNotifier)
  catchUpPlanner := services.NewCatchUpPlanner(thePG, log, services.CatchUpConfig{
    LookaheadDays:     lookaheadDays,
    MaxSessionsPerDay: maxPerDay,
  }, childRepo, sessionRepo, catchUpEntryRepo, commitmentIndex, capacityService, sessionService)
  advisorService := services.NewAdvisorService(log, services.AdvisorConfig{}, childRepo, topicRepo, sessionRepo, capacityService)
  childService := services.NewChildService(log, childRepo, commitmentIndex)
  topicService := services.NewTopicService(log, topicRepo)
  calendarService := services.NewCalendarService(log, childRepo, timeBlockRepo, importedEventRepo, commitmentIndex, maxOccurrences)

  // Handlers
  log.Info("Setting up handlers from main...")
  childHandler := handlers.NewChildHandler(childService)
  topicHandler := handlers.NewTopicHandler(topicService)
  sessionHandler := handlers.NewSessionHandler(sessionService)
  calendarHandler := handlers.NewCalendarHandler(calendarService)
  capacityHandler := handlers.NewCapacityHandler(capacityService, advisorService, childRepo)
  catchUpHandler := handlers.NewCatchUpHandler(catchUpPlanner)

  // Middleware
  log.Info("Setting up middleware from main...")
  requestLog := middleware.NewRequestLogMiddleware(log)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    RequestLog:      requestLog,
    ChildHandler:    childHandler,
    TopicHandler:    topicHandler,
    SessionHandler:  sessionHandler,
    CalendarHandler: calendarHandler,
    CapacityHandler: capacityHandler,
    CatchUpHandler:  catchUpHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
