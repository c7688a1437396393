package main

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/proserv/engagement-api/internal/bootstrap"
	"github.com/proserv/engagement-api/internal/config"
	"github.com/proserv/engagement-api/internal/database"
	"github.com/proserv/engagement-api/internal/handlers"
	"github.com/proserv/engagement-api/internal/logger"
	"github.com/proserv/engagement-api/internal/middleware"
	"github.com/proserv/engagement-api/internal/repository"
	"github.com/proserv/engagement-api/internal/services"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			logger.Fatal().Err(err).Msg("failed to create indexes")
		}
	}

	if err := bootstrap.EnsureSeedData(database.GetDB()); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed defaults")
	}

	db := database.GetDB()
	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	cardRepo := repository.NewRateCardRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	orgContext := services.NewOrganizationContextService(orgRepo, userRepo)
	rateCardService := services.NewRateCardService(cardRepo, roleRepo, orgContext)
	roleService := services.NewRoleService(roleRepo, orgContext, rateCardService)
	projectService := services.NewProjectService(projectRepo, cardRepo, orgRepo, userRepo)

	roleHandler := handlers.NewRoleHandler(roleService)
	rateCardHandler := handlers.NewRateCardHandler(rateCardService)
	projectHandler := handlers.NewProjectHandler(projectService)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders,
		middleware.HeaderUserID,
		middleware.HeaderUserEmail,
		middleware.HeaderUserName,
		middleware.HeaderUserRoles,
	)
	r.Use(cors.New(corsConfig))

	r.GET("/health", handlers.Health)

	api := r.Group("/api/v1")
	api.Use(middleware.ResolveIdentity())
	{
		roles := api.Group("/roles")
		{
			roles.GET("", roleHandler.ListRoles)
			roles.POST("", roleHandler.CreateRole)
			roles.PATCH("/:id", roleHandler.UpdateRole)
			roles.POST("/:id/archive", roleHandler.ArchiveRole)
		}

		rateCards := api.Group("/rate-cards")
		{
			rateCards.GET("", rateCardHandler.ListRateCards)
			rateCards.POST("", rateCardHandler.CreateRateCard)
			rateCards.GET("/:id", rateCardHandler.GetRateCard)
			rateCards.PATCH("/:id", rateCardHandler.UpdateRateCard)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/workspace", projectHandler.GetProjectWorkspace)
			projects.PATCH("/:id", projectHandler.UpdateProject)
		}
	}

	logger.Info().Str("addr", cfg.ServerAddr).Msg("server starting")
	if err := r.Run(cfg.ServerAddr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
