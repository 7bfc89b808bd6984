package app

import (
	"database/sql"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go-workforce/internal/auth"
	"go-workforce/internal/holiday"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"
	"go-workforce/internal/scheduler"
	"go-workforce/internal/team"
	"go-workforce/internal/timeoff"
	"go-workforce/internal/user"
)

// Registry wires repositories, services and handlers once and hands the
// entrypoints the pieces they need.
type Registry struct {
	DB       *gorm.DB
	SQLDB    *sql.DB
	Redis    *redis.Client
	Enforcer *casbin.Enforcer

	OutboxRepo    kafka.OutboxRepository
	SchedulerRepo scheduler.Repository

	HolidayService holiday.Service
	TimeOffService *timeoff.Service
	UserService    *user.Service
	TeamService    *team.Service
	AuthService    *auth.Service

	holidayHandler *holiday.Handler
	timeoffHandler *timeoff.Handler
	userHandler    *user.Handler
	teamHandler    *team.Handler
	authHandler    *auth.Handler
}

func BuildRegistry(db *gorm.DB, rdb *redis.Client) (*Registry, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return nil, err
	}

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	schedulerRepo := scheduler.NewRepository(db)
	userRepo := user.NewRepository(db)
	teamRepo := team.NewRepository(db)

	holidayService := holiday.NewService(holiday.NewRepository(db), rdb)

	timeoffService := timeoff.NewService(
		sqlDB,
		timeoff.NewRequestRepository(db),
		timeoff.NewApprovalRepository(db),
		user.NewLedger(userRepo),
		team.NewDirectory(teamRepo),
		holidayService,
		schedulerRepo,
		outboxRepo,
	)

	teamService := team.NewService(teamRepo, userRepo, timeoffService)
	userService := user.NewService(userRepo, teamService, timeoffService)
	authService := auth.NewService(userRepo)

	return &Registry{
		DB:       db,
		SQLDB:    sqlDB,
		Redis:    rdb,
		Enforcer: enforcer,

		OutboxRepo:    outboxRepo,
		SchedulerRepo: schedulerRepo,

		HolidayService: holidayService,
		TimeOffService: timeoffService,
		UserService:    userService,
		TeamService:    teamService,
		AuthService:    authService,

		holidayHandler: holiday.NewHandler(holidayService),
		timeoffHandler: timeoff.NewHandler(timeoffService),
		userHandler:    user.NewHandler(userService),
		teamHandler:    team.NewHandler(teamService),
		authHandler:    auth.NewHandler(authService),
	}, nil
}

// Router assembles the gin engine with the shared middleware chain and
// every domain's routes.
func (r *Registry) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(20), 40)))

	api := router.Group("/api/v1")

	auth.RegisterRoutes(api, r.authHandler)
	user.RegisterRoutes(api, r.userHandler, r.Enforcer)
	team.RegisterRoutes(api, r.teamHandler, r.Enforcer)
	holiday.RegisterRoutes(api, r.holidayHandler, r.Enforcer)
	timeoff.RegisterRoutes(api, r.timeoffHandler, r.Enforcer)

	return router
}
