package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/config"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/service"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Services struct {
	Resolver      *service.RoleResolver
	Auth          *service.AuthService
	Relationships *service.RelationshipService
	Records       *service.CareRecordService
	Notes         *service.NoteService
	Patients      *service.PatientService
	Audit         *service.AuditService
}

type RouterConfig struct {
	Environment string
	RateLimit   config.RateLimitConfig
	JWTManager  *auth.JWTManager
	Metrics     *metrics.Collector
	Log         *zap.Logger
}

func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(Recovery(cfg.Log))
	r.Use(RequestLogger(cfg.Log))
	r.Use(Metrics(cfg.Metrics))
	r.Use(RateLimit(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	authH := NewAuthHandler(svc.Auth, svc.Resolver, cfg.Log)
	adminH := NewAdminHandler(svc.Relationships, svc.Audit, cfg.Log)
	patientH := NewPatientHandler(svc.Patients, svc.Records, cfg.Log)
	noteH := NewNoteHandler(svc.Notes, cfg.Log)

	api := r.Group("/api/v1")

	authRPM := cfg.RateLimit.AuthRequestsPerMinute
	if authRPM <= 0 {
		authRPM = 10
	}
	public := api.Group("/auth")
	public.Use(RateLimit(rate.Every(time.Minute/time.Duration(authRPM)), authRPM))
	{
		public.POST("/register", authH.Register)
		public.POST("/login", authH.Login)
		public.POST("/refresh", authH.Refresh)
	}

	// Listing a caregiver's patients answers an empty list to anonymous
	// callers instead of 401, including callers with a stale token.
	api.GET("/caregivers/:id/patients", OptionalAuthenticate(cfg.JWTManager), patientH.CaregiverPatients)

	authed := api.Group("")
	authed.Use(Authenticate(cfg.JWTManager), RequireSession())
	{
		authed.POST("/auth/logout", authH.Logout)
		authed.GET("/me", authH.Me)
		authed.GET("/me/patients", patientH.MyPatients)

		authed.POST("/patients", patientH.Create)
		authed.PATCH("/patients/:id", patientH.Update)
		authed.GET("/patients/:id/record", patientH.CareRecord)
		authed.GET("/patients/:id/notes", noteH.List)
		authed.POST("/patients/:id/notes", noteH.Add)
		authed.DELETE("/notes/:id", noteH.Delete)
	}

	admin := authed.Group("/admin")
	{
		admin.GET("/caregivers", adminH.ListCaregivers)
		admin.GET("/users", adminH.ListGrantableUsers)
		admin.POST("/users/:id/caregiver-role", adminH.GrantCaregiverRole)
		admin.DELETE("/users/:id/caregiver-role", adminH.RevokeCaregiverRole)
		admin.GET("/patients", adminH.ListPatients)
		admin.PUT("/patients/:id/caregiver", adminH.ReassignPatient)
		admin.DELETE("/patients/:id", adminH.DeletePatient)
		admin.GET("/audit", adminH.ListAudit)
	}

	return r
}
