package routes

import (
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"

	agendaControllers "github.com/Adagu69/calendario-medico-sub000/internal/agenda/controllers"
	agendaServices "github.com/Adagu69/calendario-medico-sub000/internal/agenda/services"
	auditControllers "github.com/Adagu69/calendario-medico-sub000/internal/audit/controllers"
	auditServices "github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	authControllers "github.com/Adagu69/calendario-medico-sub000/internal/auth/controllers"
	authServices "github.com/Adagu69/calendario-medico-sub000/internal/auth/services"
	catalogoControllers "github.com/Adagu69/calendario-medico-sub000/internal/catalogo/controllers"
	catalogoServices "github.com/Adagu69/calendario-medico-sub000/internal/catalogo/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/common/middlewares"
	personalControllers "github.com/Adagu69/calendario-medico-sub000/internal/personal/controllers"
	personalServices "github.com/Adagu69/calendario-medico-sub000/internal/personal/services"
	reportControllers "github.com/Adagu69/calendario-medico-sub000/internal/reportes/controllers"
	reportServices "github.com/Adagu69/calendario-medico-sub000/internal/reportes/services"
	"github.com/Adagu69/calendario-medico-sub000/pkg/refcache"
	"github.com/Adagu69/calendario-medico-sub000/ws"
)

// Init inicializa todas las rutas usando el framework Echo.
func Init(e *echo.Echo, db *sql.DB) {
	// Servicios
	auditService := auditServices.NewAuditService(db)
	authService := authServices.NewAuthService(db)
	sectionService := catalogoServices.NewSectionService(db)
	specialtyService := catalogoServices.NewSpecialtyService(db)
	userService := personalServices.NewUserService(db)
	doctorService := personalServices.NewDoctorService(db)
	scheduleService := agendaServices.NewScheduleService(db)
	appointmentService := agendaServices.NewAppointmentService(db)
	reportService := reportServices.NewReportService(db)

	// Cache compartida de datos de referencia (secciones, especialidades)
	cache := refcache.New(5 * time.Minute)

	// Controllers
	authController := authControllers.NewAuthController(authService)
	sectionController := catalogoControllers.NewSectionController(sectionService, cache, auditService)
	specialtyController := catalogoControllers.NewSpecialtyController(specialtyService, cache, auditService)
	userController := personalControllers.NewUserController(userService, auditService)
	doctorController := personalControllers.NewDoctorController(doctorService, auditService)
	scheduleController := agendaControllers.NewScheduleController(scheduleService, auditService, ws.HubInstance)
	appointmentController := agendaControllers.NewAppointmentController(appointmentService, auditService)
	reportController := reportControllers.NewReportController(reportService)
	auditController := auditControllers.NewAuditController(auditService)

	jwt := middlewares.JWTMiddleware()
	adminOnly := middlewares.RequireRole(middlewares.RoleAdmin)
	editors := middlewares.RequireRole(middlewares.RoleAdmin, middlewares.RoleSectionHead)

	// Grupo API principal
	api := e.Group("/api")

	// **Grupo Auth**
	auth := api.Group("/auth")
	auth.POST("/login", authController.Login) // Sin JWT

	// **Grupo Secciones**
	sections := api.Group("/sections", jwt)
	sections.GET("", sectionController.ListHandler)
	sections.GET("/:id", sectionController.GetHandler)
	sections.POST("", sectionController.CreateHandler, adminOnly)
	sections.PUT("/:id", sectionController.UpdateHandler, adminOnly)
	sections.DELETE("/:id", sectionController.DeleteHandler, adminOnly)

	// **Grupo Especialidades**
	specialties := api.Group("/specialties", jwt)
	specialties.GET("", specialtyController.ListHandler)
	specialties.GET("/:id", specialtyController.GetHandler)
	specialties.POST("", specialtyController.CreateHandler, adminOnly)
	specialties.PUT("/:id", specialtyController.UpdateHandler, adminOnly)
	specialties.DELETE("/:id", specialtyController.DeleteHandler, adminOnly)

	// **Grupo Usuarios** (solo admin)
	users := api.Group("/users", jwt, adminOnly)
	users.GET("", userController.ListHandler)
	users.GET("/:id", userController.GetHandler)
	users.POST("", userController.CreateHandler)
	users.PUT("/:id", userController.UpdateHandler)
	users.DELETE("/:id", userController.DeleteHandler)

	// **Grupo Doctores**
	doctors := api.Group("/doctors", jwt)
	doctors.GET("", doctorController.ListHandler)
	doctors.GET("/:id", doctorController.GetHandler)
	doctors.POST("", doctorController.CreateHandler, editors)
	doctors.PUT("/:id", doctorController.UpdateHandler, editors)
	doctors.DELETE("/:id", doctorController.DeleteHandler, editors)

	// **Grupo Agenda** (meses, turnos y días)
	schedules := api.Group("/schedules", jwt)
	schedules.GET("", scheduleController.ListHandler)
	schedules.GET("/:id", scheduleController.GetHandler)
	schedules.POST("", scheduleController.CreateHandler, editors)
	schedules.PUT("/:id/publish", scheduleController.PublishHandler, editors)
	schedules.DELETE("/:id", scheduleController.DeleteHandler, editors)
	schedules.POST("/:id/slots", scheduleController.CreateSlotHandler, editors)
	schedules.PUT("/:id/slots/:slotId", scheduleController.UpdateSlotHandler, editors)
	schedules.DELETE("/:id/slots/:slotId", scheduleController.DeleteSlotHandler, editors)
	schedules.PUT("/:id/days", scheduleController.SaveDaysHandler, editors)
	schedules.PATCH("/:id/days/draft", scheduleController.DraftEditHandler, editors)
	schedules.POST("/:id/days/draft/flush", scheduleController.DraftFlushHandler, editors)

	// **Grupo Citas**
	appointments := api.Group("/appointments", jwt)
	appointments.GET("", appointmentController.ListHandler)
	appointments.GET("/:id", appointmentController.GetHandler)
	appointments.POST("", appointmentController.CreateHandler)
	appointments.PUT("/:id", appointmentController.UpdateHandler)
	appointments.DELETE("/:id", appointmentController.DeleteHandler)

	// **Grupo Reportes**
	reports := api.Group("/reports", jwt)
	reports.GET("/monthly-schedule", reportController.MonthlyScheduleHandler)

	// **Grupo Auditoría** (solo admin)
	audit := api.Group("/audit", jwt, adminOnly)
	audit.GET("", auditController.ListHandler)

	// Cache de referencia
	api.POST("/cache/invalidate", specialtyController.InvalidateCacheHandler, jwt, adminOnly)

	// WebSocket de agenda: notifica publicaciones y guardados a los clientes
	e.GET("/ws/schedules", ws.ServeWS(ws.HubInstance), jwt)
}
