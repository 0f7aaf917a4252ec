package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/uiticket/ticket-system/docs"
	"github.com/uiticket/ticket-system/internal/api/handler"
	"github.com/uiticket/ticket-system/internal/api/middleware"
	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
	"github.com/uiticket/ticket-system/internal/infrastructure/http/handlers"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Log      zerolog.Logger
	Sessions middleware.SessionAuthenticator
	Auth     ports.AuthService
	Tickets  ports.TicketService
	Avatars  ports.AvatarStorage
	// AvatarDir is served under AvatarPrefix when avatars live on local disk.
	AvatarDir    string
	AvatarPrefix string
	Checks       []handlers.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("ticket_system"))
	e.Use(middleware.Session(d.Sessions))

	authHandler := handler.NewAuthHandler(d.Auth)
	profileHandler := handler.NewProfileHandler(d.Auth, d.Avatars)
	ticketHandler := handler.NewTicketHandler(d.Tickets)
	commentHandler := handler.NewCommentHandler(d.Tickets)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/email-exists", authHandler.EmailExists)

	// --- Profile ---
	me := e.Group("/me", middleware.Auth())
	me.GET("", authHandler.Me)
	me.PUT("/profile-picture", profileHandler.UploadPicture)

	// --- Tickets ---
	staff := middleware.RBAC(domain.RoleAdmin, domain.RoleSupport)
	v1 := e.Group("/v1", middleware.Auth())
	v1.GET("/tickets", ticketHandler.List)
	v1.POST("/tickets", ticketHandler.Create)
	v1.GET("/tickets/:id", ticketHandler.Get)
	v1.PUT("/tickets/:id", ticketHandler.Update)
	v1.DELETE("/tickets/:id", ticketHandler.Delete, staff)
	v1.PATCH("/tickets/:id/status", ticketHandler.ChangeStatus, staff)
	v1.PATCH("/tickets/:id/assignee", ticketHandler.Assign, staff)
	v1.GET("/tickets/:id/comments", commentHandler.List)
	v1.POST("/tickets/:id/comments", commentHandler.Add)

	if d.AvatarDir != "" && d.AvatarPrefix != "" {
		e.Static(d.AvatarPrefix, d.AvatarDir)
	}

	// --- Health checks and tooling (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Checks...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
