package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/annapurna/internal/config"
	"github.com/example/annapurna/internal/handlers"
	"github.com/example/annapurna/internal/middleware"
	"github.com/example/annapurna/internal/recovery"
	"github.com/example/annapurna/internal/services"
	"github.com/example/annapurna/internal/store"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	mailer := services.NewMailerService(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	users := store.NewUserStore(db)
	carts := store.NewCartStore(db)
	orders := store.NewOrderStore(db)

	resetController := recovery.NewController(users, mailer, cfg.OTPExpires)

	authHandler := handlers.NewAuthHandler(users, cfg)
	resetHandler := handlers.NewPasswordResetHandler(resetController)
	cartHandler := handlers.NewCartHandler(carts)
	orderHandler := handlers.NewOrderHandler(orders, carts, telegram)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/verify-otp-reset", resetHandler.VerifyOTPAndReset)

	// Cart routes (keyed by user id; clients push full replacements)
	api.Get("/cart/:userId", cartHandler.GetCart)
	api.Post("/cart/:userId", cartHandler.ReplaceCart)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/orders", orderHandler.PlaceOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
}
