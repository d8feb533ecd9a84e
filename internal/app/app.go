package app

import (
	"gatherly-backend/internal/auth"
	"gatherly-backend/internal/config"
	"gatherly-backend/internal/database"
	"gatherly-backend/internal/emails"
	"gatherly-backend/internal/events"
	"gatherly-backend/internal/gifts"
	"gatherly-backend/internal/guests"
	"gatherly-backend/internal/health"
	"gatherly-backend/internal/invitations"
	"gatherly-backend/internal/middleware"
	"gatherly-backend/internal/uploads"
	"gatherly-backend/internal/whatsapp"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration, returning the DB and Redis handles for startup checks.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	RegisterRoutes(app, db, rdb, cfg, sessionCfg)
	return app, db, rdb, nil
}

// RegisterRoutes wires all modules onto the app. Split from CreateApp so
// tests can mount routes over their own DB/Redis.
func RegisterRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config, sessionCfg middleware.SessionConfig) {
	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	if db == nil {
		return
	}

	emailClient := &emails.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
	waClient := &whatsapp.CloudClient{Token: cfg.WhatsAppToken, PhoneID: cfg.WhatsAppPhoneID}

	eventService := &events.Service{DB: db}
	guestService := &guests.Service{DB: db, Events: eventService}
	inviteService := &invitations.Service{
		DB:          db,
		Events:      eventService,
		Guests:      guestService,
		Email:       emailClient,
		WhatsApp:    waClient,
		RSVPBaseURL: cfg.RSVPBaseURL,
	}
	giftService := &gifts.Service{
		DB:          db,
		Events:      eventService,
		Guests:      guestService,
		Invitations: inviteService,
		Email:       emailClient,
	}

	// Auth
	authHandlers := &auth.Handlers{Service: &auth.Service{DB: db}, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	eventHandlers := &events.Handlers{Service: eventService}
	giftHandlers := &gifts.Handlers{Service: giftService}
	inviteHandlers := &invitations.Handlers{Service: inviteService}

	// Public guest-facing routes. These must be registered before the
	// RequireAuth group below is created, or its middleware would shadow
	// them; static segments (reservations) precede :gift_id routes.
	app.Get("/api/v1/events/:event_id/public", eventHandlers.GetEventPublic)
	app.Get("/api/v1/events/:event_id/gifts", giftHandlers.ListItems)
	app.Get("/api/v1/events/:event_id/gifts/reservations/:guest_id", giftHandlers.GuestReservations)
	app.Get("/api/v1/events/:event_id/gifts/:gift_id", giftHandlers.GetItem)
	app.Post("/api/v1/events/:event_id/gifts/:gift_id/assign", giftHandlers.Assign)
	app.Post("/api/v1/events/:event_id/gifts/:gift_id/unassign", giftHandlers.Unassign)
	app.Get("/api/v1/rsvp/:token", inviteHandlers.CheckToken)
	app.Post("/api/v1/rsvp/:token", inviteHandlers.Respond)

	// Events (organizer CRUD)
	eventGroup := app.Group("/api/v1/events", middleware.RequireAuth())
	eventGroup.Post("/", eventHandlers.CreateEvent)
	eventGroup.Get("/", eventHandlers.ListEvents)
	eventGroup.Get("/:event_id", eventHandlers.GetEvent)
	eventGroup.Put("/:event_id", eventHandlers.UpdateEvent)
	eventGroup.Delete("/:event_id", eventHandlers.DeleteEvent)

	// Guests (organizer only)
	guestHandlers := &guests.Handlers{Service: guestService}
	eventGroup.Post("/:event_id/guests", guestHandlers.CreateGuest)
	eventGroup.Get("/:event_id/guests", guestHandlers.ListGuests)
	eventGroup.Get("/:event_id/guests/:guest_id", guestHandlers.GetGuest)
	eventGroup.Put("/:event_id/guests/:guest_id", guestHandlers.UpdateGuest)
	eventGroup.Delete("/:event_id/guests/:guest_id", guestHandlers.DeleteGuest)

	// Invitations (organizer)
	eventGroup.Post("/:event_id/invitations", inviteHandlers.SendInvite)
	eventGroup.Get("/:event_id/invitations", inviteHandlers.ListInvitations)

	// Gifts (organizer only)
	eventGroup.Post("/:event_id/gifts", giftHandlers.CreateItem)
	eventGroup.Put("/:event_id/gifts/reorder", giftHandlers.Reorder)
	eventGroup.Put("/:event_id/gifts/:gift_id", giftHandlers.UpdateItem)
	eventGroup.Delete("/:event_id/gifts/:gift_id", giftHandlers.DeleteItem)

	// Uploads (organizer only)
	storageClient := &uploads.HTTPClient{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseSecretKey}
	uploadHandlers := &uploads.Handlers{Service: &uploads.Service{Client: storageClient, SupabaseURL: cfg.SupabaseURL}}
	uploadGroup := app.Group("/api/v1/uploads", middleware.RequireAuth())
	uploadGroup.Post("/event-cover", uploadHandlers.UploadEventCover)
	uploadGroup.Post("/gift-image", uploadHandlers.UploadGiftImage)
}
