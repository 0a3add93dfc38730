package main

import (
	"context"
	"crmmail/compose"
	"crmmail/config"
	"crmmail/handlers/api"
	"crmmail/inbox"
	"crmmail/mailapi"
	"crmmail/middleware"
	"crmmail/storage"
	"crmmail/utils"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/websocket/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

var store *session.Store

func init() {
	utils.Log.Info("Initializing crmmail...")

	store = session.New(session.Config{
		Expiration:     24 * time.Hour,
		CookieSecure:   false, // Set to true in production with HTTPS
		CookieHTTPOnly: true,
	})
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Fatal("Failed to load config: %v", err)
	}

	// Initialize i18n system
	if err := utils.InitI18n(); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	// Open the local database for the metadata cache
	db, err := storage.InitDB(cfg.Cache.Folder)
	if err != nil {
		utils.Log.Fatal("Failed to open database: %v", err)
	}
	defer db.Close()

	// Provider client and domain services
	client := mailapi.NewClient(cfg.Provider, utils.Log)
	limits := compose.LimitsFromConfig(cfg.Compose)

	metaStore := inbox.NewMetadataStore(client, storage.NewMetadataStorage(db), utils.Log)
	navigator := inbox.NewNavigator(cfg.SentSubfolders)
	mailbox := inbox.New(client, metaStore, navigator, utils.NewMemoryCache(), inbox.Options{
		FetchLimit: cfg.Refresh.FetchLimit,
		CacheTTL:   cfg.Cache.TTL(),
	}, utils.Log)

	sender := compose.NewSender(client, limits, utils.Log)
	drafts := storage.NewDraftStorage(cfg.Cache.Folder)

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Compose.MaxTotalSize) + (1 << 20),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
				utils.Log.Error("Application error: %v", appErr)
			} else if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Add global middleware
	app.Use(recover.New())  // Recover from panics
	app.Use(logger.New())   // Request logging
	app.Use(compress.New()) // Response compression
	app.Use(helmet.New(helmet.Config{ // Security headers
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}))
	app.Use(middleware.LocaleMiddleware())

	// Rate limiting (100 requests per minute per IP)
	app.Use(middleware.RateLimiter(100, time.Minute))

	// Initialize handlers
	authHandler := api.NewAuthHandler(store, cfg)
	inboxHandler := api.NewInboxHandler(store, mailbox)
	metadataHandler := api.NewMetadataHandler(store, metaStore)
	sendHandler := api.NewSendHandler(store, sender, limits)
	composeHandler := api.NewComposeHandler(store, mailbox, drafts, limits)
	contactsHandler := api.NewContactsHandler(store, client)
	aiHandler := api.NewAIHandler(store, client)
	notificationHandler := api.NewNotificationHandler(store)

	// Public routes
	app.Post("/login", authHandler.HandleLogin)
	app.Get("/logout", authHandler.HandleLogout)

	// Protected routes group
	protected := app.Group("", api.SessionMiddleware(store))

	apiRoutes := protected.Group("/api")
	{
		// Inbox routes
		apiRoutes.Get("/inbox", inboxHandler.HandleList)
		apiRoutes.Post("/inbox/folder/:name", inboxHandler.HandleChangeFolder)
		apiRoutes.Post("/inbox/subfolder/:id", inboxHandler.HandleChangeSubfolder)
		apiRoutes.Post("/inbox/filter", inboxHandler.HandleSetFilter)

		// Email routes
		apiRoutes.Get("/email/:id", inboxHandler.HandleOpen)
		apiRoutes.Post("/email/:id/archive", inboxHandler.HandleArchive)
		apiRoutes.Delete("/email/:id", inboxHandler.HandleDelete)
		apiRoutes.Post("/email/:id/read", metadataHandler.HandleToggleRead)
		apiRoutes.Post("/email/:id/favorite", metadataHandler.HandleToggleFavorite)
		apiRoutes.Post("/email/:id/tags", metadataHandler.HandleAddTag)
		apiRoutes.Delete("/email/:id/tags/:tag", metadataHandler.HandleRemoveTag)

		// Selection and bulk routes
		apiRoutes.Post("/selection/:id", inboxHandler.HandleToggleSelect)
		apiRoutes.Post("/selection", inboxHandler.HandleSelectAll)
		apiRoutes.Delete("/selection", inboxHandler.HandleDeselectAll)
		apiRoutes.Post("/bulk/archive", inboxHandler.HandleBulkArchive)
		apiRoutes.Post("/bulk/delete", inboxHandler.HandleBulkDelete)
		apiRoutes.Post("/bulk/read", inboxHandler.HandleBulkMarkRead)

		// Composition routes
		apiRoutes.Get("/compose/prefill", composeHandler.HandlePrefill)
		apiRoutes.Get("/compose/templates", composeHandler.HandleTemplates)
		apiRoutes.Post("/compose/templates/apply", composeHandler.HandleApplyTemplate)
		apiRoutes.Get("/drafts", composeHandler.HandleListDrafts)
		apiRoutes.Post("/drafts", composeHandler.HandleSaveDraft)
		apiRoutes.Get("/drafts/:id", composeHandler.HandleGetDraft)
		apiRoutes.Delete("/drafts/:id", composeHandler.HandleDeleteDraft)

		// Send routes
		apiRoutes.Post("/send", sendHandler.HandleSend)
		apiRoutes.Get("/send/state", sendHandler.HandleSendState)

		// Contact autocomplete and AI drafting
		apiRoutes.Get("/contacts/search", contactsHandler.HandleSearch)
		apiRoutes.Post("/ai/generate", aiHandler.HandleGenerate)

		// Notifications
		apiRoutes.Get("/notifications/sse", notificationHandler.HandleSSE)
	}

	// WebSocket notifications
	protected.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	protected.Get("/ws/notifications", websocket.New(notificationHandler.HandleWebSocket))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		localizer, _ := c.Locals("localizer").(*i18n.Localizer)
		return c.Status(404).JSON(fiber.Map{
			"error": utils.T(localizer, "error_404"),
		})
	})

	// Start the background inbox poller
	refresher := inbox.NewRefresher(client, notificationHandler, cfg.Refresh.Interval(), cfg.Refresh.FetchLimit, utils.Log)
	if err := refresher.Start(context.Background()); err != nil {
		utils.Log.Error("Failed to start inbox poller: %v", err)
	}
	defer refresher.Stop()

	// Start server
	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}
