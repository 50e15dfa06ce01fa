package routes

import (
	"net/http"
	"time"

	adminapi "shopnotes-app/internal/api/admin"
	authapi "shopnotes-app/internal/api/auth"
	"shopnotes-app/internal/api/billing"
	"shopnotes-app/internal/api/contacts"
	"shopnotes-app/internal/api/mentions"
	"shopnotes-app/internal/api/notes"
	shopapi "shopnotes-app/internal/api/shop"
	"shopnotes-app/internal/api/shopifywebhook"
	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	DB         *gorm.DB
	APIKey     string
	APISecret  string
	AdminToken string
	Now        func() time.Time

	Auth     *authapi.Handler
	Billing  *billing.Handler
	Webhooks *shopifywebhook.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		apperr.Respond(c, apperr.MethodNotAllowed())
	})
	r.NoRoute(func(c *gin.Context) {
		apperr.Respond(c, apperr.NotFound("Not found"))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Shopify-facing, authenticated by signature rather than session
	r.GET("/auth/install", d.Auth.Install)
	r.GET("/auth/callback", d.Auth.Callback)
	r.POST("/webhooks", d.Webhooks.Receive)
	r.GET("/api/billing/confirm", d.Billing.Confirm)

	api := r.Group("/api")
	api.Use(middleware.ShopifySession(d.APIKey, d.APISecret))

	// Cancel resolves the shop itself so an unknown shop stays a 404.
	api.POST("/billing/cancel", d.Billing.Cancel)

	shopH := &shopapi.Handler{DB: d.DB, Now: d.Now}
	notesH := &notes.Handler{DB: d.DB}
	contactsH := &contacts.Handler{DB: d.DB}
	mentionsH := &mentions.Handler{DB: d.DB}

	app := api.Group("/")
	app.Use(middleware.RequirePlanAligned(d.DB, d.Now), middleware.SanitizeInput("content"))

	app.GET("/me", shopH.GetMe)
	app.GET("/plan-usage", shopH.GetPlanUsage)
	app.POST("/billing/subscribe", d.Billing.Subscribe)

	app.GET("/notes", notesH.ListNotes)
	app.GET("/notes/:id", notesH.GetNote)
	app.POST("/notes", middleware.RequireQuota(d.DB, plans.ResourceNotes), notesH.CreateNote)
	app.PUT("/notes/:id", notesH.UpdateNote)
	app.DELETE("/notes/:id", notesH.DeleteNote)
	app.GET("/notes/:id/versions", notesH.ListVersions)
	app.POST("/notes/:id/versions/:version/restore", notesH.RestoreVersion)

	app.GET("/folders", notesH.ListFolders)
	app.POST("/folders", middleware.RequireQuota(d.DB, plans.ResourceFolders), notesH.CreateFolder)
	app.PUT("/folders/:id", notesH.UpdateFolder)
	app.DELETE("/folders/:id", notesH.DeleteFolder)

	app.GET("/contacts", contactsH.ListContacts)
	app.GET("/contacts/:id", contactsH.GetContact)
	app.POST("/contacts", middleware.RequireQuota(d.DB, plans.ResourceContacts), contactsH.CreateContact)
	app.PUT("/contacts/:id", contactsH.UpdateContact)
	app.DELETE("/contacts/:id", contactsH.DeleteContact)

	app.GET("/contact-folders", contactsH.ListFolders)
	app.POST("/contact-folders", middleware.RequireQuota(d.DB, plans.ResourceContactFolders), contactsH.CreateFolder)
	app.PUT("/contact-folders/:id", contactsH.UpdateFolder)
	app.DELETE("/contact-folders/:id", contactsH.DeleteFolder)

	app.GET("/mentions", mentionsH.List)
	app.POST("/mentions", middleware.RequireQuota(d.DB, plans.ResourceCustomMentions), mentionsH.Create)
	app.DELETE("/mentions/:id", mentionsH.Delete)

	adminH := &adminapi.Handler{DB: d.DB, Now: d.Now}
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdminToken(d.AdminToken))
	admin.GET("/shops", adminH.ListShops)
	admin.GET("/shops/:domain", adminH.GetShopDetails)
	admin.GET("/stats", adminH.GetStats)
	admin.POST("/shops/:domain/align", adminH.AlignShop)
}
