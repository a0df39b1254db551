package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"effectif_back_end/internal/handlers"
	"effectif_back_end/internal/handlers/account"
	"effectif_back_end/internal/handlers/employee"
	"effectif_back_end/internal/identity"
	"effectif_back_end/internal/middleware"
	"effectif_back_end/internal/reconcile"
	"effectif_back_end/internal/store"
)

// RegisterRoutes câble les adaptateurs et déclare toutes les routes
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// --- Câblage des adaptateurs ---
	client := identity.NewGoTrueClientFromEnv()
	strategy := reconcile.StrategyFromEnv()
	engine := reconcile.NewEngine(client, strategy, store.NewScyllaFlagStore())

	handlers.Engine = engine
	handlers.IdentityClient = client
	account.Engine = engine
	employee.Store = store.NewScyllaEmployeeStore()
	employee.Objects = store.NewMinIOObjectStore()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Auth de la console
	api.POST("/auth/login", middleware.LoginRateLimit(), handlers.Login)

	// Tout le reste est réservé aux administrateurs authentifiés
	admin := api.Group("", middleware.AuthRequired(), middleware.RequireAdmin, middleware.APIRateLimit())

	// Comptes (fournisseur d'identité)
	accounts := admin.Group("/accounts")
	{
		accounts.GET("", account.GetAccounts)
		accounts.POST("", middleware.CreateAccountRateLimit(), middleware.NoResubmit("account_create"), account.CreateAccount)
		accounts.PUT("/:id", middleware.NoResubmit("account_edit"), account.UpdateAccount)
		accounts.DELETE("/:id", account.DeleteAccount)
	}

	// Employés
	employees := admin.Group("/employees")
	{
		employees.GET("", employee.GetEmployees)
		employees.GET("/search", employee.SearchEmployees)
		employees.POST("", middleware.NoResubmit("employee_create"), employee.CreateEmployee)
		employees.PUT("/:emp_id", employee.UpdateEmployee)
		employees.DELETE("/:emp_id", employee.DeleteEmployee)

		employees.POST("/:emp_id/picture", employee.UploadProfilePicture)
		employees.GET("/:emp_id/documents", employee.GetDocuments)
		employees.GET("/:emp_id/documents/:doc_id/url", employee.GetDocumentSignedURL)
		employees.DELETE("/:emp_id/documents/:doc_id", employee.DeleteDocument)

		employees.GET("/:emp_id/badge", employee.GetBadge)
		employees.GET("/:emp_id/profile.pdf", employee.ExportProfilePDF)
	}
}
