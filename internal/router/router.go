// Package router assembles the HTTP API on top of a Ledger.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pennywise/internal/handlers"
	"pennywise/internal/middleware"
	"pennywise/internal/services"
)

// Options configures the router.
type Options struct {
	// AdminKey, when set, must be sent as X-API-Key to restore or reset.
	AdminKey string
}

// New builds the gin engine with every API route registered.
func New(ledger *services.Ledger, opts Options) *gin.Engine {
	categoryHandler := handlers.NewCategoryHandler(ledger.Categories)
	accountHandler := handlers.NewAccountHandler(ledger.Accounts)
	transactionHandler := handlers.NewTransactionHandler(ledger.Transactions)
	budgetHandler := handlers.NewBudgetHandler(ledger.Budgets)
	cardHandler := handlers.NewCardHandler(ledger.Cards)
	analysisHandler := handlers.NewAnalysisHandler(ledger.Analysis)
	backupHandler := handlers.NewBackupHandler(ledger.Backup)
	eventsHandler := handlers.NewEventsHandler(ledger.Changes, ledger.Broker)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())
	router.Use(middleware.Location(ledger.Location))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.POST("/seed", categoryHandler.SeedCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.POST("/recompute", accountHandler.RecomputeBalances)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := v1.Group("/budgets")
	budgets.PUT("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/progress", budgetHandler.GetBudgetProgress)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	cards := v1.Group("/cards")
	cards.POST("", cardHandler.CreateCard)
	cards.GET("", cardHandler.GetCards)
	cards.GET("/:id", cardHandler.GetCardByID)
	cards.PUT("/:id", cardHandler.UpdateCard)
	cards.DELETE("/:id", cardHandler.DeleteCard)

	analysis := v1.Group("/analysis")
	analysis.GET("/summary", analysisHandler.GetSummary)
	analysis.GET("/breakdown", analysisHandler.GetBreakdown)
	analysis.GET("/daily", analysisHandler.GetDailyFlow)
	analysis.GET("/trends", analysisHandler.GetTrends)
	analysis.GET("/overview", analysisHandler.GetOverview)

	backup := v1.Group("/backup")
	backup.GET("", backupHandler.ExportJSON)
	backup.GET("/export.csv", backupHandler.ExportCSV)
	backup.POST("", middleware.AdminKey(opts.AdminKey), backupHandler.ImportJSON)
	backup.POST("/reset", middleware.AdminKey(opts.AdminKey), backupHandler.Reset)

	v1.GET("/changes", eventsHandler.GetChanges)
	v1.GET("/events", eventsHandler.Stream)

	return router
}
