package main

import (
	"log"
	"os"

	"dynadoc-api/config"
	"dynadoc-api/internal/audit"
	"dynadoc-api/internal/auth"
	"dynadoc-api/internal/doctype"
	"dynadoc-api/internal/document"
	"dynadoc-api/internal/numbering"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	dsn := "host=" + cfg.DBHost +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" port=" + cfg.DBPort +
		" sslmode=disable"

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	userService := &auth.AuthService{DB: db}
	auth.RegisterRoutes(r, userService)

	auditService := &audit.AuditService{DB: db}
	audit.RegisterRoutes(r, auditService)

	docTypeService := &doctype.DocTypeService{DB: db}
	doctype.RegisterRoutes(r, docTypeService)

	documentService := &document.DocumentService{
		DB:      db,
		Types:   docTypeService,
		Numbers: &numbering.SequenceGenerator{},
		Bucket:  cfg.GCSBucket,
	}
	document.RegisterRoutes(r, documentService, docTypeService, auditService)

	// Cloud Run expects plain HTTP, on $PORT, bind to 0.0.0.0
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
