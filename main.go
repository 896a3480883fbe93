package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kjcheon2024/shop-orders-sub000/config"
	"github.com/kjcheon2024/shop-orders-sub000/models"
	"github.com/kjcheon2024/shop-orders-sub000/router"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	autoMigrate(db)
	seedAdminUser(db)

	r := router.SetupRouter(db)

	port := config.Port()
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.AdminUser{},
		&models.Category{},
		&models.Item{},
		&models.ItemGroup{},
		&models.ItemGroupItem{},
		&models.Company{},
		&models.CompanyItem{},
		&models.ItemRequest{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notice{},
		&models.NoticeTarget{},
		&models.NoticeRead{},
		&models.SheetConfig{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seedAdminUser makes sure the console has at least one login.
func seedAdminUser(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		utils.ErrorLogger.Fatalf("Failed to check admin users: %v", err)
	}
	if count > 0 {
		return
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		utils.InfoLogger.Println("ADMIN_PASSWORD not set, seeding default console password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to hash admin password: %v", err)
	}
	admin := models.AdminUser{Username: username, PasswordHash: string(hashed)}
	if err := db.Create(&admin).Error; err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin user: %v", err)
	}
	utils.InfoLogger.Printf("Seeded admin user %q", username)
}
