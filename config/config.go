package config

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database selected by DB_DRIVER. MySQL is the production
// driver; sqlite is the local/dev fallback so the portal runs without a
// server-side database.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")
	dsn := os.Getenv("DB_DSN")

	switch driver {
	case "mysql":
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
				envOr("DB_HOST", "127.0.0.1"), envOr("DB_PORT", "3306"),
				envOr("DB_NAME", "order_portal"))
		}
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		if dsn == "" {
			dsn = "order_portal.db"
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Port returns the listen port for the HTTP server.
func Port() string {
	return envOr("PORT", "8080")
}

// OrderDateFormat is the calendar-day key used for order records.
const OrderDateFormat = "2006-01-02"

// OrderDate formats a timestamp as an order-day key.
func OrderDate(t time.Time) string {
	return t.Format(OrderDateFormat)
}
