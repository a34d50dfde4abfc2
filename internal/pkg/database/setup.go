package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CreatorHub/app/models"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// DB is the process-wide connection opened by SetupDatabase.
var DB *gorm.DB

// SetupDatabase connects to MySQL, retrying while the server comes up, and
// migrates the schema.
func SetupDatabase() *gorm.DB {
	var err error
	// clientFoundRows: an UPDATE that rewrites identical values still counts as matched
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{})
		if err == nil {
			if err = AutoMigrate(DB); err != nil {
				panic(err)
			}
			return DB
		}

		log.Warnf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	panic(err)
}

// Models lists every table the payment pipeline owns.
func Models() []interface{} {
	return []interface{}{
		&models.WebhookEvent{},
		&models.Subscription{},
		&models.Purchase{},
		&models.CourseEnrollment{},
		&models.Beat{},
		&models.BeatLicense{},
		&models.CreditTransaction{},
		&models.UserCredit{},
		&models.TrackSubmission{},
		&models.ServiceOrder{},
		&models.CoachingSession{},
		&models.Store{},
		&models.User{},
	}
}

// AutoMigrate creates or updates the schema of all pipeline tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
