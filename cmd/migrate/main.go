package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sgsgita/moderation-backend/internal/config"
	"github.com/sgsgita/moderation-backend/internal/migration"
	"github.com/sgsgita/moderation-backend/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger.Init()

	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	seed := flag.Bool("seed", false, "seed default moderator accounts after migrating")
	drop := flag.Bool("drop", false, "drop all moderation tables (destructive)")
	verify := flag.Bool("verify", false, "verify tables exist and print row counts")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if *drop {
		log.Println("[drop] WARNING: This will DROP all moderation tables!")
		log.Println("[drop] Press Ctrl+C to cancel within 5 seconds...")
		time.Sleep(5 * time.Second)
		if err := migration.Drop(db); err != nil {
			log.Fatalf("[drop] Failed: %v", err)
		}
		log.Println("[drop] Complete. All moderation tables dropped.")
		return
	}

	if *verify {
		if err := migration.Verify(db); err != nil {
			log.Fatalf("[verify] Failed: %v", err)
		}
		return
	}

	start := time.Now()
	if err := migration.Run(db); err != nil {
		log.Fatalf("[migrate] Failed: %v", err)
	}
	log.Printf("[migrate] Schema migration completed in %v", time.Since(start))

	if *seed {
		if err := migration.Seed(db); err != nil {
			log.Fatalf("[seed] Failed: %v", err)
		}
		log.Println("[seed] Default moderator accounts seeded")
	}
}
