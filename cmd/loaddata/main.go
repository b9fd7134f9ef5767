// Command loaddata bulk-loads the storefront CSV exports (customers and the
// product catalog) into the database configured for the API.
package main

import (
	"context"
	"flag"
	"log"

	"ShopAssist/pkg/config"
	"ShopAssist/pkg/database"
	utils "ShopAssist/pkg/utills"

	"gorm.io/gorm/logger"
)

func main() {
	dir := flag.String("dir", "data", "directory holding the CSV files")
	batch := flag.Int("batch", 500, "rows per INSERT batch")
	defaultPassword := flag.String("default-password", "", "password given to loaded users that have none (8+ chars, letters and digits)")
	flag.Parse()

	if *defaultPassword != "" {
		if err := utils.CheckPassword(*defaultPassword); err != nil {
			log.Fatalf("[loaddata] -default-password: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[loaddata] config: %v", err)
	}
	ctx := context.Background()
	db, err := database.Open(ctx, database.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		LogLevel:     logger.Warn,
	})
	if err != nil {
		log.Fatalf("[loaddata] open database: %v", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatalf("[loaddata] migrate: %v", err)
	}

	l := &loader{db: db.WithContext(ctx), dir: *dir, batch: *batch}
	if *defaultPassword != "" {
		if err := l.setDefaultPassword(*defaultPassword); err != nil {
			log.Fatalf("[loaddata] hash default password: %v", err)
		}
	}
	total, err := l.run()
	if err != nil {
		log.Fatalf("[loaddata] %v", err)
	}
	log.Printf("[loaddata] done, %d rows loaded from %s", total, *dir)
}
