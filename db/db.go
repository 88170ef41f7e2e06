package db

import (
	"fmt"
	"log"
	"os"

	"toolcrib-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Tool{},
		&models.Unit{},
		&models.Assignment{},
		&models.MaintenanceSchedule{},
		&models.Project{},
	); err != nil {
		return err
	}

	// 同一 unit 最多一条 ACTIVE 借出
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_unit
	  ON %s (unit_id)
	  WHERE status = 'ACTIVE';
	`, models.AssignmentTable, models.AssignmentTable)).Error; err != nil {
		return err
	}

	// 查询某 unit 的在途维保更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_unit
	  ON %s (unit_id, scheduled_date DESC)
	  WHERE status = 'SCHEDULED' OR status = 'IN_PROGRESS';
	`, models.MaintenanceTable, models.MaintenanceTable)).Error; err != nil {
		return err
	}

	return nil
}
