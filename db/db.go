package db

import (
	"fmt"
	"log"
	"os"

	"meeting-bot/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Meeting{},
		&models.Invitee{},
		&models.ChatUser{},
		&models.Admin{},
	); err != nil {
		return err
	}

	// 查某会议的已投票名单更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_meeting_answered
	  ON %s (meeting_id)
	  WHERE answer IS NOT NULL;
	`, models.InviteeTable, models.InviteeTable)).Error; err != nil {
		return err
	}

	return nil
}
