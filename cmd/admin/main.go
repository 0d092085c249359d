package main

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"strangerlink/backend/internal/storage"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "grant-premium":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin grant-premium <user_id>")
			os.Exit(1)
		}
		if err := storageSvc.SetPremium(os.Args[2], true); err != nil {
			log.Fatalf("Error granting premium: %v", err)
		}
		fmt.Printf("User %s is now premium.\n", os.Args[2])
	case "revoke-premium":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin revoke-premium <user_id>")
			os.Exit(1)
		}
		if err := storageSvc.SetPremium(os.Args[2], false); err != nil {
			log.Fatalf("Error revoking premium: %v", err)
		}
		fmt.Printf("User %s is no longer premium.\n", os.Args[2])
	case "close-room":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close-room <room_id>")
			os.Exit(1)
		}
		if err := storageSvc.CloseRoom(os.Args[2]); err != nil {
			log.Fatalf("Error closing room: %v", err)
		}
		fmt.Printf("Room %s has been closed.\n", os.Args[2])
	case "complaints":
		complaints, err := storageSvc.GetComplaintsByStatus("new")
		if err != nil {
			log.Fatalf("Error listing complaints: %v", err)
		}
		if len(complaints) == 0 {
			fmt.Println("No new complaints.")
			return
		}
		for _, c := range complaints {
			fmt.Printf("#%d room=%s reporter=%s target=%s reason=%q\n",
				c.ID, c.RoomID, c.ReporterID, c.TargetID, c.Reason)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
