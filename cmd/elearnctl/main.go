// Command elearnctl runs administrative tasks against the application database.
package main

import (
	"fmt"
	"go-elearn-app/internal/config"
	"go-elearn-app/internal/data"
	"go-elearn-app/internal/importer"
	"go-elearn-app/internal/logger"
	"go-elearn-app/internal/service"
	"os"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log, os.Stderr)

	cli := &commandLine{
		log: log,
		migrate: func() error {
			return data.ApplyMigrations(cfg.DB, cfg.DB.Migrations)
		},
	}

	// Every command except migrate works on an open connection.
	if len(os.Args) > 1 && os.Args[1] != "migrate" {
		db, err := data.NewDB(cfg.DB)
		if err != nil {
			log.Fatal(err, "Failed to connect to database")
		}
		defer db.Close()
		cli.admins = service.NewAccountService(data.NewUserRepository(db), service.NewValidator())
		cli.lessons = importer.New(data.NewSQLCourseRepository(db), data.NewLessonRepository(db))
	}

	if err := cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		log.Error(err, "Command failed")
		os.Exit(1)
	}
}
