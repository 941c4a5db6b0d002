package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"mutuelle/internal/config"
	"mutuelle/internal/database"
	"mutuelle/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backup := service.NewBackupService(db)

	switch os.Args[1] {
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		output := fs.String("output", "backup.json", "output file path")
		fs.Parse(os.Args[2:])

		if err := backup.Export(*output); err != nil {
			log.Fatalf("Export failed: %v", err)
		}

	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		input := fs.String("input", "backup.json", "input file path")
		clear := fs.Bool("clear", false, "remove existing rows before importing")
		fs.Parse(os.Args[2:])

		if err := backup.Import(*input, *clear); err != nil {
			log.Fatalf("Import failed: %v", err)
		}

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: backup <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  export -output <file>          write all tables to a JSON file")
	fmt.Fprintln(os.Stderr, "  import -input <file> [-clear]  load a JSON backup into the database")
}
