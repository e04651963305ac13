// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"flag"
	"laundrolink-server/commons"
	"laundrolink-server/db"
	"laundrolink-server/store"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	output := flag.String("output", commons.GetEnv("BACKUP_FILE", "laundrolink_backup.json"), "File to write, - for stdout")
	flag.String("env-file", "", "Path to .env file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.InitDB(); err != nil {
		commons.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	backup, err := store.New(db.NewGateway(db.Conn)).Export(ctx)
	if err != nil {
		commons.Logger.Fatalf("Export failed: %v", err)
	}

	out := os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			commons.Logger.Fatalf("Failed to create %s: %v", *output, err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "    ")
	if err := enc.Encode(backup); err != nil {
		commons.Logger.Fatalf("Failed to write backup: %v", err)
	}

	for _, table := range store.BackupTables {
		commons.Logger.Infof("Exported %d rows from %s", len(backup[table]), table)
	}
	if *output != "-" {
		commons.Logger.Infof("Database exported to %s", *output)
	}
}

// go run ./cmd/exportdb -output laundrolink_backup.json
