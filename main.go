/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	releaseVersion = "0.1.0"
)

func main() {
	log.SetFlags(0)

	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := &Config{}
	err := newCmd(cfg).ExecuteContext(ctx)

	stop()
	cfg.sync()

	cobra.CheckErr(err)
}
