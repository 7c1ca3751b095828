// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/teradata-labs/vizflow/internal/log"
	"github.com/teradata-labs/vizflow/pkg/vizserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis service",
	Long: `Starts an HTTP server exposing the analysis pipeline:

  POST /api/v1/analyses                   multipart upload (file, question)
  GET  /api/v1/analyses/{id}              analysis status and chart URLs
  GET  /api/v1/analyses/{id}/charts/{n}.svg
  GET  /api/v1/analyses/{id}/charts/{n}.png
  GET  /healthz`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origins (default: all)")
	serveCmd.Flags().Int("max-analyses", vizserver.DefaultMaxEntries, "max analyses kept in memory")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}

	srv, err := vizserver.New(vizserver.Config{
		Addr:              viper.GetString("addr"),
		Analyzer:          p,
		MaxStoredAnalyses: viper.GetInt("max-analyses"),
		AllowedOrigins:    viper.GetStringSlice("cors-origin"),
		Logger:            log.Logger(),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
