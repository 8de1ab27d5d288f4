package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/ego/pkg/api"
	grpcapi "github.com/lemonberrylabs/ego/pkg/api/grpc"
	"github.com/lemonberrylabs/ego/pkg/config"
	"github.com/lemonberrylabs/ego/pkg/store"
	"github.com/lemonberrylabs/ego/web"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the runs API, gRPC health and the web dashboard",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env EGO_PORT)")
	cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env EGO_GRPC_PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env EGO_HOST)")
	cmd.Flags().String("config", "", "Project file (default ./ego.toml or ./ego.yaml)")
	return cmd
}

func serveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Serve.Port = v
	}
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		cfg.Serve.GRPCPort = v
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Serve.Host = v
	}
	if v, _ := cmd.Flags().GetInt("max-steps"); v != 0 {
		cfg.MaxSteps = v
	}
	if v, _ := cmd.Flags().GetInt("max-call-depth"); v != 0 {
		cfg.MaxCallDepth = v
	}
	return cfg, cfg.Validate()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Serve.Host, cfg.Serve.Port)
	grpcAddr := fmt.Sprintf("%s:%d", cfg.Serve.Host, cfg.Serve.GRPCPort)

	s := store.New()
	exec := api.NewExecutor(s, cfg.MaxSteps, cfg.MaxCallDepth)
	server := api.New(exec)

	ui := web.New(s)
	ui.Register(server.App())

	// Start gRPC server
	grpcServer := grpcapi.New(exec)
	go func() {
		log.Printf("gRPC server listening on %s", grpcAddr)
		if err := grpcServer.Serve(grpcAddr); err != nil {
			log.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down ego host...")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("ego host listening on %s (max_steps=%d, max_call_depth=%d)", addr, cfg.MaxSteps, cfg.MaxCallDepth)
	return server.Listen(addr)
}
