package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/debaditya-mohankudo/prmailhub/internal/config"
	"github.com/debaditya-mohankudo/prmailhub/internal/mcp"
)

func main() {
	root := &cobra.Command{
		Use:   "mcp-server",
		Short: "MCP server over the notification record store",
		RunE:  run,
	}

	config.Init(root)

	root.PersistentFlags().String("listen", ":8080", "HTTP listen address")
	_ = viper.BindPFlag(config.KeyMCPListenAddr, root.PersistentFlags().Lookup("listen"))

	if err := root.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	srv := mcp.New(mcp.DefaultConfig())
	defer srv.Close()

	addr := config.MCPListenAddr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("MCP server listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
