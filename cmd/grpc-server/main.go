package main

import (
	"context"
	"log"
	"net"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"coursehub/internal/catalog"
	"coursehub/internal/content"
	"coursehub/internal/grpcserver"
	"coursehub/internal/progress"
	"coursehub/pkg/database"
	"coursehub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	grpcCfg := utils.LoadGrpcConfig()

	store := catalog.NewStore(nil)
	reloader := content.NewReloader(grpcCfg.ContentPath, store, nil)
	if _, err := reloader.Reload(); err != nil {
		log.Fatalf("content load failed: %v", err)
	}
	reloader.OnReload = func(_, next *catalog.Catalog) {
		log.Printf("[content] catalog reloaded: %d topics", next.Len())
	}

	var watcher *content.Watcher
	if grpcCfg.Watch {
		watcher = watchContent(grpcCfg.ContentPath, reloader)
	}

	listener, err := net.Listen("tcp", grpcCfg.Addr)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := grpcserver.NewServer(store, progress.NewRepo(db))
	if err := run(ctx, listener, svc, watcher); err != nil {
		log.Fatalf("grpc server stopped: %v", err)
	}
}

func watchContent(path string, r *content.Reloader) *content.Watcher {
	return content.NewWatcher(path, func() {
		if _, err := r.Reload(); err != nil {
			log.Printf("[content] reload failed, keeping previous catalog: %v", err)
		}
	}, nil)
}

// run serves until ctx is done and then stops gracefully. A nil watcher
// disables hot reload.
func run(ctx context.Context, lis net.Listener, svc *grpcserver.Server, w *content.Watcher) error {
	grpcServer, health := grpcserver.NewGRPCServer(svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("gRPC server listening on %s", lis.Addr())
		return grpcServer.Serve(lis)
	})
	if w != nil {
		g.Go(func() error { return w.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down gRPC server")
		health.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})
	return g.Wait()
}
