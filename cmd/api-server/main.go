package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"coursehub/internal/auth"
	"coursehub/internal/catalog"
	"coursehub/internal/content"
	"coursehub/internal/discuss"
	"coursehub/internal/notify"
	synchub "coursehub/internal/sync"
	"coursehub/pkg/database"
	"coursehub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	srvCfg := utils.LoadServerConfig()
	authCfg := utils.LoadAuthConfig()

	hub := synchub.NewHub()
	notifySrv := notify.NewServer(srvCfg.UDPAddr, notify.NewRegistry(), nil)
	store := catalog.NewStore(nil)

	reloader := content.NewReloader(srvCfg.ContentPath, store, nil)
	if _, err := reloader.Reload(); err != nil {
		log.Fatalf("initial content load failed: %v", err)
	}
	reloader.OnReload = func(_, next *catalog.Catalog) {
		hub.Broadcast(synchub.Event{
			Type:   synchub.EventCatalogReloaded,
			Topics: next.Len(),
			At:     next.BuiltAt(),
		})
		n := notifySrv.BroadcastCatalogReloaded(notify.CatalogReloadedMessage{
			Courses: len(next.Courses()),
			Topics:  next.Len(),
			BuiltAt: next.BuiltAt(),
		})
		log.Printf("[content] reload announced to %d udp clients", n)
	}

	router := newRouter(deps{
		DB:      db,
		DBPath:  cfg.Path,
		Catalog: store,
		Hub:     hub,
		Discuss: discuss.NewHub(0),
		Tokens: auth.TokenService{
			Secret:   []byte(authCfg.JWTSecret),
			Issuer:   authCfg.JWTIssuer,
			Duration: authCfg.JWTDuration,
		},
		Origins: srvCfg.AllowedOrigins,
	})

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}
	tcpSrv := synchub.NewServer(srvCfg.TCPAddr, hub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(tcpSrv.Run)
	g.Go(notifySrv.Run)
	g.Go(func() error {
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if srvCfg.Watch {
		w := content.NewWatcher(srvCfg.ContentPath, func() {
			if _, err := reloader.Reload(); err != nil {
				log.Printf("[content] reload failed, keeping previous catalog: %v", err)
			}
		}, nil)
		g.Go(func() error { return w.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown error: %v", err)
		}
		if err := tcpSrv.Close(); err != nil {
			log.Printf("tcp shutdown error: %v", err)
		}
		if err := notifySrv.Close(); err != nil {
			log.Printf("udp shutdown error: %v", err)
		}
		hub.CloseAll()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("server error: %v", err)
	}
	log.Println("servers stopped")
}
