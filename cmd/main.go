package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"kincore/app/config"
	"kincore/app/ledger"
	"kincore/app/server"
	"kincore/app/wallet"
	"kincore/pkg/eth"
	"kincore/pkg/log"
	"kincore/pkg/web"
	webware "kincore/pkg/web/middleware"
)

const (
	maxRequestsAllowed    = 100
	dialTimeout           = 30 * time.Second
	serverShutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		panic(err)
	}

	zlog := log.ConfigureLogger(cfg.Logging)
	defer func() {
		_ = zlog.Sync() // flush the logger
	}()

	// connect to the node
	dialCtx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	ethClient, err := eth.Dial(dialCtx, cfg.Ethereum.NodeUrl)
	cancel()
	if err != nil {
		log.Fatal("failed connection to node: ", err)
	}
	defer ethClient.Close()

	// one ledger client shared by every account
	keyStore := ledger.NewKeyStore(cfg.KeyStore)
	ledgerSvc := ledger.NewManager(cfg.Ethereum, keyStore, ethClient)
	walletSvc := wallet.NewManager(ledgerSvc)
	log.Infow("key store opened", "dir", cfg.KeyStore.Dir, "accounts", len(walletSvc.Accounts()))

	router := newRouter()
	rest := server.Rest{
		Router: router,
		Wallet: walletSvc,
	}
	rest.Route() // handle http requests

	srv := &http.Server{
		Addr:    cfg.RestAddr,
		Handler: router,
	}
	go web.Start(srv)
	defer web.Shutdown(srv, serverShutdownTimeout)

	// wait for the program exit
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
}

func newRouter() chi.Router {
	router := chi.NewRouter()

	// add middleware
	router.Use(
		middleware.Throttle(maxRequestsAllowed),
		middleware.RealIP,
		webware.ZapLogger,
		webware.Recoverer,
	)

	return router
}
