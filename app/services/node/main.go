package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/utxochain/app/services/node/handlers"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/utxochain/foundation/blockchain/storage/sql"
	"github.com/ardanlabs/utxochain/foundation/blockchain/wallet"
	"github.com/ardanlabs/utxochain/foundation/blockchain/worker"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/logger"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10m"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
		}
		State struct {
			DBURL       string        `conf:"default:sqlite://zblock/chain.db,mask"`
			ChainID     string        `conf:"default:main"`
			KeyPath     string        `conf:"default:zblock/accounts/miner1.ecdsa"`
			AllowMining bool          `conf:"default:true"`
			MineTimeout time.Duration `conf:"default:5m"`
		}
		Peers struct {
			KnownPeers   []string      `conf:"default:0.0.0.0:9080;0.0.0.0:9180"`
			SyncInterval time.Duration `conf:"default:1m"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "utxo chain node",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Miner Key Support

	// The node mines into the address of its own key. The key is created on
	// first start and kept from then on.
	created, err := wallet.Initialize(cfg.State.KeyPath)
	if err != nil {
		return fmt.Errorf("unable to initialize node key: %w", err)
	}
	if created {
		log.Infow("startup", "status", "created node key", "path", cfg.State.KeyPath)
	}

	minerAddress, err := wallet.PublicKey(cfg.State.KeyPath)
	if err != nil {
		return fmt.Errorf("unable to load node key: %w", err)
	}

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for addresses. The
	// names come from the file names in the accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for address, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "address", address)
	}

	// =========================================================================
	// Blockchain Support

	storage, err := openStorage(cfg.State.DBURL, cfg.State.ChainID)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	// A peer set is a collection of known nodes in the network so chains
	// can be shared.
	peerSet := peer.NewPeerSet()
	for _, host := range cfg.Peers.KnownPeers {
		peerSet.Add(peer.New(host))
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	st, err := state.New(state.Config{
		MinerAddress: minerAddress,
		Host:         cfg.Web.PrivateHost,
		Storage:      storage,
		KnownPeers:   peerSet,
		AllowMining:  cfg.State.AllowMining,
		EvHandler:    ev,
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer st.Shutdown()

	// The worker runs the mining operations and the peer updates. The worker
	// will register itself with the state.
	w := worker.Run(st, cfg.Peers.SyncInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, st)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	muxCfg := handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		State:       st,
		Worker:      w,
		MineTimeout: cfg.State.MineTimeout,
		NS:          ns,
		Evts:        evts,
	}

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      handlers.PublicMux(muxCfg),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      handlers.PrivateMux(muxCfg),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// openStorage returns the chain storage named by the url. The value memory
// selects a storage that does not outlive the process.
func openStorage(dbURL string, chainID string) (database.Storage, error) {
	if dbURL == "memory" {
		return memory.New(), nil
	}

	return sql.New(dbURL, chainID)
}
