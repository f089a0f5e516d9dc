package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dcache-admin/internal/daemon"
	"dcache-admin/internal/db"
	"dcache-admin/internal/logger"
	"dcache-admin/internal/repository"
	"dcache-admin/internal/syncer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncOpts struct {
	rootPath    string
	source      string
	destination string
	ftsHost     string
	recursive   bool
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise a dCache directory to a destination with FTS",
	Long: `Watch the source directory through dCache inotify events and submit an
FTS transfer to the destination for every file written below it. Runs until
interrupted; a second interrupt exits immediately.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := syncer.New(c, syncer.Options{
		RootPath:       syncOpts.rootPath,
		Source:         syncOpts.source,
		Destination:    syncOpts.destination,
		FTSEndpoint:    syncOpts.ftsHost,
		Recursive:      syncOpts.recursive,
		Workers:        cfg.Sync.Workers,
		Resubscribe:    syncer.ResubscribePolicy(cfg.Sync.Resubscribe),
		ProbeAttempts:  cfg.Sync.ProbeAttempts,
		ProbeBackoff:   cfg.Sync.ProbeBackoff,
		ReconnectDelay: cfg.Sync.ReconnectDelay,
		CloseAbandoned: cfg.Sync.CloseAbandoned,
		Ignore:         cfg.Sync.Ignore,
	})
	if err != nil {
		return err
	}

	var histRepo *repository.HistoryRepository
	if cfg.Sync.HistoryDB != "" {
		if err := db.Init(cfg.Sync.HistoryDB); err != nil {
			return err
		}
		defer func() {
			_ = db.Close()
		}()

		histRepo = repository.NewHistoryRepository()
		s.SetHistory(histRepo)
	}

	state := daemon.NewSyncState(syncOpts.source, syncOpts.destination, syncOpts.ftsHost, s.QueueDepth)
	s.SetReporter(state)
	s.AddRecorder(state)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var stopCh <-chan struct{}
	if cfg.Sync.StatusPort != 0 {
		srv := daemon.NewServer(state, histRepo, cfg.Sync.StatusPort)
		srv.Start()
		stopCh = srv.StopCh()

		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Log.Info("shutting down, interrupt again to exit immediately",
				zap.String("signal", sig.String()))
		case <-stopCh:
			logger.Log.Info("stop requested via status server")
		case <-ctx.Done():
			return
		}
		cancel()

		sig := <-sigCh
		logger.Log.Warn("exiting without draining the transfer queue",
			zap.String("signal", sig.String()),
			zap.Int("pending", s.QueueDepth()))
		logger.Sync()
		os.Exit(1)
	}()

	logger.Log.Info("sync started",
		zap.String("url", c.BaseURL()),
		zap.String("source", syncOpts.source),
		zap.String("destination", syncOpts.destination),
		zap.String("fts", syncOpts.ftsHost),
		zap.Int("workers", cfg.Sync.Workers))

	if err := s.Run(ctx); err != nil {
		return err
	}

	logger.Log.Info("sync stopped")
	return nil
}

func init() {
	f := syncCmd.Flags()
	f.StringVar(&syncOpts.rootPath, "root_path", "", "the namespace path exported as root by the source door")
	f.StringVar(&syncOpts.source, "source", "", "the source URL")
	f.StringVar(&syncOpts.destination, "destination", "", "the destination URL")
	f.StringVar(&syncOpts.ftsHost, "fts_host", "", "the FTS endpoint")
	f.BoolVarP(&syncOpts.recursive, "recursive", "r", false, "watch subdirectories too")
	f.Int("workers", 1, "number of transfer workers")
	f.String("resubscribe", "all", "directories subscribed again after a reconnect (all, discovered)")
	f.String("history-db", "", "sqlite file recording submitted transfers")
	f.StringSlice("ignore", nil, "glob patterns of file names not transferred")
	f.Bool("close-abandoned", true, "delete a channel after its stream failed")
	for _, name := range []string{"root_path", "source", "destination", "fts_host"} {
		_ = syncCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(syncCmd)
}
