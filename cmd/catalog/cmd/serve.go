package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"courserag/internal/httpapi"
	"courserag/internal/logger"
	"courserag/internal/snapshot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the course index and assistant over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := newStack(ctx, cfg)
	if err != nil {
		return err
	}
	reload := func(ctx context.Context) error { return s.reload(ctx, cfg) }

	if cfg.Server.WatchSnapshot {
		w, err := snapshot.NewWatcher(0, logger.WithComponent("watcher"))
		if err != nil {
			return err
		}
		defer w.Stop()
		onChange := func(path string) {
			rctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := reload(rctx); err != nil {
				s.log.Error().Err(err).Str("path", path).Msg("reload after snapshot change failed")
				return
			}
			s.log.Info().Str("path", path).Int("courses", s.courses.Len()).Msg("snapshot reloaded")
		}
		if err := w.Watch(cfg.Data.Courses, onChange); err != nil {
			s.log.Warn().Err(err).Str("path", cfg.Data.Courses).Msg("snapshot watch disabled")
		}
	}

	h := httpapi.NewHandler(httpapi.Deps{
		Courses:      s.courses,
		Similarity:   s.retriever,
		Assistant:    s.assistant,
		Reload:       reload,
		ChunkSize:    cfg.Chunker.SentencesPerChunk,
		ChunkOverlap: cfg.Chunker.OverlapSentences,
		Logger:       logger.WithComponent("http"),
	})
	log := logger.WithComponent("server")
	router := httpapi.NewRouter(h, log)
	srv := httpapi.NewServer(cfg.Server.Addr(), router, time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second, log)
	return srv.Run(ctx)
}
