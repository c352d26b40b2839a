package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ligustah/chunkset/internal/config"
	"github.com/ligustah/chunkset/internal/progress"
	"github.com/ligustah/chunkset/pkg/chunk"
	"github.com/ligustah/chunkset/pkg/fsio"
)

// sharedFlags are accepted by every command.
type sharedFlags struct {
	configPath string
	storage    string
	async      bool
	workers    int
	progress   bool
	verbose    bool
}

func (s *sharedFlags) register(fs *flag.FlagSet) {
	def := config.Default()
	fs.StringVar(&s.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&s.storage, "storage", "", "Bucket URL (default: local filesystem)")
	fs.BoolVar(&s.async, "async", false, "Run file operations on a worker pool")
	fs.IntVar(&s.workers, "workers", def.Workers, "Number of I/O workers for -async")
	fs.BoolVar(&s.progress, "progress", false, "Show progress output")
	fs.BoolVar(&s.verbose, "v", false, "Log every chunk")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (c *cli) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintln(c.stderr, usage)
		fmt.Fprintln(c.stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and returns the exit code to use if parsing failed.
func parse(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess, false
		}
		return ExitInvalidArgs, false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "Error: unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return ExitInvalidArgs, false
	}
	return 0, true
}

// loadConfig layers defaults, the config file, the environment and the
// flags that were set explicitly, in that order.
func (s *sharedFlags) loadConfig(fs *flag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if s.configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(s.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	// Merge skips zero values, so booleans are applied directly to let
	// -async=false override the file or the environment.
	var override config.Config
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "storage":
			override.Storage = s.storage
		case "workers":
			if s.workers <= 0 {
				flagErr = errors.Join(flagErr, errors.New("-workers must be positive"))
			}
			override.Workers = s.workers
		case "chunk-size":
			flagErr = errors.Join(flagErr, setSize(&override.ChunkSize, f))
		case "buffer-size":
			flagErr = errors.Join(flagErr, setSize(&override.BufferSize, f))
		case "async":
			cfg.Async = s.async
		case "progress":
			cfg.Progress = s.progress
		case "force":
			cfg.Force, _ = strconv.ParseBool(f.Value.String())
		}
	})
	if flagErr != nil {
		return config.Config{}, flagErr
	}
	cfg = cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func setSize(dst *int64, f *flag.Flag) error {
	n, err := progress.ParseBytes(f.Value.String())
	if err != nil {
		return fmt.Errorf("-%s: %w", f.Name, err)
	}
	if n <= 0 {
		return fmt.Errorf("-%s must be positive", f.Name)
	}
	*dst = n
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func (c *cli) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(c.stderr, "\n[chunkset] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// session is the storage and execution mode a command runs with.
type session struct {
	cfg    config.Config
	fsys   fsio.FS
	sched  *fsio.Scheduler
	log    *slog.Logger
	closer io.Closer
}

// openSession opens the configured storage and, for -async, a scheduler.
func (c *cli) openSession(ctx context.Context, cfg config.Config, verbose bool) (*session, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	s := &session{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level})),
	}

	if cfg.Storage == "" {
		s.fsys = fsio.Local()
	} else {
		b, err := fsio.OpenBucket(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		s.fsys = b
		s.closer = b
	}

	if cfg.Async {
		s.sched = fsio.NewScheduler(cfg.Workers)
	}

	s.log.Debug("session opened",
		"storage", storageName(cfg.Storage),
		"async", cfg.Async,
		"workers", cfg.Workers,
		"chunk_size", cfg.ChunkSize,
		"buffer_size", cfg.BufferSize,
	)
	return s, nil
}

func storageName(url string) string {
	if url == "" {
		return "local"
	}
	return url
}

// Close stops the scheduler and closes the bucket.
func (s *session) Close() error {
	if s.sched != nil {
		s.sched.Close()
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// storage returns the backend for operations the command performs itself,
// routed through the scheduler for -async.
func (s *session) storage() fsio.FS {
	if s.sched != nil {
		return s.sched.Wrap(s.fsys)
	}
	return s.fsys
}

// observer combines the progress reporter, if any, with chunk logging.
func (s *session) observer(op string, reporter *progress.Reporter) chunk.Observer {
	obs := multiObserver{&logObserver{log: s.log.With("op", op)}}
	if reporter != nil {
		obs = append(obs, reporter)
	}
	return obs
}

// startReporter starts a progress reporter when progress output is enabled.
func (c *cli) startReporter(cfg config.Config, opts progress.Options) *progress.Reporter {
	if !cfg.Progress {
		return nil
	}
	opts.Output = c.stderr
	opts.UpdateInterval = time.Second
	r := progress.NewReporter(opts)
	r.Start()
	return r
}

// logObserver logs chunk events at debug level. Chunks are processed in
// order, so the event count is the chunk index.
type logObserver struct {
	log   *slog.Logger
	index int
	start time.Time
}

func (o *logObserver) ChunkStarted() {
	o.start = time.Now()
	o.log.Debug("chunk started", "chunk", o.index)
}

func (o *logObserver) ChunkCompleted(size int64) {
	o.log.Debug("chunk completed", "chunk", o.index, "bytes", size, "elapsed", time.Since(o.start))
	o.index++
}

func (o *logObserver) ChunkFailed() {
	o.log.Debug("chunk failed", "chunk", o.index)
	o.index++
}

type multiObserver []chunk.Observer

func (m multiObserver) ChunkStarted() {
	for _, o := range m {
		o.ChunkStarted()
	}
}

func (m multiObserver) ChunkCompleted(size int64) {
	for _, o := range m {
		o.ChunkCompleted(size)
	}
}

func (m multiObserver) ChunkFailed() {
	for _, o := range m {
		o.ChunkFailed()
	}
}

// fail reports err and returns the matching exit code.
func (c *cli) fail(ctx context.Context, err error) int {
	if ctx.Err() != nil {
		fmt.Fprintln(c.stderr, "[chunkset] Interrupted")
		return ExitGeneralError
	}
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch chunk.KindOf(err) {
	case chunk.KindInvalidConfiguration:
		return ExitInvalidArgs
	case chunk.KindIOFailure:
		return ExitStorageError
	case chunk.KindMissingChunk, chunk.KindUnexpectedChunk:
		return ExitValidationFailed
	}
	return ExitGeneralError
}
