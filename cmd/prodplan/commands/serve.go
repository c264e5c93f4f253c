package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"prodplan/internal/config"
	"prodplan/internal/persistence"
	"prodplan/internal/persistence/postgres"
	"prodplan/internal/server"
	"prodplan/internal/service/calculator"
	"prodplan/internal/service/planner"
	memstore "prodplan/internal/service/store"
	"prodplan/internal/store"
	"prodplan/internal/util"
)

const (
	dbFileName      = "prodplan.db"
	shutdownTimeout = 10 * time.Second
	portSearchRange = 20
)

var serveFlags struct {
	port    int
	devMode bool
	dataDir string
	open    bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyServeFlags(cmd)
		return runServe(cmd.Context())
	},
}

func init() {
	f := serveCmd.Flags()
	f.IntVar(&serveFlags.port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	f.BoolVar(&serveFlags.devMode, "dev", false, "开发模式")
	f.StringVar(&serveFlags.dataDir, "dataDir", "", "数据目录 (覆盖配置文件)")
	f.BoolVar(&serveFlags.open, "open", true, "启动后打开浏览器")
}

// applyServeFlags 命令行参数覆盖配置
func applyServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("port") && serveFlags.port > 0 && !cfgInfo.PortSpecified {
		cfg.Server.Port = serveFlags.port
		cfgInfo.PortSpecified = true
	}
	if serveFlags.devMode {
		cfg.Server.DevMode = true
	}
	if serveFlags.dataDir != "" {
		cfg.Data.DataDir = serveFlags.dataDir
	}
	if flags.Changed("open") {
		cfg.Server.OpenBrowser = serveFlags.open
	}
}

// openRemote 配置了数据库时连接 Postgres，否则使用进程内存储
func openRemote(ctx context.Context) (persistence.Adapter, func()) {
	if cfg.Remote.DatabaseURL == "" {
		log.Info().Msg("no database configured, using in-process document store")
		return persistence.NewMemory(), func() {}
	}
	docs, err := postgres.Open(ctx, cfg.Remote.DatabaseURL, cfg.Remote.DocumentID)
	if err != nil {
		log.Error().Err(err).Msg("remote document store unavailable, saving locally only")
		return nil, func() {}
	}
	return docs, docs.Close
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	log.Info().Str("dir", dataDir).Msg("data directory")

	cache, err := store.New(filepath.Join(dataDir, dbFileName))
	if err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}
	defer cache.Close()

	remote, closeRemote := openRemote(ctx)
	defer closeRemote()

	var backups *planner.Backups
	if cfg.Data.AutoBackup {
		backups = planner.NewBackups(filepath.Join(dataDir, "backups"), cfg.Data.MaxBackups)
	}

	ctrl := planner.New(memstore.NewMemoryStore(), calculator.NewEngine(), planner.Options{
		Remote:        remote,
		Cache:         cache,
		Backups:       backups,
		ViewState:     cache,
		AutosaveDelay: cfg.AutosaveDelay(),
		StartYear:     cfg.Planning.StartYear,
		StartMonth:    cfg.Planning.StartMonth,
	})
	if err := ctrl.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialise planner: %w", err)
	}
	st := ctrl.Status()
	log.Info().Str("month", string(st.Key)).Str("source", string(st.Source)).Int("months", st.Months).Msg("planner ready")

	unsubscribe, err := ctrl.Subscribe(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("remote subscription failed, continuing without live updates")
		unsubscribe = func() {}
	}

	if !cfgInfo.PortSpecified {
		if port, err := util.FindAvailablePort(cfg.Server.Port, portSearchRange); err == nil {
			cfg.Server.Port = port
		}
	}
	srv := server.NewServer(ctrl, server.Options{
		Port:      cfg.Server.Port,
		DevMode:   cfg.Server.DevMode,
		ExportDir: config.GetDataPath(cfg, "exports", ""),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	if cfg.Server.OpenBrowser && !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("无法自动打开浏览器，请手动访问")
		}
	}
	log.Info().Str("url", url).Msg("按 Ctrl+C 停止服务")

	runErr := g.Wait()

	log.Info().Msg("正在关闭服务...")
	unsubscribe()
	ctrl.Close()

	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if result, err := ctrl.Save(saveCtx); err != nil {
		log.Error().Err(err).Msg("退出前保存失败")
	} else {
		log.Info().Str("outcome", string(result.Outcome)).Int("months", result.Months).Msg("saved on shutdown")
	}

	return runErr
}
