package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bi0dread/qfilter"
	"github.com/bi0dread/qfilter/internal/config"
	"github.com/bi0dread/qfilter/internal/logger"
	"github.com/bi0dread/qfilter/internal/movies"
	"github.com/bi0dread/qfilter/internal/server"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "qfilter",
		Short:         "Compile and serve movie filter queries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml, json or toml)")
	config.RegisterFlags(root.PersistentFlags())

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(configPath, cmd.Flags())
	}

	root.AddCommand(newParseCmd(load), newExplainCmd(load), newServeCmd(load))
	return root
}

type loader func(cmd *cobra.Command) (*config.Config, error)

func newParseCmd(load loader) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Print the predicate, guard, order and page of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			f, err := compile(args[0], search, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "predicate: %s\n", orAll(f.Predicate))
			fmt.Fprintf(out, "not null:  %s\n", orAll(f.NotNull))
			if f.Order != nil {
				fmt.Fprintf(out, "order:     %s\n", f.Order)
			} else {
				fmt.Fprintln(out, "order:     <none>")
			}
			fmt.Fprintf(out, "page:      %d (size %d, skip %d)\n", f.Page.Number, f.Page.Size, f.Page.Skip())
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "free-text search term")
	return cmd
}

func newExplainCmd(load loader) *cobra.Command {
	var (
		adapterName string
		search      string
	)
	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Render a query for a store adapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			f, err := compile(args[0], search, cfg)
			if err != nil {
				return err
			}
			a, err := adapterFor(adapterName, cfg)
			if err != nil {
				return err
			}
			s, err := a.GetString(f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVar(&adapterName, "adapter", "sql",
		"adapter to render with ("+strings.Join(qfilter.AdapterNames(), ", ")+")")
	cmd.Flags().StringVar(&search, "search", "", "free-text search term")
	return cmd
}

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the movie catalogue over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			log := logger.Init(cfg.Log)
			if logger.ParseLevel(cfg.Log.Level) != slog.LevelDebug {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := movies.Open(ctx, cfg.Store, log)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := qfilter.NewService(movies.Schema, cfg.Page, store, log)
			return server.New(svc, log).Run(ctx, cfg.Server.Addr)
		},
	}
}

func compile(query, search string, cfg *config.Config) (*qfilter.Filter, error) {
	f, err := qfilter.Parse(query, movies.Schema, cfg.Page)
	if err != nil {
		return nil, err
	}
	return movies.Search(search)(f)
}

func adapterFor(name string, cfg *config.Config) (qfilter.Adapter, error) {
	a, err := qfilter.AdapterByName(name)
	if err != nil {
		return nil, err
	}
	switch a.(type) {
	case qfilter.RawAdapter:
		return qfilter.RawAdapter{Table: movies.Movie{}.TableName()}, nil
	case qfilter.RediSearchAdapter:
		return qfilter.RediSearchAdapter{Index: cfg.Store.Index}, nil
	case qfilter.GormAdapter:
		db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
			DryRun: true,
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, err
		}
		return qfilter.GormAdapter{DB: db, Model: &movies.Movie{}}, nil
	}
	return a, nil
}

func orAll(p qfilter.Predicate) string {
	if p == nil {
		return "<none>"
	}
	return p.String()
}
