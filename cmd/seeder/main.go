package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bi0dread/qfilter/internal/config"
	"github.com/bi0dread/qfilter/internal/logger"
	"github.com/bi0dread/qfilter/internal/movies"
)

func main() {
	fs := pflag.NewFlagSet("seeder", pflag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seed(ctx, cfg.Store, log); err != nil {
		log.Error("seeding failed", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	log.Info("data seeding completed", "driver", cfg.Store.Driver, "movies", len(movies.Sample()))
}

func seed(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) error {
	switch cfg.Driver {
	case "sqlite":
		db, err := movies.OpenSQLite(cfg.DSN)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	case "mongo":
		return seedMongo(ctx, cfg, log)
	case "redis":
		return seedRedis(ctx, cfg, log)
	}
	return fmt.Errorf("nothing to seed for store driver %q", cfg.Driver)
}

func seedMongo(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(cfg.Database).Collection("movies")
	if err := coll.Drop(ctx); err != nil {
		return err
	}
	docs := make([]any, 0)
	for _, m := range movies.Sample() {
		docs = append(docs, m)
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	log.Info("indexed movies", "collection", coll.Name(), "count", len(res.InsertedIDs))
	return nil
}

// seedRedis stores every movie as a hash and (re)creates a RediSearch index
// over them. Text columns are TAG fields, numbers and dates NUMERIC.
func seedRedis(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) error {
	opts, err := redis.ParseURL(cfg.DSN)
	if err != nil {
		return err
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	// The index may not exist yet.
	_ = rdb.Do(ctx, "FT.DROPINDEX", cfg.Index).Err()

	create := []any{"FT.CREATE", cfg.Index, "ON", "HASH", "PREFIX", 1, "movie:", "SCHEMA",
		"id", "NUMERIC", "SORTABLE",
		"Title", "TAG", "SORTABLE",
		"Overview", "TAG",
		"Genre", "TAG",
		"Original_Language", "TAG", "SORTABLE",
		"Popularity", "NUMERIC", "SORTABLE",
		"Vote_Count", "NUMERIC", "SORTABLE",
		"Vote_Average", "NUMERIC", "SORTABLE",
		"Release_Date", "NUMERIC", "SORTABLE",
	}
	if err := rdb.Do(ctx, create...).Err(); err != nil {
		return err
	}

	pipe := rdb.Pipeline()
	for _, m := range movies.Sample() {
		fields := map[string]any{
			"id":                m.ID,
			"Title":             m.Title,
			"Overview":          m.Overview,
			"Genre":             m.Genre,
			"Original_Language": m.OriginalLanguage,
			"Popularity":        m.Popularity,
			"Vote_Count":        m.VoteCount,
			"Vote_Average":      m.VoteAverage,
			"Poster_Url":        m.PosterURL,
		}
		if m.ReleaseDate != nil {
			fields["Release_Date"] = m.ReleaseDate.Unix()
		}
		pipe.HSet(ctx, "movie:"+strconv.Itoa(int(m.ID)), fields)
	}
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return err
	}
	log.Info("indexed movies", "index", cfg.Index, "count", len(cmds))
	return nil
}
