package movies

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bi0dread/qfilter"
	"github.com/bi0dread/qfilter/internal/config"
)

// OpenSQLite opens the catalogue database, creating and seeding it when the
// movies table is empty.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err := Seed(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Seed migrates the movies table and loads Sample into it if it is empty.
func Seed(db *gorm.DB) error {
	if err := db.AutoMigrate(&Movie{}); err != nil {
		return errors.Wrap(err, "migrate movies")
	}
	var n int64
	if err := db.Model(&Movie{}).Count(&n).Error; err != nil {
		return errors.Wrap(err, "count movies")
	}
	if n > 0 {
		return nil
	}
	return errors.Wrap(db.CreateInBatches(Sample(), 100).Error, "insert sample movies")
}

// Open builds the configured store. The returned close function releases
// whatever connection the store holds.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (qfilter.Store[Movie], func() error, error) {
	switch cfg.Driver {
	case "", "memory":
		return qfilter.NewMemoryStore(Sample()), func() error { return nil }, nil

	case "sqlite":
		db, err := OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, errors.Wrap(err, "sqlite handle")
		}
		return qfilter.NewGormStore[Movie](db, log), sqlDB.Close, nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect mongo")
		}
		coll := client.Database(cfg.Database).Collection("movies")
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return qfilter.NewMongoStore[Movie](coll, nil, log), closeFn, nil

	case "redis":
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, nil, errors.Wrap(err, "parse redis url")
		}
		conn := qfilter.NewRediSearchConn(redis.NewClient(opts))
		return NewRediSearchStore(cfg.Index, conn, log), conn.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// RediSearchStore decodes hits of a movies index into Movie values. The
// index is expected to name its attributes after the table columns.
type RediSearchStore struct {
	inner *qfilter.RediSearchStore
}

func NewRediSearchStore(index string, exec qfilter.Executor, log *slog.Logger) *RediSearchStore {
	return &RediSearchStore{inner: qfilter.NewRediSearchStore(index, exec, log)}
}

func (s *RediSearchStore) Find(ctx context.Context, f *qfilter.Filter) ([]Movie, error) {
	hits, err := s.inner.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]Movie, 0, len(hits))
	for _, h := range hits {
		out = append(out, movieFromHash(h))
	}
	return out, nil
}

// movieFromHash fills a Movie from a hash; unparsable numbers stay zero.
func movieFromHash(h map[string]string) Movie {
	m := Movie{
		Title:            h["Title"],
		Overview:         h["Overview"],
		OriginalLanguage: h["Original_Language"],
		Genre:            h["Genre"],
		PosterURL:        h["Poster_Url"],
	}
	if n, err := strconv.ParseInt(h["id"], 10, 16); err == nil {
		m.ID = int16(n)
	}
	if n, err := strconv.ParseInt(h["Vote_Count"], 10, 16); err == nil {
		m.VoteCount = int16(n)
	}
	m.Popularity, _ = strconv.ParseFloat(h["Popularity"], 64)
	m.VoteAverage, _ = strconv.ParseFloat(h["Vote_Average"], 64)
	if sec, err := strconv.ParseInt(h["Release_Date"], 10, 64); err == nil {
		t := time.Unix(sec, 0).UTC()
		m.ReleaseDate = &t
	}
	return m
}
