package sqlconnect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/books-crud/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Pools holds the primary and replica handles. When no replica is
// configured Read and Write are the same *sql.DB.
type Pools struct {
	Read  *sql.DB
	Write *sql.DB
}

// Connect opens and pings the write pool, then the read pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*Pools, error) {
	write, err := open(ctx, cfg, cfg.WriteURL)
	if err != nil {
		return nil, fmt.Errorf("connect write db: %w", err)
	}
	if cfg.ReadURL == "" || cfg.ReadURL == cfg.WriteURL {
		return &Pools{Read: write, Write: write}, nil
	}
	read, err := open(ctx, cfg, cfg.ReadURL)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("connect read db: %w", err)
	}
	return &Pools{Read: read, Write: write}, nil
}

func open(ctx context.Context, cfg config.DBConfig, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

func (p *Pools) Close() error {
	if p.Read == p.Write {
		return p.Write.Close()
	}
	return errors.Join(p.Read.Close(), p.Write.Close())
}
