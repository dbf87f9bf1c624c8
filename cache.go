package nextconvert

import (
	"database/sql"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Cache stores the encoded outputs of previous jobs in a sqlite database,
// keyed by a hash of the job inputs and options. Outputs are compressed with
// zstd.
type Cache struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCache opens or creates the cache database in file.
func NewCache(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer, share one connection between workers
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS job (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS output (job_id INTEGER NOT NULL, name TEXT NOT NULL, data BLOB NOT NULL, UNIQUE(job_id, name), FOREIGN KEY(job_id) REFERENCES job(id))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Cache{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

// Get returns the outputs stored under key, or nil if there are none.
func (c *Cache) Get(key string) (map[string][]byte, error) {
	var id int64
	switch err := c.db.QueryRow("SELECT id FROM job WHERE sha1 = ?", key).Scan(&id); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}

	rows, err := c.db.Query("SELECT name, data FROM output WHERE job_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outputs := make(map[string][]byte)
	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, err
		}
		if outputs[name], err = c.dec.DecodeAll(data, nil); err != nil {
			return nil, errors.Wrapf(err, "cache entry %s output %s", key, name)
		}
	}

	return outputs, rows.Err()
}

// Put stores outputs under key. An existing entry is left alone.
func (c *Cache) Put(key string, outputs map[string][]byte) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	switch err := tx.QueryRow("SELECT id FROM job WHERE sha1 = ?", key).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO job (sha1) VALUES (?)", key)
		if err != nil {
			return err
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}
	case nil:
		return nil
	default:
		return err
	}

	for name, data := range outputs {
		if _, err := tx.Exec("INSERT INTO output (job_id, name, data) VALUES (?, ?, ?)", id, name, c.enc.EncodeAll(data, nil)); err != nil {
			return err
		}
	}

	return tx.Commit()
}
