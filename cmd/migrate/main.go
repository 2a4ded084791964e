// Command migrate walks a local directory tree and streams each file to
// a destination host:port through the connection pool, appending a
// "blobId|<id>|source|<path>" record to a migration log for every file sent.
//
// It is a sample client of the pool, without any blob-store or
// coordinator machinery: this tool only proves out the pool's
// checkout/checkin contract end to end.
package main

import (
	"context"
	"database/sql"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"connpool/pkg/config"
	"connpool/pkg/logger"
	"connpool/pkg/pool"
)

func main() {
	rootDir := flag.String("root", "", "root directory to migrate")
	prefix := flag.String("prefix", "", "only descend into directories starting with this prefix")
	destHost := flag.String("host", "", "destination host")
	destPort := flag.Int("port", 0, "destination port")
	secure := flag.Bool("secure", false, "mark the destination port as secure")
	logPath := flag.String("log", "migration.log", "path to the migration log file")
	logDSN := flag.String("log-dsn", "", "optional MySQL DSN; when set, migration records are written to the migration_log table instead of -log")
	timeout := flag.Duration("timeout", 5*time.Second, "checkout timeout per file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger.Init(logger.LogLevel(*logLevel), "text")
	log := logger.Get()

	if *rootDir == "" || *destHost == "" || *destPort == 0 {
		fmt.Fprintln(os.Stderr, "usage: migrate -root <dir> -host <host> -port <port> [-prefix p] [-log path] [-log-dsn dsn]")
		os.Exit(2)
	}

	recorder, err := newMigrationRecorder(*logPath, *logDSN)
	if err != nil {
		log.ErrorWithErr("failed to open migration log", err)
		os.Exit(1)
	}
	defer recorder.Close()

	cfg := config.DefaultConfig()
	cp := pool.New(cfg.Pool)
	cp.Start()
	defer cp.Shutdown()

	port := pool.PortNumber{Port: *destPort, Secure: *secure}
	walker := &migrationWalker{
		pool:     cp,
		host:     *destHost,
		port:     port,
		timeout:  *timeout,
		recorder: recorder,
		log:      log,
	}
	walker.directoryWalk(*rootDir, *prefix, *prefix == "")
}

type migrationWalker struct {
	pool     *pool.ConnectionPool
	host     string
	port     pool.PortNumber
	timeout  time.Duration
	recorder *migrationRecorder
	log      *logger.Logger
}

// directoryWalk mirrors MigrationTool.directoryWalk: recurse into
// directories matching prefix (once matched, descend unconditionally),
// and migrate every file found along the way.
func (w *migrationWalker) directoryWalk(path, prefix string, ignorePrefix bool) {
	entries, err := os.ReadDir(path)
	if err != nil {
		w.log.ErrorWithErr("failed to list directory", err, "path", path)
		return
	}

	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			if ignorePrefix || strings.HasPrefix(entry.Name(), prefix) {
				w.directoryWalk(full, prefix, true)
			}
			continue
		}
		w.migrateFile(full)
	}
}

func (w *migrationWalker) migrateFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.log.ErrorWithErr("failed to read file", err, "path", path)
		return
	}

	ctx := context.Background()
	conn, err := w.pool.Checkout(ctx, w.host, w.port, w.timeout)
	if err != nil {
		w.log.ErrorWithErr("checkout failed", err, "path", path)
		return
	}

	id, sendErr := sendBlob(conn, path, data)
	if sendErr != nil {
		w.log.ErrorWithErr("send failed, destroying connection", sendErr, "path", path)
		_ = w.pool.Destroy(conn)
		return
	}

	if err := w.pool.Checkin(conn); err != nil {
		w.log.ErrorWithErr("checkin failed", err, "path", path)
	}

	if err := w.recorder.record(id, path); err != nil {
		w.log.ErrorWithErr("failed to write migration record", err, "path", path)
	}
}

// sendBlob writes a minimal length-prefixed frame: an 8-byte big-endian
// body length followed by the file bytes. The pool itself never
// interprets this framing; it is just enough for the sample tool to be
// meaningful.
func sendBlob(conn pool.Connection, path string, data []byte) (string, error) {
	header := make([]byte, 8)
	binary.BigEndian.PutUint64(header, uint64(len(data)))

	if _, err := conn.Send(header); err != nil {
		return "", err
	}
	if _, err := conn.Send(data); err != nil {
		return "", err
	}

	ack := make([]byte, 64)
	n, err := conn.Receive(ack)
	if err != nil {
		return "", err
	}
	return string(ack[:n]), nil
}

// migrationRecorder appends "blobId|<id>|source|<path>" records to a flat
// file (the default) or, when a DSN is supplied, rows to a MySQL table using
// a minimal database/sql setup with a blank-imported driver.
type migrationRecorder struct {
	file *os.File
	db   *sql.DB
}

func newMigrationRecorder(logPath, dsn string) (*migrationRecorder, error) {
	if dsn != "" {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS migration_log (
			blob_id VARCHAR(255) NOT NULL,
			source_path TEXT NOT NULL,
			migrated_at BIGINT NOT NULL
		)`); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &migrationRecorder{db: db}, nil
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &migrationRecorder{file: f}, nil
}

func (r *migrationRecorder) record(blobID, sourcePath string) error {
	if r.db != nil {
		_, err := r.db.Exec(`INSERT INTO migration_log (blob_id, source_path, migrated_at) VALUES (?, ?, ?)`,
			blobID, sourcePath, time.Now().Unix())
		return err
	}
	_, err := fmt.Fprintf(r.file, "blobId|%s|source|%s\n", blobID, sourcePath)
	return err
}

func (r *migrationRecorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return r.file.Close()
}
