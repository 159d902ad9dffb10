package score

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileConfig holds options for FileStore.
type FileConfig struct {
	FilePath         string
	AutoSaveInterval time.Duration
	BackupCount      int // number of backup files to keep
}

// DefaultFileConfig returns the default configuration for path.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		FilePath:         path,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
	}
}

type fileRow struct {
	Record
	Seq int64 `json:"seq"` // insertion order, used to break ties
}

type fileImage struct {
	NextSeq int64               `json:"next_seq"`
	Scores  map[string]*fileRow `json:"scores"`
}

// FileStore keeps scores in memory and persists them as JSON.
type FileStore struct {
	cfg FileConfig

	mu           sync.RWMutex
	rows         map[string]*fileRow
	nextSeq      int64
	lastChecksum string

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// OpenFile opens a JSON score file with default settings.
func OpenFile(path string) (*FileStore, error) {
	return OpenFileWithConfig(DefaultFileConfig(path))
}

// OpenFileWithConfig opens or creates the score file described by cfg.
func OpenFileWithConfig(cfg FileConfig) (*FileStore, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	fs := &FileStore{
		cfg:  cfg,
		rows: make(map[string]*fileRow),
		done: make(chan struct{}),
	}

	switch _, err := os.Stat(cfg.FilePath); {
	case os.IsNotExist(err):
		if err := fs.save(); err != nil {
			return nil, fmt.Errorf("create score file: %w", err)
		}
	case err == nil:
		if err := fs.load(); err != nil {
			return nil, fmt.Errorf("load score file: %w", err)
		}
	default:
		return nil, fmt.Errorf("stat score file: %w", err)
	}

	if cfg.AutoSaveInterval > 0 {
		fs.wg.Add(1)
		go fs.autoSave()
	}
	return fs, nil
}

// RecordOutcome applies one outcome and writes the file through. When the
// write fails the in-memory row keeps the update, the error is returned and
// the next save retries it.
func (fs *FileStore) RecordOutcome(ctx context.Context, user string, outcome Outcome, stolen bool, size int) (Record, error) {
	key, err := validateWrite(user, outcome, size)
	if err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	row, ok := fs.rows[key]
	if !ok {
		fs.nextSeq++
		row = &fileRow{Record: Record{User: key}, Seq: fs.nextSeq}
		fs.rows[key] = row
	}
	row.apply(outcome, stolen, size)
	if err := fs.saveLocked(); err != nil {
		return row.Record, fmt.Errorf("save score file: %w", err)
	}
	return row.Record, nil
}

// Score returns one counter for user, or ErrNotFound.
func (fs *FileStore) Score(ctx context.Context, user string, kind Kind) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	rec, err := fs.Get(ctx, user)
	if err != nil {
		return 0, err
	}
	return rec.Value(kind), nil
}

// Get returns the whole row for user, or ErrNotFound.
func (fs *FileStore) Get(_ context.Context, user string) (Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	row, ok := fs.rows[NormalizeUser(user)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return row.Record, nil
}

// TopScores returns the n highest values of kind, ties in insertion order.
func (fs *FileStore) TopScores(_ context.Context, kind Kind, n int) ([]Entry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	fs.mu.RLock()
	rows := make([]*fileRow, 0, len(fs.rows))
	for _, r := range fs.rows {
		cp := *r
		rows = append(rows, &cp)
	}
	fs.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		vi, vj := rows[i].Value(kind), rows[j].Value(kind)
		if vi != vj {
			return vi > vj
		}
		return rows[i].Seq < rows[j].Seq
	})

	n = ClampTop(n)
	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{User: r.User, Value: r.Value(kind)})
	}
	return out, nil
}

// Flush writes pending changes to disk immediately.
func (fs *FileStore) Flush() error {
	return fs.save()
}

// Close stops the autosave loop and performs a final save.
func (fs *FileStore) Close() error {
	var err error
	fs.closeOnce.Do(func() {
		close(fs.done)
		fs.wg.Wait()
		err = fs.save()
	})
	return err
}

func (fs *FileStore) autoSave() {
	defer fs.wg.Done()

	ticker := time.NewTicker(fs.cfg.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fs.done:
			return
		case <-ticker.C:
			if err := fs.save(); err != nil {
				log.Printf("[WARN] score file autosave failed: %v", err)
			}
		}
	}
}

// save writes the image atomically when it changed since the last save.
func (fs *FileStore) save() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.saveLocked()
}

// saveLocked holds fs.mu from marshal through rename, so saves land in order.
func (fs *FileStore) saveLocked() error {
	data, err := json.MarshalIndent(fileImage{NextSeq: fs.nextSeq, Scores: fs.rows}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	sum := checksum(data)
	if sum == fs.lastChecksum {
		return nil
	}

	if fs.cfg.BackupCount > 0 {
		if err := fs.backup(); err != nil {
			log.Printf("[WARN] score file backup failed: %v", err)
		}
	}
	if err := writeFileAtomic(fs.cfg.FilePath, data); err != nil {
		return err
	}

	written, err := os.ReadFile(fs.cfg.FilePath)
	if err != nil {
		return fmt.Errorf("read back score file: %w", err)
	}
	if checksum(written) != sum {
		return errors.New("score file checksum mismatch")
	}

	fs.lastChecksum = sum
	return nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.cfg.FilePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var img fileImage
	if err := json.Unmarshal(data, &img); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.rows = make(map[string]*fileRow, len(img.Scores))
	for k, r := range img.Scores {
		if r == nil {
			continue
		}
		key := NormalizeUser(k)
		r.User = key
		fs.rows[key] = r
		if r.Seq > img.NextSeq {
			img.NextSeq = r.Seq
		}
	}
	fs.nextSeq = img.NextSeq
	fs.lastChecksum = checksum(data)
	return nil
}

// backup copies the current file to a timestamped sibling and prunes old copies.
func (fs *FileStore) backup() error {
	src, err := os.Open(fs.cfg.FilePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	name := fmt.Sprintf("%s.backup.%s", fs.cfg.FilePath, time.Now().Format("20060102_150405.000"))
	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	matches, err := filepath.Glob(fs.cfg.FilePath + ".backup.*")
	if err != nil || len(matches) <= fs.cfg.BackupCount {
		return nil
	}
	// timestamped names sort oldest first
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-fs.cfg.BackupCount] {
		os.Remove(old)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
