package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"hitstertrainer/internal/core"
)

const (
	// TimestampLayout is used in the data file header and save results
	TimestampLayout = "2006-01-02 15:04:05"
	// backupLayout names backup files, e.g. hitster-songs-2024-03-01-142501.js
	backupLayout = "2006-01-02-150405"
	// NoBackup is reported when there was no previous file to back up
	NoBackup = "none"

	dirPermission  = 0o755
	filePermission = 0o644

	songsVariable = "hitsterSongs"
)

var (
	// ErrNoSongArray is returned when the data file holds no song array
	ErrNoSongArray = errors.New("no song array found")

	lineCommentRegex   = regexp.MustCompile(`(?m)^\s*//.*$`)
	trailingCommaRegex = regexp.MustCompile(`,(\s*[\]}])`)
	declarationRegex   = regexp.MustCompile(`(?:const|let|var)\s+` + songsVariable + `\s*=`)
)

// songRecord mirrors core.Song for the object-literal form of the data file.
type songRecord struct {
	Artist              string `yaml:"artist"`
	Title               string `yaml:"title"`
	Year                int    `yaml:"year"`
	TrackID             string `yaml:"spotifyId"`
	PreviewURL          string `yaml:"previewUrl"`
	SecondaryPreviewURL string `yaml:"deezerPreviewUrl"`
}

type SaveResult struct {
	SongCount int    `json:"songCount"`
	Backup    string `json:"backup"`
	Timestamp string `json:"timestamp"`
}

// SongStore owns the songs data file. Saves are serialized; readers get a copy
// of the last loaded or saved list.
type SongStore struct {
	path      string
	backupDir string
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.RWMutex
	songs []core.Song
}

func NewSongStore(config *core.StoreConfig, logger *zap.Logger) *SongStore {
	return &SongStore{
		path:      config.SongsPath,
		backupDir: config.BackupDir,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *SongStore) Path() string {
	return s.path
}

// Load reads the data file and caches its songs.
func (s *SongStore) Load() ([]core.Song, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read songs file: %w", err)
	}

	songs, err := ParseSongs(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.songs = songs
	s.mu.Unlock()

	s.logger.Info("Loaded songs",
		zap.String("path", s.path),
		zap.Int("count", len(songs)))

	return cloneSongs(songs), nil
}

// Songs returns the cached list, loading the file on first use.
func (s *SongStore) Songs() ([]core.Song, error) {
	s.mu.RLock()
	songs := s.songs
	s.mu.RUnlock()

	if songs == nil {
		return s.Load()
	}
	return cloneSongs(songs), nil
}

// Save replaces the data file. The previous file, when there is one, is
// copied into the backup directory first.
func (s *SongStore) Save(songs []core.Song) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	backup := NoBackup
	if _, err := os.Stat(s.path); err == nil {
		if err := os.MkdirAll(s.backupDir, dirPermission); err != nil {
			return nil, fmt.Errorf("creating backup directory: %w", err)
		}
		backup = "hitster-songs-" + now.Format(backupLayout) + ".js"
		if err := copyFile(s.path, filepath.Join(s.backupDir, backup)); err != nil {
			return nil, fmt.Errorf("backing up songs file: %w", err)
		}
	}

	content, err := RenderSongs(songs, now)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(s.path, content, filePermission); err != nil {
		return nil, err
	}

	s.songs = cloneSongs(songs)
	if s.songs == nil {
		s.songs = []core.Song{}
	}

	s.logger.Info("Saved songs",
		zap.String("path", s.path),
		zap.Int("count", len(songs)),
		zap.String("backup", backup))

	return &SaveResult{
		SongCount: len(songs),
		Backup:    backup,
		Timestamp: now.Format(TimestampLayout),
	}, nil
}

// RenderSongs produces the data file: a comment header followed by the songs
// as a pretty-printed JSON array.
func RenderSongs(songs []core.Song, updated time.Time) ([]byte, error) {
	if songs == nil {
		songs = []core.Song{}
	}

	var array bytes.Buffer
	encoder := json.NewEncoder(&array)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(songs); err != nil {
		return nil, fmt.Errorf("failed to encode songs: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("// Hitster Songs Database\n")
	out.WriteString("// Last updated: " + updated.Format(TimestampLayout) + "\n")
	out.WriteString("const " + songsVariable + " = ")
	out.Write(bytes.TrimRight(array.Bytes(), "\n"))
	out.WriteString(";\n")
	return out.Bytes(), nil
}

// ParseSongs extracts the song array from a data file. Both the generated JSON
// form and hand-written object literals with unquoted keys are accepted.
func ParseSongs(data []byte) ([]core.Song, error) {
	start := 0
	if loc := declarationRegex.FindIndex(data); loc != nil {
		start = loc[1]
	}

	open := bytes.IndexByte(data[start:], '[')
	end := bytes.LastIndexByte(data, ']')
	if open < 0 || end < start+open {
		return nil, ErrNoSongArray
	}
	array := data[start+open : end+1]

	array = bytes.ReplaceAll(array, []byte("\t"), []byte("    "))
	array = lineCommentRegex.ReplaceAll(array, nil)
	array = trailingCommaRegex.ReplaceAll(array, []byte("$1"))

	var records []songRecord
	if err := yaml.Unmarshal(array, &records); err != nil {
		return nil, fmt.Errorf("invalid song array: %w", err)
	}

	songs := make([]core.Song, 0, len(records))
	for _, r := range records {
		songs = append(songs, core.Song{
			Artist:              r.Artist,
			Title:               r.Title,
			Year:                r.Year,
			TrackID:             r.TrackID,
			PreviewURL:          r.PreviewURL,
			SecondaryPreviewURL: r.SecondaryPreviewURL,
		})
	}
	return songs, nil
}

func cloneSongs(songs []core.Song) []core.Song {
	if songs == nil {
		return nil
	}
	return append([]core.Song(nil), songs...)
}

// writeFileAtomic writes data to <target>.tmp, moves the current file to
// <target>.bak, renames the temp file into place and drops the .bak.
func writeFileAtomic(target string, data []byte, perm os.FileMode) error {
	tmpPath := target + ".tmp"
	bakPath := target + ".bak"

	if err := os.MkdirAll(filepath.Dir(target), dirPermission); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if _, err := os.Stat(target); err == nil {
		if err := renameSafe(target, bakPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("backing up existing file: %w", err)
		}
	}

	if err := renameSafe(tmpPath, target); err != nil {
		if _, bakErr := os.Stat(bakPath); bakErr == nil {
			_ = renameSafe(bakPath, target)
		}
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp to target: %w", err)
	}

	_ = os.Remove(bakPath)
	return nil
}

// renameSafe falls back to copy+delete when rename fails across devices.
func renameSafe(oldPath, newPath string) error {
	err := os.Rename(oldPath, newPath)
	if err == nil {
		return nil
	}
	if copyErr := copyFile(oldPath, newPath); copyErr != nil {
		return fmt.Errorf("copy fallback: %w (rename error: %w)", copyErr, err)
	}
	_ = os.Remove(oldPath)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return err
	}
	return out.Close()
}
