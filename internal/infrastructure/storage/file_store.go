package storage

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"voicepage/internal/domain/audio"
)

// FileStore saves audio bytes to local directory (default audio/).
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "audio"
	}
	return &FileStore{Dir: dir}
}

// Save writes data to {dir}/{fileName}{ext} and returns the path.
func (fs *FileStore) Save(data []byte, fileName string, format audio.Format) (audio.Path, error) {
	name, err := sanitizeFilename(fileName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create audio dir")
	}
	path := filepath.Join(fs.Dir, name+format.Ext())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write audio file")
	}
	return audio.Path(path), nil
}

// Load reads {dir}/{fileName}{ext}.
func (fs *FileStore) Load(fileName string, format audio.Format) ([]byte, error) {
	name, err := sanitizeFilename(fileName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(fs.Dir, name+format.Ext()))
	if err != nil {
		return nil, errors.Wrap(err, "read audio file")
	}
	return data, nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"\x00", "_",
)

// sanitizeFilename replaces characters that are invalid in filenames and
// caps the name at 100 runes.
func sanitizeFilename(s string) (string, error) {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	safe := filenameReplacer.Replace(s)
	if runes := []rune(safe); len(runes) > 100 {
		safe = string(runes[:100])
	}
	safe = strings.TrimSpace(safe)
	if safe == "" || strings.Trim(safe, ".") == "" {
		return "", errors.Errorf("invalid file name %q", s)
	}
	return safe, nil
}
