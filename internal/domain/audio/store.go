package audio

import "context"

// Path is the saved location of audio file (local path or URL).
type Path string

// Store persists synthesized audio.
type Store interface {
	// Save persists data under the given file name (without extension) and returns the saved path.
	Save(data []byte, fileName string, format Format) (Path, error)
	// Load reads back audio previously saved with Save.
	Load(fileName string, format Format) ([]byte, error)
}

// Cache keeps synthesized audio keyed by an opaque string.
// A miss is reported as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}
