package tracks

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

//cacheVersion changes whenever the on disk layout of a cached store changes
const cacheVersion = 1

//ErrCacheMiss is returned by Cache.Load when no cache file exists for a key
var ErrCacheMiss = errors.New("track cache miss")

//ErrCacheStale is returned by Cache.Load when a cache file exists but was produced for something else
var ErrCacheStale = errors.New("track cache is stale")

var cacheNamespace = uuid.MustParse("6f1c7f52-3f0e-4b8e-9a57-4d1c2b0e8a11")

//CacheKey identifies the inputs a store was computed from
type CacheKey struct {
	Video  string //content digest of the input video
	Model  string
	Frames int
}

//ID returns a stable identifier derived from every field of the key
func (k CacheKey) ID() uuid.UUID {
	return uuid.NewSHA1(cacheNamespace, []byte(fmt.Sprintf("%s|%s|%d", k.Video, k.Model, k.Frames)))
}

//VideoDigest returns the hex sha256 of a file's content
func VideoDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

//Cache stores computed track stores as compressed files in a directory
type Cache struct {
	Dir string
}

type cachedBall struct {
	Present bool
	Record  Record
}

type cacheEnvelope struct {
	Version  int
	Key      CacheKey
	Players  []map[int]*Record
	Referees []map[int]*Record
	Ball     []cachedBall
}

//Path returns the file a key is cached at
func (c *Cache) Path(key CacheKey) string {
	return filepath.Join(c.Dir, key.ID().String()+".trk")
}

//Load reads the store cached for key and checks it still fits a video of frames frames
func (c *Cache) Load(key CacheKey, frames int) (*Store, error) {
	f, err := os.Open(c.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheStale, err)
	}
	defer dec.Close()

	var env cacheEnvelope
	if err := gob.NewDecoder(dec).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCacheStale, c.Path(key), err)
	}

	if env.Version != cacheVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrCacheStale, env.Version, cacheVersion)
	}
	if env.Key != key {
		return nil, fmt.Errorf("%w: cached for %+v", ErrCacheStale, env.Key)
	}

	store := env.store()
	if err := store.Validate(frames); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheStale, err)
	}
	return store, nil
}

//Save writes store under key, replacing any previous file atomically
func (c *Cache) Save(key CacheKey, store *Store) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.Dir, "tracks-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return err
	}

	if err := gob.NewEncoder(enc).Encode(newEnvelope(key, store)); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("encoding tracks: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), c.Path(key))
}

func newEnvelope(key CacheKey, s *Store) cacheEnvelope {
	env := cacheEnvelope{
		Version:  cacheVersion,
		Key:      key,
		Players:  s.Players,
		Referees: s.Referees,
		Ball:     make([]cachedBall, len(s.Ball)),
	}
	//gob refuses nil slice elements, missing balls are flagged instead
	for i, r := range s.Ball {
		if r != nil {
			env.Ball[i] = cachedBall{Present: true, Record: *r}
		}
	}
	return env
}

func (env cacheEnvelope) store() *Store {
	s := &Store{
		Players:  env.Players,
		Referees: env.Referees,
		Ball:     make([]*Record, len(env.Ball)),
	}
	for i, b := range env.Ball {
		if b.Present {
			r := b.Record
			s.Ball[i] = &r
		}
	}
	for i := range s.Players {
		if s.Players[i] == nil {
			s.Players[i] = make(map[int]*Record)
		}
	}
	for i := range s.Referees {
		if s.Referees[i] == nil {
			s.Referees[i] = make(map[int]*Record)
		}
	}
	return s
}
