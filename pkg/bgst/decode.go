package bgst

import (
	"fmt"
	"image"
	"path/filepath"
	"runtime"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/errgroup"

	"github.com/goopsie/quiltFileTools/pkg/texture"
)

// ImageCache holds decoded tiles keyed by blob content, so identical blobs
// across files or reloads are decompressed once.
type ImageCache struct {
	cache *ristretto.Cache[uint64, image.Image]
}

// NewImageCache creates a cache bounded to maxCost bytes of decoded pixels.
func NewImageCache(maxCost int64) (*ImageCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[uint64, image.Image]{
		NumCounters: 10 * (maxCost/tileCost + 1),
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	return &ImageCache{cache: c}, nil
}

// decoded RGBA tile
const tileCost = TileSize * TileSize * 4

// Key returns the cache key for a blob decoded as format.
func (c *ImageCache) Key(blob []byte, format texture.Format) uint64 {
	d := xxhash.New()
	_, _ = d.Write(blob)
	_, _ = d.Write([]byte{byte(format)})
	return d.Sum64()
}

// Get returns the cached image for key.
func (c *ImageCache) Get(key uint64) (image.Image, bool) {
	return c.cache.Get(key)
}

// Set stores img under key. Admission is asynchronous; call Wait to flush.
func (c *ImageCache) Set(key uint64, img image.Image) {
	c.cache.Set(key, img, tileCost)
}

// Wait blocks until pending Sets are applied.
func (c *ImageCache) Wait() { c.cache.Wait() }

// Close releases the cache.
func (c *ImageCache) Close() { c.cache.Close() }

// DecodeOption configures DecodeImages.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	workers int
	format  texture.Format
	cache   *ImageCache
}

// WithWorkers sets the number of concurrent decoders.
func WithWorkers(n int) DecodeOption {
	return func(c *decodeConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFormat sets the texture format blobs are decoded as. The default is CMPR.
func WithFormat(f texture.Format) DecodeOption {
	return func(c *decodeConfig) {
		c.format = f
	}
}

// WithCache reuses decoded tiles from cache and stores new ones in it.
func WithCache(cache *ImageCache) DecodeOption {
	return func(c *decodeConfig) {
		c.cache = cache
	}
}

// DecodeImages decompresses every image of f on a fixed-size worker pool.
// The result is indexed like f.Images. f must not be mutated until it returns.
func DecodeImages(f *File, codec texture.Codec, opts ...DecodeOption) ([]image.Image, error) {
	cfg := decodeConfig{
		workers: runtime.NumCPU(),
		format:  texture.CMPR,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]image.Image, len(f.Images))

	var g errgroup.Group
	g.SetLimit(cfg.workers)
	for i, blob := range f.Images {
		i, blob := i, blob
		g.Go(func() error {
			img, err := decodeOne(blob, codec, &cfg)
			if err != nil {
				return fmt.Errorf("decode image %d: %w", i, err)
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.cache != nil {
		cfg.cache.Wait()
	}
	return out, nil
}

func decodeOne(blob []byte, codec texture.Codec, cfg *decodeConfig) (image.Image, error) {
	var key uint64
	if cfg.cache != nil {
		key = cfg.cache.Key(blob, cfg.format)
		if img, ok := cfg.cache.Get(key); ok {
			return img, nil
		}
	}

	img, err := codec.Decode(blob, TileSize, TileSize, cfg.format)
	if err != nil {
		return nil, err
	}

	if cfg.cache != nil {
		cfg.cache.Set(key, img)
	}
	return img, nil
}

// ExportImages decodes every image of f and writes it to dir as NNN.png.
func ExportImages(f *File, codec texture.Codec, dir string, opts ...DecodeOption) error {
	imgs, err := DecodeImages(f, codec, opts...)
	if err != nil {
		return err
	}
	for i, img := range imgs {
		if err := texture.SavePNG(filepath.Join(dir, fmt.Sprintf("%03d.png", i)), img); err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
	}
	return nil
}
