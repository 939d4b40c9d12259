package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// Persistence defines the persistence contract for the overlay catalog and
// the raw active-pair record.
type Persistence interface {
	Overlays(ctx context.Context) []*overlay.Overlay
	Themes(ctx context.Context) []*overlay.Theme
	StoreOverlay(o *overlay.Overlay) error
	DeleteOverlay(id string) error
	StoreTheme(t *overlay.Theme) error
	DeleteTheme(id string) error
	Catalog() (Catalog, error)
	SaveCatalog(c Catalog) error
	ActiveRecord() ([]byte, error)
	StoreActiveRecord(data []byte) error
	EraseActiveRecord() error
	StoreAsset(name string, data []byte) (string, error)
	AssetDir() string
	Watch(ctx context.Context) (<-chan Event, error)
}

// Catalog holds list order and the process-wide active theme.
type Catalog struct {
	Overlays      []string `json:"overlays"`
	Themes        []string `json:"themes"`
	ActiveThemeID string   `json:"activeThemeId,omitempty"`
	Seeded        bool     `json:"seeded,omitempty"`
}

const (
	bucketOverlays = "overlays"
	bucketThemes   = "themes"
	bucketActive   = "active"
	bucketAssets   = "assets"

	activeKeyName = "current"
	catalogFile   = ".catalog.json"
	tempDir       = ".tmp"
)

var ErrNotFound = errors.New("store: not found")

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		TempDir:           filepath.Join(basePath, tempDir),
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		// Other processes write the same files, so nothing is cached.
		CacheSizeMax: 0,
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) keys(ctx context.Context, bucket string) []string {
	var out []string
	for key := range p.d.Keys(ctx.Done()) {
		if b, _ := splitKey(key); b == bucket {
			out = append(out, key)
		}
	}
	return out
}

func (p *persistence) Overlays(ctx context.Context) []*overlay.Overlay {
	all := make([]*overlay.Overlay, 0)
	for _, key := range p.keys(ctx, bucketOverlays) {
		val, err := p.d.Read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		o := &overlay.Overlay{}
		if err := json.Unmarshal(val, o); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		_, o.ID = splitKey(key)
		all = append(all, o)
	}
	cat, _ := p.Catalog()
	sortByOrder(all, cat.Overlays, func(o *overlay.Overlay) string { return o.ID })
	return all
}

func (p *persistence) Themes(ctx context.Context) []*overlay.Theme {
	all := make([]*overlay.Theme, 0)
	for _, key := range p.keys(ctx, bucketThemes) {
		val, err := p.d.Read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		t := &overlay.Theme{}
		if err := json.Unmarshal(val, t); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		_, t.ID = splitKey(key)
		all = append(all, t)
	}
	cat, _ := p.Catalog()
	sortByOrder(all, cat.Themes, func(t *overlay.Theme) string { return t.ID })
	return all
}

func (p *persistence) StoreOverlay(o *overlay.Overlay) error {
	if o == nil || o.ID == "" {
		return errors.New("store: overlay id required")
	}
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return p.write(toKey(bucketOverlays, o.ID), data)
}

func (p *persistence) DeleteOverlay(id string) error {
	return p.erase(toKey(bucketOverlays, id))
}

func (p *persistence) StoreTheme(t *overlay.Theme) error {
	if t == nil || t.ID == "" {
		return errors.New("store: theme id required")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return p.write(toKey(bucketThemes, t.ID), data)
}

func (p *persistence) DeleteTheme(id string) error {
	return p.erase(toKey(bucketThemes, id))
}

// ActiveRecord returns the raw active-pair record, or nil when absent.
func (p *persistence) ActiveRecord() ([]byte, error) {
	key := toKey(bucketActive, activeKeyName)
	if !p.d.Has(key) {
		return nil, nil
	}
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read active record: %w", err)
	}
	return val, nil
}

func (p *persistence) StoreActiveRecord(data []byte) error {
	if len(data) == 0 {
		return p.EraseActiveRecord()
	}
	return p.write(toKey(bucketActive, activeKeyName), data)
}

// EraseActiveRecord deletes the record. Erasing an absent record is a no-op.
func (p *persistence) EraseActiveRecord() error {
	key := toKey(bucketActive, activeKeyName)
	if !p.d.Has(key) {
		return nil
	}
	if err := p.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: erase active record: %w", err)
	}
	return nil
}

// StoreAsset saves an uploaded image under the assets bucket and returns its
// absolute path. Names are reduced to a safe base name.
func (p *persistence) StoreAsset(name string, data []byte) (string, error) {
	name = sanitizeAssetName(name)
	if name == "" {
		return "", errors.New("store: asset name required")
	}
	if err := p.write(toKey(bucketAssets, name), data); err != nil {
		return "", err
	}
	return filepath.Join(p.AssetDir(), name), nil
}

// AssetDir is where uploaded images live.
func (p *persistence) AssetDir() string {
	return filepath.Join(p.basePath, bucketAssets)
}

func sanitizeAssetName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
}

func (p *persistence) write(key string, data []byte) error {
	if err := p.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (p *persistence) erase(key string) error {
	if !p.d.Has(key) {
		return ErrNotFound
	}
	if err := p.d.Erase(key); err != nil {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

func (p *persistence) catalogPath() string {
	return filepath.Join(p.basePath, catalogFile)
}

func (p *persistence) Catalog() (Catalog, error) {
	var cat Catalog
	data, err := os.ReadFile(p.catalogPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cat, nil
		}
		return cat, fmt.Errorf("store: read catalog: %w", err)
	}
	if len(data) == 0 {
		return cat, nil
	}
	if err := json.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("store: parse catalog: %w", err)
	}
	return cat, nil
}

func (p *persistence) SaveCatalog(c Catalog) error {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	path := p.catalogPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// sortByOrder orders items by their position in order; unknown ids go last,
// sorted by id.
func sortByOrder[T any](items []T, order []string, id func(T) string) {
	pos := make(map[string]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	sort.SliceStable(items, func(i, j int) bool {
		li, lok := pos[id(items[i])]
		ri, rok := pos[id(items[j])]
		switch {
		case lok && rok:
			return li < ri
		case lok:
			return true
		case rok:
			return false
		default:
			return id(items[i]) < id(items[j])
		}
	})
}

func keyToPathTransform(s string) *diskv.PathKey {
	bucket, name := splitKey(s)
	if bucket == "" {
		return &diskv.PathKey{FileName: name}
	}
	return &diskv.PathKey{
		Path:     []string{bucket},
		FileName: name,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

// toKey makes `bucket/id`
func toKey(bucket, id string) string {
	return fmt.Sprintf("%s/%s", bucket, id)
}

func splitKey(key string) (bucket, id string) {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return "", key
	}
	return key[:idx], key[idx+1:]
}
