package storage

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/cuemby/rokt/pkg/cryptox"
	"github.com/cuemby/rokt/pkg/log"
	"github.com/cuemby/rokt/pkg/metrics"
	"github.com/cuemby/rokt/pkg/record"
)

// DatasetType is a dataset's storage shape (§3).
type DatasetType string

const (
	TypeSimple DatasetType = "SIMPLE"
	TypeRotate DatasetType = "ROTATE"
)

// DatasetMeta is the catalog's per-dataset metadata record.
type DatasetMeta struct {
	Type       DatasetType
	File       string // hex-encoded ciphertext of the data file's plaintext name
	Size       int    // ROTATE only; bytes, parsed from e.g. "3Mo"
	NbRotation int    // ROTATE only
}

const (
	defaultRotateSize       = 3 * 1024 * 1024 // "3Mo"
	defaultRotateNbRotation = 2
)

// Status codes the catalog can fail with (§4.5, §4.6).
const (
	StatusOK                 = 0
	StatusUnknownDataset      = 567
	StatusAlreadyExists       = 10
	StatusBadFileNumberFormat = 12
	StatusCannotCreateFile    = 423
	StatusCannotDeleteFiles   = 457
)

// Catalog is the encrypted registry mapping plaintext dataset names to
// dataset metadata (C5).
type Catalog struct {
	fs     afero.Fs
	cipher *cryptox.Cipher

	root       string // <base>/shared/<enc("datas")>
	configPath string

	mu       sync.RWMutex
	datasets map[string]DatasetMeta
}

type catalogDoc struct {
	Datasets map[string]catalogEntry `json:"datasets"`
}

type catalogEntry struct {
	Type       string `json:"type"`
	File       string `json:"file"`
	Size       int    `json:"size,omitempty"`
	NbRotation int    `json:"nb_rotation,omitempty"`
}

// Open computes the encrypted database root, creates it if needed, and
// loads (or initialises) the catalog config file (§4.5).
func Open(fs afero.Fs, cipher *cryptox.Cipher, baseDir string) (*Catalog, error) {
	root := filepath.Join(baseDir, "shared", cipher.EncryptName("datas"))
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create database root: %w", err)
	}

	c := &Catalog{
		fs:         fs,
		cipher:     cipher,
		root:       root,
		configPath: filepath.Join(root, cipher.EncryptName("datasets.config.json")),
		datasets:   make(map[string]DatasetMeta),
	}

	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) load() error {
	release, err := acquireLock(c.fs, c.configPath)
	if err != nil {
		return fmt.Errorf("storage: lock catalog: %w", err)
	}
	defer release()

	exists, err := afero.Exists(c.fs, c.configPath)
	if err != nil {
		return fmt.Errorf("storage: stat catalog: %w", err)
	}
	if !exists {
		return c.persistLocked()
	}

	ciphertext, err := afero.ReadFile(c.fs, c.configPath)
	if err != nil {
		return fmt.Errorf("storage: read catalog: %w", err)
	}
	plaintext := c.cipher.Decrypt(ciphertext)

	doc, healed := decodeCatalogOrHeal(plaintext)
	if healed {
		metrics.RecordCorruptionHeal()
		log.Component("storage").Logger().Warn().Str("file", c.configPath).Msg("catalog corrupted, healed to empty registry")
	}

	c.datasets = make(map[string]DatasetMeta, len(doc.Datasets))
	for name, entry := range doc.Datasets {
		c.datasets[name] = DatasetMeta{
			Type:       DatasetType(entry.Type),
			File:       entry.File,
			Size:       entry.Size,
			NbRotation: entry.NbRotation,
		}
	}

	if healed {
		return c.persistLocked()
	}
	return nil
}

func decodeCatalogOrHeal(plaintext []byte) (catalogDoc, bool) {
	val, err := record.Parse(plaintext)
	if err != nil {
		return catalogDoc{Datasets: map[string]catalogEntry{}}, true
	}
	obj, ok := val.AsObject()
	if !ok {
		return catalogDoc{Datasets: map[string]catalogEntry{}}, true
	}
	datasetsRec, ok := obj.Get("datasets")
	if !ok {
		return catalogDoc{Datasets: map[string]catalogEntry{}}, true
	}
	datasetsObj, ok := datasetsRec.AsObject()
	if !ok {
		return catalogDoc{Datasets: map[string]catalogEntry{}}, true
	}

	doc := catalogDoc{Datasets: make(map[string]catalogEntry, datasetsObj.Len())}
	for _, name := range datasetsObj.Keys() {
		entryRec, _ := datasetsObj.Get(name)
		entryObj, ok := entryRec.AsObject()
		if !ok {
			continue
		}
		var entry catalogEntry
		if v, ok := entryObj.Get("type"); ok {
			entry.Type, _ = v.AsString()
		}
		if v, ok := entryObj.Get("file"); ok {
			entry.File, _ = v.AsString()
		}
		if v, ok := entryObj.Get("size"); ok {
			if n, ok := v.AsNumber(); ok {
				entry.Size = int(n)
			}
		}
		if v, ok := entryObj.Get("nb_rotation"); ok {
			if n, ok := v.AsNumber(); ok {
				entry.NbRotation = int(n)
			}
		}
		doc.Datasets[name] = entry
	}
	return doc, false
}

// persistLocked serialises c.datasets to the encrypted catalog file.
// load calls it holding the catalog's file lock (via acquireLock);
// Create and Drop call it holding c.mu only.
func (c *Catalog) persistLocked() error {
	obj := record.NewObject()
	datasetsObj := record.NewObject()
	for name, meta := range c.datasets {
		entry := record.NewObject()
		entry.Set("type", record.String(string(meta.Type)))
		entry.Set("file", record.String(meta.File))
		if meta.Type == TypeRotate {
			entry.Set("size", record.Number(float64(meta.Size)))
			entry.Set("nb_rotation", record.Number(float64(meta.NbRotation)))
		}
		datasetsObj.Set(name, record.FromObject(entry))
	}
	obj.Set("datasets", record.FromObject(datasetsObj))

	payload, err := record.FromObject(obj).MarshalJSON()
	if err != nil {
		return fmt.Errorf("storage: marshal catalog: %w", err)
	}
	ciphertext := c.cipher.Encrypt(payload)
	if err := afero.WriteFile(c.fs, c.configPath, ciphertext, 0o644); err != nil {
		return fmt.Errorf("storage: write catalog: %w", err)
	}
	return nil
}

// Create registers a new dataset (§4.5). args carries ROTATE's optional
// "size"/"nb_rotation" strings (e.g. {"size": "3Mo", "nb_rotation": "4"}).
func (c *Catalog) Create(name string, typ DatasetType, args map[string]string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.datasets[name]; exists {
		return StatusAlreadyExists
	}

	var meta DatasetMeta
	switch typ {
	case TypeRotate:
		size := defaultRotateSize
		nb := defaultRotateNbRotation
		if s, ok := args["size"]; ok && s != "" {
			parsed, err := parseFileSize(s)
			if err != nil {
				return StatusBadFileNumberFormat
			}
			size = parsed
		}
		if n, ok := args["nb_rotation"]; ok && n != "" {
			parsed, err := strconv.Atoi(n)
			if err != nil {
				return StatusBadFileNumberFormat
			}
			nb = parsed
		}
		// ROTATE is implemented as SIMPLE with a "1.rokt" file name; actual
		// rotation across multiple files is an open question, see DESIGN.md.
		meta = DatasetMeta{Type: TypeRotate, File: c.cipher.EncryptName("1.rokt"), Size: size, NbRotation: nb}
	default:
		meta = DatasetMeta{Type: TypeSimple, File: c.cipher.EncryptName("dataset.rokt")}
	}

	dir := filepath.Join(c.root, c.cipher.EncryptName(name))
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return StatusCannotCreateFile
	}

	dataFile := newDatasetFile(c.fs, c.cipher, dir, meta.File)
	if err := dataFile.Overwrite(nil); err != nil {
		return StatusCannotCreateFile
	}

	c.datasets[name] = meta
	if err := c.persistLocked(); err != nil {
		return StatusCannotCreateFile
	}
	return StatusOK
}

// Drop removes a dataset. Directory removal is best-effort and failing it
// does not mutate the catalog (§4.5); catalog mutation itself is
// best-effort in the sense that an unknown dataset is not an error a
// caller needs to retry — it is reported as StatusUnknownDataset.
func (c *Catalog) Drop(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.datasets[name]; !exists {
		return StatusUnknownDataset
	}

	dir := filepath.Join(c.root, c.cipher.EncryptName(name))
	if err := c.fs.RemoveAll(dir); err != nil {
		return StatusCannotDeleteFiles
	}

	delete(c.datasets, name)
	if err := c.persistLocked(); err != nil {
		return StatusCannotCreateFile
	}
	return StatusOK
}

// From opens a dataset-file view for an existing dataset.
func (c *Catalog) From(name string) (*DatasetFile, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	meta, exists := c.datasets[name]
	if !exists {
		return nil, StatusUnknownDataset
	}
	dir := filepath.Join(c.root, c.cipher.EncryptName(name))
	return newDatasetFile(c.fs, c.cipher, dir, meta.File), StatusOK
}

// Exists reports whether name is a registered dataset.
func (c *Catalog) Exists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.datasets[name]
	return ok
}

// parseFileSize parses a human size like "3Mo"/"512Ko"/"1Go" (the
// French-flavoured units the original ROTATE args used) or a bare byte
// count into a number of bytes.
func parseFileSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	multipliers := []struct {
		suffix string
		factor int
	}{
		{"KO", 1024},
		{"MO", 1024 * 1024},
		{"GO", 1024 * 1024 * 1024},
	}
	for _, m := range multipliers {
		if strings.HasSuffix(upper, m.suffix) {
			numPart := strings.TrimSpace(s[:len(s)-len(m.suffix)])
			n, err := strconv.Atoi(numPart)
			if err != nil {
				return 0, fmt.Errorf("storage: bad size %q: %w", s, err)
			}
			return n * m.factor, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("storage: bad size %q: %w", s, err)
	}
	return n, nil
}
