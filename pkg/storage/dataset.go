package storage

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/cuemby/rokt/pkg/cryptox"
	"github.com/cuemby/rokt/pkg/log"
	"github.com/cuemby/rokt/pkg/metrics"
	"github.com/cuemby/rokt/pkg/record"
)

// DatasetFile represents one dataset's on-disk data file (C4). A SIMPLE
// dataset has exactly one; a ROTATE dataset also has exactly one today
// (see the ROTATE open question in DESIGN.md) named from "1.rokt" instead
// of "dataset.rokt".
type DatasetFile struct {
	fs       afero.Fs
	cipher   *cryptox.Cipher
	dir      string
	fileName string // hex-encoded ciphertext of the plaintext file name
}

func newDatasetFile(fs afero.Fs, cipher *cryptox.Cipher, dir, fileName string) *DatasetFile {
	return &DatasetFile{fs: fs, cipher: cipher, dir: dir, fileName: fileName}
}

func (d *DatasetFile) path() string {
	return filepath.Join(d.dir, d.fileName)
}

// Read decrypts and parses the data file into a sequence of records
// (§4.4). A missing file is created as an empty array first. A file that
// fails to decrypt-and-parse into a record array is never reported as an
// error: it is silently rewritten to the ciphertext of "[]" and an empty
// sequence is returned (self-healing, §3 invariants, §7).
func (d *DatasetFile) Read() ([]record.Record, error) {
	release, err := acquireLock(d.fs, d.path())
	if err != nil {
		return nil, fmt.Errorf("storage: lock dataset file: %w", err)
	}
	defer release()
	return d.readLocked()
}

func (d *DatasetFile) readLocked() ([]record.Record, error) {
	exists, err := afero.Exists(d.fs, d.path())
	if err != nil {
		return nil, fmt.Errorf("storage: stat dataset file: %w", err)
	}
	if !exists {
		if err := d.writeLocked(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	ciphertext, err := afero.ReadFile(d.fs, d.path())
	if err != nil {
		return nil, fmt.Errorf("storage: read dataset file: %w", err)
	}

	plaintext := d.cipher.Decrypt(ciphertext)
	rows, healed := decodeOrHeal(plaintext)
	if healed {
		metrics.RecordCorruptionHeal()
		log.Component("storage").Logger().Warn().Str("file", d.path()).Msg("dataset file corrupted, healed to empty array")
		if err := d.writeLocked(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return rows, nil
}

// decodeOrHeal attempts to parse plaintext as a JSON array of records.
// Anything else (malformed JSON, a non-array top level value) is treated
// as corruption to heal, never surfaced as an error.
func decodeOrHeal(plaintext []byte) (rows []record.Record, healed bool) {
	val, err := record.Parse(plaintext)
	if err != nil {
		return nil, true
	}
	arr, ok := val.AsArray()
	if !ok {
		return nil, true
	}
	return arr, false
}

// Write serialises rows to the canonical textual form, encrypts, and
// writes the data file.
func (d *DatasetFile) Write(rows []record.Record) error {
	release, err := acquireLock(d.fs, d.path())
	if err != nil {
		return fmt.Errorf("storage: lock dataset file: %w", err)
	}
	defer release()
	return d.writeLocked(rows)
}

func (d *DatasetFile) writeLocked(rows []record.Record) error {
	payload, err := record.Array(rows).MarshalJSON()
	if err != nil {
		return fmt.Errorf("storage: marshal dataset: %w", err)
	}
	ciphertext := d.cipher.Encrypt(payload)

	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("storage: create dataset dir: %w", err)
	}

	tmp := d.path() + ".tmp"
	if err := afero.WriteFile(d.fs, tmp, ciphertext, 0o644); err != nil {
		return fmt.Errorf("storage: write dataset file: %w", err)
	}
	if err := d.fs.Rename(tmp, d.path()); err != nil {
		return fmt.Errorf("storage: rename dataset file: %w", err)
	}
	return nil
}

// Insert appends row to the dataset (ADD).
func (d *DatasetFile) Insert(row record.Record) error {
	release, err := acquireLock(d.fs, d.path())
	if err != nil {
		return fmt.Errorf("storage: lock dataset file: %w", err)
	}
	defer release()

	rows, err := d.readLocked()
	if err != nil {
		return err
	}
	rows = append(rows, row)
	return d.writeLocked(rows)
}

// Overwrite replaces the whole dataset (EMPTY uses this with nil).
func (d *DatasetFile) Overwrite(rows []record.Record) error {
	return d.Write(rows)
}

// Remove drops every row matching the single predicate (field, op, value)
// and returns how many were removed. The REMOVE command does not call it:
// pkg/command evaluates its conditions with pkg/predicate row by row and
// rewrites the dataset with Overwrite.
func (d *DatasetFile) Remove(field string, op record.Op, value string) (int, error) {
	release, err := acquireLock(d.fs, d.path())
	if err != nil {
		return 0, fmt.Errorf("storage: lock dataset file: %w", err)
	}
	defer release()

	rows, err := d.readLocked()
	if err != nil {
		return 0, err
	}

	matched, rest, err := record.NewContainer(rows).Partition(field, op, value)
	if err != nil {
		return 0, err
	}

	if err := d.writeLocked(rest.Raw()); err != nil {
		return 0, err
	}
	return matched.Len(), nil
}

// Select reads the dataset and projects each row onto keys. keys == ["*"]
// returns every row unmodified.
func (d *DatasetFile) Select(keys []string) ([]record.Record, error) {
	rows, err := d.Read()
	if err != nil {
		return nil, err
	}
	if len(keys) == 1 && keys[0] == "*" {
		return rows, nil
	}

	out := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		obj := record.NewObject()
		for _, k := range keys {
			if v, ok := row.Resolve(k); ok {
				obj.Set(k, v)
			}
		}
		out = append(out, record.FromObject(obj))
	}
	return out, nil
}
