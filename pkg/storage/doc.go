/*
Package storage is rokt's encrypted persistence layer: the catalog (C5)
and per-dataset data files (C4).

	./shared/<hex(enc("datas"))>/                   the encrypted database root
	./shared/<hex>/<hex(enc("datasets.config.json"))>   the catalog, enc(JSON)
	./shared/<hex>/<hex(enc(name))>/                one directory per dataset
	./shared/<hex>/<hex(enc(name))>/<hex(enc(file))> each dataset's data file(s)

Every path component and every file's contents are ciphertext produced by
pkg/cryptox with the server's configured key and IV (§6). Catalog and
dataset-file corruption are never reported as errors: a data file that
fails to decrypt into a parseable record array is silently replaced with
the ciphertext of "[]" (§3, §4.4, §7), and a catalog file that fails to
decrypt into a parseable registry is rewritten as an empty registry —
neither failure reaches the caller, which gets an empty result instead.

Filesystem access goes through an afero.Fs so the whole layer can be
exercised against afero.NewMemMapFs() in tests without touching real
disk; the server wires afero.NewOsFs() at startup. Each dataset's
read-decrypt-mutate-encrypt-write cycle is additionally serialized by an
advisory lock keyed on the dataset's data file path (gofrs/flock against the
real filesystem, an in-process mutex registry as a fallback when the
backing afero.Fs isn't the OS filesystem) — the concrete form of the
design notes' suggested "per-dataset locking keyed by name" upgrade. The
catalog's in-memory index is separately guarded by a sync.RWMutex.
*/
package storage
