/*
Package cryptox provides rokt's single symmetric-cipher primitive: AES-128
in CTR mode, keyed by the server's configured passphrase and IV.

CTR mode was chosen over an authenticated mode (as the teacher repo uses
for secrets, see DESIGN.md) because the store needs a length-preserving,
total function: any ciphertext — including a file truncated or corrupted
by a crash — must decode to *some* plaintext rather than fail an
authentication check. Corruption is handled one layer up, in pkg/storage,
by noticing the decrypted bytes don't parse as a record array and
rewriting the file to an encrypted empty array; cryptox itself never
returns a decryption error.

Two encrypt/decrypt pairs are exposed: Encrypt/Decrypt operate on raw
bytes (file contents); EncryptName/DecryptName additionally hex-encode so
the result is a valid path component on every filesystem.
*/
package cryptox
