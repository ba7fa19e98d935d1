// Package crypto provides encryption of credential blobs at rest.
//
// AesGcmCryptoService seals blobs with AES-256-GCM before they reach PostgreSQL.
// NoopService passes them through unchanged when no key is configured.
package crypto
