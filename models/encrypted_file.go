// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// EncryptedFile is the output of the encryption collaborator for one
// cleartext file.
type EncryptedFile struct {
	// CiphertextPath is a temporary file holding the ciphertext. The caller
	// owns it and must remove it when done.
	CiphertextPath string
	// ContentHash is the hex content hash of the ciphertext and the blob
	// key it is stored under.
	ContentHash string
	// PathBlob is the encrypted relative path.
	PathBlob []byte
	// PathHash is the hex content hash of PathBlob.
	PathHash string
}
