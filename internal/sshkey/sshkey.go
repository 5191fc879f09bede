// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshkey inspects PEM encoded SSH private keys without needing their
// passphrase.
package sshkey

import (
	"errors"

	"golang.org/x/crypto/ssh"
)

// Unreadable is shown in place of a key that cannot be parsed.
const Unreadable = "ssh-key (unreadable)"

// Check reports whether data holds a private key. Encrypted keys pass.
func Check(data []byte) error {
	_, err := ssh.ParseRawPrivateKey(data)
	var missing *ssh.PassphraseMissingError
	if err == nil || errors.As(err, &missing) {
		return nil
	}
	return err
}

// PublicKey returns the public half of a private key. Encrypted keys return
// their public key when the format carries one in the clear.
func PublicKey(data []byte) (ssh.PublicKey, error) {
	signer, err := ssh.ParsePrivateKey(data)
	if err == nil {
		return signer.PublicKey(), nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && missing.PublicKey != nil {
		return missing.PublicKey, nil
	}
	return nil, err
}

// Describe renders a key as its algorithm and SHA256 fingerprint, e.g.
// "ssh-ed25519 SHA256:...".
func Describe(data []byte) string {
	pub, err := PublicKey(data)
	if err != nil {
		return Unreadable
	}
	return pub.Type() + " " + ssh.FingerprintSHA256(pub)
}
