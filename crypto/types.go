// SPDX-License-Identifier: GPL-3.0-only

package crypto

// Crypto holds the argon2id parameters used for provider passwords and
// password-reset secrets.
type Crypto struct {
	ArgonTime    uint32
	ArgonMemory  uint32
	ArgonThreads uint8
	ArgonKeyLen  uint32
	ArgonSaltLen uint32
}
