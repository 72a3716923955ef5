package keychain

import "crypto/sha256"

// FirstCommitmentIndex is the index of the very first per-commitment
// secret this engine ever produces: 2^48 - 1. Per-commitment indices
// descend from here; everything below this index is the channel-operation
// subsystem's concern, not this engine's.
const FirstCommitmentIndex uint64 = (1 << 48) - 1

// FirstPerCommitmentSecret derives the per-commitment secret at
// FirstCommitmentIndex from a channel's shaseed, using the BOLT-3
// shachain-from-seed construction.
func FirstPerCommitmentSecret(shaSeed [32]byte) ([32]byte, error) {
	return PerCommitmentSecret(shaSeed, FirstCommitmentIndex)
}

// PerCommitmentSecret derives the per-commitment secret at the given
// index from a channel's shaseed. Index must fit in 48 bits; this engine
// only ever calls it with FirstCommitmentIndex, but the construction is
// defined generally per BOLT-3 so it reads the same as any other shachain
// implementation.
func PerCommitmentSecret(shaSeed [32]byte, index uint64) ([32]byte, error) {
	if index > FirstCommitmentIndex {
		return [32]byte{}, errIndexOutOfRange(index)
	}

	p := shaSeed
	for b := 47; b >= 0; b-- {
		if index&(1<<uint(b)) == 0 {
			continue
		}

		byteIdx := b / 8
		bitIdx := uint(b % 8)
		p[byteIdx] ^= 1 << bitIdx
		p = sha256.Sum256(p[:])
	}

	return p, nil
}

type shachainRangeErr struct {
	index uint64
}

func (e shachainRangeErr) Error() string {
	return "shachain index exceeds 2^48-1"
}

func errIndexOutOfRange(index uint64) error {
	return shachainRangeErr{index: index}
}
