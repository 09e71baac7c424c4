package entities

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	addressLength = common.AddressLength
	feeLength     = 3
	hopLength     = addressLength + feeLength
)

// EncodedPathLength is 20 + 23*(n-1) for n tokens.
func EncodedPathLength(tokens int) int {
	if tokens < 1 {
		return 0
	}
	return addressLength + hopLength*(tokens-1)
}

// EncodePath packs tokens and fees the way the V3 quoter and router expect:
// token0 | fee0 | token1 | fee1 | ... | tokenN, with fees as uint24 big-endian.
func EncodePath(tokens []common.Address, fees []FeeTier) ([]byte, error) {
	if err := validatePath(tokens, fees); err != nil {
		return nil, err
	}

	out := make([]byte, EncodedPathLength(len(tokens)))
	offset := 0
	for i, fee := range fees {
		copy(out[offset:offset+addressLength], tokens[i].Bytes())
		offset += addressLength
		out[offset] = byte(fee >> 16)
		out[offset+1] = byte(fee >> 8)
		out[offset+2] = byte(fee)
		offset += feeLength
	}
	copy(out[offset:], tokens[len(tokens)-1].Bytes())

	return out, nil
}

func (p Path) Encode() ([]byte, error) {
	return EncodePath(p.Tokens, p.Fees)
}

// DecodePath reverses EncodePath. Used for diagnostics on calldata.
func DecodePath(data []byte) (Path, error) {
	if len(data) < addressLength+hopLength || (len(data)-addressLength)%hopLength != 0 {
		return Path{}, NewValidationError("decode path", "invalid encoded path length %d", len(data))
	}

	hops := (len(data) - addressLength) / hopLength
	tokens := make([]common.Address, 0, hops+1)
	fees := make([]FeeTier, 0, hops)

	offset := 0
	for i := 0; i < hops; i++ {
		tokens = append(tokens, common.BytesToAddress(data[offset:offset+addressLength]))
		offset += addressLength
		fee := FeeTier(uint32(data[offset])<<16 | uint32(data[offset+1])<<8 | uint32(data[offset+2]))
		fees = append(fees, fee)
		offset += feeLength
	}
	tokens = append(tokens, common.BytesToAddress(data[offset:offset+addressLength]))

	return NewPath(tokens, fees)
}
