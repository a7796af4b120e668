package common

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var ErrInvalidHexStr = errors.New("invalid hex string")

// The returned string has No 0x prefix
func ByteSliceToPureHexStr(b []byte) string {
	return Trim0xPrefix(ethcommon.Bytes2Hex(b))
}

// Bytes32ToPureHexStr returns the 64-char hex string of a hash, no 0x prefix.
func Bytes32ToPureHexStr(b ethcommon.Hash) string {
	return ethcommon.Bytes2Hex(b[:])
}

// HexStrToBytes32 converts a hex string (with/without prefix 0x) to [32]byte
func HexStrToBytes32(hexStr string) [32]byte {
	var bytes32 [32]byte
	copy(bytes32[:], ethcommon.Hex2BytesFixed(Trim0xPrefix(hexStr), 32))
	return bytes32
}

// ParseBytes32 is the strict version of HexStrToBytes32. The input must
// be exactly 64 hex chars after the optional 0x prefix.
func ParseBytes32(hexStr string) (ethcommon.Hash, error) {
	s := Trim0xPrefix(hexStr)
	if len(s) != 64 || !IsHexString(s) {
		return ethcommon.Hash{}, fmt.Errorf("%w: %q", ErrInvalidHexStr, hexStr)
	}
	return ethcommon.HexToHash(s), nil
}

// ParseEthAddress parses a 20-byte hex address (with/without 0x prefix).
func ParseEthAddress(hexStr string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(hexStr) {
		return ethcommon.Address{}, fmt.Errorf("%w: %q", ErrInvalidHexStr, hexStr)
	}
	return ethcommon.HexToAddress(hexStr), nil
}

// Trim 0x or 0X prefix off the string.
func Trim0xPrefix(str string) string {
	s := strings.TrimPrefix(str, "0x")
	return strings.TrimPrefix(s, "0X")
}

func Prepend0xPrefix(str string) string {
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		return str
	}
	return "0x" + str
}

func IsHexString(s string) bool {
	for _, c := range s {
		if !IsHexChar(c) {
			return false
		}
	}
	return true
}

func IsHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// RandBytes32 generates [32]byte with random values
func RandBytes32() [32]byte {
	var b [32]byte
	n, err := rand.Read(b[:])

	if err != nil {
		return [32]byte{}
	}
	if n != 32 {
		return [32]byte{}
	}

	return b
}

// RandEthAddress generates a random 20-byte address, for tests.
func RandEthAddress() ethcommon.Address {
	b := RandBytes32()
	return ethcommon.BytesToAddress(b[:20])
}

// Shorten shortens a hex string so that both sides have n characters and
// the rest is replaced with "..."
func Shorten(hexStr string, n int) string {
	str := Trim0xPrefix(hexStr)

	if len(str) <= n*2 {
		return Prepend0xPrefix(str)
	}
	return Prepend0xPrefix(str[:n] + "..." + str[len(str)-n:])
}
