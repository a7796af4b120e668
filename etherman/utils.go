package etherman

import (
	"crypto/ecdsa"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
)

// StringToPrivateKey parses a hex encoded secp256k1 private key, with or
// without 0x prefix.
func StringToPrivateKey(hexStr string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(hexStr, "0x"))
}

func GenPrivateKeys(n int) []*ecdsa.PrivateKey {
	sks := make([]*ecdsa.PrivateKey, n)
	for i := 0; i < n; i++ {
		sks[i], _ = crypto.GenerateKey()
	}
	return sks
}

// GasWithBuffer scales an estimated gas amount by multiplier. The
// multiplier is applied with a precision of 1/1000.
func GasWithBuffer(estimated uint64, multiplier float64) uint64 {
	if multiplier <= 1 {
		return estimated
	}
	permille := uint64(math.Round(multiplier * 1000))
	return estimated * permille / 1000
}

// ComputeFees returns tip = priorityGwei and feeCap = max(2*base, base+tip).
func ComputeFees(baseFee *big.Int, priorityGwei uint64) *Fees {
	if baseFee == nil {
		baseFee = big.NewInt(0)
	}

	tip := new(big.Int).Mul(new(big.Int).SetUint64(priorityGwei), big.NewInt(params.GWei))
	double := new(big.Int).Mul(baseFee, big.NewInt(2))
	sum := new(big.Int).Add(baseFee, tip)

	feeCap := double
	if sum.Cmp(double) > 0 {
		feeCap = sum
	}

	return &Fees{GasTipCap: tip, GasFeeCap: feeCap}
}

// WeiToEther formats wei as a decimal ether string.
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	return f.Text('f', 6)
}
