package etherman

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
)

var (
	SimulatedChainID = big.NewInt(1337)
	blockGasLimit    = uint64(999999999999999999)
)

// SimulatedChain is an in-process EVM chain with funded accounts.
type SimulatedChain struct {
	Backend  *simulated.Backend
	Accounts []*bind.TransactOpts
	Keys     []*ecdsa.PrivateKey
}

func NewSimulatedChain(sks []*ecdsa.PrivateKey, chainID *big.Int) *SimulatedChain {
	accounts := make([]*bind.TransactOpts, len(sks))
	for i, sk := range sks {
		accounts[i], _ = bind.NewKeyedTransactorWithChainID(sk, chainID)
	}

	// allocate funds to accounts
	genesisAlloc := map[common.Address]types.Account{}
	for _, account := range accounts {
		balance, _ := new(big.Int).SetString("100000000000000000000", 10)
		genesisAlloc[account.From] = types.Account{
			Balance: balance,
		}
	}

	backend := simulated.NewBackend(genesisAlloc, simulated.WithBlockGasLimit(blockGasLimit))

	return &SimulatedChain{
		Backend:  backend,
		Accounts: accounts,
		Keys:     sks,
	}
}

// NewSimulatedEtherman binds an Etherman to the simulated chain, signing
// with the account at index operator.
func NewSimulatedEtherman(sim *SimulatedChain, contract common.Address, operator int) (*Etherman, error) {
	return NewEthermanWithClient(&Config{
		ContractAddress: contract,
		PrivateKey:      sim.Keys[operator],
		ChainID:         SimulatedChainID,
	}, sim.Backend.Client())
}
