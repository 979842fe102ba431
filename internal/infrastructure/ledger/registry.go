package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// registryABI is the EFIRRegistry contract interface: a single write method
// that records a digest with its indexing fields. The contract keeps an
// append-only log; duplicate ids are not rejected on chain.
const registryABI = `[
	{
		"inputs": [
			{"internalType": "string", "name": "firId", "type": "string"},
			{"internalType": "string", "name": "dataHash", "type": "string"},
			{"internalType": "string", "name": "complainant", "type": "string"},
			{"internalType": "string", "name": "officer", "type": "string"},
			{"internalType": "string", "name": "incidentType", "type": "string"}
		],
		"name": "registerFIR",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

const registerMethod = "registerFIR"

// ParseRegistryABI parses the embedded contract interface.
func ParseRegistryABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(registryABI))
}

// BindRegistry binds the registry contract at the given address to a backend.
func BindRegistry(address common.Address, backend bind.ContractBackend) (*bind.BoundContract, error) {
	parsed, err := ParseRegistryABI()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, backend, backend, backend), nil
}
