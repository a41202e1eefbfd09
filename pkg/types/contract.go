package types

import "math"

// ContractKey is the Registry key of the asset-wide contract entry.
const ContractKey = "contract"

// NFTType is the asset class advertised by the contract.
type NFTType string

// NFT types.
const (
	NFTCollection NFTType = "HVYC"
	NFTInterface  NFTType = "HVYI"
	NFTAsset      NFTType = "HVYA"
	NFTWorld      NFTType = "HVYW"
	NFTObject     NFTType = "HVYO"
	NFTGame       NFTType = "HVYG"
	NFTAudio      NFTType = "HVYAU"
)

// Chain names the ledger a contract targets.
type Chain string

// Supported chains.
const (
	ChainICP  Chain = "ICP"
	ChainAR   Chain = "AR"
	ChainBTCL Chain = "BTCL"
)

// MinterType controls who may mint.
type MinterType string

// Minter types.
const (
	MinterPayable   MinterType = "payable"
	MinterOnlyOwner MinterType = "onlyOwner"
)

// InfiniteSupply marks an uncapped MaxSupply.
const InfiniteSupply = -1

var validNFTTypes = map[NFTType]bool{
	NFTCollection: true,
	NFTInterface:  true,
	NFTAsset:      true,
	NFTWorld:      true,
	NFTObject:     true,
	NFTGame:       true,
	NFTAudio:      true,
}

var validChains = map[Chain]bool{ChainICP: true, ChainAR: true, ChainBTCL: true}

var validMinterTypes = map[MinterType]bool{MinterPayable: true, MinterOnlyOwner: true}

// Valid reports whether t is a known NFT type.
func (t NFTType) Valid() bool { return validNFTTypes[t] }

// Valid reports whether c is a known chain.
func (c Chain) Valid() bool { return validChains[c] }

// Valid reports whether m is a known minter type.
func (m MinterType) Valid() bool { return validMinterTypes[m] }

// Contract holds the asset-wide scalar parameters. The values are stored
// and returned as given; nothing here validates or executes them.
type Contract struct {
	NFTType         NFTType
	Chain           Chain
	Mintable        bool
	Price           float64
	PremiumPrice    float64
	MaxSupply       int
	MinterType      MinterType
	MinterName      string
	MinterDesc      string
	MinterImage     string
	MinterVersion   int
	Versioned       bool
	ContractABI     string
	ContractAddress string
}

// DefaultContract returns the contract used before any edit.
func DefaultContract() Contract {
	return Contract{
		NFTType:      NFTCollection,
		Chain:        ChainICP,
		Mintable:     true,
		Price:        0.01,
		PremiumPrice: 0.01,
		MaxSupply:    100,
		MinterType:   MinterPayable,
	}
}

// RoundPrice rounds a price to four decimal places.
func RoundPrice(p float64) float64 {
	return math.Round(p*1e4) / 1e4
}
