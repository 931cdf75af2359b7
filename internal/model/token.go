package model

// TokenMetadata describes an ERC-20 token. The checksummed address is the
// identity key; instances are immutable once created.
type TokenMetadata struct {
	ChainID     uint64
	Address     string
	Symbol      string
	Name        string
	Decimals    uint8
	TotalSupply string
}
