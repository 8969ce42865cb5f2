package config

// This is the global app config for the ledger node.
type AppConfig struct {
	// How many leading 0s to form a valid hash.
	DIFFICULTY int
	// The reward paid to the miner of each block.
	MINING_REWARD float64
	// Where the ledger document is saved and loaded.
	DATA_PATH string
	// Port the HTTP front end listens on.
	PORT string
}

// DefaultConfig mirrors the defaults applied when a persisted document
// omits its settings, so a bare node and a bare save file agree.
func DefaultConfig() AppConfig {
	return AppConfig{
		DIFFICULTY:    2,
		MINING_REWARD: 100.0,
		DATA_PATH:     "blockchain_data.json",
		PORT:          "8080",
	}
}
