package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookshare.db"
)

// Storage providers
const (
	StorageProviderMemory  = "memory"
	StorageProviderDropbox = "dropbox"
)

// Email providers
const (
	EmailProviderLog      = "log"
	EmailProviderSendGrid = "sendgrid"
)
