// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CostPolicy selects how a line whose cost is not an integer is treated.
type CostPolicy string

const (
	// CostDrop silently skips the line: it is neither valid nor invalid.
	CostDrop CostPolicy = "drop"
	// CostInvalid records the line as invalid.
	CostInvalid CostPolicy = "invalid"
)

// ParseConfig holds the limits and name rules for one tally run.
type ParseConfig struct {
	// MaxLines is the number of input lines accepted before the run is
	// aborted (default 1000).
	MaxLines int `json:"max_lines" yaml:"max_lines" mapstructure:"max_lines"`

	// MaxInvalid is the number of invalid lines tolerated; one more aborts
	// the run (default 10).
	MaxInvalid int `json:"max_invalid" yaml:"max_invalid" mapstructure:"max_invalid"`

	// MinCost and MaxCost bound a single line's energy cost (default 0..6).
	MinCost int `json:"min_cost" yaml:"min_cost" mapstructure:"min_cost"`
	MaxCost int `json:"max_cost" yaml:"max_cost" mapstructure:"max_cost"`

	// UnparsableCost is "drop" (default) or "invalid".
	UnparsableCost CostPolicy `json:"unparsable_cost" yaml:"unparsable_cost" mapstructure:"unparsable_cost"`

	// Whitelist enables card-name checking against WhitelistFile, or the
	// built-in card list when WhitelistFile is empty.
	Whitelist bool `json:"whitelist" yaml:"whitelist" mapstructure:"whitelist"`

	// WhitelistFile is a YAML file with a top-level "cards" list.
	WhitelistFile string `json:"whitelist_file,omitempty" yaml:"whitelist_file,omitempty" mapstructure:"whitelist_file"`

	// FoldCase matches card names case-insensitively against the whitelist.
	FoldCase bool `json:"fold_case" yaml:"fold_case" mapstructure:"fold_case"`
}

// IDStoreBackend identifies where issued deck IDs are recorded.
type IDStoreBackend string

const (
	IDStoreFile   IDStoreBackend = "file"
	IDStoreSQLite IDStoreBackend = "sqlite"
)

// IDStoreConfig holds settings for the deck ID log.
type IDStoreConfig struct {
	// Backend is "file" (default) or "sqlite".
	Backend IDStoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the ID log file, or the sqlite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ReportConfig holds PDF layout settings.
type ReportConfig struct {
	// BarScale is the bar length in points per energy unit (default 5).
	BarScale float64 `json:"bar_scale" yaml:"bar_scale" mapstructure:"bar_scale"`

	// BarHeight is the thickness of one histogram bar in points (default 14).
	BarHeight float64 `json:"bar_height" yaml:"bar_height" mapstructure:"bar_height"`

	// QRCode stamps the deck ID as a QR code beside the banner.
	QRCode bool `json:"qr_code" yaml:"qr_code" mapstructure:"qr_code"`

	// QRSize is the QR code edge length in points (default 72).
	QRSize float64 `json:"qr_size" yaml:"qr_size" mapstructure:"qr_size"`

	// Compress enables PDF stream compression (default true).
	Compress bool `json:"compress" yaml:"compress" mapstructure:"compress"`
}

// Config groups all spire-tally settings.
type Config struct {
	Parse   ParseConfig   `json:"parse" yaml:"parse" mapstructure:"parse"`
	IDStore IDStoreConfig `json:"id_store" yaml:"id_store" mapstructure:"id_store"`
	Report  ReportConfig  `json:"report" yaml:"report" mapstructure:"report"`
}
