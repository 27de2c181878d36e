// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that call out
// over the network.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "apyexit/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// HeaderConfig holds the fixed values of the submission file header.
type HeaderConfig struct {
	// RegNo is the registration number of the submitting entity.
	RegNo string `json:"reg_no" yaml:"reg_no" mapstructure:"reg_no"`

	// EntityType is the entity type code (e.g. "NLOO").
	EntityType string `json:"entity_type" yaml:"entity_type" mapstructure:"entity_type"`

	// BackOfficeRef is the back-office reference number.
	BackOfficeRef string `json:"back_office_ref" yaml:"back_office_ref" mapstructure:"back_office_ref"`

	// TransactionType is the transaction type code (e.g. "L").
	TransactionType string `json:"transaction_type" yaml:"transaction_type" mapstructure:"transaction_type"`
}

// BankConfig holds the bank details repeated in every detail block.
type BankConfig struct {
	// IFSCode is the IFSC code of the paying bank.
	IFSCode string `json:"ifs_code" yaml:"ifs_code" mapstructure:"ifs_code"`

	// Name is the short bank name.
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

// RenderConfig holds settings for the XML renderer.
type RenderConfig struct {
	Header HeaderConfig `json:"header" yaml:"header" mapstructure:"header"`
	Bank   BankConfig   `json:"bank" yaml:"bank" mapstructure:"bank"`

	// Escape enables XML escaping of cell text. Off by default: cell text
	// is inserted verbatim.
	Escape bool `json:"escape" yaml:"escape" mapstructure:"escape"`
}

// DefaultRenderConfig returns the header and bank constants of the APY
// exit-withdrawal submission.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Header: HeaderConfig{
			RegNo:           "7005154",
			EntityType:      "NLOO",
			BackOfficeRef:   "700515418082205",
			TransactionType: "L",
		},
		Bank: BankConfig{
			IFSCode: "PUNB0SUPGB5",
			Name:    "PUPGB",
		},
	}
}

// ConversionConfig holds settings for the conversion pipeline.
type ConversionConfig struct {
	Render RenderConfig `json:"render" yaml:"render" mapstructure:"render"`

	// OutputDir is the directory generated XML files are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// BotConfig holds settings for the Telegram bot transport.
type BotConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Token is the Bot API access token.
	Token string `json:"-" yaml:"-" mapstructure:"-"`

	// UploadsDir is the staging directory for received files.
	UploadsDir string `json:"uploads_dir" yaml:"uploads_dir" mapstructure:"uploads_dir"`

	// OutputDir is the staging directory for generated files.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// PollTimeout is the long-polling timeout passed to getUpdates.
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout" mapstructure:"poll_timeout"`
}

// ServerConfig holds settings for the HTTP upload transport.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// BodyLimit caps the request size (echo notation, e.g. "10M").
	BodyLimit string `json:"body_limit" yaml:"body_limit" mapstructure:"body_limit"`
}
