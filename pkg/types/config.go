package types

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// ImageFormat selects the raster format written by PDF to Image.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

// ConvertConfig holds settings for the conversion worker.
type ConvertConfig struct {
	// ImageDPI is the render resolution for PDF to Image (default 300).
	ImageDPI int `json:"image_dpi" yaml:"image_dpi" mapstructure:"image_dpi"`

	// ImageFormat is used when the destination extension does not pick one.
	ImageFormat ImageFormat `json:"image_format" yaml:"image_format" mapstructure:"image_format"`

	// FontPaths lists TrueType fonts tried in order for Word to PDF. The
	// first one that exists is used.
	FontPaths []string `json:"font_paths" yaml:"font_paths" mapstructure:"font_paths"`

	// ParagraphGapMM is the vertical gap after each paragraph (default 5).
	ParagraphGapMM float64 `json:"paragraph_gap_mm" yaml:"paragraph_gap_mm" mapstructure:"paragraph_gap_mm"`

	// SofficePath overrides LibreOffice discovery.
	SofficePath string `json:"soffice_path,omitempty" yaml:"soffice_path,omitempty" mapstructure:"soffice_path"`

	// PdftoppmPath overrides poppler pdftoppm discovery.
	PdftoppmPath string `json:"pdftoppm_path,omitempty" yaml:"pdftoppm_path,omitempty" mapstructure:"pdftoppm_path"`
}

// RecentConfig holds settings for the recent files list.
type RecentConfig struct {
	// Path is the JSON file holding the list.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Max caps the number of entries (default 10).
	Max int `json:"max" yaml:"max" mapstructure:"max"`
}

// HistoryConfig holds settings for the conversion history ledger.
type HistoryConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings resolved at startup.
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Convert ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Recent  RecentConfig  `json:"recent" yaml:"recent" mapstructure:"recent"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}

// DefaultFontPaths are the TrueType fonts probed for Word to PDF when no
// list is configured. They cover CJK text on Windows, Linux and macOS.
var DefaultFontPaths = []string{
	`C:\Windows\Fonts\simhei.ttf`,
	`C:\Windows\Fonts\msyh.ttf`,
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttf",
	"/usr/share/fonts/truetype/arphic/uming.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
}
