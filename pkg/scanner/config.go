// Package scanner binds a camera QR scanner to a form field.
// It locates a frame source and a decoder, takes the first successful
// decode, writes the trimmed text into the token field, and stops capture.
package scanner

// Facing selects which camera to prefer when more than one is present.
type Facing string

// Camera facing preferences.
const (
	// FacingEnvironment prefers the rear (world-facing) camera.
	FacingEnvironment Facing = "environment"
	// FacingUser prefers the front (user-facing) camera.
	FacingUser Facing = "user"
)

// Config holds scanner capture parameters.
type Config struct {
	// Framerate is the target decode attempts per second.
	Framerate int `json:"framerate"`

	// BoxWidth and BoxHeight define the centered scan box in pixels.
	// Decoding is attempted only inside this region of each frame.
	BoxWidth  int `json:"box_width"`
	BoxHeight int `json:"box_height"`

	// Facing is the preferred camera facing.
	Facing Facing `json:"facing"`
}

// DefaultConfig returns the production scan configuration:
// 10 decode attempts per second inside a 250x250 box, rear camera preferred.
func DefaultConfig() Config {
	return Config{
		Framerate: 10,
		BoxWidth:  250,
		BoxHeight: 250,
		Facing:    FacingEnvironment,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Framerate < 1 || c.Framerate > 60 {
		errors = append(errors, "framerate must be between 1 and 60")
	}
	if c.BoxWidth < 50 || c.BoxWidth > 4096 {
		errors = append(errors, "box_width must be between 50 and 4096")
	}
	if c.BoxHeight < 50 || c.BoxHeight > 4096 {
		errors = append(errors, "box_height must be between 50 and 4096")
	}
	if c.Facing != FacingEnvironment && c.Facing != FacingUser {
		errors = append(errors, "facing must be environment or user")
	}

	return errors
}
