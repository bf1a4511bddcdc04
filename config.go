// config.go - configuration loading: key=value files and sanitized CGI
// query strings. No config/YAML/TOML library is warranted for this
// format, so parsing stays on bufio/strings/strconv.

package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config is the single source of truth for a render. Zero value is not
// meaningful; use DefaultConfig to get sensible defaults.
type Config struct {
	CameraResX, CameraResY int
	CameraFOVDeg           float64
	CameraProjection       int // 0 equirect, 1 spherical, 2 Hammer, 3 Mollweide
	SphericalOrientation   int // 0 front-centered, 1 side-by-side
	MollweideIterations    int

	CameraICRS_X, CameraICRS_Y, CameraICRS_Z float64
	TargetICRS_X, TargetICRS_Y, TargetICRS_Z float64

	CameraRotationDeg, CameraPanDeg, CameraTiltDeg float64

	CameraPixelLimitMag float64
	CameraPixelLimitMode int // 0 per-channel clamp, 1 hue-preserve
	CameraWBEnable       bool
	CameraWBTemp         float64
	CameraColorSaturation float64
	CameraGamma           float64

	RenderDistanceMin, RenderDistanceMax float64
	RenderDistanceSelector               int // 0 from camera, 1 from target
	StarColorMin, StarColorMax           float64

	GaiaMinParallaxQuality int
	ExternalShardPath      string

	AiryDiskEnable          bool
	AiryDiskFirstNullPixels float64
	AiryDiskMinExtent       int
	AiryDiskMaxExtent       int
	AiryDiskObstruction     float64

	AntiAliasEnable bool
	AntiAliasRadius float64

	GaussianBlurRadius float64

	OutputScalingFactor float64
	LanczosOrder        int

	BitsPerColor       int
	ImageFormat        string // png, jpeg, heif, avif, exr
	ImageNumberFormat  string // uint, float
	ColorProfile       string

	NumThreads          int
	PerThreadBufferSize int
	PerThreadAiryBuffer int

	CGIMode       bool
	CGIMaxWidth   int
	CGIMaxHeight  int
	CGIMaxThreads int

	UseDereddenedColor bool
	PrintStatus        bool

	OutputPath string
	JPEGQuality int
}

// DefaultConfig returns the built-in default render configuration.
func DefaultConfig() *Config {
	return &Config{
		CameraResX: 4096, CameraResY: 2048,
		CameraFOVDeg:         90,
		CameraProjection:     0,
		SphericalOrientation: 0,
		MollweideIterations:  5,
		CameraPixelLimitMag:  0,
		CameraPixelLimitMode: 0,
		CameraWBTemp:         5800,
		CameraColorSaturation: 1.0,
		CameraGamma:          1.0,
		RenderDistanceMax:    1e9,
		StarColorMax:         32767,
		GaiaMinParallaxQuality: 0,
		AiryDiskMinExtent:    1,
		AiryDiskMaxExtent:    8,
		AntiAliasRadius:      0.5,
		OutputScalingFactor:  1.0,
		LanczosOrder:         3,
		BitsPerColor:         8,
		ImageFormat:          "png",
		ImageNumberFormat:    "uint",
		NumThreads:           1,
		PerThreadBufferSize:  4096,
		PerThreadAiryBuffer:  4096,
		PrintStatus:          true,
		JPEGQuality:          90,
	}
}

// privilegedKeys may only be set from a config file, never from a CGI
// query string: thread counts, CGI resource limits, and the external
// shard path are operator-controlled, not request-controlled.
var privilegedKeys = map[string]bool{
	"cgi_mode": true, "cgi_max_width": true, "cgi_max_height": true,
	"cgi_max_threads": true, "num_threads": true, "external_shard_path": true,
}

// LoadConfigFile parses a key=value file, one assignment per line,
// '#' introducing a comment.
func LoadConfigFile(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if err := applyConfigKey(cfg, key, val, true); err != nil {
			return nil, newError(ErrConfig, "config file: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, newError(ErrConfig, "reading config file: %w", err)
	}
	return cfg, nil
}

// maxCGIQueryLen bounds the raw query string accepted in CGI mode.
const maxCGIQueryLen = 8192

// sanitizeCGIQuery percent-decodes the query string and rejects
// anything outside the alphanumerics-plus-".-+&=_" alphabet.
func sanitizeCGIQuery(raw string) (string, error) {
	if len(raw) > maxCGIQueryLen {
		return "", fmt.Errorf("query string too long (%d bytes)", len(raw))
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("query string decode: %w", err)
	}
	for _, c := range decoded {
		if !isAllowedCGIRune(c) {
			return "", fmt.Errorf("disallowed character %q in query string", c)
		}
	}
	return decoded, nil
}

func isAllowedCGIRune(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '-' || c == '+' || c == '&' || c == '=' || c == '_':
		return true
	}
	return false
}

// LoadCGIConfig parses a sanitized query string into a Config, starting
// from DefaultConfig and silently dropping privileged keys.
func LoadCGIConfig(rawQuery string) (*Config, error) {
	clean, err := sanitizeCGIQuery(rawQuery)
	if err != nil {
		return nil, newError(ErrConfig, "cgi query: %w", err)
	}
	cfg := DefaultConfig()
	cfg.CGIMode = true
	for _, pair := range strings.Split(clean, "&") {
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if privilegedKeys[key] {
			continue
		}
		if err := applyConfigKey(cfg, key, val, false); err != nil {
			return nil, newError(ErrConfig, "cgi query: %w", err)
		}
	}
	if cfg.CGIMaxWidth > 0 && cfg.CameraResX > cfg.CGIMaxWidth {
		return nil, newError(ErrConfig, "camera_res_x %d exceeds cgi_max_width %d", cfg.CameraResX, cfg.CGIMaxWidth)
	}
	if cfg.CGIMaxHeight > 0 && cfg.CameraResY > cfg.CGIMaxHeight {
		return nil, newError(ErrConfig, "camera_res_y %d exceeds cgi_max_height %d", cfg.CameraResY, cfg.CGIMaxHeight)
	}
	return cfg, nil
}

// applyConfigKey sets one key=value pair on cfg. privileged controls
// whether keys restricted to config files (not CGI query strings) are
// accepted.
func applyConfigKey(cfg *Config, key, val string, privileged bool) error {
	fInt := func(dst *int) error { v, err := strconv.Atoi(val); if err != nil { return err }; *dst = v; return nil }
	fFloat := func(dst *float64) error { v, err := strconv.ParseFloat(val, 64); if err != nil { return err }; *dst = v; return nil }
	fBool := func(dst *bool) error { v, err := strconv.ParseBool(val); if err != nil { return err }; *dst = v; return nil }

	switch key {
	case "camera_res_x":
		return fInt(&cfg.CameraResX)
	case "camera_res_y":
		return fInt(&cfg.CameraResY)
	case "camera_fov":
		return fFloat(&cfg.CameraFOVDeg)
	case "camera_projection":
		return fInt(&cfg.CameraProjection)
	case "spherical_orientation":
		return fInt(&cfg.SphericalOrientation)
	case "Mollewide_iterations":
		return fInt(&cfg.MollweideIterations)
	case "camera_icrs_x":
		return fFloat(&cfg.CameraICRS_X)
	case "camera_icrs_y":
		return fFloat(&cfg.CameraICRS_Y)
	case "camera_icrs_z":
		return fFloat(&cfg.CameraICRS_Z)
	case "target_icrs_x":
		return fFloat(&cfg.TargetICRS_X)
	case "target_icrs_y":
		return fFloat(&cfg.TargetICRS_Y)
	case "target_icrs_z":
		return fFloat(&cfg.TargetICRS_Z)
	case "camera_rotation":
		return fFloat(&cfg.CameraRotationDeg)
	case "camera_pan":
		return fFloat(&cfg.CameraPanDeg)
	case "camera_tilt":
		return fFloat(&cfg.CameraTiltDeg)
	case "camera_pixel_limit_mag":
		return fFloat(&cfg.CameraPixelLimitMag)
	case "camera_pixel_limit_mode":
		return fInt(&cfg.CameraPixelLimitMode)
	case "camera_wb_enable":
		return fBool(&cfg.CameraWBEnable)
	case "camera_wb_temp":
		return fFloat(&cfg.CameraWBTemp)
	case "camera_color_saturation":
		return fFloat(&cfg.CameraColorSaturation)
	case "camera_gamma":
		return fFloat(&cfg.CameraGamma)
	case "render_distance_min":
		return fFloat(&cfg.RenderDistanceMin)
	case "render_distance_max":
		return fFloat(&cfg.RenderDistanceMax)
	case "render_distance_selector":
		return fInt(&cfg.RenderDistanceSelector)
	case "star_color_min":
		return fFloat(&cfg.StarColorMin)
	case "star_color_max":
		return fFloat(&cfg.StarColorMax)
	case "Gaia_min_parallax_quality":
		return fInt(&cfg.GaiaMinParallaxQuality)
	case "external_shard_path":
		if privileged {
			cfg.ExternalShardPath = val
		}
		return nil
	case "Airy_disk_enable":
		return fBool(&cfg.AiryDiskEnable)
	case "Airy_disk_first_null_pixels":
		return fFloat(&cfg.AiryDiskFirstNullPixels)
	case "Airy_disk_min_extent":
		return fInt(&cfg.AiryDiskMinExtent)
	case "Airy_disk_max_extent":
		return fInt(&cfg.AiryDiskMaxExtent)
	case "Airy_disk_obstruction":
		return fFloat(&cfg.AiryDiskObstruction)
	case "anti_alias_enable":
		return fBool(&cfg.AntiAliasEnable)
	case "anti_alias_radius":
		return fFloat(&cfg.AntiAliasRadius)
	case "Gaussian_blur_radius":
		return fFloat(&cfg.GaussianBlurRadius)
	case "output_scaling_factor":
		return fFloat(&cfg.OutputScalingFactor)
	case "Lanczos_order":
		return fInt(&cfg.LanczosOrder)
	case "bits_per_color":
		return fInt(&cfg.BitsPerColor)
	case "image_format":
		cfg.ImageFormat = val
		return nil
	case "image_number_format":
		cfg.ImageNumberFormat = val
		return nil
	case "icc_profile", "color_profile":
		cfg.ColorProfile = val
		return nil
	case "num_threads":
		if privileged {
			return fInt(&cfg.NumThreads)
		}
		return nil
	case "per_thread_buffer":
		return fInt(&cfg.PerThreadBufferSize)
	case "per_thread_buffer_Airy":
		return fInt(&cfg.PerThreadAiryBuffer)
	case "use_dereddened_color":
		return fBool(&cfg.UseDereddenedColor)
	case "print_status":
		return fBool(&cfg.PrintStatus)
	case "cgi_mode":
		if privileged {
			return fBool(&cfg.CGIMode)
		}
		return nil
	case "cgi_max_width":
		if privileged {
			return fInt(&cfg.CGIMaxWidth)
		}
		return nil
	case "cgi_max_height":
		if privileged {
			return fInt(&cfg.CGIMaxHeight)
		}
		return nil
	case "cgi_max_threads":
		if privileged {
			return fInt(&cfg.CGIMaxThreads)
		}
		return nil
	case "output_path":
		cfg.OutputPath = val
		return nil
	case "jpeg_quality":
		return fInt(&cfg.JPEGQuality)
	default:
		return nil // unrecognized keys are ignored, not fatal
	}
}

// LoadConfigPath is a small convenience wrapper used by the CLI.
func LoadConfigPath(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ErrConfig, "open config: %w", err)
	}
	defer f.Close()
	return LoadConfigFile(f)
}
