// cgi.go - CGI plumbing: request parsing and response framing.
//
// Thin interface layer: reads QUERY_STRING, renders, and writes the
// image straight to stdout as a CGI response.

package main

import (
	"fmt"
	"io"
	"os"
)

// RunCGI reads QUERY_STRING from the environment, builds a Config,
// renders, and writes a CGI response (headers + body) to w.
func RunCGI(w io.Writer) error {
	query := os.Getenv("QUERY_STRING")
	cfg, err := LoadCGIConfig(query)
	if err != nil {
		writeCGIError(w, err)
		return err
	}

	deps, shards, err := prepareRenderDeps(cfg)
	if err != nil {
		writeCGIError(w, err)
		return err
	}
	defer shards.Close()

	img, err := Render(cfg, shards, deps)
	if err != nil {
		writeCGIError(w, err)
		return err
	}

	return writeCGIImage(w, cfg, img)
}

func writeCGIError(w io.Writer, err error) {
	fmt.Fprintf(w, "Status: 500 Internal Server Error\r\nContent-Type: text/plain\r\n\r\n%v\n", err)
}

func writeCGIImage(w io.Writer, cfg *Config, img *Image) error {
	contentType := map[string]string{
		"png": "image/png", "jpeg": "image/jpeg", "jpg": "image/jpeg",
		"heif": "image/heif", "avif": "image/avif", "exr": "image/x-exr",
	}[cfg.ImageFormat]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fmt.Fprintf(w, "Content-Type: %s\r\n\r\n", contentType)

	if cfg.ImageFormat == "exr" {
		return WriteEXR(w, img, exrPixelFloat, nil)
	}
	encoder, err := SelectEncoder(cfg.ImageFormat)
	if err != nil {
		return err
	}
	params := SequenceParams{BitsPerColor: cfg.BitsPerColor, Order: ChannelsInterleaved, BigEndian: true, Gamma: GammaSRGB}
	bi := Sequence(img, params)
	return encoder.Encode(w, bi, cfg)
}

// prepareRenderDeps is the shared catalog-open + table-build path used
// by both the CLI and CGI entry points.
func prepareRenderDeps(cfg *Config) (*RenderDeps, *ShardSet, error) {
	shards, err := OpenShardSet(catalogDirFromConfig(cfg), cfg.GaiaMinParallaxQuality, cfg.ExternalShardPath)
	if err != nil {
		return nil, nil, err
	}

	colorTable := BuildRGBTable(defaultCameraBands(), defaultGaiaGBand(), cfg.CameraWBEnable, cfg.CameraWBTemp, cfg.CameraColorSaturation)

	var airyMaps *AiryMaps
	if cfg.AiryDiskEnable {
		airyMaps = BuildAiryMaps(cfg.AiryDiskFirstNullPixels, cfg.AiryDiskMaxExtent, 4, cfg.AiryDiskObstruction)
	}

	return &RenderDeps{ColorTable: colorTable, AiryMaps: airyMaps}, shards, nil
}

func catalogDirFromConfig(cfg *Config) string {
	// The catalog directory is not itself a configurable key; a single
	// "catalog" directory beside the binary is the CLI/CGI convention
	// this build assumes.
	return "catalog"
}
