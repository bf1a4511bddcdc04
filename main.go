// main.go - CLI entry point.
//
// Reads a key=value config file, opens the catalog, runs the render
// pipeline, and writes the encoded image. In CGI mode (selected only by
// the -cgi flag) it instead reads QUERY_STRING and writes a CGI
// response to stdout.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/term"
)

func main() {
	configPath := flag.String("config", "", "path to a key=value render config file")
	cgiMode := flag.Bool("cgi", false, "run as a CGI responder, reading QUERY_STRING")
	flag.Parse()

	if *cgiMode {
		if err := RunCGI(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigPath(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	printStatus := cfg.PrintStatus && interactive

	deps, shards, err := prepareRenderDeps(cfg)
	if err != nil {
		fatal(err)
	}
	defer shards.Close()

	img, err := timedStage(printStatus, "Rendering star field", func() (*Image, error) {
		return Render(cfg, shards, deps)
	})
	if err != nil {
		fatal(err)
	}

	if err := writeOutputFile(cfg, img); err != nil {
		fatal(err)
	}

	if printStatus {
		fmt.Println("Done.")
	}
}

func writeOutputFile(cfg *Config, img *Image) error {
	path := cfg.OutputPath
	if path == "" {
		path = "out." + cfg.ImageFormat
	}
	f, err := os.Create(path)
	if err != nil {
		return newError(ErrOutput, "create output file: %w", err)
	}
	defer f.Close()

	if cfg.ImageFormat == "exr" {
		return WriteEXR(f, img, exrPixelFloat, nil)
	}
	encoder, err := SelectEncoder(cfg.ImageFormat)
	if err != nil {
		return err
	}
	params := SequenceParams{BitsPerColor: cfg.BitsPerColor, Order: ChannelsInterleaved, BigEndian: true, Gamma: GammaSRGB}
	bi := Sequence(img, params)
	return encoder.Encode(f, bi, cfg)
}

// timedStage prints "<label>..." then "<label> done (Ns)" bracketing
// fn's execution, when status printing is enabled.
func timedStage(printStatus bool, label string, fn func() (*Image, error)) (*Image, error) {
	if printStatus {
		fmt.Printf("%s...\n", label)
	}
	start := time.Now()
	img, err := fn()
	if printStatus && err == nil {
		fmt.Printf("%s done (%.3fs)\n", label, time.Since(start).Seconds())
	}
	return img, err
}

func fatal(err error) {
	log.Println(err)
	if re, ok := err.(*RenderError); ok {
		switch re.Kind {
		case ErrConfig:
			os.Exit(2)
		case ErrCatalog, ErrResource:
			os.Exit(3)
		case ErrWorker:
			os.Exit(4)
		case ErrOutput:
			os.Exit(5)
		}
	}
	os.Exit(1)
}
