package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/flowforge/flowforge/internal/flowgraph"
	"github.com/flowforge/flowforge/internal/geometry"
	"github.com/flowforge/flowforge/internal/imaging"
	"github.com/flowforge/flowforge/internal/pipeline"
	"github.com/flowforge/flowforge/internal/semantic"
	"github.com/flowforge/flowforge/internal/visualize"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// A missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	var (
		imagePath   = flag.String("image", "", "path to the flowchart image (PNG or JPEG)")
		format      = flag.String("format", "json", "output format: json or mermaid")
		orientation = flag.String("orientation", "", "force flow direction: top-down or left-right")
		enableOCR   = flag.Bool("ocr", false, "annotate shapes with OCR text and yes/no hints")
		review      = flag.Bool("review", false, "revise the graph with a vision model (needs FLOWFORGE_API_KEY)")
		calibrate   = flag.Bool("calibrate", false, "estimate detection hints with a vision model before detecting")
		overlay     = flag.String("overlay", "", "write a detection overlay PNG to this path")
		version     = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	if *version {
		fmt.Printf("flowforge %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		return
	}
	if *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := pipeline.Options{
		Cache: imaging.NewImageCache(),
		OCR:   *enableOCR,
	}

	if *orientation != "" {
		forced := geometry.ParseOrientation(*orientation)
		if forced == geometry.OrientationUnset {
			log.Fatalf("unknown orientation %q, want top-down or left-right", *orientation)
		}
		opts.ForcedOrientation = forced
	}

	if *review || *calibrate {
		client := semantic.NewClient(semantic.Config{
			Model:   os.Getenv("FLOWFORGE_MODEL"),
			APIKey:  os.Getenv("FLOWFORGE_API_KEY"),
			BaseURL: os.Getenv("FLOWFORGE_API_BASE"),
		})
		if *review {
			opts.Reviewer = client
		}
		if *calibrate {
			opts.Calibrator = client
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := pipeline.New(opts).Run(ctx, *imagePath)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	if out.Degraded {
		log.Printf("detection degraded: %s", out.Reason)
	}

	if *overlay != "" {
		img, err := opts.Cache.Load(*imagePath)
		if err != nil {
			log.Printf("overlay skipped: %v", err)
		} else if err := visualize.WriteOverlay(img, out.Geometry, *overlay); err != nil {
			log.Fatalf("overlay: %v", err)
		}
	}

	switch *format {
	case "json":
		data, err := flowgraph.MarshalGraph(out.Graph)
		if err != nil {
			log.Fatalf("encode: %v", err)
		}
		fmt.Println(string(data))
	case "mermaid":
		fmt.Println(flowgraph.Mermaid(out.Graph))
	default:
		log.Fatalf("unknown format %q, want json or mermaid", *format)
	}
}
