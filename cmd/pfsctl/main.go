package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/beam-cloud/pfs/pkg/pfs"
	"github.com/beam-cloud/pfs/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "extract":
		extractCommand()
	case "inspect":
		inspectCommand()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `pfsctl - Dell PFS Firmware Image Tool

Usage:
  pfsctl <command> [options]

Commands:
  extract      Unpack a PFS firmware image into per-section files
  inspect      Walk a PFS firmware image and show its structure without writing

Examples:
  # Extract next to the input file (creates fw.bin.extracted/)
  pfsctl extract --in fw.bin

  # Extract to a chosen directory
  pfsctl extract --in fw.bin --out /tmp/fw

  # Upload extracted sections straight to S3
  pfsctl extract --in fw.bin --s3-bucket firmware --s3-key-prefix fw.bin --s3-region us-east-1

  # Show image structure
  pfsctl inspect --in fw.bin

Environment Variables:
  AWS_ACCESS_KEY_ID      S3 access key (extract --s3-bucket)
  AWS_SECRET_ACCESS_KEY  S3 secret key (extract --s3-bucket)
  PFSCTL_LOG_LEVEL       Log level (debug, info, warn, error, disabled)

`)
}

func extractCommand() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)

	var (
		inputFile   = fs.String("in", "", "PFS firmware image (required)")
		outputPath  = fs.String("out", "", "Output directory (default: <input>.extracted)")
		s3Bucket    = fs.String("s3-bucket", "", "Upload artifacts to this S3 bucket instead of writing locally")
		s3KeyPrefix = fs.String("s3-key-prefix", "", "Key prefix for uploaded artifacts")
		s3Region    = fs.String("s3-region", getEnvString("AWS_REGION", ""), "S3 bucket region")
		s3Endpoint  = fs.String("s3-endpoint", "", "Custom S3 endpoint")
		s3PathStyle = fs.Bool("s3-path-style", false, "Use path-style S3 addressing")
		verbose     = fs.Bool("verbose", false, "Verbose logging")
	)

	fs.Parse(os.Args[2:])

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --in is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	setupLogLevel(*verbose)

	var err error
	if *s3Bucket != "" {
		err = pfs.ExtractArchiveToS3(context.Background(), pfs.ExtractS3Options{
			InputFile: *inputFile,
			S3: storage.S3SinkOpts{
				Bucket:         *s3Bucket,
				KeyPrefix:      *s3KeyPrefix,
				Region:         *s3Region,
				Endpoint:       *s3Endpoint,
				ForcePathStyle: *s3PathStyle,
			},
		})
	} else {
		err = pfs.ExtractArchive(pfs.ExtractOptions{
			InputFile:  *inputFile,
			OutputPath: *outputPath,
		})
	}

	if err != nil {
		log.Fatal().Err(err).Msg("failed to extract image")
	}
}

func inspectCommand() {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)

	var (
		inputFile = fs.String("in", "", "PFS firmware image (required)")
		verbose   = fs.Bool("verbose", true, "Verbose logging")
	)

	fs.Parse(os.Args[2:])

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --in is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	setupLogLevel(*verbose)

	if err := pfs.InspectArchive(pfs.InspectOptions{InputFile: *inputFile}); err != nil {
		log.Fatal().Err(err).Msg("failed to inspect image")
	}
}

func setupLogLevel(verbose bool) {
	if level := getEnvString("PFSCTL_LOG_LEVEL", ""); level != "" {
		if err := pfs.SetLogLevel(level); err != nil {
			log.Fatal().Err(err).Msg("invalid PFSCTL_LOG_LEVEL")
		}
		return
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
