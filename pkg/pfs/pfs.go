package pfs

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/beam-cloud/pfs/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel configures the logging verbosity for the PFS library.
// Valid levels: "debug", "info", "warn", "error", "disabled"
// Use "debug" to see per-section parse logs (headers, footers, chunk reassembly)
// Use "info" for high-level operation logs (default)
// Use "disabled" to suppress all logs
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled", "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
	return nil
}

type ExtractOptions struct {
	InputFile  string
	OutputPath string
}

type ExtractS3Options struct {
	InputFile string
	S3        storage.S3SinkOpts
}

type InspectOptions struct {
	InputFile string
}

// ExtractArchive loads a PFS firmware image and unpacks every section into
// OutputPath. When OutputPath is empty, "<input>.extracted" next to the
// image is used.
func ExtractArchive(options ExtractOptions) error {
	log.Info().Msgf("extracting PFS image: %s", options.InputFile)

	data, err := os.ReadFile(options.InputFile)
	if err != nil {
		return err
	}

	outputPath := options.OutputPath
	if outputPath == "" {
		outputPath = options.InputFile + ".extracted"
	}

	sink, err := storage.NewLocalSink(storage.LocalSinkOpts{Dir: outputPath})
	if err != nil {
		return err
	}
	defer sink.Close()

	extractor := NewExtractor(sink)
	extractErr := extractor.Extract(data)
	logSummary(extractor, outputPath)

	if extractErr != nil {
		return extractErr
	}

	log.Info().Msg("image extracted successfully")
	return nil
}

// ExtractArchiveToS3 unpacks a PFS firmware image directly into an S3 bucket
// instead of the local filesystem.
func ExtractArchiveToS3(ctx context.Context, options ExtractS3Options) error {
	log.Info().Msgf("extracting PFS image %s to s3://%s/%s", options.InputFile, options.S3.Bucket, options.S3.KeyPrefix)

	data, err := os.ReadFile(options.InputFile)
	if err != nil {
		return err
	}

	sink, err := storage.NewS3Sink(ctx, options.S3)
	if err != nil {
		return err
	}

	extractor := NewExtractor(sink)
	extractErr := extractor.Extract(data)
	logSummary(extractor, "s3://"+options.S3.Bucket)

	if extractErr != nil {
		return extractErr
	}

	log.Info().Msg("image extracted successfully")
	return nil
}

// InspectArchive traverses a PFS firmware image without writing anything,
// logging headers, footers and section details along the way.
func InspectArchive(options InspectOptions) error {
	log.Info().Msgf("inspecting PFS image: %s", options.InputFile)

	data, err := os.ReadFile(options.InputFile)
	if err != nil {
		return err
	}

	extractor := NewExtractor(storage.Discard)
	if err := extractor.Extract(data); err != nil {
		return err
	}

	extractor.Manifest().Walk(func(a Artifact) bool {
		log.Info().Msgf("%s (%d bytes)", a.Name, a.Size)
		return true
	})

	log.Info().Msgf("%d artifacts, %d warnings", extractor.Manifest().Len(), len(extractor.Warnings()))
	return nil
}

func logSummary(extractor *Extractor, dest string) {
	extractor.Manifest().Walk(func(a Artifact) bool {
		log.Debug().Msgf("wrote %s (%d bytes)", a.Name, a.Size)
		return true
	})

	log.Info().Msgf("%d artifacts written to %s, %d warnings",
		extractor.Manifest().Len(), dest, len(extractor.Warnings()))
}
