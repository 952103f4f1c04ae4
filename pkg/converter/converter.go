package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/als2midi/pkg/liveset"
)

// Format represents a file format
type Format string

const (
	FormatALS     Format = "als"
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

// ErrUnsupportedFormat is returned for inputs or outputs that are not a Live set or MIDI file
var ErrUnsupportedFormat = errors.New("unsupported format")

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".als", ".xml":
		return FormatALS
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	// Live sets are gzip containers, or bare XML once extracted
	if liveset.IsGzip(data) || bytes.HasPrefix(bytes.TrimSpace(data), []byte("<?xml")) {
		return FormatALS
	}

	return FormatUnknown
}

// Convert renders a parsed set and encodes it as MIDI
func (c *Converter) Convert(ctx context.Context, set *liveset.LiveSet) (*ConversionResult, error) {
	tempo, tracks, err := c.Render(ctx, set)
	if err != nil {
		return nil, err
	}

	data, err := NewMIDIWriter(c.opts.TicksPerQuarter).GenerateMIDI(tempo, tracks)
	if err != nil {
		return nil, err
	}

	res := &ConversionResult{Data: data, Format: FormatMIDI, Tracks: len(tracks), Events: len(tempo.Points)}
	for _, tr := range tracks {
		res.Notes += len(tr.Notes)
		res.Events += tr.Events()
	}
	return res, nil
}

// ConvertBytes parses Live set data and converts it
func (c *Converter) ConvertBytes(ctx context.Context, data []byte, name string) (*ConversionResult, error) {
	if f := DetectFormatFromContent(data); f != FormatALS {
		return nil, fmt.Errorf("%w: expected a Live set, got %s", ErrUnsupportedFormat, f)
	}
	set, err := liveset.Read(bytes.NewReader(data), name)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, set)
}

// ConvertFile converts a Live set on disk to a MIDI file
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) (*ConversionResult, error) {
	if DetectFormat(outputPath) != FormatMIDI {
		return nil, fmt.Errorf("%w: cannot write %s, output must be .mid or .midi", ErrUnsupportedFormat, filepath.Base(outputPath))
	}

	set, err := liveset.Open(inputPath)
	if err != nil {
		return nil, err
	}

	res, err := c.Convert(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, res.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return res, nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"als -> midi",
	}
}
