// Package main is the entry point for als2midi CLI
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/james-see/als2midi/pkg/api"
	"github.com/james-see/als2midi/pkg/converter"
	"github.com/james-see/als2midi/pkg/liveset"
	"github.com/james-see/als2midi/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile       string
	quantum          float64
	ticksPerQuarter  uint16
	separateChannels bool
	noVolume         bool
	noPan            bool
	includeDisabled  bool
	workers          int
	serverPort       int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "als2midi",
	Short: "Convert Ableton Live sets to MIDI files",
	Long: `als2midi converts the arrangement of an Ableton Live set (.als) into a
Standard MIDI File.

Looping clips are unrolled onto the timeline and automation curves (tempo,
track volume and pan, clip envelopes for controllers, pitch bend and channel
pressure) are resampled into dense MIDI event streams.

Examples:
  als2midi convert song.als -o song.mid
  als2midi convert song.als --quantum 0.0625 --ppq 960
  als2midi inspect song.als
  als2midi extract song.als -o song.xml
  als2midi tui
  als2midi serve --port 8080`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.als>",
	Short: "Convert a Live set to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.als|input.mid>",
	Short: "Summarize the tracks, notes and automation of a Live set or MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var extractCmd = &cobra.Command{
	Use:   "extract <input.als>",
	Short: "Write the uncompressed XML document of a Live set",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	defaults := converter.DefaultOptions()

	// Conversion flags, shared by convert and inspect
	for _, cmd := range []*cobra.Command{convertCmd, inspectCmd} {
		cmd.Flags().Float64VarP(&quantum, "quantum", "q", defaults.Quantum, "Automation resolution in beats")
	}
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	convertCmd.Flags().Uint16Var(&ticksPerQuarter, "ppq", defaults.TicksPerQuarter, "Ticks per quarter note")
	convertCmd.Flags().BoolVar(&separateChannels, "separate-channels", defaults.SeparateChannels, "Give each track its own MIDI channel")
	convertCmd.Flags().BoolVar(&noVolume, "no-volume", false, "Skip track volume automation (CC 7)")
	convertCmd.Flags().BoolVar(&noPan, "no-pan", false, "Skip track pan automation (CC 10)")
	convertCmd.Flags().BoolVar(&includeDisabled, "include-disabled", false, "Keep notes that are disabled in their clip")
	convertCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Tracks rendered in parallel (0 = number of CPUs)")

	// extract command
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .xml file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", api.DefaultPort, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func getOptions() converter.Options {
	opts := converter.DefaultOptions()
	opts.Quantum = quantum
	opts.TicksPerQuarter = ticksPerQuarter
	opts.SeparateChannels = separateChannels
	opts.ExportVolume = !noVolume
	opts.ExportPan = !noPan
	opts.IncludeDisabled = includeDisabled
	opts.Workers = workers
	return opts
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	conv, err := converter.New(getOptions())
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s -> %s\n", input, output)
	res, err := conv.ConvertFile(cmd.Context(), input, output)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d tracks, %s notes, %s automation events (%s)\n",
		res.Tracks, humanize.Comma(int64(res.Notes)), humanize.Comma(int64(res.Events)), humanize.Bytes(uint64(len(res.Data))))
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	input := args[0]
	out := cmd.OutOrStdout()

	if converter.DetectFormat(input) == converter.FormatMIDI {
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		sum, err := converter.SummarizeMIDI(data)
		if err != nil {
			return err
		}
		printMIDISummary(out, input, sum)
		return nil
	}

	opts := converter.DefaultOptions()
	opts.Quantum = quantum
	conv, err := converter.New(opts)
	if err != nil {
		return err
	}
	set, err := liveset.Open(input)
	if err != nil {
		return err
	}
	printSetSummary(out, conv.Describe(set))
	return nil
}

func printSetSummary(w io.Writer, sum converter.SetSummary) {
	fmt.Fprintf(w, "%s - %g BPM, %d tracks\n", sum.Name, sum.Tempo, len(sum.Tracks))
	for _, c := range sum.Curves {
		printCurve(w, "  ", c)
	}
	for _, tr := range sum.Tracks {
		fmt.Fprintf(w, "\n%s: %d clips, %s stored notes, %s on the timeline\n",
			tr.Name, tr.Clips, humanize.Comma(int64(tr.StoredNotes)), humanize.Comma(int64(tr.Notes)))
		for _, c := range tr.Curves {
			printCurve(w, "  ", c)
		}
		for _, e := range tr.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
	}
}

func printCurve(w io.Writer, indent string, c converter.CurveSummary) {
	var kinds []string
	for kind, n := range c.Segments {
		kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
	}
	sort.Strings(kinds)
	fmt.Fprintf(w, "%s%s: %d keyframes [%s] -> %s samples\n",
		indent, c.Target, c.Keyframes, strings.Join(kinds, " "), humanize.Comma(int64(c.Samples)))
}

func printMIDISummary(w io.Writer, name string, sum *converter.MIDISummary) {
	fmt.Fprintf(w, "%s - format %d, %d ticks per quarter, %d tracks, %d tempo changes\n",
		name, sum.Format, sum.TicksPerQuarter, len(sum.Tracks), sum.TempoChanges)
	for i, tr := range sum.Tracks {
		fmt.Fprintf(w, "  %2d %-20s notes=%d cc=%d bend=%d pressure=%d\n",
			i, tr.Name, tr.Notes, tr.Controllers, tr.PitchBends, tr.Pressure)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".xml")

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	r, err := liveset.Decompress(in)
	if err != nil {
		return err
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Extracted %s -> %s (%s)\n", input, output, humanize.Bytes(uint64(n)))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	fmt.Printf("Swagger docs available at %s\n", api.DocsURL(serverPort))
	return api.StartServer(serverPort)
}
