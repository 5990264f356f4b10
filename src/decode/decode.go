// Package decode implements the `pngtap decode` command: it parses a PNG's
// chunk container, verifies chunk checksums, and optionally extracts,
// inflates, and unfilters the IDAT data into artifact files.
package decode

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pngtap/pngtap/src/config"
	"github.com/pngtap/pngtap/src/logging"
	"github.com/pngtap/pngtap/src/oops"
	"github.com/pngtap/pngtap/src/png"
	"github.com/pngtap/pngtap/src/tool"
	"github.com/pngtap/pngtap/src/utils"
	"github.com/spf13/cobra"
)

type stage int

const (
	stageExtract stage = iota
	stageInflate
	stageUnfilter
)

func init() {
	decodeCommand := &cobra.Command{
		Use:   "decode [file]",
		Short: "Pull apart a PNG's IDAT data",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				fmt.Fprintf(os.Stderr, "You must provide exactly one PNG file.\n\n")
				cmd.Usage()
				os.Exit(tool.ExitUsage)
			}
			extract, _ := cmd.Flags().GetBool("extract-idat")
			decompress, _ := cmd.Flags().GetBool("decompress")
			unfilter, _ := cmd.Flags().GetBool("unfilter")
			config.Config.Strict, _ = cmd.Flags().GetBool("strict")

			if err := run(args[0], stagePlan(extract, decompress, unfilter), decompress); err != nil {
				tool.Fail(err)
			}
		},
	}
	decodeCommand.Flags().Bool("extract-idat", false, "Dump each IDAT payload and its stored CRC32")
	decodeCommand.Flags().Bool("decompress", false, "Save the inflated IDAT data to a file")
	decodeCommand.Flags().Bool("unfilter", false, "Reverse scanline filtering and save the raw pixel bytes")
	decodeCommand.Flags().Bool("strict", false, "Treat chunk CRC mismatches as fatal")
	tool.Command.AddCommand(decodeCommand)
}

// stagePlan resolves the flag combination into the ordered list of stages to
// run. Unfiltering needs the inflated bytes, so --unfilter pulls in the
// inflate stage even when --decompress was not given.
func stagePlan(extract, decompress, unfilter bool) []stage {
	var plan []stage
	if extract {
		plan = append(plan, stageExtract)
	}
	if decompress || unfilter {
		plan = append(plan, stageInflate)
	}
	if unfilter {
		plan = append(plan, stageUnfilter)
	}
	return plan
}

// run executes the resolved stages and returns the first fatal error, which
// the command wrapper maps to an exit code. Panics become errors too; a
// one-shot process must never swallow a failure and exit zero.
func run(file string, plan []stage, persistInflated bool) (err error) {
	defer utils.RecoverPanicAsError(&err)

	data, err := os.ReadFile(file)
	if err != nil {
		return oops.New(err, "failed to read %s", file)
	}

	f, err := png.Parse(data)
	if err != nil {
		return err
	}
	logging.Info().
		Uint32("width", f.Header.Width).
		Uint32("height", f.Header.Height).
		Uint8("bit_depth", f.Header.BitDepth).
		Uint8("color_type", f.Header.ColorType).
		Int("bytes_per_pixel", f.Header.BytesPerPixel()).
		Int("stride", f.Header.Stride()).
		Int("chunks", len(f.Chunks)).
		Msg("parsed png")

	for _, bad := range f.VerifyIntegrity() {
		bad := bad
		if config.Config.Strict {
			return &bad
		}
		logging.Warn().
			Int("chunk", bad.Index).
			Str("type", bad.Type).
			Str("stored", fmt.Sprintf("%08x", bad.Stored)).
			Str("computed", fmt.Sprintf("%08x", bad.Computed)).
			Msg("chunk crc mismatch")
	}

	dir := artifactsDir(file)
	var inflated []byte
	for _, s := range plan {
		switch s {
		case stageExtract:
			if err := extractIDAT(f, dir); err != nil {
				return err
			}
		case stageInflate:
			inflated, err = png.Inflate(f.IDAT())
			if err != nil {
				return err
			}
			logging.Info().Int("bytes", len(inflated)).Msg("inflated idat data")
			if persistInflated {
				if err := writeArtifact(dir, "idat_uncompressed.bin", inflated); err != nil {
					return err
				}
			}
		case stageUnfilter:
			raw, err := png.Unfilter(inflated, f.Header)
			if err != nil {
				return err
			}
			logging.Info().Int("bytes", len(raw)).Msg("unfiltered scanlines")
			if err := writeArtifact(dir, "idat_unfiltered.bin", raw); err != nil {
				return err
			}
		}
	}
	return nil
}

// artifactsDir names the output directory for a given input file:
// img.png gets its artifacts under _img/.
func artifactsDir(file string) string {
	base := filepath.Base(file)
	return "_" + strings.TrimSuffix(base, filepath.Ext(base))
}

func extractIDAT(f *png.File, dir string) error {
	n := 0
	for i := range f.Chunks {
		chunk := &f.Chunks[i]
		if chunk.Type != "IDAT" {
			continue
		}
		n++
		payload := make([]byte, 0, 4+len(chunk.Data))
		payload = append(payload, chunk.Type...)
		payload = append(payload, chunk.Data...)
		var storedCRC [4]byte
		binary.BigEndian.PutUint32(storedCRC[:], chunk.CRC)

		sub := filepath.Join(dir, "idat_chunks")
		if err := writeArtifact(sub, fmt.Sprintf("idat_chunk_%03d.bin", n), payload); err != nil {
			return err
		}
		if err := writeArtifact(sub, fmt.Sprintf("idat_chunk_%03d_crc32.bin", n), storedCRC[:]); err != nil {
			return err
		}
	}
	logging.Info().Int("count", n).Msg("extracted idat chunks")
	return nil
}

func writeArtifact(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return oops.New(err, "failed to create artifacts directory %s", dir)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.New(err, "failed to write %s", path)
	}
	logging.Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote artifact")
	return nil
}
