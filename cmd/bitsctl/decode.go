package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danmuck/bitsctl/internal/observability"
	"github.com/danmuck/bitsctl/internal/protocol"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"github.com/spf13/cobra"
)

func decodeCmd(app *cli) *cobra.Command {
	var (
		tree    bool
		metrics bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode transmissions from a file or stdin",
		Long: `Decode reads one hex transmission per non-empty line and prints
"version_sum=<n> value=<v>" for each, in input order. With no argument
or "-" it reads stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			inputs, err := readTransmissions(in, app.cfg.Decoder.MaxDigits)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = app.cfg.Decoder.Workers
			}

			size := 0
			for _, hex := range inputs {
				size += 4 * len(hex)
			}
			decoder := protocol.NewDecoder(app.cfg.Decoder.Limits(), app.logger)
			start := time.Now()
			results, err := decodeChunks(cmd.Context(), decoder, inputs, workers, app.cfg.Decoder.MaxBatch)
			observability.RecordDecode("cli", protocol.ErrorKind(err), size, time.Since(start))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				fmt.Fprintf(out, "version_sum=%d value=%s\n", res.VersionSum, res.Value)
				if !tree {
					continue
				}
				for _, p := range res.Packets {
					if err := packet.Dump(out, p); err != nil {
						return err
					}
				}
			}
			app.logger.Info().
				Int("transmissions", len(results)).
				Dur("elapsed", time.Since(start)).
				Msg("decode complete")
			if metrics {
				return observability.WriteMetrics(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "print the packet tree under each result")
	cmd.Flags().BoolVarP(&metrics, "metrics", "m", false, "dump decode metrics to stderr in Prometheus text format")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent decodes (0 = config or GOMAXPROCS)")
	return cmd
}

// decodeChunks runs DecodeAll over consecutive slices of at most size
// inputs so a long file stays under the batch cap.
func decodeChunks(ctx context.Context, decoder *protocol.Decoder, inputs []string, workers, size int) ([]protocol.Result, error) {
	if size <= 0 || len(inputs) <= size {
		return decoder.DecodeAll(ctx, inputs, workers)
	}
	results := make([]protocol.Result, 0, len(inputs))
	for off := 0; off < len(inputs); off += size {
		chunk, err := decoder.DecodeAll(ctx, inputs[off:min(off+size, len(inputs))], workers)
		if err != nil {
			return nil, fmt.Errorf("chunk at transmission %d: %w", off, err)
		}
		results = append(results, chunk...)
	}
	return results, nil
}

// readTransmissions returns the trimmed non-empty lines of r. maxDigits sizes
// the scanner buffer so long lines reach the decoder's own limit check.
func readTransmissions(r io.Reader, maxDigits int) ([]string, error) {
	const minBuf = 64 * 1024
	limit := maxDigits + 2
	if maxDigits <= 0 {
		limit = 1 << 30
	}
	if limit < minBuf {
		limit = minBuf
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, minBuf), limit)
	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line exceeds %d bytes", protocol.ErrTooLarge, limit)
		}
		return nil, err
	}
	if len(lines) == 0 {
		return nil, protocol.ErrEmptyTransmission
	}
	return lines, nil
}
