package commands

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goflash/strict"
	"github.com/spf13/cobra"
)

// ErrInvalidURI is returned by check when at least one input is invalid.
var ErrInvalidURI = errors.New("invalid request URI")

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	var (
		fromStdin bool
		isHex     bool
		prefix    string
	)
	cmd := &cobra.Command{
		Use:           "check [uri...]",
		Short:         "Classify request URIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: "Check each argument (or each line of stdin) and print whether it is a valid request URI.\n" +
			"Invalid inputs are printed with the longest parseable prefix as a proposed fix.",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := collectInputs(cmd.InOrStdin(), args, fromStdin, isHex)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errors.New("no input: pass URIs as arguments or use --stdin")
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for _, in := range inputs {
				res := strict.ValidateAndRepair([]byte(prefix), in, nil)
				if res.Valid {
					fmt.Fprintf(out, "valid\t%s\n", strconv.Quote(string(res.Original)))
					continue
				}
				invalid++
				fmt.Fprintf(out, "invalid\t%s\tfix %s\n", strconv.Quote(string(res.Original)), strconv.Quote(string(res.ProposedFix)))
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d: %w", invalid, len(inputs), ErrInvalidURI)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read one URI per line from stdin")
	cmd.Flags().BoolVar(&isHex, "hex", false, "inputs are hex-encoded bytes")
	cmd.Flags().StringVar(&prefix, "prefix", "", "mount prefix prepended to every input")

	return cmd
}

func collectInputs(stdin io.Reader, args []string, fromStdin, isHex bool) ([][]byte, error) {
	var raw []string
	if fromStdin {
		sc := bufio.NewScanner(stdin)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			raw = append(raw, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	raw = append(raw, args...)

	inputs := make([][]byte, 0, len(raw))
	for _, s := range raw {
		if !isHex {
			inputs = append(inputs, []byte(s))
			continue
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decode hex %q: %w", s, err)
		}
		inputs = append(inputs, b)
	}
	return inputs, nil
}
