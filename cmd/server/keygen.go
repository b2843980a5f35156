package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// minKeyBytes encodes to at least the 32 characters required of a signing key
const minKeyBytes = 24

type keygenOptions struct {
	bytes   int
	current string
}

func newKeygenCmd() *cobra.Command {
	opts := keygenOptions{bytes: 48}
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a new session signing key",
		Long: `Prints SESSION_SIGNING_KEYS with a freshly generated key first.
Pass the current list with --current to keep existing sessions valid while rotating.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd.OutOrStdout(), rand.Reader)
		},
	}
	cmd.Flags().IntVar(&opts.bytes, "bytes", opts.bytes, "number of random bytes in the key")
	cmd.Flags().StringVar(&opts.current, "current", "", "comma-separated keys currently in SESSION_SIGNING_KEYS")
	return cmd
}

func runKeygen(opts keygenOptions, out io.Writer, reader io.Reader) error {
	if opts.bytes < minKeyBytes {
		return fmt.Errorf("bytes must be at least %d", minKeyBytes)
	}
	if out == nil {
		return errors.New("output is required")
	}

	buf := make([]byte, opts.bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}

	keys := []string{base64.RawURLEncoding.EncodeToString(buf)}
	for _, k := range strings.Split(opts.current, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	_, err := fmt.Fprintf(out, "SESSION_SIGNING_KEYS=%s\n", strings.Join(keys, ","))
	return err
}
