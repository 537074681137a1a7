// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gssname.
//
// go-gssname is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jeremyhahn/go-gssname/pkg/status"
	"github.com/jeremyhahn/go-gssname/pkg/types"
	"github.com/spf13/cobra"
)

var statusKindFlag string

// statusCmd decodes a status code into its message chain
var statusCmd = &cobra.Command{
	Use:   "status <code>",
	Short: "Decode a status code into readable messages",
	Long: `Decode a major (GSS) or minor (mechanism-specific) status code into
its full message chain using the configured provider.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStatus(getConfig(), args[0], statusKindFlag, os.Stdout); err != nil {
			handleError(err)
		}
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusKindFlag, "kind", "gss",
		"status code kind (gss, mech)")
}

func runStatus(cfg *Config, codeArg, kind string, w io.Writer) error {
	code, err := strconv.ParseUint(codeArg, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid status code %q: %w", codeArg, err)
	}

	var statusKind types.StatusKind
	switch kind {
	case "gss":
		statusKind = types.GSSCode
	case "mech":
		statusKind = types.MechCode
	default:
		return fmt.Errorf("invalid status kind %q (must be gss or mech)", kind)
	}

	provider, err := cfg.CreateProvider()
	if err != nil {
		return err
	}

	decoder := status.NewMessageDecoder(provider, uint32(code), statusKind, nil)
	return NewPrinter(cfg.OutputFormat, w).PrintStatusMessages(uint32(code), kind, decoder.All())
}
