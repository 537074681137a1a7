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
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/jeremyhahn/go-gssname/pkg/name"
	"github.com/jeremyhahn/go-gssname/pkg/types"
	"github.com/spf13/cobra"
)

var (
	nameTypeFlag  string
	mechanismFlag string
)

// nameCmd groups the name operations
var nameCmd = &cobra.Command{
	Use:   "name",
	Short: "Import, compare, canonicalize and export principal names",
}

var nameDisplayCmd = &cobra.Command{
	Use:   "display <name>",
	Short: "Import a name and print its display form",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runNameDisplay(getConfig(), args[0], nameTypeFlag, os.Stdout); err != nil {
			handleError(err)
		}
	},
}

var nameCompareCmd = &cobra.Command{
	Use:   "compare <name-a> <name-b>",
	Short: "Compare two names for identity equality",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runNameCompare(getConfig(), args[0], args[1], nameTypeFlag, os.Stdout); err != nil {
			handleError(err)
		}
	},
}

var nameCanonicalizeCmd = &cobra.Command{
	Use:   "canonicalize <name>",
	Short: "Canonicalize a name against a mechanism",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printVerbose("Canonicalizing against mechanism %s", mechanismFlag)
		if err := runNameCanonicalize(getConfig(), args[0], nameTypeFlag, mechanismFlag, os.Stdout); err != nil {
			handleError(err)
		}
	},
}

var nameExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Canonicalize a name and print its export token",
	Long: `Canonicalize a name against a mechanism and print the resulting
export token, base64 encoded. Only mechanism names can be exported, so the
name is canonicalized first.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printVerbose("Canonicalizing against mechanism %s", mechanismFlag)
		if err := runNameExport(getConfig(), args[0], nameTypeFlag, mechanismFlag, os.Stdout); err != nil {
			handleError(err)
		}
	},
}

var nameDecodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Re-import a base64 export token and print its display form",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runNameDecode(getConfig(), args[0], os.Stdout); err != nil {
			handleError(err)
		}
	},
}

func init() {
	nameCmd.PersistentFlags().StringVar(&nameTypeFlag, "name-type", "",
		"name type OID in dotted decimal (default: provider unspecified)")
	nameCanonicalizeCmd.Flags().StringVar(&mechanismFlag, "mech", types.MechKrb5.DotString(),
		"mechanism OID in dotted decimal")
	nameExportCmd.Flags().StringVar(&mechanismFlag, "mech", types.MechKrb5.DotString(),
		"mechanism OID in dotted decimal")

	nameCmd.AddCommand(nameDisplayCmd)
	nameCmd.AddCommand(nameCompareCmd)
	nameCmd.AddCommand(nameCanonicalizeCmd)
	nameCmd.AddCommand(nameExportCmd)
	nameCmd.AddCommand(nameDecodeCmd)
}

// parseNameType parses a dotted-decimal OID, mapping "" to the absent
// sentinel.
func parseNameType(s string) (types.OID, error) {
	if s == "" {
		return nil, nil
	}
	oid, err := types.ParseOID(s)
	if err != nil {
		return nil, fmt.Errorf("invalid name type %q: %w", s, err)
	}
	return oid, nil
}

// importArg imports a CLI argument as a name.
func importArg(cfg *Config, raw, nameType string) (*name.Name, error) {
	nt, err := parseNameType(nameType)
	if err != nil {
		return nil, err
	}
	provider, err := cfg.CreateProvider()
	if err != nil {
		return nil, err
	}
	return name.Import(provider, []byte(raw), nt)
}

func runNameDisplay(cfg *Config, raw, nameType string, w io.Writer) error {
	n, err := importArg(cfg, raw, nameType)
	if err != nil {
		return err
	}
	defer func() { _ = n.Release() }()

	display, err := n.Display(true)
	if err != nil {
		return err
	}
	return NewPrinter(cfg.OutputFormat, w).PrintName(display)
}

func runNameCompare(cfg *Config, rawA, rawB, nameType string, w io.Writer) error {
	nt, err := parseNameType(nameType)
	if err != nil {
		return err
	}
	provider, err := cfg.CreateProvider()
	if err != nil {
		return err
	}

	a, err := name.Import(provider, []byte(rawA), nt)
	if err != nil {
		return err
	}
	defer func() { _ = a.Release() }()

	b, err := name.Import(provider, []byte(rawB), nt)
	if err != nil {
		return err
	}
	defer func() { _ = b.Release() }()

	equal, err := name.Compare(a, b)
	if err != nil {
		return err
	}
	return NewPrinter(cfg.OutputFormat, w).PrintCompareResult(rawA, rawB, equal)
}

func runNameCanonicalize(cfg *Config, raw, nameType, mechanism string, w io.Writer) error {
	mechOID, err := types.ParseOID(mechanism)
	if err != nil {
		return fmt.Errorf("invalid mechanism %q: %w", mechanism, err)
	}

	n, err := importArg(cfg, raw, nameType)
	if err != nil {
		return err
	}
	defer func() { _ = n.Release() }()

	canonical, err := n.Canonicalize(mechOID)
	if err != nil {
		return err
	}
	defer func() { _ = canonical.Release() }()

	display, err := canonical.Display(true)
	if err != nil {
		return err
	}
	return NewPrinter(cfg.OutputFormat, w).PrintName(display)
}

func runNameExport(cfg *Config, raw, nameType, mechanism string, w io.Writer) error {
	mechOID, err := types.ParseOID(mechanism)
	if err != nil {
		return fmt.Errorf("invalid mechanism %q: %w", mechanism, err)
	}

	n, err := importArg(cfg, raw, nameType)
	if err != nil {
		return err
	}
	defer func() { _ = n.Release() }()

	canonical, err := n.Canonicalize(mechOID)
	if err != nil {
		return err
	}
	defer func() { _ = canonical.Release() }()

	token, err := canonical.Export()
	if err != nil {
		return err
	}
	return NewPrinter(cfg.OutputFormat, w).PrintExportToken(token)
}

func runNameDecode(cfg *Config, encoded string, w io.Writer) error {
	token, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("invalid base64 token: %w", err)
	}

	provider, err := cfg.CreateProvider()
	if err != nil {
		return err
	}

	n, err := name.Import(provider, token, types.NTExportName)
	if err != nil {
		return err
	}
	defer func() { _ = n.Release() }()

	display, err := n.Display(true)
	if err != nil {
		return err
	}
	return NewPrinter(cfg.OutputFormat, w).PrintName(display)
}
