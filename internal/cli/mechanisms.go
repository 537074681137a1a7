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

	"github.com/spf13/cobra"
)

// mechanismsCmd lists the mechanism OIDs the provider supports
var mechanismsCmd = &cobra.Command{
	Use:   "mechanisms",
	Short: "List the mechanism OIDs the provider supports",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMechanisms(getConfig(), os.Stdout); err != nil {
			handleError(err)
		}
	},
}

func runMechanisms(cfg *Config, w io.Writer) error {
	provider, err := cfg.CreateProvider()
	if err != nil {
		return err
	}

	oids, st := provider.Mechanisms()
	if !st.Ok() {
		return fmt.Errorf("mechanism inquiry failed: major %d", st.Major)
	}

	mechs := make([]string, 0, len(oids))
	for _, oid := range oids {
		mechs = append(mechs, oid.DotString())
	}
	return NewPrinter(cfg.OutputFormat, w).PrintMechanismList(provider.Name(), mechs)
}
