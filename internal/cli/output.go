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
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintName prints the display form of a name
func (p *Printer) PrintName(display types.DisplayResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"name":      string(display.Name),
			"name_type": display.NameType.DotString(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Name:      %s\n", display.Name)
		if !display.NameType.IsAbsent() {
			fmt.Fprintf(p.writer, "Name Type: %s\n", display.NameType.DotString())
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintCompareResult prints the result of a name comparison
func (p *Printer) PrintCompareResult(a, b string, equal bool) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"a":     a,
			"b":     b,
			"equal": equal,
		})
	case OutputFormatText:
		if equal {
			fmt.Fprintf(p.writer, "%q and %q refer to the same entity\n", a, b)
		} else {
			fmt.Fprintf(p.writer, "%q and %q are different entities\n", a, b)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintExportToken prints an exported name token (base64 encoded)
func (p *Printer) PrintExportToken(token []byte) error {
	encoded := base64.StdEncoding.EncodeToString(token)
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"token": encoded,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, encoded)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintMechanismList prints the mechanism OIDs a provider supports
func (p *Printer) PrintMechanismList(provider string, mechs []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"provider":   provider,
			"mechanisms": mechs,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Mechanisms (%s):\n", provider)
		for _, m := range mechs {
			fmt.Fprintf(p.writer, "  - %s\n", m)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintStatusMessages prints the decoded message chain for a status code
func (p *Printer) PrintStatusMessages(code uint32, kind string, messages []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"code":     code,
			"kind":     kind,
			"messages": messages,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "%s code %d:\n", kind, code)
		for _, m := range messages {
			fmt.Fprintf(p.writer, "  %s\n", m)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
