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

// Package status translates the raw major/minor status pairs reported by
// mechanism providers into decoded, human-readable errors. A status code may
// carry more than one message; MessageDecoder walks the provider's
// continuation cursor until the message list is exhausted, and Error
// composes the full major and minor message lists into a single,
// self-contained failure report.
package status

import (
	"fmt"

	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// MessageDecoder retrieves the ordered message list for a single status
// code. It is a two-state machine: pending (more messages may follow) and
// exhausted. The sequence is finite and non-restartable; create a new
// decoder to read the messages again.
//
// Decode failures never escape the decoder. If the provider reports a
// non-success status (or panics) while producing a message, the decoder
// substitutes a fixed placeholder and transitions to exhausted.
type MessageDecoder struct {
	provider types.Provider
	code     uint32
	kind     types.StatusKind
	mech     types.OID

	msgContext uint32
	exhausted  bool
}

// NewMessageDecoder creates a decoder for the given status code. kind
// selects the major or minor interpretation of code. mech may be nil when
// no mechanism applies. The decoder starts pending with a zero continuation
// context.
func NewMessageDecoder(p types.Provider, code uint32, kind types.StatusKind, mech types.OID) *MessageDecoder {
	return &MessageDecoder{
		provider: p,
		code:     code,
		kind:     kind,
		mech:     mech,
	}
}

// Next returns the next message for the code. ok is false once the decoder
// is exhausted and no message is returned.
func (d *MessageDecoder) Next() (msg string, ok bool) {
	if d.exhausted {
		return "", false
	}

	raw, next, more, err := d.step()
	if err != nil {
		d.exhausted = true
		return d.placeholder(), true
	}

	d.msgContext = next
	if !more || next == 0 {
		d.exhausted = true
	}
	return string(raw), true
}

// All drains the decoder into an ordered message list. The list contains at
// least one entry, even when every decode step failed.
func (d *MessageDecoder) All() []string {
	msgs := make([]string, 0, 2)
	for {
		msg, ok := d.Next()
		if !ok {
			break
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, d.placeholder())
	}
	return msgs
}

// step performs one provider query, converting panics and non-success
// statuses into an ordinary error for local recovery.
func (d *MessageDecoder) step() (msg []byte, next uint32, more bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("status: provider panic during decode: %v", r)
		}
	}()

	if d.provider == nil {
		return nil, 0, false, fmt.Errorf("status: no provider")
	}

	raw, nextCtx, cont, st := d.provider.DisplayStatus(d.code, d.kind, d.mech, d.msgContext)
	if !st.Ok() {
		return nil, 0, false, fmt.Errorf("status: display_status failed: major %d minor %d", st.Major, st.Minor)
	}
	return raw, nextCtx, cont, nil
}

func (d *MessageDecoder) placeholder() string {
	return fmt.Sprintf("issue decoding code: %d", d.code)
}
