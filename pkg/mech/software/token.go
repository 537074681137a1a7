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

package software

import (
	"bytes"
	"encoding/binary"

	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// Exported-name token framing per RFC 2743 section 3.2:
//
//	0x04 0x01 | mech-len (2 bytes) | 0x06 oid-len oid | name-len (4 bytes) | name
//
// The mech-len field covers the full DER OID element including its tag and
// length octet.
var exportTokenID = []byte{0x04, 0x01}

// buildExportToken frames a canonical principal and its mechanism OID.
func buildExportToken(value []byte, mech types.OID) []byte {
	oidElem := make([]byte, 0, len(mech)+2)
	oidElem = append(oidElem, 0x06, byte(len(mech)))
	oidElem = append(oidElem, mech...)

	token := make([]byte, 0, 2+2+len(oidElem)+4+len(value))
	token = append(token, exportTokenID...)
	token = binary.BigEndian.AppendUint16(token, uint16(len(oidElem)))
	token = append(token, oidElem...)
	token = binary.BigEndian.AppendUint32(token, uint32(len(value)))
	token = append(token, value...)
	return token
}

// parseExportToken unpacks an exported-name token. ok is false on any
// framing violation; the payload is never partially interpreted.
func parseExportToken(token []byte) (value []byte, mech types.OID, ok bool) {
	if len(token) < 8 || !bytes.HasPrefix(token, exportTokenID) {
		return nil, nil, false
	}

	mechLen := int(binary.BigEndian.Uint16(token[2:4]))
	rest := token[4:]
	if mechLen < 2 || len(rest) < mechLen+4 {
		return nil, nil, false
	}

	oidElem := rest[:mechLen]
	if oidElem[0] != 0x06 || int(oidElem[1]) != mechLen-2 {
		return nil, nil, false
	}
	mech = types.OID(append([]byte(nil), oidElem[2:]...))

	rest = rest[mechLen:]
	nameLen := int(binary.BigEndian.Uint32(rest[:4]))
	rest = rest[4:]
	if len(rest) != nameLen {
		return nil, nil, false
	}

	return append([]byte(nil), rest...), mech, true
}
