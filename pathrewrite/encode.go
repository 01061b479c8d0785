/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package pathrewrite

import (
	"net/url"
	"strings"
)

// EncodePathSegment percent-encodes raw for use as a single URL path segment.
// Letters, digits and "-_.~" are left alone; every other byte of the UTF-8
// encoding becomes %XX. This matches JavaScript's encodeURIComponent for the
// identifiers Microsoft Graph hands out, and additionally escapes "!'()*".
//
// url.PathEscape is not used because it leaves "+", "@", ":" and friends
// unescaped, which Graph rejects inside calendar and folder identifiers.
func EncodePathSegment(raw string) string {
	// QueryEscape only spells a space as "+"; a literal "+" is already %2B.
	return strings.ReplaceAll(url.QueryEscape(raw), "+", "%20")
}
