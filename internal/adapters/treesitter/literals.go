package treesitter

import (
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// stringValue decodes a string literal node.
func stringValue(n *ts.Node, text []byte) string {
	var sb strings.Builder
	for i := range n.NamedChildCount() {
		part := n.NamedChild(i)
		switch part.Kind() {
		case "string_fragment":
			sb.WriteString(part.Utf8Text(text))
		case "escape_sequence":
			sb.WriteString(unescape(part.Utf8Text(text)))
		}
	}
	return sb.String()
}

func unescape(seq string) string {
	if len(seq) < 2 {
		return seq
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(body) == 1 {
			return "\x00"
		}
	case 'x':
		if r, err := strconv.ParseUint(body[1:], 16, 32); err == nil {
			return string(rune(r))
		}
	case 'u':
		hex := strings.TrimSuffix(strings.TrimPrefix(body[1:], "{"), "}")
		if r, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return string(rune(r))
		}
	case '\n', '\r':
		return ""
	}
	return body
}

func parseNumber(lit string) (float64, bool) {
	lit = strings.ReplaceAll(lit, "_", "")
	if n, err := strconv.ParseFloat(lit, 64); err == nil {
		return n, true
	}
	if n, err := strconv.ParseInt(lit, 0, 64); err == nil {
		return float64(n), true
	}
	return 0, false
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// quote renders s as a double-quoted JavaScript string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028', '\u2029':
			sb.WriteString(`\u` + strconv.FormatInt(int64(r), 16))
		default:
			if r < 0x20 {
				sb.WriteString(`\u00`)
				if r < 0x10 {
					sb.WriteByte('0')
				}
				sb.WriteString(strconv.FormatInt(int64(r), 16))
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
