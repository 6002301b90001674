package docimport

import (
	"bytes"
	"regexp"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// richTextDetector handles legacy .doc exports that are really Word HTML
// containers: an HTML fragment wrapped in binary or MIME framing. It
// locates the fragment, fixes the charset, and delegates to the HTML
// reducer. Genuine binary .doc files without an embedded fragment are
// rejected as unrecognized.
type richTextDetector struct{}

var (
	htmlStartRe = regexp.MustCompile(`(?i)<html[\s>]`)
	charsetRe   = regexp.MustCompile(`(?i)charset\s*=\s*"?([a-z0-9-]+)`)
)

func (d *richTextDetector) Parse(raw []byte) ([]Block, error) {
	loc := htmlStartRe.FindIndex(raw)
	if loc == nil {
		return nil, ErrUnrecognizedFormat
	}
	fragment := raw[loc[0]:]
	if end := bytes.LastIndex(bytes.ToLower(fragment), []byte("</html>")); end >= 0 {
		fragment = fragment[:end+len("</html>")]
	}
	fragment = decodeCharset(fragment)

	blocks, err := (&htmlDetector{}).Parse(fragment)
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// decodeCharset converts GBK-family fragments to UTF-8. Anything else is
// passed through as-is.
func decodeCharset(fragment []byte) []byte {
	m := charsetRe.FindSubmatch(fragment)
	if m == nil {
		return fragment
	}
	switch string(bytes.ToLower(m[1])) {
	case "gb2312", "gbk", "gb18030":
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), fragment)
		if err != nil {
			return fragment
		}
		return decoded
	}
	return fragment
}
