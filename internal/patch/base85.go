package patch

import svnerrors "github.com/svndiff/svndiff/internal/errors"

// base85Alphabet is git's base85 character set (spec §6 "Blob payload
// charset"), also used by github.com/bluekeyes/go-gitdiff's encoder
// (other_examples/e194ff1b, BinaryFragment.String).
const base85Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!#$%&()*+-;<=>?@^_`{|}~"

var base85Decode [256]int8

func init() {
	for i := range base85Decode {
		base85Decode[i] = -1
	}
	for i, c := range []byte(base85Alphabet) {
		base85Decode[c] = int8(i)
	}
}

// base85Len returns the number of base85 characters needed to encode n
// bytes: groups of up to 4 bytes each map to exactly 5 characters.
func base85Len(n int) int {
	if n <= 0 {
		return 0
	}
	return ((n + 3) / 4) * 5
}

// decodeBase85 decodes exactly base85Len(outLen) characters of enc into
// outLen bytes (spec §4.I "Base85 decoder").
func decodeBase85(enc []byte, outLen int) ([]byte, error) {
	want := base85Len(outLen)
	if len(enc) < want {
		return nil, svnerrors.NewUnexpectedData("base85 line too short", nil)
	}

	out := make([]byte, 0, outLen)
	remaining := outLen
	for i := 0; remaining > 0; i += 5 {
		chunkBytes := remaining
		if chunkBytes > 4 {
			chunkBytes = 4
		}

		var v uint32
		for _, c := range enc[i : i+5] {
			d := base85Decode[c]
			if d < 0 {
				return nil, svnerrors.NewUnexpectedData("invalid base85 character", nil)
			}
			v = v*85 + uint32(d)
		}

		buf := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
		out = append(out, buf[:chunkBytes]...)
		remaining -= chunkBytes
	}
	return out, nil
}

// decodeBlobLine decodes one "<sizechar><base85...>" line (spec §4.I): A-Z
// maps to 1-26 decoded bytes, a-z to 27-52. A leading char outside that
// range fails with ErrorTypeUnexpectedData.
func decodeBlobLine(line []byte) (payload []byte, declaredLen int, err error) {
	if len(line) == 0 {
		return nil, 0, svnerrors.NewUnexpectedData("empty blob line", nil)
	}
	c := line[0]
	switch {
	case c >= 'A' && c <= 'Z':
		declaredLen = int(c-'A') + 1
	case c >= 'a' && c <= 'z':
		declaredLen = int(c-'a') + 27
	default:
		return nil, 0, svnerrors.NewUnexpectedData("malformed base85 length byte", nil)
	}

	payload, err = decodeBase85(line[1:], declaredLen)
	if err != nil {
		return nil, 0, err
	}
	return payload, declaredLen, nil
}
