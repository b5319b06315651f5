package propfile

import (
	"fmt"
	"io"

	"github.com/magiconair/properties"
)

// ParseProperties reads the properties format:
//
//   - lines whose first non-blank character is '#' or '!' are comments
//   - a key ends at the first unescaped '=', ':' or whitespace
//   - a line ending in an odd number of backslashes continues on the next
//     line, whose leading whitespace is dropped
//   - \t \n \r \f and \uXXXX escapes are decoded; any other escaped character
//     stands for itself
//
// Input is read as UTF-8. Later duplicates of a key replace earlier ones.
// ${key} references are kept verbatim.
func ParseProperties(r io.Reader) (map[string]string, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("propfile: read: %w", err)
	}
	p := properties.NewProperties()
	p.DisableExpansion = true
	if err := p.Load(buf, properties.UTF8); err != nil {
		return nil, fmt.Errorf("propfile: %w", err)
	}
	return p.Map(), nil
}
