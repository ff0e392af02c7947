package response

import (
	"bytes"
	"encoding/json"
	"errors"
)

// marshalWithView appends a "view" key to the JSON object produced by v.
func marshalWithView(v interface{}, view interface{}) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	extra, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}

	base = bytes.TrimSpace(base)
	if len(base) < 2 || base[len(base)-1] != '}' {
		return nil, errors.New("response: value does not marshal to an object")
	}

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	if len(base) > 2 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"view":`)
	buf.Write(extra)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
