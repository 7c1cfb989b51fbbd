package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write writes v as strict JSON followed by a newline.
func Write(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// LineWriter emits one compact JSON value per line. Used by streaming commands,
// where a pretty-printed value would break line-oriented consumers.
type LineWriter struct {
	enc *json.Encoder
}

func NewLineWriter(w io.Writer) *LineWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &LineWriter{enc: enc}
}

func (lw *LineWriter) Write(v any) error {
	return lw.enc.Encode(v)
}
