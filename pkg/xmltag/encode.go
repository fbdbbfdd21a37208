package xmltag

import "bytes"

// Field is a named value wrapped in its own tags.
type Field struct {
	Tag   string
	Value string
}

// Encode builds a frame: <parent><tag>value</tag>...</parent>.
func Encode(parent string, fields ...Field) []byte {
	var w bytes.Buffer
	writeTag(&w, parent, Open)
	for _, f := range fields {
		writeTag(&w, f.Tag, Open)
		w.WriteString(f.Value)
		writeTag(&w, f.Tag, Close)
	}
	writeTag(&w, parent, Close)
	return w.Bytes()
}

// Marker returns the open or close form of tag.
func Marker(tag string, kind Kind) []byte {
	var w bytes.Buffer
	writeTag(&w, tag, kind)
	return w.Bytes()
}

func writeTag(w *bytes.Buffer, tag string, kind Kind) {
	w.WriteByte('<')
	if kind == Close {
		w.WriteByte('/')
	}
	w.WriteString(tag)
	w.WriteByte('>')
}
