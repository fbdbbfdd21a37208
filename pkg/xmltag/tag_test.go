package xmltag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ucl.go/pkg/mem"
)

func newTestPool(t *testing.T) *mem.Pool {
	p, err := mem.NewPool(1024, 32)
	require.NoError(t, err)
	return p
}

func nulTerminated(s string) []byte {
	return append([]byte(s), 0, 0, 0)
}

func TestFindTag(t *testing.T) {
	p := newTestPool(t)
	buf := nulTerminated("<UCL><CMD>LightOn</CMD><PARAM>42</PARAM></UCL>")
	testCases := []struct {
		tag  string
		kind Kind
		at   int
	}{
		{"UCL", Open, 0},
		{"UCL", Close, 40},
		{"CMD", Open, 5},
		{"CMD", Close, 17},
		{"PARAM", Open, 23},
		{"PARAM", Close, 32},
		{"NOPE", Open, -1},
		{"", Open, -1},
		{"UCL", Kind(2), -1},
		{strings.Repeat("X", 31), Open, -1},
	}
	for _, tc := range testCases {
		t.Run(tc.tag, func(t *testing.T) {
			require.Equal(t, tc.at, FindTag(p, buf, tc.tag, tc.kind))
			require.Equal(t, p.BlockCount(), p.FreeBlocks(), "scratch block leaked")
		})
	}
}

func TestFindTagStopsAtNUL(t *testing.T) {
	p := newTestPool(t)
	buf := append(nulTerminated("<UCL>"), []byte("</UCL>")...)
	require.Equal(t, 0, FindTag(p, buf, "UCL", Open))
	require.Equal(t, -1, FindTag(p, buf, "UCL", Close))
}

func TestFindTagPoolExhausted(t *testing.T) {
	p := newTestPool(t)
	all := p.AllocatePages(p.BlockCount())
	require.Equal(t, -1, FindTag(p, nulTerminated("<UCL>"), "UCL", Open))
	p.Free(all)
	require.Equal(t, 0, FindTag(p, nulTerminated("<UCL>"), "UCL", Open))
}

func TestExtractValue(t *testing.T) {
	p := newTestPool(t)
	testCases := []struct {
		name   string
		buf    string
		tag    string
		outLen int
		value  string
		status Status
	}{
		{"command", "<UCL><CMD>LightOn</CMD><PARAM>42</PARAM></UCL>", "CMD", 32, "LightOn", OK},
		{"param", "<UCL><CMD>LightOn</CMD><PARAM>42</PARAM></UCL>", "PARAM", 32, "42", OK},
		{"empty value", "<UCL><CMD></CMD></UCL>", "CMD", 32, "", OK},
		{"exact fit", "<CMD>abc</CMD>", "CMD", 4, "abc", OK},
		{"too long", "<CMD>abcd</CMD>", "CMD", 4, "", BadXML},
		{"missing open", "<UCL>LightOn</CMD></UCL>", "CMD", 32, "", BadXML},
		{"missing close", "<UCL><CMD>LightOn</UCL>", "CMD", 32, "", BadXML},
		{"reversed", "<UCL></CMD>LightOn<CMD></UCL>", "CMD", 32, "", BadXML},
		{"missing both", "<UCL></UCL>", "PARAM", 32, "", BadXML},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := make([]byte, tc.outLen)
			n, status := ExtractValue(p, nulTerminated(tc.buf), tc.tag, out)
			require.Equal(t, tc.status, status)
			if status == OK {
				require.Equal(t, len(tc.value), n)
				require.Equal(t, tc.value, string(out[:n]))
				require.Equal(t, byte(0), out[n])
			}
			require.Equal(t, p.BlockCount(), p.FreeBlocks())
		})
	}
}

func TestExtractValueInvalidInput(t *testing.T) {
	p := newTestPool(t)
	buf := nulTerminated("<CMD>x</CMD>")
	out := make([]byte, 8)

	_, status := ExtractValue(nil, buf, "CMD", out)
	require.Equal(t, InvalidOperation, status)
	_, status = ExtractValue(p, nil, "CMD", out)
	require.Equal(t, InvalidOperation, status)
	_, status = ExtractValue(p, buf, "", out)
	require.Equal(t, InvalidOperation, status)
	_, status = ExtractValue(p, buf, "CMD", nil)
	require.Equal(t, InvalidOperation, status)
	_, status = ExtractValue(p, buf, "CMD", out[:0])
	require.Equal(t, InvalidOperation, status)
}

func TestEncode(t *testing.T) {
	frame := Encode("UCL", Field{"CMD", "LightOn"}, Field{"PARAM", "42"})
	require.Equal(t, "<UCL><CMD>LightOn</CMD><PARAM>42</PARAM></UCL>", string(frame))
	require.Equal(t, "<UCL>", string(Marker("UCL", Open)))
	require.Equal(t, "</UCL>", string(Marker("UCL", Close)))
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "ok", OK.String())
	require.Equal(t, "no command found", NoCommandFound.String())
	require.Equal(t, "invalid operation", InvalidOperation.String())
	require.Equal(t, "bad xml", BadXML.String())
	require.Equal(t, "unknown", Status(1).String())
}
