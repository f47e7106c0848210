package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	out, err := Extract("req.txt", []byte("line one\r\nline two\r\n"))
	require.NoError(t, err)
	require.Equal(t, "line one\nline two", out)
}

func TestExtractMarkdown(t *testing.T) {
	md := "# Requirements\n\nThe system *must* log in users.\n\n```go\nfunc Login() {}\n```\n"
	out, err := Extract("spec.md", []byte(md))
	require.NoError(t, err)
	require.Contains(t, out, "Requirements")
	require.Contains(t, out, "The system must log in users.")
	require.Contains(t, out, "func Login() {}")
	require.NotContains(t, out, "```")
	require.NotContains(t, out, "*must*")
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Extract("diagram.pdf", []byte("%PDF-1.4"))
	require.Error(t, err)
}

func TestExtractRejectsBinary(t *testing.T) {
	_, err := Extract("notes.txt", []byte{0xff, 0xfe, 0x00, 0x01})
	require.Error(t, err)
}
