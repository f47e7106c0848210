package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPromptUnknownProfile(t *testing.T) {
	_, err := BuildPrompt(Profile("bogus"), "text")
	require.Error(t, err)
}

func TestParseComposition(t *testing.T) {
	out, err := ParseComposition(json.RawMessage(`{"composition":{"BRD":70,"UNKNOWN":30},"confidence":"HIGH"}`))
	require.NoError(t, err)
	require.Equal(t, 70, out.Composition["BRD"])
	require.Equal(t, "HIGH", out.Confidence)

	_, err = ParseComposition(json.RawMessage(`{"confidence":"HIGH"}`))
	require.Error(t, err)
}

func TestParseSegmentation(t *testing.T) {
	out, err := ParseSegmentation(json.RawMessage(`{"segments":[{"segment_type":"SRS","start_char_index":0,"end_char_index":120}]}`))
	require.NoError(t, err)
	require.Len(t, out.Segments, 1)
	require.Equal(t, "SRS", out.Segments[0].SegmentType)
	require.Equal(t, 120, out.Segments[0].EndCharIndex)
}

func TestParseFindings(t *testing.T) {
	many, err := ParseFindings(json.RawMessage(`[{"mismatch_type":"naming","description":"d","severity":"High","confidence":"Medium","details":{"expected":"e","actual":"a"}}]`))
	require.NoError(t, err)
	require.Len(t, many, 1)
	require.Equal(t, "naming", many[0].MismatchType)

	// single-object responses are wrapped
	one, err := ParseFindings(json.RawMessage(`{"mismatch_type":"behavior","description":"d","severity":"Low","confidence":"Low","details":{}}`))
	require.NoError(t, err)
	require.Len(t, one, 1)

	empty, err := ParseFindings(json.RawMessage(`[]`))
	require.NoError(t, err)
	require.Empty(t, empty)

	none, err := ParseFindings(json.RawMessage(`null`))
	require.NoError(t, err)
	require.Empty(t, none)
}
