package chatcontent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParts(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		want    []string // expected text per part, "" for non-text
	}{
		{
			name:    "single text part",
			payload: `[{"type":"text","text":"hello"}]`,
			want:    []string{"hello"},
		},
		{
			name:    "multiple text parts keep order",
			payload: `[{"type":"text","text":"first"},{"type":"text","text":"second"}]`,
			want:    []string{"first", "second"},
		},
		{
			name:    "unknown kind is preserved opaquely",
			payload: `[{"type":"tool-call","toolName":"search","args":{"q":"revenue"}},{"type":"text","text":"done"}]`,
			want:    []string{"", "done"},
		},
		{
			name:    "empty text is still valid",
			payload: `[{"type":"text","text":""}]`,
			want:    []string{""},
		},
		{
			name:    "not an array",
			payload: `{"type":"text","text":"hello"}`,
			wantErr: true,
		},
		{
			name:    "not json at all",
			payload: `this is not json`,
			wantErr: true,
		},
		{
			name:    "part without type tag",
			payload: `[{"text":"hello"}]`,
			wantErr: true,
		},
		{
			name:    "text part without text field",
			payload: `[{"type":"text"}]`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := DecodeParts([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, parts, len(tt.want))
			for i, text := range tt.want {
				assert.Equal(t, text, parts[i].Text)
			}
		})
	}
}

func TestPartsRoundTrip(t *testing.T) {
	original := `[{"type":"tool-call","toolName":"search"},{"type":"text","text":"answer"}]`

	parts, err := DecodeParts([]byte(original))
	require.NoError(t, err)

	encoded, err := EncodeParts(parts)
	require.NoError(t, err)

	again, err := DecodeParts(encoded)
	require.NoError(t, err)

	require.Len(t, again, 2)
	assert.Equal(t, "tool-call", again[0].Type)
	assert.JSONEq(t, `{"type":"tool-call","toolName":"search"}`, string(again[0].Raw))
	assert.Equal(t, "answer", again[1].Text)
}

func TestEncodePartsRejectsUnserializable(t *testing.T) {
	_, err := EncodeParts([]Part{{Type: "image"}})
	assert.Error(t, err)
}

func TestDecodeMetadata(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		wantLen int
	}{
		{
			name:    "nil payload means no metadata",
			payload: "",
			wantLen: 0,
		},
		{
			name:    "sources with and without url",
			payload: `{"sources":[{"documentId":"a","title":"Report A","url":"https://x"},{"documentId":"b","title":"Report B"}]}`,
			wantLen: 2,
		},
		{
			name:    "source missing documentId",
			payload: `{"sources":[{"title":"Report A"}]}`,
			wantErr: true,
		},
		{
			name:    "source missing title",
			payload: `{"sources":[{"documentId":"a"}]}`,
			wantErr: true,
		},
		{
			name:    "garbage payload",
			payload: `{{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := DecodeMetadata([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.payload == "" {
				assert.Nil(t, md)
				return
			}
			assert.Len(t, md.Sources, tt.wantLen)
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	md := &Metadata{Sources: []Source{
		{DocumentId: "a", Title: "Report A", URL: "https://x"},
		{DocumentId: "b", Title: "Report B"},
	}}

	encoded, err := EncodeMetadata(md)
	require.NoError(t, err)

	decoded, err := DecodeMetadata(encoded)
	require.NoError(t, err)
	assert.Equal(t, md, decoded)

	none, err := EncodeMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestJoinText(t *testing.T) {
	parts := []Part{
		TextPart("What was"),
		{Type: "tool-call", Raw: []byte(`{"type":"tool-call"}`)},
		TextPart("Q1 revenue?"),
	}
	assert.Equal(t, "What was Q1 revenue?", JoinText(parts))
	assert.Equal(t, "", JoinText(nil))
}
