package chatcontent

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const PartTypeText = "text"

// Part is one typed fragment of a message body. Text fragments are fully
// decoded; any other well-formed fragment kind is preserved verbatim in Raw
// so it survives a read-modify-write cycle untouched.
type Part struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	Raw  json.RawMessage `json:"-"`
}

// TextPart builds a text fragment.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// MarshalJSON keeps non-text fragments byte-identical to their stored form.
func (p Part) MarshalJSON() ([]byte, error) {
	if p.Type != PartTypeText && len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: p.Type, Text: p.Text})
}

// Source is a citation pointing at a document. URL may be empty, in which
// case the source is displayable but not clickable.
type Source struct {
	DocumentId string `json:"documentId"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
}

// Metadata is the optional message metadata envelope.
type Metadata struct {
	Sources []Source `json:"sources,omitempty"`
}

type partEnvelope struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

// DecodeParts parses a stored parts payload into ordered fragments.
// Parsing is strict: a payload that is not a JSON array of objects with a
// type tag, or a text fragment without a text field, is an error rather
// than an empty result.
func DecodeParts(data []byte) ([]Part, error) {
	if len(data) == 0 {
		return nil, errors.New("empty parts payload")
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, errors.Wrap(err, "parts payload is not a JSON array")
	}

	parts := make([]Part, 0, len(raws))
	for i, raw := range raws {
		var env partEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, errors.Wrapf(err, "part %d is not an object", i)
		}
		if env.Type == "" {
			return nil, errors.Errorf("part %d has no type tag", i)
		}

		p := Part{Type: env.Type, Raw: raw}
		if env.Type == PartTypeText {
			if env.Text == nil {
				return nil, errors.Errorf("text part %d has no text field", i)
			}
			p.Text = *env.Text
		}
		parts = append(parts, p)
	}

	return parts, nil
}

// EncodeParts serializes fragments for storage. Text fragments are encoded
// canonically; other kinds must carry their original raw form.
func EncodeParts(parts []Part) ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(parts))
	for i, p := range parts {
		switch {
		case p.Type == PartTypeText:
			raw, err := json.Marshal(struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{Type: PartTypeText, Text: p.Text})
			if err != nil {
				return nil, errors.Wrapf(err, "encode text part %d", i)
			}
			raws = append(raws, raw)
		case len(p.Raw) > 0:
			raws = append(raws, p.Raw)
		default:
			return nil, errors.Errorf("part %d: unsupported fragment kind %q", i, p.Type)
		}
	}
	return json.Marshal(raws)
}

// DecodeMetadata parses optional message metadata. nil in, nil out.
func DecodeMetadata(data []byte) (*Metadata, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, errors.Wrap(err, "metadata payload is not valid JSON")
	}
	for i, s := range md.Sources {
		if s.DocumentId == "" {
			return nil, errors.Errorf("source %d has no documentId", i)
		}
		if s.Title == "" {
			return nil, errors.Errorf("source %d has no title", i)
		}
	}
	return &md, nil
}

// EncodeMetadata serializes metadata for storage. nil in, nil out.
func EncodeMetadata(md *Metadata) ([]byte, error) {
	if md == nil {
		return nil, nil
	}
	return json.Marshal(md)
}

// JoinText concatenates the text of all text fragments, space-joined and in
// order. Non-text fragment kinds contribute nothing to display.
func JoinText(parts []Part) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Type == PartTypeText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}
