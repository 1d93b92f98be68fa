package oracle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedResponse wraps every parse or schema failure.
var ErrMalformedResponse = errors.New("malformed oracle response")

const rankingSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["grant_id", "relevance_score"],
    "properties": {
      "grant_id": {"type": ["string", "integer"]},
      "name": {"type": "string"},
      "relevance_score": {"type": "number"},
      "reason": {"type": "string"}
    }
  }
}`

var rankingSchemaLoader = gojsonschema.NewStringLoader(rankingSchema)

// Ranked is one entry of the model's answer. Display names always come from
// the catalog, so a "name" in the answer is accepted but not decoded.
type Ranked struct {
	GrantID        string
	RelevanceScore float64
	Reason         string
}

type rankedWire struct {
	GrantID        json.RawMessage `json:"grant_id"`
	RelevanceScore float64         `json:"relevance_score"`
	Reason         string          `json:"reason"`
}

// StripCodeFences extracts the body of a ```json or ``` fenced block. Text
// without fences is returned trimmed.
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "```json"); i >= 0 {
		rest := content[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(content, "```"); i >= 0 {
		rest := content[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return content
}

// ParseRanking strips fences, validates the answer against the ranking
// schema and decodes it. Numeric grant ids are converted to strings.
func ParseRanking(content string) ([]Ranked, error) {
	body := StripCodeFences(content)
	if body == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	result, err := gojsonschema.Validate(rankingSchemaLoader, gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, errs)
	}

	var wire []rankedWire
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	out := make([]Ranked, 0, len(wire))
	for _, w := range wire {
		out = append(out, Ranked{
			GrantID:        decodeID(w.GrantID),
			RelevanceScore: w.RelevanceScore,
			Reason:         w.Reason,
		})
	}
	return out, nil
}

func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return string(raw)
}
