package state

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// legacyPrefix marks page content saved as a bitmap data URI by older
// versions of the notebook.
const legacyPrefix = "data:image/"

// EncodeStrokes serializes strokes as a JSON array, preserving order.
func EncodeStrokes(strokes []Stroke) (string, error) {
	if strokes == nil {
		strokes = []Stroke{}
	}
	for i, s := range strokes {
		if err := s.Validate(); err != nil {
			return "", errors.Wrapf(err, "stroke %d", i)
		}
	}
	data, err := json.Marshal(strokes)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeStrokes parses content written by EncodeStrokes. Any stroke failing
// validation rejects the whole list.
func DecodeStrokes(content string) ([]Stroke, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, legacyPrefix) {
		return nil, errors.New("legacy bitmap content is not a stroke list")
	}
	var strokes []Stroke
	if err := json.Unmarshal([]byte(trimmed), &strokes); err != nil {
		return nil, errors.Wrap(err, "decode strokes")
	}
	for i, s := range strokes {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrapf(err, "stroke %d", i)
		}
	}
	if strokes == nil {
		strokes = []Stroke{}
	}
	return strokes, nil
}

// ParseContent is the lenient form of DecodeStrokes used when a page is
// opened: unreadable content yields an empty, drawable page.
func ParseContent(content string) []Stroke {
	if strings.TrimSpace(content) == "" {
		return []Stroke{}
	}
	strokes, err := DecodeStrokes(content)
	if err != nil {
		log.Warnf("Discarding unreadable page content (%d bytes): %v", len(content), err)
		return []Stroke{}
	}
	return strokes
}
