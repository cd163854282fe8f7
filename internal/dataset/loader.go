package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/2021147588/boheommian-rhapsody/internal/logger"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

var ErrNoConversations = errors.New("results file has no conversations")

// Load reads a saved simulation result. Both the bare {summary, conversations}
// object and the backend's {message, data} response envelope are accepted.
func Load(path string) (types.SimulationResult, error) {
	log := logger.New().Component("dataset").WithField("path", path)
	log.Info("loading saved results")

	raw, err := os.ReadFile(path)
	if err != nil {
		return types.SimulationResult{}, fmt.Errorf("open: %w", err)
	}
	res, err := Parse(raw)
	if err != nil {
		log.WithError(err).Error("parse failed")
		return types.SimulationResult{}, err
	}
	log.WithField("conversations", len(res.Conversations)).Info("saved results loaded")
	return res, nil
}

// Parse decodes a results document held in memory.
func Parse(raw []byte) (types.SimulationResult, error) {
	if !gjson.ValidBytes(raw) {
		return types.SimulationResult{}, fmt.Errorf("read: invalid json")
	}
	doc := gjson.ParseBytes(raw)
	if d := doc.Get("data"); d.IsObject() && !doc.Get("conversations").Exists() {
		raw = []byte(d.Raw)
	}
	var res types.SimulationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return types.SimulationResult{}, fmt.Errorf("read: %w", err)
	}
	if len(res.Conversations) == 0 {
		return types.SimulationResult{}, ErrNoConversations
	}
	return res, nil
}

// Write encodes res as indented JSON, the same shape Load reads back.
func Write(w io.Writer, res types.SimulationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
