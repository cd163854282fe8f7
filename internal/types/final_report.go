package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ConversationLogKey holds the raw transcript inside a final report; it is never displayed as a field.
const ConversationLogKey = "conversation_log"

type ReportEntry struct {
	Key   string
	Value string
}

// FinalReport is the free-form key/value analysis of one conversation.
// Keys carry meaning and their order is the order the backend wrote them in.
type FinalReport []ReportEntry

// Get returns the value stored under key.
func (r FinalReport) Get(key string) (string, bool) {
	for _, e := range r {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// First returns the first non-empty value among keys, in the given order.
func (r FinalReport) First(keys ...string) string {
	for _, k := range keys {
		if v, ok := r.Get(k); ok && v != "" {
			return v
		}
	}
	return ""
}

func (r *FinalReport) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return fmt.Errorf("final_report: invalid json")
	}
	res := gjson.ParseBytes(b)
	// Anything but an object reads as no report at all.
	if !res.IsObject() {
		*r = nil
		return nil
	}
	out := FinalReport{}
	res.ForEach(func(key, value gjson.Result) bool {
		v := ""
		switch value.Type {
		case gjson.Null:
		case gjson.String:
			v = value.Str
		default:
			v = value.Raw
		}
		out = append(out, ReportEntry{Key: key.String(), Value: v})
		return true
	})
	*r = out
	return nil
}

func (r FinalReport) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
