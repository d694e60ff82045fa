package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/jobgate/core/model"
)

var controlWords = map[string]Method{
	"START_PROCESSING": MethodStartProcessing,
	"STOP_PROCESSING":  MethodStopProcessing,
	"BUSY":             MethodSetBusy,
	"AVAILABLE":        MethodSetAvailable,
}

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      json.RawMessage `json:"id"`
	Params  json.RawMessage `json:"params"`
}

// Decode parses one datagram. Anything that is neither a JSON object nor a
// well formed text request yields an error wrapping ErrMalformedEnvelope.
// Unknown methods are not an error here; see Request.CheckMethod. Params of
// the wrong shape are reported through Request.ParamsErr.
func Decode(data []byte) (Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Request{}, fmt.Errorf("%w: empty datagram", ErrMalformedEnvelope)
	}
	if trimmed[0] == '{' {
		return decodeJSON(trimmed)
	}
	return decodeText(string(trimmed))
}

func decodeJSON(data []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	req := Request{
		Method:   Method(env.Method),
		RawID:    normalizeID(env.ID),
		Encoding: model.EncodingJSON,
	}
	req.ID = idText(req.RawID)
	if len(env.Params) > 0 && !bytes.Equal(env.Params, []byte("null")) {
		if err := json.Unmarshal(env.Params, &req.Params); err != nil {
			req.Params = Params{}
			req.ParamsErr = fmt.Errorf("params: %w", err)
		}
	}
	return req, nil
}

func decodeText(s string) (Request, error) {
	if m, ok := controlWords[s]; ok {
		return Request{Method: m, Encoding: model.EncodingText}, nil
	}
	parts := strings.Split(s, ";")
	if len(parts) != 3 && len(parts) != 4 {
		return Request{}, fmt.Errorf("%w: expected 3 or 4 fields, got %d", ErrMalformedEnvelope, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	req := Request{
		Method:   MethodProcessRequest,
		ID:       parts[0],
		Encoding: model.EncodingText,
		Params: Params{
			Configuration: Text(parts[1]),
			Priority:      Text(parts[2]),
		},
	}
	if len(parts) == 4 && parts[3] != "" {
		d, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			req.ParamsErr = fmt.Errorf("delay: %w", err)
		}
		req.Params.DelayMs = d
	}
	return req, nil
}

func normalizeID(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func idText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
