package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/jobgate/core/model"
)

type replyEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  *string         `json:"result,omitempty"`
	Error   *string         `json:"error,omitempty"`
}

// Encode serializes a response in the encoding of the request it answers.
func Encode(resp Response) ([]byte, error) {
	if resp.Encoding == model.EncodingText {
		if resp.IsError() {
			return []byte(resp.Error), nil
		}
		return []byte(resp.Result), nil
	}
	env := replyEnvelope{JSONRPC: Version, ID: replyID(resp)}
	if resp.IsError() {
		env.Error = &resp.Error
	} else {
		env.Result = &resp.Result
	}
	return json.Marshal(env)
}

func replyID(resp Response) json.RawMessage {
	if len(resp.RawID) > 0 {
		return resp.RawID
	}
	if resp.ID == "" {
		return json.RawMessage("null")
	}
	b, _ := json.Marshal(resp.ID)
	return b
}

// DecodeResponse parses a reply produced by Encode. Text replies are
// returned as results.
func DecodeResponse(data []byte) (Response, error) {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "{") {
		return Response{Result: s, Encoding: model.EncodingText}, nil
	}
	var env replyEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	resp := Response{RawID: normalizeID(env.ID), Encoding: model.EncodingJSON}
	resp.ID = idText(resp.RawID)
	if env.Result != nil {
		resp.Result = *env.Result
	}
	if env.Error != nil {
		resp.Error = *env.Error
	}
	return resp, nil
}

// EncodeRequest serializes a request for sending, used by the client side.
func EncodeRequest(req Request) ([]byte, error) {
	if req.Encoding == model.EncodingText {
		return encodeTextRequest(req)
	}
	env := struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  Method          `json:"method"`
		ID      json.RawMessage `json:"id,omitempty"`
		Params  *Params         `json:"params,omitempty"`
	}{JSONRPC: Version, Method: req.Method, ID: req.RawID}
	if len(env.ID) == 0 && req.ID != "" {
		if _, err := strconv.ParseInt(req.ID, 10, 64); err == nil {
			env.ID = json.RawMessage(req.ID)
		} else {
			b, _ := json.Marshal(req.ID)
			env.ID = b
		}
	}
	if req.Method == MethodProcessRequest {
		p := req.Params
		env.Params = &p
	}
	return json.Marshal(env)
}

func encodeTextRequest(req Request) ([]byte, error) {
	for word, m := range controlWords {
		if m == req.Method {
			return []byte(word), nil
		}
	}
	if req.Method != MethodProcessRequest {
		return nil, fmt.Errorf("%w: %q has no text form", ErrUnknownMethod, string(req.Method))
	}
	fields := []string{req.ID, string(req.Params.Configuration), string(req.Params.Priority)}
	if req.Params.DelayMs > 0 {
		fields = append(fields, strconv.FormatInt(req.Params.DelayMs, 10))
	}
	return []byte(strings.Join(fields, ";")), nil
}
