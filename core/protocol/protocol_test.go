package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/jobgate/core/model"
)

func TestDecodeJSONRequest(t *testing.T) {
	req, err := Decode([]byte(`{"jsonrpc":"2.0","method":"processRequest","id":1001,"params":{"configuration":"3x3","priority":"4"}}`))
	require.NoError(t, err)
	assert.Equal(t, MethodProcessRequest, req.Method)
	assert.Equal(t, "1001", req.ID)
	assert.Equal(t, json.RawMessage("1001"), req.RawID)
	assert.Equal(t, Text("3x3"), req.Params.Configuration)
	assert.Equal(t, Text("4"), req.Params.Priority)
	assert.Equal(t, model.EncodingJSON, req.Encoding)
}

func TestDecodeJSONNumericPriorityAndStringID(t *testing.T) {
	req, err := Decode([]byte(` {"method":"processRequest","id":"abc","params":{"configuration":"1x2","priority":7,"delayMs":3000}} `))
	require.NoError(t, err)
	assert.Equal(t, "abc", req.ID)
	assert.Equal(t, Text("7"), req.Params.Priority)
	assert.Equal(t, int64(3000), req.Params.DelayMs)
}

func TestDecodeJSONWithoutIDOrParams(t *testing.T) {
	req, err := Decode([]byte(`{"jsonrpc":"2.0","method":"setBusy","id":null}`))
	require.NoError(t, err)
	assert.Equal(t, MethodSetBusy, req.Method)
	assert.Empty(t, req.ID)
	assert.Nil(t, req.RawID)
	assert.True(t, req.Method.Control())
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "{not json", `{"method":"processRequest","params":[1,2`, "1001;3x3", "a;b;c;d;e", "TICK"} {
		_, err := Decode([]byte(in))
		assert.True(t, errors.Is(err, ErrMalformedEnvelope), "input %q: %v", in, err)
	}
}

func TestDecodeBadParamsKeepsEnvelope(t *testing.T) {
	cases := map[string]string{
		"delay as word":        `{"jsonrpc":"2.0","method":"processRequest","id":"d1","params":{"configuration":"3x3","priority":4,"delayMs":"soon"}}`,
		"configuration list":   `{"jsonrpc":"2.0","method":"processRequest","id":"d1","params":{"configuration":["3x3"],"priority":4}}`,
		"priority object":      `{"jsonrpc":"2.0","method":"processRequest","id":"d1","params":{"configuration":"3x3","priority":{"x":1}}}`,
		"params not an object": `{"jsonrpc":"2.0","method":"processRequest","id":"d1","params":5}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := Decode([]byte(in))
			require.NoError(t, err)
			assert.Error(t, req.ParamsErr)
			assert.Equal(t, MethodProcessRequest, req.Method)
			assert.Equal(t, "d1", req.ID)
			assert.Equal(t, json.RawMessage(`"d1"`), req.RawID)
		})
	}

	req, err := Decode([]byte("9;3x3;4;soon"))
	require.NoError(t, err)
	assert.Error(t, req.ParamsErr)
	assert.Equal(t, "9", req.ID)
	assert.Equal(t, model.EncodingText, req.Encoding)

	req, err = Decode([]byte(`{"method":"processRequest","id":1,"params":{"configuration":"3x3","priority":4}}`))
	require.NoError(t, err)
	assert.NoError(t, req.ParamsErr)
}

func TestDecodeText(t *testing.T) {
	req, err := Decode([]byte(" 1001 ; 3x3 ; 4 \n"))
	require.NoError(t, err)
	assert.Equal(t, MethodProcessRequest, req.Method)
	assert.Equal(t, "1001", req.ID)
	assert.Equal(t, Text("3x3"), req.Params.Configuration)
	assert.Equal(t, Text("4"), req.Params.Priority)
	assert.Equal(t, model.EncodingText, req.Encoding)

	req, err = Decode([]byte("7;one row;2;1500"))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), req.Params.DelayMs)

	for word, m := range map[string]Method{"BUSY": MethodSetBusy, "AVAILABLE": MethodSetAvailable, "START_PROCESSING": MethodStartProcessing, "STOP_PROCESSING": MethodStopProcessing} {
		req, err := Decode([]byte(word))
		require.NoError(t, err)
		assert.Equal(t, m, req.Method)
	}
}

func TestCheckMethod(t *testing.T) {
	req, err := Decode([]byte(`{"method":"reboot","id":3}`))
	require.NoError(t, err)
	assert.True(t, errors.Is(req.CheckMethod(), ErrUnknownMethod))
	assert.NoError(t, Request{Method: MethodStopProcessing}.CheckMethod())
}

func TestEncodeJSONResponse(t *testing.T) {
	b, err := Encode(Response{RawID: json.RawMessage("1001"), Result: "Accepted: ID 1001"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1001,"result":"Accepted: ID 1001"}`, string(b))

	b, err = Encode(Response{ID: "x", Error: "Unknown method: \"reboot\""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"x","error":"Unknown method: \"reboot\""}`, string(b))

	b, err = Encode(Response{Result: "Server is busy"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"result":"Server is busy"}`, string(b))
}

func TestEncodeTextResponse(t *testing.T) {
	b, err := Encode(Response{Result: "Invalid request", Encoding: model.EncodingText})
	require.NoError(t, err)
	assert.Equal(t, "Invalid request", string(b))
	b, err = Encode(Response{Error: "boom", Encoding: model.EncodingText})
	require.NoError(t, err)
	assert.Equal(t, "boom", string(b))
}

func TestResponseRoundTrip(t *testing.T) {
	b, err := Encode(Response{RawID: json.RawMessage(`"a"`), Result: "ok"})
	require.NoError(t, err)
	resp, err := DecodeResponse(b)
	require.NoError(t, err)
	assert.Equal(t, "a", resp.ID)
	assert.Equal(t, "ok", resp.Result)

	resp, err = DecodeResponse([]byte("Accepted: ID 5"))
	require.NoError(t, err)
	assert.Equal(t, model.EncodingText, resp.Encoding)
	assert.Equal(t, "Accepted: ID 5", resp.Result)
}

func TestEncodeRequestForms(t *testing.T) {
	b, err := EncodeRequest(Request{Method: MethodProcessRequest, ID: "1001", Params: Params{Configuration: "3x3", Priority: "4"}})
	require.NoError(t, err)
	req, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("1001"), req.RawID)
	assert.Equal(t, Text("3x3"), req.Params.Configuration)

	b, err = EncodeRequest(Request{Method: MethodSetAvailable, Encoding: model.EncodingText})
	require.NoError(t, err)
	assert.Equal(t, "AVAILABLE", string(b))

	b, err = EncodeRequest(Request{Method: MethodProcessRequest, ID: "9", Encoding: model.EncodingText, Params: Params{Configuration: "2x2", Priority: "1", DelayMs: 10}})
	require.NoError(t, err)
	assert.Equal(t, "9;2x2;1;10", string(b))

	_, err = EncodeRequest(Request{Method: "reboot", Encoding: model.EncodingText})
	assert.True(t, errors.Is(err, ErrUnknownMethod))
}

func TestParamsSchedule(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	at, err := Params{DelayMs: 3000}.Schedule(now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(3*time.Second), at)

	at, err = Params{ScheduledAt: "2025-01-02T10:00:05Z", DelayMs: 1}.Schedule(now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Second), at)

	at, err = Params{ScheduledAt: "2025-01-02T09:00:00Z"}.Schedule(now)
	require.NoError(t, err)
	assert.Equal(t, now, at)

	_, err = Params{DelayMs: -1}.Schedule(now)
	assert.Error(t, err)
	_, err = Params{DelayMs: MaxDelayMs + 1}.Schedule(now)
	assert.Error(t, err)
	at, err = Params{DelayMs: MaxDelayMs}.Schedule(now)
	require.NoError(t, err)
	assert.True(t, at.After(now))
	_, err = Params{ScheduledAt: "tomorrow"}.Schedule(now)
	assert.Error(t, err)
}
