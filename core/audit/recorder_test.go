package audit

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/jobgate/core/events"
	"github.com/kilianp07/jobgate/core/model"
	"github.com/kilianp07/jobgate/infra/logger"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

func TestRecorderPersistsOutcomes(t *testing.T) {
	bus := eventbus.New[events.Event](8)
	store := NewMemoryStore(10)
	ctx, cancel := context.WithCancel(context.Background())
	done := StartRecorder(ctx, bus, store, "fifo", logger.NopLogger{})

	sender := netip.MustParseAddrPort("10.0.0.1:5000")
	bus.Publish(events.TickEvent{Count: 1})
	bus.Publish(events.OutcomeEvent{
		Record:   model.Record{ID: "1001", Configuration: "3x3", Priority: 4, Reply: model.ReplyTo{Addr: sender}},
		Accepted: true,
		Reply:    "Accepted: ID 1001",
		Wait:     250 * time.Millisecond,
		Time:     time.Now(),
	})

	var recs []Record
	require.Eventually(t, func() bool {
		recs, _ = store.Query(context.Background(), Query{})
		return len(recs) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "1001", recs[0].RequestID)
	assert.Equal(t, "10.0.0.1:5000", recs[0].Sender)
	assert.Equal(t, "fifo", recs[0].Mode)
	assert.Equal(t, int64(250), recs[0].WaitMS)
	assert.True(t, recs[0].Accepted)

	cancel()
	<-done
}

func TestRecorderStopsOnBusClose(t *testing.T) {
	bus := eventbus.New[events.Event](1)
	done := StartRecorder(context.Background(), bus, NopStore{}, "fifo", logger.NopLogger{})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop")
	}
}
