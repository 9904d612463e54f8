package alert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var out kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func (f *fakeProducer) Close() { f.closed = true }

func TestKafkaAlerter_Send(t *testing.T) {
	p := &fakeProducer{}
	k := &KafkaAlerter{topic: "assetutil.alerts", producer: p}

	if err := k.Send(context.Background(), testEvent()); err != nil {
		t.Fatal(err)
	}
	if len(p.records) != 1 {
		t.Fatalf("produced %d records, want 1", len(p.records))
	}

	r := p.records[0]
	if r.Topic != "assetutil.alerts" {
		t.Errorf("topic = %q", r.Topic)
	}
	if string(r.Key) != "ast-db1" {
		t.Errorf("key = %q, want ast-db1", r.Key)
	}
	if len(r.Headers) != 2 || string(r.Headers[0].Value) != EventMaintenanceUpcoming {
		t.Errorf("headers = %+v", r.Headers)
	}

	var got Event
	if err := json.Unmarshal(r.Value, &got); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if got.Maintenance == nil || got.Maintenance.Title != "Kernel patching" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestKafkaAlerter_ProduceError(t *testing.T) {
	boom := errors.New("broker unavailable")
	k := &KafkaAlerter{topic: "t", producer: &fakeProducer{err: boom}}

	err := k.Send(context.Background(), testEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestKafkaAlerter_Close(t *testing.T) {
	p := &fakeProducer{}
	k := &KafkaAlerter{topic: "t", producer: p}
	k.Close()
	if !p.closed {
		t.Error("producer not closed")
	}
	if k.Name() != "kafka" {
		t.Errorf("name = %q", k.Name())
	}
}

func TestNewKafkaAlerter_Validation(t *testing.T) {
	if _, err := NewKafkaAlerter(nil, "t"); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewKafkaAlerter([]string{"localhost:9092"}, ""); err == nil {
		t.Error("expected error without topic")
	}
}
