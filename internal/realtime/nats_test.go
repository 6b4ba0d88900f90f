package realtime

import (
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestNATSRelay_SharesChangesBetweenHubs(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set; skipping integration test")
	}

	hubA := NewHub(4, nil)
	hubB := NewHub(4, nil)

	relayA, err := DialNATS(url, hubA, nil)
	if err != nil {
		t.Fatalf("DialNATS failed: %v", err)
	}
	defer relayA.Close()
	relayB, err := DialNATS(url, hubB, nil)
	if err != nil {
		t.Fatalf("DialNATS failed: %v", err)
	}
	defer relayB.Close()

	// make sure both subscriptions reached the server
	_ = relayA.nc.Flush()
	_ = relayB.nc.Flush()

	subA := hubA.Subscribe("messages/a/b")
	subB := hubB.Subscribe("messages/a/b")

	hubA.Publish(Change{Path: "messages/a/b", Type: "added", DocumentID: "m1", Data: map[string]any{"text": "hi"}})

	select {
	case c := <-subB.C:
		if c.DocumentID != "m1" || c.Data["text"] != "hi" {
			t.Fatalf("unexpected relayed change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change was not relayed to the other hub")
	}

	<-subA.C
	select {
	case c := <-subA.C:
		t.Fatalf("origin hub received its own change twice: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNATSRelay_IgnoresMalformedPayload(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set; skipping integration test")
	}

	hub := NewHub(4, nil)
	relay, err := DialNATS(url, hub, nil)
	if err != nil {
		t.Fatalf("DialNATS failed: %v", err)
	}
	defer relay.Close()

	sub := hub.Subscribe("p")
	relay.receive(&nats.Msg{Subject: Subject, Data: []byte("{not json"), Header: nats.Header{}})

	select {
	case c := <-sub.C:
		t.Fatalf("malformed payload delivered: %+v", c)
	default:
	}
}
