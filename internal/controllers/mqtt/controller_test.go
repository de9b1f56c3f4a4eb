package mqttctrl

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Agrid-Dev/heatload/internal/testutil"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeToken struct {
	err  error
	done chan struct{}
}

func (t fakeToken) Done() <-chan struct{} {
	if t.done == nil {
		t.done = make(chan struct{})
		close(t.done)
	}
	return t.done
}

func (t fakeToken) Wait() bool                       { return true }
func (t fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t fakeToken) Error() error                     { return t.err }

type publishCall struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type fakeClient struct {
	publishes []publishCall
}

func (c *fakeClient) IsConnected() bool      { return true }
func (c *fakeClient) IsConnectionOpen() bool { return true }
func (c *fakeClient) Connect() mqtt.Token    { return fakeToken{} }
func (c *fakeClient) Disconnect(_ uint)      {}
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	var b []byte
	switch v := payload.(type) {
	case []byte:
		b = append([]byte(nil), v...)
	case string:
		b = []byte(v)
	default:
		// shouldn't happen in our controller, but keep it safe
		tmp, _ := json.Marshal(v)
		b = tmp
	}
	c.publishes = append(c.publishes, publishCall{
		topic: topic, qos: qos, retain: retained, payload: b,
	})
	return fakeToken{}
}
func (c *fakeClient) Subscribe(_ string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (c *fakeClient) SubscribeMultiple(_ map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (c *fakeClient) Unsubscribe(_ ...string) mqtt.Token       { return fakeToken{} }
func (c *fakeClient) AddRoute(_ string, _ mqtt.MessageHandler) {}
func (c *fakeClient) OptionsReader() mqtt.ClientOptionsReader  { return mqtt.ClientOptionsReader{} }

// ---- tests ----
func newDefaultSvc() *testutil.FakeReportService {
	return testutil.NewFakeReportService()
}

func TestNewDefaults(t *testing.T) {
	svc := newDefaultSvc()
	c, err := New(svc, Config{ProjectID: "house-1"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if c.cfg.BrokerURL != "tcp://localhost:1883" {
		t.Fatalf("expected default BrokerURL, got %q", c.cfg.BrokerURL)
	}
	if c.cfg.BaseTopic != "heatload/house-1" {
		t.Fatalf("expected default BaseTopic, got %q", c.cfg.BaseTopic)
	}
	if c.cfg.ClientID != "heatload-house-1" {
		t.Fatalf("expected default ClientID, got %q", c.cfg.ClientID)
	}
	if c.cfg.PublishInterval != 1*time.Second {
		t.Fatalf("expected default PublishInterval, got %v", c.cfg.PublishInterval)
	}
}

func TestNewValidation(t *testing.T) {
	svc := newDefaultSvc()

	if _, err := New(svc, Config{}, nil); err == nil {
		t.Fatal("expected error when ProjectID missing")
	}

	if _, err := New(svc, Config{ProjectID: "x", QoS: 2}, nil); err == nil {
		t.Fatal("expected error when QoS > 1")
	}
}

func TestTopicJoin(t *testing.T) {
	svc := newDefaultSvc()
	c, err := New(svc, Config{ProjectID: "house-1", BaseTopic: "heatload/house-1/"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.topic("report"); got != "heatload/house-1/report" {
		t.Fatalf("expected topic without double slashes, got %q", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Living room", "living-room"},
		{"Küche", "küche"},
		{"Bath / WC #2", "bath-wc-2"},
		{"  Hall  ", "hall"},
		{"+#/", "room"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Fatalf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOnMessage_IgnoresWrongPrefix(t *testing.T) {
	svc := newDefaultSvc()
	c, err := New(svc, Config{ProjectID: "house-1"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	c.onMessage(nil, fakeMessage{
		topic:   "otherprefix/set/building",
		payload: []byte(`{"rooms":[]}`),
	})

	if svc.Calls() != 0 {
		t.Fatal("expected Recalculate not called")
	}
}

func TestOnMessage_IgnoresUnknownField(t *testing.T) {
	svc := newDefaultSvc()
	c, _ := New(svc, Config{ProjectID: "house-1"}, nil)

	c.onMessage(nil, fakeMessage{
		topic:   "heatload/house-1/set/setpoint",
		payload: []byte(`{"value":21}`),
	})

	if svc.Calls() != 0 {
		t.Fatal("expected Recalculate not called")
	}
}

func TestOnMessage_Building(t *testing.T) {
	svc := newDefaultSvc()
	c, _ := New(svc, Config{ProjectID: "house-1"}, nil)
	fc := &fakeClient{}
	c.client = fc

	c.onMessage(nil, fakeMessage{
		topic: "heatload/house-1/set/building",
		payload: []byte(`{"rooms":[{"name":"Office","setpoint_temp_c":20,
			"surfaces":[{"area_m2":5,"u_w_m2k":0.25,"temp_other_side_c":-11}]}]}`),
	})

	if svc.Calls() != 1 {
		t.Fatalf("expected Recalculate called once, got %d", svc.Calls())
	}
	s := svc.Summary()
	if len(s.Rooms) != 1 || s.Rooms[0].Name != "Office" {
		t.Fatalf("expected building replaced, got %+v", s.Rooms)
	}
	if math.Abs(s.TotalHeatLoadW-38.75) > 1e-9 {
		t.Fatalf("expected 38.75 W, got %v", s.TotalHeatLoadW)
	}
}

func TestOnMessage_BuildingInvalid_KeepsSummary(t *testing.T) {
	svc := newDefaultSvc()
	c, _ := New(svc, Config{ProjectID: "house-1"}, nil)

	c.onMessage(nil, fakeMessage{
		topic:   "heatload/house-1/set/building",
		payload: []byte(`{"rooms":[{"setpoint_temp_c":20,"ventilation":{"mode":"cubic"}}]}`),
	})

	if len(svc.Summary().Rooms) != 2 {
		t.Fatal("expected previous summary to be kept")
	}
}

// Shows we ignore service errors (controller logs and drops them).
func TestOnMessage_ServiceError_IsIgnored(t *testing.T) {
	svc := newDefaultSvc()
	svc.RecalculateErr = errors.New("boom")
	c, _ := New(svc, Config{ProjectID: "house-1"}, nil)

	c.onMessage(nil, fakeMessage{
		topic:   "heatload/house-1/set/building",
		payload: []byte(`{"rooms":[]}`),
	})

	if svc.Calls() != 1 {
		t.Fatal("expected Recalculate called")
	}
}

func TestPublishReport_PublishesJSON(t *testing.T) {
	svc := newDefaultSvc()
	c, _ := New(svc, Config{ProjectID: "house-1", QoS: 1, RetainReport: true}, nil)

	fc := &fakeClient{}
	c.client = fc

	c.publishReport(svc.Summary())

	if len(fc.publishes) != 3 {
		t.Fatalf("expected report + 2 rooms, got %d publishes", len(fc.publishes))
	}

	p := fc.publishes[0]
	if p.topic != "heatload/house-1/report" {
		t.Fatalf("expected report topic, got %q", p.topic)
	}
	if p.qos != 1 || p.retain != true {
		t.Fatalf("expected qos=1 retain=true, got qos=%d retain=%v", p.qos, p.retain)
	}

	var got map[string]any
	if err := json.Unmarshal(p.payload, &got); err != nil {
		t.Fatalf("invalid published json: %v payload=%s", err, string(p.payload))
	}
	if got["project_id"] != "house-1" {
		t.Fatalf("expected project_id=house-1, got %v", got["project_id"])
	}

	if fc.publishes[1].topic != "heatload/house-1/rooms/living-room" {
		t.Fatalf("unexpected room topic %q", fc.publishes[1].topic)
	}
	if fc.publishes[2].topic != "heatload/house-1/rooms/bath" {
		t.Fatalf("unexpected room topic %q", fc.publishes[2].topic)
	}
	var room map[string]any
	if err := json.Unmarshal(fc.publishes[2].payload, &room); err != nil {
		t.Fatal(err)
	}
	if room["flow_rate_error"] != "supply/return delta is zero" {
		t.Fatalf("expected flow_rate_error on bath, got %v", room["flow_rate_error"])
	}
}

func TestPublishReport_ClearsRemovedRooms(t *testing.T) {
	svc := newDefaultSvc()
	c, _ := New(svc, Config{ProjectID: "house-1", QoS: 1, RetainReport: true}, nil)

	fc := &fakeClient{}
	c.client = fc

	c.publishReport(svc.Summary())

	// Bath removed, Living room kept.
	next := svc.Summary()
	next.Rooms = next.Rooms[:1]
	fc.publishes = nil
	c.publishReport(next)

	if len(fc.publishes) != 3 {
		t.Fatalf("expected report + room + clear, got %d publishes", len(fc.publishes))
	}
	cleared := fc.publishes[2]
	if cleared.topic != "heatload/house-1/rooms/bath" {
		t.Fatalf("expected bath to be cleared, got %q", cleared.topic)
	}
	if !cleared.retain || len(cleared.payload) != 0 {
		t.Fatalf("expected empty retained payload, got retain=%v payload=%q", cleared.retain, cleared.payload)
	}

	// Already cleared rooms are not cleared again.
	fc.publishes = nil
	c.publishReport(next)
	if len(fc.publishes) != 2 {
		t.Fatalf("expected report + room, got %d publishes", len(fc.publishes))
	}
}

func TestPublishReport_NoClearWithoutRetain(t *testing.T) {
	svc := newDefaultSvc()
	c, _ := New(svc, Config{ProjectID: "house-1"}, nil)

	fc := &fakeClient{}
	c.client = fc

	c.publishReport(svc.Summary())
	next := svc.Summary()
	next.Rooms = nil
	fc.publishes = nil
	c.publishReport(next)

	if len(fc.publishes) != 1 || fc.publishes[0].topic != "heatload/house-1/report" {
		t.Fatalf("expected only the report, got %+v", fc.publishes)
	}
}
