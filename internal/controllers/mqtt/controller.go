package mqttctrl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/internal/builder"
	"github.com/Agrid-Dev/heatload/internal/ports"
	"github.com/Agrid-Dev/heatload/internal/report"
)

type Config struct {
	// Identity
	ProjectID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainReport    bool
	PublishInterval time.Duration

	Username string
	Password string
}

type Controller struct {
	svc    ports.ReportService
	cfg    Config
	logger *zap.Logger

	ctx    context.Context
	client mqtt.Client

	// room slugs sent by the previous publishReport
	published map[string]struct{}
}

func New(svc ports.ReportService, cfg Config, logger *zap.Logger) (*Controller, error) {
	// ---- defaults ----

	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}

	if cfg.ProjectID == "" {
		return nil, errors.New("mqtt: ProjectID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "heatload/" + cfg.ProjectID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "heatload-" + cfg.ProjectID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		svc:    svc,
		cfg:    cfg,
		logger: logger.With(zap.String("controller", "mqtt")),
		ctx:    context.Background(),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx

	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		topic := c.topic("set/building")
		token := cl.Subscribe(topic, c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			c.logger.Warn("subscribe failed", zap.String("topic", topic), zap.Error(err))
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.logger.Info("mqtt controller connected", zap.String("broker", c.cfg.BrokerURL), zap.String("base_topic", c.cfg.BaseTopic))

	// Publish loop: check on interval, publish only when changed.
	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	last := c.svc.Summary()
	c.publishReport(last)

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			cur := c.svc.Summary()
			if !reflect.DeepEqual(cur, last) {
				c.publishReport(cur)
				last = cur
			}
		}
	}
}

// publishReport sends the whole summary to <base>/report and each room to
// <base>/rooms/<slug>.
func (c *Controller) publishReport(s report.Summary) {
	b, err := json.Marshal(s)
	if err != nil {
		c.logger.Error("marshal report", zap.Error(err))
		return
	}
	c.client.Publish(c.topic("report"), c.cfg.QoS, c.cfg.RetainReport, b)

	current := make(map[string]struct{}, len(s.Rooms))
	for _, r := range s.Rooms {
		rs := slug(r.Name)
		current[rs] = struct{}{}
		rb, err := json.Marshal(r)
		if err != nil {
			continue
		}
		c.client.Publish(c.topic("rooms/"+rs), c.cfg.QoS, c.cfg.RetainReport, rb)
	}

	// An empty retained payload removes the broker's copy of a room that is
	// gone from the building.
	if c.cfg.RetainReport {
		stale := make([]string, 0, len(c.published))
		for rs := range c.published {
			if _, ok := current[rs]; !ok {
				stale = append(stale, rs)
			}
		}
		slices.Sort(stale)
		for _, rs := range stale {
			c.client.Publish(c.topic("rooms/"+rs), c.cfg.QoS, true, []byte{})
		}
	}
	c.published = current
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/set/<field>
	t := msg.Topic()
	prefix := c.cfg.BaseTopic + "/set/"
	if !strings.HasPrefix(t, prefix) {
		return
	}
	field := strings.TrimPrefix(t, prefix)

	switch field {
	case "building":
		src := builder.BytesSource{Data: msg.Payload(), Format: "json"}
		if _, err := c.svc.Recalculate(c.ctx, src); err != nil {
			c.logger.Warn("building update rejected", zap.String("topic", t), zap.Error(err))
			return
		}
		c.logger.Debug("building updated", zap.String("topic", t))
	}
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

// slug turns a room name into a single topic level: lower case, anything
// other than letters and digits collapsed to '-'.
func slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(sb.String(), "-")
	if out == "" {
		return "room"
	}
	return out
}
