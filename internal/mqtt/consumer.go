// Package mqtt ingests live sensor readings from an MQTT broker. The
// consumer is optional: when no broker is configured the API keeps
// serving and readings arrive through HTTP or the simulator only.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"homenet/internal/config"
	"homenet/internal/metrics"
	"homenet/internal/model"
	"homenet/internal/repository"
	"homenet/internal/service"
)

// Topics subscribed to when MQTT_TOPICS is not set.
var defaultTopics = []string{
	"homenet/sensors/#",
	"homenet/pumps/#",
	"homenet/tanks/#",
	"homenet/alerts/#",
}

// Threshold values that raise an alert straight from the ingest path,
// without waiting for the next supervisor run.
const (
	criticalVibration   = 8.0
	criticalTemperature = 85.0
	lowWaterLevel       = 10.0
)

// Consumer subscribes to sensor topics, stores valid readings, and
// raises alerts plus work orders when a reading crosses a critical
// threshold.
type Consumer struct {
	cfg      config.MQTTConfig
	readings service.ReadingService
	tasks    service.TaskService
	alerts   repository.AlertRepository
	client   pahomqtt.Client
	now      func() time.Time
}

// NewConsumer builds a Consumer. alerts may be nil; threshold hits are
// then logged only.
func NewConsumer(cfg config.MQTTConfig, readings service.ReadingService, tasks service.TaskService, alerts repository.AlertRepository) *Consumer {
	return &Consumer{
		cfg:      cfg,
		readings: readings,
		tasks:    tasks,
		alerts:   alerts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start connects to the broker and subscribes. Returns an error when the
// broker is unreachable; callers treat that as a warning, not a fatal.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cfg.BrokerURL == "" {
		return fmt.Errorf("mqtt: no broker configured")
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetKeepAlive(60 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(false)
	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}
	opts.SetOnConnectHandler(func(client pahomqtt.Client) {
		for _, topic := range c.topics() {
			token := client.Subscribe(topic, 0, func(_ pahomqtt.Client, msg pahomqtt.Message) {
				c.process(ctx, msg.Topic(), msg.Payload())
			})
			token.Wait()
			if err := token.Error(); err != nil {
				log.Printf("mqtt: subscribe %s failed: %v", topic, err)
				continue
			}
			log.Printf("mqtt: subscribed to %s", topic)
		}
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Printf("mqtt: connection lost: %v", err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect %s: %w", c.cfg.BrokerURL, err)
	}
	log.Printf("mqtt: connected to %s", c.cfg.BrokerURL)
	return nil
}

// Stop disconnects from the broker.
func (c *Consumer) Stop() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

func (c *Consumer) topics() []string {
	if c.cfg.Topics == "" {
		return defaultTopics
	}
	var out []string
	for _, t := range strings.Split(c.cfg.Topics, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return defaultTopics
	}
	return out
}

// sensorPayload is the wire format published by the site gateways.
type sensorPayload struct {
	AssetID    string   `json:"asset_id"`
	SensorType string   `json:"sensor_type"`
	Value      *float64 `json:"value"`
	Timestamp  string   `json:"timestamp"`
	Unit       string   `json:"unit"`
	BuildingID string   `json:"building_id"`
	SiteID     string   `json:"site_id"`
}

// process parses one message, stores it, and runs the critical checks.
// Bad payloads are logged and dropped.
func (c *Consumer) process(ctx context.Context, topic string, payload []byte) {
	reading, err := c.parseMessage(payload)
	if err != nil {
		metrics.ReadingsRejected.Inc()
		log.Printf("mqtt: dropping message on %s: %v", topic, err)
		return
	}

	if err := c.readings.Ingest(ctx, []model.SensorReading{reading}, "mqtt"); err != nil {
		log.Printf("mqtt: store reading %s/%s failed: %v", reading.AssetID, reading.SensorType, err)
		return
	}

	c.checkCritical(ctx, reading)
}

func (c *Consumer) parseMessage(payload []byte) (model.SensorReading, error) {
	var p sensorPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return model.SensorReading{}, fmt.Errorf("invalid json: %w", err)
	}
	if p.AssetID == "" || p.SensorType == "" || p.Value == nil || p.Timestamp == "" {
		return model.SensorReading{}, fmt.Errorf("missing required fields")
	}
	recordedAt, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return model.SensorReading{}, fmt.Errorf("invalid timestamp %q: %w", p.Timestamp, err)
	}
	siteID := p.SiteID
	if siteID == "" {
		siteID = "SITE_001"
	}
	return model.SensorReading{
		ID:         uuid.NewString(),
		SiteID:     siteID,
		BuildingID: p.BuildingID,
		AssetID:    p.AssetID,
		AssetType:  assetTypeOf(p.AssetID),
		SensorType: normalizeSensorType(p.SensorType),
		Value:      *p.Value,
		Unit:       p.Unit,
		RecordedAt: recordedAt.UTC(),
		ReceivedAt: c.now(),
	}, nil
}

// checkCritical raises an alert and opens a work order when the reading
// crosses a hard threshold. Failures here never block ingestion.
func (c *Consumer) checkCritical(ctx context.Context, r model.SensorReading) {
	severity, priority, slaHours, hit := thresholdFor(r.SensorType, r.Value)
	if !hit {
		return
	}

	log.Printf("mqtt: %s threshold on %s: %s=%.2f", severity, r.AssetID, r.SensorType, r.Value)

	if c.alerts != nil {
		_, err := c.alerts.Create(ctx, &model.Alert{
			AlertID:     "ALERT_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
			SiteID:      r.SiteID,
			BuildingID:  r.BuildingID,
			AssetID:     r.AssetID,
			AssetType:   r.AssetType,
			AlertType:   "sensor_threshold",
			Severity:    severity,
			Description: fmt.Sprintf("%s reading %.2f crossed the %s threshold", r.SensorType, r.Value, severity),
			Value:       r.Value,
			CreatedAt:   c.now(),
		})
		if err != nil {
			log.Printf("mqtt: persist alert for %s failed: %v", r.AssetID, err)
		} else {
			metrics.AlertsRaised.WithLabelValues(severity).Inc()
		}
	}

	if c.tasks != nil {
		_, _, err := c.tasks.CreateWorkOrder(ctx, service.CreateWorkOrderInput{
			Title:       fmt.Sprintf("%s: Sensor threshold on %s", priority, r.AssetID),
			Description: fmt.Sprintf("Live reading %s=%.2f on %s crossed the %s threshold.", r.SensorType, r.Value, r.AssetID, severity),
			AssetType:   r.AssetType,
			AssetID:     r.AssetID,
			BuildingID:  r.BuildingID,
			Priority:    priority,
			SLAHours:    slaHours,
		})
		if err != nil {
			log.Printf("mqtt: work order for %s failed: %v", r.AssetID, err)
		}
	}
}

// thresholdFor reports whether a value crosses a critical threshold and
// the alert severity plus work-order priority to apply.
func thresholdFor(sensorType string, value float64) (severity, priority string, slaHours int, hit bool) {
	switch sensorType {
	case model.SensorVibration:
		if value > criticalVibration {
			return model.SeverityCritical, model.PriorityCritical, 4, true
		}
	case model.SensorTemperature:
		if value > criticalTemperature {
			return model.SeverityCritical, model.PriorityCritical, 4, true
		}
	case model.SensorTankLevel:
		if value < lowWaterLevel {
			return model.SeverityHigh, model.PriorityHigh, 24, true
		}
	}
	return "", "", 0, false
}

// normalizeSensorType maps the short gateway names onto the canonical
// sensor type names used by storage and the CSV exports.
func normalizeSensorType(t string) string {
	switch strings.ToLower(t) {
	case "vibration":
		return model.SensorVibration
	case "temperature":
		return model.SensorTemperature
	case "current":
		return model.SensorCurrent
	case "flow_rate":
		return model.SensorFlowRate
	case "pressure":
		return model.SensorPressure
	case "water_level", "level":
		return model.SensorTankLevel
	case "consumption":
		return model.SensorConsumption
	default:
		return t
	}
}

func assetTypeOf(assetID string) string {
	switch {
	case strings.HasPrefix(assetID, "PUMP_"):
		return model.AssetTypePump
	case strings.HasPrefix(assetID, "TANK_"):
		return model.AssetTypeTank
	default:
		return model.AssetTypeUnit
	}
}
