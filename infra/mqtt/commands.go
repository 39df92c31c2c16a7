package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/infra/logger"
)

// Command topics below Config.CommandPrefix.
const (
	TopicSubmitOrder = "orders"
	TopicAddBot      = "bots/add"
	TopicRemoveBot   = "bots/remove"
)

// ErrUnknownCommand is returned for topics outside the command set.
var ErrUnknownCommand = errors.New("unknown command")

// Commander executes remote commands.
type Commander interface {
	SubmitOrder(class model.OrderClass, duration time.Duration) model.Order
	AddBot() model.Bot
	RemoveBot() *model.Bot
}

// OrderCommand is the payload of <prefix>/orders.
type OrderCommand struct {
	Class      string `json:"class"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

type subscriber interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newSubscriber = func(opts *paho.ClientOptions) subscriber {
	return paho.NewClient(opts)
}

// CommandListener turns MQTT messages into controller calls.
type CommandListener struct {
	cli    subscriber
	prefix string
	qos    byte
	ctrl   Commander
	log    logger.Logger
}

// NewCommandListener connects a dedicated client for command topics.
func NewCommandListener(cfg Config, ctrl Commander) (*CommandListener, error) {
	if cfg.CommandPrefix == "" {
		return nil, fmt.Errorf("mqtt: command_prefix is required")
	}
	if cfg.ClientID != "" {
		cfg.ClientID += "-commands"
	} else {
		cfg.ClientID = "orderbot-commands-" + uuid.NewString()
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	c := newSubscriber(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &CommandListener{
		cli:    c,
		prefix: strings.TrimSuffix(cfg.CommandPrefix, "/"),
		qos:    cfg.QoS,
		ctrl:   ctrl,
		log:    logger.New("mqtt_commands"),
	}, nil
}

// Start subscribes to <prefix>/# and blocks until ctx is canceled.
func (l *CommandListener) Start(ctx context.Context) error {
	topic := l.prefix + "/#"
	token := l.cli.Subscribe(topic, l.qos, func(_ paho.Client, msg paho.Message) {
		if err := l.Handle(msg.Topic(), msg.Payload()); err != nil {
			l.log.Warnf("command %s: %v", msg.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	l.log.Infof("listening for commands on %s", topic)
	<-ctx.Done()
	l.Disconnect()
	return nil
}

// Disconnect closes the command client. It is safe to call more than once and
// without Start.
func (l *CommandListener) Disconnect() {
	if l.cli.IsConnected() {
		l.cli.Disconnect(250)
	}
}

// Handle executes the command addressed by topic.
func (l *CommandListener) Handle(topic string, payload []byte) error {
	cmd, ok := strings.CutPrefix(topic, l.prefix+"/")
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, topic)
	}
	switch cmd {
	case TopicSubmitOrder:
		var oc OrderCommand
		if err := json.Unmarshal(payload, &oc); err != nil {
			return fmt.Errorf("decode order command: %w", err)
		}
		class, err := model.ParseOrderClass(oc.Class)
		if err != nil {
			return err
		}
		d, err := model.DurationFromMS(oc.DurationMS)
		if err != nil {
			return err
		}
		o := l.ctrl.SubmitOrder(class, d)
		l.log.Infof("remote %s order #%d", class, o.ID)
	case TopicAddBot:
		b := l.ctrl.AddBot()
		l.log.Infof("remote added bot %d", b.ID)
	case TopicRemoveBot:
		if b := l.ctrl.RemoveBot(); b != nil {
			l.log.Infof("remote removed bot %d", b.ID)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return nil
}
