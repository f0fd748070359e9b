package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/pkg/sheets"
)

// defaultDeliveryTimeout bounds one fan-out to the sinks
const defaultDeliveryTimeout = 90 * time.Second

// Sink names
const (
	SinkPrimary   = "primary"
	SinkSecondary = "secondary"
)

// sinkPayload is the document posted to the web apps: the entry plus the
// server time of submission
type sinkPayload struct {
	models.Entry
	Timestamp string `json:"Timestamp"`
}

type sink struct {
	name    string
	url     string
	failMsg string
}

// urlSource is the part of the settings the delivery needs
type urlSource interface {
	GetPrimaryURL(ctx context.Context) (string, error)
	GetSecondaryURL(ctx context.Context) (string, error)
}

// DeliveryService forwards stored entries to the configured web apps
type DeliveryService struct {
	log         logger.Logger
	settings    urlSource
	client      sheets.Client
	broadcaster Broadcaster
	now         func() time.Time
	timeout     time.Duration
	wg          sync.WaitGroup
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(log logger.Logger, settings urlSource, client sheets.Client) *DeliveryService {
	return &DeliveryService{
		log:      log,
		settings: settings,
		client:   client,
		now:      time.Now,
		timeout:  defaultDeliveryTimeout,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (d *DeliveryService) SetBroadcaster(b Broadcaster) {
	d.broadcaster = b
}

// Deliver posts entry to the primary sink and, when configured, the secondary
// sink. It returns once the posts are started; each sink is attempted on its
// own and a failure is only logged and broadcast. The returned warnings are
// meant for the submitting user.
func (d *DeliveryService) Deliver(ctx context.Context, entry models.Entry) ([]string, error) {
	primary, err := d.settings.GetPrimaryURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read primary URL: %w", err)
	}
	secondary, err := d.settings.GetSecondaryURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read secondary URL: %w", err)
	}

	payload, err := json.Marshal(sinkPayload{
		Entry:     entry,
		Timestamp: d.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	var warnings []string
	if IsLibraryURL(primary) {
		d.log.Warn("Primary URL is a library URL, not a web app URL", "url", primary)
		warnings = append(warnings, MsgLibraryURL)
	}

	sinks := []sink{{name: SinkPrimary, url: primary, failMsg: MsgPrimaryFailed}}
	if IsWebAppURL(secondary) {
		sinks = append(sinks, sink{name: SinkSecondary, url: secondary, failMsg: MsgSecondaryFailed})
	}

	// The request that triggered delivery may finish long before the posts do
	bg := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(bg, d.timeout)
		defer cancel()

		var g errgroup.Group
		for _, s := range sinks {
			g.Go(func() error {
				d.send(ctx, entry.ID, s, payload)
				return nil
			})
		}
		g.Wait()
	}()

	return warnings, nil
}

func (d *DeliveryService) send(ctx context.Context, id int64, s sink, payload []byte) {
	var err error
	if s.url == "" {
		err = fmt.Errorf("%s URL is not configured", s.name)
	} else {
		err = d.client.Post(ctx, s.url, payload)
	}

	if err != nil {
		d.log.Error("Delivery failed", "sink", s.name, "entry", id, "error", err)
		if d.broadcaster != nil {
			d.broadcaster.BroadcastDeliveryFailed(s.name, s.failMsg)
		}
		return
	}
	d.log.Info("Entry delivered", "sink", s.name, "entry", id)
}

// Wait blocks until every started delivery has finished
func (d *DeliveryService) Wait() {
	d.wg.Wait()
}
