// Package publish fans opportunities and alerts out to downstream consumers over NATS.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// Envelope is the message body published for every signal.
type Envelope struct {
	RunID          string           `json:"run_id"`
	OrganizationID string           `json:"organization_id"`
	Kind           model.SignalKind `json:"kind"`
	Signal         model.Signal     `json:"signal"`
	Degraded       bool             `json:"degraded"`
	PublishedAt    time.Time        `json:"published_at"`
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes one envelope per signal on the opportunity or alert subject.
type NATSPublisher struct {
	conn               Conn
	opportunitySubject string
	alertSubject       string
	close              func()
}

// NewNATSPublisher connects to cfg.URL with unlimited reconnects.
func NewNATSPublisher(cfg config.NATSConfig) (*NATSPublisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("intel-radar"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	p := NewWithConn(nc, cfg.OpportunitySubject, cfg.AlertSubject)
	p.close = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return p, nil
}

// NewWithConn builds a publisher over an existing connection. Empty subjects use the defaults.
func NewWithConn(conn Conn, opportunitySubject, alertSubject string) *NATSPublisher {
	if opportunitySubject == "" {
		opportunitySubject = "intel.opportunities"
	}
	if alertSubject == "" {
		alertSubject = "intel.alerts"
	}
	return &NATSPublisher{conn: conn, opportunitySubject: opportunitySubject, alertSubject: alertSubject}
}

// Close drains the connection when the publisher owns it.
func (p *NATSPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}

// Publish sends every signal of b. A failed message does not stop the rest;
// all failures are returned joined.
func (p *NATSPublisher) Publish(ctx context.Context, b *model.IntelligenceBrief) error {
	now := time.Now().UTC()
	var errs []error
	send := func(subject string, kind model.SignalKind, signals []model.Signal) {
		for _, s := range signals {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				return
			}
			data, err := json.Marshal(Envelope{
				RunID:          b.RunID,
				OrganizationID: b.OrganizationID,
				Kind:           kind,
				Signal:         s,
				Degraded:       b.Degraded,
				PublishedAt:    now,
			})
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := p.conn.Publish(subject, data); err != nil {
				errs = append(errs, fmt.Errorf("publish %s %q: %w", subject, s.Title, err))
			}
		}
	}
	send(p.opportunitySubject, model.KindOpportunity, b.Opportunities)
	send(p.alertSubject, model.KindAlert, b.Alerts)

	logger.Log.WithFields(logrus.Fields{
		"run_id":        b.RunID,
		"opportunities": len(b.Opportunities),
		"alerts":        len(b.Alerts),
		"errors":        len(errs),
	}).Info("signals published")
	return errors.Join(errs...)
}
