package statsd

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Azure/cosmos-rest/pkg/metrics"
	"github.com/Azure/cosmos-rest/pkg/util/recover"
)

// Statsd emits metrics in the Geneva statsd dialect, where the metric name is
// a JSON envelope carrying the namespace and dimensions.
type Statsd struct {
	log *logrus.Entry

	namespace string
	protocol  string
	address   string

	mu   sync.Mutex
	conn io.WriteCloser

	// closeMu guards closed and the close of ch
	closeMu sync.RWMutex
	closed  bool
	ch      chan *metric
	done    chan struct{}

	now func() time.Time
}

var _ metrics.Emitter = &Statsd{}

type metric struct {
	name       string
	namespace  string
	dimensions map[string]string

	timestamp  time.Time
	valueFloat *float64
	valueGauge *int64
}

func (m *metric) marshalStatsd() ([]byte, error) {
	b, err := json.Marshal(&struct {
		Metric    string
		Namespace string `json:",omitempty"`
		Dims      map[string]string
		TS        string
	}{
		Metric:    m.name,
		Namespace: m.namespace,
		Dims:      m.dimensions,
		TS:        m.timestamp.UTC().Format("2006-01-02T15:04:05.000"),
	})
	if err != nil {
		return nil, err
	}

	switch {
	case m.valueFloat != nil:
		b = append(b, []byte(fmt.Sprintf(":%f|f\n", *m.valueFloat))...)
	case m.valueGauge != nil:
		b = append(b, []byte(":"+strconv.FormatInt(*m.valueGauge, 10)+"|g\n")...)
	default:
		return nil, fmt.Errorf("metric %s has no value", m.name)
	}

	return b, nil
}

// ParseSocket parses udp:<host>:<port> or unix:<path>.
func ParseSocket(socket string) (string, string, error) {
	parameters := strings.SplitN(socket, ":", 2)
	if len(parameters) != 2 {
		return "", "", fmt.Errorf("malformed statsd socket %q: expecting udp:<hostname>:<port> or unix:<path-to-socket>", socket)
	}

	protocol, address := parameters[0], parameters[1]
	switch protocol {
	case "unix":
	case "udp":
		_, err := net.ResolveUDPAddr(protocol, address)
		if err != nil {
			return "", "", fmt.Errorf("invalid UDP address in statsd socket %q: %w", socket, err)
		}
	default:
		return "", "", fmt.Errorf("unsupported protocol %q in statsd socket %q", protocol, socket)
	}

	return protocol, address, nil
}

// New returns a Statsd emitter writing to socket.  Metrics are written by a
// background goroutine; call Close to flush and stop it.
func New(log *logrus.Entry, namespace, socket string) (*Statsd, error) {
	protocol, address, err := ParseSocket(socket)
	if err != nil {
		return nil, err
	}

	s := &Statsd{
		log: log,

		namespace: namespace,
		protocol:  protocol,
		address:   address,

		ch:   make(chan *metric, 1024),
		done: make(chan struct{}),

		now: time.Now,
	}

	go s.run()

	return s, nil
}

// EmitFloat records float information
func (s *Statsd) EmitFloat(m string, value float64, dims map[string]string) {
	s.emit(&metric{
		name:       m,
		dimensions: dims,
		valueFloat: &value,
	})
}

// EmitGauge records gauge information
func (s *Statsd) EmitGauge(m string, value int64, dims map[string]string) {
	s.emit(&metric{
		name:       m,
		dimensions: dims,
		valueGauge: &value,
	})
}

func (s *Statsd) emit(m *metric) {
	m.namespace = s.namespace
	m.timestamp = s.now()

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- m:
	default:
		// the writer is behind; drop the metric rather than block a request
	}
}

// Close writes the queued metrics, stops the background writer and closes the
// connection.  Metrics emitted after Close are dropped.
func (s *Statsd) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.closeMu.Unlock()

	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Statsd) run() {
	defer close(s.done)
	defer recover.Panic(s.log)

	var lastLog time.Time

	for m := range s.ch {
		err := s.write(m)
		if err != nil &&
			s.now().After(lastLog.Add(time.Second)) {
			lastLog = s.now()
			s.log.Error(err)
		}
	}
}

func (s *Statsd) write(m *metric) (err error) {
	if s.now().After(m.timestamp.Add(time.Minute)) {
		return fmt.Errorf("discarding stale metric")
	}

	b, err := m.marshalStatsd()
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		s.conn, err = net.Dial(s.protocol, s.address)
		if err != nil {
			s.conn = nil
			return
		}
	}

	_, err = s.conn.Write(b)
	if err != nil {
		s.conn.Close()
		s.conn = nil
	}

	return
}
