// Package mdns advertises the server on the local network through Avahi.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is the DNS-SD service type of the event board.
	ServiceType = "_eventboard._tcp"

	// APIVersion is the API version advertised in TXT records.
	APIVersion = "v1"
)

// Record describes one advertised service.
type Record struct {
	Instance string
	Port     int
	TXT      []string
}

// txt encodes the TXT strings the way Avahi expects them.
func (r Record) txt() [][]byte {
	out := make([][]byte, len(r.TXT))
	for i, s := range r.TXT {
		out[i] = []byte(s)
	}
	return out
}

// publishFunc registers a record and returns a function that withdraws it.
type publishFunc func(Record) (func(), error)

// Service manages the advertisement. Failures are reported to the caller
// but are expected to be non-fatal: containers rarely have a system bus.
type Service struct {
	publish  publishFunc
	withdraw func()
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewService creates a service that publishes through the system D-Bus.
func NewService(logger *slog.Logger) *Service {
	return newService(publishAvahi, logger)
}

func newService(publish publishFunc, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{publish: publish, logger: logger}
}

// NewRecord builds the record for a server called name listening on port.
// The instance name is the host name, falling back to name.
func NewRecord(name string, port int) Record {
	instance, err := os.Hostname()
	if err != nil || instance == "" {
		instance = name
	}
	return Record{
		Instance: instance,
		Port:     port,
		TXT: []string{
			"name=" + name,
			"api=" + APIVersion,
		},
	}
}

// Start begins advertising rec. A running advertisement is replaced.
func (s *Service) Start(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Port <= 0 || rec.Port > 65535 {
		return fmt.Errorf("invalid port %d", rec.Port)
	}

	if s.withdraw != nil {
		s.withdraw()
		s.withdraw = nil
	}

	withdraw, err := s.publish(rec)
	if err != nil {
		return fmt.Errorf("publish mDNS service: %w", err)
	}
	s.withdraw = withdraw

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"instance", rec.Instance,
		"port", rec.Port,
	)
	return nil
}

// Running reports whether an advertisement is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withdraw != nil
}

// Stop withdraws the advertisement. Safe to call multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.withdraw != nil {
		s.withdraw()
		s.withdraw = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}

// publishAvahi adds rec to a new Avahi entry group on the system bus.
func publishAvahi(rec Record) (func(), error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	server, err := avahi.ServerNew(conn)
	if err != nil {
		return nil, fmt.Errorf("connect avahi: %w", err)
	}

	group, err := server.EntryGroupNew()
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("create entry group: %w", err)
	}

	err = group.AddService(
		avahi.InterfaceUnspec,
		avahi.ProtoUnspec,
		0,
		rec.Instance,
		ServiceType,
		"local",
		"",
		uint16(rec.Port),
		rec.txt(),
	)
	if err != nil {
		server.EntryGroupFree(group)
		server.Close()
		return nil, fmt.Errorf("add service: %w", err)
	}

	if err := group.Commit(); err != nil {
		server.EntryGroupFree(group)
		server.Close()
		return nil, fmt.Errorf("commit entry group: %w", err)
	}

	return func() {
		server.EntryGroupFree(group)
		server.Close()
	}, nil
}
