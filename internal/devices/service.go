// Package devices keeps the registry of discovered receivers. Records come
// from SSDP scans or configured static IPs, survive restarts through the
// record store, and back the control sessions handed to the other services.
package devices

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/strefethen/yamaha-hub-go/internal/config"
	"github.com/strefethen/yamaha-hub-go/internal/discovery"
	"github.com/strefethen/yamaha-hub-go/internal/store"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

type scanResult struct {
	found      int
	durationMs int64
	err        error
}

type Service struct {
	cfg      config.Config
	logger   *log.Logger
	client   *ync.Client
	records  store.RecordStore
	testMode bool // Skip SSDP discovery in test mode

	registryMu  sync.RWMutex
	registry    map[string]yamaha.ReceiverRecord
	lastScanAt  time.Time
	lastScanErr error

	scanMu       sync.Mutex
	scanInFlight bool
	scanWaiters  []chan scanResult
}

func NewService(cfg config.Config, logger *log.Logger, client *ync.Client, records store.RecordStore) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		records:  records,
		registry: make(map[string]yamaha.ReceiverRecord),
	}
}

// SetTestMode enables or disables test mode. In test mode, SSDP discovery is
// skipped so registry lookups never block on network operations.
func (service *Service) SetTestMode(enabled bool) {
	service.testMode = enabled
}

// LoadPersisted seeds the registry from previously stored records.
func (service *Service) LoadPersisted() error {
	stored, err := service.records.LoadAll()
	if err != nil {
		return err
	}

	service.registryMu.Lock()
	for id, record := range stored {
		service.registry[id] = record
	}
	service.registryMu.Unlock()

	if len(stored) > 0 {
		service.logger.Printf("Loaded %d persisted receiver(s)", len(stored))
	}
	return nil
}

// List returns all registered receivers sorted by friendly name.
func (service *Service) List() []Receiver {
	service.registryMu.RLock()
	defer service.registryMu.RUnlock()

	receivers := make([]Receiver, 0, len(service.registry))
	for id, record := range service.registry {
		receivers = append(receivers, Receiver{ReceiverID: id, Record: record})
	}
	sort.Slice(receivers, func(i, j int) bool {
		left := receivers[i].Record.Device.FriendlyName
		right := receivers[j].Record.Device.FriendlyName
		if left == right {
			return receivers[i].ReceiverID < receivers[j].ReceiverID
		}
		return left < right
	})
	return receivers
}

// Get returns the receiver for id, or nil when unknown.
func (service *Service) Get(receiverID string) *Receiver {
	service.registryMu.RLock()
	defer service.registryMu.RUnlock()

	record, ok := service.registry[receiverID]
	if !ok {
		return nil
	}
	return &Receiver{ReceiverID: receiverID, Record: record}
}

// Session builds a control session for a receiver zone. The empty zone
// selects the receiver's first advertised zone.
func (service *Service) Session(receiverID, zone string) (*yamaha.Session, error) {
	receiver := service.Get(receiverID)
	if receiver == nil {
		return nil, nil
	}

	caps := receiver.Record.Capabilities
	if zone == "" {
		if len(caps.Zones) == 0 {
			return nil, &yamaha.ValidationError{Kind: "zone", Name: zone}
		}
		zone = caps.Zones[0]
	}

	session, err := yamaha.NewSession(service.client, receiver.Record.ControlURL, &caps, zone)
	if err != nil {
		return nil, err
	}
	session.SetMenuRetry(service.cfg.MenuMaxAttempts, time.Duration(service.cfg.MenuRetryDelayMs)*time.Millisecond)
	return session, nil
}

// Remove forgets a receiver and deletes its persisted record.
func (service *Service) Remove(receiverID string) (bool, error) {
	service.registryMu.Lock()
	_, existed := service.registry[receiverID]
	delete(service.registry, receiverID)
	service.registryMu.Unlock()

	if !existed {
		return false, nil
	}
	return true, service.records.Remove(receiverID)
}

// Rediscover refreshes a single receiver's descriptors in place.
func (service *Service) Rediscover(ctx context.Context, receiverID string) (*Receiver, error) {
	receiver := service.Get(receiverID)
	if receiver == nil {
		return nil, nil
	}

	record, err := yamaha.Discover(ctx, service.client, receiver.Record.Host, yamaha.EndpointsForHost(receiver.Record.Host))
	if err != nil {
		return nil, err
	}

	service.registryMu.Lock()
	service.registry[receiverID] = *record
	service.registryMu.Unlock()

	if err := service.records.Save(receiverID, *record); err != nil {
		return nil, err
	}
	return &Receiver{ReceiverID: receiverID, Record: *record}, nil
}

// Scan runs a full network scan: SSDP plus the configured static IPs.
// Concurrent callers share a single in-flight scan.
func (service *Service) Scan(ctx context.Context) (int, int64, error) {
	service.scanMu.Lock()
	if service.scanInFlight {
		ch := make(chan scanResult, 1)
		service.scanWaiters = append(service.scanWaiters, ch)
		service.scanMu.Unlock()
		result := <-ch
		return result.found, result.durationMs, result.err
	}
	service.scanInFlight = true
	service.scanMu.Unlock()

	result := service.runScan(ctx)

	service.scanMu.Lock()
	waiters := service.scanWaiters
	service.scanWaiters = nil
	service.scanInFlight = false
	service.scanMu.Unlock()

	for _, ch := range waiters {
		ch <- result
		close(ch)
	}

	return result.found, result.durationMs, result.err
}

func (service *Service) runScan(ctx context.Context) scanResult {
	start := time.Now()

	hosts := append([]string{}, service.cfg.StaticReceiverIPs...)

	if !service.testMode {
		ssdpCtx, cancel := context.WithTimeout(ctx, time.Duration(service.cfg.SSDPDiscoveryTimeoutMs)*time.Millisecond)
		responses, err := discovery.Discover(
			ssdpCtx,
			service.cfg.SSDPDiscoveryPasses,
			time.Duration(service.cfg.SSDPPassIntervalMs)*time.Millisecond,
			time.Duration(service.cfg.SSDPDiscoveryTimeoutMs)*time.Millisecond,
		)
		cancel()
		if err != nil && len(responses) == 0 && len(hosts) == 0 {
			service.registryMu.Lock()
			service.lastScanErr = err
			service.registryMu.Unlock()
			return scanResult{err: err}
		}
		for _, resp := range responses {
			hosts = append(hosts, resp.Host())
		}
	}

	found := 0
	for _, host := range dedupeHosts(hosts) {
		record, err := yamaha.Discover(ctx, service.client, host, yamaha.EndpointsForHost(host))
		if err != nil {
			service.logger.Printf("Discovery failed host=%s: %v", host, err)
			continue
		}

		id := record.Device.DeviceID
		service.registryMu.Lock()
		service.registry[id] = *record
		service.lastScanAt = time.Now().UTC()
		service.registryMu.Unlock()

		if err := service.records.Save(id, *record); err != nil {
			service.logger.Printf("Persisting receiver %s failed: %v", id, err)
		}
		found++
	}

	service.registryMu.Lock()
	service.lastScanErr = nil
	service.registryMu.Unlock()

	return scanResult{
		found:      found,
		durationMs: time.Since(start).Milliseconds(),
	}
}

// LastScanAt reports when a scan last registered a receiver.
func (service *Service) LastScanAt() time.Time {
	service.registryMu.RLock()
	defer service.registryMu.RUnlock()
	return service.lastScanAt
}

// IsHealthy reports whether the registry can serve control traffic. An empty
// registry whose last scan failed is the only unhealthy state.
func (service *Service) IsHealthy() bool {
	service.registryMu.RLock()
	defer service.registryMu.RUnlock()
	return !(service.lastScanErr != nil && len(service.registry) == 0)
}

func dedupeHosts(hosts []string) []string {
	seen := make(map[string]struct{}, len(hosts))
	result := make([]string, 0, len(hosts))
	for _, host := range hosts {
		h := strings.TrimSpace(host)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		result = append(result, h)
	}
	return result
}
