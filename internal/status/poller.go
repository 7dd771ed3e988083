// Package status polls each registered receiver's main zone and maintains a
// normalized snapshot per receiver. Snapshots survive transient poll failures
// so readers always see the last known state rather than a gap.
package status

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/strefethen/yamaha-hub-go/internal/config"
	"github.com/strefethen/yamaha-hub-go/internal/devices"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

// Snapshot is the normalized view of one receiver zone.
type Snapshot struct {
	ReceiverID      string  `json:"receiver_id"`
	Zone            string  `json:"zone"`
	Power           bool    `json:"power"`
	Muted           bool    `json:"muted"`
	VolumeDB        float64 `json:"volume_db"`
	VolumeFraction  float64 `json:"volume_fraction"`
	Input           string  `json:"input"`
	SurroundProgram string  `json:"surround_program,omitempty"`
	PlayState       string  `json:"play_state"`

	PlaybackSupport ync.PlaybackSupport `json:"playback_support"`

	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Song      string `json:"song,omitempty"`
	Station   string `json:"station,omitempty"`
	Stale     bool   `json:"stale"`
	LastError string `json:"last_error,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// Broadcaster receives snapshot change events.
type Broadcaster interface {
	Broadcast(event any)
}

// Event is the wire shape of a stream notification.
type Event struct {
	Type     string   `json:"type"`
	Snapshot Snapshot `json:"snapshot"`
}

type Service struct {
	cfg      config.Config
	logger   *log.Logger
	registry *devices.Service
	hub      Broadcaster

	mu        sync.RWMutex
	snapshots map[string]Snapshot

	startMu sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewService(cfg config.Config, logger *log.Logger, registry *devices.Service, hub Broadcaster) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		hub:       hub,
		snapshots: make(map[string]Snapshot),
	}
}

// Start launches the poll loop. Calling Start on a running service is a no-op.
func (service *Service) Start() {
	service.startMu.Lock()
	defer service.startMu.Unlock()

	if service.stopCh != nil {
		return
	}
	if service.cfg.PollIntervalMs <= 0 {
		service.logger.Print("Status polling disabled")
		return
	}

	service.stopCh = make(chan struct{})
	service.wg.Add(1)

	interval := time.Duration(service.cfg.PollIntervalMs) * time.Millisecond
	service.logger.Printf("Starting status poller interval=%dms", service.cfg.PollIntervalMs)

	go func() {
		defer service.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		service.pollAll()
		for {
			select {
			case <-ticker.C:
				service.pollAll()
			case <-service.stopCh:
				return
			}
		}
	}()
}

// Stop halts the poll loop and waits for the in-flight pass to finish.
func (service *Service) Stop() {
	service.startMu.Lock()
	defer service.startMu.Unlock()

	if service.stopCh == nil {
		return
	}
	close(service.stopCh)
	service.wg.Wait()
	service.stopCh = nil
}

// Latest returns the current snapshot for a receiver, or nil when the poller
// has not observed it yet.
func (service *Service) Latest(receiverID string) *Snapshot {
	service.mu.RLock()
	defer service.mu.RUnlock()

	snapshot, ok := service.snapshots[receiverID]
	if !ok {
		return nil
	}
	return &snapshot
}

// All returns every known snapshot.
func (service *Service) All() []Snapshot {
	service.mu.RLock()
	defer service.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(service.snapshots))
	for _, snapshot := range service.snapshots {
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

func (service *Service) pollAll() {
	timeout := time.Duration(service.cfg.ReceiverTimeoutMs) * time.Millisecond

	for _, receiver := range service.registry.List() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		service.pollOne(ctx, receiver.ReceiverID)
		cancel()
	}
}

// Poll refreshes one receiver immediately and returns the resulting snapshot.
func (service *Service) Poll(ctx context.Context, receiverID string) *Snapshot {
	service.pollOne(ctx, receiverID)
	return service.Latest(receiverID)
}

func (service *Service) pollOne(ctx context.Context, receiverID string) {
	session, err := service.registry.Session(receiverID, "")
	if err != nil || session == nil {
		return
	}

	basic, err := session.BasicStatus(ctx)
	if err != nil {
		service.markStale(receiverID, session.Zone(), err)
		return
	}

	snapshot := Snapshot{
		ReceiverID:     receiverID,
		Zone:           session.Zone(),
		Power:          basic.On,
		Muted:          basic.Muted,
		VolumeDB:       basic.VolumeDB,
		VolumeFraction: volumeFraction(basic.VolumeDB),
		Input:          basic.Input,
		PlayState:      "idle",
		UpdatedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	if basic.On {
		support, err := session.PlaybackSupport(ctx, basic.Input)
		if err != nil {
			service.markStale(receiverID, session.Zone(), err)
			return
		}
		snapshot.PlaybackSupport = support

		if len(session.SurroundPrograms()) > 0 {
			program, err := session.SurroundProgram(ctx)
			if err != nil {
				service.markStale(receiverID, session.Zone(), err)
				return
			}
			snapshot.SurroundProgram = program
		}

		// An input without a Play_Info node is not a failed cycle; the
		// zone is simply idle on a plain input. Anything else means the
		// round trip broke, and the last good snapshot must survive.
		play, err := session.PlayStatus(ctx, basic.Input)
		switch {
		case err == nil:
			snapshot.PlayState = playState(play)
			snapshot.Artist = play.Artist
			snapshot.Album = play.Album
			snapshot.Song = play.Song
			snapshot.Station = play.Station
		case isUnsupportedSource(err):
		default:
			service.markStale(receiverID, session.Zone(), err)
			return
		}
	} else {
		snapshot.PlayState = "off"
	}

	service.mu.Lock()
	previous, existed := service.snapshots[receiverID]
	service.snapshots[receiverID] = snapshot
	service.mu.Unlock()

	if service.hub != nil && (!existed || changed(previous, snapshot)) {
		service.hub.Broadcast(Event{Type: "status", Snapshot: snapshot})
	}
}

// markStale keeps the last good snapshot but flags it and records the error.
func (service *Service) markStale(receiverID, zone string, pollErr error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	snapshot, ok := service.snapshots[receiverID]
	if !ok {
		snapshot = Snapshot{
			ReceiverID: receiverID,
			Zone:       zone,
			PlayState:  "unknown",
			UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
	}
	snapshot.Stale = true
	snapshot.LastError = pollErr.Error()
	service.snapshots[receiverID] = snapshot
}

func isUnsupportedSource(err error) bool {
	var unsupported *yamaha.UnsupportedOperationError
	return errors.As(err, &unsupported)
}

func volumeFraction(db float64) float64 {
	if db <= yamaha.VolumeMinDB {
		return 0
	}
	if db >= yamaha.VolumeMaxDB {
		return 1
	}
	return (db - yamaha.VolumeMinDB) / (yamaha.VolumeMaxDB - yamaha.VolumeMinDB)
}

func playState(play ync.PlayStatus) string {
	if play.Playing {
		return "playing"
	}
	return "idle"
}

func changed(previous, next Snapshot) bool {
	previous.UpdatedAt = ""
	next.UpdatedAt = ""
	return previous != next
}
