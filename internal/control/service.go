// Package control exposes the receiver command surface. Every state-changing
// command is serialized per receiver and recorded in the audit log.
package control

import (
	"log"
	"net/http"
	"sync"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
	"github.com/strefethen/yamaha-hub-go/internal/audit"
	"github.com/strefethen/yamaha-hub-go/internal/devices"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha"
)

type Service struct {
	logger   *log.Logger
	registry *devices.Service
	audits   *audit.Service

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewService(logger *log.Logger, registry *devices.Service, audits *audit.Service) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		logger:   logger,
		registry: registry,
		audits:   audits,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-receiver mutex, creating it on first use. Receivers
// confirm commands in order, so overlapping writers would interleave volume
// steps and surround toggles within one device.
func (service *Service) lockFor(receiverID string) *sync.Mutex {
	service.locksMu.Lock()
	defer service.locksMu.Unlock()

	lock, ok := service.locks[receiverID]
	if !ok {
		lock = &sync.Mutex{}
		service.locks[receiverID] = lock
	}
	return lock
}

// session resolves a receiver zone to a live control session.
func (service *Service) session(receiverID, zone string) (*yamaha.Session, error) {
	session, err := service.registry.Session(receiverID, zone)
	if err != nil {
		return nil, mapDomainError(err)
	}
	if session == nil {
		return nil, apperrors.NewAppError(apperrors.ErrorCodeReceiverNotFound,
			"Receiver not found: "+receiverID, http.StatusNotFound, map[string]any{
				"receiver_id": receiverID,
			})
	}
	return session, nil
}

// read runs a query without touching the audit log.
func (service *Service) read(receiverID, zone string, fn func(*yamaha.Session) error) error {
	session, err := service.session(receiverID, zone)
	if err != nil {
		return err
	}
	if err := fn(session); err != nil {
		return mapDomainError(err)
	}
	return nil
}

// command serializes a state-changing operation per receiver and records it.
func (service *Service) command(r *http.Request, receiverID, zone, action, parameter string, fn func(*yamaha.Session) error) error {
	session, err := service.session(receiverID, zone)
	if err != nil {
		return err
	}

	lock := service.lockFor(receiverID)
	lock.Lock()
	cmdErr := fn(session)
	lock.Unlock()

	entry := audit.Entry{
		ReceiverID: receiverID,
		Zone:       session.Zone(),
		Action:     action,
		Parameter:  parameter,
		Outcome:    "ok",
	}
	if r != nil {
		entry.RequestID = api.GetRequestID(r)
	}

	if cmdErr != nil {
		appErr := mapDomainError(cmdErr)
		entry.Outcome = "error"
		entry.ErrorCode = string(appErr.Code)
		service.recordAudit(entry)
		return appErr
	}

	service.recordAudit(entry)
	return nil
}

func (service *Service) recordAudit(entry audit.Entry) {
	if service.audits == nil {
		return
	}
	service.audits.Record(entry)
}
