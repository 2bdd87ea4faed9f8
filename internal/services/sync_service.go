package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/attendsync/server/internal/device"
	"github.com/attendsync/server/internal/models"
	"github.com/attendsync/server/internal/observability"
	"github.com/attendsync/server/internal/repository"
)

// SyncService drives sync passes over configured terminals: connect,
// fetch the user directory and punch log, normalize, dedup and
// reconcile every punch, then stamp the device's last-sync time.
type SyncService struct {
	deviceRepo repository.DeviceRepo
	employees  repository.EmployeeRepo
	events     repository.AttendanceEventRepo
	reconciler *ReconcileService
	normalizer *TimeNormalizer
	dialer     device.Dialer
	sortLog    bool
	wsHub      *WebSocketHub
	metrics    *observability.SyncMetrics
	logger     *observability.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	deviceRepo repository.DeviceRepo,
	employees repository.EmployeeRepo,
	events repository.AttendanceEventRepo,
	reconciler *ReconcileService,
	normalizer *TimeNormalizer,
	dialer device.Dialer,
	sortLog bool,
) (*SyncService, error) {
	metrics, err := observability.NewSyncMetrics()
	if err != nil {
		return nil, err
	}

	return &SyncService{
		deviceRepo: deviceRepo,
		employees:  employees,
		events:     events,
		reconciler: reconciler,
		normalizer: normalizer,
		dialer:     dialer,
		sortLog:    sortLog,
		metrics:    metrics,
		logger:     observability.GetLogger().WithField("service", "sync"),
	}, nil
}

// SetWebSocketHub sets the hub used for live sync progress broadcasts
func (s *SyncService) SetWebSocketHub(hub *WebSocketHub) {
	s.wsHub = hub
}

// SyncAll runs a sync pass over every configured terminal. Per-device
// failures are captured in the reports so one bad device does not block
// the rest.
func (s *SyncService) SyncAll(ctx context.Context) ([]*models.SyncReport, error) {
	ctx, span := observability.StartServiceSpan(ctx, "sync", "SyncAll")
	defer span.End()

	devices, err := s.deviceRepo.GetAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	reports := make([]*models.SyncReport, 0, len(devices))
	for _, dev := range devices {
		report := s.syncDevice(ctx, dev)
		if report.Failed() {
			s.logger.WithContext(ctx).Errorf("sync failed for device %s (%s): %s", dev.Name, dev.Address, report.Error)
		}
		reports = append(reports, report)
	}

	observability.SetSuccess(span)
	return reports, nil
}

// SyncOne runs a sync pass for a single terminal. The returned error is
// the pass's first fatal error; the report carries the counters either way.
func (s *SyncService) SyncOne(ctx context.Context, deviceID string) (*models.SyncReport, error) {
	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, models.ErrDeviceNotFound
	}

	report := s.syncDevice(ctx, dev)
	if report.Failed() {
		return report, fmt.Errorf("%s", report.Error)
	}
	return report, nil
}

func (s *SyncService) syncDevice(ctx context.Context, dev *models.Device) *models.SyncReport {
	ctx, span := observability.StartServiceSpan(ctx, "sync", "SyncDevice")
	defer span.End()
	span.SetAttributes(observability.DeviceID(dev.ID))

	started := time.Now().UTC()
	report := &models.SyncReport{
		DeviceID:   dev.ID,
		DeviceName: dev.Name,
		StartedAt:  started,
	}
	log := s.logger.WithContext(ctx).WithField("device", dev.Name)

	err := s.runPass(ctx, dev, log, report)
	report.Duration = time.Since(started).Round(time.Millisecond).String()
	if err != nil {
		report.Error = err.Error()
		observability.RecordError(span, err)
	} else {
		observability.SetSuccess(span)
	}

	s.metrics.RecordSyncPass(ctx, dev.ID, report.EventsCreated, report.Duplicates, err == nil)
	s.notifyProgress(report)
	return report
}

// runPass is one full connect → fetch → reconcile → disconnect cycle.
func (s *SyncService) runPass(ctx context.Context, dev *models.Device, log *observability.Logger, report *models.SyncReport) error {
	session, err := s.connect(ctx, dev)
	if err != nil {
		return err
	}
	// The device session is a scoped resource: released on every exit
	// path, including panics further down the pipeline.
	defer func() {
		if err := session.Disconnect(); err != nil {
			log.Warnf("disconnect failed: %v", err)
		}
		if err := s.deviceRepo.UpdateStatus(ctx, dev.ID, models.DeviceStatusDisconnected); err != nil {
			log.Warnf("status update failed: %v", err)
		}
	}()

	// A failed user fetch degrades the pass: punches can still be read
	// but none will match the (empty) directory.
	directory := s.fetchDirectory(ctx, session, log)

	punches, err := session.GetAttendanceLog(ctx)
	if err != nil {
		log.Warnf("attendance log fetch failed: %v", err)
		return models.ErrNoAttendanceLog
	}
	if len(punches) == 0 {
		return models.ErrNoAttendanceLog
	}
	report.PunchesFetched = len(punches)
	log.Infof("fetched %d punches and %d directory entries", len(punches), len(directory))

	if s.sortLog {
		punches = s.sortedByInstant(punches)
	}

	for _, punch := range punches {
		if err := s.processPunch(ctx, dev, directory, punch, log, report); err != nil {
			return err
		}
	}

	if err := s.deviceRepo.UpdateLastSync(ctx, dev.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating last sync time: %w", err)
	}

	log.Infof("pass complete: %d events created, %d duplicates, %d unknown users",
		report.EventsCreated, report.Duplicates, report.UnknownUsers)
	return nil
}

// connect dials the terminal and flips the stored device status around
// the attempt: connected on success, error on failure.
func (s *SyncService) connect(ctx context.Context, dev *models.Device) (device.Session, error) {
	session, err := s.dialer.Dial(ctx, dev.Address, dev.Port, dev.Timeout(), device.Credentials{CommKey: dev.CommKey})
	if err != nil {
		if uerr := s.deviceRepo.UpdateStatus(ctx, dev.ID, models.DeviceStatusError); uerr != nil {
			s.logger.Warnf("status update failed for device %s: %v", dev.ID, uerr)
		}
		s.metrics.RecordConnectionFailure(ctx, dev.ID)
		return nil, &models.ConnectionError{Address: dev.Address, Port: dev.Port, Err: err}
	}
	if err := s.deviceRepo.UpdateStatus(ctx, dev.ID, models.DeviceStatusConnected); err != nil {
		s.logger.Warnf("status update failed for device %s: %v", dev.ID, err)
	}
	return session, nil
}

func (s *SyncService) fetchDirectory(ctx context.Context, session device.Session, log *observability.Logger) map[string]device.User {
	users, err := session.GetUsers(ctx)
	if err != nil {
		log.Warnf("user directory fetch failed, proceeding without identity enrichment: %v", err)
		return map[string]device.User{}
	}
	directory := make(map[string]device.User, len(users))
	for _, u := range users {
		directory[u.DeviceUserID] = u
	}
	return directory
}

func (s *SyncService) processPunch(ctx context.Context, dev *models.Device, directory map[string]device.User, punch device.RawPunch, log *observability.Logger, report *models.SyncReport) error {
	instant, err := s.normalizer.Normalize(punch.Timestamp)
	if err != nil {
		// Unparseable timestamps poison the batch; bail out.
		return err
	}

	user, known := directory[punch.DeviceUserID]
	if !known {
		log.Debugf("punch for unknown device user %s skipped", punch.DeviceUserID)
		report.UnknownUsers++
		return nil
	}

	employee, err := s.resolveEmployee(ctx, punch.DeviceUserID, user.Name)
	if err != nil {
		return err
	}

	recorded, err := s.events.Exists(ctx, punch.DeviceUserID, instant)
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}
	if recorded {
		report.Duplicates++
		return nil
	}

	event := models.NewAttendanceEvent(employee.ID, punch.DeviceUserID, punch.Status, punch.Direction, instant, dev.Address)
	if err := s.events.Add(ctx, event); err != nil {
		return fmt.Errorf("storing attendance event: %w", err)
	}
	report.EventsCreated++

	result, err := s.reconciler.Apply(ctx, employee.ID, punch.Direction, instant)
	if err != nil {
		return err
	}
	if result.SessionOpened {
		report.SessionsOpened++
	}
	if result.SessionClosed {
		report.SessionsClosed++
	}
	if result.OrphanCheckOut {
		report.OrphanCheckOuts++
	}
	return nil
}

// resolveEmployee returns the durable identity for a device-local user
// id, creating it on first sight. The unique constraint on the column
// serializes concurrent creation across parallel device syncs.
func (s *SyncService) resolveEmployee(ctx context.Context, deviceUserID, name string) (*models.Employee, error) {
	employee, err := s.employees.GetByDeviceUserID(ctx, deviceUserID)
	if err != nil {
		return nil, fmt.Errorf("employee lookup: %w", err)
	}
	if employee != nil {
		return employee, nil
	}

	employee, err = models.NewEmployee(name, deviceUserID)
	if err != nil {
		return nil, err
	}
	if err := s.employees.Add(ctx, employee); err != nil {
		// A concurrent pass may have created the row first; re-read.
		if existing, lerr := s.employees.GetByDeviceUserID(ctx, deviceUserID); lerr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("creating employee for device user %s: %w", deviceUserID, err)
	}
	s.logger.Infof("created employee %q for device user %s", employee.Name, deviceUserID)
	return employee, nil
}

func (s *SyncService) sortedByInstant(punches []device.RawPunch) []device.RawPunch {
	sorted := make([]device.RawPunch, len(punches))
	copy(sorted, punches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// TestConnection is the user-triggered diagnostic: connect, read the
// device identity if it will give one, disconnect. It never touches the
// attendance data model.
func (s *SyncService) TestConnection(ctx context.Context, deviceID string) (*models.ConnectionTestReport, error) {
	ctx, span := observability.StartServiceSpan(ctx, "sync", "TestConnection")
	defer span.End()

	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, models.ErrDeviceNotFound
	}

	report := &models.ConnectionTestReport{DeviceID: dev.ID, Model: dev.Model}

	session, err := s.connect(ctx, dev)
	if err != nil {
		report.Message = err.Error()
		return report, nil
	}
	defer session.Disconnect()
	defer s.deviceRepo.UpdateStatus(ctx, dev.ID, models.DeviceStatusDisconnected)

	report.Success = true
	report.Message = "connection successful"
	if name, err := session.DeviceName(ctx); err == nil {
		report.DeviceName = name
	}
	if fw, err := session.FirmwareVersion(ctx); err == nil {
		report.FirmwareVersion = fw
	} else if report.DeviceName == "" {
		report.Message = "connection successful but could not retrieve device info"
	}

	observability.SetSuccess(span)
	return report, nil
}

// ClearAttendance clears the device-side log and then deletes every
// locally stored attendance event. The whole table goes; there is no
// per-device filtering and no way back.
func (s *SyncService) ClearAttendance(ctx context.Context, deviceID string) (int64, error) {
	ctx, span := observability.StartServiceSpan(ctx, "sync", "ClearAttendance")
	defer span.End()

	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return 0, err
	}
	if dev == nil {
		return 0, models.ErrDeviceNotFound
	}

	session, err := s.connect(ctx, dev)
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}
	defer session.Disconnect()
	defer s.deviceRepo.UpdateStatus(ctx, dev.ID, models.DeviceStatusDisconnected)

	// Refuse to wipe local rows unless the device actually holds data;
	// an empty device log usually means the operator picked the wrong
	// terminal.
	punches, err := session.GetAttendanceLog(ctx)
	if err != nil {
		return 0, fmt.Errorf("verifying device log: %w", err)
	}
	if len(punches) == 0 {
		return 0, models.ErrDeviceLogEmpty
	}

	if err := session.ClearAttendanceLog(ctx); err != nil {
		return 0, fmt.Errorf("clearing device log: %w", err)
	}

	deleted, err := s.events.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting local attendance events: %w", err)
	}

	s.logger.WithContext(ctx).Infof("cleared device %s log and deleted %d local events", dev.Name, deleted)
	observability.SetSuccess(span)
	return deleted, nil
}

// Restart issues a restart command to the terminal. No data effects.
func (s *SyncService) Restart(ctx context.Context, deviceID string) error {
	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if dev == nil {
		return models.ErrDeviceNotFound
	}

	session, err := s.connect(ctx, dev)
	if err != nil {
		return err
	}
	defer session.Disconnect()
	defer s.deviceRepo.UpdateStatus(ctx, dev.ID, models.DeviceStatusDisconnected)

	return session.Restart(ctx)
}

func (s *SyncService) notifyProgress(report *models.SyncReport) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastToTopic(TopicSync, WSMessage{
		Type:    WSTypeSyncReport,
		Payload: report,
	})
}
