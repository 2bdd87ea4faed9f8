package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// SchedulerStatus represents the current status of the sync scheduler
type SchedulerStatus struct {
	Running          bool      `json:"running"`
	Enabled          bool      `json:"enabled"`
	LastRun          time.Time `json:"lastRun,omitempty"`
	LastRunDuration  string    `json:"lastRunDuration,omitempty"`
	DevicesSynced    int       `json:"devicesSynced"`
	DevicesFailed    int       `json:"devicesFailed"`
	EventsCreated    int       `json:"eventsCreated"`
	Errors           []string  `json:"errors,omitempty"`
	NextScheduledRun time.Time `json:"nextScheduledRun,omitempty"`
}

// SyncSchedulerService periodically drives a sync pass over every
// configured terminal. The sync pipeline itself stays pull-based; this
// is just the timer in front of SyncAll.
type SyncSchedulerService struct {
	syncService     *SyncService
	intervalMinutes int
	wsHub           *WebSocketHub

	mu       sync.RWMutex
	enabled  bool
	running  bool
	stopChan chan struct{}
	status   SchedulerStatus
	ticker   *time.Ticker
}

// NewSyncSchedulerService creates a new SyncSchedulerService
func NewSyncSchedulerService(syncService *SyncService, intervalMinutes int) *SyncSchedulerService {
	if intervalMinutes <= 0 {
		intervalMinutes = 15 // Default to 15 minutes
	}

	return &SyncSchedulerService{
		syncService:     syncService,
		intervalMinutes: intervalMinutes,
		stopChan:        make(chan struct{}),
		enabled:         true,
		status: SchedulerStatus{
			Enabled: true,
			Errors:  []string{},
		},
	}
}

// SetWebSocketHub sets the WebSocket hub for status notifications
func (s *SyncSchedulerService) SetWebSocketHub(hub *WebSocketHub) {
	s.wsHub = hub
}

// Start begins the periodic sync loop
func (s *SyncSchedulerService) Start() {
	s.mu.Lock()
	if s.ticker != nil {
		s.mu.Unlock()
		return // Already started
	}
	s.enabled = true
	s.status.Enabled = true
	s.stopChan = make(chan struct{})
	interval := time.Duration(s.intervalMinutes) * time.Minute
	s.ticker = time.NewTicker(interval)
	s.status.NextScheduledRun = time.Now().Add(interval)
	s.mu.Unlock()

	log.Printf("Sync scheduler started (runs every %d minutes)", s.intervalMinutes)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				s.status.NextScheduledRun = time.Now().Add(time.Duration(s.intervalMinutes) * time.Minute)
				s.mu.Unlock()
				s.runPass()
			case <-s.stopChan:
				s.mu.Lock()
				s.ticker.Stop()
				s.ticker = nil
				s.mu.Unlock()
				log.Println("Sync scheduler stopped")
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *SyncSchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return // Already stopped
	}

	s.enabled = false
	s.status.Enabled = false
	close(s.stopChan)
}

// IsRunning returns whether a pass is currently in progress
func (s *SyncSchedulerService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetStatus returns the current scheduler status
func (s *SyncSchedulerService) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RunNow triggers an immediate pass over all devices
func (s *SyncSchedulerService) RunNow() {
	go s.runPass()
}

// runPass performs one SyncAll invocation and records the outcome
func (s *SyncSchedulerService) runPass() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("Sync pass already running, skipping")
		return
	}
	s.running = true
	s.status.Running = true
	s.status.DevicesSynced = 0
	s.status.DevicesFailed = 0
	s.status.EventsCreated = 0
	s.status.Errors = []string{}
	s.mu.Unlock()

	startTime := time.Now()
	reports, err := s.syncService.SyncAll(context.Background())

	s.mu.Lock()
	s.running = false
	s.status.Running = false
	s.status.LastRun = startTime
	s.status.LastRunDuration = time.Since(startTime).Round(time.Millisecond).String()
	if err != nil {
		s.status.Errors = append(s.status.Errors, err.Error())
	}
	for _, report := range reports {
		if report.Failed() {
			s.status.DevicesFailed++
			s.status.Errors = append(s.status.Errors, report.DeviceName+": "+report.Error)
		} else {
			s.status.DevicesSynced++
		}
		s.status.EventsCreated += report.EventsCreated
	}
	status := s.status
	s.mu.Unlock()

	s.notifyStatus(status)
}

func (s *SyncSchedulerService) notifyStatus(status SchedulerStatus) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastToTopic(TopicScheduler, WSMessage{
		Type:    WSTypeSchedulerStatus,
		Payload: status,
	})
}
