package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/metropass/metropass-backend/internal/models"
)

// MemoryStore holds all data in memory, for tests and local development.
// A single mutex covers every collection: confirmation touches tickets and
// passengers together, and cascade deletes span three collections, so the
// whole store is one critical section.
type MemoryStore struct {
	mu sync.RWMutex

	stations    map[uint]*models.Station
	lines       map[uint]*models.Line
	connections map[uint]*models.Connection
	passengers  map[uint]*models.Passenger
	tickets     map[uint]*models.Ticket
	otps        map[uint]*models.OTPRecord

	// Counters for ID generation
	stationCounter    uint
	lineCounter       uint
	connectionCounter uint
	passengerCounter  uint
	ticketCounter     uint
	otpCounter        uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stations:    make(map[uint]*models.Station),
		lines:       make(map[uint]*models.Line),
		connections: make(map[uint]*models.Connection),
		passengers:  make(map[uint]*models.Passenger),
		tickets:     make(map[uint]*models.Ticket),
		otps:        make(map[uint]*models.OTPRecord),
	}
}

// Station operations

func (m *MemoryStore) CreateStation(station *models.Station) (*models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stationCounter++
	station.ID = m.stationCounter
	station.CreatedAt = time.Now()
	station.UpdatedAt = station.CreatedAt

	m.stations[station.ID] = station
	return station, nil
}

func (m *MemoryStore) GetStation(id uint) (*models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	station, exists := m.stations[id]
	if !exists {
		return nil, models.ErrUnknownStation
	}
	return station, nil
}

func (m *MemoryStore) GetAllStations() ([]*models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stations := make([]*models.Station, 0, len(m.stations))
	for id := uint(1); id <= m.stationCounter; id++ {
		if s, ok := m.stations[id]; ok {
			stations = append(stations, s)
		}
	}
	return stations, nil
}

func (m *MemoryStore) DeleteStation(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.stations[id]; !exists {
		return models.ErrUnknownStation
	}
	delete(m.stations, id)

	// Cascade to connections and tickets referencing the station.
	for cid, c := range m.connections {
		if c.StartStationID == id || c.DestinationStationID == id {
			delete(m.connections, cid)
		}
	}
	for tid, t := range m.tickets {
		if t.StartStationID == id || t.DestinationStationID == id {
			delete(m.tickets, tid)
		}
	}
	return nil
}

// Line operations

func (m *MemoryStore) CreateLine(line *models.Line) (*models.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lineCounter++
	line.ID = m.lineCounter
	line.CreatedAt = time.Now()
	line.UpdatedAt = line.CreatedAt

	m.lines[line.ID] = line
	return line, nil
}

func (m *MemoryStore) GetLine(id uint) (*models.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	line, exists := m.lines[id]
	if !exists {
		return nil, models.ErrLineNotFound
	}
	return line, nil
}

func (m *MemoryStore) GetAllLines() ([]*models.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines := make([]*models.Line, 0, len(m.lines))
	for id := uint(1); id <= m.lineCounter; id++ {
		if l, ok := m.lines[id]; ok {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

func (m *MemoryStore) SetLineActive(id uint, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	line, exists := m.lines[id]
	if !exists {
		return models.ErrLineNotFound
	}
	line.IsActive = active
	line.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) DeleteLine(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.lines[id]; !exists {
		return models.ErrLineNotFound
	}
	delete(m.lines, id)

	for cid, c := range m.connections {
		if c.LineID == id {
			delete(m.connections, cid)
		}
	}
	return nil
}

// Connection operations

func (m *MemoryStore) CreateConnection(conn *models.Connection) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn.StartStationID == conn.DestinationStationID {
		return nil, models.ErrSameStation
	}
	if _, ok := m.lines[conn.LineID]; !ok {
		return nil, models.ErrLineNotFound
	}
	if _, ok := m.stations[conn.StartStationID]; !ok {
		return nil, models.ErrUnknownStation
	}
	if _, ok := m.stations[conn.DestinationStationID]; !ok {
		return nil, models.ErrUnknownStation
	}
	if conn.Distance < 0 || conn.Cost < 0 {
		return nil, fmt.Errorf("distance and cost must be non-negative")
	}
	for _, existing := range m.connections {
		if existing.LineID == conn.LineID &&
			existing.StartStationID == conn.StartStationID &&
			existing.DestinationStationID == conn.DestinationStationID {
			return nil, models.ErrDuplicateConnection
		}
	}

	m.connectionCounter++
	conn.ID = m.connectionCounter
	conn.CreatedAt = time.Now()
	conn.UpdatedAt = conn.CreatedAt

	m.connections[conn.ID] = conn
	return conn, nil
}

func (m *MemoryStore) GetConnection(id uint) (*models.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, exists := m.connections[id]
	if !exists {
		return nil, models.ErrConnectionNotFound
	}
	return conn, nil
}

func (m *MemoryStore) GetAllConnections() ([]*models.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := make([]*models.Connection, 0, len(m.connections))
	for id := uint(1); id <= m.connectionCounter; id++ {
		if c, ok := m.connections[id]; ok {
			conns = append(conns, c)
		}
	}
	return conns, nil
}

func (m *MemoryStore) DeleteConnection(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.connections[id]; !exists {
		return models.ErrConnectionNotFound
	}
	delete(m.connections, id)
	return nil
}

func (m *MemoryStore) GetNetworkSnapshot() ([]*models.Connection, map[uint]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := make([]*models.Connection, 0, len(m.connections))
	for id := uint(1); id <= m.connectionCounter; id++ {
		if c, ok := m.connections[id]; ok {
			conns = append(conns, c)
		}
	}

	active := make(map[uint]bool, len(m.lines))
	for id, l := range m.lines {
		active[id] = l.IsActive
	}
	return conns, active, nil
}

// Passenger operations

func (m *MemoryStore) CreatePassenger(reg *models.PassengerRegistration) (*models.Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	externalID := reg.ExternalID
	if externalID == "" {
		externalID = uuid.NewString()
	}
	for _, p := range m.passengers {
		if p.ExternalID == externalID {
			return nil, fmt.Errorf("passenger already exists for identity %s", externalID)
		}
	}

	m.passengerCounter++
	passenger := &models.Passenger{
		ExternalID: externalID,
		Name:       reg.Name,
		Phone:      reg.Phone,
		Balance:    0,
	}
	passenger.ID = m.passengerCounter
	passenger.CreatedAt = time.Now()
	passenger.UpdatedAt = passenger.CreatedAt

	m.passengers[passenger.ID] = passenger
	return passenger, nil
}

func (m *MemoryStore) GetPassenger(id uint) (*models.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	passenger, exists := m.passengers[id]
	if !exists {
		return nil, models.ErrPassengerNotFound
	}
	return passenger, nil
}

func (m *MemoryStore) GetPassengerByExternalID(externalID string) (*models.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.passengers {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return nil, models.ErrPassengerNotFound
}

func (m *MemoryStore) AddBalance(passengerID uint, amount float64) (*models.Passenger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	passenger, exists := m.passengers[passengerID]
	if !exists {
		return nil, models.ErrPassengerNotFound
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	passenger.Balance += amount
	passenger.UpdatedAt = time.Now()
	return passenger, nil
}

func (m *MemoryStore) DeletePassenger(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.passengers[id]; !exists {
		return models.ErrPassengerNotFound
	}
	delete(m.passengers, id)

	for tid, t := range m.tickets {
		if t.PassengerID == id {
			delete(m.tickets, tid)
		}
	}
	for oid, o := range m.otps {
		if o.PassengerID == id {
			delete(m.otps, oid)
		}
	}
	return nil
}

// Ticket operations

func (m *MemoryStore) CreateTicket(ticket *models.Ticket) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.passengers[ticket.PassengerID]; !ok {
		return nil, models.ErrPassengerNotFound
	}

	m.ticketCounter++
	ticket.ID = m.ticketCounter
	if ticket.TicketID == "" {
		ticket.TicketID = fmt.Sprintf("TK%05d", m.ticketCounter)
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusPending
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt

	m.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (m *MemoryStore) GetTicketByTicketID(ticketID string) (*models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := m.findTicket(ticketID)
	if t == nil {
		return nil, models.ErrTicketNotFound
	}
	return t, nil
}

func (m *MemoryStore) GetTicketForPassenger(ticketID string, passengerID uint) (*models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := m.findTicket(ticketID)
	if t == nil || t.PassengerID != passengerID {
		return nil, models.ErrTicketNotFound
	}
	return t, nil
}

func (m *MemoryStore) GetTicketsByPassenger(passengerID uint) ([]*models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tickets []*models.Ticket
	for id := uint(1); id <= m.ticketCounter; id++ {
		if t, ok := m.tickets[id]; ok && t.PassengerID == passengerID {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

func (m *MemoryStore) UpdateTicketStatus(ticketID string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findTicket(ticketID)
	if t == nil {
		return models.ErrTicketNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ActivateTicket(ticketID string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findTicket(ticketID)
	if t == nil {
		return nil, models.ErrTicketNotFound
	}
	if t.Status != models.TicketStatusPending {
		return nil, models.ErrTicketNotPending
	}
	passenger, ok := m.passengers[t.PassengerID]
	if !ok {
		return nil, models.ErrPassengerNotFound
	}
	if passenger.Balance < t.Cost {
		return nil, models.ErrInsufficientBalance
	}

	passenger.Balance -= t.Cost
	passenger.UpdatedAt = time.Now()
	t.Status = models.TicketStatusActive
	t.UpdatedAt = passenger.UpdatedAt
	return t, nil
}

func (m *MemoryStore) findTicket(ticketID string) *models.Ticket {
	for _, t := range m.tickets {
		if t.TicketID == ticketID {
			return t
		}
	}
	return nil
}

// OTP operations

func (m *MemoryStore) CreateOTPRecord(rec *models.OTPRecord) (*models.OTPRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.passengers[rec.PassengerID]; !ok {
		return nil, models.ErrPassengerNotFound
	}

	m.otpCounter++
	rec.ID = m.otpCounter
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = rec.CreatedAt

	m.otps[rec.ID] = rec
	return rec, nil
}

func (m *MemoryStore) GetLatestOTP(passengerID uint, code string) (*models.OTPRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.OTPRecord
	for _, rec := range m.otps {
		if rec.PassengerID != passengerID || rec.Code != code {
			continue
		}
		if latest == nil || rec.ID > latest.ID {
			latest = rec
		}
	}
	if latest == nil {
		return nil, models.ErrInvalidOrExpiredOTP
	}
	return latest, nil
}
