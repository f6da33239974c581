package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/metropass/metropass-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given database handle.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Station operations

func (s *DatabaseStore) CreateStation(station *models.Station) (*models.Station, error) {
	if err := s.db.Create(station).Error; err != nil {
		return nil, err
	}
	return station, nil
}

func (s *DatabaseStore) GetStation(id uint) (*models.Station, error) {
	var station models.Station
	if err := s.db.First(&station, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUnknownStation
		}
		return nil, err
	}
	return &station, nil
}

func (s *DatabaseStore) GetAllStations() ([]*models.Station, error) {
	var stations []*models.Station
	if err := s.db.Order("id").Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

func (s *DatabaseStore) DeleteStation(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Station{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrUnknownStation
		}
		if err := tx.Where("start_station_id = ? OR destination_station_id = ?", id, id).
			Delete(&models.Connection{}).Error; err != nil {
			return err
		}
		return tx.Where("start_station_id = ? OR destination_station_id = ?", id, id).
			Delete(&models.Ticket{}).Error
	})
}

// Line operations

func (s *DatabaseStore) CreateLine(line *models.Line) (*models.Line, error) {
	if err := s.db.Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (s *DatabaseStore) GetLine(id uint) (*models.Line, error) {
	var line models.Line
	if err := s.db.First(&line, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrLineNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (s *DatabaseStore) GetAllLines() ([]*models.Line, error) {
	var lines []*models.Line
	if err := s.db.Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *DatabaseStore) SetLineActive(id uint, active bool) error {
	res := s.db.Model(&models.Line{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrLineNotFound
	}
	return nil
}

func (s *DatabaseStore) DeleteLine(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Line{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrLineNotFound
		}
		return tx.Where("line_id = ?", id).Delete(&models.Connection{}).Error
	})
}

// Connection operations

func (s *DatabaseStore) CreateConnection(conn *models.Connection) (*models.Connection, error) {
	if conn.StartStationID == conn.DestinationStationID {
		return nil, models.ErrSameStation
	}
	if conn.Distance < 0 || conn.Cost < 0 {
		return nil, fmt.Errorf("distance and cost must be non-negative")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Line{}).Where("id = ?", conn.LineID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.ErrLineNotFound
		}
		if err := tx.Model(&models.Station{}).
			Where("id IN ?", []uint{conn.StartStationID, conn.DestinationStationID}).
			Count(&count).Error; err != nil {
			return err
		}
		if count != 2 {
			return models.ErrUnknownStation
		}
		if err := tx.Model(&models.Connection{}).
			Where("line_id = ? AND start_station_id = ? AND destination_station_id = ?",
				conn.LineID, conn.StartStationID, conn.DestinationStationID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.ErrDuplicateConnection
		}
		return tx.Create(conn).Error
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *DatabaseStore) GetConnection(id uint) (*models.Connection, error) {
	var conn models.Connection
	if err := s.db.First(&conn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (s *DatabaseStore) GetAllConnections() ([]*models.Connection, error) {
	var conns []*models.Connection
	if err := s.db.Order("id").Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (s *DatabaseStore) DeleteConnection(id uint) error {
	res := s.db.Delete(&models.Connection{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrConnectionNotFound
	}
	return nil
}

func (s *DatabaseStore) GetNetworkSnapshot() ([]*models.Connection, map[uint]bool, error) {
	var conns []*models.Connection
	var lines []*models.Line

	// One transaction so the connection list and line flags come from the
	// same snapshot.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id").Find(&conns).Error; err != nil {
			return err
		}
		return tx.Find(&lines).Error
	})
	if err != nil {
		return nil, nil, err
	}

	active := make(map[uint]bool, len(lines))
	for _, l := range lines {
		active[l.ID] = l.IsActive
	}
	return conns, active, nil
}

// Passenger operations

func (s *DatabaseStore) CreatePassenger(reg *models.PassengerRegistration) (*models.Passenger, error) {
	passenger := &models.Passenger{
		ExternalID: reg.ExternalID,
		Name:       reg.Name,
		Phone:      reg.Phone,
	}
	if err := s.db.Create(passenger).Error; err != nil {
		return nil, err
	}
	return passenger, nil
}

func (s *DatabaseStore) GetPassenger(id uint) (*models.Passenger, error) {
	var passenger models.Passenger
	if err := s.db.First(&passenger, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPassengerNotFound
		}
		return nil, err
	}
	return &passenger, nil
}

func (s *DatabaseStore) GetPassengerByExternalID(externalID string) (*models.Passenger, error) {
	var passenger models.Passenger
	if err := s.db.Where("external_id = ?", externalID).First(&passenger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPassengerNotFound
		}
		return nil, err
	}
	return &passenger, nil
}

func (s *DatabaseStore) AddBalance(passengerID uint, amount float64) (*models.Passenger, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	var passenger models.Passenger
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&passenger, passengerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPassengerNotFound
			}
			return err
		}
		passenger.Balance += amount
		return tx.Save(&passenger).Error
	})
	if err != nil {
		return nil, err
	}
	return &passenger, nil
}

func (s *DatabaseStore) DeletePassenger(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Passenger{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrPassengerNotFound
		}
		if err := tx.Where("passenger_id = ?", id).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Where("passenger_id = ?", id).Delete(&models.OTPRecord{}).Error
	})
}

// Ticket operations

func (s *DatabaseStore) CreateTicket(ticket *models.Ticket) (*models.Ticket, error) {
	if err := s.db.Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *DatabaseStore) GetTicketByTicketID(ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.Where("ticket_id = ?", ticketID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *DatabaseStore) GetTicketForPassenger(ticketID string, passengerID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Where("ticket_id = ? AND passenger_id = ?", ticketID, passengerID).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *DatabaseStore) GetTicketsByPassenger(passengerID uint) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	if err := s.db.Where("passenger_id = ?", passengerID).Order("id").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *DatabaseStore) UpdateTicketStatus(ticketID string, status string) error {
	res := s.db.Model(&models.Ticket{}).Where("ticket_id = ?", ticketID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrTicketNotFound
	}
	return nil
}

// ActivateTicket runs the debit and the status flip inside one transaction
// with the ticket and passenger rows locked, so two concurrent confirmations
// of the same ticket serialize and only the first debits.
func (s *DatabaseStore) ActivateTicket(ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ticket_id = ?", ticketID).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrTicketNotFound
			}
			return err
		}
		if ticket.Status != models.TicketStatusPending {
			return models.ErrTicketNotPending
		}

		var passenger models.Passenger
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&passenger, ticket.PassengerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPassengerNotFound
			}
			return err
		}
		if passenger.Balance < ticket.Cost {
			return models.ErrInsufficientBalance
		}

		passenger.Balance -= ticket.Cost
		if err := tx.Save(&passenger).Error; err != nil {
			return err
		}
		ticket.Status = models.TicketStatusActive
		return tx.Save(&ticket).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// OTP operations

func (s *DatabaseStore) CreateOTPRecord(rec *models.OTPRecord) (*models.OTPRecord, error) {
	if err := s.db.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *DatabaseStore) GetLatestOTP(passengerID uint, code string) (*models.OTPRecord, error) {
	var rec models.OTPRecord
	err := s.db.Where("passenger_id = ? AND code = ?", passengerID, code).
		Order("id DESC").First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInvalidOrExpiredOTP
		}
		return nil, err
	}
	return &rec, nil
}
