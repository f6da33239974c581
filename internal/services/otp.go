package services

import (
	"fmt"
	"time"

	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/storage"
	"github.com/metropass/metropass-backend/internal/utils"
)

// OTPService is the confirmation gate: it issues short-lived codes and
// validates them before a pending ticket may activate.
//
// Verification does not consume a record, so a correct code can be verified
// again inside its window. The confirm step's status check is what prevents
// a replay from producing a second debit.
type OTPService struct {
	store    storage.Store
	notifier Notifier
	window   time.Duration

	now func() time.Time // stubbed in tests
}

func NewOTPService(store storage.Store, notifier Notifier, window time.Duration) *OTPService {
	if window <= 0 {
		window = models.DefaultOTPWindow
	}
	return &OTPService{
		store:    store,
		notifier: notifier,
		window:   window,
		now:      time.Now,
	}
}

// Issue generates a fresh code for the passenger, persists the record and
// dispatches it through the notifier. A dispatch failure is returned to the
// caller but the record stands: the code is already valid, and the caller
// may simply reissue.
func (s *OTPService) Issue(passengerID uint) (string, error) {
	passenger, err := s.store.GetPassenger(passengerID)
	if err != nil {
		return "", err
	}

	code, err := utils.GenerateOTP(models.OTPLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	rec := &models.OTPRecord{
		PassengerID: passenger.ID,
		Code:        code,
	}
	if _, err := s.store.CreateOTPRecord(rec); err != nil {
		return "", err
	}

	if err := s.notifier.NotifyOTP(passenger, code); err != nil {
		return code, fmt.Errorf("OTP issued but notification failed: %w", err)
	}
	return code, nil
}

// Verify checks the submitted code against the passenger's most recently
// issued matching record. Non-matching and out-of-window codes both come
// back as ErrInvalidOrExpiredOTP.
func (s *OTPService) Verify(passengerID uint, code string) error {
	if len(code) != models.OTPLength {
		return models.ErrInvalidOrExpiredOTP
	}

	rec, err := s.store.GetLatestOTP(passengerID, code)
	if err != nil {
		return err
	}
	if !rec.IsValid(s.window, s.now()) {
		return models.ErrInvalidOrExpiredOTP
	}
	return nil
}
