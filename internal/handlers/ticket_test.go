package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/routes"
	"github.com/metropass/metropass-backend/internal/services"
	"github.com/metropass/metropass-backend/internal/storage"
)

type captureNotifier struct {
	code string
}

func (n *captureNotifier) NotifyOTP(p *models.Passenger, code string) error {
	n.code = code
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *captureNotifier) {
	t.Helper()
	store := storage.NewMemoryStore()
	notifier := &captureNotifier{}
	otp := services.NewOTPService(store, notifier, 10*time.Minute)
	tickets := services.NewTicketService(store, otp)

	app := fiber.New()
	routes.SetupRoutes(app, store, tickets)
	return app, notifier
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d", method, path, resp.StatusCode, wantStatus)
	}

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decoding response: %v", method, path, err)
	}
	return out
}

func TestPurchaseFlow(t *testing.T) {
	app, notifier := newTestApp(t)

	// Operator builds the network: A-B (5km, 10) and B-C (3km, 8) on L1.
	doJSON(t, app, http.MethodPost, "/api/stations/", fiber.Map{"name": "A"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/stations/", fiber.Map{"name": "B"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/stations/", fiber.Map{"name": "C"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/lines/", fiber.Map{"name": "L1"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/connections/", fiber.Map{
		"line_id": 1, "start_station_id": 1, "destination_station_id": 2,
		"distance": 5, "travel_time": 7, "cost": 10,
	}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/connections/", fiber.Map{
		"line_id": 1, "start_station_id": 2, "destination_station_id": 3,
		"distance": 3, "travel_time": 4, "cost": 8,
	}, http.StatusCreated)

	// Duplicate triple is rejected.
	doJSON(t, app, http.MethodPost, "/api/connections/", fiber.Map{
		"line_id": 1, "start_station_id": 1, "destination_station_id": 2,
		"distance": 5, "cost": 10,
	}, http.StatusConflict)

	// Passenger registers and tops up.
	doJSON(t, app, http.MethodPost, "/api/passengers/", fiber.Map{"name": "Asha"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/passengers/1/balance", fiber.Map{"amount": 100}, http.StatusOK)

	// Pricing: A to C costs 18 over 8km.
	price := doJSON(t, app, http.MethodPost, "/api/routes/price", fiber.Map{
		"start_station_id": 1, "destination_station_id": 3,
	}, http.StatusOK)
	if price["cost"].(float64) != 18 {
		t.Errorf("expected cost 18, got %v", price["cost"])
	}
	if price["distance"].(float64) != 8 {
		t.Errorf("expected distance 8, got %v", price["distance"])
	}

	// Same station is rejected before pricing.
	doJSON(t, app, http.MethodPost, "/api/tickets/", fiber.Map{
		"passenger_id": 1, "start_station_id": 1, "destination_station_id": 1,
	}, http.StatusBadRequest)

	// Purchase: pending ticket, OTP dispatched.
	created := doJSON(t, app, http.MethodPost, "/api/tickets/", fiber.Map{
		"passenger_id": 1, "start_station_id": 1, "destination_station_id": 3,
	}, http.StatusCreated)
	ticket := created["ticket"].(map[string]interface{})
	ticketID := ticket["ticket_id"].(string)
	if ticket["status"] != models.TicketStatusPending {
		t.Errorf("expected pending ticket, got %v", ticket["status"])
	}
	if len(notifier.code) != models.OTPLength {
		t.Fatalf("expected a dispatched code, got %q", notifier.code)
	}

	// Wrong code leaves the ticket pending.
	wrong := "000000"
	if wrong == notifier.code {
		wrong = "000001"
	}
	doJSON(t, app, http.MethodPost, "/api/tickets/"+ticketID+"/confirm",
		fiber.Map{"code": wrong}, http.StatusBadRequest)

	// Correct code activates and debits.
	confirmed := doJSON(t, app, http.MethodPost, "/api/tickets/"+ticketID+"/confirm",
		fiber.Map{"code": notifier.code}, http.StatusOK)
	if confirmed["ticket"].(map[string]interface{})["status"] != models.TicketStatusActive {
		t.Errorf("expected active ticket, got %v", confirmed["ticket"])
	}
	passenger := doJSON(t, app, http.MethodGet, "/api/passengers/1", nil, http.StatusOK)
	if passenger["balance"].(float64) != 82 {
		t.Errorf("expected balance 82, got %v", passenger["balance"])
	}

	// Replaying the code conflicts instead of debiting again.
	doJSON(t, app, http.MethodPost, "/api/tickets/"+ticketID+"/confirm",
		fiber.Map{"code": notifier.code}, http.StatusConflict)

	// Scan in, then out.
	scan := doJSON(t, app, http.MethodPost, "/api/scanner/incoming",
		fiber.Map{"ticket_id": ticketID, "passenger_id": 1}, http.StatusOK)
	if scan["message"] != services.MsgScannedIn {
		t.Errorf("expected %q, got %v", services.MsgScannedIn, scan["message"])
	}
	scan = doJSON(t, app, http.MethodPost, "/api/scanner/outgoing",
		fiber.Map{"ticket_id": ticketID, "passenger_id": 1}, http.StatusOK)
	if scan["message"] != services.MsgJourneyCompleted {
		t.Errorf("expected %q, got %v", services.MsgJourneyCompleted, scan["message"])
	}

	// Disabling the only line makes the same query unroutable.
	doJSON(t, app, http.MethodPatch, "/api/lines/1/active",
		fiber.Map{"is_active": false}, http.StatusOK)
	doJSON(t, app, http.MethodPost, "/api/routes/price", fiber.Map{
		"start_station_id": 1, "destination_station_id": 3,
	}, http.StatusNotFound)
}

func TestOfflinePurchase(t *testing.T) {
	app, _ := newTestApp(t)

	doJSON(t, app, http.MethodPost, "/api/stations/", fiber.Map{"name": "A"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/stations/", fiber.Map{"name": "B"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/lines/", fiber.Map{"name": "L1"}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/connections/", fiber.Map{
		"line_id": 1, "start_station_id": 1, "destination_station_id": 2,
		"distance": 5, "cost": 10,
	}, http.StatusCreated)
	doJSON(t, app, http.MethodPost, "/api/passengers/", fiber.Map{"name": "Ravi"}, http.StatusCreated)

	issued := doJSON(t, app, http.MethodPost, "/api/scanner/offline", fiber.Map{
		"passenger_id": 1, "start_station_id": 1, "destination_station_id": 2,
	}, http.StatusCreated)
	ticket := issued["ticket"].(map[string]interface{})
	if ticket["status"] != models.TicketStatusInUse {
		t.Errorf("expected in-use ticket, got %v", ticket["status"])
	}
	if ticket["cost"].(float64) != 10 {
		t.Errorf("expected cost 10, got %v", ticket["cost"])
	}

	// Outgoing scan on a never-boarded online ticket is rejected; the
	// offline ticket goes straight through.
	scan := doJSON(t, app, http.MethodPost, "/api/scanner/outgoing",
		fiber.Map{"ticket_id": ticket["ticket_id"], "passenger_id": 1}, http.StatusOK)
	if scan["message"] != services.MsgJourneyCompleted {
		t.Errorf("expected %q, got %v", services.MsgJourneyCompleted, scan["message"])
	}
}
