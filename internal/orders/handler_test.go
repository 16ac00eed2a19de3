package orders

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caterer-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func newTestApp(f *fixture) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	api := app.Group("/api", withActor(f.actor))
	api.Get("/orders", ListOrdersHandler(f.svc))
	api.Post("/orders", CreateOrderHandler(f.svc))
	api.Get("/orders/:id", GetOrderHandler(f.svc))
	api.Put("/orders/:id", UpdateOrderHandler(f.svc))
	api.Delete("/orders/:id", DeleteOrderHandler(f.svc))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestOrderEndpoints(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	body := `{"clientName":"Alice","pickupDate":"2024-06-01","items":[{"productId":"` + f.quiche.ID.String() + `","quantity":2},{"productId":"` + f.tarte.ID.String() + `","quantity":1}]}`
	resp, raw := call(t, app, http.MethodPost, "/api/orders", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: %d %s", resp.StatusCode, raw)
	}
	var created OrderResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Total != "27.00" || created.PickupDay != "2024-06-01" || len(created.Items) != 2 {
		t.Fatalf("unexpected order %s", raw)
	}
	id := created.ID.String()

	resp, raw = call(t, app, http.MethodPut, "/api/orders/"+id, `{"items":[{"productId":"`+f.tarte.ID.String()+`","quantity":5}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", resp.StatusCode, raw)
	}

	resp, raw = call(t, app, http.MethodGet, "/api/orders/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: %d %s", resp.StatusCode, raw)
	}
	var got OrderResponse
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 5 || got.Total != "90.00" {
		t.Fatalf("unexpected order after replacement %s", raw)
	}

	resp, raw = call(t, app, http.MethodGet, "/api/orders?date=2024-06-01", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d %s", resp.StatusCode, raw)
	}
	var list []OrderResponse
	if err := json.Unmarshal(raw, &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one order on 2024-06-01: %s", raw)
	}

	resp, _ = call(t, app, http.MethodDelete, "/api/orders/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	resp, _ = call(t, app, http.MethodGet, "/api/orders/"+id, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateOrderRejections(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)
	pid := f.quiche.ID.String()

	cases := []struct {
		name, body string
	}{
		{"empty items", `{"clientName":"Alice","pickupDate":"2024-06-01","items":[]}`},
		{"zero quantity", `{"clientName":"Alice","pickupDate":"2024-06-01","items":[{"productId":"` + pid + `","quantity":0}]}`},
		{"missing productId", `{"clientName":"Alice","pickupDate":"2024-06-01","items":[{"quantity":1}]}`},
		{"missing pickupDate", `{"clientName":"Alice","items":[{"productId":"` + pid + `","quantity":1}]}`},
		{"bad pickupDate", `{"clientName":"Alice","pickupDate":"demain","items":[{"productId":"` + pid + `","quantity":1}]}`},
		{"missing clientName", `{"pickupDate":"2024-06-01","items":[{"productId":"` + pid + `","quantity":1}]}`},
		{"unknown product", `{"clientName":"Alice","pickupDate":"2024-06-01","items":[{"productId":"nope","quantity":1}]}`},
		{"fractional quantity", `{"clientName":"Alice","pickupDate":"2024-06-01","items":[{"productId":"` + pid + `","quantity":1.5}]}`},
		{"malformed body", `{"clientName":"Alice",`},
	}
	for _, tc := range cases {
		resp, raw := call(t, app, http.MethodPost, "/api/orders", tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d %s", tc.name, resp.StatusCode, raw)
		}
	}

	resp, _ := call(t, app, http.MethodGet, "/api/orders?period=someday", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", resp.StatusCode)
	}
	resp, _ = call(t, app, http.MethodPut, "/api/orders/"+uuid.NewString(), `{"items":`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed update body, got %d", resp.StatusCode)
	}
	resp, _ = call(t, app, http.MethodPut, "/api/orders/not-an-id", `{"clientName":"x"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", resp.StatusCode)
	}
}
