package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"livemarket-sync/internal/models"
	"livemarket-sync/internal/simulator"
	"livemarket-sync/internal/subscription"

	"github.com/gin-gonic/gin"
)

// SetupTestRouter initializes the router with an empty in-memory store for
// integration testing.
func SetupTestRouter() *gin.Engine {
	router, _ := SetupTestRouterWithLots()
	return router
}

// SetupTestRouterWithLots initializes the router and seeds the global session
// with lots. The bus is returned so tests can assert on published events.
func SetupTestRouterWithLots(lots ...models.Lot) (*gin.Engine, *subscription.MemoryBus) {
	gin.SetMode(gin.TestMode)
	store := simulator.NewMemoryStore()

	for _, lot := range lots {
		store.AddLot(lot)
	}

	bus := subscription.NewMemoryBus()
	svc := simulator.NewAuctionService(store, bus, "")
	handler := simulator.NewHandler()
	handler.Register("", svc)
	return simulator.SetupRouter(handler), bus
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}
