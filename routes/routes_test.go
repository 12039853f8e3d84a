package routes

import (
	"testing"

	"vasati/ratelim"

	"github.com/julienschmidt/httprouter"
)

// The worker lookup resolves by userid alone, so the registered path must
// carry every param the handler reads.
func TestWorkerRouteSuppliesHandlerParams(t *testing.T) {
	router := httprouter.New()
	AddStaffRoutes(router, ratelim.NewRateLimiter())

	h, ps, _ := router.Lookup("GET", "/api/services/society/s100001/worker/123456")
	if h == nil {
		t.Fatal("worker route not registered")
	}
	if got := ps.ByName("societyId"); got != "s100001" {
		t.Errorf("societyId = %q, want s100001", got)
	}
	if got := ps.ByName("userId"); got != "123456" {
		t.Errorf("userId = %q, want 123456", got)
	}
}
