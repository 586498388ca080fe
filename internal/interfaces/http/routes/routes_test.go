// internal/interfaces/http/routes/routes_test.go
package routes

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/config"
)

func registeredRoutes(t *testing.T) map[string]bool {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	Setup(router, &config.Config{}, logrus.New(), &Services{})

	routes := map[string]bool{}
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	return routes
}

func TestOrderLifecycleRoutes(t *testing.T) {
	routes := registeredRoutes(t)

	assert.True(t, routes["POST /api/v1/orders"])
	assert.True(t, routes["GET /api/v1/orders/:id"])
	assert.True(t, routes["PUT /api/v1/orders/:id/cancel"])
	assert.True(t, routes["PUT /api/v1/orders/:id/status"])
}

func TestCouponRoutes(t *testing.T) {
	routes := registeredRoutes(t)

	assert.True(t, routes["POST /api/v1/coupons/validate"])
	assert.True(t, routes["POST /api/v1/coupons/apply"])
}
