package rayid_test

import (
	"net/http/httptest"
	"testing"

	"source-resolver/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(rayid.New())
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ := c.Locals(rayid.LocalsKey).(string)
		return c.SendString(rid)
	})
	return app
}

func TestRayID(t *testing.T) {
	t.Run("Generated", func(t *testing.T) {
		resp, err := newApp().Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)

		rid := resp.Header.Get(rayid.Header)
		_, err = uuid.Parse(rid)
		assert.NoError(t, err)
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(rayid.Header, "upstream-1")
		resp, err := newApp().Test(req)
		require.NoError(t, err)
		assert.Equal(t, "upstream-1", resp.Header.Get(rayid.Header))
	})
}
