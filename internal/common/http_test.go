package common_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fenanpay/commerce-bridge/internal/common"
)

func TestClientIP(t *testing.T) {
	t.Run("remote addr wins once RealIP has run", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		req.Header.Set("X-Forwarded-For", "198.51.100.7")
		require.Equal(t, "203.0.113.9", common.ClientIP(req))
	})

	t.Run("bare remote addr without port", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "203.0.113.9"
		require.Equal(t, "203.0.113.9", common.ClientIP(req))
	})

	t.Run("forwarded fallback takes the first hop", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = ""
		req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
		require.Equal(t, "198.51.100.7", common.ClientIP(req))
	})

	t.Run("nothing known", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = ""
		require.Equal(t, "", common.ClientIP(req))
		require.Equal(t, "", common.ClientIP(nil))
	})
}
