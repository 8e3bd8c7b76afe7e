package api_test

import (
	"net/http/httptest"
	"testing"

	"github.com/UserUmbasa/explore-with-me/internal/api"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// TestClientIP 测试代理头的优先级
func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote address", nil, "192.0.2.1"},
		{"forwarded first entry", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"unknown forwarded", map[string]string{"X-Forwarded-For": "Unknown", "Proxy-Client-IP": "198.51.100.1"}, "198.51.100.1"},
		{"weblogic header", map[string]string{"Proxy-Client-IP": "", "WL-Proxy-Client-IP": "198.51.100.9"}, "198.51.100.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/events", nil)
			c.Request.RemoteAddr = "192.0.2.1:54321"
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, api.ClientIP(c))
		})
	}
}
