package itinerary_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/analytics-reports/internal/adapters/itinerary"
	redis_a "github.com/ammerola/analytics-reports/internal/adapters/redis_adapter"
	"github.com/ammerola/analytics-reports/test/helpers"
)

func TestStaticResolver(t *testing.T) {
	r := itinerary.StaticResolver{"itineraries": "http://itineraries:3000/"}

	base, err := r.Resolve(context.Background(), "itineraries")
	require.NoError(t, err)
	assert.Equal(t, "http://itineraries:3000", base)

	_, err = r.Resolve(context.Background(), "publications")
	assert.Error(t, err)
}

func TestGatewayResolver(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantURL string
		wantErr bool
	}{
		{name: "flat_answer", status: http.StatusOK, body: `{"url":"http://itin:1/"}`, wantURL: "http://itin:1"},
		{name: "enveloped_answer", status: http.StatusOK, body: `{"data":{"url":"http://itin:2"}}`, wantURL: "http://itin:2"},
		{name: "missing_url", status: http.StatusOK, body: `{}`, wantErr: true},
		{name: "gateway_error", status: http.StatusNotFound, body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, "/api/v1/services/itineraries", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer gateway.Close()

			testRedis := helpers.SetupTestRedis(t)
			cache := redis_a.NewCache(testRedis.Client, time.Minute, helpers.TestLogger())
			resolver := itinerary.NewGatewayResolver(gateway.URL, cache, time.Minute, helpers.TestLogger())

			base, err := resolver.Resolve(context.Background(), "itineraries")
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, testRedis.Server.Exists("svc:itineraries"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, base)

			again, err := resolver.Resolve(context.Background(), "itineraries")
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, again)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}
