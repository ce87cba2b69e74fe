package stub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionValidate(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr string
	}{
		{"canned response only", Respond(200, nil, "ok"), ""},
		{"proxy only", Forward("http://upstream:8080", nil, 0), ""},
		{"neither variant", Action{}, "action"},
		{
			"both variants",
			Action{
				Response: Respond(200, nil, nil).Response,
				Proxy:    Forward("http://x", nil, 0).Proxy,
			},
			"action",
		},
		{"proxy without url", Action{Proxy: &ProxyTarget{TimeoutSeconds: 5}}, "action.proxy.url"},
		{"negative timeout", Action{Proxy: &ProxyTarget{URL: "http://x", TimeoutSeconds: -1}}, "action.proxy.timeout"},
		{"status code too low", Action{Response: &CannedResponse{StatusCode: 42}}, "action.response.statusCode"},
		{"status code too high", Action{Response: &CannedResponse{StatusCode: 600}}, "action.response.statusCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Field)
		})
	}
}

func TestForwardAppliesDefaultTimeout(t *testing.T) {
	action := Forward("http://upstream", nil, 0)
	assert.Equal(t, DefaultProxyTimeoutSeconds, action.Proxy.TimeoutSeconds)

	action = Forward("http://upstream", nil, 30)
	assert.Equal(t, 30, action.Proxy.TimeoutSeconds)
}
