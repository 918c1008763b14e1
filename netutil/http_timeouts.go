package netutil

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/arangotools/arangorest/ptrutil"
)

// HTTPTimeouts encapsulates the timeouts for a HTTP client into an object which can be parsed as an environment
// variable e.g. '{"dialer":"5s","transport_response_header":"10m"}'.
type HTTPTimeouts struct {
	Dialer                  *time.Duration
	KeepAlive               *time.Duration
	TransportIdleConn       *time.Duration
	TransportContinue       *time.Duration
	TransportResponseHeader *time.Duration
	TransportTLSHandshake   *time.Duration
}

// timeoutField binds the JSON key of a timeout to its field.
type timeoutField struct {
	key   string
	field **time.Duration
}

// fields returns the timeouts in declaration order.
func (ct *HTTPTimeouts) fields() []timeoutField {
	return []timeoutField{
		{key: "dialer", field: &ct.Dialer},
		{key: "keep_alive", field: &ct.KeepAlive},
		{key: "transport_idle_conn", field: &ct.TransportIdleConn},
		{key: "transport_continue", field: &ct.TransportContinue},
		{key: "transport_response_header", field: &ct.TransportResponseHeader},
		{key: "transport_tls_handshake", field: &ct.TransportTLSHandshake},
	}
}

// Merge returns a copy of the timeouts where each unset timeout is taken from the given defaults.
func (ct HTTPTimeouts) Merge(defaults HTTPTimeouts) HTTPTimeouts {
	fallback := defaults.fields()

	for i, timeout := range ct.fields() {
		ptrutil.SetPtrIfNil(timeout.field, *fallback[i].field)
	}

	return ct
}

func (ct *HTTPTimeouts) UnmarshalJSON(data []byte) error {
	var decoded map[string]string

	err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	fields := make(map[string]**time.Duration)
	for _, timeout := range ct.fields() {
		fields[timeout.key] = timeout.field
	}

	for key, value := range decoded {
		field, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown timeout '%s'", key)
		}

		if value == "" {
			continue
		}

		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("failed to parse timeout '%s': %w", key, err)
		}

		*field = &parsed
	}

	return nil
}
