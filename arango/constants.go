package arango

import "time"

const (
	// DefaultDatabase is the database used when neither the options nor the connection string name one.
	DefaultDatabase = "_system"

	// DefaultRequestTimeout is the default timeout for a single logical request, across all of its failover attempts.
	DefaultRequestTimeout = 2 * time.Minute

	// DefaultJobPollInterval is the default interval at which 'AsyncJob.Wait' polls the job status.
	DefaultJobPollInterval = 100 * time.Millisecond
)

// Span and attribute names used when tracing requests.
const (
	tracerName = "github.com/arangotools/arangorest/arango"

	SpanRequest   = "arango.request"
	EventFailover = "arango.failover"

	AttrMethod    = "http.request.method"
	AttrEndpoint  = "arango.endpoint"
	AttrDatabase  = "arango.database"
	AttrRequestID = "arango.request_id"
	AttrHost      = "arango.host"
	AttrAttempt   = "arango.attempt"
	AttrStatus    = "http.response.status_code"
	AttrErrorNum  = "arango.error_num"
)
