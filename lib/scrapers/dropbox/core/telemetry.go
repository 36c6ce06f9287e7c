package core

import (
	"dbxbridge/lib/telemetry"
)

var tracer = telemetry.Tracer("dbxbridge/lib/scrapers/dropbox/core")
