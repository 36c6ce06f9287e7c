package scrape

import "dbxbridge/lib/telemetry"

var tracer = telemetry.Tracer("dbxbridge/lib/scrapers/dropbox/scrape")
