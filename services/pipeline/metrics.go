package pipeline

import "go.opentelemetry.io/otel"

var meter = otel.Meter("services/pipeline")

var pagesFetched, _ = meter.Int64Counter("pages_fetched")
var pageFetchFailures, _ = meter.Int64Counter("page_fetch_failures")
var recordsMatched, _ = meter.Int64Counter("records_matched")
var uploadsConfirmed, _ = meter.Int64Counter("uploads_confirmed")
var uploadsAbandoned, _ = meter.Int64Counter("uploads_abandoned")
