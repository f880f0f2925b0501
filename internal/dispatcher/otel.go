package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/ets2dash/tdashboard/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
