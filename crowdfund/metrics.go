package crowdfund

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kinecosystem/agora-crowdfund/metrics"
)

const (
	resultOK     = "ok"
	resultFailed = "failed"
)

var (
	operationCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crowdfund",
		Name:      "operations",
		Help:      "Number of crowdfund operations submitted, by result",
	}, []string{"operation", "result"})

	confirmationTimeVec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crowdfund",
		Name:      "confirmation_seconds",
		Help:      "Time from sending a transaction until its confirmation",
		Buckets:   metrics.MinuteDistributionBuckets,
	}, []string{"result"})
)

func init() {
	operationCounterVec = metrics.RegisterCounterVec(operationCounterVec)
	confirmationTimeVec = metrics.RegisterHistogramVec(confirmationTimeVec)
}

func recordOperation(operation string, err error) {
	operationCounterVec.WithLabelValues(operation, result(err)).Inc()
}

func recordConfirmation(start time.Time, err error) {
	confirmationTimeVec.WithLabelValues(result(err)).Observe(time.Since(start).Seconds())
}

func result(err error) string {
	if err != nil {
		return resultFailed
	}
	return resultOK
}
