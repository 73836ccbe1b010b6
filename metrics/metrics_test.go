package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveGenerated(t *testing.T) {
	before := testutil.ToFloat64(RangesGenerated.WithLabelValues("Quarters"))

	ObserveGenerated("Quarters", 4)
	ObserveGenerated("Quarters", 0)

	assert.Equal(t, before+4, testutil.ToFloat64(RangesGenerated.WithLabelValues("Quarters")))
}

func TestObserveSweep(t *testing.T) {
	okBefore := testutil.ToFloat64(AutogenerationRuns.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(AutogenerationRuns.WithLabelValues("error"))
	failBefore := testutil.ToFloat64(AutogenerationTypeFailures.WithLabelValues("Broken"))

	ObserveSweep(time.Second, nil, []string{"Broken"})
	ObserveSweep(time.Second, errors.New("disk full"), nil)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(AutogenerationRuns.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(AutogenerationRuns.WithLabelValues("error")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(AutogenerationTypeFailures.WithLabelValues("Broken")))
}
