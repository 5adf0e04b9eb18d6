package prometheus

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCampaignOperation(t *testing.T) {
	success := CampaignOperationsCounter.WithLabelValues("update", ResultSuccess)
	failure := CampaignOperationsCounter.WithLabelValues("update", ResultFailure)
	beforeSuccess, beforeFailure := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	ObserveCampaignOperation("update", nil)
	ObserveCampaignOperation("update", nil)
	ObserveCampaignOperation("update", errors.New("boom"))

	if got := testutil.ToFloat64(success) - beforeSuccess; got != 2 {
		t.Errorf("success delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(failure) - beforeFailure; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
}
