package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Operation results used as the "result" label
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// CampaignOperationsCounter counts campaign writes by operation (create, update, delete)
var CampaignOperationsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coupon_campaign_operations_total",
		Help: "Total number of campaign create, update and delete operations",
	},
	[]string{"operation", "result"},
)

var IndividualCouponsProvisionedCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "coupon_individual_provisioned_total",
		Help: "Total number of individual coupons provisioned",
	},
)

var AssignmentsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coupon_individual_assignments_total",
		Help: "Total number of individual coupon assignment attempts",
	},
	[]string{"result"},
)

var AssignmentConflictsCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "coupon_individual_assignment_conflicts_total",
		Help: "Total number of assignments rejected because the coupon or identifier was taken",
	},
)

var CodeCollisionsCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "coupon_code_collisions_total",
		Help: "Total number of generated coupon codes that were already in use",
	},
)

func init() {
	prometheus.MustRegister(CampaignOperationsCounter)
	prometheus.MustRegister(IndividualCouponsProvisionedCounter)
	prometheus.MustRegister(AssignmentsCounter)
	prometheus.MustRegister(AssignmentConflictsCounter)
	prometheus.MustRegister(CodeCollisionsCounter)
}

// ObserveCampaignOperation records the outcome of a campaign write
func ObserveCampaignOperation(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	CampaignOperationsCounter.WithLabelValues(operation, result).Inc()
}
