package metricsvc

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/hostel/core/occupancy"
)

func TestOccupancyRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewOccupancyRecorder(reg)

	rec.RecordTransfer(occupancy.OutcomeAssigned)
	rec.RecordTransfer(occupancy.OutcomeAssigned)
	rec.RecordTransfer(occupancy.OutcomeOverCapacity)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.transfers.WithLabelValues("assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.transfers.WithLabelValues("over_capacity")))

	rec.RecordReconciliation(occupancy.Report{DryRun: true, Changed: []occupancy.Change{{RoomNumber: "E101"}}})
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.roomsCorrected))

	rec.RecordReconciliation(occupancy.Report{
		Changed:      []occupancy.Change{{RoomNumber: "E101"}, {RoomNumber: "E102"}},
		OverAssigned: []occupancy.Assignment{{RoomNumber: "E101", Students: 3}},
	})
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.roomsCorrected))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.overAssigned))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.orphaned))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.reconciliations.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.reconciliations.WithLabelValues("false")))
}
