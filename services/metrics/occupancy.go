package metricsvc

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trezcool/hostel/core/occupancy"
)

const namespace = "hostel"

// OccupancyRecorder exports occupancy transfers and reconciliations as Prometheus metrics.
type OccupancyRecorder struct {
	transfers       *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	roomsCorrected  prometheus.Counter
	overAssigned    prometheus.Gauge
	orphaned        prometheus.Gauge
}

var _ occupancy.Recorder = (*OccupancyRecorder)(nil)

func NewOccupancyRecorder(reg prometheus.Registerer) *OccupancyRecorder {
	f := promauto.With(reg)
	return &OccupancyRecorder{
		transfers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "occupancy",
			Name:      "transfers_total",
			Help:      "Student detail saves by effect on room counters.",
		}, []string{"outcome"}),
		reconciliations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "occupancy",
			Name:      "reconciliations_total",
			Help:      "Reconciliation runs.",
		}, []string{"dry_run"}),
		roomsCorrected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "occupancy",
			Name:      "rooms_corrected_total",
			Help:      "Rooms whose counters were rewritten by a reconciliation.",
		}),
		overAssigned: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "occupancy",
			Name:      "over_assigned_rooms",
			Help:      "Rooms holding more students than their sharing, as of the last reconciliation.",
		}),
		orphaned: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "occupancy",
			Name:      "orphaned_room_numbers",
			Help:      "Room numbers on student profiles that match no room, as of the last reconciliation.",
		}),
	}
}

func (r *OccupancyRecorder) RecordTransfer(outcome occupancy.Outcome) {
	r.transfers.WithLabelValues(string(outcome)).Inc()
}

func (r *OccupancyRecorder) RecordReconciliation(report occupancy.Report) {
	r.reconciliations.WithLabelValues(strconv.FormatBool(report.DryRun)).Inc()
	if report.DryRun {
		return
	}
	r.roomsCorrected.Add(float64(len(report.Changed)))
	r.overAssigned.Set(float64(len(report.OverAssigned)))
	r.orphaned.Set(float64(len(report.Orphaned)))
}
