package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equation_evolution_generations_total",
		Help: "Completed offspring generations by phase",
	}, []string{"phase"})

	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equation_evolution_evaluations_total",
		Help: "Fitness evaluations by phase",
	}, []string{"phase"})

	bestFitness = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "equation_evolution_best_fitness",
		Help: "Best archived objective value by phase and objective",
	}, []string{"phase", "objective"})

	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "equation_evolution_evaluation_duration_seconds",
		Help:    "Wall time to evaluate one generation",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	}, []string{"phase"})

	checkpointsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equation_evolution_checkpoints_total",
		Help: "Checkpoints written by phase and result",
	}, []string{"phase", "result"})
)
