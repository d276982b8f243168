package model

import (
	"encoding/json"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome kinds stored in IndividualRecord.Kind.
const (
	KindDirect   = "direct"
	KindGaussian = "gaussian"
)

// IndividualRecord is the persisted form of one individual. Tree is the
// canonical prefix form of the evolved tree; the envelope parameters are
// only meaningful for gaussian genomes, whose base tree is stored once per
// run rather than per individual.
type IndividualRecord struct {
	Kind    string  `json:"kind"`
	Tree    string  `json:"tree"`
	A       Float   `json:"a,omitempty"`
	B       Float   `json:"b,omitempty"`
	C       Float   `json:"c,omitempty"`
	Fitness []Float `json:"fitness,omitempty"`
	Valid   bool    `json:"valid"`
}

// SummaryRecord mirrors stats.Summary.
type SummaryRecord struct {
	Avg Float `json:"avg"`
	Std Float `json:"std"`
	Min Float `json:"min"`
	Max Float `json:"max"`
}

// LogRecord mirrors one logbook row.
type LogRecord struct {
	Gen    int                      `json:"gen"`
	NEvals int                      `json:"nevals"`
	Fields map[string]SummaryRecord `json:"fields"`
}

// Checkpoint is an atomic snapshot of an engine run between generations.
type Checkpoint struct {
	VersionedRecord
	RunID          string             `json:"run_id"`
	Phase          string             `json:"phase"`
	Generation     int                `json:"generation"`
	MaxGenerations int                `json:"max_generations"`
	Weights        []Float            `json:"weights"`
	Base           string             `json:"base,omitempty"`
	Population     []IndividualRecord `json:"population"`
	HallOfFame     []IndividualRecord `json:"hall_of_fame"`
	HallOfFameSize int                `json:"hall_of_fame_size"`
	Logbook        []LogRecord        `json:"logbook"`
	RNGState       []byte             `json:"rng_state"`
	CreatedAt      time.Time          `json:"created_at"`
}

// PhaseRecord is the outcome of one evolution phase.
type PhaseRecord struct {
	Objectives      []string           `json:"objectives"`
	Weights         []Float            `json:"weights"`
	HallOfFame      []IndividualRecord `json:"hall_of_fame"`
	GenerationsUsed int                `json:"generations_used"`
	MaxGenerations  int                `json:"max_generations"`
	TargetError     Float              `json:"target_error"`
	Logbook         []LogRecord        `json:"logbook"`
	RNGState        []byte             `json:"rng_state"`
	Duration        time.Duration      `json:"duration"`
}

// Comparison relates the tree recovered by removal to the original benign
// tree.
type Comparison struct {
	OriginalSize      int    `json:"original_size"`
	CreationSize      int    `json:"creation_size"`
	RemovalSize       int    `json:"removal_size"`
	ExactDuplicate    bool   `json:"exact_duplicate"`
	OriginalContained bool   `json:"original_contained"`
	SimplifiedRemoval string `json:"simplified_removal"`
}

// RunRecord is everything a creation and removal experiment produced.
type RunRecord struct {
	VersionedRecord
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	BenignName      string          `json:"benign_name,omitempty"`
	MalwareName     string          `json:"malware_name,omitempty"`
	BenignEquation  string          `json:"benign_equation"`
	MalwareEquation string          `json:"malware_equation"`
	Representation  string          `json:"representation"`
	Evaluation      string          `json:"evaluation"`
	TestPoints      []Float         `json:"test_points"`
	InsertionStart  Float           `json:"insertion_start"`
	InsertionStop   Float           `json:"insertion_stop"`
	Seed            uint64          `json:"seed"`
	Config          json.RawMessage `json:"config,omitempty"`
	Creation        *PhaseRecord    `json:"creation,omitempty"`
	Removal         *PhaseRecord    `json:"removal,omitempty"`
	Comparison      *Comparison     `json:"comparison,omitempty"`
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	BenignEquation  string    `json:"benign_equation"`
	MalwareEquation string    `json:"malware_equation"`
	Representation  string    `json:"representation"`
}

// Summary derives the listing view.
func (r RunRecord) Summary() RunSummary {
	return RunSummary{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		BenignEquation:  r.BenignEquation,
		MalwareEquation: r.MalwareEquation,
		Representation:  r.Representation,
	}
}
