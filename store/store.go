// Package store persists the outcome of played episodes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotInitialized = errors.New("store not initialized")

// EpisodeRecord is the outcome of one episode of one experiment
type EpisodeRecord struct {
	ID            string    `json:"id"`
	Experiment    string    `json:"experiment"`
	Run           int       `json:"run"`
	Episode       int       `json:"episode"`
	Steps         int       `json:"steps"`
	Won           bool      `json:"won"`
	Reward        float64   `json:"reward"`
	FinalDistance float64   `json:"final_distance"`
	Actions       []int     `json:"actions"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEpisodeRecord fills in the id and creation time
func NewEpisodeRecord(experiment string, run, episode int) EpisodeRecord {
	return EpisodeRecord{
		ID:         uuid.NewString(),
		Experiment: experiment,
		Run:        run,
		Episode:    episode,
		Actions:    []int{},
		CreatedAt:  time.Now().UTC(),
	}
}

func encodeRecord(r EpisodeRecord) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRecord(payload []byte) (EpisodeRecord, error) {
	var r EpisodeRecord
	if err := json.Unmarshal(payload, &r); err != nil {
		return EpisodeRecord{}, fmt.Errorf("decode episode record: %w", err)
	}
	return r, nil
}

// Store keeps episode records grouped by experiment name.
// Episodes returns the records of an experiment in insertion order.
type Store interface {
	Init(ctx context.Context) error
	SaveEpisode(ctx context.Context, record EpisodeRecord) error
	Episodes(ctx context.Context, experiment string) ([]EpisodeRecord, error)
	Experiments(ctx context.Context) ([]string, error)
	Close() error
}
