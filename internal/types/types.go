package types

import "time"

// ScoreRecord pairs one scored image with its aesthetic score
type ScoreRecord struct {
	File  string
	Score float32
}

// Run summarizes one persisted scoring run
type Run struct {
	ID        int64
	Path      string
	Model     string
	ClipModel string
	Mean      float64
	Count     int
	CreatedAt time.Time
}

// Match is a nearest-neighbor result from the embedding store
type Match struct {
	RunID    int64
	File     string
	Score    float32
	Distance float64
}
