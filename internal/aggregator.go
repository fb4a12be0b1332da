package internal

import (
	"context"
	"os"
	"sort"
)

// Aggregator orchestrates every adapter for a project path and merges
// their outputs into one chronologically ordered result. Its contract
// cannot fail for a valid path argument: adapters degrade to empty
// contributions and an empty result is a valid, successful outcome.
type Aggregator struct {
	cfg         Config
	transcripts *TranscriptAdapter
	tracking    *TrackingAdapter
	chats       *ChatsAdapter
	exports     *ExportsAdapter
	artifacts   *ArtifactsAdapter
}

// NewAggregator wires all adapters against the given configuration.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{
		cfg:         cfg,
		transcripts: NewTranscriptAdapter(cfg),
		tracking:    NewTrackingAdapter(cfg),
		chats:       NewChatsAdapter(cfg),
		exports:     NewExportsAdapter(cfg),
		artifacts:   NewArtifactsAdapter(cfg),
	}
}

// GetHistory ingests all sources for the project and returns one
// result with messages globally sorted ascending by timestamp. The
// sort is stable, so ties keep the original adapter emission order.
func (g *Aggregator) GetHistory(ctx context.Context, projectPath string) *HistoryResult {
	result := &HistoryResult{
		Messages:      []Message{},
		Conversations: []Conversation{},
		Sources:       []Source{},
	}

	collect := func(source Source, msgs []Message, convs []Conversation) {
		if len(msgs) == 0 {
			return
		}
		result.Messages = append(result.Messages, msgs...)
		result.Conversations = append(result.Conversations, convs...)
		result.Sources = append(result.Sources, source)
	}

	msgs, convs := g.transcripts.Harvest(projectPath)
	collect(SourceTranscripts, msgs, convs)

	msgs, convs = g.tracking.Harvest(projectPath)
	collect(SourceTracking, msgs, convs)

	msgs, convs = g.chats.Harvest(projectPath)
	collect(SourceChats, msgs, convs)

	scanCtx, cancel := context.WithTimeout(ctx, g.cfg.ScanTimeout())
	msgs, convs = g.exports.Harvest(scanCtx, projectPath)
	cancel()
	collect(SourceExports, msgs, convs)

	if dirExists(g.cfg.ArtifactsDir) {
		msgs, convs = g.artifacts.Harvest(projectPath)
		collect(SourceArtifacts, msgs, convs)
	}

	sort.SliceStable(result.Messages, func(i, j int) bool {
		return result.Messages[i].Timestamp.Before(result.Messages[j].Timestamp)
	})

	result.TotalMessages = len(result.Messages)
	if len(result.Messages) > 0 {
		result.DateRange = &DateRange{
			Start: result.Messages[0].Timestamp,
			End:   result.Messages[len(result.Messages)-1].Timestamp,
		}
	}
	return result
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
