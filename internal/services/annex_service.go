package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/annex"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
)

// AnnexService fronts the document annex. Annex failures are logged and
// degrade to skipped writes and absent reads; they never surface as errors.
type AnnexService struct {
	annex   *annex.Annex
	catalog *CatalogService
}

func NewAnnexService(a *annex.Annex, catalog *CatalogService) *AnnexService {
	return &AnnexService{annex: a, catalog: catalog}
}

// SaveMetadata replaces gameID's metadata document. Only the owning
// developer may write it. stored is false when the annex skipped the write.
func (s *AnnexService) SaveMetadata(ctx context.Context, caller *models.Account, gameID uint, req *dto.MetadataRequest) (bool, error) {
	if _, err := s.catalog.RequireOwner(caller, gameID); err != nil {
		return false, err
	}

	doc := &annex.Metadata{
		GameID:             gameID,
		Tags:               normalizeTags(req.Tags),
		Screenshots:        req.Screenshots,
		Videos:             req.Videos,
		SystemRequirements: req.SystemRequirements,
		DeveloperNotes:     req.DeveloperNotes,
		UpdatedAt:          time.Now().UTC(),
	}
	stored, err := s.annex.SaveMetadata(ctx, doc)
	if err != nil {
		slog.Warn("annex metadata write skipped", "game_id", gameID, "error", err)
		stored = false
	}
	metrics.RecordAnnex("save_metadata", stored)
	return stored, nil
}

func (s *AnnexService) GetMetadata(ctx context.Context, gameID uint) (*annex.Metadata, error) {
	doc, err := s.annex.GetMetadata(ctx, gameID)
	if err != nil {
		slog.Warn("annex metadata read failed", "game_id", gameID, "error", err)
		return nil, ErrMetadataMissing
	}
	if doc == nil {
		return nil, ErrMetadataMissing
	}
	return doc, nil
}

func (s *AnnexService) SearchByTags(ctx context.Context, tags []string) []annex.Metadata {
	docs, err := s.annex.SearchByTags(ctx, normalizeTags(tags))
	if err != nil {
		slog.Warn("annex tag search failed", "tags", tags, "error", err)
		return []annex.Metadata{}
	}
	return docs
}

// GetStats always succeeds; missing or unreachable counters read as zero.
func (s *AnnexService) GetStats(ctx context.Context, gameID uint) *annex.Analytics {
	stats, err := s.annex.GetStats(ctx, gameID)
	if err != nil {
		slog.Warn("annex analytics read failed", "game_id", gameID, "error", err)
		return &annex.Analytics{GameID: gameID}
	}
	return stats
}

func (s *AnnexService) RecordView(ctx context.Context, gameID uint) {
	err := s.annex.RecordView(ctx, gameID)
	if err != nil {
		slog.Warn("annex view not recorded", "game_id", gameID, "error", err)
	}
	metrics.RecordAnnex("view", err == nil && s.annex.Available())
}

func (s *AnnexService) RecordDownload(ctx context.Context, gameID uint) {
	err := s.annex.RecordDownload(ctx, gameID)
	if err != nil {
		slog.Warn("annex download not recorded", "game_id", gameID, "error", err)
	}
	metrics.RecordAnnex("download", err == nil && s.annex.Available())
}

func (s *AnnexService) Available() bool {
	return s.annex.Available()
}

func (s *AnnexService) Ping(ctx context.Context) error {
	return s.annex.Ping(ctx)
}

// normalizeTags trims, lowercases and dedupes tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		k := strings.ToLower(strings.TrimSpace(t))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
