package annex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/redis/go-redis/v9"
)

// Annex is the secondary store for per-game metadata documents and
// view/download counters, keyed by game id. A disabled Annex (no client)
// skips writes and reports every document as absent.
type Annex struct {
	client *redis.Client
}

// Metadata is the free-form document a developer attaches to a game.
type Metadata struct {
	GameID             uint                   `json:"game_id"`
	Tags               []string               `json:"tags"`
	Screenshots        []string               `json:"screenshots"`
	Videos             []string               `json:"videos"`
	SystemRequirements map[string]interface{} `json:"system_requirements"`
	DeveloperNotes     string                 `json:"developer_notes"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

type Analytics struct {
	GameID    uint  `json:"game_id"`
	Views     int64 `json:"views"`
	Downloads int64 `json:"downloads"`
}

// Connect dials Redis and pings it once. When the ping fails the returned
// Annex is disabled for the lifetime of the process.
func Connect(ctx context.Context, cfg *config.Config) *Annex {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: cfg.RedisDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RedisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("annex unavailable, metadata and analytics disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return &Annex{}
	}

	slog.Info("annex connected", "addr", cfg.RedisAddr)
	return &Annex{client: client}
}

// New wraps an existing client. A nil client yields a disabled Annex.
func New(client *redis.Client) *Annex {
	return &Annex{client: client}
}

func (a *Annex) Available() bool {
	return a != nil && a.client != nil
}

func (a *Annex) Ping(ctx context.Context) error {
	if !a.Available() {
		return errors.New("annex disabled")
	}
	return a.client.Ping(ctx).Err()
}

func (a *Annex) Close() error {
	if !a.Available() {
		return nil
	}
	return a.client.Close()
}

func metadataKey(gameID uint) string {
	return fmt.Sprintf("game:%d:metadata", gameID)
}

func analyticsKey(gameID uint) string {
	return fmt.Sprintf("game:%d:analytics", gameID)
}

func tagKey(tag string) string {
	return "tag:" + strings.ToLower(tag) + ":games"
}

// saveRetries bounds optimistic retries when concurrent saves touch the same
// document.
const saveRetries = 10

// SaveMetadata replaces the whole metadata document for doc.GameID. The
// original created_at survives replacement. It reports false when the annex
// is disabled and nothing was written.
func (a *Annex) SaveMetadata(ctx context.Context, doc *Metadata) (bool, error) {
	if !a.Available() {
		return false, nil
	}

	fields, err := encodeMetadata(doc)
	if err != nil {
		return false, err
	}

	key := metadataKey(doc.GameID)
	member := strconv.FormatUint(uint64(doc.GameID), 10)

	// The old tags are read under WATCH so the unindex and the replacement
	// commit together or not at all.
	replace := func(tx *redis.Tx) error {
		oldTags, err := loadTags(ctx, tx, key)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, t := range oldTags {
				pipe.SRem(ctx, tagKey(t), member)
			}
			pipe.HSet(ctx, key, fields)
			pipe.HSetNX(ctx, key, "created_at", doc.UpdatedAt.Format(time.RFC3339Nano))
			for _, t := range doc.Tags {
				pipe.SAdd(ctx, tagKey(t), member)
			}
			return nil
		})
		return err
	}

	for i := 0; i < saveRetries; i++ {
		err = a.client.Watch(ctx, replace, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return false, fmt.Errorf("saving metadata: %w", err)
	}
	return true, nil
}

// GetMetadata returns nil when no document exists or the annex is disabled.
func (a *Annex) GetMetadata(ctx context.Context, gameID uint) (*Metadata, error) {
	if !a.Available() {
		return nil, nil
	}
	values, err := a.client.HGetAll(ctx, metadataKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting metadata: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return decodeMetadata(gameID, values)
}

// SearchByTags returns the metadata documents carrying any of tags, ordered
// by game id.
func (a *Annex) SearchByTags(ctx context.Context, tags []string) ([]Metadata, error) {
	if !a.Available() || len(tags) == 0 {
		return []Metadata{}, nil
	}
	keys := make([]string, len(tags))
	for i, t := range tags {
		keys[i] = tagKey(t)
	}
	members, err := a.client.SUnion(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("searching tags: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	docs := make([]Metadata, 0, len(ids))
	for _, id := range ids {
		doc, err := a.GetMetadata(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (a *Annex) RecordView(ctx context.Context, gameID uint) error {
	return a.increment(ctx, gameID, "views")
}

func (a *Annex) RecordDownload(ctx context.Context, gameID uint) error {
	return a.increment(ctx, gameID, "downloads")
}

func (a *Annex) increment(ctx context.Context, gameID uint, field string) error {
	if !a.Available() {
		return nil
	}
	if err := a.client.HIncrBy(ctx, analyticsKey(gameID), field, 1).Err(); err != nil {
		return fmt.Errorf("incrementing %s: %w", field, err)
	}
	return nil
}

// GetStats returns zero counters when no document exists or the annex is
// disabled.
func (a *Annex) GetStats(ctx context.Context, gameID uint) (*Analytics, error) {
	stats := &Analytics{GameID: gameID}
	if !a.Available() {
		return stats, nil
	}
	values, err := a.client.HGetAll(ctx, analyticsKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting analytics: %w", err)
	}
	stats.Views, _ = strconv.ParseInt(values["views"], 10, 64)
	stats.Downloads, _ = strconv.ParseInt(values["downloads"], 10, 64)
	return stats, nil
}

func loadTags(ctx context.Context, tx *redis.Tx, key string) ([]string, error) {
	raw, err := tx.HGet(ctx, key, "tags").Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, nil
	}
	return tags, nil
}

func encodeMetadata(doc *Metadata) (map[string]interface{}, error) {
	fields := map[string]interface{}{
		"developer_notes": doc.DeveloperNotes,
		"updated_at":      doc.UpdatedAt.Format(time.RFC3339Nano),
	}
	for name, v := range map[string]interface{}{
		"tags":                nonNilStrings(doc.Tags),
		"screenshots":         nonNilStrings(doc.Screenshots),
		"videos":              nonNilStrings(doc.Videos),
		"system_requirements": nonNilMap(doc.SystemRequirements),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		fields[name] = string(b)
	}
	return fields, nil
}

func decodeMetadata(gameID uint, values map[string]string) (*Metadata, error) {
	doc := &Metadata{
		GameID:         gameID,
		DeveloperNotes: values["developer_notes"],
	}
	for name, dst := range map[string]interface{}{
		"tags":                &doc.Tags,
		"screenshots":         &doc.Screenshots,
		"videos":              &doc.Videos,
		"system_requirements": &doc.SystemRequirements,
	} {
		raw, ok := values[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
	}
	doc.Tags = nonNilStrings(doc.Tags)
	doc.Screenshots = nonNilStrings(doc.Screenshots)
	doc.Videos = nonNilStrings(doc.Videos)
	doc.SystemRequirements = nonNilMap(doc.SystemRequirements)
	doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, values["created_at"])
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, values["updated_at"])
	return doc, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
