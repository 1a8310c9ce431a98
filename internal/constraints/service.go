package constraints

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/logger"
)

const (
	KeyMedia  = "media"
	KeyDesign = "design"
)

// FormatEntry is one accepted image format.
type FormatEntry struct {
	Format string `json:"format"`
}

// MediaConstraints bounds uploaded images. MaxImgSize is in megabytes.
type MediaConstraints struct {
	ImgFormat  []FormatEntry `json:"imgFormat"`
	MaxImgSize int           `json:"maxImgSize"`
}

// MaxBytes converts the size ceiling to bytes.
func (m MediaConstraints) MaxBytes() int64 {
	return int64(m.MaxImgSize) << 20
}

// Formats returns the accepted formats, lowercased.
func (m MediaConstraints) Formats() []string {
	out := make([]string, 0, len(m.ImgFormat))
	for _, f := range m.ImgFormat {
		if v := strings.ToLower(strings.TrimSpace(f.Format)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// PositionEntry is one selectable logo placement.
type PositionEntry struct {
	P string `json:"p"`
}

// DesignConstraints lists logo placements and the placement illustration.
type DesignConstraints struct {
	Positions         []PositionEntry `json:"positions"`
	IllustrationImage string          `json:"illustrationImage"`
}

// All bundles both constraint sets.
type All struct {
	Media  MediaConstraints  `json:"media"`
	Design DesignConstraints `json:"design"`
}

// DefaultMedia is used whenever the config service cannot answer.
func DefaultMedia() MediaConstraints {
	return MediaConstraints{
		ImgFormat: []FormatEntry{
			{Format: "jpg"},
			{Format: "jpeg"},
			{Format: "png"},
			{Format: "webp"},
		},
		MaxImgSize: 5,
	}
}

// DefaultDesign is used whenever the config service cannot answer.
func DefaultDesign() DesignConstraints {
	return DesignConstraints{
		Positions: []PositionEntry{
			{P: "Left Chest"},
			{P: "Right Chest"},
			{P: "Center Chest"},
		},
	}
}

type configSource interface {
	GetConfigByKey(ctx context.Context, key string) (backend.ConfigValue, error)
}

// Service resolves constraints from the config service with silent fallbacks.
type Service interface {
	Media(ctx context.Context) MediaConstraints
	Design(ctx context.Context) DesignConstraints
	All(ctx context.Context) All
}

type service struct {
	source configSource
	logg   *logger.Logger
}

// NewService wires the config source.
func NewService(source configSource, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("config source required")
	}
	return &service{source: source, logg: logg}, nil
}

func (s *service) Media(ctx context.Context) MediaConstraints {
	out := DefaultMedia()
	var loaded MediaConstraints
	if !s.load(ctx, KeyMedia, &loaded) {
		return out
	}
	if len(loaded.Formats()) > 0 {
		out.ImgFormat = loaded.ImgFormat
	}
	if loaded.MaxImgSize > 0 {
		out.MaxImgSize = loaded.MaxImgSize
	}
	return out
}

func (s *service) Design(ctx context.Context) DesignConstraints {
	out := DefaultDesign()
	var loaded DesignConstraints
	if !s.load(ctx, KeyDesign, &loaded) {
		return out
	}
	if len(loaded.Positions) > 0 {
		out.Positions = loaded.Positions
	}
	if loaded.IllustrationImage != "" {
		out.IllustrationImage = loaded.IllustrationImage
	}
	return out
}

func (s *service) All(ctx context.Context) All {
	return All{Media: s.Media(ctx), Design: s.Design(ctx)}
}

func (s *service) load(ctx context.Context, key string, dest any) bool {
	value, err := s.source.GetConfigByKey(ctx, key)
	if err == nil && len(value.Value) > 0 {
		err = json.Unmarshal(value.Value, dest)
	} else if err == nil {
		err = fmt.Errorf("config %q has no value", key)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"config_key": key,
				"error":      err.Error(),
			}), "using default constraints")
		}
		return false
	}
	return true
}
