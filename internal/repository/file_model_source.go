package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	applogger "CropPulse/pkg/logger"
	"CropPulse/pkg/util"
)

// ModelFileName is the file holding the model of a crop/state pair,
// e.g. "wheat_uttar_pradesh_price_model.yaml".
func ModelFileName(crop, state string) string {
	return fmt.Sprintf("%s_%s_price_model.yaml", util.Slug(crop), util.Slug(state))
}

// LinearModel is an exported regression: intercept plus one weight per feature.
type LinearModel struct {
	Crop         string             `yaml:"crop"`
	State        string             `yaml:"state"`
	Intercept    float64            `yaml:"intercept"`
	Coefficients map[string]float64 `yaml:"coefficients"`
	MinPrice     float64            `yaml:"min_price"`
}

// Predict computes intercept + Σ w·x, floored at MinPrice.
func (m *LinearModel) Predict(_ context.Context, f models.FeatureVector) (float64, error) {
	y := m.Intercept
	vals := f.Values()
	for i, name := range models.FeatureNames {
		y += m.Coefficients[name] * vals[i]
	}
	if y < m.MinPrice {
		y = m.MinPrice
	}
	return y, nil
}

func (m *LinearModel) validate() error {
	for name := range m.Coefficients {
		known := false
		for _, fn := range models.FeatureNames {
			if fn == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown feature %q", name)
		}
	}
	return nil
}

// FileModelSource loads YAML models from a directory on first use and keeps them.
type FileModelSource struct {
	dir string
	l   *applogger.Logger

	mu     sync.RWMutex
	loaded map[string]*LinearModel
}

func NewFileModelSource(dir string) *FileModelSource {
	return &FileModelSource{dir: dir, loaded: map[string]*LinearModel{}}
}

// SetLogger injects a structured logger.
func (s *FileModelSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *FileModelSource) Model(_ context.Context, crop, state string) (domrepo.PriceModel, error) {
	name := ModelFileName(crop, state)

	s.mu.RLock()
	m, ok := s.loaded[name]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.loaded[name]; ok {
		return m, nil
	}

	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ModelNotFound(crop, state)
		}
		return nil, fmt.Errorf("read model %s: %w", name, err)
	}
	m = &LinearModel{}
	if err := yaml.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", name, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	s.loaded[name] = m

	if s.l != nil {
		s.l.Info("price model loaded",
			applogger.String("crop", crop),
			applogger.String("state", state),
			applogger.String("file", name),
		)
	}
	return m, nil
}

var _ domrepo.ModelSource = (*FileModelSource)(nil)
