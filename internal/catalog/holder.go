package catalog

import (
	"bytes"
	_ "embed"
	"sync/atomic"

	"github.com/evalworks/vendoreval/internal/config"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//go:embed catalog.yml
var embeddedDocument []byte

// Provider hands out the current catalog revision.
type Provider interface {
	Current() *Document
}

// Holder serves the active catalog document and hot-reloads the on-disk
// override when it changes. Invalid revisions are ignored, the previous
// document stays active.
type Holder struct {
	current atomic.Value // holds *Document
}

func NewHolder(cfg config.Config, log *zap.Logger) (*Holder, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(bytes.NewReader(embeddedDocument)); err != nil {
		return nil, err
	}

	usingFile := false
	if cfg.CatalogPath != "" {
		v.SetConfigFile(cfg.CatalogPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		usingFile = true
	}

	doc, err := decodeDocument(v)
	if err != nil {
		return nil, err
	}

	holder := &Holder{}
	holder.current.Store(doc)

	if usingFile {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeDocument(v)
			if err != nil {
				log.Warn("catalog reload rejected", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("catalog reloaded",
				zap.String("file", e.Name),
				zap.String("catalog_version", updated.Version),
			)
		})
	}

	log.Info("catalog loaded",
		zap.String("catalog_version", doc.Version),
		zap.Int("questions", doc.TotalQuestions()),
		zap.Int("suppliers", len(doc.Suppliers())),
	)
	return holder, nil
}

func (h *Holder) Current() *Document {
	return h.current.Load().(*Document)
}

func decodeDocument(v *viper.Viper) (*Document, error) {
	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, err
	}
	if err := doc.Finalize(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Static wraps a fixed document as a Provider; test seam.
type Static struct {
	Doc *Document
}

func (s Static) Current() *Document { return s.Doc }
