package ranking

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"negotiator/pkg/domain"
)

// ConfigMapKey is the ConfigMap data key holding a ranking document.
const ConfigMapKey = "ranking.yaml"

// Document is the serialized form of a ranking: bids as issue name to value
// maps, listed worst first.
type Document struct {
	Bids []map[string]string `yaml:"bids"`
}

// Parse decodes a ranking document and validates it against d.
func Parse(d *domain.Domain, b []byte) (*Ranking, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse ranking: %w", err)
	}
	bids := make([]domain.Bid, 0, len(doc.Bids))
	for i, m := range doc.Bids {
		bid, err := d.BidFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("ranking entry %d: %w", i, err)
		}
		bids = append(bids, bid)
	}
	return New(d, bids)
}

// LoadFile reads a ranking document from disk.
func LoadFile(d *domain.Domain, path string) (*Ranking, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(d, b)
}

// LoadFromConfigMap reads the ranking document stored under ConfigMapKey in
// the named ConfigMap.
func LoadFromConfigMap(ctx context.Context, c client.Reader, key types.NamespacedName, d *domain.Domain) (*Ranking, error) {
	cm := &corev1.ConfigMap{}
	if err := c.Get(ctx, key, cm); err != nil {
		return nil, fmt.Errorf("get ranking ConfigMap %s: %w", key, err)
	}
	data, ok := cm.Data[ConfigMapKey]
	if !ok {
		return nil, fmt.Errorf("ConfigMap %s has no %q key", key, ConfigMapKey)
	}
	r, err := Parse(d, []byte(data))
	if err != nil {
		return nil, fmt.Errorf("ConfigMap %s: %w", key, err)
	}
	klog.InfoS("Loaded bid ranking from ConfigMap", "configMap", key, "bids", r.Len())
	return r, nil
}
