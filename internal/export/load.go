package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/veryresto/pingmo/internal/models"
)

// requiredSpikeKeys lists the spike_analysis keys the viewer reads.
var requiredSpikeKeys = []string{
	"spikes_above_50ms",
	"spikes_above_100ms",
	"spikes_above_150ms",
	"spikes_above_200ms",
	"spikes_above_300ms",
	"spikes_above_500ms",
	"video_conferencing_quality",
}

var requiredQualityKeys = []string{
	"excellent_0_20ms",
	"good_20_50ms",
	"acceptable_50_100ms",
	"poor_100_200ms",
	"very_poor_above_200ms",
}

var requiredSummaryKeys = []string{
	"monitoring_started",
	"monitoring_ended",
	"total_pings",
	"success_rate",
	"spike_analysis",
}

type object = map[string]json.RawMessage

// Load reads and validates a results document. Nothing is returned unless
// every key the viewer needs is present.
func Load(path string) (models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("read results: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes a results document.
func Parse(data []byte) (models.Document, error) {
	var doc models.Document

	var root object
	if err := json.Unmarshal(data, &root); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	summary, err := child(root, "summary", "")
	if err != nil {
		return doc, err
	}
	if _, ok := root["results"]; !ok {
		return doc, missing("results")
	}
	for _, key := range requiredSummaryKeys {
		if _, ok := summary[key]; !ok {
			return doc, missing("summary." + key)
		}
	}

	spikes, err := child(summary, "spike_analysis", "summary.")
	if err != nil {
		return doc, err
	}
	for _, key := range requiredSpikeKeys {
		if _, ok := spikes[key]; !ok {
			return doc, missing("summary.spike_analysis." + key)
		}
	}

	quality, err := child(spikes, "video_conferencing_quality", "summary.spike_analysis.")
	if err != nil {
		return doc, err
	}
	for _, key := range requiredQualityKeys {
		if _, ok := quality[key]; !ok {
			return doc, missing("summary.spike_analysis.video_conferencing_quality." + key)
		}
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// child decodes parent[key] as a JSON object.
func child(parent object, key, prefix string) (object, error) {
	raw, ok := parent[key]
	if !ok {
		return nil, missing(prefix + key)
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: %s%s is not an object", ErrMalformed, prefix, key)
	}
	return obj, nil
}

func missing(key string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformed, key)
}
