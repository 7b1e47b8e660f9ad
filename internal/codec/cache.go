package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fevancin/Scheduler-Project/internal/model"
)

// EncodeCacheMatching renders a day -> iteration matching as a flat JSON
// object, mirroring encode_cache_matching.
func EncodeCacheMatching(m model.CacheMatch) ([]byte, error) {
	obj := make(map[string]int, len(m))
	for day, iter := range m {
		obj[strconv.Itoa(int(day))] = int(iter)
	}
	return json.MarshalIndent(obj, "", "  ")
}

// DecodeCacheMatching parses a day -> iteration matching.
func DecodeCacheMatching(data []byte) (model.CacheMatch, error) {
	var obj map[string]int
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("codec: decode cache matching: %w", err)
	}

	m := make(model.CacheMatch, len(obj))
	for day, iter := range obj {
		d, err := strconv.Atoi(day)
		if err != nil {
			return nil, fmt.Errorf("codec: bad day name %q: %w", day, err)
		}
		m[model.DayName(d)] = model.IterationName(iter)
	}
	return m, nil
}
