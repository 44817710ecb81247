package catalog

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/okian/gametaste/internal/domain/model"
)

// DecodeLibraryJSON accepts a bare array of records or an object with a
// "library" key. Only the outer shape can fail; see DecodeRecords.
func DecodeLibraryJSON(b []byte) ([]model.RawTitle, error) {
	b = bytes.TrimSpace(b)
	var elems []json.RawMessage
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &elems); err != nil {
			return nil, fmt.Errorf("decode library: %w", err)
		}
		return DecodeRecords(elems), nil
	}
	var wrapped struct {
		Library []json.RawMessage `json:"library"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, fmt.Errorf("decode library: %w", err)
	}
	return DecodeRecords(wrapped.Library), nil
}

// DecodeRecords decodes each element on its own. An element of the wrong
// shape becomes a record with Malformed set, so Normalize rejects it and the
// rest of the library still runs. The ID is kept when it decodes.
func DecodeRecords(elems []json.RawMessage) []model.RawTitle {
	out := make([]model.RawTitle, len(elems))
	for i, elem := range elems {
		out[i] = decodeRecord(elem)
	}
	return out
}

// DecodeValues decodes already parsed documents, such as a YAML list loaded
// through koanf, element by element.
func DecodeValues(values []any) []model.RawTitle {
	out := make([]model.RawTitle, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			out[i] = model.RawTitle{Malformed: "decode: " + err.Error()}
			continue
		}
		out[i] = decodeRecord(b)
	}
	return out
}

func decodeRecord(elem []byte) model.RawTitle {
	var rec model.RawTitle
	err := json.Unmarshal(elem, &rec)
	if err == nil {
		return rec
	}
	var head struct {
		ID json.Number `json:"id"`
	}
	rec = model.RawTitle{Malformed: "decode: " + err.Error()}
	if json.Unmarshal(elem, &head) == nil {
		if id, err := head.ID.Int64(); err == nil && id > 0 {
			rec.ID = id
		}
	}
	return rec
}

// Summarize computes library totals from raw records. Malformed records and
// repeated IDs are not counted.
func Summarize(raw []model.RawTitle) model.LibraryStats {
	st := model.LibraryStats{Recent: []model.RecentTitle{}}
	seen := make(map[int64]struct{}, len(raw))
	var minutes int64
	for _, r := range raw {
		if r.Malformed != "" || r.ID <= 0 {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		st.OwnedCount++
		if r.PlaytimeMinutes > 0 {
			st.PlayedCount++
			minutes += r.PlaytimeMinutes
		}
		if r.RecentMinutes > 0 {
			st.Recent = append(st.Recent, model.RecentTitle{ID: r.ID, Name: r.Name, RecentMinutes: r.RecentMinutes})
		}
	}
	st.UnplayedCount = st.OwnedCount - st.PlayedCount
	st.TotalPlaytimeHours = math.Round(float64(minutes)/60*10) / 10
	return st
}
