/*
Package catalog turns normalized data rows into the searchable item catalog:
a single aggregation pass merges rows sharing a normalized name into one
GroupedItem, builds the filter-key set per item and the chip reverse index,
and feeds the prefix/fuzzy match engine.
*/
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hexfall/lootserve/pkg/dataset"
)

// QuestMarker is the station/source value that marks a row as a quest
// requirement, compared after trim+lowercase.
const QuestMarker = "quest"

// UsageEntry is one bench, quest or expedition requirement referencing an
// item. Entries are deduplicated field-wise, not by a joined string key, so
// a delimiter inside a field can never collide two distinct entries.
type UsageEntry struct {
	Station   string
	Tier      int
	Quantity  int
	Source    string
	QuestName string
}

// GroupedItem is the per-unique-name aggregate used for display and search.
// Scalar fields keep the first non-empty value seen; list fields accumulate
// unique values in first-appearance order.
type GroupedItem struct {
	Name           string
	NormalizedName string
	ID             string
	BaseID         string
	Description    string
	Rarity         string
	Type           string
	FoundIn        string
	Workbench      string
	Value          float64
	StackSize      int
	Weight         float64
	Icon           string

	Categories []string
	Locations  []string
	Vendors    []string
	Sources    []string
	Effects    []string
	Recycle    []string

	Usage []UsageEntry

	// FilterKeys holds "dimension:value" tags for chip narrowing. Immutable
	// once aggregation completes; rebuilt wholesale on reload.
	FilterKeys map[string]struct{}

	usageSeen map[UsageEntry]struct{}
}

// DisplayName returns the name to render, "Unknown" for a blank one.
func (g *GroupedItem) DisplayName() string {
	if g.Name == "" {
		return "Unknown"
	}
	return g.Name
}

// HasFilterKey reports whether the item carries the given chip tag.
func (g *GroupedItem) HasFilterKey(key string) bool {
	_, ok := g.FilterKeys[key]
	return ok
}

// firstStation returns the station and tier of the first usage entry, used
// as the secondary sort key in the prefix phase.
func (g *GroupedItem) firstStation() (string, int) {
	if len(g.Usage) == 0 {
		return "", 0
	}
	return g.Usage[0].Station, g.Usage[0].Tier
}

// Aggregate merges records sharing a normalized name into GroupedItems in a
// single pass. Output order is first-occurrence order; sorting is the match
// engine's job.
func Aggregate(records []dataset.Record) []*GroupedItem {
	byName := make(map[string]*GroupedItem, len(records))
	var out []*GroupedItem

	for i := range records {
		rec := &records[i]
		g, ok := byName[rec.NormalizedName]
		if !ok {
			g = newGroupedItem(rec)
			byName[rec.NormalizedName] = g
			out = append(out, g)
		}
		g.merge(rec)
	}

	for _, g := range out {
		g.usageSeen = nil
	}
	return out
}

// newGroupedItem seeds an aggregate from the first record of a name. Every
// field is listed explicitly so transient per-row state never leaks into
// the aggregate.
func newGroupedItem(rec *dataset.Record) *GroupedItem {
	return &GroupedItem{
		Name:           rec.Name,
		NormalizedName: rec.NormalizedName,
		ID:             rec.ID,
		BaseID:         rec.BaseID,
		Description:    rec.Description,
		Rarity:         rec.Rarity,
		Type:           rec.Type,
		FoundIn:        rec.FoundIn,
		Workbench:      rec.Workbench,
		Value:          rec.Value,
		StackSize:      rec.StackSize,
		Weight:         rec.Weight,
		Icon:           rec.Icon,
		FilterKeys:     make(map[string]struct{}),
		usageSeen:      make(map[UsageEntry]struct{}),
	}
}

// merge folds one record into the aggregate: first-non-empty scalars, unique
// list appends, usage dedup, filter keys.
func (g *GroupedItem) merge(rec *dataset.Record) {
	fillString(&g.ID, rec.ID)
	fillString(&g.BaseID, rec.BaseID)
	fillString(&g.Description, rec.Description)
	fillString(&g.Rarity, rec.Rarity)
	fillString(&g.Type, rec.Type)
	fillString(&g.FoundIn, rec.FoundIn)
	fillString(&g.Workbench, rec.Workbench)
	fillString(&g.Icon, rec.Icon)
	if g.Value == 0 {
		g.Value = rec.Value
	}
	if g.StackSize == 0 {
		g.StackSize = rec.StackSize
	}
	if g.Weight == 0 {
		g.Weight = rec.Weight
	}

	g.Categories = appendUnique(g.Categories, rec.Categories...)
	g.Locations = appendUnique(g.Locations, rec.Location)
	g.Vendors = appendUnique(g.Vendors, rec.Vendors...)
	g.Sources = appendUnique(g.Sources, rec.Sources...)
	g.Effects = appendUnique(g.Effects, rec.Effects...)
	g.Recycle = appendUnique(g.Recycle, rec.Recycle...)

	g.mergeUsage(rec)
	g.addFilterKeys(rec)
}

func (g *GroupedItem) mergeUsage(rec *dataset.Record) {
	if rec.Station == "" && len(rec.Sources) == 0 {
		return
	}

	source := ""
	if len(rec.Sources) > 0 {
		source = rec.Sources[0]
	}

	quest := ""
	if isQuest(rec.Station) || isQuest(source) {
		quest = QuestName(rec.ID, rec.BaseID, rec.Name)
	}

	entry := UsageEntry{
		Station:   rec.Station,
		Tier:      rec.Tier,
		Quantity:  rec.Quantity,
		Source:    source,
		QuestName: quest,
	}
	if _, dup := g.usageSeen[entry]; dup {
		return
	}
	g.usageSeen[entry] = struct{}{}
	g.Usage = append(g.Usage, entry)
}

func (g *GroupedItem) addFilterKeys(rec *dataset.Record) {
	for _, c := range rec.Categories {
		g.addKey("category", c)
	}
	g.addKey("location", rec.Location)
	for _, v := range rec.Vendors {
		g.addKey("vendor", v)
	}
	for _, s := range rec.Sources {
		g.addKey("source", s)
	}
	if rec.Station != "" {
		g.addKey("station", fmt.Sprintf("%s t%d", rec.Station, rec.Tier))
	}
	g.addKey("rarity", rec.Rarity)
	g.addKey("type", rec.Type)
	g.addKey("foundin", rec.FoundIn)
	g.addKey("workbench", rec.Workbench)
	g.addKey("value", rec.ValueRaw)
	g.addKey("stack", rec.StackRaw)
	g.addKey("weight", rec.WeightRaw)
}

// addKey registers a dimension:value tag. Values normalize to trim+lowercase
// and empty values are never added.
func (g *GroupedItem) addKey(dimension, value string) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return
	}
	g.FilterKeys[dimension+":"+value] = struct{}{}
}

// Backfill fills icon, weight and stack size from the sidecar entry for
// items the table left empty. Existing values are never overwritten.
func Backfill(items []*GroupedItem, sidecar dataset.Sidecar) {
	if len(sidecar) == 0 {
		return
	}
	for _, g := range items {
		sc, ok := sidecar[g.NormalizedName]
		if !ok {
			continue
		}
		fillString(&g.Icon, sc.Icon)
		if g.Weight == 0 {
			g.Weight = sc.Weight
		}
		if g.StackSize == 0 {
			g.StackSize = sc.StackSize
		}
		if g.Weight != 0 {
			g.addKey("weight", strconv.FormatFloat(g.Weight, 'f', -1, 64))
		}
		if g.StackSize != 0 {
			g.addKey("stack", strconv.Itoa(g.StackSize))
		}
	}
}

func isQuest(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) == QuestMarker
}

func fillString(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		found := false
		for _, have := range list {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
