// Package gazetteer holds the in-memory index of known places. An Index is
// built once at startup and is read-only afterwards, so one instance can be
// shared by any number of concurrent queries.
package gazetteer

import (
	"errors"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/agenthands/geoparse/internal/core/common"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/core/similarity"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

var ErrNoEntries = errors.New("gazetteer has no entries")

// Row is one record of a tabular source. Rows either name a single place
// through Name and Type, or carry City/Admin/Country columns the way
// worldcities.csv does, in which case every non-empty column yields an entry.
type Row struct {
	City    string
	Admin   string
	Country string
	ISO2    string
	ISO3    string
	// CityNative and AdminNative hold accented spellings of City and Admin
	// when the source has separate ASCII columns. They become aliases.
	CityNative  string
	AdminNative string

	Name    string
	Type    string
	Aliases []string
}

// Hit is an index entry together with its insertion sequence.
type Hit struct {
	Seq   int
	Entry model.GazetteerEntry
}

type aliasRef struct {
	id      int
	acronym bool
}

type Index struct {
	entries  []model.GazetteerEntry
	prepared []similarity.Prepared
	byType   map[model.EntityType][]int
	exact    map[string][]int
	aliases  map[string][]aliasRef
	maxWords int
	skipped  int
}

type Stats struct {
	Entries   int `json:"entries"`
	Cities    int `json:"cities"`
	States    int `json:"states"`
	Countries int `json:"countries"`
}

// Build indexes rows in order. Duplicate (name, type) pairs collapse into
// the first occurrence. Rows with an unknown type are skipped with a
// warning.
func Build(rows []Row) (*Index, error) {
	return build("rows", rows)
}

func build(source string, rows []Row) (*Index, error) {
	b := &builder{
		ix: &Index{
			byType:  make(map[model.EntityType][]int),
			exact:   make(map[string][]int),
			aliases: make(map[string][]aliasRef),
		},
		seen: make(map[seenKey]int),
	}

	var firstErr error
	for i, r := range rows {
		if err := b.addRow(r); err != nil {
			b.ix.skipped++
			if firstErr == nil {
				firstErr = rowError(i, err)
			}
		}
	}
	if b.ix.skipped > 0 {
		slog.Warn("skipped unusable gazetteer rows", "source", source, "skipped", b.ix.skipped, "first_error", firstErr)
	}
	if len(b.ix.entries) == 0 {
		return nil, &model.DataLoadError{Source: source, Err: ErrNoEntries}
	}
	b.attachBuiltinAliases()
	b.indexAliases()
	return b.ix, nil
}

type seenKey struct {
	key string
	typ model.EntityType
}

type builder struct {
	ix   *Index
	seen map[seenKey]int
}

func (b *builder) addRow(r Row) error {
	if strings.TrimSpace(r.Name) != "" {
		t, err := model.ParseEntityType(r.Type)
		if err != nil {
			return err
		}
		b.add(r.Name, t, r.Aliases)
		return nil
	}

	b.add(r.City, model.City, nonEmpty(r.CityNative))
	b.add(r.Admin, model.State, nonEmpty(r.AdminNative))

	var countryAliases []string
	if r.ISO2 != "" {
		countryAliases = append(countryAliases, r.ISO2)
	}
	if r.ISO3 != "" {
		countryAliases = append(countryAliases, r.ISO3)
	}
	b.add(r.Country, model.Country, countryAliases)
	return nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func (b *builder) add(name string, t model.EntityType, aliases []string) {
	name = common.CollapseSpace(name)
	key := common.MatchKey(name)
	if key == "" {
		return
	}

	sk := seenKey{key: key, typ: t}
	if id, ok := b.seen[sk]; ok {
		b.mergeAliases(id, aliases)
		return
	}

	id := len(b.ix.entries)
	b.seen[sk] = id
	b.ix.entries = append(b.ix.entries, model.GazetteerEntry{CanonicalName: name, Type: t})
	b.mergeAliases(id, aliases)
	b.ix.prepared = append(b.ix.prepared, similarity.Prepare(key))
	b.ix.byType[t] = append(b.ix.byType[t], id)

	b.ix.exact[key] = append(b.ix.exact[key], id)
	if stripped := common.StripHyphens(key); stripped != key {
		b.ix.exact[stripped] = append(b.ix.exact[stripped], id)
	}
	if words := len(strings.Fields(key)); words > b.ix.maxWords {
		b.ix.maxWords = words
	}
}

func (b *builder) mergeAliases(id int, aliases []string) {
	e := &b.ix.entries[id]
	for _, a := range aliases {
		a = common.CollapseSpace(a)
		if a == "" || strings.EqualFold(a, e.CanonicalName) || slices.Contains(e.Aliases, a) {
			continue
		}
		e.Aliases = append(e.Aliases, a)
	}
}

func (b *builder) attachBuiltinAliases() {
	for id, e := range b.ix.entries {
		if extra, ok := builtinAliases[aliasTableKey{common.MatchKey(e.CanonicalName), e.Type}]; ok {
			b.mergeAliases(id, extra)
		}
	}
}

func (b *builder) indexAliases() {
	for id, e := range b.ix.entries {
		for _, a := range e.Aliases {
			key := common.MatchKey(a)
			if key == "" || slices.ContainsFunc(b.ix.aliases[key], func(r aliasRef) bool { return r.id == id }) {
				continue
			}
			b.ix.aliases[key] = append(b.ix.aliases[key], aliasRef{id: id, acronym: isAcronym(key)})
		}
	}
}

// isAcronym reports whether an alias is short enough ("US", "UK", "LA") to
// collide with ordinary words unless written in capitals.
func isAcronym(key string) bool {
	n := 0
	for _, r := range key {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n <= 3
}

func (ix *Index) Len() int { return len(ix.entries) }

// Skipped is the number of source rows left out because they could not be
// turned into entries.
func (ix *Index) Skipped() int { return ix.skipped }

// Names returns the canonical names of type t in insertion order.
func (ix *Index) Names(t model.EntityType) []string {
	ids := ix.byType[t]
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = ix.entries[id].CanonicalName
	}
	return names
}

// AllNames returns every canonical name once, in insertion order.
func (ix *Index) AllNames() []string {
	seen := make(map[string]struct{}, len(ix.entries))
	names := make([]string, 0, len(ix.entries))
	for _, e := range ix.entries {
		if _, ok := seen[e.CanonicalName]; ok {
			continue
		}
		seen[e.CanonicalName] = struct{}{}
		names = append(names, e.CanonicalName)
	}
	return names
}

// LookupCandidates returns copies of every entry of type t.
func (ix *Index) LookupCandidates(t model.EntityType) []model.GazetteerEntry {
	ids := ix.byType[t]
	out := make([]model.GazetteerEntry, len(ids))
	for i, id := range ids {
		out[i] = ix.entry(id)
	}
	return out
}

func (ix *Index) entry(id int) model.GazetteerEntry {
	e := ix.entries[id]
	e.Aliases = slices.Clone(e.Aliases)
	return e
}

func (ix *Index) hits(ids []int) []Hit {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Hit, len(ids))
	for i, id := range ids {
		out[i] = Hit{Seq: id, Entry: ix.entry(id)}
	}
	return out
}

// Exact looks up a match key against canonical names and their
// hyphen-free spellings.
func (ix *Index) Exact(key string) []Hit {
	return ix.hits(ix.exact[key])
}

// HasName reports whether key is the match key of some canonical name.
func (ix *Index) HasName(key string) bool {
	_, ok := ix.exact[key]
	return ok
}

// Alias looks up a surface form among aliases. Acronym aliases only match
// surfaces written entirely in capitals.
func (ix *Index) Alias(surface string) []Hit {
	refs := ix.aliases[common.MatchKey(surface)]
	if len(refs) == 0 {
		return nil
	}
	upper := strings.ToUpper(surface) == surface
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		if ref.acronym && !upper {
			continue
		}
		ids = append(ids, ref.id)
	}
	return ix.hits(ids)
}

// MaxWords is the largest number of words in any canonical name.
func (ix *Index) MaxWords() int { return ix.maxWords }

// Pool returns a read-only view over the entries of type t.
func (ix *Index) Pool(t model.EntityType) Pool {
	return Pool{ix: ix, typ: t, ids: ix.byType[t]}
}

// Suggest returns up to limit names close to term, best first. An empty
// type searches every pool.
func (ix *Index) Suggest(term string, t model.EntityType, limit int) []string {
	var names []string
	if t == "" {
		names = ix.AllNames()
	} else {
		names = ix.Names(t)
	}

	ranks := fuzzy.RankFindNormalizedFold(term, names)
	sort.Stable(ranks)

	if limit <= 0 || limit > len(ranks) {
		limit = len(ranks)
	}
	out := make([]string, 0, limit)
	for _, r := range ranks[:limit] {
		out = append(out, r.Target)
	}
	return out
}

func (ix *Index) Stats() Stats {
	return Stats{
		Entries:   len(ix.entries),
		Cities:    len(ix.byType[model.City]),
		States:    len(ix.byType[model.State]),
		Countries: len(ix.byType[model.Country]),
	}
}

type Pool struct {
	ix  *Index
	typ model.EntityType
	ids []int
}

func (p Pool) Type() model.EntityType { return p.typ }
func (p Pool) Len() int               { return len(p.ids) }

func (p Pool) Name(i int) string { return p.ix.entries[p.ids[i]].CanonicalName }

// Seq is the insertion sequence of the i-th entry across the whole index.
func (p Pool) Seq(i int) int { return p.ids[i] }

func (p Pool) Prepared(i int) similarity.Prepared { return p.ix.prepared[p.ids[i]] }
